package models

import "fmt"

// GraphPoint is one slot of a per-day, cross-camera series.
// PerCamera maps camera index to the slot's detection count.
type GraphPoint struct {
	SlotLabel string      `json:"name"`
	PerCamera map[int]int `json:"per_camera"`
}

// Key returns the series name used for camera c, e.g. "Camera0".
func (p GraphPoint) Key(c int) string {
	return fmt.Sprintf("Camera%d", c)
}
