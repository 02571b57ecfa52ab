// Package models defines the domain entities shared by the detection store, the bucket
// engine and the view layer.
//
// Terminology:
//   - Camera: a registered video source that reports object detections.
//   - Detection: one stored observation of a labelled object by a camera at an instant.
//   - RawDetection: a detection as a source delivers it, with an unparsed time string.
package models

import (
	"errors"
	"time"
)

// RawDetection is a single event as delivered by a raw event source.
// Time is kept as text; parsing happens during bucket aggregation so that one bad
// record never fails a whole fetch.
type RawDetection struct {
	Time  string `json:"time"`
	Label string `json:"label"`
}

// RawEvents is indexed [camera][day] and holds the detections of that camera on that day.
type RawEvents [][][]RawDetection

// CameraCount returns the number of cameras in the dump.
func (r RawEvents) CameraCount() int {
	return len(r)
}

// DayCount returns the day extent reported by the first camera, or 0 when empty.
func (r RawEvents) DayCount() int {
	if len(r) == 0 {
		return 0
	}
	return len(r[0])
}

// Camera is a registered detection source. Position fixes the camera's index in a grid.
type Camera struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Position  int       `json:"position"`
	CreatedAt time.Time `json:"created_at"`
}

// Validate checks that all camera fields are valid
func (c *Camera) Validate() error {
	if c.Name == "" {
		return errors.New("camera name must not be empty")
	}
	if c.Position < 0 {
		return errors.New("camera position must not be negative")
	}
	return nil
}

// Detection is a persisted detection event. Label may be empty: an unlabelled
// detection still counts towards its cell.
type Detection struct {
	ID         string    `json:"id"`
	Camera     string    `json:"camera"`
	Label      string    `json:"label"`
	DetectedAt time.Time `json:"detected_at"`
}

// Validate checks that all detection fields are valid
func (d *Detection) Validate() error {
	if d.ID == "" {
		return errors.New("detection ID must not be empty")
	}
	if d.Camera == "" {
		return errors.New("detection camera must not be empty")
	}
	if d.DetectedAt.IsZero() {
		return errors.New("detected at must be set")
	}
	return nil
}
