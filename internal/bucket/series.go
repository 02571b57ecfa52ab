package bucket

import (
	"fmt"

	"github.com/tanat44/SmartCam/internal/models"
)

// SlotLabel returns the hour range covered by slot i, e.g. "4-6" for slot 2.
func SlotLabel(i int) string {
	return fmt.Sprintf("%d-%d", SlotHours*i, SlotHours*i+SlotHours)
}

// ExtractDaySeries returns one point per slot for the given day, each carrying the
// count of every camera in that slot. day outside the grid fails with ErrOutOfRange.
func ExtractDaySeries(g *Grid, day int) ([]models.GraphPoint, error) {
	if err := g.CheckDay(day); err != nil {
		return nil, err
	}

	points := make([]models.GraphPoint, g.slots)
	for s := 0; s < g.slots; s++ {
		perCamera := make(map[int]int, g.cameras)
		for c := 0; c < g.cameras; c++ {
			perCamera[c] = g.cell(c, s, day).count
		}
		points[s] = models.GraphPoint{SlotLabel: SlotLabel(s), PerCamera: perCamera}
	}
	return points, nil
}
