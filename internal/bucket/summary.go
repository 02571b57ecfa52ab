package bucket

import (
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// CameraSummary condenses one camera's slice of a grid.
// Peak and busiest-slot fields are -1 when the camera has no detections.
type CameraSummary struct {
	Camera      int     `json:"camera"`
	Total       int     `json:"total"`
	PeakSlot    int     `json:"peak_slot"`
	PeakDay     int     `json:"peak_day"`
	PeakCount   int     `json:"peak_count"`
	BusiestSlot int     `json:"busiest_slot"`
	MeanPerDay  float64 `json:"mean_per_day"`
}

// Summarize returns one summary per camera of g.
func Summarize(g *Grid) []CameraSummary {
	out := make([]CameraSummary, 0, g.cameras)
	for c := 0; c < g.cameras; c++ {
		slotTotals := make([]float64, g.slots)
		dayTotals := make([]float64, g.days)
		sum := CameraSummary{Camera: c, PeakSlot: -1, PeakDay: -1, BusiestSlot: -1}

		for s := 0; s < g.slots; s++ {
			for d := 0; d < g.days; d++ {
				n := g.cell(c, s, d).count
				slotTotals[s] += float64(n)
				dayTotals[d] += float64(n)
				if n > sum.PeakCount {
					sum.PeakSlot, sum.PeakDay, sum.PeakCount = s, d, n
				}
			}
		}

		sum.Total = int(floats.Sum(dayTotals))
		if sum.Total > 0 {
			sum.BusiestSlot = floats.MaxIdx(slotTotals)
		}
		if g.days > 0 {
			sum.MeanPerDay = stat.Mean(dayTotals, nil)
		}
		out = append(out, sum)
	}
	return out
}
