// Package bucket aggregates timestamped detection events into a dense
// camera × slot × day grid and derives filtered grids, per-day chart series and
// colour-scale indices from it.
//
// A slot is one of SlotCount two-hour windows: slot i covers hours [2i, 2i+2).
//
// Grids are immutable once returned. Every derivation (Filter, Refine) allocates a
// fresh grid and never edits its input, so grids may be shared by reference.
package bucket

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

const (
	// SlotCount is the number of two-hour windows in a day.
	SlotCount = 12
	// SlotHours is the width of a slot in hours.
	SlotHours = 2
)

var (
	// ErrDimensionMismatch is returned when cameras report differing day counts.
	ErrDimensionMismatch = errors.New("cameras report differing day counts")
	// ErrOutOfRange is returned for camera, slot or day indices outside the grid.
	ErrOutOfRange = errors.New("index out of range")
	// ErrMalformedTimestamp marks an event whose time cannot be bucketed.
	ErrMalformedTimestamp = errors.New("malformed timestamp")
)

// Cell is the aggregated state at one (camera, slot, day) coordinate.
// count is the number of events; labels holds the distinct label text seen.
type Cell struct {
	count  int
	labels map[string]struct{}
}

// Count returns the number of events aggregated into the cell.
func (c Cell) Count() int {
	return c.count
}

// LabelCount returns the number of distinct labels in the cell.
func (c Cell) LabelCount() int {
	return len(c.labels)
}

// HasLabel reports whether label was seen in the cell (exact match).
func (c Cell) HasLabel(label string) bool {
	_, ok := c.labels[label]
	return ok
}

// Labels returns the distinct labels in ascending order.
func (c Cell) Labels() []string {
	out := make([]string, 0, len(c.labels))
	for l := range c.labels {
		out = append(out, l)
	}
	sort.Strings(out)
	return out
}

// Header is the one-line description shown for the cell.
func (c Cell) Header() string {
	if c.count == 0 {
		return "No detection"
	}
	return fmt.Sprintf("%d Detections", c.count)
}

// LabelText returns the sorted labels joined by ", ", or "" for an empty cell.
func (c Cell) LabelText() string {
	if c.count == 0 {
		return ""
	}
	return strings.Join(c.Labels(), ", ")
}

// add records one event. The label set is allocated per cell on first use.
func (c *Cell) add(label string) {
	c.count++
	if c.labels == nil {
		c.labels = make(map[string]struct{})
	}
	c.labels[label] = struct{}{}
}

// Grid is a dense camera × slot × day collection of cells stored in one flat slice.
// Each coordinate owns its own Cell value, so no two coordinates can share state.
type Grid struct {
	cameras int
	slots   int
	days    int
	cells   []Cell
}

func newGrid(cameras, slots, days int) *Grid {
	return &Grid{
		cameras: cameras,
		slots:   slots,
		days:    days,
		cells:   make([]Cell, cameras*slots*days),
	}
}

// Empty returns a grid with all dimensions zero.
func Empty() *Grid {
	return newGrid(0, 0, 0)
}

// Cameras returns the camera extent.
func (g *Grid) Cameras() int { return g.cameras }

// Slots returns the slot extent.
func (g *Grid) Slots() int { return g.slots }

// Days returns the day extent.
func (g *Grid) Days() int { return g.days }

// IsEmpty reports whether the grid has no cells.
func (g *Grid) IsEmpty() bool {
	return len(g.cells) == 0
}

func (g *Grid) offset(camera, slot, day int) int {
	return (camera*g.slots+slot)*g.days + day
}

func (g *Grid) cell(camera, slot, day int) *Cell {
	return &g.cells[g.offset(camera, slot, day)]
}

// CheckCamera returns ErrOutOfRange unless camera is a valid camera index.
func (g *Grid) CheckCamera(camera int) error {
	if camera < 0 || camera >= g.cameras {
		return fmt.Errorf("camera %d not in [0, %d): %w", camera, g.cameras, ErrOutOfRange)
	}
	return nil
}

// CheckDay returns ErrOutOfRange unless day is a valid day index.
func (g *Grid) CheckDay(day int) error {
	if day < 0 || day >= g.days {
		return fmt.Errorf("day %d not in [0, %d): %w", day, g.days, ErrOutOfRange)
	}
	return nil
}

// At returns the cell at (camera, slot, day).
func (g *Grid) At(camera, slot, day int) (Cell, error) {
	if err := g.CheckCamera(camera); err != nil {
		return Cell{}, err
	}
	if slot < 0 || slot >= g.slots {
		return Cell{}, fmt.Errorf("slot %d not in [0, %d): %w", slot, g.slots, ErrOutOfRange)
	}
	if err := g.CheckDay(day); err != nil {
		return Cell{}, err
	}
	return *g.cell(camera, slot, day), nil
}

// Equal reports whether both grids have the same extent and identical cells.
func (g *Grid) Equal(other *Grid) bool {
	if g.cameras != other.cameras || g.slots != other.slots || g.days != other.days {
		return false
	}
	for i := range g.cells {
		a, b := g.cells[i], other.cells[i]
		if a.count != b.count || len(a.labels) != len(b.labels) {
			return false
		}
		for l := range a.labels {
			if _, ok := b.labels[l]; !ok {
				return false
			}
		}
	}
	return true
}
