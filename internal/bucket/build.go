package bucket

import (
	"fmt"
	"time"

	"github.com/tanat44/SmartCam/internal/models"
)

// timeLayouts are tried in order. Layouts without a zone are read in the builder's location.
var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04",
	time.RFC1123Z,
	time.RFC1123,
}

// EventError describes a raw event that was dropped during Build.
type EventError struct {
	Camera int
	Day    int
	Index  int
	Time   string
	Err    error
}

func (e EventError) Error() string {
	return fmt.Sprintf("camera %d day %d event %d (%q): %v", e.Camera, e.Day, e.Index, e.Time, e.Err)
}

func (e EventError) Unwrap() error {
	return e.Err
}

// ParseTime parses a raw event time. Strings carrying no zone are read in loc.
func ParseTime(s string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.Local
	}
	for _, layout := range timeLayouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("cannot parse %q: %w", s, ErrMalformedTimestamp)
}

// SlotIndex maps an hour of day to its slot.
func SlotIndex(hour int) (int, error) {
	if hour < 0 || hour >= 24 {
		return 0, fmt.Errorf("hour %d not in [0, 24): %w", hour, ErrMalformedTimestamp)
	}
	return hour / SlotHours, nil
}

// Builder converts raw events into grids.
//
// PaletteSize seeds the returned MaxDetection so the colour scale keeps at least that
// many levels on sparse data. Location is the zone whose wall-clock hour picks the
// slot; nil means time.Local.
type Builder struct {
	PaletteSize int
	Location    *time.Location
}

// Build aggregates raw, indexed [camera][day], into a new grid of
// len(raw) × SlotCount × len(raw[0]) cells.
//
// It returns the grid, the MaxDetection bound max(PaletteSize, largest cell count),
// the events skipped because their time could not be bucketed, and a fatal error
// wrapping ErrDimensionMismatch when cameras disagree on the day count.
// An empty input yields an empty grid. raw is not modified.
func (b Builder) Build(raw models.RawEvents) (*Grid, int, []EventError, error) {
	maxDetection := b.PaletteSize
	if len(raw) == 0 {
		return Empty(), maxDetection, nil, nil
	}

	days := raw.DayCount()
	for c, perDay := range raw {
		if len(perDay) != days {
			return nil, 0, nil, fmt.Errorf("camera %d reports %d days, camera 0 reports %d: %w",
				c, len(perDay), days, ErrDimensionMismatch)
		}
	}

	loc := b.Location
	if loc == nil {
		loc = time.Local
	}

	g := newGrid(len(raw), SlotCount, days)
	var skipped []EventError

	for c, perDay := range raw {
		for d, events := range perDay {
			for i, ev := range events {
				t, err := ParseTime(ev.Time, loc)
				if err != nil {
					skipped = append(skipped, EventError{Camera: c, Day: d, Index: i, Time: ev.Time, Err: err})
					continue
				}
				slot, err := SlotIndex(t.In(loc).Hour())
				if err != nil {
					skipped = append(skipped, EventError{Camera: c, Day: d, Index: i, Time: ev.Time, Err: err})
					continue
				}

				cell := g.cell(c, slot, d)
				cell.add(ev.Label)
				if cell.count > maxDetection {
					maxDetection = cell.count
				}
			}
		}
	}

	return g, maxDetection, skipped, nil
}

// Build aggregates raw in local time. See Builder.Build.
func Build(raw models.RawEvents, paletteSize int) (*Grid, int, []EventError, error) {
	return Builder{PaletteSize: paletteSize}.Build(raw)
}
