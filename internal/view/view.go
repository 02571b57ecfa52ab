// Package view holds the interactive state around the bucket engine: the selected
// date range, the original and filtered grids, the active keyword and the cell
// whose day series is open.
//
// Every handler recomputes from scratch and runs to completion before returning.
// Fetches are ticketed so that when several are in flight only the most recently
// issued one may install its result.
package view

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/tanat44/SmartCam/internal/bucket"
	"github.com/tanat44/SmartCam/internal/logger"
	"github.com/tanat44/SmartCam/internal/models"
	"github.com/tanat44/SmartCam/internal/storage"
)

// ErrStaleFetch is returned when a fetch result arrives after a newer fetch was issued.
var ErrStaleFetch = errors.New("fetch superseded by a newer request")

// Mode is the detail-view state.
type Mode int

const (
	// Idle means no cell is selected.
	Idle Mode = iota
	// CellSelected means a day series is open for Selection.
	CellSelected
)

func (m Mode) String() string {
	if m == CellSelected {
		return "cell-selected"
	}
	return "idle"
}

// Selection identifies the clicked cell.
type Selection struct {
	Camera int
	Day    int
}

// Ticket identifies one date-range fetch.
type Ticket struct {
	ID    string
	Start time.Time
	End   time.Time
}

// View is the state object driving the engine
type View struct {
	mu sync.Mutex

	source  storage.Source
	builder bucket.Builder

	start   time.Time
	end     time.Time
	pending string // ID of the most recently issued ticket

	original     *bucket.Grid
	filtered     *bucket.Grid
	maxDetection int
	keyword      string

	mode      Mode
	selection Selection
	series    []models.GraphPoint

	err error
}

// New creates a View over source. paletteSize seeds MaxDetection; loc is the zone
// days and slots are cut in (nil means time.Local).
func New(source storage.Source, paletteSize int, loc *time.Location) *View {
	if loc == nil {
		loc = time.Local
	}
	today := dayStart(time.Now(), loc)
	return &View{
		source:       source,
		builder:      bucket.Builder{PaletteSize: paletteSize, Location: loc},
		start:        today,
		end:          today,
		original:     bucket.Empty(),
		filtered:     bucket.Empty(),
		maxDetection: paletteSize,
	}
}

func dayStart(t time.Time, loc *time.Location) time.Time {
	y, m, d := t.In(loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, loc)
}

// OnDateRangeChange fetches [start, end] and rebuilds the grids.
func (v *View) OnDateRangeChange(ctx context.Context, start, end time.Time) error {
	ticket := v.BeginFetch(start, end)
	raw, err := v.source.Fetch(ctx, ticket.Start, ticket.End)
	return v.CompleteFetch(ticket, raw, err)
}

// OnStartDateChange sets the start date, pulling the end date forward when the new
// start falls after it, and refetches.
func (v *View) OnStartDateChange(ctx context.Context, start time.Time) error {
	v.mu.Lock()
	loc := v.builder.Location
	end := v.end
	v.mu.Unlock()

	start = dayStart(start, loc)
	if start.After(end) {
		end = start
	}
	return v.OnDateRangeChange(ctx, start, end)
}

// OnEndDateChange sets the end date, pulling the start date back when the new end
// falls before it, and refetches.
func (v *View) OnEndDateChange(ctx context.Context, end time.Time) error {
	v.mu.Lock()
	loc := v.builder.Location
	start := v.start
	v.mu.Unlock()

	end = dayStart(end, loc)
	if end.Before(start) {
		start = end
	}
	return v.OnDateRangeChange(ctx, start, end)
}

// BeginFetch issues a ticket for the requested range that supersedes all earlier
// ones. Range and DayDate keep describing the displayed grid until the ticket is
// completed.
func (v *View) BeginFetch(start, end time.Time) Ticket {
	v.mu.Lock()
	defer v.mu.Unlock()

	t := Ticket{
		ID:    uuid.New().String(),
		Start: dayStart(start, v.builder.Location),
		End:   dayStart(end, v.builder.Location),
	}
	v.pending = t.ID
	logger.Debug("BeginFetch: ticket %s for %s..%s", t.ID, t.Start.Format(time.DateOnly), t.End.Format(time.DateOnly))
	return t
}

// CompleteFetch installs the result of the fetch identified by t. It returns
// ErrStaleFetch and leaves the state untouched when a newer ticket exists.
//
// Otherwise the ticket's range becomes the displayed range. On success the grids
// are rebuilt, the keyword cleared and the view returns to Idle. On a fetch or
// build failure the grids become empty, the view returns to Idle and the failure
// is both returned and kept in Err.
func (v *View) CompleteFetch(t Ticket, raw models.RawEvents, fetchErr error) error {
	v.mu.Lock()
	defer v.mu.Unlock()

	if t.ID != v.pending {
		logger.Debug("CompleteFetch: dropping stale ticket %s", t.ID)
		return ErrStaleFetch
	}

	v.start, v.end = t.Start, t.End
	v.keyword = ""
	v.closeDetail()

	if fetchErr == nil && len(raw) == 0 {
		fetchErr = storage.ErrNoData
	}
	if fetchErr != nil {
		v.reset(fmt.Errorf("fetch %s..%s: %w", t.Start.Format(time.DateOnly), t.End.Format(time.DateOnly), fetchErr))
		logger.Warn("No data: %v", v.err)
		return v.err
	}

	g, maxDetection, skipped, err := v.builder.Build(raw)
	if err != nil {
		v.reset(fmt.Errorf("build grid: %w", err))
		logger.Error("Failed to build grid: %v", err)
		return v.err
	}
	for _, s := range skipped {
		logger.Warn("Skipped event: %v", s)
	}

	v.original = g
	v.filtered = g
	v.maxDetection = maxDetection
	v.err = nil
	logger.Info("Built grid: %d cameras x %d slots x %d days, max detection %d, %d events skipped",
		g.Cameras(), g.Slots(), g.Days(), maxDetection, len(skipped))
	return nil
}

// reset installs empty grids and records err. Caller holds mu.
func (v *View) reset(err error) {
	v.original = bucket.Empty()
	v.filtered = v.original
	v.maxDetection = v.builder.PaletteSize
	v.err = err
}

// closeDetail returns to Idle. Caller holds mu.
func (v *View) closeDetail() {
	v.mode = Idle
	v.selection = Selection{}
	v.series = nil
}

// OnKeywordChange applies a keyword edit: empty resets to the original grid, one or
// two characters keep the current filtered grid, longer keywords refilter the
// original. Any open detail view is closed.
func (v *View) OnKeywordChange(keyword string) {
	v.mu.Lock()
	defer v.mu.Unlock()

	action := bucket.ClassifyKeyword(keyword)
	v.filtered = bucket.Refine(v.original, v.filtered, keyword)
	v.keyword = keyword
	v.closeDetail()
	logger.Debug("OnKeywordChange: %q -> %v", keyword, action)
}

// OnCellSelect opens the day series for (camera, day) of the filtered grid.
// Indices outside the grid fail with bucket.ErrOutOfRange and leave the state unchanged.
func (v *View) OnCellSelect(camera, day int) error {
	v.mu.Lock()
	defer v.mu.Unlock()

	if err := v.filtered.CheckCamera(camera); err != nil {
		return err
	}
	series, err := bucket.ExtractDaySeries(v.filtered, day)
	if err != nil {
		return err
	}

	v.mode = CellSelected
	v.selection = Selection{Camera: camera, Day: day}
	v.series = series
	return nil
}

// OnCloseDetail returns to Idle.
func (v *View) OnCloseDetail() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.closeDetail()
}

// State returns the detail mode and, when a cell is selected, its coordinates.
func (v *View) State() (Mode, Selection) {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.mode, v.selection
}

// Series returns the open day series, or nil when Idle.
func (v *View) Series() []models.GraphPoint {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.series
}

// Keyword returns the active keyword
func (v *View) Keyword() string {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.keyword
}

// Original returns the grid built from the last successful fetch.
func (v *View) Original() *bucket.Grid {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.original
}

// Filtered returns the grid currently on display.
func (v *View) Filtered() *bucket.Grid {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.filtered
}

// MaxDetection returns the colour-scale bound of the original grid.
func (v *View) MaxDetection() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.maxDetection
}

// Range returns the date range of the displayed grid.
func (v *View) Range() (start, end time.Time) {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.start, v.end
}

// DayDate returns the calendar date of a day index.
func (v *View) DayDate(day int) time.Time {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.start.AddDate(0, 0, day)
}

// Err returns the failure of the last fetch, or nil.
func (v *View) Err() error {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.err
}
