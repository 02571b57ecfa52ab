package bucket

import (
	"errors"
	"testing"
)

func TestGridAt_OutOfRange(t *testing.T) {
	g, _ := buildUTC(t, scenarioRaw(), 5)

	tests := []struct {
		name              string
		camera, slot, day int
	}{
		{"negative camera", -1, 0, 0},
		{"camera past end", 2, 0, 0},
		{"slot past end", 0, SlotCount, 0},
		{"negative slot", 0, -1, 0},
		{"day past end", 0, 0, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := g.At(tt.camera, tt.slot, tt.day); !errors.Is(err, ErrOutOfRange) {
				t.Errorf("At(%d, %d, %d) error = %v, want ErrOutOfRange", tt.camera, tt.slot, tt.day, err)
			}
		})
	}
}

func TestCellText(t *testing.T) {
	g, _ := buildUTC(t, scenarioRaw(), 5)

	busy, _ := g.At(0, 0, 0)
	if got := busy.Header(); got != "2 Detections" {
		t.Errorf("Header() = %q, want %q", got, "2 Detections")
	}
	if got := busy.LabelText(); got != "car, person" {
		t.Errorf("LabelText() = %q, want %q", got, "car, person")
	}

	idle, _ := g.At(1, 0, 0)
	if got := idle.Header(); got != "No detection" {
		t.Errorf("Header() = %q, want %q", got, "No detection")
	}
	if got := idle.LabelText(); got != "" {
		t.Errorf("LabelText() = %q, want empty", got)
	}
}

func TestGridEqual(t *testing.T) {
	a, _ := buildUTC(t, scenarioRaw(), 5)
	b, _ := buildUTC(t, scenarioRaw(), 5)
	if !a.Equal(b) {
		t.Error("identical builds not Equal")
	}
	if a.Equal(Filter(a, "per")) {
		t.Error("filtered grid reported Equal to original")
	}
	if a.Equal(Empty()) {
		t.Error("grid reported Equal to Empty()")
	}
}
