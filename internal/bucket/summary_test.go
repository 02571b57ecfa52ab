package bucket

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestSummarize(t *testing.T) {
	g, _ := buildUTC(t, mixedRaw(), 5)

	want := []CameraSummary{
		{Camera: 0, Total: 6, PeakSlot: 0, PeakDay: 0, PeakCount: 3, BusiestSlot: 0, MeanPerDay: 3},
		{Camera: 1, Total: 1, PeakSlot: 11, PeakDay: 0, PeakCount: 1, BusiestSlot: 11, MeanPerDay: 0.5},
	}
	if diff := cmp.Diff(want, Summarize(g)); diff != "" {
		t.Errorf("Summarize mismatch (-want +got):\n%s", diff)
	}
}

func TestSummarize_NoDetections(t *testing.T) {
	g, _ := buildUTC(t, scenarioRaw(), 5)
	got := Summarize(g)[1]

	want := CameraSummary{Camera: 1, PeakSlot: -1, PeakDay: -1, BusiestSlot: -1}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Summarize mismatch (-want +got):\n%s", diff)
	}
	if len(Summarize(Empty())) != 0 {
		t.Error("Summarize(Empty()) returned summaries")
	}
}
