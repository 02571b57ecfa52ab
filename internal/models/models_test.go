package models

import (
	"testing"
	"time"
)

func TestCameraValidate(t *testing.T) {
	tests := []struct {
		name    string
		camera  Camera
		wantErr bool
	}{
		{
			name:    "valid camera",
			camera:  Camera{Name: "Front door", Position: 0},
			wantErr: false,
		},
		{
			name:    "empty name",
			camera:  Camera{Position: 1},
			wantErr: true,
		},
		{
			name:    "negative position",
			camera:  Camera{Name: "Garage", Position: -1},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.camera.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Camera.Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestDetectionValidate(t *testing.T) {
	now := time.Now()
	tests := []struct {
		name      string
		detection Detection
		wantErr   bool
	}{
		{
			name: "valid detection",
			detection: Detection{
				ID:         "det-1",
				Camera:     "Front door",
				Label:      "person",
				DetectedAt: now,
			},
			wantErr: false,
		},
		{
			name: "empty ID",
			detection: Detection{
				Camera:     "Front door",
				Label:      "person",
				DetectedAt: now,
			},
			wantErr: true,
		},
		{
			name: "empty camera",
			detection: Detection{
				ID:         "det-1",
				Label:      "person",
				DetectedAt: now,
			},
			wantErr: true,
		},
		{
			name: "empty label",
			detection: Detection{
				ID:         "det-1",
				Camera:     "Front door",
				DetectedAt: now,
			},
			wantErr: false,
		},
		{
			name: "zero time",
			detection: Detection{
				ID:     "det-1",
				Camera: "Front door",
				Label:  "person",
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.detection.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Detection.Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestRawEventsDimensions(t *testing.T) {
	var empty RawEvents
	if empty.CameraCount() != 0 || empty.DayCount() != 0 {
		t.Errorf("empty dims = (%d, %d), want (0, 0)", empty.CameraCount(), empty.DayCount())
	}

	raw := RawEvents{
		{{{Time: "2020-05-01T01:00:00", Label: "person"}}, {}},
		{{}, {}},
	}
	if raw.CameraCount() != 2 {
		t.Errorf("CameraCount() = %d, want 2", raw.CameraCount())
	}
	if raw.DayCount() != 2 {
		t.Errorf("DayCount() = %d, want 2", raw.DayCount())
	}
}

func TestGraphPointKey(t *testing.T) {
	p := GraphPoint{SlotLabel: "0-2", PerCamera: map[int]int{0: 1}}
	if got := p.Key(3); got != "Camera3" {
		t.Errorf("Key(3) = %q, want %q", got, "Camera3")
	}
}
