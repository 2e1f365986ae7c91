package stage

import "testing"

func TestValid(t *testing.T) {
	for _, s := range []Stage{Uploading, Generating, Assembling, Complete, Error} {
		if !s.Valid() {
			t.Errorf("expected %q to be valid", s)
		}
	}
	for _, s := range []Stage{"", "done", "UPLOADING", "cancelled"} {
		if s.Valid() {
			t.Errorf("expected %q to be invalid", s)
		}
	}
}

func TestCanAdvance(t *testing.T) {
	tests := []struct {
		from, to Stage
		want     bool
	}{
		{Uploading, Generating, true},
		{Generating, Assembling, true},
		{Assembling, Complete, true},
		{Uploading, Complete, true}, // forward skips allowed
		{Uploading, Error, true},
		{Generating, Error, true},
		{Generating, Uploading, false}, // no backward transitions
		{Complete, Generating, false},  // nothing leaves terminal
		{Complete, Error, false},
		{Error, Generating, false},
		{Uploading, "done", false},
	}
	for _, tt := range tests {
		if got := CanAdvance(tt.from, tt.to); got != tt.want {
			t.Errorf("CanAdvance(%q, %q) = %v, want %v", tt.from, tt.to, got, tt.want)
		}
	}
}

func TestClamp(t *testing.T) {
	if got := Clamp(-5); got != 0 {
		t.Errorf("Clamp(-5) = %d, want 0", got)
	}
	if got := Clamp(150); got != 100 {
		t.Errorf("Clamp(150) = %d, want 100", got)
	}
	if got := Clamp(42); got != 42 {
		t.Errorf("Clamp(42) = %d, want 42", got)
	}
}

func TestMapToOverall(t *testing.T) {
	tests := []struct {
		progress, low, high, want int
	}{
		{0, 30, 80, 30},
		{100, 30, 80, 80},
		{50, 30, 80, 55},
		{10, 30, 80, 35},
		{-20, 30, 80, 30},
		{120, 30, 80, 80},
		{50, 80, 30, 80}, // degenerate window falls back to low
	}
	for _, tt := range tests {
		if got := MapToOverall(tt.progress, tt.low, tt.high); got != tt.want {
			t.Errorf("MapToOverall(%d, %d, %d) = %d, want %d", tt.progress, tt.low, tt.high, got, tt.want)
		}
	}
}
