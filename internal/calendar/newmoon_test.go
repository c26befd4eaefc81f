package calendar

import (
	"testing"
	"time"
)

func TestAlignToNewMoon(t *testing.T) {
	tests := []struct {
		name   string
		target time.Time
		window int
		want   string
	}{
		{
			name:   "February 2025 snaps back to January 29",
			target: time.Date(2025, time.February, 1, 0, 0, 0, 0, time.UTC),
			window: DefaultNewMoonWindow,
			want:   "2025-01-29",
		},
		{
			name:   "target already on new moon",
			target: time.Date(2025, time.January, 29, 0, 0, 0, 0, time.UTC),
			window: DefaultNewMoonWindow,
			want:   "2025-01-29",
		},
		{
			name:   "new moon outside window picks the lowest edge",
			target: time.Date(2026, time.February, 1, 0, 0, 0, 0, time.UTC),
			window: DefaultNewMoonWindow,
			want:   "2026-01-27",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := AlignToNewMoon(tt.target, tt.window)
			if FormatDate(got) != tt.want {
				t.Errorf("AlignToNewMoon(%s, %d) = %s, want %s",
					FormatDate(tt.target), tt.window, FormatDate(got), tt.want)
			}
		})
	}
}

func TestAlignToNewMoon_ZeroWindow(t *testing.T) {
	target := time.Date(2025, time.March, 14, 7, 30, 0, 0, time.UTC)

	got := AlignToNewMoon(target, 0)
	if !got.Equal(target) {
		t.Errorf("AlignToNewMoon(window=0) = %v, want %v unchanged", got, target)
	}
}

func TestAlignToNewMoon_StaysInWindow(t *testing.T) {
	start := time.Date(2020, time.January, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 400; i += 3 {
		target := start.AddDate(0, 0, i)
		got := AlignToNewMoon(target, DefaultNewMoonWindow)

		offset := daysBetween(target, got)
		if offset < -DefaultNewMoonWindow || offset > DefaultNewMoonWindow {
			t.Fatalf("AlignToNewMoon(%s) = %s, %d days away", FormatDate(target), FormatDate(got), offset)
		}

		// No candidate in the window has a smaller fraction.
		best := PhaseFraction(got)
		for d := -DefaultNewMoonWindow; d <= DefaultNewMoonWindow; d++ {
			if f := PhaseFraction(target.AddDate(0, 0, d)); f < best {
				t.Fatalf("AlignToNewMoon(%s) = %s (%v), but offset %d has %v",
					FormatDate(target), FormatDate(got), best, d, f)
			}
		}
	}
}
