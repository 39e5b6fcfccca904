package audit

import (
	"strings"
	"testing"
	"time"
)

func TestDayRange(t *testing.T) {
	r, err := DayRange("2026-08-30", time.UTC)
	if err != nil {
		t.Fatalf("DayRange() unexpected error: %v", err)
	}
	want := time.Date(2026, 8, 30, 0, 0, 0, 0, time.UTC)
	if !r.Start.Equal(want) || !r.End.Equal(want.AddDate(0, 0, 1)) {
		t.Errorf("DayRange() = %+v", r)
	}
}

func TestDayRangeBadDate(t *testing.T) {
	if _, err := DayRange("30/08/2026", time.UTC); err == nil {
		t.Error("DayRange() expected error for bad date")
	}
}

func TestWeekRange(t *testing.T) {
	r, err := WeekRange("2026-08-24", time.UTC)
	if err != nil {
		t.Fatalf("WeekRange() unexpected error: %v", err)
	}
	if r.End.Sub(r.Start) != 7*24*time.Hour {
		t.Errorf("WeekRange() spans %v, want 7 days", r.End.Sub(r.Start))
	}
}

func TestBetweenRange(t *testing.T) {
	r, err := BetweenRange("2026-08-01", "2026-08-30", time.UTC)
	if err != nil {
		t.Fatalf("BetweenRange() unexpected error: %v", err)
	}
	// Inclusive of the until day
	if !r.End.Equal(time.Date(2026, 8, 31, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("End = %v", r.End)
	}

	if _, err := BetweenRange("2026-08-30", "2026-08-01", time.UTC); err == nil {
		t.Error("BetweenRange() expected error for inverted range")
	}
}

func TestWeekStart(t *testing.T) {
	tests := []struct {
		day  time.Time
		want time.Time
	}{
		// A Sunday maps back to the previous Monday
		{time.Date(2026, 8, 30, 15, 0, 0, 0, time.UTC), time.Date(2026, 8, 24, 0, 0, 0, 0, time.UTC)},
		// A Monday maps to itself
		{time.Date(2026, 8, 24, 9, 0, 0, 0, time.UTC), time.Date(2026, 8, 24, 0, 0, 0, 0, time.UTC)},
		// Mid-week
		{time.Date(2026, 8, 26, 23, 59, 0, 0, time.UTC), time.Date(2026, 8, 24, 0, 0, 0, 0, time.UTC)},
	}

	for _, tt := range tests {
		t.Run(tt.day.Weekday().String(), func(t *testing.T) {
			if got := WeekStart(tt.day); !got.Equal(tt.want) {
				t.Errorf("WeekStart(%v) = %v, want %v", tt.day, got, tt.want)
			}
		})
	}
}

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		d    time.Duration
		want string
	}{
		{90 * time.Minute, "1:30:00"},
		{45 * time.Second, "0:00:45"},
		{26*time.Hour + 5*time.Minute, "26:05:00"},
		{0, "0:00:00"},
	}

	for _, tt := range tests {
		if got := FormatDuration(tt.d); got != tt.want {
			t.Errorf("FormatDuration(%v) = %q, want %q", tt.d, got, tt.want)
		}
	}
}

func TestReportHuman(t *testing.T) {
	start := time.Date(2026, 8, 30, 9, 0, 0, 0, time.UTC)
	end := start.Add(2 * time.Hour)
	tasks := []Task{
		{Start: start, End: start.Add(90 * time.Minute)},
		{Start: start.Add(90 * time.Minute), End: end},
	}
	tasks[0].Entry.Category = "coding"
	tasks[1].Entry.Category = "email"

	report := NewReport("worklog", "D08SS90DC3X", Range{Start: start, End: end}, tasks)
	out := report.Human()

	for _, want := range []string{"coding", "email", "Total", "75.00%", "25.00%", "2:00:00"} {
		if !strings.Contains(out, want) {
			t.Errorf("Human() output missing %q:\n%s", want, out)
		}
	}
}

func TestReportHumanEmpty(t *testing.T) {
	report := NewReport("worklog", "D08SS90DC3X", Range{}, nil)
	if !strings.Contains(report.Human(), "No log entries") {
		t.Errorf("Human() = %q", report.Human())
	}
}
