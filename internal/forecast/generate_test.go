package forecast

import (
	"testing"
	"time"
)

func TestGenerateAveragesBuckets(t *testing.T) {
	profile := &HourlyProfile{}
	profile.Weekday[9] = []float64{10.0, 20.0}

	// Monday 00:30, so 09:00 of the window falls on the same weekday.
	now := time.Date(2024, 6, 3, 0, 30, 0, 0, time.UTC)
	fm := Generate(now, profile)

	if len(fm) != 24 {
		t.Fatalf("expected 24 entries, got %d", len(fm))
	}
	if got := fm["2024-06-03T09:00:00"]; got != 15.0 {
		t.Fatalf("expected mean 15.0 at 09:00, got %v", got)
	}
	if got := fm["2024-06-03T10:00:00"]; got != 0 {
		t.Fatalf("empty bucket must forecast 0, got %v", got)
	}
}

func TestGenerateKeysAreHourTruncated(t *testing.T) {
	now := time.Date(2024, 6, 3, 13, 45, 12, 0, time.UTC)
	fm := Generate(now, &HourlyProfile{})

	if _, ok := fm["2024-06-03T13:00:00"]; !ok {
		t.Fatalf("expected key for the reference hour, keys: %v", fm)
	}
	if _, ok := fm["2024-06-04T12:00:00"]; !ok {
		t.Fatalf("expected key for the final hour of the window, keys: %v", fm)
	}
}

func TestGenerateRoundsToTwoDecimals(t *testing.T) {
	profile := &HourlyProfile{}
	profile.Weekday[0] = []float64{1.0, 2.0, 2.0} // mean 1.666...

	now := time.Date(2024, 6, 3, 0, 0, 0, 0, time.UTC)
	fm := Generate(now, profile)

	if got := fm["2024-06-03T00:00:00"]; got != 1.67 {
		t.Fatalf("expected 1.67, got %v", got)
	}
}

func TestGenerateUsesWeekendBucketsAcrossDayBoundary(t *testing.T) {
	profile := &HourlyProfile{}
	profile.Weekday[8] = []float64{2.0}
	profile.Weekend[8] = []float64{5.0}

	// Friday 12:00: 08:00 next day lands on Saturday.
	now := time.Date(2024, 6, 7, 12, 0, 0, 0, time.UTC)
	fm := Generate(now, profile)

	if got := fm["2024-06-08T08:00:00"]; got != 5.0 {
		t.Fatalf("saturday slot must use the weekend bucket, got %v", got)
	}
}
