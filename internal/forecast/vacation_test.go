package forecast

import (
	"context"
	"errors"
	"testing"
	"time"
)

type fakeCalendar struct {
	events []Event
	err    error
}

func (f *fakeCalendar) Events(_ context.Context, _ string) ([]Event, error) {
	return f.events, f.err
}

func TestDatesExpandsInclusiveRange(t *testing.T) {
	cal := &fakeCalendar{events: []Event{
		{Start: "2024-06-10T09:00:00Z", End: "2024-06-12T17:00:00Z"},
	}}

	resolver := NewResolver(cal, noopLogger())
	dates, err := resolver.Dates(context.Background(), "calendar.vacation")
	if err != nil {
		t.Fatalf("Dates returned error: %v", err)
	}

	if len(dates) != 3 {
		t.Fatalf("expected 3 dates, got %d", len(dates))
	}
	for day := 10; day <= 12; day++ {
		if !dates.Contains(Date{Year: 2024, Month: time.June, Day: day}) {
			t.Fatalf("expected 2024-06-%02d in set", day)
		}
	}
}

func TestDatesDegenerateEventContributesNothing(t *testing.T) {
	cal := &fakeCalendar{events: []Event{
		{Start: "2024-06-12T00:00:00Z", End: "2024-06-10T00:00:00Z"},
	}}

	resolver := NewResolver(cal, noopLogger())
	dates, err := resolver.Dates(context.Background(), "calendar.vacation")
	if err != nil {
		t.Fatalf("Dates returned error: %v", err)
	}
	if len(dates) != 0 {
		t.Fatalf("end before start must contribute no dates, got %d", len(dates))
	}
}

func TestDatesSkipsUnparseableEvents(t *testing.T) {
	cal := &fakeCalendar{events: []Event{
		{Start: "whenever", End: "2024-06-10T00:00:00Z"},
		{Start: "2024-06-20T00:00:00Z", End: "2024-06-20T12:00:00Z"},
	}}

	resolver := NewResolver(cal, noopLogger())
	dates, err := resolver.Dates(context.Background(), "calendar.vacation")
	if err != nil {
		t.Fatalf("Dates returned error: %v", err)
	}
	if len(dates) != 1 {
		t.Fatalf("expected only the parseable event's date, got %d", len(dates))
	}
	if !dates.Contains(Date{Year: 2024, Month: time.June, Day: 20}) {
		t.Fatal("expected 2024-06-20 in set")
	}
}

func TestDatesWithoutCalendarReturnsEmptySet(t *testing.T) {
	resolver := NewResolver(&fakeCalendar{err: errors.New("should not be called")}, noopLogger())
	dates, err := resolver.Dates(context.Background(), "")
	if err != nil {
		t.Fatalf("Dates returned error: %v", err)
	}
	if len(dates) != 0 {
		t.Fatalf("expected empty set, got %d", len(dates))
	}
}

func TestDatesUpstreamFailureDegradesToEmpty(t *testing.T) {
	resolver := NewResolver(&fakeCalendar{err: errors.New("calendar down")}, noopLogger())
	dates, err := resolver.Dates(context.Background(), "calendar.vacation")
	if err != nil {
		t.Fatalf("upstream failure must not abort the run: %v", err)
	}
	if len(dates) != 0 {
		t.Fatalf("expected empty set, got %d", len(dates))
	}
}
