package source

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func noopLogger() zerolog.Logger {
	return zerolog.Nop()
}

func TestCalendarEventsSuccess(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/calendars/calendar.vacation/events" {
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer token" {
			t.Fatalf("missing bearer token, got %q", got)
		}
		_ = json.NewEncoder(w).Encode([]map[string]string{
			{"start": "2024-06-10T00:00:00Z", "end": "2024-06-12T00:00:00Z", "summary": "Summer trip"},
		})
	}))
	defer srv.Close()

	cal := NewCalendar(CalendarOptions{
		BaseURL:   srv.URL,
		AuthToken: "token",
		UserAgent: "test",
		Timeout:   time.Second,
	}, noopLogger())

	events, err := cal.Events(context.Background(), "calendar.vacation")
	if err != nil {
		t.Fatalf("Events returned error: %v", err)
	}
	if len(events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(events))
	}
	if events[0].Start != "2024-06-10T00:00:00Z" || events[0].End != "2024-06-12T00:00:00Z" {
		t.Fatalf("unexpected event bounds: %+v", events[0])
	}
}

func TestCalendarEventsHTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_ = json.NewEncoder(w).Encode(map[string]string{"message": "unknown calendar"})
	}))
	defer srv.Close()

	cal := NewCalendar(CalendarOptions{BaseURL: srv.URL, Timeout: time.Second}, noopLogger())
	if _, err := cal.Events(context.Background(), "calendar.nope"); err == nil {
		t.Fatal("HTTP 404 must return an error")
	}
}

func TestCalendarEventsMissingBaseURL(t *testing.T) {
	cal := NewCalendar(CalendarOptions{}, noopLogger())
	if _, err := cal.Events(context.Background(), "calendar.vacation"); err == nil {
		t.Fatal("missing base URL must return an error")
	}
}
