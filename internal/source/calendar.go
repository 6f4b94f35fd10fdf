package source

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"energy-forecast/internal/forecast"
)

// CalendarOptions parameterise the REST calendar source.
type CalendarOptions struct {
	BaseURL   string
	AuthToken string
	UserAgent string
	Timeout   time.Duration
}

// Calendar fetches vacation events from a REST calendar API.
type Calendar struct {
	opts    CalendarOptions
	logger  zerolog.Logger
	client  *http.Client
	baseURL string
}

// NewCalendar constructs a calendar source.
func NewCalendar(opts CalendarOptions, logger zerolog.Logger) *Calendar {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &Calendar{
		opts:    opts,
		logger:  logger.With().Str("component", "calendar_source").Logger(),
		client:  &http.Client{Timeout: timeout},
		baseURL: strings.TrimRight(opts.BaseURL, "/"),
	}
}

// Events retrieves the calendar's current events.
func (c *Calendar) Events(ctx context.Context, calendarID string) ([]forecast.Event, error) {
	if c.baseURL == "" {
		return nil, fmt.Errorf("calendar base URL not configured")
	}

	endpoint := fmt.Sprintf("%s/calendars/%s/events", c.baseURL, calendarID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	if token := strings.TrimSpace(c.opts.AuthToken); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	if ua := strings.TrimSpace(c.opts.UserAgent); ua != "" {
		req.Header.Set("User-Agent", ua)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode != http.StatusOK {
		return nil, parseHTTPError(resp.StatusCode, payload)
	}

	var events []calendarEvent
	if err := json.Unmarshal(payload, &events); err != nil {
		return nil, fmt.Errorf("decode calendar events: %w", err)
	}

	result := make([]forecast.Event, 0, len(events))
	for _, event := range events {
		result = append(result, forecast.Event{Start: event.Start, End: event.End})
	}

	c.logger.Debug().Str("calendar", calendarID).Int("events", len(result)).Msg("fetched calendar events")
	return result, nil
}

type calendarEvent struct {
	Start   string `json:"start"`
	End     string `json:"end"`
	Summary string `json:"summary"`
}

type errorResponse struct {
	ErrorType   string `json:"errorType"`
	Description string `json:"description"`
	Message     string `json:"message"`
}

func parseHTTPError(status int, payload []byte) error {
	var apiErr errorResponse
	if err := json.Unmarshal(payload, &apiErr); err == nil {
		if apiErr.Description != "" {
			return fmt.Errorf("calendar api error (%d): %s", status, apiErr.Description)
		}
		if apiErr.Message != "" {
			return fmt.Errorf("calendar api error (%d): %s", status, apiErr.Message)
		}
		if apiErr.ErrorType != "" {
			return fmt.Errorf("calendar api error (%d): %s", status, apiErr.ErrorType)
		}
	}
	if len(payload) > 0 {
		return fmt.Errorf("calendar api error (%d): %s", status, strings.TrimSpace(string(payload)))
	}
	return fmt.Errorf("calendar api error (%d)", status)
}

var _ forecast.CalendarSource = (*Calendar)(nil)
