package forecast

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"
)

// Resolver expands calendar events into the set of excluded dates.
type Resolver struct {
	source CalendarSource
	logger zerolog.Logger
}

// NewResolver constructs a vacation resolver over the given calendar.
func NewResolver(source CalendarSource, logger zerolog.Logger) *Resolver {
	return &Resolver{
		source: source,
		logger: logger.With().Str("component", "vacation_resolver").Logger(),
	}
}

// Dates resolves the vacation date set for a calendar entity. Every event
// contributes all calendar dates from its start date through its end date
// inclusive; events that end before they start contribute nothing, as do
// events with unparseable bounds. A missing calendar id, an empty
// calendar, or an unavailable source all yield the empty set.
func (r *Resolver) Dates(ctx context.Context, calendarID string) (VacationDateSet, error) {
	dates := make(VacationDateSet)
	if calendarID == "" {
		return dates, nil
	}

	events, err := r.source.Events(ctx, calendarID)
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil, err
		}
		r.logger.Warn().Err(err).Str("calendar", calendarID).Msg("calendar unavailable; no vacation dates")
		return dates, nil
	}
	if len(events) == 0 {
		r.logger.Warn().Str("calendar", calendarID).Msg("calendar has no events")
		return dates, nil
	}

	for _, event := range events {
		start, startErr := time.Parse(time.RFC3339, event.Start)
		end, endErr := time.Parse(time.RFC3339, event.End)
		if startErr != nil || endErr != nil {
			r.logger.Warn().Str("calendar", calendarID).
				Str("start", event.Start).
				Str("end", event.End).
				Msg("skipping event with unparseable bounds")
			continue
		}

		for current := start; !current.After(end); current = current.AddDate(0, 0, 1) {
			dates[DateOf(current)] = struct{}{}
		}
	}

	return dates, nil
}
