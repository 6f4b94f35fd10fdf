// Package source implements the forecast engine's accessor contracts:
// hourly statistics from the recorder database, vacation events from a
// REST calendar, and solar events from solar geometry.
package source

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"energy-forecast/internal/forecast"
	"energy-forecast/internal/storage"
)

// StatisticsStore is the slice of the storage layer the source reads.
type StatisticsStore interface {
	ListStatisticsBetween(ctx context.Context, entityID string, from, to time.Time) ([]storage.MeterStatistic, error)
}

// Statistics serves hourly statistic records from the recorder database.
type Statistics struct {
	store  StatisticsStore
	logger zerolog.Logger
}

// NewStatistics constructs a database-backed statistics source.
func NewStatistics(store StatisticsStore, logger zerolog.Logger) *Statistics {
	return &Statistics{
		store:  store,
		logger: logger.With().Str("component", "statistics_source").Logger(),
	}
}

// Hourly returns the entity's statistic rows within [start, end) with
// timestamps serialised to RFC 3339.
func (s *Statistics) Hourly(ctx context.Context, entityID string, start, end time.Time) ([]forecast.StatRecord, error) {
	rows, err := s.store.ListStatisticsBetween(ctx, entityID, start, end)
	if err != nil {
		return nil, fmt.Errorf("list statistics for %s: %w", entityID, err)
	}
	if len(rows) == 0 {
		s.logger.Warn().Str("entity", entityID).Msg("no statistics found for entity")
		return nil, nil
	}

	records := make([]forecast.StatRecord, 0, len(rows))
	for _, row := range rows {
		records = append(records, forecast.StatRecord{
			Start: row.Bucket.Format(time.RFC3339),
			Value: row.Value.InexactFloat64(),
		})
	}
	return records, nil
}

var _ forecast.StatisticsSource = (*Statistics)(nil)
