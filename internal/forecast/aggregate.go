package forecast

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"
)

// Aggregator merges hourly statistics from multiple meters into a single
// per-timestamp series.
type Aggregator struct {
	source StatisticsSource
	policy AggregationPolicy
	logger zerolog.Logger
}

// NewAggregator constructs an aggregator over the given source.
func NewAggregator(source StatisticsSource, policy AggregationPolicy, logger zerolog.Logger) *Aggregator {
	return &Aggregator{
		source: source,
		policy: policy,
		logger: logger.With().Str("component", "aggregator").Logger(),
	}
}

// Combine fetches hourly records for every meter not in the excluded list
// and merges them by timestamp according to the aggregation policy.
// Timestamps are normalised into loc and truncated to the hour. A meter
// whose fetch fails or whose rows cannot be parsed contributes nothing;
// an empty series is a valid outcome meaning "cannot forecast yet", never
// an error. The only error returned is context cancellation.
func (a *Aggregator) Combine(ctx context.Context, meters, excluded []string, start, end time.Time, loc *time.Location) (CombinedSeries, error) {
	skip := make(map[string]struct{}, len(excluded))
	for _, entity := range excluded {
		skip[entity] = struct{}{}
	}

	series := make(CombinedSeries)
	for _, meter := range meters {
		if _, ok := skip[meter]; ok {
			continue
		}

		records, err := a.source.Hourly(ctx, meter, start, end)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return nil, err
			}
			a.logger.Warn().Err(err).Str("entity", meter).Msg("statistics unavailable; treating meter as empty")
			continue
		}

		for _, record := range records {
			ts, parseErr := time.Parse(time.RFC3339, record.Start)
			if parseErr != nil {
				a.logger.Warn().Str("entity", meter).Str("start", record.Start).Msg("skipping record with unparseable timestamp")
				continue
			}

			bucket := truncateHour(ts.In(loc))
			switch a.policy {
			case PolicyMeanPassthrough:
				series[bucket] = record.Value
			default:
				series[bucket] += record.Value
			}
		}
	}

	return series, nil
}
