package forecast

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

// DefaultWindow is the trailing history window a forecast learns from.
const DefaultWindow = 30 * 24 * time.Hour

// Request describes one forecast computation. A fresh request is built
// per run; the engine carries no state between runs.
type Request struct {
	Now        time.Time
	Meters     []string
	Excluded   []string
	CalendarID string
}

// EngineOptions tune the pipeline.
type EngineOptions struct {
	Policy AggregationPolicy
	Window time.Duration
}

// Engine runs the full pipeline: aggregate history, resolve vacations,
// build the hourly profile, and project it onto the next 24 hours.
type Engine struct {
	aggregator *Aggregator
	resolver   *Resolver
	window     time.Duration
	logger     zerolog.Logger
}

// NewEngine constructs an engine over the given accessors.
func NewEngine(stats StatisticsSource, calendar CalendarSource, opts EngineOptions, logger zerolog.Logger) *Engine {
	window := opts.Window
	if window <= 0 {
		window = DefaultWindow
	}

	return &Engine{
		aggregator: NewAggregator(stats, opts.Policy, logger),
		resolver:   NewResolver(calendar, logger),
		window:     window,
		logger:     logger.With().Str("component", "forecast_engine").Logger(),
	}
}

// Generate computes the 24-hour forecast starting at req.Now. An empty
// map means no usable history was found, which callers must treat as
// "cannot forecast yet" rather than a forecast of zeros. The only error
// returned is context cancellation.
func (e *Engine) Generate(ctx context.Context, req Request) (ForecastMap, error) {
	start := req.Now.Add(-e.window)
	e.logger.Debug().
		Time("from", start).
		Time("to", req.Now).
		Strs("meters", req.Meters).
		Strs("excluded", req.Excluded).
		Str("calendar", req.CalendarID).
		Msg("generating forecast")

	vacations, err := e.resolver.Dates(ctx, req.CalendarID)
	if err != nil {
		return nil, err
	}

	series, err := e.aggregator.Combine(ctx, req.Meters, req.Excluded, start, req.Now, req.Now.Location())
	if err != nil {
		return nil, err
	}
	if len(series) == 0 {
		e.logger.Warn().Strs("meters", req.Meters).Msg("no historical statistics; forecast unavailable")
		return ForecastMap{}, nil
	}

	profile := BuildProfile(series, vacations)
	return Generate(req.Now, profile), nil
}
