package storage

import (
	"time"

	"github.com/shopspring/decimal"
)

// MeterStatistic is one hourly recorder row for a meter entity. Kind is
// "sum" for accumulated energy readings and "mean" for power readings.
type MeterStatistic struct {
	EntityID  string
	Bucket    time.Time
	Value     decimal.Decimal
	Kind      string
	CreatedAt time.Time
}

// ForecastRun records metadata about one forecast computation for
// auditing. Forecast values themselves are never persisted; every run
// recomputes from the historical window.
type ForecastRun struct {
	ID        int64
	RunAt     time.Time
	Meters    int
	Points    int
	Status    string
	Error     *string
	CreatedAt time.Time
}

// Run statuses recorded in forecast_runs.
const (
	RunStatusComplete    = "complete"
	RunStatusUnavailable = "unavailable"
)
