// Package forecast implements the consumption forecast pipeline: hourly
// statistics from multiple meters are merged into one combined series,
// bucketed into weekday and weekend hour-of-day profiles with vacation
// days removed, and projected onto the next 24 hours. Derived rollups
// (next hour, today, tomorrow, sun-bounded sums) are computed from the
// projection.
package forecast

import (
	"context"
	"time"
)

// KeyLayout is the canonical layout of ForecastMap keys: hour granularity
// with minutes and seconds zeroed, no zone designator.
const KeyLayout = "2006-01-02T15:04:05"

// StatRecord is one hourly statistic row as handed over by a statistics
// source. Start is a serialised RFC 3339 timestamp; rows the recorder
// could not serialise cleanly are skipped during aggregation rather than
// failing the run.
type StatRecord struct {
	Start string
	Value float64
}

// Event is a raw calendar event with serialised RFC 3339 bounds.
type Event struct {
	Start string
	End   string
}

// StatisticsSource supplies hourly statistics for an entity within
// [start, end).
type StatisticsSource interface {
	Hourly(ctx context.Context, entityID string, start, end time.Time) ([]StatRecord, error)
}

// CalendarSource supplies the current events of a calendar entity.
type CalendarSource interface {
	Events(ctx context.Context, calendarID string) ([]Event, error)
}

// AstroEvent names a solar event supplied by an astronomical source.
type AstroEvent int

const (
	// Sunrise is the local sunrise instant of a calendar date.
	Sunrise AstroEvent = iota
	// Sunset is the local sunset instant of a calendar date.
	Sunset
)

// AstroSource resolves solar event instants per calendar date. The second
// return value is false when the event does not occur on that date, for
// example during polar night.
type AstroSource interface {
	Event(kind AstroEvent, date Date) (time.Time, bool)
}

// Date identifies a calendar day independent of clock time.
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

// DateOf extracts the calendar date of an instant in its own location.
func DateOf(t time.Time) Date {
	year, month, day := t.Date()
	return Date{Year: year, Month: month, Day: day}
}

// AggregationPolicy selects how per-meter values at the same timestamp
// combine. Energy meters report accumulated sums and add across meters;
// a single mean-type power source passes its value through unchanged.
type AggregationPolicy int

const (
	// PolicySum adds contributions from all meters per timestamp.
	PolicySum AggregationPolicy = iota
	// PolicyMeanPassthrough inserts the single meter's value as-is.
	PolicyMeanPassthrough
)

func (p AggregationPolicy) String() string {
	if p == PolicyMeanPassthrough {
		return "mean"
	}
	return "sum"
}

// CombinedSeries maps hour-aligned timestamps to aggregated values.
type CombinedSeries map[time.Time]float64

// VacationDateSet holds calendar dates excluded from profile learning.
type VacationDateSet map[Date]struct{}

// Contains reports whether the date is excluded.
func (s VacationDateSet) Contains(d Date) bool {
	_, ok := s[d]
	return ok
}

// HourlyProfile holds historical values per hour of day, split by
// day-type. Profiles are rebuilt from scratch on every run.
type HourlyProfile struct {
	Weekday [24][]float64
	Weekend [24][]float64
}

// Bucket returns the values observed at the given hour under the given
// day-type.
func (p *HourlyProfile) Bucket(hour int, weekend bool) []float64 {
	if weekend {
		return p.Weekend[hour]
	}
	return p.Weekday[hour]
}

// ForecastMap maps canonical hour keys (KeyLayout) to projected values,
// rounded to two decimals. An empty map means "no history yet", which is
// distinct from a forecast of zeros.
type ForecastMap map[string]float64

// Key renders the canonical map key for an instant, truncated to the
// hour in its own location.
func Key(t time.Time) string {
	return truncateHour(t).Format(KeyLayout)
}

// truncateHour zeroes minutes and seconds in the instant's own location.
// time.Truncate rounds against absolute time, which misbehaves for zones
// with non-zero minute offsets.
func truncateHour(t time.Time) time.Time {
	year, month, day := t.Date()
	return time.Date(year, month, day, t.Hour(), 0, 0, 0, t.Location())
}

// midnight returns the start of the instant's calendar day.
func midnight(t time.Time) time.Time {
	year, month, day := t.Date()
	return time.Date(year, month, day, 0, 0, 0, 0, t.Location())
}

func isWeekend(t time.Time) bool {
	wd := t.Weekday()
	return wd == time.Saturday || wd == time.Sunday
}
