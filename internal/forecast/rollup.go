package forecast

import (
	"fmt"
	"time"
)

// RollupKind names a derived value computed from a 24-hour forecast.
type RollupKind int

const (
	RollupNextHour RollupKind = iota
	RollupToday
	RollupTodayRemaining
	RollupTomorrow
	RollupTodayToSunset
	RollupTomorrowToSunrise
)

// RollupKinds lists every rollup in presentation order.
func RollupKinds() []RollupKind {
	return []RollupKind{
		RollupNextHour,
		RollupToday,
		RollupTodayRemaining,
		RollupTomorrow,
		RollupTodayToSunset,
		RollupTomorrowToSunrise,
	}
}

func (k RollupKind) String() string {
	switch k {
	case RollupNextHour:
		return "next_hour"
	case RollupToday:
		return "today"
	case RollupTodayRemaining:
		return "today_remaining"
	case RollupTomorrow:
		return "tomorrow"
	case RollupTodayToSunset:
		return "today_to_sunset"
	case RollupTomorrowToSunrise:
		return "tomorrow_to_sunrise"
	default:
		return fmt.Sprintf("rollup(%d)", int(k))
	}
}

// ParseRollupKind resolves a rollup name as used on the CLI and the API.
func ParseRollupKind(name string) (RollupKind, error) {
	for _, kind := range RollupKinds() {
		if kind.String() == name {
			return kind, nil
		}
	}
	return 0, fmt.Errorf("unknown rollup kind %q", name)
}

// RollupResult carries one derived value and the reference instant it was
// computed against. Valid is false only for a next-hour lookup whose
// forecast entry is missing, which is distinct from a forecast of zero.
type RollupResult struct {
	Kind  RollupKind
	At    time.Time
	Value float64
	Valid bool
}

// Calculator derives bounded-range values from a forecast map. Sunrise
// and sunset bounds come from the astronomical source; a nil source
// degrades the sun-bounded rollups to zero.
type Calculator struct {
	astro AstroSource
}

// NewCalculator constructs a rollup calculator.
func NewCalculator(astro AstroSource) *Calculator {
	return &Calculator{astro: astro}
}

// Compute evaluates one rollup against the forecast at the reference
// instant. Sums step hour by hour through [from, to) and count missing
// keys as zero; results are rounded to two decimals.
func (c *Calculator) Compute(kind RollupKind, fm ForecastMap, now time.Time) RollupResult {
	result := RollupResult{Kind: kind, At: now, Valid: true}

	hourStart := truncateHour(now)
	dayStart := midnight(now)
	tomorrowStart := dayStart.Add(24 * time.Hour)

	switch kind {
	case RollupNextHour:
		value, ok := fm[Key(hourStart.Add(time.Hour))]
		result.Value = value
		result.Valid = ok
	case RollupToday:
		result.Value = sumRange(fm, dayStart, tomorrowStart)
	case RollupTodayRemaining:
		result.Value = sumRange(fm, hourStart, tomorrowStart)
	case RollupTomorrow:
		result.Value = sumRange(fm, tomorrowStart, tomorrowStart.Add(24*time.Hour))
	case RollupTodayToSunset:
		result.Value = c.sumToSolarEvent(fm, hourStart, Sunset, DateOf(now))
	case RollupTomorrowToSunrise:
		result.Value = c.sumToSolarEvent(fm, tomorrowStart, Sunrise, DateOf(tomorrowStart))
	}

	result.Value = round2(result.Value)
	return result
}

// sumToSolarEvent sums [from, event). An undefined event, or one not
// after the range start, yields exactly zero.
func (c *Calculator) sumToSolarEvent(fm ForecastMap, from time.Time, kind AstroEvent, date Date) float64 {
	if c.astro == nil {
		return 0
	}
	event, ok := c.astro.Event(kind, date)
	if !ok || !event.After(from) {
		return 0
	}
	return sumRange(fm, from, event)
}

func sumRange(fm ForecastMap, from, to time.Time) float64 {
	var total float64
	for ts := from; ts.Before(to); ts = ts.Add(time.Hour) {
		total += fm[Key(ts)]
	}
	return total
}
