package source

import (
	"testing"
	"time"

	"energy-forecast/internal/forecast"
)

func TestAstroSunriseBeforeSunset(t *testing.T) {
	// Berlin, midsummer.
	astro := NewAstro(52.52, 13.405, time.UTC)
	date := forecast.Date{Year: 2024, Month: time.June, Day: 21}

	rise, ok := astro.Event(forecast.Sunrise, date)
	if !ok {
		t.Fatal("expected a sunrise")
	}
	set, ok := astro.Event(forecast.Sunset, date)
	if !ok {
		t.Fatal("expected a sunset")
	}
	if !rise.Before(set) {
		t.Fatalf("sunrise %v must precede sunset %v", rise, set)
	}
	if got := forecast.DateOf(rise); got != date {
		t.Fatalf("sunrise date = %+v, expected %+v", got, date)
	}
}

func TestAstroPolarNightHasNoEvents(t *testing.T) {
	// Longyearbyen in December: the sun never rises.
	astro := NewAstro(78.22, 15.63, time.UTC)
	date := forecast.Date{Year: 2024, Month: time.December, Day: 21}

	if _, ok := astro.Event(forecast.Sunrise, date); ok {
		t.Fatal("expected no sunrise during polar night")
	}
	if _, ok := astro.Event(forecast.Sunset, date); ok {
		t.Fatal("expected no sunset during polar night")
	}
}
