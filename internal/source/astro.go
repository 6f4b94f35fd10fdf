package source

import (
	"time"

	"github.com/nathan-osman/go-sunrise"

	"energy-forecast/internal/forecast"
)

// Astro derives sunrise and sunset instants for a fixed observer
// location from solar geometry.
type Astro struct {
	latitude  float64
	longitude float64
	location  *time.Location
}

// NewAstro constructs an astronomical source for the given coordinates.
// Returned instants are expressed in loc.
func NewAstro(latitude, longitude float64, loc *time.Location) *Astro {
	if loc == nil {
		loc = time.Local
	}
	return &Astro{latitude: latitude, longitude: longitude, location: loc}
}

// Event resolves the requested solar event for a calendar date. The
// second return value is false when the sun neither rises nor sets on
// that date (polar day or night).
func (a *Astro) Event(kind forecast.AstroEvent, date forecast.Date) (time.Time, bool) {
	rise, set := sunrise.SunriseSunset(a.latitude, a.longitude, date.Year, date.Month, date.Day)

	var event time.Time
	switch kind {
	case forecast.Sunrise:
		event = rise
	case forecast.Sunset:
		event = set
	}

	if event.IsZero() {
		return time.Time{}, false
	}
	return event.In(a.location), true
}

var _ forecast.AstroSource = (*Astro)(nil)
