package forecast

import (
	"math"
	"time"
)

// Generate projects the profile onto the 24 hours starting at now. Each
// slot takes the arithmetic mean of the matching hour bucket, or zero
// when that bucket holds no history, rounded to two decimals and keyed by
// the canonical hour key in now's location.
func Generate(now time.Time, profile *HourlyProfile) ForecastMap {
	result := make(ForecastMap, 24)

	for offset := 0; offset < 24; offset++ {
		forecastTime := now.Add(time.Duration(offset) * time.Hour)
		values := profile.Bucket(forecastTime.Hour(), isWeekend(forecastTime))

		var value float64
		if len(values) > 0 {
			var sum float64
			for _, v := range values {
				sum += v
			}
			value = sum / float64(len(values))
		}

		result[Key(forecastTime)] = round2(value)
	}

	return result
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
