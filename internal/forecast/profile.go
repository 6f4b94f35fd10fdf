package forecast

// BuildProfile buckets the combined series into 24 weekday and 24 weekend
// hour-of-day bins. Samples falling on a vacation date are discarded
// entirely. Empty buckets are a valid terminal state; the generator maps
// them to zero.
func BuildProfile(series CombinedSeries, vacations VacationDateSet) *HourlyProfile {
	profile := &HourlyProfile{}

	for ts, value := range series {
		if vacations.Contains(DateOf(ts)) {
			continue
		}

		hour := ts.Hour()
		if isWeekend(ts) {
			profile.Weekend[hour] = append(profile.Weekend[hour], value)
		} else {
			profile.Weekday[hour] = append(profile.Weekday[hour], value)
		}
	}

	return profile
}
