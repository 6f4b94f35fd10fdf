package forecast

import (
	"reflect"
	"testing"
	"time"
)

func TestBuildProfileClassifiesDayTypes(t *testing.T) {
	monday := time.Date(2024, 6, 3, 8, 0, 0, 0, time.UTC)
	saturday := time.Date(2024, 6, 8, 8, 0, 0, 0, time.UTC)
	sunday := time.Date(2024, 6, 9, 23, 0, 0, 0, time.UTC)

	series := CombinedSeries{
		monday:   2.0,
		saturday: 5.0,
		sunday:   1.0,
	}

	profile := BuildProfile(series, nil)

	if got := profile.Weekday[8]; !reflect.DeepEqual(got, []float64{2.0}) {
		t.Fatalf("weekday 08:00 bucket = %v", got)
	}
	if got := profile.Weekend[8]; !reflect.DeepEqual(got, []float64{5.0}) {
		t.Fatalf("weekend 08:00 bucket = %v", got)
	}
	if got := profile.Weekend[23]; !reflect.DeepEqual(got, []float64{1.0}) {
		t.Fatalf("weekend 23:00 bucket = %v", got)
	}
	if len(profile.Weekday[23]) != 0 {
		t.Fatal("sunday sample must not land in a weekday bucket")
	}
}

func TestBuildProfileDiscardsVacationDates(t *testing.T) {
	monday := time.Date(2024, 6, 3, 8, 0, 0, 0, time.UTC)
	tuesday := time.Date(2024, 6, 4, 8, 0, 0, 0, time.UTC)

	series := CombinedSeries{monday: 2.0, tuesday: 4.0}
	vacations := VacationDateSet{DateOf(monday): {}}

	profile := BuildProfile(series, vacations)

	if got := profile.Weekday[8]; !reflect.DeepEqual(got, []float64{4.0}) {
		t.Fatalf("vacation sample must be discarded, bucket = %v", got)
	}
}

func TestBuildProfileIsDeterministic(t *testing.T) {
	series := CombinedSeries{
		time.Date(2024, 6, 3, 8, 0, 0, 0, time.UTC): 2.0,
		time.Date(2024, 6, 8, 8, 0, 0, 0, time.UTC): 5.0,
	}
	vacations := VacationDateSet{Date{Year: 2024, Month: time.June, Day: 4}: {}}

	first := BuildProfile(series, vacations)
	second := BuildProfile(series, vacations)

	if !reflect.DeepEqual(first, second) {
		t.Fatal("rebuilding from the same inputs must yield identical buckets")
	}
}
