// Package report assembles the classifier and aggregator into the reporting
// scenarios the analytics consumers ask for. Each scenario is a single
// parameterized classify-then-group call; the time zone for every bucket is
// UTC, matching how the breadcrumb feed stores timestamps.
package report

import (
	"time"

	"breadcrumb-analytics/internal/aggregate"
	"breadcrumb-analytics/internal/breadcrumb"
	"breadcrumb-analytics/internal/classify"
)

// Period labels for the rush-hour and day-type comparisons.
const (
	MorningRush = "am_rush"
	EveningRush = "pm_rush"
	OffPeak     = "off_peak"
)

// DayCount is a per-day-of-week tally, ordered Sunday through Saturday.
type DayCount struct {
	Day   time.Weekday
	Count int
}

// PeriodStat is a labeled count plus average speed.
type PeriodStat struct {
	Label    string
	Count    int
	AvgSpeed float64
}

func dayKey(r breadcrumb.Reading) (string, bool) {
	return classify.DayOfWeek(r.TStamp, time.UTC).String(), true
}

func periodKey(r breadcrumb.Reading) (string, bool) {
	h := classify.HourOfDay(r.TStamp, time.UTC)
	switch {
	case classify.IsMorningRush(h):
		return MorningRush, true
	case classify.IsEveningRush(h):
		return EveningRush, true
	default:
		return OffPeak, true
	}
}

// ReadingsPerDayOfWeek counts readings per day of week.
func ReadingsPerDayOfWeek(readings []breadcrumb.Reading) []DayCount {
	return orderByDay(aggregate.CountBy(readings, dayKey))
}

// AvgReadingsPerDayOfWeek divides each day's reading count by the number of
// distinct dates observed for that day, truncating toward zero.
func AvgReadingsPerDayOfWeek(readings []breadcrumb.Reading) []DayCount {
	return orderByDay(aggregate.AvgReadingsPerDay(readings, dayKey))
}

func orderByDay(counts map[string]int) []DayCount {
	out := make([]DayCount, 0, 7)
	for d := time.Sunday; d <= time.Saturday; d++ {
		if n, ok := counts[d.String()]; ok {
			out = append(out, DayCount{Day: d, Count: n})
		}
	}
	return out
}

// TopSpeed is the maximum observed speed; ok is false with no speed data.
func TopSpeed(readings []breadcrumb.Reading) (float64, bool) {
	return aggregate.MaxSpeed(readings)
}

// FastestTrips lists the n trips with the highest average speed, with their
// reading counts and mean positions.
func FastestTrips(readings []breadcrumb.Reading, n int) []aggregate.TripSpeed {
	return aggregate.TopTripsBySpeed(readings, n)
}

// LongestTrip reports the trip spanning the most time between its first and
// last breadcrumb.
func LongestTrip(readings []breadcrumb.Reading) (aggregate.TripDuration, bool) {
	return aggregate.LongestTripByDuration(readings)
}

// TripsThroughWindow lists, ascending, the trips with at least one reading
// inside the window.
func TripsThroughWindow(readings []breadcrumb.Reading, box classify.BoundingBox) []int64 {
	return aggregate.DistinctTripIDsMatching(readings, func(r breadcrumb.Reading) bool {
		return box.Contains(r.Latitude, r.Longitude)
	})
}

// VehicleSpeedHistogram counts distinct vehicles per exact speed value.
func VehicleSpeedHistogram(readings []breadcrumb.Reading, trips []breadcrumb.Trip) []aggregate.SpeedBucket {
	return aggregate.SpeedHistogram(readings, trips)
}

// RushHourActivity compares reading volume and average speed across the
// morning rush, evening rush and off-peak windows.
func RushHourActivity(readings []breadcrumb.Reading) []PeriodStat {
	return orderPeriods(readings, periodKey, []string{MorningRush, EveningRush, OffPeak})
}

// QuadrantActivity compares reading volume and average speed across the four
// quadrants around split.
func QuadrantActivity(readings []breadcrumb.Reading, split classify.SplitPoint) []PeriodStat {
	key := func(r breadcrumb.Reading) (string, bool) {
		return string(classify.QuadrantOf(r.Latitude, r.Longitude, split)), true
	}
	order := []string{
		string(classify.Northeast), string(classify.Northwest),
		string(classify.Southeast), string(classify.Southwest),
	}
	return orderPeriods(readings, key, order)
}

// DayTypeComparison compares weekday, Saturday and Sunday service.
func DayTypeComparison(readings []breadcrumb.Reading) []PeriodStat {
	key := func(r breadcrumb.Reading) (string, bool) {
		switch classify.DayOfWeek(r.TStamp, time.UTC) {
		case time.Saturday:
			return "Saturday", true
		case time.Sunday:
			return "Sunday", true
		default:
			return "Weekday", true
		}
	}
	return orderPeriods(readings, key, []string{"Weekday", "Saturday", "Sunday"})
}

func orderPeriods(readings []breadcrumb.Reading, key aggregate.KeyFunc, order []string) []PeriodStat {
	counts := aggregate.CountBy(readings, key)
	speeds := aggregate.AverageSpeedBy(readings, key)
	out := make([]PeriodStat, 0, len(order))
	for _, label := range order {
		n, ok := counts[label]
		if !ok {
			continue
		}
		out = append(out, PeriodStat{Label: label, Count: n, AvgSpeed: speeds[label].AvgSpeed})
	}
	return out
}
