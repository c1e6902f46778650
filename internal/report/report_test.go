package report

import (
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"breadcrumb-analytics/internal/breadcrumb"
	"breadcrumb-analytics/internal/classify"
)

func crumb(ts time.Time, lat, lon float64, trip int64, speed float64) breadcrumb.Reading {
	return breadcrumb.Reading{
		TStamp:    ts,
		Latitude:  lat,
		Longitude: lon,
		Speed:     sql.NullFloat64{Float64: speed, Valid: true},
		TripID:    sql.NullInt64{Int64: trip, Valid: true},
	}
}

func TestReadingsPerDayOfWeek(t *testing.T) {
	readings := []breadcrumb.Reading{
		// 2023-01-01 Sunday, 2023-01-02 Monday, 2023-01-09 another Monday
		crumb(time.Date(2023, 1, 1, 8, 0, 0, 0, time.UTC), 45.5, -122.6, 1, 10),
		crumb(time.Date(2023, 1, 2, 8, 0, 0, 0, time.UTC), 45.5, -122.6, 2, 10),
		crumb(time.Date(2023, 1, 2, 9, 0, 0, 0, time.UTC), 45.5, -122.6, 2, 10),
		crumb(time.Date(2023, 1, 9, 9, 0, 0, 0, time.UTC), 45.5, -122.6, 3, 10),
	}
	counts := ReadingsPerDayOfWeek(readings)
	assert.Equal(t, []DayCount{
		{Day: time.Sunday, Count: 1},
		{Day: time.Monday, Count: 3},
	}, counts)

	total := 0
	for _, c := range counts {
		total += c.Count
	}
	assert.Equal(t, len(readings), total)
}

func TestAvgReadingsPerDayOfWeek(t *testing.T) {
	readings := []breadcrumb.Reading{
		// three Monday readings over two distinct Mondays: 3/2 truncates to 1
		crumb(time.Date(2023, 1, 2, 8, 0, 0, 0, time.UTC), 45.5, -122.6, 1, 10),
		crumb(time.Date(2023, 1, 2, 9, 0, 0, 0, time.UTC), 45.5, -122.6, 1, 10),
		crumb(time.Date(2023, 1, 9, 9, 0, 0, 0, time.UTC), 45.5, -122.6, 2, 10),
	}
	assert.Equal(t, []DayCount{{Day: time.Monday, Count: 1}}, AvgReadingsPerDayOfWeek(readings))
}

func TestReadingsPerDayOfWeekEmpty(t *testing.T) {
	assert.Empty(t, ReadingsPerDayOfWeek(nil))
	assert.Empty(t, AvgReadingsPerDayOfWeek(nil))
}

func TestRushHourActivity(t *testing.T) {
	day := func(hour int) time.Time {
		return time.Date(2023, 1, 2, hour, 30, 0, 0, time.UTC)
	}
	readings := []breadcrumb.Reading{
		crumb(day(7), 45.5, -122.6, 1, 20),
		crumb(day(8), 45.5, -122.6, 1, 40), // 08:30 is still morning rush
		crumb(day(16), 45.5, -122.6, 2, 10),
		crumb(day(9), 45.5, -122.6, 3, 60), // 09:30 is off-peak
		crumb(day(12), 45.5, -122.6, 3, 20),
	}
	stats := RushHourActivity(readings)
	assert.Equal(t, []PeriodStat{
		{Label: MorningRush, Count: 2, AvgSpeed: 30},
		{Label: EveningRush, Count: 1, AvgSpeed: 10},
		{Label: OffPeak, Count: 2, AvgSpeed: 40},
	}, stats)
}

func TestRushHourActivitySkipsEmptyPeriods(t *testing.T) {
	readings := []breadcrumb.Reading{
		crumb(time.Date(2023, 1, 2, 12, 0, 0, 0, time.UTC), 45.5, -122.6, 1, 15),
	}
	stats := RushHourActivity(readings)
	assert.Equal(t, []PeriodStat{{Label: OffPeak, Count: 1, AvgSpeed: 15}}, stats)
}

func TestQuadrantActivity(t *testing.T) {
	ts := time.Date(2023, 1, 2, 12, 0, 0, 0, time.UTC)
	readings := []breadcrumb.Reading{
		crumb(ts, 45.6, -122.5, 1, 10), // NE
		crumb(ts, 45.52, -122.66, 1, 30), // exactly on the split, NE
		crumb(ts, 45.4, -122.7, 2, 20), // SW
	}
	stats := QuadrantActivity(readings, classify.PortlandSplit)
	assert.Equal(t, []PeriodStat{
		{Label: "NE", Count: 2, AvgSpeed: 20},
		{Label: "SW", Count: 1, AvgSpeed: 20},
	}, stats)
}

func TestDayTypeComparison(t *testing.T) {
	readings := []breadcrumb.Reading{
		crumb(time.Date(2023, 1, 2, 8, 0, 0, 0, time.UTC), 45.5, -122.6, 1, 10), // Monday
		crumb(time.Date(2023, 1, 3, 8, 0, 0, 0, time.UTC), 45.5, -122.6, 1, 30), // Tuesday
		crumb(time.Date(2023, 1, 7, 8, 0, 0, 0, time.UTC), 45.5, -122.6, 2, 5),  // Saturday
		crumb(time.Date(2023, 1, 8, 8, 0, 0, 0, time.UTC), 45.5, -122.6, 3, 7),  // Sunday
	}
	stats := DayTypeComparison(readings)
	assert.Equal(t, []PeriodStat{
		{Label: "Weekday", Count: 2, AvgSpeed: 20},
		{Label: "Saturday", Count: 1, AvgSpeed: 5},
		{Label: "Sunday", Count: 1, AvgSpeed: 7},
	}, stats)
}

func TestTripsThroughWindow(t *testing.T) {
	ts := time.Date(2023, 1, 2, 8, 0, 0, 0, time.UTC)
	box := classify.BoundingBox{LatMin: 45.50, LatMax: 45.52, LonMin: -122.68, LonMax: -122.66}
	readings := []breadcrumb.Reading{
		crumb(ts, 45.51, -122.67, 7, 10),
		crumb(ts, 45.50, -122.66, 3, 10), // on the edge, inside
		crumb(ts, 45.60, -122.67, 9, 10), // outside
		crumb(ts, 45.51, -122.67, 7, 10), // duplicate trip
	}
	assert.Equal(t, []int64{3, 7}, TripsThroughWindow(readings, box))
}

func TestTopSpeedAbsent(t *testing.T) {
	_, ok := TopSpeed(nil)
	assert.False(t, ok)
}
