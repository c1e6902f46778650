package ingest

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestParseTimestamp(t *testing.T) {
	tests := []struct {
		name    string
		opdDate string
		actTime int64
		want    time.Time
	}{
		{
			name:    "midnight",
			opdDate: "25DEC2022:00:00:00",
			actTime: 0,
			want:    time.Date(2022, time.December, 25, 0, 0, 0, 0, time.UTC),
		},
		{
			name:    "morning",
			opdDate: "25DEC2022:00:00:00",
			actTime: 8*3600 + 15*60 + 30,
			want:    time.Date(2022, time.December, 25, 8, 15, 30, 0, time.UTC),
		},
		{
			name:    "past midnight rolls into the next day",
			opdDate: "31DEC2022:00:00:00",
			actTime: 86400 + 3600,
			want:    time.Date(2023, time.January, 1, 1, 0, 0, 0, time.UTC),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseTimestamp(tt.opdDate, tt.actTime)
			assert.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseTimestampMalformed(t *testing.T) {
	tests := []struct {
		name    string
		opdDate string
		actTime int64
	}{
		{"empty", "", 0},
		{"short date", "25DEC22:00:00:00", 0},
		{"bad month", "25XXX2022:00:00:00", 0},
		{"bad day", "xxDEC2022:00:00:00", 0},
		{"negative act time", "25DEC2022:00:00:00", -1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseTimestamp(tt.opdDate, tt.actTime)
			assert.ErrorIs(t, err, ErrMalformedTimestamp)
		})
	}
}

func TestServiceKey(t *testing.T) {
	assert.Equal(t, "Sunday", ServiceKey(time.Date(2023, 1, 1, 10, 0, 0, 0, time.UTC)))
	assert.Equal(t, "Weekday", ServiceKey(time.Date(2023, 1, 2, 10, 0, 0, 0, time.UTC)))
	assert.Equal(t, "Saturday", ServiceKey(time.Date(2023, 1, 7, 10, 0, 0, 0, time.UTC)))
}

func TestBuildTripsAndReadings(t *testing.T) {
	records := []Record{
		// trip 200, delivered out of order
		{EventNoTrip: 200, VehicleID: 9, OpdDate: "02JAN2023:00:00:00", ActTime: 120, Meters: 300},
		{EventNoTrip: 200, VehicleID: 9, OpdDate: "02JAN2023:00:00:00", ActTime: 60, Meters: 100},
		{EventNoTrip: 200, VehicleID: 9, OpdDate: "02JAN2023:00:00:00", ActTime: 180, Meters: 360},
		// trip 100, single sample
		{EventNoTrip: 100, VehicleID: 4, OpdDate: "01JAN2023:00:00:00", ActTime: 30, Meters: 50},
	}
	trips, readings, skipped := BuildTripsAndReadings(records)
	assert.Zero(t, skipped)
	assert.Len(t, readings, 4)

	// trips come out in trip-id order with the first reading's service key
	assert.Len(t, trips, 2)
	assert.Equal(t, int64(100), trips[0].TripID)
	assert.Equal(t, int64(4), trips[0].VehicleID)
	assert.Equal(t, "Sunday", trips[0].ServiceKey)
	assert.Equal(t, int64(200), trips[1].TripID)
	assert.Equal(t, "Weekday", trips[1].ServiceKey)

	// trip 100: single sample, no delta to derive speed from
	assert.False(t, readings[0].Speed.Valid)

	// trip 200: (300-100)/(120-60) for the middle sample, borrowed by the first
	first, second, third := readings[1], readings[2], readings[3]
	assert.InDelta(t, 200.0/60.0, second.Speed.Float64, 1e-9)
	assert.True(t, first.Speed.Valid)
	assert.Equal(t, second.Speed.Float64, first.Speed.Float64)
	assert.InDelta(t, 60.0/60.0, third.Speed.Float64, 1e-9)

	assert.Equal(t, time.Date(2023, 1, 2, 0, 1, 0, 0, time.UTC), first.TStamp)
	assert.Equal(t, int64(200), first.TripID.Int64)
}

func TestBuildTripsAndReadingsSkipsBadTimestamps(t *testing.T) {
	records := []Record{
		{EventNoTrip: 1, OpdDate: "garbage", ActTime: 0},
		{EventNoTrip: 1, OpdDate: "01JAN2023:00:00:00", ActTime: 60, Meters: 10},
	}
	trips, readings, skipped := BuildTripsAndReadings(records)
	assert.Equal(t, 1, skipped)
	assert.Len(t, readings, 1)
	assert.Len(t, trips, 1)
}

func TestBuildTripsAndReadingsDuplicateTimestamps(t *testing.T) {
	// zero time delta cannot produce a speed
	records := []Record{
		{EventNoTrip: 1, OpdDate: "01JAN2023:00:00:00", ActTime: 60, Meters: 10},
		{EventNoTrip: 1, OpdDate: "01JAN2023:00:00:00", ActTime: 60, Meters: 20},
	}
	_, readings, skipped := BuildTripsAndReadings(records)
	assert.Zero(t, skipped)
	assert.Len(t, readings, 2)
	assert.False(t, readings[0].Speed.Valid)
	assert.False(t, readings[1].Speed.Valid)
}

func TestBuildTripsAndReadingsEmpty(t *testing.T) {
	trips, readings, skipped := BuildTripsAndReadings(nil)
	assert.Empty(t, trips)
	assert.Empty(t, readings)
	assert.Zero(t, skipped)
}
