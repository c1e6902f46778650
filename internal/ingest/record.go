// Package ingest handles raw TriMet breadcrumb records: timestamp parsing,
// speed derivation and the daily JSONL files that sit between the collector
// and the loader.
package ingest

import (
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"breadcrumb-analytics/internal/breadcrumb"
)

// Record is one breadcrumb as delivered by the TriMet API.
type Record struct {
	EventNoTrip int64   `json:"EVENT_NO_TRIP"`
	EventNoStop int64   `json:"EVENT_NO_STOP"`
	OpdDate     string  `json:"OPD_DATE"`
	VehicleID   int64   `json:"VEHICLE_ID"`
	Meters      float64 `json:"METERS"`
	ActTime     int64   `json:"ACT_TIME"`
	Latitude    float64 `json:"GPS_LATITUDE"`
	Longitude   float64 `json:"GPS_LONGITUDE"`
	Satellites  int     `json:"GPS_SATELLITES"`
	HDOP        float64 `json:"GPS_HDOP"`
}

// ErrMalformedTimestamp marks OPD_DATE/ACT_TIME values that cannot be parsed.
var ErrMalformedTimestamp = errors.New("malformed timestamp")

var months = map[string]time.Month{
	"JAN": time.January, "FEB": time.February, "MAR": time.March,
	"APR": time.April, "MAY": time.May, "JUN": time.June,
	"JUL": time.July, "AUG": time.August, "SEP": time.September,
	"OCT": time.October, "NOV": time.November, "DEC": time.December,
}

// ParseTimestamp combines an OPD_DATE such as "25DEC2022:00:00:00" with
// ACT_TIME, the seconds elapsed since the service day's midnight. ACT_TIME
// can exceed 86400 for trips running past midnight; the overflow rolls into
// the following day. The result is UTC.
func ParseTimestamp(opdDate string, actTime int64) (time.Time, error) {
	dateStr, _, _ := strings.Cut(opdDate, ":")
	if len(dateStr) != 9 {
		return time.Time{}, fmt.Errorf("%w: OPD_DATE %q", ErrMalformedTimestamp, opdDate)
	}
	day, err := strconv.Atoi(dateStr[:2])
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: OPD_DATE %q", ErrMalformedTimestamp, opdDate)
	}
	month, ok := months[dateStr[2:5]]
	if !ok {
		return time.Time{}, fmt.Errorf("%w: OPD_DATE %q", ErrMalformedTimestamp, opdDate)
	}
	year, err := strconv.Atoi(dateStr[5:])
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: OPD_DATE %q", ErrMalformedTimestamp, opdDate)
	}
	if actTime < 0 {
		return time.Time{}, fmt.Errorf("%w: ACT_TIME %d", ErrMalformedTimestamp, actTime)
	}
	base := time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
	return base.Add(time.Duration(actTime) * time.Second), nil
}

// ServiceKey classifies a service date the way the Trip table wants it.
func ServiceKey(t time.Time) string {
	switch t.Weekday() {
	case time.Saturday:
		return "Saturday"
	case time.Sunday:
		return "Sunday"
	default:
		return "Weekday"
	}
}

// BuildTripsAndReadings turns raw records into Trip and Reading rows. Records
// are sorted by (trip, ACT_TIME); speed is the odometer delta over the time
// delta between consecutive samples of the same trip, so the first sample of
// each trip borrows the second sample's speed, and a single-sample trip gets
// a null speed. Records whose timestamp cannot be parsed are skipped and
// counted in skipped.
func BuildTripsAndReadings(records []Record) (trips []breadcrumb.Trip, readings []breadcrumb.Reading, skipped int) {
	sorted := make([]Record, len(records))
	copy(sorted, records)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].EventNoTrip != sorted[j].EventNoTrip {
			return sorted[i].EventNoTrip < sorted[j].EventNoTrip
		}
		return sorted[i].ActTime < sorted[j].ActTime
	})

	seenTrips := make(map[int64]struct{})
	start := 0
	for start < len(sorted) {
		end := start
		for end < len(sorted) && sorted[end].EventNoTrip == sorted[start].EventNoTrip {
			end++
		}
		tripReadings, n := buildTripReadings(sorted[start:end])
		skipped += n
		readings = append(readings, tripReadings...)

		tripID := sorted[start].EventNoTrip
		if _, ok := seenTrips[tripID]; !ok && len(tripReadings) > 0 {
			seenTrips[tripID] = struct{}{}
			trips = append(trips, breadcrumb.Trip{
				TripID:     tripID,
				VehicleID:  sorted[start].VehicleID,
				ServiceKey: ServiceKey(tripReadings[0].TStamp),
				Direction:  "Out",
			})
		}
		start = end
	}
	return trips, readings, skipped
}

func buildTripReadings(recs []Record) (readings []breadcrumb.Reading, skipped int) {
	var prev *Record
	for i := range recs {
		rec := recs[i]
		ts, err := ParseTimestamp(rec.OpdDate, rec.ActTime)
		if err != nil {
			skipped++
			continue
		}
		var speed sql.NullFloat64
		if prev != nil {
			if dt := rec.ActTime - prev.ActTime; dt > 0 {
				speed = sql.NullFloat64{Float64: (rec.Meters - prev.Meters) / float64(dt), Valid: true}
			}
		}
		readings = append(readings, breadcrumb.Reading{
			TStamp:    ts,
			Latitude:  rec.Latitude,
			Longitude: rec.Longitude,
			Speed:     speed,
			TripID:    sql.NullInt64{Int64: rec.EventNoTrip, Valid: true},
		})
		prev = &recs[i]
	}
	// first sample has no delta; borrow the second sample's speed
	if len(readings) > 1 && readings[1].Speed.Valid {
		readings[0].Speed = readings[1].Speed
	}
	return readings, skipped
}
