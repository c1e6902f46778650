package breadcrumb

import (
	"database/sql"
	"time"
)

// Reading is one GPS breadcrumb sample. Speed and TripID are nullable in the
// source data: the first sample of a single-point trip has no derivable speed,
// and readings can arrive before their trip record. Aggregations that key on
// a null field drop the row, mirroring SQL NULL semantics.
type Reading struct {
	TStamp    time.Time
	Latitude  float64
	Longitude float64
	Speed     sql.NullFloat64 // meters per second
	TripID    sql.NullInt64
}

// Trip maps a trip to the vehicle that ran it. RouteID is unknown at ingest
// time and populated later, if ever.
type Trip struct {
	TripID     int64
	RouteID    sql.NullString
	VehicleID  int64
	ServiceKey string // Weekday, Saturday or Sunday
	Direction  string
}

// VehiclesByTrip builds the trip_id -> vehicle_id lookup used for
// vehicle-aware aggregations. Readings whose trip is absent from the result
// behave like unmatched rows of an inner join.
func VehiclesByTrip(trips []Trip) map[int64]int64 {
	m := make(map[int64]int64, len(trips))
	for _, t := range trips {
		m[t.TripID] = t.VehicleID
	}
	return m
}
