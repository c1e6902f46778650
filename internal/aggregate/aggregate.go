// Package aggregate groups classified readings by caller-supplied keys and
// reduces each group to counts, averages, extremes and durations. Every
// reduction is order-independent and returns an empty map/slice or an absent
// scalar on empty input rather than an error.
package aggregate

import (
	"sort"
	"time"

	"breadcrumb-analytics/internal/breadcrumb"
)

// KeyFunc maps a reading to a grouping key. Returning ok=false drops the
// reading from the grouping, the way a NULL column drops a row from a
// SQL GROUP BY comparison.
type KeyFunc func(breadcrumb.Reading) (key string, ok bool)

// CountBy counts readings per key.
func CountBy(readings []breadcrumb.Reading, key KeyFunc) map[string]int {
	out := make(map[string]int)
	for _, r := range readings {
		k, ok := key(r)
		if !ok {
			continue
		}
		out[k]++
	}
	return out
}

// CountDistinctDatesBy counts, per key, the number of distinct calendar dates
// (UTC) the key's readings fall on.
func CountDistinctDatesBy(readings []breadcrumb.Reading, key KeyFunc) map[string]int {
	seen := make(map[string]map[string]struct{})
	for _, r := range readings {
		k, ok := key(r)
		if !ok {
			continue
		}
		date := r.TStamp.UTC().Format("2006-01-02")
		if seen[k] == nil {
			seen[k] = make(map[string]struct{})
		}
		seen[k][date] = struct{}{}
	}
	out := make(map[string]int, len(seen))
	for k, dates := range seen {
		out[k] = len(dates)
	}
	return out
}

// AvgReadingsPerDay divides the reading count per key by its distinct date
// count using integer truncation: 100 readings over 3 Mondays is 33, not 34.
func AvgReadingsPerDay(readings []breadcrumb.Reading, key KeyFunc) map[string]int {
	counts := CountBy(readings, key)
	dates := CountDistinctDatesBy(readings, key)
	out := make(map[string]int, len(counts))
	for k, n := range counts {
		if d := dates[k]; d > 0 {
			out[k] = n / d
		}
	}
	return out
}

// SpeedStat is a per-group reading count and mean speed. Readings with a null
// speed contribute to neither.
type SpeedStat struct {
	Count    int
	AvgSpeed float64
}

// AverageSpeedBy groups readings by key and computes count and average speed
// per group. Null-speed readings are excluded entirely, matching AVG over a
// NULL-bearing column paired with COUNT(speed).
func AverageSpeedBy(readings []breadcrumb.Reading, key KeyFunc) map[string]SpeedStat {
	sums := make(map[string]float64)
	counts := make(map[string]int)
	for _, r := range readings {
		if !r.Speed.Valid {
			continue
		}
		k, ok := key(r)
		if !ok {
			continue
		}
		sums[k] += r.Speed.Float64
		counts[k]++
	}
	out := make(map[string]SpeedStat, len(counts))
	for k, n := range counts {
		out[k] = SpeedStat{Count: n, AvgSpeed: sums[k] / float64(n)}
	}
	return out
}

// DistinctTripIDsMatching returns the sorted set of trip IDs having at least
// one reading for which pred holds. Null-trip readings never match.
func DistinctTripIDsMatching(readings []breadcrumb.Reading, pred func(breadcrumb.Reading) bool) []int64 {
	set := make(map[int64]struct{})
	for _, r := range readings {
		if !r.TripID.Valid || !pred(r) {
			continue
		}
		set[r.TripID.Int64] = struct{}{}
	}
	ids := make([]int64, 0, len(set))
	for id := range set {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// TripSpeed summarizes one trip's non-null-speed readings.
type TripSpeed struct {
	TripID   int64
	AvgSpeed float64
	Count    int
	AvgLat   float64
	AvgLon   float64
}

// GroupAverageSpeedByTrip computes, per trip, the average speed and mean
// position over readings carrying both a trip and a speed.
func GroupAverageSpeedByTrip(readings []breadcrumb.Reading) map[int64]TripSpeed {
	type acc struct {
		speed, lat, lon float64
		n               int
	}
	accs := make(map[int64]*acc)
	for _, r := range readings {
		if !r.TripID.Valid || !r.Speed.Valid {
			continue
		}
		a := accs[r.TripID.Int64]
		if a == nil {
			a = &acc{}
			accs[r.TripID.Int64] = a
		}
		a.speed += r.Speed.Float64
		a.lat += r.Latitude
		a.lon += r.Longitude
		a.n++
	}
	out := make(map[int64]TripSpeed, len(accs))
	for id, a := range accs {
		out[id] = TripSpeed{
			TripID:   id,
			AvgSpeed: a.speed / float64(a.n),
			Count:    a.n,
			AvgLat:   a.lat / float64(a.n),
			AvgLon:   a.lon / float64(a.n),
		}
	}
	return out
}

// TopTripsBySpeed returns up to n trips ordered by descending average speed.
// Equal speeds order by ascending trip ID so results are stable across runs.
func TopTripsBySpeed(readings []breadcrumb.Reading, n int) []TripSpeed {
	byTrip := GroupAverageSpeedByTrip(readings)
	trips := make([]TripSpeed, 0, len(byTrip))
	for _, t := range byTrip {
		trips = append(trips, t)
	}
	sort.Slice(trips, func(i, j int) bool {
		if trips[i].AvgSpeed != trips[j].AvgSpeed {
			return trips[i].AvgSpeed > trips[j].AvgSpeed
		}
		return trips[i].TripID < trips[j].TripID
	})
	if n >= 0 && len(trips) > n {
		trips = trips[:n]
	}
	return trips
}

// TripDuration is the observed time span of one trip's readings.
type TripDuration struct {
	TripID   int64
	Start    time.Time
	End      time.Time
	Duration time.Duration
}

// LongestTripByDuration finds the trip with the greatest max(tstamp)-min(tstamp)
// span. When two trips tie, the lowest trip ID wins. ok is false when no
// reading carries a trip ID.
func LongestTripByDuration(readings []breadcrumb.Reading) (TripDuration, bool) {
	spans := make(map[int64]*TripDuration)
	for _, r := range readings {
		if !r.TripID.Valid {
			continue
		}
		s := spans[r.TripID.Int64]
		if s == nil {
			spans[r.TripID.Int64] = &TripDuration{TripID: r.TripID.Int64, Start: r.TStamp, End: r.TStamp}
			continue
		}
		if r.TStamp.Before(s.Start) {
			s.Start = r.TStamp
		}
		if r.TStamp.After(s.End) {
			s.End = r.TStamp
		}
	}
	var best TripDuration
	found := false
	for _, s := range spans {
		s.Duration = s.End.Sub(s.Start)
		if !found || s.Duration > best.Duration ||
			(s.Duration == best.Duration && s.TripID < best.TripID) {
			best = *s
			found = true
		}
	}
	return best, found
}

// SpeedBucket counts the distinct vehicles observed at exactly one speed
// value.
type SpeedBucket struct {
	Speed        float64
	VehicleCount int
}

// SpeedHistogram joins readings to trips and counts distinct vehicles per
// exact speed value, ordered by vehicle count descending then speed
// ascending. The join is inner: readings with a null or dangling trip ID are
// dropped, as are null speeds. Speeds are grouped by exact float64 equality;
// callers with continuous speed feeds should round before calling.
func SpeedHistogram(readings []breadcrumb.Reading, trips []breadcrumb.Trip) []SpeedBucket {
	vehicles := breadcrumb.VehiclesByTrip(trips)
	bySpeed := make(map[float64]map[int64]struct{})
	for _, r := range readings {
		if !r.Speed.Valid || !r.TripID.Valid {
			continue
		}
		veh, ok := vehicles[r.TripID.Int64]
		if !ok {
			continue
		}
		if bySpeed[r.Speed.Float64] == nil {
			bySpeed[r.Speed.Float64] = make(map[int64]struct{})
		}
		bySpeed[r.Speed.Float64][veh] = struct{}{}
	}
	buckets := make([]SpeedBucket, 0, len(bySpeed))
	for speed, vehs := range bySpeed {
		buckets = append(buckets, SpeedBucket{Speed: speed, VehicleCount: len(vehs)})
	}
	sort.Slice(buckets, func(i, j int) bool {
		if buckets[i].VehicleCount != buckets[j].VehicleCount {
			return buckets[i].VehicleCount > buckets[j].VehicleCount
		}
		return buckets[i].Speed < buckets[j].Speed
	})
	return buckets
}

// MaxSpeed returns the greatest non-null speed. ok is false when every
// reading's speed is null, matching MAX over an empty set yielding NULL.
func MaxSpeed(readings []breadcrumb.Reading) (float64, bool) {
	var max float64
	found := false
	for _, r := range readings {
		if !r.Speed.Valid {
			continue
		}
		if !found || r.Speed.Float64 > max {
			max = r.Speed.Float64
			found = true
		}
	}
	return max, found
}
