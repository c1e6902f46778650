// Package classify derives categorical tags from a reading's timestamp and
// coordinates. All functions are pure and total over well-formed input.
package classify

import "time"

// DayOfWeek returns the day of week of t evaluated in loc, with Sunday=0
// through Saturday=6 (DOW convention, not ISO-8601).
func DayOfWeek(t time.Time, loc *time.Location) time.Weekday {
	return t.In(loc).Weekday()
}

// HourOfDay returns the hour bucket 0..23 of t evaluated in loc. The location
// is an explicit parameter on purpose: the breadcrumb feed stores naive UTC
// timestamps, and evaluating against the process-local zone would shift every
// rush-hour and day-of-week result.
func HourOfDay(t time.Time, loc *time.Location) int {
	return t.In(loc).Hour()
}

// Date returns the calendar date of t in loc, formatted YYYY-MM-DD.
func Date(t time.Time, loc *time.Location) string {
	return t.In(loc).Format("2006-01-02")
}

// IsMorningRush reports whether hour falls in the 07:00-08:59 window.
func IsMorningRush(hour int) bool {
	return hour == 7 || hour == 8
}

// IsEveningRush reports whether hour falls in the 16:00-17:59 window.
func IsEveningRush(hour int) bool {
	return hour == 16 || hour == 17
}

// IsRushHour reports whether hour is in either rush window. The windows are
// whole-hour buckets: hour 8 (08:00-08:59) is rush, hour 9 is not.
func IsRushHour(hour int) bool {
	return IsMorningRush(hour) || IsEveningRush(hour)
}

// BoundingBox is an axis-aligned coordinate window, inclusive on all edges.
type BoundingBox struct {
	LatMin, LatMax float64
	LonMin, LonMax float64
}

// Contains reports whether the point lies inside the box. Points exactly on
// an edge are inside.
func (b BoundingBox) Contains(lat, lon float64) bool {
	return lat >= b.LatMin && lat <= b.LatMax && lon >= b.LonMin && lon <= b.LonMax
}

// Quadrant is one of four fixed partitions around a split point. It is a flat
// 2x2 grid, not a geocoded region.
type Quadrant string

const (
	Northeast Quadrant = "NE"
	Northwest Quadrant = "NW"
	Southeast Quadrant = "SE"
	Southwest Quadrant = "SW"
)

// SplitPoint is the lat/lon origin of the quadrant grid.
type SplitPoint struct {
	Lat float64
	Lon float64
}

// PortlandSplit is the split point the source dataset partitions around.
var PortlandSplit = SplitPoint{Lat: 45.52, Lon: -122.66}

// QuadrantOf classifies a point relative to split. Points exactly on a split
// axis go to the north/east side.
func QuadrantOf(lat, lon float64, split SplitPoint) Quadrant {
	north := lat >= split.Lat
	east := lon >= split.Lon
	switch {
	case north && east:
		return Northeast
	case north:
		return Northwest
	case east:
		return Southeast
	default:
		return Southwest
	}
}
