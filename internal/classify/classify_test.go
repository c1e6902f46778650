package classify

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDayOfWeek(t *testing.T) {
	// 2023-01-01 was a Sunday
	sunday := time.Date(2023, time.January, 1, 12, 0, 0, 0, time.UTC)
	assert.Equal(t, time.Sunday, DayOfWeek(sunday, time.UTC))
	assert.Equal(t, 0, int(DayOfWeek(sunday, time.UTC)))

	saturday := time.Date(2023, time.January, 7, 12, 0, 0, 0, time.UTC)
	assert.Equal(t, 6, int(DayOfWeek(saturday, time.UTC)))

	// re-evaluation gives the same answer
	assert.Equal(t, DayOfWeek(sunday, time.UTC), DayOfWeek(sunday, time.UTC))
}

func TestHourOfDayLocationIsExplicit(t *testing.T) {
	ts := time.Date(2023, time.June, 15, 23, 30, 0, 0, time.UTC)
	assert.Equal(t, 23, HourOfDay(ts, time.UTC))

	// the same instant in a +02:00 zone is a different hour (and day)
	plus2 := time.FixedZone("plus2", 2*3600)
	assert.Equal(t, 1, HourOfDay(ts, plus2))
	assert.NotEqual(t, DayOfWeek(ts, time.UTC), DayOfWeek(ts, plus2))
}

func TestIsRushHour(t *testing.T) {
	tests := []struct {
		hour int
		want bool
	}{
		{6, false},
		{7, true},
		{8, true}, // 08:00-08:59 is still rush
		{9, false},
		{15, false},
		{16, true},
		{17, true},
		{18, false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, IsRushHour(tt.hour), "hour %d", tt.hour)
	}
	assert.True(t, IsMorningRush(7))
	assert.False(t, IsMorningRush(16))
	assert.True(t, IsEveningRush(17))
	assert.False(t, IsEveningRush(8))
}

func TestBoundingBoxInclusiveEdges(t *testing.T) {
	box := BoundingBox{LatMin: 45.0, LatMax: 46.0, LonMin: -123.0, LonMax: -122.0}

	assert.True(t, box.Contains(45.5, -122.5))
	assert.True(t, box.Contains(45.0, -122.5), "south edge is inside")
	assert.True(t, box.Contains(46.0, -123.0), "corner is inside")
	assert.False(t, box.Contains(44.999, -122.5))
	assert.False(t, box.Contains(45.5, -121.999))
}

func TestQuadrantOf(t *testing.T) {
	split := PortlandSplit
	tests := []struct {
		name     string
		lat, lon float64
		want     Quadrant
	}{
		{"northeast", 45.6, -122.5, Northeast},
		{"northwest", 45.6, -122.7, Northwest},
		{"southeast", 45.4, -122.5, Southeast},
		{"southwest", 45.4, -122.7, Southwest},
		{"exact split point goes northeast", 45.52, -122.66, Northeast},
		{"on latitude split only", 45.52, -122.7, Northwest},
		{"on longitude split only", 45.4, -122.66, Southeast},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, QuadrantOf(tt.lat, tt.lon, split))
		})
	}
}
