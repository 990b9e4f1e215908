package domain

import (
	"testing"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
)

func TestParseGeolocation(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  orb.Point
		ok    bool
	}{
		{"travis county", "POINT (-97.7431 30.2672)", orb.Point{-97.7431, 30.2672}, true},
		{"embedded in text", "loc=POINT (-155.5 19.6);", orb.Point{-155.5, 19.6}, true},
		{"empty", "", orb.Point{}, false},
		{"not a point", "LINESTRING (1 2, 3 4)", orb.Point{}, false},
		{"bad number", "POINT (abc 30.1)", orb.Point{}, false},
		{"NaN coordinate", "POINT (NaN 30.1)", orb.Point{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ParseGeolocation(tt.input)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestInUSBounds(t *testing.T) {
	assert.True(t, InUSBounds(orb.Point{-97.7431, 30.2672}), "Austin")
	assert.True(t, InUSBounds(orb.Point{-149.9, 61.2}), "Anchorage")
	assert.False(t, InUSBounds(orb.Point{-0.12, 51.5}), "London")
	assert.False(t, InUSBounds(orb.Point{-80.2, 23.1}), "Havana")
}

func TestMeasureRecord_Point(t *testing.T) {
	r := MeasureRecord{Lat: Float64(30.2672), Lng: Float64(-97.7431)}
	p, ok := r.Point()
	assert.True(t, ok)
	assert.Equal(t, -97.7431, p.Lon())
	assert.Equal(t, 30.2672, p.Lat())

	_, ok = MeasureRecord{Lat: Float64(30)}.Point()
	assert.False(t, ok)
}
