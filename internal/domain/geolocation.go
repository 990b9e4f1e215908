package domain

import (
	"regexp"
	"strconv"

	"github.com/paulmach/orb"
)

// geolocationRe matches the WKT point format used by the PLACES "Geolocation"
// column: "POINT (<lng> <lat>)".
var geolocationRe = regexp.MustCompile(`POINT \(([^ ]+) ([^)]+)\)`)

// ParseGeolocation extracts the point from a PLACES geolocation string.
func ParseGeolocation(s string) (orb.Point, bool) {
	m := geolocationRe.FindStringSubmatch(s)
	if len(m) != 3 {
		return orb.Point{}, false
	}
	lng, errLng := strconv.ParseFloat(m[1], 64)
	lat, errLat := strconv.ParseFloat(m[2], 64)
	if errLng != nil || errLat != nil || !isFinite(lng) || !isFinite(lat) {
		return orb.Point{}, false
	}
	return orb.Point{lng, lat}, true
}

// Rough bounding box for US counties, including Alaska and Hawaii.
var usBounds = orb.Bound{
	Min: orb.Point{-180, 24},
	Max: orb.Point{-65, 72},
}

// InUSBounds reports whether p falls in the US bounding box.
func InUSBounds(p orb.Point) bool {
	return usBounds.Contains(p)
}
