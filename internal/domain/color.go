package domain

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// RGB is an 8-bit-per-channel color.
type RGB struct {
	R uint8 `json:"r"`
	G uint8 `json:"g"`
	B uint8 `json:"b"`
}

// Hex formats the color as "#rrggbb".
func (c RGB) Hex() string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

// MarshalText encodes the color as its hex string.
func (c RGB) MarshalText() ([]byte, error) {
	return []byte(c.Hex()), nil
}

func (c *RGB) UnmarshalText(text []byte) error {
	v, err := ParseHex(string(text))
	if err != nil {
		return err
	}
	*c = v
	return nil
}

// ParseHex parses "#rrggbb" (the leading '#' is optional).
func ParseHex(s string) (RGB, error) {
	s = strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(s) != 6 {
		return RGB{}, fmt.Errorf("parse color %q: want 6 hex digits", s)
	}
	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return RGB{}, fmt.Errorf("parse color %q: %w", s, err)
	}
	return RGB{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v)}, nil
}

func mustHex(s string) RGB {
	c, err := ParseHex(s)
	if err != nil {
		panic(err)
	}
	return c
}

// Palette used by the legend. UnknownColor is the sentinel for absent or
// non-finite values.
var (
	ColorHigh       = mustHex("#27ae60")
	ColorMediumHigh = mustHex("#f39c12")
	ColorMediumLow  = mustHex("#e67e22")
	ColorLow        = mustHex("#e74c3c")
	UnknownColor    = mustHex("#95a5a6")
)

// Gradient is a two-stop linear color scale.
type Gradient struct {
	Start RGB `json:"start"`
	End   RGB `json:"end"`
}

// Reversed swaps the gradient's stops.
func (g Gradient) Reversed() Gradient {
	return Gradient{Start: g.End, End: g.Start}
}

// Interpolate returns the color at position t along the gradient. t is
// clamped into [0,1]; NaN is treated as 0. Channels are rounded to the
// nearest integer.
func Interpolate(t float64, g Gradient) RGB {
	if math.IsNaN(t) {
		t = 0
	}
	t = min(max(t, 0), 1)
	return RGB{
		R: lerpChannel(g.Start.R, g.End.R, t),
		G: lerpChannel(g.Start.G, g.End.G, t),
		B: lerpChannel(g.Start.B, g.End.B, t),
	}
}

func lerpChannel(start, end uint8, t float64) uint8 {
	s := float64(start)
	return uint8(math.Round(s + (float64(end)-s)*t))
}

// Blend composites two colors by per-channel arithmetic mean, rounded to the
// nearest integer. This is not a perceptual blend.
func Blend(a, b RGB) RGB {
	return RGB{
		R: meanChannel(a.R, b.R),
		G: meanChannel(a.G, b.G),
		B: meanChannel(a.B, b.B),
	}
}

func meanChannel(a, b uint8) uint8 {
	return uint8(math.Round((float64(a) + float64(b)) / 2))
}

// ColorFor normalizes value against q and interpolates along g. Non-finite
// values and undefined quartiles map to UnknownColor without interpolation.
func ColorFor(value float64, q Quartiles, g Gradient) RGB {
	t, ok := Normalize(value, q)
	if !ok {
		return UnknownColor
	}
	return Interpolate(t, g)
}

// ColorForRecord is ColorFor over a record's optional value.
func ColorForRecord(r MeasureRecord, q Quartiles, g Gradient) RGB {
	v, ok := r.FiniteValue()
	if !ok {
		return UnknownColor
	}
	return ColorFor(v, q, g)
}

// BucketColor returns the legend color for a classification.
func BucketColor(c Classification) RGB {
	switch c {
	case High:
		return ColorHigh
	case MediumHigh:
		return ColorMediumHigh
	case MediumLow:
		return ColorMediumLow
	case Low:
		return ColorLow
	default:
		return UnknownColor
	}
}

// LegendEntry is one row of the map legend.
type LegendEntry struct {
	Classification Classification `json:"classification"`
	Label          string         `json:"label"`
	Color          RGB            `json:"color"`
}

// Legend returns the legend rows from High down to Low, followed by Unknown.
func Legend() []LegendEntry {
	order := []Classification{High, MediumHigh, MediumLow, Low, Unknown}
	entries := make([]LegendEntry, 0, len(order))
	for _, c := range order {
		entries = append(entries, LegendEntry{Classification: c, Label: c.Label(), Color: BucketColor(c)})
	}
	return entries
}

// legendPositions are the gradient positions sampled for each bucket, from
// High down to Low.
var legendPositions = []float64{1, 0.75, 0.5, 0.25}

// LegendFor returns legend rows whose colors are sampled from g, so the
// legend agrees with markers colored along the same gradient.
func LegendFor(g Gradient) []LegendEntry {
	order := []Classification{High, MediumHigh, MediumLow, Low}
	entries := make([]LegendEntry, 0, len(order)+1)
	for i, c := range order {
		entries = append(entries, LegendEntry{Classification: c, Label: c.Label(), Color: Interpolate(legendPositions[i], g)})
	}
	return append(entries, LegendEntry{Classification: Unknown, Label: Unknown.Label(), Color: UnknownColor})
}

// Marker sizing bounds, in pixels and people.
const (
	minMarkerRadius     = 4.0
	maxMarkerRadius     = 15.0
	defaultMarkerRadius = 6.0
	minMarkerPopulation = 100
	maxMarkerPopulation = 100000
)

// MarkerRadius scales a marker's radius linearly with population, clamped to
// [100, 100000] people. Absent or zero population uses the default radius.
func MarkerRadius(population *int64) float64 {
	if population == nil || *population <= 0 {
		return defaultMarkerRadius
	}
	p := min(max(*population, minMarkerPopulation), maxMarkerPopulation)
	ratio := float64(p-minMarkerPopulation) / float64(maxMarkerPopulation-minMarkerPopulation)
	return minMarkerRadius + (maxMarkerRadius-minMarkerRadius)*ratio
}
