package domain

import (
	"math"

	"github.com/paulmach/orb"
)

// MeasureKind distinguishes CDC PLACES health measures from SDOH measures.
type MeasureKind string

const (
	KindHealth MeasureKind = "health"
	KindSDOH   MeasureKind = "sdoh"
)

// Granularity is the aggregation level a record set is served at.
type Granularity string

const (
	GranularityCounty Granularity = "county"
	GranularityState  Granularity = "state"
)

// Measure identifies one selectable measure.
type Measure struct {
	ID        string      `json:"id"`
	Name      string      `json:"name"`
	ShortName string      `json:"short_name,omitempty"`
	Kind      MeasureKind `json:"kind"`
}

// Query parameterizes a record-set fetch from the data source.
type Query struct {
	MeasureID   string
	Kind        MeasureKind
	Granularity Granularity
}

// MeasureRecord is one location's observation of a measure. Optional fields
// are pointers so that absent and present-but-zero stay distinct.
type MeasureRecord struct {
	LocationName   string   `json:"location_name"`
	State          string   `json:"state"`
	Lat            *float64 `json:"lat,omitempty"`
	Lng            *float64 `json:"lng,omitempty"`
	Value          *float64 `json:"value,omitempty"`
	Population     *int64   `json:"population,omitempty"`
	LowConfidence  *float64 `json:"low_confidence,omitempty"`
	HighConfidence *float64 `json:"high_confidence,omitempty"`
	Unit           string   `json:"unit,omitempty"`
	ValueType      string   `json:"value_type,omitempty"`
}

// FiniteValue returns the record's value and whether it is present and finite.
func (r MeasureRecord) FiniteValue() (float64, bool) {
	if r.Value == nil || !isFinite(*r.Value) {
		return 0, false
	}
	return *r.Value, true
}

// Point returns the record's coordinates as an orb.Point (lng, lat).
// ok is false when either coordinate is missing or non-finite.
func (r MeasureRecord) Point() (orb.Point, bool) {
	if r.Lat == nil || r.Lng == nil || !isFinite(*r.Lat) || !isFinite(*r.Lng) {
		return orb.Point{}, false
	}
	return orb.Point{*r.Lng, *r.Lat}, true
}

// PositivePopulation returns the population when present and greater than zero.
func (r MeasureRecord) PositivePopulation() (int64, bool) {
	if r.Population == nil || *r.Population <= 0 {
		return 0, false
	}
	return *r.Population, true
}

// Key returns the location identity used to pair health and SDOH records.
func (r MeasureRecord) Key() LocationKey {
	return LocationKey{Name: r.LocationName, State: r.State}
}

// LocationKey is the (location name, state) identity of a record.
type LocationKey struct {
	Name  string
	State string
}

// FiniteValues extracts the finite values of records, preserving order.
func FiniteValues(records []MeasureRecord) []float64 {
	values := make([]float64, 0, len(records))
	for i := range records {
		if v, ok := records[i].FiniteValue(); ok {
			values = append(values, v)
		}
	}
	return values
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// Float64 returns a pointer to v, for building records in code and tests.
func Float64(v float64) *float64 { return &v }

// Int64 returns a pointer to v.
func Int64(v int64) *int64 { return &v }
