// Package ingest converts the raw CDC PLACES export and the AHRQ SDOH county
// workbook into per-measure record sets for the csvstore layout.
package ingest

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/jszwec/csvutil"

	"github.com/couchcryptid/health-equity-map/internal/domain"
)

// MeasureSet is one measure and its cleaned records.
type MeasureSet struct {
	Measure domain.Measure
	Records []domain.MeasureRecord
}

// PlacesStats counts what happened to each input row.
type PlacesStats struct {
	Rows           int
	Kept           int
	NoValue        int
	NoGeolocation  int
	OutOfBounds    int
	OtherValueType int
}

// PlacesOptions filters the PLACES export.
type PlacesOptions struct {
	// ValueType keeps only rows whose Data_Value_Type matches, e.g.
	// "Crude prevalence". Empty keeps every row.
	ValueType string
}

// placesRow is the subset of PLACES long-format columns the map uses.
type placesRow struct {
	StateDesc       string `csv:"StateDesc"`
	LocationName    string `csv:"LocationName"`
	Measure         string `csv:"Measure"`
	MeasureID       string `csv:"MeasureId"`
	Unit            string `csv:"Data_Value_Unit"`
	ValueType       string `csv:"Data_Value_Type"`
	DataValue       string `csv:"Data_Value"`
	LowConfidence   string `csv:"Low_Confidence_Limit"`
	HighConfidence  string `csv:"High_Confidence_Limit"`
	TotalPopulation string `csv:"TotalPopulation"`
	Geolocation     string `csv:"Geolocation"`
}

// ReadPlaces reads a PLACES long-format export, drops rows without a numeric
// value or a usable US geolocation, and groups the rest by measure in order of
// first appearance.
func ReadPlaces(r io.Reader, opts PlacesOptions) ([]MeasureSet, PlacesStats, error) {
	var stats PlacesStats

	dec, err := csvutil.NewDecoder(csv.NewReader(r))
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, stats, nil
		}
		return nil, stats, fmt.Errorf("read places header: %w", err)
	}

	index := make(map[string]int)
	var sets []MeasureSet

	for line := 2; ; line++ {
		var row placesRow
		if err := dec.Decode(&row); err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, stats, fmt.Errorf("decode places line %d: %w", line, err)
		}
		stats.Rows++

		if opts.ValueType != "" && row.ValueType != opts.ValueType {
			stats.OtherValueType++
			continue
		}

		rec, reason := row.record()
		switch reason {
		case dropNoValue:
			stats.NoValue++
			continue
		case dropNoGeolocation:
			stats.NoGeolocation++
			continue
		case dropOutOfBounds:
			stats.OutOfBounds++
			continue
		}

		name := strings.TrimSpace(row.Measure)
		i, ok := index[name]
		if !ok {
			id := strings.TrimSpace(row.MeasureID)
			if id == "" {
				id = name
			}
			i = len(sets)
			index[name] = i
			sets = append(sets, MeasureSet{Measure: domain.Measure{
				ID:        id,
				Name:      name,
				ShortName: domain.ShortMeasureName(name),
				Kind:      domain.KindHealth,
			}})
		}
		sets[i].Records = append(sets[i].Records, rec)
		stats.Kept++
	}
	return sets, stats, nil
}

type dropReason int

const (
	keep dropReason = iota
	dropNoValue
	dropNoGeolocation
	dropOutOfBounds
)

func (row placesRow) record() (domain.MeasureRecord, dropReason) {
	value, ok := parseCell(row.DataValue)
	if !ok {
		return domain.MeasureRecord{}, dropNoValue
	}
	p, ok := domain.ParseGeolocation(row.Geolocation)
	if !ok {
		return domain.MeasureRecord{}, dropNoGeolocation
	}
	if !domain.InUSBounds(p) {
		return domain.MeasureRecord{}, dropOutOfBounds
	}

	rec := domain.MeasureRecord{
		LocationName: strings.TrimSpace(row.LocationName),
		State:        strings.TrimSpace(row.StateDesc),
		Lat:          domain.Float64(p.Lat()),
		Lng:          domain.Float64(p.Lon()),
		Value:        domain.Float64(value),
		Unit:         row.Unit,
		ValueType:    row.ValueType,
	}
	if v, ok := parseCell(row.LowConfidence); ok {
		rec.LowConfidence = domain.Float64(v)
	}
	if v, ok := parseCell(row.HighConfidence); ok {
		rec.HighConfidence = domain.Float64(v)
	}
	if v, ok := parseCell(strings.ReplaceAll(row.TotalPopulation, ",", "")); ok {
		rec.Population = domain.Int64(int64(math.Round(v)))
	}
	return rec, keep
}
