package csvstore

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/jszwec/csvutil"

	"github.com/couchcryptid/health-equity-map/internal/domain"
)

// recordRow is one line of a per-measure CSV. Numeric columns are kept as
// text so that thousands separators and float-formatted populations written
// by other tools still parse.
type recordRow struct {
	LocationName    string `csv:"LocationName"`
	Lat             string `csv:"lat"`
	Lng             string `csv:"lng"`
	StateDesc       string `csv:"StateDesc"`
	TotalPopulation string `csv:"TotalPopulation"`
	DataValue       string `csv:"Data_Value"`
	Unit            string `csv:"Data_Value_Unit"`
	ValueType       string `csv:"Data_Value_Type"`
	LowConfidence   string `csv:"Low_Confidence_Limit"`
	HighConfidence  string `csv:"High_Confidence_Limit"`
	MeasureShort    string `csv:"Measure_Short,omitempty"`
}

// measureRow is one line of a measures list.
type measureRow struct {
	ID    string `csv:"MeasureId"`
	Name  string `csv:"Measure_Clean"`
	Short string `csv:"Measure_Short"`
}

// ReadRecords decodes a per-measure CSV.
func ReadRecords(r io.Reader) ([]domain.MeasureRecord, error) {
	dec, err := csvutil.NewDecoder(csv.NewReader(r))
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, fmt.Errorf("read header: %w", err)
	}

	var out []domain.MeasureRecord
	for line := 2; ; line++ {
		var row recordRow
		if err := dec.Decode(&row); err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, fmt.Errorf("decode line %d: %w", line, err)
		}
		rec, err := row.record()
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		out = append(out, rec)
	}
	return out, nil
}

// WriteRecords encodes records as a per-measure CSV. shortName fills the
// Measure_Short column.
func WriteRecords(w io.Writer, records []domain.MeasureRecord, shortName string) error {
	cw := csv.NewWriter(w)
	enc := csvutil.NewEncoder(cw)
	if len(records) == 0 {
		if err := enc.EncodeHeader(recordRow{}); err != nil {
			return fmt.Errorf("encode header: %w", err)
		}
	}
	for i := range records {
		if err := enc.Encode(rowFromRecord(records[i], shortName)); err != nil {
			return fmt.Errorf("encode %s: %w", records[i].LocationName, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// ReadMeasures decodes a measures list.
func ReadMeasures(r io.Reader, kind domain.MeasureKind) ([]domain.Measure, error) {
	dec, err := csvutil.NewDecoder(csv.NewReader(r))
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, fmt.Errorf("read header: %w", err)
	}

	var out []domain.Measure
	for {
		var row measureRow
		if err := dec.Decode(&row); err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, fmt.Errorf("decode measure: %w", err)
		}
		m := domain.Measure{ID: row.ID, Name: strings.TrimSpace(row.Name), ShortName: row.Short, Kind: kind}
		if m.ID == "" {
			m.ID = m.Name
		}
		if m.ShortName == "" {
			m.ShortName = domain.ShortMeasureName(m.Name)
		}
		out = append(out, m)
	}
	return out, nil
}

// WriteMeasures encodes a measures list.
func WriteMeasures(w io.Writer, measures []domain.Measure) error {
	rows := make([]measureRow, len(measures))
	for i, m := range measures {
		rows[i] = measureRow{ID: m.ID, Name: m.Name, Short: m.ShortName}
	}
	b, err := csvutil.Marshal(rows)
	if err != nil {
		return fmt.Errorf("encode measures: %w", err)
	}
	_, err = w.Write(b)
	return err
}

func (row recordRow) record() (domain.MeasureRecord, error) {
	rec := domain.MeasureRecord{
		LocationName: strings.TrimSpace(row.LocationName),
		State:        strings.TrimSpace(row.StateDesc),
		Unit:         row.Unit,
		ValueType:    row.ValueType,
	}
	var err error
	if rec.Lat, err = parseOptionalFloat("lat", row.Lat); err != nil {
		return rec, err
	}
	if rec.Lng, err = parseOptionalFloat("lng", row.Lng); err != nil {
		return rec, err
	}
	if rec.Value, err = parseOptionalFloat("Data_Value", row.DataValue); err != nil {
		return rec, err
	}
	if rec.LowConfidence, err = parseOptionalFloat("Low_Confidence_Limit", row.LowConfidence); err != nil {
		return rec, err
	}
	if rec.HighConfidence, err = parseOptionalFloat("High_Confidence_Limit", row.HighConfidence); err != nil {
		return rec, err
	}
	if rec.Population, err = parsePopulation(row.TotalPopulation); err != nil {
		return rec, err
	}
	return rec, nil
}

func rowFromRecord(r domain.MeasureRecord, shortName string) recordRow {
	row := recordRow{
		LocationName:   r.LocationName,
		Lat:            formatOptionalFloat(r.Lat),
		Lng:            formatOptionalFloat(r.Lng),
		StateDesc:      r.State,
		DataValue:      formatOptionalFloat(r.Value),
		Unit:           r.Unit,
		ValueType:      r.ValueType,
		LowConfidence:  formatOptionalFloat(r.LowConfidence),
		HighConfidence: formatOptionalFloat(r.HighConfidence),
		MeasureShort:   shortName,
	}
	if r.Population != nil {
		row.TotalPopulation = strconv.FormatInt(*r.Population, 10)
	}
	return row
}

// parseOptionalFloat treats an empty cell, NaN and infinities as absent.
// Unparseable text is an error.
func parseOptionalFloat(col, s string) (*float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil, fmt.Errorf("parse %s %q: %w", col, s, err)
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil, nil
	}
	return &v, nil
}

// parsePopulation accepts "1,300,000" and "1300000.0" as well as plain integers.
func parsePopulation(s string) (*int64, error) {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", "")
	if s == "" {
		return nil, nil
	}
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return &n, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return nil, fmt.Errorf("parse TotalPopulation %q", s)
	}
	n := int64(math.Round(f))
	return &n, nil
}

func formatOptionalFloat(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}
