package ingest

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/tealeg/xlsx/v2"

	"github.com/couchcryptid/health-equity-map/internal/domain"
)

// SDOHOptions configures the SDOH workbook reader.
type SDOHOptions struct {
	SheetName string // if set, overrides the first sheet
	// Columns selects the measure columns. Empty selects every column whose
	// name contains "PCT".
	Columns []string
}

// SDOHStats counts workbook rows and how many matched a PLACES location.
type SDOHStats struct {
	Rows      int
	Located   int
	Unlocated int
}

// Locations maps a county to a PLACES record carrying its coordinates and
// population. SDOH rows borrow both, since the workbook has neither.
type Locations map[domain.LocationKey]domain.MeasureRecord

// IndexLocations builds Locations from PLACES measure sets. The first record
// seen for a county wins.
func IndexLocations(sets []MeasureSet) Locations {
	idx := make(Locations)
	for _, set := range sets {
		for _, r := range set.Records {
			if _, ok := idx[r.Key()]; !ok {
				idx[r.Key()] = r
			}
		}
	}
	return idx
}

// countySuffixes are stripped from SDOH county names so they match PLACES
// LocationName values.
var countySuffixes = []string{" City and Borough", " County", " Parish", " Borough", " Census Area", " Municipality"}

// CountyName strips the county-type suffix from an SDOH county name.
func CountyName(s string) string {
	s = strings.TrimSpace(s)
	for _, suffix := range countySuffixes {
		if strings.HasSuffix(s, suffix) {
			return strings.TrimSuffix(s, suffix)
		}
	}
	return s
}

// ReadSDOHWorkbook reads the AHRQ SDOH county workbook and emits one measure
// set per selected column.
func ReadSDOHWorkbook(path string, locs Locations, opts SDOHOptions) ([]MeasureSet, SDOHStats, error) {
	var stats SDOHStats

	f, err := xlsx.OpenFile(path)
	if err != nil {
		return nil, stats, fmt.Errorf("open sdoh workbook: %w", err)
	}
	sheet, err := sheetOf(f, opts.SheetName)
	if err != nil {
		return nil, stats, err
	}
	if len(sheet.Rows) == 0 {
		return nil, stats, nil
	}

	header := rowStrings(sheet.Rows[0])
	col := make(map[string]int, len(header))
	for i, h := range header {
		col[strings.TrimSpace(h)] = i
	}
	for _, required := range []string{"STATE", "COUNTY"} {
		if _, ok := col[required]; !ok {
			return nil, stats, fmt.Errorf("sdoh workbook: missing %s column", required)
		}
	}

	columns := opts.Columns
	if len(columns) == 0 {
		for _, h := range header {
			if strings.Contains(h, "PCT") {
				columns = append(columns, strings.TrimSpace(h))
			}
		}
	}
	sets := make([]MeasureSet, len(columns))
	for i, c := range columns {
		if _, ok := col[c]; !ok {
			return nil, stats, fmt.Errorf("sdoh workbook: missing column %s", c)
		}
		sets[i].Measure = domain.Measure{ID: c, Name: c, ShortName: c, Kind: domain.KindSDOH}
	}

	for _, row := range sheet.Rows[1:] {
		cells := rowStrings(row)
		county := CountyName(cellAt(cells, col["COUNTY"]))
		if county == "" {
			continue
		}
		stats.Rows++

		base := domain.MeasureRecord{LocationName: county, State: strings.TrimSpace(cellAt(cells, col["STATE"]))}
		if loc, ok := locs[base.Key()]; ok {
			base.Lat, base.Lng, base.Population = loc.Lat, loc.Lng, loc.Population
			stats.Located++
		} else {
			stats.Unlocated++
		}

		for i, c := range columns {
			v, ok := parseCell(cellAt(cells, col[c]))
			if !ok {
				continue
			}
			rec := base
			rec.Value = domain.Float64(v)
			if strings.Contains(c, "PCT") {
				rec.Unit = "%"
			}
			sets[i].Records = append(sets[i].Records, rec)
		}
	}
	return sets, stats, nil
}

func sheetOf(f *xlsx.File, name string) (*xlsx.Sheet, error) {
	if name != "" {
		sheet, ok := f.Sheet[name]
		if !ok {
			return nil, fmt.Errorf("sdoh workbook: sheet %q not found", name)
		}
		return sheet, nil
	}
	if len(f.Sheets) == 0 {
		return nil, fmt.Errorf("sdoh workbook: no sheets")
	}
	return f.Sheets[0], nil
}

func rowStrings(row *xlsx.Row) []string {
	cells := make([]string, len(row.Cells))
	for j, cell := range row.Cells {
		cells[j] = cell.String()
	}
	return cells
}

func cellAt(cells []string, i int) string {
	if i < 0 || i >= len(cells) {
		return ""
	}
	return cells[i]
}

// parseCell parses a numeric cell. Empty, unparseable and non-finite cells
// report false.
func parseCell(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}
