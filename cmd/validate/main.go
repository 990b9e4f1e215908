// Command validate checks the cleanliness of a preprocessed data directory:
// measure lists, per-measure county files, and state files. It reports
// missing values, coordinate validity, value and population ranges, and
// whether stored state files agree with aggregating the county files.
//
// Usage:
//
//	go run ./cmd/validate -data-dir data
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"math"
	"os"

	"github.com/couchcryptid/health-equity-map/internal/adapter/csvstore"
	"github.com/couchcryptid/health-equity-map/internal/domain"
)

// phase tracks pass/fail for a validation phase.
type phase struct {
	name   string
	errors []string
}

func (p *phase) errorf(format string, args ...any) {
	p.errors = append(p.errors, fmt.Sprintf(format, args...))
}

func (p *phase) passed() bool { return len(p.errors) == 0 }

// measureData is one measure with its county records loaded.
type measureData struct {
	measure domain.Measure
	records []domain.MeasureRecord
}

func main() {
	dataDir := flag.String("data-dir", "data", "preprocessed data directory")
	flag.Parse()

	os.Exit(run(context.Background(), *dataDir, os.Stdout))
}

func run(ctx context.Context, dataDir string, out io.Writer) int {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	store := csvstore.New(dataDir, logger)

	fmt.Fprintln(out, "=== Health Equity Map Data Validation ===")
	fmt.Fprintln(out)

	lists := &phase{name: "Measure lists"}
	var all []measureData
	for _, kind := range []domain.MeasureKind{domain.KindHealth, domain.KindSDOH} {
		loaded, err := loadKind(ctx, store, kind, lists)
		if err != nil {
			fmt.Fprintf(out, "FATAL: load %s measures: %v\n", kind, err)
			return 1
		}
		all = append(all, loaded...)
	}

	phases := []*phase{
		lists,
		validateValues(all),
		validateCoordinates(all),
		validatePopulation(all),
		validateStateFiles(ctx, store, all),
	}

	fmt.Fprintln(out)
	allPassed := true
	for _, p := range phases {
		status := "\033[32mPASS\033[0m"
		if !p.passed() {
			status = fmt.Sprintf("\033[31mFAIL (%d errors)\033[0m", len(p.errors))
			allPassed = false
		}
		fmt.Fprintf(out, "  %-42s %s\n", p.name, status)
	}

	records := 0
	for _, m := range all {
		records += len(m.records)
	}
	fmt.Fprintln(out)
	fmt.Fprintf(out, "Measures: %d, county records: %d\n", len(all), records)

	for _, p := range phases {
		if p.passed() {
			continue
		}
		fmt.Fprintf(out, "\n--- %s ---\n", p.name)
		for i, e := range p.errors {
			fmt.Fprintf(out, "  [%d] %s\n", i+1, e)
		}
	}

	if allPassed {
		fmt.Fprintln(out, "\nAll validations passed.")
		return 0
	}
	fmt.Fprintln(out, "\nValidation FAILED.")
	return 1
}

func loadKind(ctx context.Context, store *csvstore.Store, kind domain.MeasureKind, p *phase) ([]measureData, error) {
	measures, err := store.ListMeasures(ctx, kind)
	if err != nil {
		return nil, err
	}
	if kind == domain.KindHealth && len(measures) == 0 {
		p.errorf("no health measures listed")
	}

	seen := make(map[string]bool, len(measures))
	out := make([]measureData, 0, len(measures))
	for _, m := range measures {
		if seen[m.ID] {
			p.errorf("%s: duplicate measure id %s", kind, m.ID)
			continue
		}
		seen[m.ID] = true

		records, err := store.FetchRecords(ctx, domain.Query{MeasureID: m.ID, Kind: kind, Granularity: domain.GranularityCounty})
		if err != nil {
			if errors.Is(err, csvstore.ErrMeasureNotFound) {
				p.errorf("%s: listed measure %s has no county file", kind, m.ID)
				continue
			}
			return nil, err
		}
		if len(records) == 0 {
			p.errorf("%s: %s has no records", kind, m.ID)
		}
		out = append(out, measureData{measure: m, records: records})
	}
	return out, nil
}

func validateValues(all []measureData) *phase {
	p := &phase{name: "Values present and in range"}
	for _, m := range all {
		for _, r := range m.records {
			v, ok := r.FiniteValue()
			if !ok {
				p.errorf("%s %s, %s: missing value", m.measure.ID, r.LocationName, r.State)
				continue
			}
			if r.Unit == "%" && (v < 0 || v > 100) {
				p.errorf("%s %s, %s: percentage %.2f outside 0-100", m.measure.ID, r.LocationName, r.State, v)
			}
			if r.LowConfidence != nil && r.HighConfidence != nil &&
				(*r.LowConfidence > v || v > *r.HighConfidence) {
				p.errorf("%s %s, %s: value %.2f outside confidence interval %.2f-%.2f",
					m.measure.ID, r.LocationName, r.State, v, *r.LowConfidence, *r.HighConfidence)
			}
		}
	}
	return p
}

func validateCoordinates(all []measureData) *phase {
	p := &phase{name: "Coordinates within US bounds"}
	for _, m := range all {
		// SDOH counties without a PLACES match carry no coordinates.
		required := m.measure.Kind == domain.KindHealth
		for _, r := range m.records {
			pt, ok := r.Point()
			if !ok {
				if required {
					p.errorf("%s %s, %s: missing coordinates", m.measure.ID, r.LocationName, r.State)
				}
				continue
			}
			if !domain.InUSBounds(pt) {
				p.errorf("%s %s, %s: coordinates (%.4f, %.4f) outside US bounds",
					m.measure.ID, r.LocationName, r.State, pt.Lat(), pt.Lon())
			}
		}
	}
	return p
}

func validatePopulation(all []measureData) *phase {
	p := &phase{name: "Population positive"}
	for _, m := range all {
		if m.measure.Kind != domain.KindHealth {
			continue
		}
		for _, r := range m.records {
			if _, ok := r.PositivePopulation(); !ok {
				p.errorf("%s %s, %s: missing or non-positive population", m.measure.ID, r.LocationName, r.State)
			}
		}
	}
	return p
}

// validateStateFiles compares each stored state file with aggregating the
// county records it was derived from.
func validateStateFiles(ctx context.Context, store *csvstore.Store, all []measureData) *phase {
	p := &phase{name: "State files match county aggregation"}
	for _, m := range all {
		if m.measure.Kind != domain.KindHealth {
			continue
		}
		stored, err := store.FetchRecords(ctx, domain.Query{MeasureID: m.measure.ID, Kind: domain.KindHealth, Granularity: domain.GranularityState})
		if err != nil {
			p.errorf("%s: load state records: %v", m.measure.ID, err)
			continue
		}
		want := make(map[string]domain.StateAggregate)
		for _, a := range domain.AggregateByState(m.records, nil) {
			want[a.State] = a
		}
		if len(stored) != len(want) {
			p.errorf("%s: %d states stored, %d aggregated", m.measure.ID, len(stored), len(want))
		}
		for _, r := range stored {
			agg, ok := want[r.State]
			if !ok {
				p.errorf("%s: stored state %s has no county records", m.measure.ID, r.State)
				continue
			}
			v, ok := r.FiniteValue()
			if !ok || math.Abs(v-agg.Value) > 1e-6 {
				p.errorf("%s %s: stored value %.6f, aggregated %.6f", m.measure.ID, r.State, v, agg.Value)
			}
		}
	}
	return p
}
