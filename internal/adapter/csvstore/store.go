// Package csvstore serves measure lists and record sets from the
// preprocessed CSV directory written by cmd/preprocess.
package csvstore

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/couchcryptid/health-equity-map/internal/domain"
)

// ErrMeasureNotFound is returned when no file exists for a measure.
var ErrMeasureNotFound = errors.New("measure not found")

// Layout of the data directory.
const (
	HealthMeasuresFile = "available_measures.csv"
	SDOHMeasuresFile   = "sdoh_measures.csv"
	HealthCountyDir    = "county_measures"
	HealthStateDir     = "county_state_measures"
	SDOHCountyDir      = "sdoh_measures"
)

// Store reads the preprocessed layout rooted at a directory.
type Store struct {
	dir    string
	logger *slog.Logger
}

// New creates a Store over dir.
func New(dir string, logger *slog.Logger) *Store {
	return &Store{dir: dir, logger: logger}
}

// ListMeasures reads the measures list for kind.
func (s *Store) ListMeasures(ctx context.Context, kind domain.MeasureKind) ([]domain.Measure, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	name := HealthMeasuresFile
	if kind == domain.KindSDOH {
		name = SDOHMeasuresFile
	}

	f, err := os.Open(filepath.Join(s.dir, name))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			s.logger.Warn("measures list missing", "kind", kind, "file", name)
			return []domain.Measure{}, nil
		}
		return nil, fmt.Errorf("open %s: %w", name, err)
	}
	defer f.Close()

	measures, err := ReadMeasures(f, kind)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", name, err)
	}
	return measures, nil
}

// FetchRecords loads the record set for q. State-granularity health queries
// read county_state_measures when present and otherwise aggregate the county
// file.
func (s *Store) FetchRecords(ctx context.Context, q domain.Query) ([]domain.MeasureRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m, err := s.resolve(ctx, q)
	if err != nil {
		return nil, err
	}
	file := domain.SafeFilename(m.Name)

	if q.Granularity == domain.GranularityState {
		if q.Kind == domain.KindHealth {
			records, err := s.readFile(filepath.Join(HealthStateDir, file))
			if err == nil {
				return records, nil
			}
			if !errors.Is(err, ErrMeasureNotFound) {
				return nil, err
			}
		}
		s.logger.Debug("state file missing, aggregating county records", "measure", m.ID)
		county, err := s.readFile(filepath.Join(countyDir(q.Kind), file))
		if err != nil {
			return nil, err
		}
		return StateRecords(domain.AggregateByState(county, nil)), nil
	}

	return s.readFile(filepath.Join(countyDir(q.Kind), file))
}

// resolve finds the measure by ID, falling back to the full name so callers
// may address measures either way.
func (s *Store) resolve(ctx context.Context, q domain.Query) (domain.Measure, error) {
	measures, err := s.ListMeasures(ctx, q.Kind)
	if err != nil {
		return domain.Measure{}, err
	}
	for _, m := range measures {
		if m.ID == q.MeasureID || m.Name == q.MeasureID {
			return m, nil
		}
	}
	return domain.Measure{}, fmt.Errorf("%s measure %q: %w", q.Kind, q.MeasureID, ErrMeasureNotFound)
}

func (s *Store) readFile(rel string) ([]domain.MeasureRecord, error) {
	f, err := os.Open(filepath.Join(s.dir, rel))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%s: %w", rel, ErrMeasureNotFound)
		}
		return nil, fmt.Errorf("open %s: %w", rel, err)
	}
	defer f.Close()

	records, err := ReadRecords(f)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", rel, err)
	}
	s.logger.Debug("loaded measure file", "file", rel, "records", len(records))
	return records, nil
}

func countyDir(kind domain.MeasureKind) string {
	if kind == domain.KindSDOH {
		return SDOHCountyDir
	}
	return HealthCountyDir
}

// StateRecords flattens state aggregates into records named after their
// state, the shape the state files are stored in.
func StateRecords(aggs []domain.StateAggregate) []domain.MeasureRecord {
	out := make([]domain.MeasureRecord, len(aggs))
	for i, a := range aggs {
		r := domain.MeasureRecord{
			LocationName:   a.State,
			State:          a.State,
			Value:          domain.Float64(a.Value),
			Population:     domain.Int64(a.TotalPopulation),
			LowConfidence:  a.LowConfidence,
			HighConfidence: a.HighConfidence,
			Unit:           a.Unit,
			ValueType:      a.ValueType,
		}
		if a.Centroid != nil {
			r.Lng = domain.Float64(a.Centroid.Lon())
			r.Lat = domain.Float64(a.Centroid.Lat())
		}
		out[i] = r
	}
	return out
}
