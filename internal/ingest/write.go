package ingest

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/couchcryptid/health-equity-map/internal/adapter/csvstore"
	"github.com/couchcryptid/health-equity-map/internal/domain"
)

// WriteStats reports the files Write produced.
type WriteStats struct {
	Measures int
	Files    int
	Records  int
}

// Write lays out measure sets in the directory format csvstore.Store reads:
// measures lists, per-measure county files and, for health measures,
// pre-aggregated state files.
func Write(dir string, health, sdoh []MeasureSet, logger *slog.Logger) (WriteStats, error) {
	var stats WriteStats
	for _, d := range []string{csvstore.HealthCountyDir, csvstore.HealthStateDir, csvstore.SDOHCountyDir} {
		if err := os.MkdirAll(filepath.Join(dir, d), 0o755); err != nil {
			return stats, fmt.Errorf("create %s: %w", d, err)
		}
	}

	groups := []struct {
		list      string
		countyDir string
		stateDir  string
		sets      []MeasureSet
	}{
		{csvstore.HealthMeasuresFile, csvstore.HealthCountyDir, csvstore.HealthStateDir, health},
		{csvstore.SDOHMeasuresFile, csvstore.SDOHCountyDir, "", sdoh},
	}

	for _, g := range groups {
		if len(g.sets) == 0 {
			continue
		}
		seen := make(map[string]string, len(g.sets))
		measures := make([]domain.Measure, 0, len(g.sets))

		for _, set := range g.sets {
			file := domain.SafeFilename(set.Measure.Name)
			if prev, ok := seen[file]; ok {
				return stats, fmt.Errorf("measures %q and %q both map to %s", prev, set.Measure.Name, file)
			}
			seen[file] = set.Measure.Name

			if err := writeRecords(filepath.Join(dir, g.countyDir, file), set.Records, set.Measure.ShortName); err != nil {
				return stats, err
			}
			stats.Files++
			if g.stateDir != "" {
				states := csvstore.StateRecords(domain.AggregateByState(set.Records, nil))
				if err := writeRecords(filepath.Join(dir, g.stateDir, file), states, set.Measure.ShortName); err != nil {
					return stats, err
				}
				stats.Files++
			}
			stats.Records += len(set.Records)
			measures = append(measures, set.Measure)
			logger.Debug("wrote measure", "kind", set.Measure.Kind, "measure", set.Measure.ID, "records", len(set.Records))
		}

		if err := writeMeasures(filepath.Join(dir, g.list), measures); err != nil {
			return stats, err
		}
		stats.Measures += len(measures)
	}
	return stats, nil
}

func writeRecords(path string, records []domain.MeasureRecord, shortName string) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("close %s: %w", path, cerr)
		}
	}()
	if err := csvstore.WriteRecords(f, records, shortName); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

func writeMeasures(path string, measures []domain.Measure) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("close %s: %w", path, cerr)
		}
	}()
	if err := csvstore.WriteMeasures(f, measures); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
