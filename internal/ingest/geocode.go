package ingest

import (
	"context"
	"log/slog"

	"github.com/paulmach/orb"

	"github.com/couchcryptid/health-equity-map/internal/domain"
)

// Geocoder finds the center of a county.
type Geocoder interface {
	LocateCounty(ctx context.Context, county, state string) (orb.Point, bool, error)
}

// GeocodeStats counts the outcome of LocateMissing per distinct county.
type GeocodeStats struct {
	Lookups  int
	Located  int
	NotFound int
	Failed   int
}

// LocateMissing fills coordinates for records that have none, asking g once
// per distinct county. Lookups that fail or land outside the US bounding box
// leave the record without coordinates. A cancelled context stops further
// lookups and is returned.
func LocateMissing(ctx context.Context, sets []MeasureSet, g Geocoder, logger *slog.Logger) (GeocodeStats, error) {
	var stats GeocodeStats
	found := make(map[domain.LocationKey]*orb.Point)

	for si := range sets {
		records := sets[si].Records
		for i := range records {
			if _, ok := records[i].Point(); ok {
				continue
			}
			key := records[i].Key()
			p, seen := found[key]
			if !seen {
				if err := ctx.Err(); err != nil {
					return stats, err
				}
				p = lookup(ctx, g, key, &stats, logger)
				found[key] = p
			}
			if p != nil {
				records[i].Lat = domain.Float64(p.Lat())
				records[i].Lng = domain.Float64(p.Lon())
			}
		}
	}
	return stats, nil
}

func lookup(ctx context.Context, g Geocoder, key domain.LocationKey, stats *GeocodeStats, logger *slog.Logger) *orb.Point {
	stats.Lookups++
	p, ok, err := g.LocateCounty(ctx, key.Name, key.State)
	switch {
	case err != nil:
		stats.Failed++
		logger.Warn("geocoding failed", "county", key.Name, "state", key.State, "error", err)
		return nil
	case !ok || !domain.InUSBounds(p):
		stats.NotFound++
		logger.Debug("county not located", "county", key.Name, "state", key.State)
		return nil
	}
	stats.Located++
	return &p
}
