// Command preprocess converts the raw CDC PLACES county export (and optionally
// the AHRQ SDOH county workbook) into the per-measure CSV layout the heatmap
// service reads.
//
// Usage:
//
//	go run ./cmd/preprocess \
//	  -places data/PLACES__Local_Data_for_Better_Health__County_Data_2020_release.csv \
//	  -sdoh data/SDOH_2020_COUNTY_1_0.xlsx \
//	  -out data
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"time"

	sharedcfg "github.com/couchcryptid/storm-data-shared/config"

	"github.com/couchcryptid/health-equity-map/internal/adapter/mapbox"
	"github.com/couchcryptid/health-equity-map/internal/ingest"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	placesPath := flag.String("places", "", "path to the PLACES long-format county CSV")
	sdohPath := flag.String("sdoh", "", "optional path to the SDOH county workbook (.xlsx)")
	sdohSheet := flag.String("sdoh-sheet", "", "SDOH sheet name (default: first sheet)")
	sdohColumns := flag.String("sdoh-columns", "", "comma-separated SDOH columns (default: every PCT column)")
	valueType := flag.String("value-type", "", `keep only this Data_Value_Type, e.g. "Crude prevalence"`)
	outDir := flag.String("out", "data", "output directory")
	mapboxToken := flag.String("mapbox-token", sharedcfg.EnvOrDefault("MAPBOX_TOKEN", ""), "geocode SDOH counties missing from PLACES (default $MAPBOX_TOKEN)")
	mapboxTimeout := flag.Duration("mapbox-timeout", 5*time.Second, "per-request Mapbox timeout")
	verbose := flag.Bool("v", false, "log every measure file written")
	flag.Parse()

	if *placesPath == "" {
		flag.Usage()
		return fmt.Errorf("missing required flag: -places")
	}

	f, err := os.Open(*placesPath)
	if err != nil {
		return fmt.Errorf("open places: %w", err)
	}
	defer f.Close()

	health, stats, err := ingest.ReadPlaces(f, ingest.PlacesOptions{ValueType: *valueType})
	if err != nil {
		return fmt.Errorf("read places: %w", err)
	}
	log.Printf("places: %d rows, %d kept (no value %d, no geolocation %d, outside US %d, other value type %d)",
		stats.Rows, stats.Kept, stats.NoValue, stats.NoGeolocation, stats.OutOfBounds, stats.OtherValueType)
	log.Printf("places: %d measures", len(health))

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	var sdoh []ingest.MeasureSet
	if *sdohPath != "" {
		opts := ingest.SDOHOptions{SheetName: *sdohSheet}
		if *sdohColumns != "" {
			for _, c := range strings.Split(*sdohColumns, ",") {
				opts.Columns = append(opts.Columns, strings.TrimSpace(c))
			}
		}
		var sstats ingest.SDOHStats
		sdoh, sstats, err = ingest.ReadSDOHWorkbook(*sdohPath, ingest.IndexLocations(health), opts)
		if err != nil {
			return fmt.Errorf("read sdoh: %w", err)
		}
		log.Printf("sdoh: %d counties, %d located, %d without PLACES coordinates, %d measures",
			sstats.Rows, sstats.Located, sstats.Unlocated, len(sdoh))

		if sstats.Unlocated > 0 && *mapboxToken != "" {
			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
			defer stop()
			geocoder := mapbox.NewClient(*mapboxToken, *mapboxTimeout, logger)
			gstats, err := ingest.LocateMissing(ctx, sdoh, geocoder, logger)
			if err != nil {
				return fmt.Errorf("geocode sdoh counties: %w", err)
			}
			log.Printf("mapbox: %d lookups, %d located, %d not found, %d failed",
				gstats.Lookups, gstats.Located, gstats.NotFound, gstats.Failed)
		}
	}

	ws, err := ingest.Write(*outDir, health, sdoh, logger)
	if err != nil {
		return fmt.Errorf("write %s: %w", *outDir, err)
	}
	log.Printf("wrote %d measures, %d files, %d records to %s", ws.Measures, ws.Files, ws.Records, *outDir)
	return nil
}
