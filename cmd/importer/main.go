// Command importer converts BFE open-government energy datasets (facility
// registry, daily production, cross-border trade) from CSV into compact
// georeferenced JSON for the web front end. Source files are local paths;
// download and unzip are handled by the surrounding cron tooling.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/couchcryptid/energy-data-etl/internal/adapter/jsonout"
	"github.com/couchcryptid/energy-data-etl/internal/adapter/nominatim"
	"github.com/couchcryptid/energy-data-etl/internal/config"
	"github.com/couchcryptid/energy-data-etl/internal/domain"
	"github.com/couchcryptid/energy-data-etl/internal/observability"
	"github.com/couchcryptid/energy-data-etl/internal/pipeline"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg.LogLevel, cfg.LogFormat)
	metrics := observability.NewMetrics()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.MetricsAddr != "" {
		srv := &http.Server{
			Addr:        cfg.MetricsAddr,
			Handler:     promhttp.Handler(),
			ReadTimeout: 10 * time.Second,
		}
		go func() {
			logger.Info("metrics listener starting", "addr", cfg.MetricsAddr)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("metrics listener error", "error", err)
			}
		}()
		defer srv.Close()
	}

	if err := run(ctx, cfg, logger, metrics, clockwork.NewRealClock()); err != nil {
		logger.Error("import failed", "error", err)
		os.Exit(1)
	}
	logger.Info("import completed successfully")
}

// run executes the configured importers in sequence and writes the outputs.
// Any error is fatal: partial runs leave previous outputs untouched thanks to
// the atomic writer.
func run(ctx context.Context, cfg *config.Config, logger *slog.Logger, metrics *observability.Metrics, clock clockwork.Clock) error {
	dataDir := filepath.Join(cfg.DestRoot, "data")
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}
	writer := jsonout.NewWriter(logger, metrics)

	if cfg.FacilitiesCSV != "" {
		if err := importFacilities(ctx, cfg, dataDir, writer, logger, metrics, clock); err != nil {
			return err
		}
	}

	if cfg.ProductionCSV != "" {
		records, err := importSeries(cfg.ProductionCSV, logger, pipeline.ImportProduction)
		if err != nil {
			return err
		}
		if len(records) > 0 {
			if err := writer.Write(filepath.Join(dataDir, "production.json.gz"), records); err != nil {
				return err
			}
			metrics.RecordsWritten.WithLabelValues("production").Add(float64(len(records)))
			logProductionSummary(logger, records)
		}
	}

	if cfg.TradeCSV != "" {
		records, err := importSeries(cfg.TradeCSV, logger, pipeline.ImportTrade)
		if err != nil {
			return err
		}
		if len(records) > 0 {
			if err := writer.Write(filepath.Join(dataDir, "trade.json.gz"), records); err != nil {
				return err
			}
			metrics.RecordsWritten.WithLabelValues("trade").Add(float64(len(records)))
		}
	}

	// The front end polls this file to show data freshness.
	lastUpdate := filepath.Join(dataDir, "last-update.txt")
	if err := os.WriteFile(lastUpdate, []byte(clock.Now().Format("2006-01-02")), 0o644); err != nil {
		return fmt.Errorf("write last-update: %w", err)
	}
	logger.Info("wrote last update timestamp", "path", lastUpdate)
	return nil
}

func importFacilities(ctx context.Context, cfg *config.Config, dataDir string, writer *jsonout.Writer, logger *slog.Logger, metrics *observability.Metrics, clock clockwork.Clock) error {
	catalogue, err := pipeline.LoadCatalogues(cfg.CatalogueDir, logger)
	if err != nil {
		return err
	}

	client := nominatim.NewClient(cfg.NominatimBaseURL, cfg.NominatimUserAgent, cfg.NominatimTimeout, logger)
	cache := nominatim.NewCachedGeocoder(client, cfg.GeocodeCachePath, cfg.GeocodeDelay, cfg.CacheSaveEvery, logger, metrics)
	if err := cache.Load(); err != nil {
		return err
	}

	f, err := os.Open(cfg.FacilitiesCSV)
	if err != nil {
		return fmt.Errorf("open facilities CSV: %w", err)
	}
	defer f.Close()

	importer := pipeline.NewFacilityImporter(catalogue, domain.RigorousResolver{}, cache, logger, metrics, clock)
	records, _, err := importer.Run(ctx, f)
	if err != nil {
		return err
	}
	if len(records) == 0 {
		return errors.New("no valid facility rows found")
	}

	if err := writer.Write(filepath.Join(dataDir, "facilities.json.gz"), records); err != nil {
		return err
	}
	metrics.RecordsWritten.WithLabelValues("facilities").Add(float64(len(records)))

	logSummary(logger, pipeline.SummarizeFacilities(records))
	return nil
}

// importSeries opens a CSV file and runs one of the time-series reducers on it.
func importSeries[T any](path string, logger *slog.Logger, reduce func(r io.Reader, logger *slog.Logger) ([]T, error)) ([]T, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return reduce(f, logger)
}

// logProductionSummary reports the covered date range and the per-source
// totals over the whole series.
func logProductionSummary(logger *slog.Logger, records []pipeline.ProductionRecord) {
	var totals [pipeline.NumProductionSources]float64
	for _, rec := range records {
		for i, gwh := range rec.Values {
			totals[i] += gwh
		}
	}
	logger.Info("production summary",
		"days", len(records),
		"from", records[0].Date,
		"to", records[len(records)-1].Date,
	)
	for i, name := range pipeline.ProductionSourceNames {
		logger.Info("production by source", "source", name, "total_gwh", fmt.Sprintf("%.1f", totals[i]))
	}
}

func logSummary(logger *slog.Logger, s pipeline.FacilitySummary) {
	logger.Info("facility summary",
		"facilities", s.Total,
		"with_position", s.WithPosition,
		"total_capacity_mw", fmt.Sprintf("%.1f", s.TotalPowerMW),
	)
	categories := make([]string, 0, len(s.BySubCategory))
	for c := range s.BySubCategory {
		categories = append(categories, c)
	}
	sort.Strings(categories)
	for _, c := range categories {
		logger.Info("facilities by source", "source", c, "count", s.BySubCategory[c])
	}
}
