package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"
)

// Config holds all importer settings, populated from environment variables.
// Source files are local paths: downloading and unzipping the upstream
// archives is the job of the surrounding cron tooling, not this process.
type Config struct {
	FacilitiesCSV string // ElectricityProductionPlant.csv; empty skips facilities
	CatalogueDir  string // directory holding the catalogue CSVs
	ProductionCSV string // ogd104 daily production; empty skips production
	TradeCSV      string // ogd107 hourly trade; empty skips trade
	DestRoot      string // output root; files land in <DestRoot>/data

	GeocodeCachePath string
	CacheSaveEvery   int // persist the cache after this many new lookups

	NominatimBaseURL   string
	NominatimUserAgent string
	NominatimTimeout   time.Duration
	GeocodeDelay       time.Duration // minimum spacing between Nominatim requests

	LogLevel    string
	LogFormat   string
	MetricsAddr string // empty disables the debug metrics listener
}

// minGeocodeDelay is the floor imposed by the Nominatim usage policy.
const minGeocodeDelay = 1500 * time.Millisecond

// Load reads configuration from environment variables, applying defaults
// where unset.
func Load() (*Config, error) {
	nominatimTimeout, err := parseDuration("NOMINATIM_TIMEOUT", "10s")
	if err != nil {
		return nil, err
	}

	geocodeDelay, err := parseDuration("GEOCODE_DELAY", "1.5s")
	if err != nil {
		return nil, err
	}
	if geocodeDelay < minGeocodeDelay {
		return nil, fmt.Errorf("GEOCODE_DELAY must be at least %s", minGeocodeDelay)
	}

	saveEvery, err := parsePositiveInt("CACHE_SAVE_EVERY", 100)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		FacilitiesCSV: os.Getenv("FACILITIES_CSV"),
		CatalogueDir:  os.Getenv("CATALOGUE_DIR"),
		ProductionCSV: os.Getenv("PRODUCTION_CSV"),
		TradeCSV:      os.Getenv("TRADE_CSV"),
		DestRoot:      envOrDefault("DEST_ROOT", "."),

		GeocodeCachePath: envOrDefault("GEOCODE_CACHE", "geocode-cache.txt"),
		CacheSaveEvery:   saveEvery,

		NominatimBaseURL:   envOrDefault("NOMINATIM_URL", "https://nominatim.openstreetmap.org"),
		NominatimUserAgent: envOrDefault("NOMINATIM_USER_AGENT", "energy-data-etl (https://github.com/couchcryptid/energy-data-etl)"),
		NominatimTimeout:   nominatimTimeout,
		GeocodeDelay:       geocodeDelay,

		LogLevel:    envOrDefault("LOG_LEVEL", "info"),
		LogFormat:   envOrDefault("LOG_FORMAT", "json"),
		MetricsAddr: os.Getenv("METRICS_ADDR"),
	}

	// Catalogues live next to the facility CSV unless told otherwise.
	if cfg.CatalogueDir == "" && cfg.FacilitiesCSV != "" {
		cfg.CatalogueDir = filepath.Dir(cfg.FacilitiesCSV)
	}

	if cfg.FacilitiesCSV == "" && cfg.ProductionCSV == "" && cfg.TradeCSV == "" {
		return nil, errors.New("at least one of FACILITIES_CSV, PRODUCTION_CSV, TRADE_CSV is required")
	}
	if cfg.DestRoot == "" {
		return nil, errors.New("DEST_ROOT must not be empty")
	}

	return cfg, nil
}

func envOrDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func parseDuration(key, def string) (time.Duration, error) {
	s := envOrDefault(key, def)
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("invalid %s", key)
	}
	return d, nil
}

func parsePositiveInt(key string, def int) (int, error) {
	s := os.Getenv(key)
	if s == "" {
		return def, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("invalid %s", key)
	}
	return n, nil
}
