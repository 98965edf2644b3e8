package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearInputs(t *testing.T) {
	t.Setenv("FACILITIES_CSV", "")
	t.Setenv("CATALOGUE_DIR", "")
	t.Setenv("PRODUCTION_CSV", "")
	t.Setenv("TRADE_CSV", "")
}

func TestLoad_Defaults(t *testing.T) {
	clearInputs(t)
	t.Setenv("FACILITIES_CSV", "/data/bfe/ElectricityProductionPlant.csv")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "/data/bfe/ElectricityProductionPlant.csv", cfg.FacilitiesCSV)
	assert.Equal(t, "/data/bfe", cfg.CatalogueDir, "catalogues default to the facility CSV directory")
	assert.Equal(t, ".", cfg.DestRoot)
	assert.Equal(t, "geocode-cache.txt", cfg.GeocodeCachePath)
	assert.Equal(t, 100, cfg.CacheSaveEvery)
	assert.Equal(t, "https://nominatim.openstreetmap.org", cfg.NominatimBaseURL)
	assert.Equal(t, 10*time.Second, cfg.NominatimTimeout)
	assert.Equal(t, 1500*time.Millisecond, cfg.GeocodeDelay)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.Empty(t, cfg.MetricsAddr)
}

func TestLoad_Overrides(t *testing.T) {
	clearInputs(t)
	t.Setenv("PRODUCTION_CSV", "/data/ogd104.csv")
	t.Setenv("TRADE_CSV", "/data/ogd107.csv")
	t.Setenv("DEST_ROOT", "/srv/energy")
	t.Setenv("GEOCODE_CACHE", "/var/cache/geocode.txt")
	t.Setenv("CACHE_SAVE_EVERY", "25")
	t.Setenv("NOMINATIM_TIMEOUT", "30s")
	t.Setenv("GEOCODE_DELAY", "2s")
	t.Setenv("LOG_FORMAT", "text")
	t.Setenv("METRICS_ADDR", ":9102")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Empty(t, cfg.FacilitiesCSV)
	assert.Empty(t, cfg.CatalogueDir, "no catalogue dir without a facility CSV")
	assert.Equal(t, "/data/ogd104.csv", cfg.ProductionCSV)
	assert.Equal(t, "/data/ogd107.csv", cfg.TradeCSV)
	assert.Equal(t, "/srv/energy", cfg.DestRoot)
	assert.Equal(t, "/var/cache/geocode.txt", cfg.GeocodeCachePath)
	assert.Equal(t, 25, cfg.CacheSaveEvery)
	assert.Equal(t, 30*time.Second, cfg.NominatimTimeout)
	assert.Equal(t, 2*time.Second, cfg.GeocodeDelay)
	assert.Equal(t, "text", cfg.LogFormat)
	assert.Equal(t, ":9102", cfg.MetricsAddr)
}

func TestLoad_ExplicitCatalogueDirWins(t *testing.T) {
	clearInputs(t)
	t.Setenv("FACILITIES_CSV", "/data/bfe/plants.csv")
	t.Setenv("CATALOGUE_DIR", "/data/catalogues")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "/data/catalogues", cfg.CatalogueDir)
}

func TestLoad_RequiresAnInput(t *testing.T) {
	clearInputs(t)

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "at least one")
}

func TestLoad_RejectsTooSmallGeocodeDelay(t *testing.T) {
	clearInputs(t)
	t.Setenv("FACILITIES_CSV", "/data/plants.csv")
	t.Setenv("GEOCODE_DELAY", "200ms")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "GEOCODE_DELAY")
}

func TestLoad_RejectsBadValues(t *testing.T) {
	cases := map[string]string{
		"NOMINATIM_TIMEOUT": "soon",
		"GEOCODE_DELAY":     "-1s",
		"CACHE_SAVE_EVERY":  "0",
	}
	for key, value := range cases {
		t.Run(key, func(t *testing.T) {
			clearInputs(t)
			t.Setenv("FACILITIES_CSV", "/data/plants.csv")
			t.Setenv(key, value)

			_, err := Load()
			require.Error(t, err)
			assert.Contains(t, err.Error(), key)
		})
	}
}
