package nominatim

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/energy-data-etl/internal/domain"
	"github.com/couchcryptid/energy-data-etl/internal/observability"
)

// --- mocks ---

type countingGeocoder struct {
	calls int
	pos   *domain.Position
	err   error
}

func (m *countingGeocoder) Geocode(_ context.Context, _ domain.Address) (*domain.Position, error) {
	m.calls++
	return m.pos, m.err
}

func newTestCache(t *testing.T, inner domain.Geocoder, saveEvery int) *CachedGeocoder {
	t.Helper()
	path := filepath.Join(t.TempDir(), "geocode-cache.txt")
	return NewCachedGeocoder(inner, path, time.Millisecond, saveEvery, slog.Default(), observability.NewMetricsForTesting())
}

var testAddr = domain.Address{Street: "Bundesplatz 3", PostCode: "3005", Municipality: "Bern"}

// --- tests ---

func TestCachedGeocoder_SecondLookupHitsCache(t *testing.T) {
	inner := &countingGeocoder{pos: &domain.Position{Lat: 46.948, Lon: 7.4474}}
	cache := newTestCache(t, inner, 100)
	require.NoError(t, cache.Load())

	p1, err := cache.Geocode(context.Background(), testAddr)
	require.NoError(t, err)
	p2, err := cache.Geocode(context.Background(), testAddr)
	require.NoError(t, err)

	assert.Equal(t, 1, inner.calls, "second lookup must not hit the network")
	assert.Equal(t, p1, p2)
}

func TestCachedGeocoder_NegativeResultIsCached(t *testing.T) {
	inner := &countingGeocoder{pos: nil}
	cache := newTestCache(t, inner, 100)
	require.NoError(t, cache.Load())

	p1, err := cache.Geocode(context.Background(), testAddr)
	require.NoError(t, err)
	assert.Nil(t, p1)

	p2, err := cache.Geocode(context.Background(), testAddr)
	require.NoError(t, err)
	assert.Nil(t, p2)
	assert.Equal(t, 1, inner.calls, "a cached not-found must not trigger another lookup")
}

func TestCachedGeocoder_NetworkErrorPropagates(t *testing.T) {
	inner := &countingGeocoder{err: errors.New("connection refused")}
	cache := newTestCache(t, inner, 100)
	require.NoError(t, cache.Load())

	_, err := cache.Geocode(context.Background(), testAddr)
	require.Error(t, err)

	// The failure must not be cached as a result.
	assert.Empty(t, cache.entries)
}

func TestCachedGeocoder_SaveLoadRoundTrip(t *testing.T) {
	cache := newTestCache(t, nil, 100)
	cache.entries = map[string]*domain.Position{
		"Bundesplatz 3|3005|Bern": {Lat: 46.948, Lon: 7.4474},
		"Nowhere 1|0000|Nirgendwo": nil,
		"Höhenweg 12|3920|Zermatt": {Lat: 46.0207, Lon: 7.7491},
	}

	require.NoError(t, cache.Save())

	reloaded := NewCachedGeocoder(nil, cache.path, time.Millisecond, 100, slog.Default(), observability.NewMetricsForTesting())
	require.NoError(t, reloaded.Load())

	assert.Empty(t, cmp.Diff(cache.entries, reloaded.entries))
}

func TestCachedGeocoder_LoadMissingFileIsEmpty(t *testing.T) {
	cache := newTestCache(t, nil, 100)
	require.NoError(t, cache.Load())
	assert.Empty(t, cache.entries)
}

func TestCachedGeocoder_LoadSkipsBlankLines(t *testing.T) {
	cache := newTestCache(t, nil, 100)
	require.NoError(t, os.WriteFile(cache.path, []byte("\nkey|a|b\t46.9\t7.4\n\n"), 0o644))

	require.NoError(t, cache.Load())
	assert.Len(t, cache.entries, 1)
}

func TestCachedGeocoder_LoadRejectsCorruptLines(t *testing.T) {
	tests := []struct {
		name string
		line string
	}{
		{"too few fields", "key\t46.9"},
		{"too many fields", "key\t46.9\t7.4\textra"},
		{"garbage coordinates", "key\tabc\t7.4"},
		{"half-null pair", "key\tNone\t7.4"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cache := newTestCache(t, nil, 100)
			require.NoError(t, os.WriteFile(cache.path, []byte(tt.line+"\n"), 0o644))

			err := cache.Load()
			require.Error(t, err, "a corrupt cache must stop the run")
			assert.Contains(t, err.Error(), "invalid cache entry")
		})
	}
}

func TestCachedGeocoder_PeriodicSave(t *testing.T) {
	inner := &countingGeocoder{pos: &domain.Position{Lat: 46.948, Lon: 7.4474}}
	cache := newTestCache(t, inner, 1) // persist after every lookup
	require.NoError(t, cache.Load())

	_, err := cache.Geocode(context.Background(), testAddr)
	require.NoError(t, err)

	data, err := os.ReadFile(cache.path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "Bundesplatz 3|3005|Bern\t46.948\t7.4474")
}

func TestCachedGeocoder_CachePersistsAcrossRuns(t *testing.T) {
	inner := &countingGeocoder{pos: &domain.Position{Lat: 46.948, Lon: 7.4474}}
	cache := newTestCache(t, inner, 100)
	require.NoError(t, cache.Load())

	_, err := cache.Geocode(context.Background(), testAddr)
	require.NoError(t, err)
	require.NoError(t, cache.Save())

	// A later run with a fresh cache instance must not re-query.
	secondRun := NewCachedGeocoder(inner, cache.path, time.Millisecond, 100, slog.Default(), observability.NewMetricsForTesting())
	require.NoError(t, secondRun.Load())

	pos, err := secondRun.Geocode(context.Background(), testAddr)
	require.NoError(t, err)
	require.NotNil(t, pos)
	assert.Equal(t, 46.948, pos.Lat)
	assert.Equal(t, 1, inner.calls)
}

func TestCachedGeocoder_RateLimiterHonorsContext(t *testing.T) {
	inner := &countingGeocoder{pos: &domain.Position{Lat: 1, Lon: 2}}
	path := filepath.Join(t.TempDir(), "cache.txt")
	// Long delay: the second lookup would have to wait ~1h.
	cache := NewCachedGeocoder(inner, path, time.Hour, 100, slog.Default(), observability.NewMetricsForTesting())

	_, err := cache.Geocode(context.Background(), testAddr)
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	_, err = cache.Geocode(ctx, domain.Address{Street: "Other 1", PostCode: "8000", Municipality: "Zürich"})
	require.Error(t, err, "waiting for the rate gate must respect cancellation")
}
