package nominatim

import (
	"bufio"
	"context"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/couchcryptid/energy-data-etl/internal/domain"
	"github.com/couchcryptid/energy-data-etl/internal/observability"
)

// noneSentinel marks an explicit "looked up, not found" coordinate in the
// cache file. Negative entries are first-class results and never trigger
// another network lookup.
const noneSentinel = "None"

// CachedGeocoder wraps a Geocoder with a cache persisted as a tab-separated
// file, one entry per line:
//
//	<addressKey>\t<lat|None>\t<lon|None>
//
// A rate limiter spaces out lookups that fall through to the network; cache
// hits return immediately. The cache assumes a single writer: the importer is
// sequential and no other process touches the file during a run.
type CachedGeocoder struct {
	inner     domain.Geocoder
	path      string
	limiter   *rate.Limiter
	logger    *slog.Logger
	metrics   *observability.Metrics
	entries   map[string]*domain.Position
	lookups   int // network lookups this run
	saveEvery int
}

// NewCachedGeocoder creates the cache decorator. minDelay is the guaranteed
// spacing between network lookups; saveEvery bounds data loss on crash by
// persisting the cache after that many new lookups.
func NewCachedGeocoder(inner domain.Geocoder, path string, minDelay time.Duration, saveEvery int, logger *slog.Logger, metrics *observability.Metrics) *CachedGeocoder {
	return &CachedGeocoder{
		inner:     inner,
		path:      path,
		limiter:   rate.NewLimiter(rate.Every(minDelay), 1),
		logger:    logger,
		metrics:   metrics,
		entries:   make(map[string]*domain.Position),
		saveEvery: saveEvery,
	}
}

// Load populates the cache from disk. A missing file is an empty cache; a
// malformed line is fatal, because an importer run must not proceed with a
// cache it cannot trust.
func (c *CachedGeocoder) Load() error {
	c.entries = make(map[string]*domain.Position)

	f, err := os.Open(c.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("open geocode cache: %w", err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		parts := strings.Split(line, "\t")
		if len(parts) != 3 {
			return fmt.Errorf("invalid cache entry: %q", line)
		}
		pos, err := parseCachedPosition(parts[1], parts[2])
		if err != nil {
			return fmt.Errorf("invalid cache entry: %q: %w", line, err)
		}
		c.entries[parts[0]] = pos
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("read geocode cache: %w", err)
	}

	c.metrics.CacheEntries.Set(float64(len(c.entries)))
	c.logger.Info("loaded geocode cache", "entries", len(c.entries), "path", c.path)
	return nil
}

// Save persists the entire cache, overwriting the file.
func (c *CachedGeocoder) Save() error {
	f, err := os.Create(c.path)
	if err != nil {
		return fmt.Errorf("create geocode cache: %w", err)
	}

	w := bufio.NewWriter(f)
	for key, pos := range c.entries {
		latStr, lonStr := noneSentinel, noneSentinel
		if pos != nil {
			latStr = strconv.FormatFloat(pos.Lat, 'g', -1, 64)
			lonStr = strconv.FormatFloat(pos.Lon, 'g', -1, 64)
		}
		if _, err := fmt.Fprintf(w, "%s\t%s\t%s\n", key, latStr, lonStr); err != nil {
			f.Close()
			return fmt.Errorf("write geocode cache: %w", err)
		}
	}
	if err := w.Flush(); err != nil {
		f.Close()
		return fmt.Errorf("flush geocode cache: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close geocode cache: %w", err)
	}

	c.metrics.CacheSaves.Inc()
	c.logger.Info("saved geocode cache", "entries", len(c.entries), "path", c.path)
	return nil
}

// Geocode returns the cached position for the address, or performs exactly
// one rate-limited network lookup on a miss and caches the outcome, found or
// not. Network failures propagate and abort the run — no retry, no partial
// result — so a transient outage can never be cached as "not found".
func (c *CachedGeocoder) Geocode(ctx context.Context, addr domain.Address) (*domain.Position, error) {
	key := addr.CacheKey()
	if pos, ok := c.entries[key]; ok {
		c.metrics.GeocodeCache.WithLabelValues("hit").Inc()
		return pos, nil
	}
	c.metrics.GeocodeCache.WithLabelValues("miss").Inc()

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("geocode rate limit: %w", err)
	}

	pos, err := c.inner.Geocode(ctx, addr)
	if err != nil {
		return nil, err
	}

	outcome := "found"
	if pos == nil {
		outcome = "not_found"
	}
	c.metrics.GeocodeRequests.WithLabelValues(outcome).Inc()

	c.entries[key] = pos
	c.metrics.CacheEntries.Set(float64(len(c.entries)))
	c.lookups++

	if c.lookups%c.saveEvery == 0 {
		c.logger.Info("geocoded addresses", "lookups", c.lookups)
		if err := c.Save(); err != nil {
			return nil, err
		}
	}

	return pos, nil
}

func parseCachedPosition(latStr, lonStr string) (*domain.Position, error) {
	if latStr == noneSentinel && lonStr == noneSentinel {
		return nil, nil
	}
	lat, errLat := strconv.ParseFloat(latStr, 64)
	lon, errLon := strconv.ParseFloat(lonStr, 64)
	if errLat != nil || errLon != nil {
		return nil, fmt.Errorf("malformed coordinates")
	}
	return &domain.Position{Lat: lat, Lon: lon}, nil
}
