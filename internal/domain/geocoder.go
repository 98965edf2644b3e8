package domain

import (
	"context"
	"strings"
)

// Position is a WGS84 latitude/longitude pair in degrees.
type Position struct {
	Lat float64
	Lon float64
}

// Address is the triple of registry fields used for geocoding fallback.
type Address struct {
	Street       string
	PostCode     string
	Municipality string
}

// CacheKey builds the canonical cache key for the address. Each part is
// trimmed and stripped of the cache file's delimiter characters (tab and
// pipe) so the key stays stable regardless of how the cache is stored.
func (a Address) CacheKey() string {
	parts := []string{a.Street, a.PostCode, a.Municipality}
	for i, p := range parts {
		p = strings.TrimSpace(p)
		p = strings.ReplaceAll(p, "\t", " ")
		p = strings.ReplaceAll(p, "|", " ")
		parts[i] = p
	}
	return strings.Join(parts, "|")
}

// Geocoder resolves a postal address to a position. A nil Position with a nil
// error is a definitive "not found" — callers must treat it as a first-class
// result, not retry it. Errors are transport-level failures and abort the run.
type Geocoder interface {
	Geocode(ctx context.Context, addr Address) (*Position, error)
}
