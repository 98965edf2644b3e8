// Package nominatim implements the domain.Geocoder port against the OSM
// Nominatim search API, with a persistent rate-limited cache in front.
package nominatim

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/couchcryptid/energy-data-etl/internal/domain"
)

// Client implements domain.Geocoder using the Nominatim search endpoint.
// Every response state other than a clean HTTP 200 with parseable JSON is an
// error: treating a transient outage as "not found" would poison the
// persistent cache with false negatives.
type Client struct {
	baseURL    string
	userAgent  string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewClient creates a Nominatim client. userAgent identifies this service per
// the Nominatim usage policy and is sent on every request.
func NewClient(baseURL, userAgent string, timeout time.Duration, logger *slog.Logger) *Client {
	return &Client{
		baseURL:   baseURL,
		userAgent: userAgent,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		logger: logger,
	}
}

// Geocode performs one structured search limited to Switzerland. It returns
// the first result's position, or nil if the address is unknown.
func (c *Client) Geocode(ctx context.Context, addr domain.Address) (*domain.Position, error) {
	params := url.Values{
		"street":         {addr.Street},
		"postcode":       {addr.PostCode},
		"city":           {addr.Municipality},
		"format":         {"jsonv2"},
		"limit":          {"1"},
		"countrycodes":   {"ch"},
		"addressdetails": {"0"},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/search?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("geocode request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("nominatim API error: status %d: %s", resp.StatusCode, body)
	}

	var results []searchResult
	if err := json.NewDecoder(resp.Body).Decode(&results); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	if len(results) == 0 || results[0].Lat == "" || results[0].Lon == "" {
		c.logger.Debug("no geocoding result", "street", addr.Street, "city", addr.Municipality)
		return nil, nil
	}

	lat, errLat := strconv.ParseFloat(results[0].Lat, 64)
	lon, errLon := strconv.ParseFloat(results[0].Lon, 64)
	if errLat != nil || errLon != nil {
		return nil, fmt.Errorf("nominatim returned malformed coordinates: lat=%q lon=%q", results[0].Lat, results[0].Lon)
	}

	c.logger.Debug("geocoded address", "street", addr.Street, "city", addr.Municipality, "lat", lat, "lon", lon)
	return &domain.Position{Lat: lat, Lon: lon}, nil
}

// searchResult mirrors the relevant part of the Nominatim jsonv2 payload.
// Coordinates arrive as strings.
type searchResult struct {
	Lat string `json:"lat"`
	Lon string `json:"lon"`
}
