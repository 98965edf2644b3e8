// Package pipeline drives the row-by-row conversion of BFE source files into
// output-ready record sequences.
package pipeline

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/jonboulle/clockwork"

	"github.com/couchcryptid/energy-data-etl/internal/domain"
	"github.com/couchcryptid/energy-data-etl/internal/observability"
)

// headerSentinel identifies the facility CSV header row: the registry file
// carries preamble rows, and the real header is the first row whose leading
// cell contains this substring.
const headerSentinel = "xtf_id"

// Position resolution strategies, used as metric label values.
const (
	sourceLV95     = "lv95"
	sourceGeocoded = "geocoded"
	sourceNone     = "none"
)

// errMalformedRow marks row-level malformations that are logged and skipped
// without aborting the run.
var errMalformedRow = errors.New("malformed row")

// CacheFlusher is implemented by geocoders that hold persistent state which
// must be flushed when a run finishes.
type CacheFlusher interface {
	Save() error
}

// FacilityStats accumulates per-run counters for reporting.
type FacilityStats struct {
	Total           int // rows that produced a record
	WithCoordinates int // records with a non-null position
	Geocoded        int // subset of WithCoordinates resolved via geocoding
	Errors          int // malformed rows skipped
}

// FacilityImporter translates facility registry rows, resolves each row's
// position (projected coordinates first, geocoding fallback second), and
// projects the whitelisted output records.
type FacilityImporter struct {
	catalogue domain.Catalogue
	resolver  domain.CoordinateResolver
	geocoder  domain.Geocoder
	logger    *slog.Logger
	metrics   *observability.Metrics
	clock     clockwork.Clock
}

// NewFacilityImporter creates a FacilityImporter. Pass a nil geocoder to
// disable the address fallback; rows without projected coordinates then get a
// null position.
func NewFacilityImporter(catalogue domain.Catalogue, resolver domain.CoordinateResolver, geocoder domain.Geocoder, logger *slog.Logger, metrics *observability.Metrics, clock clockwork.Clock) *FacilityImporter {
	return &FacilityImporter{
		catalogue: catalogue,
		resolver:  resolver,
		geocoder:  geocoder,
		logger:    logger,
		metrics:   metrics,
		clock:     clock,
	}
}

// Run processes the facility CSV one row at a time. Malformed rows are
// logged with their index and skipped; geocoding transport failures abort
// the run. If the geocoder holds a persistent cache it is flushed before Run
// returns, whatever the outcome.
func (imp *FacilityImporter) Run(ctx context.Context, r io.Reader) (records []domain.FacilityRecord, stats FacilityStats, err error) {
	start := imp.clock.Now()

	defer func() {
		if flusher, ok := imp.geocoder.(CacheFlusher); ok {
			if saveErr := flusher.Save(); saveErr != nil {
				imp.logger.Error("saving geocode cache failed", "error", saveErr)
				if err == nil {
					err = saveErr
				}
			}
		}
	}()

	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	var keys []string
	rowIdx := 0
	for {
		if ctx.Err() != nil {
			return nil, stats, ctx.Err()
		}

		row, readErr := reader.Read()
		if readErr == io.EOF {
			break
		}
		rowIdx++
		if readErr != nil {
			imp.logger.Warn("skipping malformed facility row", "row", rowIdx, "error", readErr)
			stats.Errors++
			imp.metrics.RowErrors.Inc()
			continue
		}

		if len(row) > 0 && strings.Contains(row[0], headerSentinel) {
			keys = append(append([]string(nil), row...), domain.FieldLat, domain.FieldLon)
			continue
		}
		if keys == nil {
			return nil, stats, errors.New("no header row found in facilities data")
		}

		record, source, rowErr := imp.processRow(ctx, keys, row)
		if rowErr != nil {
			if errors.Is(rowErr, errMalformedRow) {
				imp.logger.Warn("skipping malformed facility row", "row", rowIdx, "error", rowErr)
				stats.Errors++
				imp.metrics.RowErrors.Inc()
				continue
			}
			return nil, stats, fmt.Errorf("facility row %d: %w", rowIdx, rowErr)
		}

		records = append(records, record)
		stats.Total++
		imp.metrics.RowsProcessed.Inc()
		imp.metrics.CoordinateSource.WithLabelValues(source).Inc()
		switch source {
		case sourceLV95:
			stats.WithCoordinates++
		case sourceGeocoded:
			stats.WithCoordinates++
			stats.Geocoded++
		}
	}

	imp.logger.Info("processed facilities",
		"total", stats.Total,
		"with_coordinates", stats.WithCoordinates,
		"from_data", stats.WithCoordinates-stats.Geocoded,
		"geocoded", stats.Geocoded,
		"errors", stats.Errors,
		"duration", imp.clock.Since(start),
	)
	return records, stats, nil
}

// processRow translates one data row and resolves its position. The returned
// source names the resolution strategy for the stats counters.
func (imp *FacilityImporter) processRow(ctx context.Context, keys []string, row []string) (domain.FacilityRecord, string, error) {
	// keys carries the two synthetic lat/lon columns; data rows do not.
	if len(row) != len(keys)-2 {
		return domain.FacilityRecord{}, "", fmt.Errorf("%w: %d cells, header has %d columns", errMalformedRow, len(row), len(keys)-2)
	}

	values := make([]domain.Value, len(row))
	fields := make(map[string]domain.Value, len(row))
	for i, cell := range row {
		values[i] = domain.ClassifyCell(imp.catalogue, cell)
		fields[keys[i]] = values[i]
	}

	var lat, lon *float64
	source := sourceNone

	if easting, northing, ok := domain.ProjectedPair(values); ok {
		la, lo := imp.resolver.Resolve(easting, northing)
		lat, lon = &la, &lo
		source = sourceLV95
	} else if imp.geocoder != nil {
		if addr, ok := addressFields(fields); ok {
			pos, err := imp.geocoder.Geocode(ctx, addr)
			if err != nil {
				return domain.FacilityRecord{}, "", fmt.Errorf("geocode: %w", err)
			}
			if pos != nil {
				lat, lon = &pos.Lat, &pos.Lon
				source = sourceGeocoded
			}
		}
	}

	return domain.ProjectRecord(fields, lat, lon), source, nil
}

// addressFields extracts the geocoding address triple from a translated row.
// The fallback only fires when all three parts are present and non-empty.
func addressFields(fields map[string]domain.Value) (domain.Address, bool) {
	addr := domain.Address{
		Street:       fields[domain.FieldAddress].Text(),
		PostCode:     fields[domain.FieldPostCode].Text(),
		Municipality: fields[domain.FieldMunicipality].Text(),
	}
	if addr.Street == "" || addr.PostCode == "" || addr.Municipality == "" {
		return domain.Address{}, false
	}
	return addr, true
}
