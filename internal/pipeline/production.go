package pipeline

import (
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"strconv"
)

// NumProductionSources is the number of known energy sources; every daily
// record carries exactly this many values, one per fixed position.
const NumProductionSources = 6

// productionSourceIndex maps the German source names in the ogd104 CSV to
// their fixed position in the output array.
var productionSourceIndex = map[string]int{
	"Speicherkraft": 0, // Hydro (pumped storage)
	"Flusskraft":    1, // Hydro (river/run-of-river)
	"Kernkraft":     2, // Nuclear
	"Photovoltaik":  3, // Photovoltaic
	"Thermische":    4, // Thermal
	"Wind":          5,
}

// ProductionSourceNames are the English display names, index-aligned with the
// output array.
var ProductionSourceNames = [NumProductionSources]string{
	"Hydro (pumped)",
	"Hydro (river)",
	"Nuclear",
	"Photovoltaic",
	"Thermal",
	"Wind",
}

// ProductionRecord is one day of production in GWh, one value per source at
// its fixed index. Sources missing on a day stay 0.0.
type ProductionRecord struct {
	Date   string                        `json:"date"` // YYYY-MM-DD
	Values [NumProductionSources]float64 `json:"values"`
}

// ImportProduction reduces the ogd104 daily production CSV to one record per
// date, sorted ascending. Rows with an unknown source or an unparseable value
// are logged and skipped without affecting other rows.
func ImportProduction(r io.Reader, logger *slog.Logger) ([]ProductionRecord, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("read production header: %w", err)
	}
	dateCol, err := columnIndex(header, "Datum")
	if err != nil {
		return nil, err
	}
	sourceCol, err := columnIndex(header, "Energietraeger")
	if err != nil {
		return nil, err
	}
	valueCol, err := columnIndex(header, "Produktion_GWh")
	if err != nil {
		return nil, err
	}

	daily := make(map[string][NumProductionSources]float64)
	processed := 0
	for {
		row, readErr := reader.Read()
		if readErr == io.EOF {
			break
		}
		if readErr != nil {
			logger.Warn("skipping malformed production row", "error", readErr)
			continue
		}
		if len(row) <= dateCol || len(row) <= sourceCol || len(row) <= valueCol {
			logger.Warn("skipping short production row", "cells", len(row))
			continue
		}

		source := row[sourceCol]
		idx, known := productionSourceIndex[source]
		if !known {
			logger.Warn("unknown energy source", "source", source)
			continue
		}

		gwh, parseErr := strconv.ParseFloat(row[valueCol], 64)
		if parseErr != nil {
			logger.Warn("skipping production row with bad value", "date", row[dateCol], "source", source, "error", parseErr)
			continue
		}

		values := daily[row[dateCol]]
		values[idx] = gwh
		daily[row[dateCol]] = values
		processed++
	}
	logger.Info("processed production data points", "rows", processed)

	dates := make([]string, 0, len(daily))
	for date := range daily {
		dates = append(dates, date)
	}
	sort.Strings(dates) // ISO dates sort chronologically as strings

	records := make([]ProductionRecord, 0, len(dates))
	for _, date := range dates {
		records = append(records, ProductionRecord{Date: date, Values: daily[date]})
	}
	logger.Info("generated production series", "days", len(records))
	return records, nil
}

func columnIndex(header []string, name string) (int, error) {
	for i, h := range header {
		if h == name {
			return i, nil
		}
	}
	return 0, fmt.Errorf("column %q not found in header", name)
}
