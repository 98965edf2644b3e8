package pipeline

import (
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"strconv"
)

// NumTradeFlows is the number of cross-border flow directions.
const NumTradeFlows = 8

// tradeFlowIndex maps the ogd107 flow columns to their fixed position in the
// output array: imports into Switzerland first, exports second.
var tradeFlowIndex = map[string]int{
	"AT_CH_MWh": 0, // Austria to Switzerland
	"DE_CH_MWh": 1, // Germany to Switzerland
	"FR_CH_MWh": 2, // France to Switzerland
	"IT_CH_MWh": 3, // Italy to Switzerland
	"CH_AT_MWh": 4, // Switzerland to Austria
	"CH_DE_MWh": 5, // Switzerland to Germany
	"CH_FR_MWh": 6, // Switzerland to France
	"CH_IT_MWh": 7, // Switzerland to Italy
}

// TradeRecord is one hour of cross-border trade in MWh, one value per flow at
// its fixed index. Flows missing from the source default to 0.0.
type TradeRecord struct {
	Date   string                 `json:"date"` // ISO datetime
	Values [NumTradeFlows]float64 `json:"values"`
}

// ImportTrade reduces the ogd107 hourly trade CSV to one record per datetime,
// sorted ascending. Rows with unparseable flow values are logged and skipped.
func ImportTrade(r io.Reader, logger *slog.Logger) ([]TradeRecord, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("read trade header: %w", err)
	}
	dateCol, err := columnIndex(header, "Datetime")
	if err != nil {
		return nil, err
	}

	// Flow columns absent from the header keep their zero default.
	flowCols := make(map[int]int) // column index → output index
	for name, idx := range tradeFlowIndex {
		if col, colErr := columnIndex(header, name); colErr == nil {
			flowCols[col] = idx
		}
	}

	var records []TradeRecord
	processed := 0
rows:
	for {
		row, readErr := reader.Read()
		if readErr == io.EOF {
			break
		}
		if readErr != nil {
			logger.Warn("skipping malformed trade row", "error", readErr)
			continue
		}
		if len(row) <= dateCol {
			logger.Warn("skipping short trade row", "cells", len(row))
			continue
		}

		rec := TradeRecord{Date: row[dateCol]}
		for col, idx := range flowCols {
			if col >= len(row) {
				continue
			}
			v, parseErr := strconv.ParseFloat(row[col], 64)
			if parseErr != nil {
				logger.Warn("skipping trade row with bad value", "datetime", rec.Date, "column", header[col], "error", parseErr)
				continue rows
			}
			rec.Values[idx] = v
		}
		records = append(records, rec)
		processed++
	}
	logger.Info("processed trade data points", "rows", processed)

	sort.SliceStable(records, func(i, j int) bool { return records[i].Date < records[j].Date })
	return records, nil
}
