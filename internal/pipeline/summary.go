package pipeline

import (
	"github.com/couchcryptid/energy-data-etl/internal/domain"
)

// FacilitySummary aggregates run-level statistics for the completion report.
type FacilitySummary struct {
	Total         int
	WithPosition  int
	TotalPowerMW  float64
	BySubCategory map[string]int
}

// SummarizeFacilities computes summary statistics over the final records:
// total capacity (registry reports kW, reported here in MW) and facility
// counts per sub-category.
func SummarizeFacilities(records []domain.FacilityRecord) FacilitySummary {
	s := FacilitySummary{BySubCategory: make(map[string]int)}
	for _, rec := range records {
		s.Total++
		if rec.Lat != nil && rec.Lon != nil {
			s.WithPosition++
		}
		switch p := rec.TotalPower.(type) {
		case int64:
			s.TotalPowerMW += float64(p) / 1000.0
		case float64:
			s.TotalPowerMW += p / 1000.0
		}
		if sub, ok := rec.SubCategory.(string); ok && sub != "" {
			s.BySubCategory[sub]++
		}
	}
	return s
}
