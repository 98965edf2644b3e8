package domain

// Output field names projected from the facility registry. Fields absent from
// the source header are omitted from the record, never defaulted.
const (
	FieldMunicipality = "Municipality"
	FieldCanton       = "Canton"
	FieldBeginning    = "BeginningOfOperation"
	FieldTotalPower   = "TotalPower"
	FieldSubCategory  = "SubCategory"
	FieldAddress      = "Address"
	FieldPostCode     = "PostCode"
	FieldLat          = "lat"
	FieldLon          = "lon"
)

// FacilityRecord is the whitelisted projection of one registry row, ready for
// JSON output. The field set and key spelling are fixed by the web front end.
// Lat and Lon are either both set or both null; null means the row had no
// projected coordinates and geocoding found nothing.
type FacilityRecord struct {
	Municipality         any      `json:"Municipality,omitempty"`
	Canton               any      `json:"Canton,omitempty"`
	BeginningOfOperation any      `json:"BeginningOfOperation,omitempty"`
	TotalPower           any      `json:"TotalPower,omitempty"`
	SubCategory          any      `json:"SubCategory,omitempty"`
	Lat                  *float64 `json:"lat"`
	Lon                  *float64 `json:"lon"`
}

// ProjectRecord builds a FacilityRecord from a translated row. fields maps
// header names to typed values (without the synthetic lat/lon columns); a
// whitelisted field missing from the map is left out of the record.
func ProjectRecord(fields map[string]Value, lat, lon *float64) FacilityRecord {
	rec := FacilityRecord{Lat: lat, Lon: lon}
	if v, ok := fields[FieldMunicipality]; ok {
		rec.Municipality = v.Interface()
	}
	if v, ok := fields[FieldCanton]; ok {
		rec.Canton = v.Interface()
	}
	if v, ok := fields[FieldBeginning]; ok {
		rec.BeginningOfOperation = v.Interface()
	}
	if v, ok := fields[FieldTotalPower]; ok {
		rec.TotalPower = v.Interface()
	}
	if v, ok := fields[FieldSubCategory]; ok {
		rec.SubCategory = v.Interface()
	}
	return rec
}

// ProjectedPair inspects the last two columns of a translated row. They form a
// usable LV95 pair only when both are numeric; anything else (empty cells,
// address text) means the row has no reported position.
func ProjectedPair(values []Value) (easting, northing float64, ok bool) {
	if len(values) < 2 {
		return 0, 0, false
	}
	easting, eOK := values[len(values)-2].Numeric()
	northing, nOK := values[len(values)-1].Numeric()
	if !eOK || !nOK {
		return 0, 0, false
	}
	return easting, northing, true
}
