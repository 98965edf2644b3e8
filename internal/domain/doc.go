// Package domain models Swiss Federal Office of Energy (BFE) open-government
// energy data.
//
// # Data Sources
//
// Facility data comes from the electricity production plant registry
// (ch.bfe.elektrizitaetsproduktionsanlagen), distributed as a ZIP of CSV
// files: ElectricityProductionPlant.csv plus four catalogue files
// (MainCategoryCatalogue, OrientationCatalogue, PlantCategoryCatalogue,
// SubCategoryCatalogue). Production and trade time series come from the
// UVEK OGD portal (ogd104 daily production per source, ogd107 hourly
// cross-border flows).
//
// # Registry Conventions
//
// Header row:
//
//	The facility CSV carries preamble rows before the real header. The header
//	is the first row whose leading cell contains "xtf_id". All following rows
//	are positional tuples matching that header's arity. Two synthetic columns,
//	"lat" and "lon", are appended after position resolution.
//
// Catalogue codes:
//
//	Registry cells hold opaque codes such as "maincat_1" or "subcat_2" that
//	map to human-readable labels via the catalogue files. Each catalogue row
//	is "code,<variant>,...,<variant>" with one label per language; the last
//	column is the English label and is the one used. Rows whose first cell
//	starts with "Catalogue" are headers and skipped. Codes are globally
//	unique across catalogues in practice; on collision the later catalogue
//	wins silently.
//
// Numeric cells:
//
//	Cells made of digits and at most one decimal point are coerced: with a
//	point to a float, without to an integer. Anything else, including strings
//	with multiple decimal points, stays a string. "" stays an empty string.
//
// Coordinates:
//
//	The last two columns of a facility row hold the LV95 projected position
//	(easting _x, northing _y, EPSG:2056) when the operator reported one.
//	Facilities without a projected position fall back to geocoding on the
//	Address / PostCode / Municipality columns.
//
// # LV95 to WGS84
//
// Two interchangeable strategies convert LV95 easting/northing to WGS84
// degrees: the rigorous inverse of the swisstopo oblique Mercator projection
// on the Bessel 1841 ellipsoid followed by the CH1903+ datum shift, and the
// published swisstopo polynomial approximation (meter-scale accuracy,
// sufficient for point-on-map display). See [RigorousResolver] and
// [ApproxResolver].
package domain
