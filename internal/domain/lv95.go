package domain

import "math"

// CoordinateResolver converts an LV95 projected pair (EPSG:2056, meters) to a
// WGS84 position (EPSG:4326, degrees).
//
// Two implementations exist: RigorousResolver (geodesy-grade ellipsoidal
// transform) and ApproxResolver (the swisstopo closed-form polynomial,
// meter-scale accuracy, no iteration). Results differ by well under 0.01°
// everywhere inside Switzerland, so either may back the pipeline.
type CoordinateResolver interface {
	Resolve(easting, northing float64) (lat, lon float64)
}

// LV95 false origin: Bern is at easting 2 600 000, northing 1 200 000.
const (
	lv95FalseEasting  = 2000000.0
	lv95FalseNorthing = 1000000.0
)

// Bessel 1841 ellipsoid and projection constants for the swisstopo oblique
// Mercator projection ("Formulas and constants for the calculation of the
// Swiss conformal cylindrical projection", swisstopo 2016).
const (
	besselA  = 6377397.155       // semi-major axis
	besselE2 = 0.006674372230614 // first eccentricity squared

	wgs84A  = 6378137.0
	wgs84E2 = 0.00669437999014

	// Projection center: old Bern observatory, 46°57'08.66" N, 7°26'22.50" E.
	phi0Deg = 46.0 + 57.0/60.0 + 8.66/3600.0
	lam0Deg = 7.0 + 26.0/60.0 + 22.50/3600.0
)

// CH1903+ → WGS84 datum translation in meters (geocentric).
const (
	datumDX = 674.374
	datumDY = 15.056
	datumDZ = 405.346
)

// Derived projection constants, computed once from the definitions above.
var (
	besselE = math.Sqrt(besselE2)
	phi0    = phi0Deg * math.Pi / 180
	lam0    = lam0Deg * math.Pi / 180

	// Radius of the projection sphere at the center point.
	sphereR = besselA * math.Sqrt(1-besselE2) / (1 - besselE2*math.Sin(phi0)*math.Sin(phi0))

	// Relation between longitude on the ellipsoid and on the sphere.
	sphereAlpha = math.Sqrt(1 + besselE2/(1-besselE2)*math.Pow(math.Cos(phi0), 4))

	// Latitude of the center point on the sphere.
	sphereB0 = math.Asin(math.Sin(phi0) / sphereAlpha)

	// Integration constant of the conformal mapping.
	sphereK = math.Log(math.Tan(math.Pi/4+sphereB0/2)) -
		sphereAlpha*math.Log(math.Tan(math.Pi/4+phi0/2)) +
		sphereAlpha*besselE/2*math.Log((1+besselE*math.Sin(phi0))/(1-besselE*math.Sin(phi0)))
)

// RigorousResolver inverts the swisstopo projection exactly: plane → sphere →
// Bessel ellipsoid, then shifts the CH1903+ datum to WGS84 through geocentric
// coordinates (ellipsoidal height taken as zero). Accuracy is at the meter
// level, limited only by the three-parameter datum shift.
type RigorousResolver struct{}

func (RigorousResolver) Resolve(easting, northing float64) (float64, float64) {
	y := easting - lv95FalseEasting - 600000.0
	x := northing - lv95FalseNorthing - 200000.0

	// Plane → sphere (pseudo-equator system), then rotate back.
	lp := y / sphereR
	bp := 2 * (math.Atan(math.Exp(x/sphereR)) - math.Pi/4)
	b := math.Asin(math.Cos(sphereB0)*math.Sin(bp) + math.Sin(sphereB0)*math.Cos(bp)*math.Cos(lp))
	l := math.Atan2(math.Sin(lp), math.Cos(sphereB0)*math.Cos(lp)-math.Sin(sphereB0)*math.Tan(bp))

	lam := lam0 + l/sphereAlpha

	// Sphere → ellipsoid latitude by fixed-point iteration. Converges to
	// double precision in a handful of steps.
	phi := b
	for i := 0; i < 8; i++ {
		s := (math.Log(math.Tan(math.Pi/4+b/2))-sphereK)/sphereAlpha +
			besselE*math.Log(math.Tan(math.Pi/4+math.Asin(besselE*math.Sin(phi))/2))
		phi = 2*math.Atan(math.Exp(s)) - math.Pi/2
	}

	return datumShift(phi, lam)
}

// datumShift moves a Bessel/CH1903+ geodetic position to WGS84 via geocentric
// cartesian coordinates.
func datumShift(phi, lam float64) (float64, float64) {
	sinPhi, cosPhi := math.Sincos(phi)
	n := besselA / math.Sqrt(1-besselE2*sinPhi*sinPhi)
	gx := n*cosPhi*math.Cos(lam) + datumDX
	gy := n*cosPhi*math.Sin(lam) + datumDY
	gz := n*(1-besselE2)*sinPhi + datumDZ

	lon := math.Atan2(gy, gx)
	p := math.Hypot(gx, gy)
	lat := math.Atan2(gz, p*(1-wgs84E2))
	for i := 0; i < 8; i++ {
		s := math.Sin(lat)
		nw := wgs84A / math.Sqrt(1-wgs84E2*s*s)
		h := p/math.Cos(lat) - nw
		lat = math.Atan2(gz, p*(1-wgs84E2*nw/(nw+h)))
	}

	return lat * 180 / math.Pi, lon * 180 / math.Pi
}

// ApproxResolver implements the swisstopo approximate solution: subtract the
// LV95 false origin to get LV03 coordinates, normalize around Bern, and
// evaluate the published cubic polynomials. The coefficients must stay exactly
// as published to remain bit-compatible with previously generated outputs.
type ApproxResolver struct{}

func (ApproxResolver) Resolve(easting, northing float64) (float64, float64) {
	// LV95 → LV03, then normalized auxiliary coordinates (unit: 1000 km).
	y := (easting - lv95FalseEasting - 600000.0) / 1e6
	x := (northing - lv95FalseNorthing - 200000.0) / 1e6

	// Results are in the unit 10000" and converted to degrees with 100/36.
	lat := 16.9023892 +
		3.238272*x -
		0.270978*y*y -
		0.002528*x*x -
		0.0447*y*y*x -
		0.0140*x*x*x
	lon := 2.6779094 +
		4.728982*y +
		0.791484*y*x +
		0.1306*y*x*x -
		0.0436*y*y*y

	return lat * 100 / 36, lon * 100 / 36
}
