// Package geodesy converts between ECEF (earth-centered, earth-fixed)
// Cartesian coordinates and WGS84 geodetic latitude/longitude, the
// conversion the S2 store and the S2Cells/WebMercatorRect culling volumes
// need to go from a point's ECEF position to the sphere-surface
// representation S2 and Web Mercator operate on.
//
// No pack example wraps ECEF<->geodetic conversion in a library (the
// original Rust implementation leans on the nav_types crate for this); the
// closed-form Bowring formula below is the standard approach and small
// enough that pulling in a geodesy dependency isn't warranted.
package geodesy

import "math"

// WGS84 ellipsoid constants.
const (
	wgs84A  = 6378137.0         // semi-major axis, meters
	wgs84F  = 1 / 298.257223563 // flattening
	wgs84B  = wgs84A * (1 - wgs84F)
	wgs84E2 = wgs84F * (2 - wgs84F) // first eccentricity squared
)

// LatLng is a geodetic position in radians.
type LatLng struct {
	LatRad, LngRad float64
}

// ECEFToLatLng converts an ECEF position in meters to geodetic
// latitude/longitude in radians using the Bowring closed-form formula.
// Altitude is discarded; callers that need it should use ECEFToGeodetic.
func ECEFToLatLng(x, y, z float64) LatLng {
	lat, lng, _ := ECEFToGeodetic(x, y, z)
	return LatLng{LatRad: lat, LngRad: lng}
}

// ECEFToGeodetic converts an ECEF position in meters to geodetic latitude,
// longitude (radians) and altitude (meters above the WGS84 ellipsoid).
func ECEFToGeodetic(x, y, z float64) (latRad, lngRad, altM float64) {
	lngRad = math.Atan2(y, x)

	p := math.Hypot(x, y)
	if p < 1e-12 {
		// On the polar axis; longitude is undefined, pick 0.
		lngRad = 0
		if z >= 0 {
			return math.Pi / 2, lngRad, z - wgs84B
		}
		return -math.Pi / 2, lngRad, -z - wgs84B
	}

	theta := math.Atan2(z*wgs84A, p*wgs84B)
	sinTheta, cosTheta := math.Sin(theta), math.Cos(theta)
	ePrime2 := (wgs84A*wgs84A - wgs84B*wgs84B) / (wgs84B * wgs84B)

	lat := math.Atan2(
		z+ePrime2*wgs84B*sinTheta*sinTheta*sinTheta,
		p-wgs84E2*wgs84A*cosTheta*cosTheta*cosTheta,
	)
	sinLat := math.Sin(lat)
	n := wgs84A / math.Sqrt(1-wgs84E2*sinLat*sinLat)
	alt := p/math.Cos(lat) - n

	return lat, lngRad, alt
}

// GeodeticToECEF converts geodetic latitude/longitude (radians) and altitude
// (meters) to ECEF meters.
func GeodeticToECEF(latRad, lngRad, altM float64) (x, y, z float64) {
	sinLat, cosLat := math.Sin(latRad), math.Cos(latRad)
	sinLng, cosLng := math.Sin(lngRad), math.Cos(lngRad)
	n := wgs84A / math.Sqrt(1-wgs84E2*sinLat*sinLat)

	x = (n + altM) * cosLat * cosLng
	y = (n + altM) * cosLat * sinLng
	z = (n*(1-wgs84E2) + altM) * sinLat
	return x, y, z
}
