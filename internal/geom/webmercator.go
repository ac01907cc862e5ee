package geom

import (
	"math"

	"github.com/beetlebugorg/pointcloud/internal/geodesy"
)

// WebMercatorRect is a culling volume expressed as an axis-aligned rectangle
// in Web Mercator pixel/tile space (EPSG:3857, normalized to [0,1)^2 the way
// slippy-map tile coordinates are), plus an optional altitude range. A point
// is "in" iff its projected (x, y) falls in the rectangle and its altitude
// (height above the WGS84 ellipsoid) falls in [MinAlt, MaxAlt].
type WebMercatorRect struct {
	MinX, MinY, MaxX, MaxY float64
	MinAlt, MaxAlt         float64
}

// project converts ECEF meters to normalized Web Mercator (x, y) in [0,1)^2
// plus altitude in meters above the ellipsoid.
func project(p Vec3) (x, y, alt float64) {
	lat, lng, alt := geodesy.ECEFToGeodetic(p.X, p.Y, p.Z)
	x = (lng + math.Pi) / (2 * math.Pi)
	sinLat := math.Sin(lat)
	y = 0.5 - math.Log((1+sinLat)/(1-sinLat))/(4*math.Pi)
	return x, y, alt
}

// Contains reports whether p's Web Mercator projection and altitude lie
// within the rectangle.
func (r WebMercatorRect) Contains(p Vec3) bool {
	x, y, alt := project(p)
	return x >= r.MinX && x <= r.MaxX &&
		y >= r.MinY && y <= r.MaxY &&
		alt >= r.MinAlt && alt <= r.MaxAlt
}

// IntersectsCube classifies a cube against the rectangle by projecting its 8
// corners to Web Mercator space and comparing the resulting 2D+altitude
// bounding box against the rectangle, using the same strict-inequality
// tie-break as the 3D SAT volumes (a touching edge is Cross, not In or Out).
func (r WebMercatorRect) IntersectsCube(c Cube) Relation {
	corners := c.Corners()
	minX, minY, minAlt := math.Inf(1), math.Inf(1), math.Inf(1)
	maxX, maxY, maxAlt := math.Inf(-1), math.Inf(-1), math.Inf(-1)
	for _, corner := range corners {
		x, y, alt := project(corner)
		minX, maxX = math.Min(minX, x), math.Max(maxX, x)
		minY, maxY = math.Min(minY, y), math.Max(maxY, y)
		minAlt, maxAlt = math.Min(minAlt, alt), math.Max(maxAlt, alt)
	}

	if maxX < r.MinX || minX > r.MaxX ||
		maxY < r.MinY || minY > r.MaxY ||
		maxAlt < r.MinAlt || minAlt > r.MaxAlt {
		return Out
	}
	if minX > r.MinX && maxX < r.MaxX &&
		minY > r.MinY && maxY < r.MaxY &&
		minAlt > r.MinAlt && maxAlt < r.MaxAlt {
		return In
	}
	return Cross
}
