package geom

import (
	"github.com/golang/geo/s2"

	"github.com/beetlebugorg/pointcloud/internal/geodesy"
)

// S2CellUnion is a culling volume backed by a set of S2 cells: a point is
// "in" iff the cell (at the union's cells' level) containing its projected
// lat/lng is a member of the union.
type S2CellUnion struct {
	union s2.CellUnion
}

// NewS2CellUnion wraps a set of S2 cell ids as a culling volume.
func NewS2CellUnion(ids []s2.CellID) S2CellUnion {
	u := make(s2.CellUnion, len(ids))
	copy(u, ids)
	u.Normalize()
	return S2CellUnion{union: u}
}

// Contains reports whether p's projected lat/lng falls within any cell of
// the union.
func (s S2CellUnion) Contains(p Vec3) bool {
	ll := geodesy.ECEFToLatLng(p.X, p.Y, p.Z)
	latLng := s2.LatLngFromRadians(ll.LatRad, ll.LngRad)
	return s.union.ContainsCellID(s2.CellIDFromLatLng(latLng))
}

// IntersectsCube classifies a cube against the cell union. Unlike the
// polyhedral volumes, this isn't a 3D SAT test: the cube's 8 corners are
// projected to lat/lng, covered by an S2 RegionCoverer at the union's
// finest cell level, and the resulting covering is compared against the
// union membership. If every covering cell is contained, the cube is In; if
// none intersect, it's Out; otherwise Cross.
func (s S2CellUnion) IntersectsCube(c Cube) Relation {
	if len(s.union) == 0 {
		return Out
	}
	level := s.union[0].Level()
	for _, id := range s.union {
		if id.Level() > level {
			level = id.Level()
		}
	}

	rectBuilder := s2.EmptyRect()
	for _, corner := range c.Corners() {
		ll := geodesy.ECEFToLatLng(corner.X, corner.Y, corner.Z)
		rectBuilder = rectBuilder.AddPoint(s2.LatLngFromRadians(ll.LatRad, ll.LngRad))
	}

	coverer := &s2.RegionCoverer{MinLevel: level, MaxLevel: level, LevelMod: 1, MaxCells: 64}
	covering := coverer.Covering(rectBuilder)
	if len(covering) == 0 {
		return Out
	}

	anyIn, anyOut := false, false
	for _, id := range covering {
		if s.union.IntersectsCellID(id) {
			anyIn = true
		} else {
			anyOut = true
		}
	}
	switch {
	case anyIn && !anyOut:
		return In
	case anyIn && anyOut:
		return Cross
	default:
		return Out
	}
}

// CellIDForPoint returns the S2 cell id containing p's projected lat/lng,
// truncated to level. This is the core routing primitive for the S2
// splitter (component E): each incoming point is assigned to the node whose
// id is CellIDForPoint(p, splitLevel).
func CellIDForPoint(p Vec3, level int) s2.CellID {
	ll := geodesy.ECEFToLatLng(p.X, p.Y, p.Z)
	id := s2.CellIDFromLatLng(s2.LatLngFromRadians(ll.LatRad, ll.LngRad))
	return id.Parent(level)
}
