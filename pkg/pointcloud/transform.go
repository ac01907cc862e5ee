package pointcloud

import (
	"math"

	"github.com/beetlebugorg/pointcloud/internal/geom"
)

// transformedVolume adapts a query volume expressed in a local frame into
// the store's global ECEF frame, so that both node pruning (IntersectsCube,
// spec.md §4.G) and per-point filtering (Contains) test against the same
// frame and therefore agree (spec.md §9's resolved open question: "V.Contains
// is evaluated against GlobalFromQuery^-1 * p"). Before this wrapper existed,
// Select's pruning tested node cubes directly against Location in the global
// frame while filterBatch separately inverse-transformed each point — correct
// individually, but only by accident when GlobalFromQuery was the identity.
type transformedVolume struct {
	inner   Volume
	inverse Isometry3
}

func (t transformedVolume) Contains(p geom.Vec3) bool {
	return t.inner.Contains(t.inverse.Transform(p))
}

// IntersectsCube transforms c's 8 corners into the query's local frame and
// tests inner against their axis-aligned bounding cube there, rather than
// against c itself. A rigid transform maps a cube onto another cube of the
// same edge length, just arbitrarily oriented when the rotation isn't axis
// aligned, and the separating-axis kernel behind IntersectsCube only accepts
// axis-aligned cubes. The bounding cube of the rotated corners is always a
// superset of the true rotated cube, which keeps both of Select's exact
// outcomes sound: if the superset is Out, the smaller true region can't
// intersect either; if the superset is In, the true region — being a subset
// of it — is also entirely inside. A Cross verdict is conservative (the true
// region may in fact be Out or In), but Select's caller already falls back
// to per-point Contains filtering for anything short of In, so Cross never
// produces a wrong point, only a candidate node that costs an extra decode.
func (t transformedVolume) IntersectsCube(c geom.Cube) geom.Relation {
	corners := c.Corners()
	min := t.inverse.Transform(corners[0])
	max := min
	for _, corner := range corners[1:] {
		p := t.inverse.Transform(corner)
		min = geom.Vec3{X: math.Min(min.X, p.X), Y: math.Min(min.Y, p.Y), Z: math.Min(min.Z, p.Z)}
		max = geom.Vec3{X: math.Max(max.X, p.X), Y: math.Max(max.Y, p.Y), Z: math.Max(max.Z, p.Z)}
	}
	edge := max.X - min.X
	if d := max.Y - min.Y; d > edge {
		edge = d
	}
	if d := max.Z - min.Z; d > edge {
		edge = d
	}
	return t.inner.IntersectsCube(geom.NewCube(min, edge))
}
