// Package geom provides the culling volumes and cube geometry shared by the
// octree and S2 stores: AABB, OBB, Frustum, S2CellUnion, WebMercatorRect, and
// the separating-axis tests used to prune octree nodes against them.
package geom

// Relation is the three-valued result of testing a culling volume against a
// cube: whether the cube lies entirely inside, entirely outside, or straddles
// the volume's boundary.
type Relation int

const (
	// Out means the cube does not intersect the volume at all.
	Out Relation = iota
	// Cross means the cube straddles the volume's boundary; some but not all
	// of its points may be inside.
	Cross
	// In means the cube lies entirely inside the volume; every point in it
	// is guaranteed to satisfy Contains.
	In
)

func (r Relation) String() string {
	switch r {
	case Out:
		return "Out"
	case Cross:
		return "Cross"
	case In:
		return "In"
	default:
		return "Relation(?)"
	}
}

// Volume is a culling predicate used both for exact per-point membership and
// for pruning whole octree nodes. The two methods are two independent
// implementations of the same geometric relation and must agree: for every
// point p and volume v, v.Contains(p) == (v.IntersectsCube(c) == In) for a
// vanishingly small cube c around p.
type Volume interface {
	// Contains reports exact per-point membership.
	Contains(p Vec3) bool

	// IntersectsCube classifies a cube against the volume using the
	// separating-axis theorem. Ties (coincident planes) resolve to Cross,
	// never In or Out.
	IntersectsCube(c Cube) Relation
}
