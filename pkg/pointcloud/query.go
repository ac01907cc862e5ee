package pointcloud

import "github.com/beetlebugorg/pointcloud/internal/geom"

// Volume is any of the culling volumes spec.md §6 lists:
// AllPoints | Aabb | Obb | Frustum | S2Cells | WebMercatorRect. It is
// internal/geom's Volume interface, re-exported so callers don't need to
// import the internal package directly.
type Volume = geom.Volume

// PointQuery describes one query against a store: which attributes to
// decode, the culling volume, and an optional rigid transform mapping the
// volume's frame into the store's ECEF frame (spec.md §6/§9).
type PointQuery struct {
	Attributes []string
	Location   Volume

	// GlobalFromQuery, when set, expresses Location in a local query frame
	// that this transform maps into the store's global ECEF frame. Per
	// spec.md §9's resolved open question, containment is tested as
	// Location.Contains(GlobalFromQuery^-1 * p): the transform is inverted
	// and applied to each candidate point rather than re-expressing the
	// volume in the global frame.
	GlobalFromQuery *Isometry3
}
