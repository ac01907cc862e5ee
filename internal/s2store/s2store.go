// Package s2store implements the S2 store: a single-threaded streaming
// partitioner keyed by S2 cell id (component E) and its flat node-selection
// engine (component G's S2 variant).
//
// Unlike the octree store, an S2 partition has no hierarchy to reconstruct
// at query time: every node is a leaf at the same configured split level, so
// selection is a flat scan rather than a trie descent.
package s2store

import (
	"github.com/golang/geo/s2"

	"github.com/beetlebugorg/pointcloud/internal/geodesy"
	"github.com/beetlebugorg/pointcloud/internal/geom"
)

// DefaultSplitLevel is the S2 cell level used when Options.Level is zero.
// Level 20 cells are about 9 meters across on average, a reasonable default shard size
// for ground-level point clouds.
const DefaultSplitLevel = 20

// earthRadiusM is used only to turn an S2 angular width metric into an
// approximate linear size in meters; it need not be more precise than that,
// since it feeds an over-approximating bounding cube, not a geodetic
// computation.
const earthRadiusM = 6378137.0

// idToken renders id as its S2 token, the on-disk node filename stem
// (spec.md §6: "S2 node filenames are the S2 cell token").
func idToken(id s2.CellID) string {
	return id.ToToken()
}

// ParseToken parses the token rendering produced by idToken, returned to
// callers (the public store loader) that need to validate a manifest's node
// ids before use.
func ParseToken(s string) (s2.CellID, error) {
	id := s2.CellIDFromToken(s)
	if !id.IsValid() {
		return 0, &InvalidTokenError{Token: s}
	}
	return id, nil
}

// InvalidTokenError reports a manifest node id that doesn't parse as an S2
// cell token.
type InvalidTokenError struct {
	Token string
}

func (e *InvalidTokenError) Error() string {
	return "s2store: invalid cell token " + e.Token
}

// NodeCube derives an axis-aligned bounding cube for an S2 cell, purely so
// the cell can reuse the octree store's quantization machinery
// (codec.PickEncoding/EncodePosition/DecodePosition), which is expressed
// entirely in terms of geom.Cube. S2 cells are not cubes: this is a
// synthetic cube centered on the cell's ECEF center point, sized to the
// cell's approximate linear width at its level. It over-approximates the
// cell's true footprint, which only makes position quantization coarser
// than strictly necessary, never lossy in a way that drops points outside
// the cell boundary (every point is still routed to its cell purely by
// CellIDForPoint, never by Cube.Contains). It is a pure function of the
// cell id, so a reader recomputes the exact same cube a writer used without
// needing to persist it.
func NodeCube(id s2.CellID) geom.Cube {
	center := id.Point()
	ll := s2.LatLngFromPoint(center)
	x, y, z := geodesy.GeodeticToECEF(ll.Lat.Radians(), ll.Lng.Radians(), 0)

	edge := s2.AvgEdgeMetric.Value(id.Level()) * earthRadiusM
	if edge <= 0 {
		edge = 1
	}
	half := edge / 2
	return geom.NewCube(geom.Vec3{X: x - half, Y: y - half, Z: z - half}, edge)
}
