package meta

import (
	"github.com/dhconnelly/rtreego"

	"github.com/beetlebugorg/pointcloud/internal/codec"
	"github.com/beetlebugorg/pointcloud/internal/geom"
)

// NodeMeta is one store node's manifest entry: its id (an octree NodeId's
// hex rendering or an S2 cell token), point count, position encoding, and
// bounding box. BoundingCube is an AABB rather than a strict geom.Cube: both
// the octree builder and the S2 splitter record the observed ECEF bounds of
// the points written to the node, not the node's cube or cell outline.
type NodeMeta struct {
	ID           string                 `cbor:"id"`
	NumPoints    uint64                 `cbor:"num_points"`
	Encoding     codec.PositionEncoding `cbor:"position_encoding"`
	BoundingCube geom.AABB              `cbor:"bounding_cube"`
}

// Bounds implements rtreego.Spatial so a slice of NodeMeta can be indexed
// directly by an R-tree prefilter, mirroring the teacher's ChartEntry.Bounds
// in pkg/s57/index.go.
func (n NodeMeta) Bounds() rtreego.Rect {
	min := n.BoundingCube.Min
	max := n.BoundingCube.Max
	lengths := []float64{max.X - min.X, max.Y - min.Y, max.Z - min.Z}
	for i, l := range lengths {
		if l <= 0 {
			lengths[i] = 1e-9
		}
	}
	rect, err := rtreego.NewRect(rtreego.Point{min.X, min.Y, min.Z}, lengths)
	if err != nil {
		// NewRect only fails on non-positive lengths, guarded against above.
		panic(err)
	}
	return rect
}
