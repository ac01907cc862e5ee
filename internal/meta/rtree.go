package meta

import (
	"github.com/dhconnelly/rtreego"

	"github.com/beetlebugorg/pointcloud/internal/geom"
)

// Index is an in-memory R-tree prefilter over a manifest's node list,
// letting the node-selection engine (component G) discard obviously
// disjoint nodes in O(log n) before running the exact recursive or
// cell-membership test spec.md mandates. Mirrors the teacher's
// "R-tree accelerates, exact check decides" pattern in pkg/s57/index.go's
// ChartIndex.
type Index struct {
	nodes []NodeMeta
	tree  *rtreego.Rtree
}

// NewIndex builds an R-tree over every node in nodes. min/max children
// follow rtreego's own defaults used by the teacher (25, 50).
func NewIndex(nodes []NodeMeta) *Index {
	tree := rtreego.NewTree(3, 25, 50)
	for _, n := range nodes {
		tree.Insert(n)
	}
	return &Index{nodes: nodes, tree: tree}
}

// Candidates returns every node whose bounding box intersects box. This is
// a conservative prefilter: callers still must run the exact intersects_cube
// or cell-membership test before accepting a node into a query's result.
func (idx *Index) Candidates(box geom.AABB) []NodeMeta {
	lengths := []float64{box.Max.X - box.Min.X, box.Max.Y - box.Min.Y, box.Max.Z - box.Min.Z}
	for i, l := range lengths {
		if l <= 0 {
			lengths[i] = 1e-9
		}
	}
	rect, err := rtreego.NewRect(rtreego.Point{box.Min.X, box.Min.Y, box.Min.Z}, lengths)
	if err != nil {
		return idx.nodes
	}

	hits := idx.tree.SearchIntersect(rect)
	out := make([]NodeMeta, 0, len(hits))
	for _, h := range hits {
		out = append(out, h.(NodeMeta))
	}
	return out
}
