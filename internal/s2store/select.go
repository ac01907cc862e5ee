package s2store

import (
	"github.com/beetlebugorg/pointcloud/internal/geom"
	"github.com/beetlebugorg/pointcloud/internal/meta"
)

// Candidate is one node selected for a query, plus whether every point
// inside it is already known to satisfy the query volume.
type Candidate struct {
	Node    meta.NodeMeta
	FullyIn bool
}

// Select returns the candidate node set for v against an S2 manifest.
// Unlike the octree store there is no hierarchy to descend: every manifest
// node is a leaf at the same split level, so each node's bounding box,
// widened to a cube, is tested directly against v (spec.md §4.G's S2 variant: "enumerate the
// manifest's cell ids and test whether its envelope intersects V").
func Select(m *meta.Manifest, v geom.Volume) []Candidate {
	out := make([]Candidate, 0, len(m.Nodes))
	for _, n := range m.Nodes {
		cube := geom.NewCube(n.BoundingCube.Min, maxAxis(n.BoundingCube))
		switch v.IntersectsCube(cube) {
		case geom.Out:
			continue
		case geom.In:
			out = append(out, Candidate{Node: n, FullyIn: true})
		default:
			out = append(out, Candidate{Node: n, FullyIn: false})
		}
	}
	return out
}

// maxAxis returns the largest axis extent of an AABB, used to recover an
// over-approximating cube edge from the AABB a NodeMeta stores (NodeMeta
// keeps an AABB rather than a Cube so it can serve both store variants).
func maxAxis(b geom.AABB) float64 {
	d := b.Max.Sub(b.Min)
	e := d.X
	if d.Y > e {
		e = d.Y
	}
	if d.Z > e {
		e = d.Z
	}
	return e
}
