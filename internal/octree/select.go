package octree

import (
	"github.com/beetlebugorg/pointcloud/internal/geom"
	"github.com/beetlebugorg/pointcloud/internal/meta"
)

// Candidate is one node selected for a query, plus whether every point
// inside it is already known to satisfy the query volume (the manifest's
// In case), letting the batch iterator (component H) skip its per-point
// filter entirely.
type Candidate struct {
	Node    meta.NodeMeta
	FullyIn bool
}

// trieNode is a virtual (unpersisted) octree node reconstructed purely from
// leaf NodeIds' bit-paths; its cube is derived geometrically and needs no
// stored bounding statistics of its own.
type trieNode struct {
	children [8]*trieNode
	leaf     *meta.NodeMeta
}

func buildTrie(nodes []meta.NodeMeta) *trieNode {
	root := &trieNode{}
	for i := range nodes {
		id, err := ParseNodeId(nodes[i].ID)
		if err != nil {
			continue
		}
		cur := root
		for _, o := range id.Path() {
			if cur.children[o] == nil {
				cur.children[o] = &trieNode{}
			}
			cur = cur.children[o]
		}
		cur.leaf = &nodes[i]
	}
	return root
}

// Select returns the candidate node set for v against an octree manifest,
// per spec.md §4.G: descend from the root, prune on Out, include whole
// subtrees without further checks on In, and recurse into children on
// Cross.
func Select(m *meta.Manifest, v geom.Volume) []Candidate {
	root := buildTrie(m.Nodes)
	var out []Candidate
	walkSelect(root, m.RootCube, v, &out)
	return out
}

func walkSelect(n *trieNode, cube geom.Cube, v geom.Volume, out *[]Candidate) {
	if n == nil {
		return
	}
	switch v.IntersectsCube(cube) {
	case geom.Out:
		return
	case geom.In:
		collectAll(n, out)
	default: // Cross
		if n.leaf != nil {
			*out = append(*out, Candidate{Node: *n.leaf, FullyIn: false})
		}
		for o := 0; o < 8; o++ {
			if n.children[o] != nil {
				walkSelect(n.children[o], cube.Child(o), v, out)
			}
		}
	}
}

func collectAll(n *trieNode, out *[]Candidate) {
	if n.leaf != nil {
		*out = append(*out, Candidate{Node: *n.leaf, FullyIn: true})
	}
	for _, c := range n.children {
		if c != nil {
			collectAll(c, out)
		}
	}
}
