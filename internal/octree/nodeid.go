// Package octree implements the octree store: the bit-path NodeId, the
// parallel shard/split builder (component D), and the recursive
// node-selection engine (component G).
package octree

import (
	"math/bits"
	"strconv"

	"github.com/beetlebugorg/pointcloud/internal/geom"
)

// NodeId is a bit-path from the root, encoded as a variable-bit integer
// whose most-significant set bit is a sentinel; the remaining bits are
// 3-bit child indices (x-bit, y-bit, z-bit), read most-significant group
// first, from root downward.
type NodeId uint64

// Root is the NodeId of the root node: the sentinel bit alone, no path.
const Root NodeId = 1

// Child returns the NodeId of the given octant (0..7) below id.
func (id NodeId) Child(octant int) NodeId {
	return id<<3 | NodeId(octant)
}

// Parent returns id's parent and true, or (0, false) if id is the root.
func (id NodeId) Parent() (NodeId, bool) {
	if id == Root {
		return 0, false
	}
	return id >> 3, true
}

// Depth returns the number of levels below the root id sits at.
func (id NodeId) Depth() int {
	return (bits.Len64(uint64(id)) - 1) / 3
}

// Path returns the sequence of octant indices from the root down to id.
func (id NodeId) Path() []int {
	d := id.Depth()
	path := make([]int, d)
	v := uint64(id)
	for i := d - 1; i >= 0; i-- {
		path[i] = int(v & 0b111)
		v >>= 3
	}
	return path
}

// Cube derives id's bounding cube from the store's root cube by walking
// id's path, halving along the indicated octant at each level.
func (id NodeId) Cube(root geom.Cube) geom.Cube {
	c := root
	for _, o := range id.Path() {
		c = c.Child(o)
	}
	return c
}

// String renders id as a hex string, the on-disk node filename stem
// (spec.md §6: "the hex/base-N rendering of the NodeId sentinel-bit
// encoding").
func (id NodeId) String() string {
	return strconv.FormatUint(uint64(id), 16)
}

// ParseNodeId parses the hex rendering produced by NodeId.String.
func ParseNodeId(s string) (NodeId, error) {
	v, err := strconv.ParseUint(s, 16, 64)
	if err != nil {
		return 0, err
	}
	return NodeId(v), nil
}
