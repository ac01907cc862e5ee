package geom

import "github.com/golang/geo/r3"

// Vec3 is a position in ECEF meters. It is an alias for r3.Vector so that
// geom composes directly with github.com/golang/geo's s2/r3 types used by
// the S2 store.
type Vec3 = r3.Vector

// Cube is an axis-aligned cube identified by its minimum corner and edge
// length. It is the bounding volume of every octree node.
type Cube struct {
	Min  Vec3
	Edge float64
}

// NewCube returns a Cube from its minimum corner and edge length.
func NewCube(min Vec3, edge float64) Cube {
	return Cube{Min: min, Edge: edge}
}

// Max returns the cube's maximum corner.
func (c Cube) Max() Vec3 {
	return Vec3{X: c.Min.X + c.Edge, Y: c.Min.Y + c.Edge, Z: c.Min.Z + c.Edge}
}

// Center returns the cube's center point.
func (c Cube) Center() Vec3 {
	half := c.Edge / 2
	return Vec3{X: c.Min.X + half, Y: c.Min.Y + half, Z: c.Min.Z + half}
}

// Corners returns the cube's 8 corners, ordered by bit pattern
// (bit2=x, bit1=y, bit0=z set means the max side of that axis).
func (c Cube) Corners() [8]Vec3 {
	max := c.Max()
	var corners [8]Vec3
	for i := 0; i < 8; i++ {
		x := c.Min.X
		if i&4 != 0 {
			x = max.X
		}
		y := c.Min.Y
		if i&2 != 0 {
			y = max.Y
		}
		z := c.Min.Z
		if i&1 != 0 {
			z = max.Z
		}
		corners[i] = Vec3{X: x, Y: y, Z: z}
	}
	return corners
}

// Contains reports whether p lies within the cube's closed bounds on every
// axis. Uniqueness of point-to-leaf assignment during a build is guaranteed
// by the octree classifier's use of ">= center", not by this predicate;
// Contains exists for verifying an already-assigned point, not for deciding
// assignment.
func (c Cube) Contains(p Vec3) bool {
	max := c.Max()
	return p.X >= c.Min.X && p.X <= max.X &&
		p.Y >= c.Min.Y && p.Y <= max.Y &&
		p.Z >= c.Min.Z && p.Z <= max.Z
}

// Octant returns 0..7, the child index that contains p under the "coordinate
// >= center uses the upper half" classification rule: bit2 = x, bit1 = y,
// bit0 = z, each bit set iff the coordinate is >= the cube's center on that
// axis.
func (c Cube) Octant(p Vec3) int {
	center := c.Center()
	octant := 0
	if p.X >= center.X {
		octant |= 4
	}
	if p.Y >= center.Y {
		octant |= 2
	}
	if p.Z >= center.Z {
		octant |= 1
	}
	return octant
}

// Child returns the cube of the given octant (0..7). Each child cube is
// exactly one-eighth the volume of its parent.
func (c Cube) Child(octant int) Cube {
	half := c.Edge / 2
	min := c.Min
	if octant&4 != 0 {
		min.X += half
	}
	if octant&2 != 0 {
		min.Y += half
	}
	if octant&1 != 0 {
		min.Z += half
	}
	return Cube{Min: min, Edge: half}
}

// axes returns the 3 axis-aligned unit vectors for a cube, used as
// separating-axis candidates by every Volume's IntersectsCube.
func (Cube) axes() [3]Vec3 {
	return [3]Vec3{{X: 1}, {Y: 1}, {Z: 1}}
}
