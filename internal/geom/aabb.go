package geom

// AABB is an axis-aligned bounding box culling volume.
type AABB struct {
	Min, Max Vec3
}

// NewAABB returns an AABB from its min and max corners.
func NewAABB(min, max Vec3) AABB {
	return AABB{Min: min, Max: max}
}

// Contains reports whether p lies within the closed box.
func (a AABB) Contains(p Vec3) bool {
	return p.X >= a.Min.X && p.X <= a.Max.X &&
		p.Y >= a.Min.Y && p.Y <= a.Max.Y &&
		p.Z >= a.Min.Z && p.Z <= a.Max.Z
}

// IntersectsCube classifies a cube against the box via SAT. Since both
// shapes are axis aligned, the only candidate separating axes are the 3
// world axes; the box is given no edge directions, so no cross-product axes
// are generated.
func (a AABB) IntersectsCube(c Cube) Relation {
	corners := boxCorners(a.Min, a.Max)
	p := polyhedron{
		corners:     corners,
		faceNormals: []Vec3{{X: 1}, {Y: 1}, {Z: 1}},
	}
	return satIntersectsCube(p, c)
}

func boxCorners(min, max Vec3) [8]Vec3 {
	var c [8]Vec3
	for i := 0; i < 8; i++ {
		x := min.X
		if i&4 != 0 {
			x = max.X
		}
		y := min.Y
		if i&2 != 0 {
			y = max.Y
		}
		z := min.Z
		if i&1 != 0 {
			z = max.Z
		}
		c[i] = Vec3{X: x, Y: y, Z: z}
	}
	return c
}
