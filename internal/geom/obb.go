package geom

// OBB is an oriented bounding box: a center, a right-handed orthonormal
// rotation basis, and half-extents along that basis.
type OBB struct {
	Center      Vec3
	Rotation    [3]Vec3 // orthonormal local axes, in world space
	HalfExtents Vec3    // half-extent along each local axis
}

// NewOBB returns an OBB from a center, orthonormal rotation basis, and
// half-extents along that basis. The caller is responsible for Rotation
// being orthonormal.
func NewOBB(center Vec3, rotation [3]Vec3, halfExtents Vec3) OBB {
	return OBB{Center: center, Rotation: rotation, HalfExtents: halfExtents}
}

func (o OBB) corners() [8]Vec3 {
	ax, ay, az := o.Rotation[0], o.Rotation[1], o.Rotation[2]
	hx, hy, hz := o.HalfExtents.X, o.HalfExtents.Y, o.HalfExtents.Z
	var corners [8]Vec3
	for i := 0; i < 8; i++ {
		sx, sy, sz := -1.0, -1.0, -1.0
		if i&4 != 0 {
			sx = 1
		}
		if i&2 != 0 {
			sy = 1
		}
		if i&1 != 0 {
			sz = 1
		}
		p := o.Center
		p = p.Add(ax.Mul(sx * hx))
		p = p.Add(ay.Mul(sy * hy))
		p = p.Add(az.Mul(sz * hz))
		corners[i] = p
	}
	return corners
}

// Contains reports whether p lies within the box by projecting p - center
// onto each local axis and comparing against the half-extent on that axis.
func (o OBB) Contains(p Vec3) bool {
	d := p.Sub(o.Center)
	return abs(d.Dot(o.Rotation[0])) <= o.HalfExtents.X &&
		abs(d.Dot(o.Rotation[1])) <= o.HalfExtents.Y &&
		abs(d.Dot(o.Rotation[2])) <= o.HalfExtents.Z
}

// IntersectsCube classifies a cube against the oriented box via SAT, using
// the box's 3 local face normals plus their cross products with the cube's
// 3 world axes as candidate separating axes.
func (o OBB) IntersectsCube(c Cube) Relation {
	p := polyhedron{
		corners:     o.corners(),
		faceNormals: o.Rotation[:],
		edges:       o.Rotation[:],
	}
	return satIntersectsCube(p, c)
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
