package geom

// Plane is a half-space boundary: points p with Normal.Dot(p)+Offset >= 0
// are on the inside of the plane.
type Plane struct {
	Normal Vec3
	Offset float64
}

func (p Plane) signedDistance(v Vec3) float64 {
	return p.Normal.Dot(v) + p.Offset
}

// Frustum is a view volume described by a view-projection matrix, reduced to
// its 6 bounding planes and 8 corners for culling purposes.
type Frustum struct {
	Planes  [6]Plane
	corners [8]Vec3
}

// Mat4 is a 4x4 matrix in row-major order, matching the view-projection
// matrices produced by typical graphics pipelines.
type Mat4 [16]float64

func (m Mat4) row(i int) [4]float64 {
	return [4]float64{m[i*4], m[i*4+1], m[i*4+2], m[i*4+3]}
}

// FrustumFromViewProjection builds a Frustum from a combined view-projection
// matrix using the standard Gribb-Hartmann plane extraction, and computes its
// 8 corners by unprojecting the NDC cube through the matrix's inverse.
func FrustumFromViewProjection(m Mat4, inv Mat4) Frustum {
	r0, r1, r2, r3 := m.row(0), m.row(1), m.row(2), m.row(3)

	mk := func(a, b [4]float64, sign float64) Plane {
		n := Vec3{X: b[0] + sign*a[0], Y: b[1] + sign*a[1], Z: b[2] + sign*a[2]}
		off := b[3] + sign*a[3]
		norm := n.Norm()
		if norm == 0 {
			return Plane{}
		}
		return Plane{Normal: n.Mul(1 / norm), Offset: off / norm}
	}

	f := Frustum{
		Planes: [6]Plane{
			mk(r0, r3, 1),  // left
			mk(r0, r3, -1), // right
			mk(r1, r3, 1),  // bottom
			mk(r1, r3, -1), // top
			mk(r2, r3, 1),  // near
			mk(r2, r3, -1), // far
		},
	}

	ndc := [8]Vec3{
		{X: -1, Y: -1, Z: -1}, {X: 1, Y: -1, Z: -1},
		{X: -1, Y: 1, Z: -1}, {X: 1, Y: 1, Z: -1},
		{X: -1, Y: -1, Z: 1}, {X: 1, Y: -1, Z: 1},
		{X: -1, Y: 1, Z: 1}, {X: 1, Y: 1, Z: 1},
	}
	for i, p := range ndc {
		f.corners[i] = inv.transformPoint(p)
	}
	return f
}

func (m Mat4) transformPoint(p Vec3) Vec3 {
	r0, r1, r2, r3 := m.row(0), m.row(1), m.row(2), m.row(3)
	x := r0[0]*p.X + r0[1]*p.Y + r0[2]*p.Z + r0[3]
	y := r1[0]*p.X + r1[1]*p.Y + r1[2]*p.Z + r1[3]
	z := r2[0]*p.X + r2[1]*p.Y + r2[2]*p.Z + r2[3]
	w := r3[0]*p.X + r3[1]*p.Y + r3[2]*p.Z + r3[3]
	if w == 0 {
		return Vec3{}
	}
	return Vec3{X: x / w, Y: y / w, Z: z / w}
}

// Contains reports whether p is on the inside of all 6 frustum planes.
func (f Frustum) Contains(p Vec3) bool {
	for _, pl := range f.Planes {
		if pl.signedDistance(p) < 0 {
			return false
		}
	}
	return true
}

// IntersectsCube classifies a cube against the frustum via SAT, using the 6
// plane normals plus the 6 distinct edge directions of the frustum's 8
// corners (top/bottom rectangle edges and the 4 side edges connecting them)
// crossed with the cube's 3 axes.
func (f Frustum) IntersectsCube(c Cube) Relation {
	faceNormals := make([]Vec3, 6)
	for i, pl := range f.Planes {
		faceNormals[i] = pl.Normal
	}
	edges := []Vec3{
		f.corners[1].Sub(f.corners[0]),
		f.corners[2].Sub(f.corners[0]),
		f.corners[4].Sub(f.corners[0]),
		f.corners[5].Sub(f.corners[1]),
		f.corners[6].Sub(f.corners[2]),
		f.corners[7].Sub(f.corners[3]),
	}
	p := polyhedron{corners: f.corners, faceNormals: faceNormals, edges: edges}
	return satIntersectsCube(p, c)
}
