package geom

// polyhedron is anything that can hand the SAT test its 8 corners and up to
// 6 distinct edge directions (a box has 3, a frustum's two parallel
// rectangles still reduce to 3 distinct directions... except a frustum's
// side edges are not parallel to its top/bottom edges, so it reports more).
type polyhedron struct {
	corners     [8]Vec3
	faceNormals []Vec3
	edges       []Vec3
}

// candidateAxes builds the full separating-axis candidate set described in
// spec: the volume's own face normals, the cube's 3 axes, and the cross
// product of every volume edge with every cube axis. Degenerate
// (near-zero-length) axes are dropped.
func candidateAxes(p polyhedron, cubeAxes [3]Vec3) []Vec3 {
	axes := make([]Vec3, 0, len(p.faceNormals)+3+len(p.edges)*3)
	axes = append(axes, p.faceNormals...)
	axes = append(axes, cubeAxes[:]...)
	for _, e := range p.edges {
		for _, ca := range cubeAxes {
			cr := e.Cross(ca)
			if cr.Norm2() > 1e-18 {
				axes = append(axes, cr)
			}
		}
	}
	return axes
}

func projectRange(points []Vec3, axis Vec3) (min, max float64) {
	min = points[0].Dot(axis)
	max = min
	for _, p := range points[1:] {
		d := p.Dot(axis)
		if d < min {
			min = d
		}
		if d > max {
			max = d
		}
	}
	return min, max
}

// satIntersectsCube implements the SAT-based three-valued classification
// described in spec.md §4.A: candidate axes are the volume's face normals
// plus the cross products of its edges with the cube's axes. A strict
// separation on any axis is Out; if no axis separates the two shapes, the
// cube is In if every one of its corners projects strictly inside the
// volume's interval on every one of the volume's own face normals, otherwise
// Cross. Strict '<'/'>' comparisons are used throughout so that coincident
// (touching) planes report Cross rather than In or Out.
func satIntersectsCube(p polyhedron, c Cube) Relation {
	cubeCorners := c.Corners()
	cubeAxes := c.axes()
	axes := candidateAxes(p, cubeAxes)

	volCorners := p.corners[:]
	for _, axis := range axes {
		vMin, vMax := projectRange(volCorners, axis)
		cMin, cMax := projectRange(cubeCorners[:], axis)
		if vMax < cMin || vMin > cMax {
			return Out
		}
	}

	if len(p.faceNormals) == 0 {
		return Cross
	}
	for _, axis := range p.faceNormals {
		vMin, vMax := projectRange(volCorners, axis)
		for _, cc := range cubeCorners {
			d := cc.Dot(axis)
			if d <= vMin || d >= vMax {
				return Cross
			}
		}
	}
	return In
}
