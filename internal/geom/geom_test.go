package geom

import (
	"math/rand"
	"testing"
)

// agreement checks property 6 from spec.md §8 on a tiny cube (edge 2e-6)
// around each point p: IntersectsCube must not say Out when v.Contains(p),
// and must not say In when !v.Contains(p). Cross is accepted either way.
func agreement(t *testing.T, name string, v Volume, points []Vec3) {
	t.Helper()
	for _, p := range points {
		tiny := Cube{Min: Vec3{X: p.X - 1e-6, Y: p.Y - 1e-6, Z: p.Z - 1e-6}, Edge: 2e-6}
		rel := v.IntersectsCube(tiny)
		contains := v.Contains(p)
		if rel == Out && contains {
			t.Errorf("%s: point %v: Contains=true but IntersectsCube(tiny)=Out", name, p)
		}
		if rel == In && !contains {
			t.Errorf("%s: point %v: Contains=false but IntersectsCube(tiny)=In", name, p)
		}
	}
}

func randomPoints(seed int64, n int, center Vec3, spread float64) []Vec3 {
	r := rand.New(rand.NewSource(seed))
	pts := make([]Vec3, n)
	for i := range pts {
		pts[i] = Vec3{
			X: center.X + (r.Float64()*2-1)*spread,
			Y: center.Y + (r.Float64()*2-1)*spread,
			Z: center.Z + (r.Float64()*2-1)*spread,
		}
	}
	return pts
}

func TestAABBSATAgreement(t *testing.T) {
	aabb := NewAABB(Vec3{X: -10, Y: -10, Z: -10}, Vec3{X: 10, Y: 10, Z: 10})
	agreement(t, "aabb", aabb, randomPoints(1, 500, Vec3{}, 15))
}

func TestOBBSATAgreement(t *testing.T) {
	obb := NewOBB(Vec3{X: 5, Y: 0, Z: 0}, [3]Vec3{{X: 1}, {Y: 1}, {Z: 1}}, Vec3{X: 4, Y: 6, Z: 8})
	agreement(t, "obb-axis-aligned", obb, randomPoints(2, 500, Vec3{X: 5}, 10))

	// A 45-degree rotation about Z.
	c, s := 0.70710678, 0.70710678
	rotated := NewOBB(Vec3{}, [3]Vec3{{X: c, Y: s}, {X: -s, Y: c}, {Z: 1}}, Vec3{X: 4, Y: 4, Z: 4})
	agreement(t, "obb-rotated", rotated, randomPoints(3, 500, Vec3{}, 8))
}

func TestAABBIntersectsCubeIn(t *testing.T) {
	aabb := NewAABB(Vec3{X: -100, Y: -100, Z: -100}, Vec3{X: 100, Y: 100, Z: 100})
	inner := Cube{Min: Vec3{X: -1, Y: -1, Z: -1}, Edge: 2}
	if rel := aabb.IntersectsCube(inner); rel != In {
		t.Fatalf("expected In, got %v", rel)
	}
}

func TestAABBIntersectsCubeOut(t *testing.T) {
	aabb := NewAABB(Vec3{X: -1, Y: -1, Z: -1}, Vec3{X: 1, Y: 1, Z: 1})
	far := Cube{Min: Vec3{X: 100, Y: 100, Z: 100}, Edge: 1}
	if rel := aabb.IntersectsCube(far); rel != Out {
		t.Fatalf("expected Out, got %v", rel)
	}
}

func TestAABBIntersectsCubeTouchingIsCross(t *testing.T) {
	aabb := NewAABB(Vec3{X: 0, Y: 0, Z: 0}, Vec3{X: 1, Y: 1, Z: 1})
	touching := Cube{Min: Vec3{X: 1, Y: 0, Z: 0}, Edge: 1}
	if rel := aabb.IntersectsCube(touching); rel != Cross {
		t.Fatalf("touching planes should report Cross, got %v", rel)
	}
}

func TestCubeOctantAndChild(t *testing.T) {
	root := Cube{Min: Vec3{X: -8, Y: -8, Z: -8}, Edge: 16}
	p := Vec3{X: 1, Y: -1, Z: 5}
	oct := root.Octant(p)
	child := root.Child(oct)
	if !child.Contains(p) {
		t.Fatalf("child %d of octant classification does not contain point %v", oct, p)
	}
	if child.Edge != root.Edge/2 {
		t.Fatalf("child edge should be half of parent")
	}
}

func TestAllPointsAlwaysIn(t *testing.T) {
	var v AllPoints
	if !v.Contains(Vec3{X: 123, Y: -5, Z: 1e9}) {
		t.Fatal("AllPoints must contain every point")
	}
	if rel := v.IntersectsCube(Cube{Edge: 1}); rel != In {
		t.Fatalf("AllPoints must always classify In, got %v", rel)
	}
}
