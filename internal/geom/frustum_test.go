package geom

import "testing"

// identityOrtho builds an orthographic view-projection matrix (and its
// trivially-computed inverse, since it is a pure scale) mapping the box
// [-half,half]^3 to NDC [-1,1]^3, for testing Frustum against a known cube.
func identityOrtho(half float64) (Mat4, Mat4) {
	s := 1 / half
	m := Mat4{
		s, 0, 0, 0,
		0, s, 0, 0,
		0, 0, s, 0,
		0, 0, 0, 1,
	}
	inv := Mat4{
		half, 0, 0, 0,
		0, half, 0, 0,
		0, 0, half, 0,
		0, 0, 0, 1,
	}
	return m, inv
}

func TestFrustumContainsCenter(t *testing.T) {
	m, inv := identityOrtho(10)
	f := FrustumFromViewProjection(m, inv)
	if !f.Contains(Vec3{}) {
		t.Fatal("origin should be inside a symmetric frustum")
	}
	if f.Contains(Vec3{X: 20}) {
		t.Fatal("point far outside half-extent should not be contained")
	}
}

func TestFrustumIntersectsCube(t *testing.T) {
	m, inv := identityOrtho(10)
	f := FrustumFromViewProjection(m, inv)

	inner := Cube{Min: Vec3{X: -1, Y: -1, Z: -1}, Edge: 2}
	if rel := f.IntersectsCube(inner); rel != In {
		t.Fatalf("expected In, got %v", rel)
	}

	outer := Cube{Min: Vec3{X: 100, Y: 100, Z: 100}, Edge: 1}
	if rel := f.IntersectsCube(outer); rel != Out {
		t.Fatalf("expected Out, got %v", rel)
	}

	straddling := Cube{Min: Vec3{X: 9, Y: -1, Z: -1}, Edge: 2}
	if rel := f.IntersectsCube(straddling); rel != Cross {
		t.Fatalf("expected Cross, got %v", rel)
	}
}
