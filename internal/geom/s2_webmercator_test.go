package geom

import (
	"testing"

	"github.com/golang/geo/s2"

	"github.com/beetlebugorg/pointcloud/internal/geodesy"
)

func ecefFor(latDeg, lngDeg, altM float64) Vec3 {
	const deg = 3.14159265358979323846 / 180
	x, y, z := geodesy.GeodeticToECEF(latDeg*deg, lngDeg*deg, altM)
	return Vec3{X: x, Y: y, Z: z}
}

func TestS2CellUnionContains(t *testing.T) {
	p := ecefFor(37.7749, -122.4194, 0) // San Francisco
	level := 12
	id := CellIDForPoint(p, level)
	union := NewS2CellUnion([]s2.CellID{id})

	if !union.Contains(p) {
		t.Fatal("expected union containing the point's own cell to contain the point")
	}

	far := ecefFor(-33.8688, 151.2093, 0) // Sydney
	if union.Contains(far) {
		t.Fatal("a far point should not be contained")
	}
}

func TestS2CellUnionIntersectsCube(t *testing.T) {
	p := ecefFor(37.7749, -122.4194, 0)
	id := CellIDForPoint(p, 8)
	union := NewS2CellUnion([]s2.CellID{id})

	tiny := Cube{Min: Vec3{X: p.X - 1, Y: p.Y - 1, Z: p.Z - 1}, Edge: 2}
	if rel := union.IntersectsCube(tiny); rel == Out {
		t.Fatalf("a cube around a contained point should not be Out, got %v", rel)
	}

	far := ecefFor(-33.8688, 151.2093, 0)
	farCube := Cube{Min: Vec3{X: far.X - 1, Y: far.Y - 1, Z: far.Z - 1}, Edge: 2}
	if rel := union.IntersectsCube(farCube); rel != Out {
		t.Fatalf("a distant cube should be Out, got %v", rel)
	}
}

func TestWebMercatorRectContainsAndCube(t *testing.T) {
	p := ecefFor(10, 20, 5)
	x, y, _ := project(p)
	rect := WebMercatorRect{MinX: x - 0.01, MaxX: x + 0.01, MinY: y - 0.01, MaxY: y + 0.01, MinAlt: -10, MaxAlt: 10}
	if !rect.Contains(p) {
		t.Fatal("point at the center of its own rect should be contained")
	}

	tiny := Cube{Min: Vec3{X: p.X - 0.5, Y: p.Y - 0.5, Z: p.Z - 0.5}, Edge: 1}
	if rel := rect.IntersectsCube(tiny); rel == Out {
		t.Fatalf("tiny cube around contained point should not be Out, got %v", rel)
	}

	antipode := ecefFor(-10, -160, 5)
	farCube := Cube{Min: Vec3{X: antipode.X - 1, Y: antipode.Y - 1, Z: antipode.Z - 1}, Edge: 2}
	if rel := rect.IntersectsCube(farCube); rel != Out {
		t.Fatalf("antipodal cube should be Out, got %v", rel)
	}
}
