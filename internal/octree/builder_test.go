package octree

import (
	"context"
	"math/rand"
	"testing"

	"github.com/beetlebugorg/pointcloud/internal/batchio"
	"github.com/beetlebugorg/pointcloud/internal/geom"
)

func randomBatches(n, batchSize int, cube geom.Cube, seed int64) func() (*batchio.PointsBatch, bool) {
	r := rand.New(rand.NewSource(seed))
	remaining := n
	return func() (*batchio.PointsBatch, bool) {
		if remaining <= 0 {
			return nil, false
		}
		size := batchSize
		if size > remaining {
			size = remaining
		}
		remaining -= size

		positions := make([]geom.Vec3, size)
		classes := make([]int64, size)
		for i := range positions {
			positions[i] = geom.Vec3{
				X: cube.Min.X + r.Float64()*cube.Edge,
				Y: cube.Min.Y + r.Float64()*cube.Edge,
				Z: cube.Min.Z + r.Float64()*cube.Edge,
			}
			classes[i] = int64(i % 5)
		}
		return &batchio.PointsBatch{
			Position: positions,
			Attributes: map[string]batchio.AttributeColumn{
				"classification": {Type: batchio.AttrI64, I64: classes},
			},
		}, true
	}
}

func TestBuildRoundTripCount(t *testing.T) {
	dir := t.TempDir()
	cube := geom.NewCube(geom.Vec3{X: -100, Y: -100, Z: -100}, 200)
	attrs := map[string]batchio.AttrType{"classification": batchio.AttrI64}

	const total = 20000
	result, err := Build(context.Background(), dir, cube, 1e-9, attrs, randomBatches(total, 512, cube, 42), Options{NumThreads: 4, MinPointsForSplit: 500})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	var sum uint64
	for _, n := range result.Manifest.Nodes {
		sum += n.NumPoints
	}
	if sum+result.DroppedPoints != total {
		t.Fatalf("sum(node.num_points)=%d + dropped=%d != total=%d", sum, result.DroppedPoints, total)
	}
	if result.DroppedPoints != 0 {
		t.Fatalf("expected no dropped points for in-bounds random data, got %d", result.DroppedPoints)
	}
	if len(result.Manifest.Nodes) == 0 {
		t.Fatal("expected at least one node in the manifest")
	}
}

func TestBuildDropsOutOfBoundsPoints(t *testing.T) {
	dir := t.TempDir()
	cube := geom.NewCube(geom.Vec3{X: 0, Y: 0, Z: 0}, 10)
	attrs := map[string]batchio.AttrType{}

	calls := 0
	next := func() (*batchio.PointsBatch, bool) {
		if calls > 0 {
			return nil, false
		}
		calls++
		return &batchio.PointsBatch{
			Position: []geom.Vec3{
				{X: 1, Y: 1, Z: 1},   // inside
				{X: 50, Y: 50, Z: 50}, // outside
				{X: 5, Y: 5, Z: 5},   // inside
			},
			Attributes: map[string]batchio.AttributeColumn{},
		}, true
	}

	result, err := Build(context.Background(), dir, cube, 0.001, attrs, next, Options{})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if result.DroppedPoints != 1 {
		t.Fatalf("expected 1 dropped point, got %d", result.DroppedPoints)
	}
	var sum uint64
	for _, n := range result.Manifest.Nodes {
		sum += n.NumPoints
	}
	if sum != 2 {
		t.Fatalf("expected 2 surviving points, got %d", sum)
	}
}

func TestSelectAllPointsReturnsEveryNode(t *testing.T) {
	dir := t.TempDir()
	cube := geom.NewCube(geom.Vec3{X: -50, Y: -50, Z: -50}, 100)
	attrs := map[string]batchio.AttrType{}

	result, err := Build(context.Background(), dir, cube, 1e-9, attrs, randomBatches(5000, 256, cube, 7), Options{MinPointsForSplit: 200})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	candidates := Select(result.Manifest, geom.AllPoints{})
	if len(candidates) != len(result.Manifest.Nodes) {
		t.Fatalf("AllPoints should select every node: got %d want %d", len(candidates), len(result.Manifest.Nodes))
	}
	for _, c := range candidates {
		if !c.FullyIn {
			t.Fatalf("AllPoints query should mark every node FullyIn: %+v", c)
		}
	}
}

func TestSelectAABBPrunesDisjointNodes(t *testing.T) {
	dir := t.TempDir()
	cube := geom.NewCube(geom.Vec3{X: -50, Y: -50, Z: -50}, 100)
	attrs := map[string]batchio.AttrType{}

	result, err := Build(context.Background(), dir, cube, 1e-9, attrs, randomBatches(8000, 256, cube, 99), Options{MinPointsForSplit: 100})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	corner := geom.NewAABB(geom.Vec3{X: -50, Y: -50, Z: -50}, geom.Vec3{X: -45, Y: -45, Z: -45})
	candidates := Select(result.Manifest, corner)
	if len(candidates) == 0 {
		t.Fatal("expected at least one node near the corner")
	}
	if len(candidates) >= len(result.Manifest.Nodes) {
		t.Fatalf("expected AABB query to prune some nodes: got %d of %d", len(candidates), len(result.Manifest.Nodes))
	}
}
