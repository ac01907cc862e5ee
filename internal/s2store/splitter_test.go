package s2store

import (
	"math/rand"
	"testing"

	"github.com/golang/geo/s2"

	"github.com/beetlebugorg/pointcloud/internal/batchio"
	"github.com/beetlebugorg/pointcloud/internal/geodesy"
	"github.com/beetlebugorg/pointcloud/internal/geom"
	"github.com/beetlebugorg/pointcloud/internal/meta"
	"github.com/beetlebugorg/pointcloud/internal/nodeio"
)

// randomECEFPoints scatters points over a small patch of the Earth's surface
// near San Francisco, within a box small enough that a modest split level
// produces more than one cell.
func randomECEFPoints(n int, seed int64) []geom.Vec3 {
	r := rand.New(rand.NewSource(seed))
	pts := make([]geom.Vec3, n)
	for i := range pts {
		lat := (37.7 + r.Float64()*0.05) * (3.14159265358979 / 180)
		lng := (-122.45 + r.Float64()*0.05) * (3.14159265358979 / 180)
		x, y, z := geodesy.GeodeticToECEF(lat, lng, 0)
		pts[i] = geom.Vec3{X: x, Y: y, Z: z}
	}
	return pts
}

func batchOf(pts []geom.Vec3) *batchio.PointsBatch {
	classes := make([]int64, len(pts))
	for i := range classes {
		classes[i] = int64(i % 3)
	}
	return &batchio.PointsBatch{
		Position: pts,
		Attributes: map[string]batchio.AttributeColumn{
			"classification": {Type: batchio.AttrI64, I64: classes},
		},
	}
}

func TestSplitterRoundTripCount(t *testing.T) {
	dir := t.TempDir()
	attrs := map[string]batchio.AttrType{"classification": batchio.AttrI64}

	const total = 4000
	pts := randomECEFPoints(total, 1)

	sp := NewSplitter(dir, 0.01, attrs, Options{Level: 16})
	const batchSize = 256
	for i := 0; i < len(pts); i += batchSize {
		end := i + batchSize
		if end > len(pts) {
			end = len(pts)
		}
		if err := sp.Write(batchOf(pts[i:end])); err != nil {
			t.Fatalf("Write: %v", err)
		}
	}

	m, err := sp.Finalize()
	if err != nil {
		t.Fatalf("Finalize: %v", err)
	}
	if m.Variant != meta.VariantS2 {
		t.Fatalf("expected variant s2, got %v", m.Variant)
	}
	if len(m.Nodes) == 0 {
		t.Fatal("expected at least one node")
	}

	var sum uint64
	for _, n := range m.Nodes {
		sum += n.NumPoints
	}
	if sum != total {
		t.Fatalf("sum(node.num_points)=%d != total=%d", sum, total)
	}

	for _, n := range m.Nodes {
		id := s2.CellIDFromToken(n.ID)
		if !id.IsValid() {
			t.Fatalf("node id %q is not a valid S2 token", n.ID)
		}
		r, err := nodeio.NewRawNodeReader(dir, n.ID, geom.NewCube(n.BoundingCube.Min, maxAxis(n.BoundingCube)), n.Encoding, attrs, int(n.NumPoints), 512)
		if err != nil {
			t.Fatalf("reader for node %s: %v", n.ID, err)
		}
		var read uint64
		for {
			batch, err := r.NextBatch()
			if err != nil {
				t.Fatalf("NextBatch: %v", err)
			}
			if batch == nil {
				break
			}
			read += uint64(batch.Len())
		}
		r.Close()
		if read != n.NumPoints {
			t.Fatalf("node %s: read %d points, manifest says %d", n.ID, read, n.NumPoints)
		}
	}
}

func TestSplitterLRUEvictionReopensCorrectly(t *testing.T) {
	dir := t.TempDir()
	attrs := map[string]batchio.AttrType{}

	// Many distinct cells with a tight MaxOpenFiles bound forces repeated
	// eviction and reopen cycles on the same cell across batches.
	const total = 3000
	pts := randomECEFPoints(total, 2)

	sp := NewSplitter(dir, 0.01, attrs, Options{Level: 18, MaxOpenFiles: 3})
	const batchSize = 64
	for i := 0; i < len(pts); i += batchSize {
		end := i + batchSize
		if end > len(pts) {
			end = len(pts)
		}
		if err := sp.Write(&batchio.PointsBatch{Position: pts[i:end], Attributes: map[string]batchio.AttributeColumn{}}); err != nil {
			t.Fatalf("Write: %v", err)
		}
	}

	m, err := sp.Finalize()
	if err != nil {
		t.Fatalf("Finalize: %v", err)
	}

	var sum uint64
	for _, n := range m.Nodes {
		sum += n.NumPoints
	}
	if sum != total {
		t.Fatalf("sum(node.num_points)=%d != total=%d despite eviction/reopen cycles", sum, total)
	}
}

func TestSelectPrunesDistantCells(t *testing.T) {
	dir := t.TempDir()
	attrs := map[string]batchio.AttrType{}

	near := randomECEFPoints(1000, 3)
	sp := NewSplitter(dir, 0.01, attrs, Options{Level: 16})
	if err := sp.Write(&batchio.PointsBatch{Position: near, Attributes: map[string]batchio.AttributeColumn{}}); err != nil {
		t.Fatalf("Write: %v", err)
	}
	m, err := sp.Finalize()
	if err != nil {
		t.Fatalf("Finalize: %v", err)
	}
	if len(m.Nodes) == 0 {
		t.Fatal("expected at least one node")
	}

	all := Select(m, geom.AllPoints{})
	if len(all) != len(m.Nodes) {
		t.Fatalf("AllPoints should select every node: got %d want %d", len(all), len(m.Nodes))
	}

	// A box far from San Francisco should select nothing.
	farX, farY, farZ := geodesy.GeodeticToECEF(0, 0, 0)
	far := geom.NewAABB(geom.Vec3{X: farX - 1, Y: farY - 1, Z: farZ - 1}, geom.Vec3{X: farX + 1, Y: farY + 1, Z: farZ + 1})
	none := Select(m, far)
	if len(none) != 0 {
		t.Fatalf("expected no nodes near (0,0): got %d", len(none))
	}
}
