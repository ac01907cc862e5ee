package batchio

import (
	"testing"

	"github.com/beetlebugorg/pointcloud/internal/geom"
)

func sampleBatch() *PointsBatch {
	return &PointsBatch{
		Position: []geom.Vec3{{X: 0}, {X: 1}, {X: 2}, {X: 3}},
		Attributes: map[string]AttributeColumn{
			"intensity": {Type: AttrU8x3, U8x3: [][3]uint8{{1, 2, 3}, {4, 5, 6}, {7, 8, 9}, {10, 11, 12}}},
		},
	}
}

func TestPointsBatchValidate(t *testing.T) {
	b := sampleBatch()
	if err := b.Validate(); err != nil {
		t.Fatalf("valid batch rejected: %v", err)
	}

	b.Attributes["intensity"] = AttributeColumn{Type: AttrU8x3, U8x3: [][3]uint8{{1, 2, 3}}}
	if err := b.Validate(); err == nil {
		t.Fatal("expected validation error for mismatched column length")
	}
}

func TestPointsBatchSelect(t *testing.T) {
	b := sampleBatch()
	sel := b.Select([]int{3, 1})
	if sel.Len() != 2 {
		t.Fatalf("expected 2 points, got %d", sel.Len())
	}
	if sel.Position[0].X != 3 || sel.Position[1].X != 1 {
		t.Fatalf("unexpected selected positions: %v", sel.Position)
	}
	col := sel.Attributes["intensity"]
	if col.U8x3[0] != [3]uint8{10, 11, 12} {
		t.Fatalf("unexpected selected attribute: %v", col.U8x3[0])
	}
}

func TestPointIterator(t *testing.T) {
	batches := []*PointsBatch{sampleBatch(), sampleBatch()}
	i := 0
	it := NewPointIterator(func() (*PointsBatch, bool) {
		if i >= len(batches) {
			return nil, false
		}
		b := batches[i]
		i++
		return b, true
	})

	count := 0
	for {
		p, ok := it.Next()
		if !ok {
			break
		}
		if p.Attributes["intensity"] == nil {
			t.Fatal("expected intensity attribute on each point")
		}
		count++
	}
	if count != 8 {
		t.Fatalf("expected 8 points across 2 batches, got %d", count)
	}
}
