package batchio

import "github.com/beetlebugorg/pointcloud/internal/geom"

// Point is a single point's view into a PointsBatch, used only as a thin
// adapter for callers that want per-point iteration; the column-oriented
// PointsBatch remains the primary transport type end-to-end (spec.md §9).
type Point struct {
	Position   geom.Vec3
	Attributes map[string]any
}

// PointIterator adapts a sequence of PointsBatch into a per-point iterator.
// Next returns false once every batch has been exhausted.
type PointIterator struct {
	next   func() (*PointsBatch, bool)
	batch  *PointsBatch
	offset int
}

// NewPointIterator wraps a batch source (e.g. a node reader's NextBatch)
// into a per-point iterator.
func NewPointIterator(next func() (*PointsBatch, bool)) *PointIterator {
	return &PointIterator{next: next}
}

// Next returns the next point, or false when exhausted.
func (it *PointIterator) Next() (Point, bool) {
	for it.batch == nil || it.offset >= it.batch.Len() {
		b, ok := it.next()
		if !ok {
			return Point{}, false
		}
		it.batch = b
		it.offset = 0
	}

	i := it.offset
	it.offset++
	p := Point{Position: it.batch.Position[i], Attributes: make(map[string]any, len(it.batch.Attributes))}
	for name, col := range it.batch.Attributes {
		p.Attributes[name] = columnValue(col, i)
	}
	return p, true
}

func columnValue(c AttributeColumn, i int) any {
	switch c.Type {
	case AttrI64:
		return c.I64[i]
	case AttrU64:
		return c.U64[i]
	case AttrF32:
		return c.F32[i]
	case AttrF64:
		return c.F64[i]
	case AttrU8x3:
		return c.U8x3[i]
	case AttrF64x3:
		return c.F64x3[i]
	default:
		return nil
	}
}
