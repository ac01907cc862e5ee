// Package batchio defines the column-oriented PointsBatch data model shared
// by every component that moves points around (node writer/reader, the
// octree builder, the S2 splitter, and the query-side batch iterator), plus
// a thin per-point adapter over it.
package batchio

import (
	"fmt"

	"github.com/beetlebugorg/pointcloud/internal/geom"
)

// AttrType is the open set of typed attribute kinds a store's schema may
// declare, matching spec.md §3's enumeration.
type AttrType int

const (
	AttrI64 AttrType = iota
	AttrU64
	AttrF32
	AttrF64
	AttrU8x3
	AttrF64x3
)

func (t AttrType) String() string {
	switch t {
	case AttrI64:
		return "I64"
	case AttrU64:
		return "U64"
	case AttrF32:
		return "F32"
	case AttrF64:
		return "F64"
	case AttrU8x3:
		return "U8x3"
	case AttrF64x3:
		return "F64x3"
	default:
		return "AttrType(?)"
	}
}

// BytesPerRecord returns the on-disk width of one attribute value.
func (t AttrType) BytesPerRecord() int {
	switch t {
	case AttrI64, AttrU64, AttrF64:
		return 8
	case AttrF32:
		return 4
	case AttrU8x3:
		return 3
	case AttrF64x3:
		return 24
	default:
		return 0
	}
}

// AttributeColumn is one named attribute's column: exactly one of the typed
// slices below is populated, selected by Type.
type AttributeColumn struct {
	Type AttrType

	I64   []int64
	U64   []uint64
	F32   []float32
	F64   []float64
	U8x3  [][3]uint8
	F64x3 [][3]float64
}

// Len returns the column's length, i.e. the number of points it covers.
func (c AttributeColumn) Len() int {
	switch c.Type {
	case AttrI64:
		return len(c.I64)
	case AttrU64:
		return len(c.U64)
	case AttrF32:
		return len(c.F32)
	case AttrF64:
		return len(c.F64)
	case AttrU8x3:
		return len(c.U8x3)
	case AttrF64x3:
		return len(c.F64x3)
	default:
		return 0
	}
}

// Select returns a new column containing only the given indices, in order.
func (c AttributeColumn) Select(indices []int) AttributeColumn {
	out := AttributeColumn{Type: c.Type}
	switch c.Type {
	case AttrI64:
		out.I64 = make([]int64, len(indices))
		for i, idx := range indices {
			out.I64[i] = c.I64[idx]
		}
	case AttrU64:
		out.U64 = make([]uint64, len(indices))
		for i, idx := range indices {
			out.U64[i] = c.U64[idx]
		}
	case AttrF32:
		out.F32 = make([]float32, len(indices))
		for i, idx := range indices {
			out.F32[i] = c.F32[idx]
		}
	case AttrF64:
		out.F64 = make([]float64, len(indices))
		for i, idx := range indices {
			out.F64[i] = c.F64[idx]
		}
	case AttrU8x3:
		out.U8x3 = make([][3]uint8, len(indices))
		for i, idx := range indices {
			out.U8x3[i] = c.U8x3[idx]
		}
	case AttrF64x3:
		out.F64x3 = make([][3]float64, len(indices))
		for i, idx := range indices {
			out.F64x3[i] = c.F64x3[idx]
		}
	}
	return out
}

// PointsBatch is the struct-of-arrays transport unit used end-to-end:
// positions plus a name->typed-column mapping. Every attribute column's
// length must equal len(Position).
type PointsBatch struct {
	Position   []geom.Vec3
	Attributes map[string]AttributeColumn
}

// Len returns the number of points in the batch.
func (b *PointsBatch) Len() int {
	return len(b.Position)
}

// Validate checks the struct-of-arrays length invariant.
func (b *PointsBatch) Validate() error {
	n := len(b.Position)
	for name, col := range b.Attributes {
		if col.Len() != n {
			return fmt.Errorf("attribute %q has %d values, want %d (position count)", name, col.Len(), n)
		}
	}
	return nil
}

// Select returns a new batch containing only the given indices, preserving
// order, mirroring the positions and every attribute column in parallel.
func (b *PointsBatch) Select(indices []int) *PointsBatch {
	out := &PointsBatch{
		Position:   make([]geom.Vec3, len(indices)),
		Attributes: make(map[string]AttributeColumn, len(b.Attributes)),
	}
	for i, idx := range indices {
		out.Position[i] = b.Position[idx]
	}
	for name, col := range b.Attributes {
		out.Attributes[name] = col.Select(indices)
	}
	return out
}
