package nodeio

import (
	"encoding/binary"
	"fmt"
	"math"
	"os"

	"github.com/beetlebugorg/pointcloud/internal/batchio"
	"github.com/beetlebugorg/pointcloud/internal/codec"
	"github.com/beetlebugorg/pointcloud/internal/geom"
)

// RawNodeWriter accumulates one octree or S2 node's points and writes them
// to per-layer raw little-endian files as they arrive. The position
// encoding is chosen once, at creation, from the node's cube and the
// store's global resolution, and never changes for the writer's lifetime.
type RawNodeWriter struct {
	dir       string
	nodeIDStr string
	cube      geom.Cube
	encoding  codec.PositionEncoding
	schema    map[string]batchio.AttrType

	posFile   *os.File
	attrFiles map[string]*os.File

	numPoints uint64
	bounds    geom.AABB
	boundsSet bool
}

// NewRawNodeWriter opens (Truncate) or reopens for appending (Append) a
// node's layer files under dir.
func NewRawNodeWriter(dir, nodeIDStr string, cube geom.Cube, resolution float64, schema map[string]batchio.AttrType, mode OpenMode) (*RawNodeWriter, error) {
	flag := os.O_WRONLY | os.O_CREATE
	if mode == Truncate {
		flag |= os.O_TRUNC
	} else {
		flag |= os.O_APPEND
	}

	posFile, err := os.OpenFile(layerPath(dir, nodeIDStr, PositionLayer), flag, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open position layer for node %s: %w", nodeIDStr, err)
	}

	w := &RawNodeWriter{
		dir:       dir,
		nodeIDStr: nodeIDStr,
		cube:      cube,
		encoding:  codec.PickEncoding(cube.Edge, resolution),
		schema:    schema,
		posFile:   posFile,
		attrFiles: make(map[string]*os.File, len(schema)),
	}

	for name := range schema {
		f, err := os.OpenFile(layerPath(dir, nodeIDStr, name), flag, 0o644)
		if err != nil {
			w.closeAll()
			return nil, fmt.Errorf("open attribute layer %q for node %s: %w", name, nodeIDStr, err)
		}
		w.attrFiles[name] = f
	}

	return w, nil
}

// Encoding returns the position encoding fixed at creation.
func (w *RawNodeWriter) Encoding() codec.PositionEncoding { return w.encoding }

// NumPoints returns the number of points written so far.
func (w *RawNodeWriter) NumPoints() uint64 { return w.numPoints }

// Bounds returns the running AABB observed over every point written, and
// whether any point has been written yet.
func (w *RawNodeWriter) Bounds() (geom.AABB, bool) { return w.bounds, w.boundsSet }

// Write appends a batch's points to the node's layer files.
func (w *RawNodeWriter) Write(batch *batchio.PointsBatch) error {
	if err := batch.Validate(); err != nil {
		return err
	}

	posBuf := make([]byte, 0, batch.Len()*w.encoding.BytesPerCoordinate()*3)
	for _, p := range batch.Position {
		posBuf = appendPosition(posBuf, p, w.cube, w.encoding)
		w.grow(p)
	}
	if _, err := w.posFile.Write(posBuf); err != nil {
		return fmt.Errorf("write position layer for node %s: %w", w.nodeIDStr, err)
	}

	for name, col := range batch.Attributes {
		f, ok := w.attrFiles[name]
		if !ok {
			return &UnknownAttributeError{NodeID: w.nodeIDStr, Name: name}
		}
		buf, err := encodeColumn(col)
		if err != nil {
			return fmt.Errorf("encode attribute %q for node %s: %w", name, w.nodeIDStr, err)
		}
		if _, err := f.Write(buf); err != nil {
			return fmt.Errorf("write attribute %q for node %s: %w", name, w.nodeIDStr, err)
		}
	}

	w.numPoints += uint64(batch.Len())
	return nil
}

func (w *RawNodeWriter) grow(p geom.Vec3) {
	if !w.boundsSet {
		w.bounds = geom.AABB{Min: p, Max: p}
		w.boundsSet = true
		return
	}
	if p.X < w.bounds.Min.X {
		w.bounds.Min.X = p.X
	}
	if p.Y < w.bounds.Min.Y {
		w.bounds.Min.Y = p.Y
	}
	if p.Z < w.bounds.Min.Z {
		w.bounds.Min.Z = p.Z
	}
	if p.X > w.bounds.Max.X {
		w.bounds.Max.X = p.X
	}
	if p.Y > w.bounds.Max.Y {
		w.bounds.Max.Y = p.Y
	}
	if p.Z > w.bounds.Max.Z {
		w.bounds.Max.Z = p.Z
	}
}

// Finalize flushes every layer file. Per spec.md §4.C this is a no-op beyond
// flush: the encoding choice was already fixed at creation.
func (w *RawNodeWriter) Finalize() error {
	if err := w.posFile.Sync(); err != nil {
		return err
	}
	for _, f := range w.attrFiles {
		if err := f.Sync(); err != nil {
			return err
		}
	}
	return nil
}

// Close closes every open layer file.
func (w *RawNodeWriter) Close() error {
	return w.closeAll()
}

func (w *RawNodeWriter) closeAll() error {
	var firstErr error
	if w.posFile != nil {
		if err := w.posFile.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	for _, f := range w.attrFiles {
		if err := f.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// Remove deletes every layer file belonging to this node, used when an
// internal node is replaced by its children and when a child ends up empty.
// A build that fails partway is cleaned up by the octree builder's
// cleanupDir instead.
func Remove(dir, nodeIDStr string, schema map[string]batchio.AttrType) error {
	var firstErr error
	remove := func(name string) {
		if err := os.Remove(layerPath(dir, nodeIDStr, name)); err != nil && !os.IsNotExist(err) && firstErr == nil {
			firstErr = err
		}
	}
	remove(PositionLayer)
	for name := range schema {
		remove(name)
	}
	return firstErr
}

func appendPosition(buf []byte, p geom.Vec3, cube geom.Cube, e codec.PositionEncoding) []byte {
	switch e {
	case codec.Float32:
		buf = appendFloat32(buf, float32(p.X))
		buf = appendFloat32(buf, float32(p.Y))
		buf = appendFloat32(buf, float32(p.Z))
	case codec.Float64:
		buf = appendFloat64(buf, p.X)
		buf = appendFloat64(buf, p.Y)
		buf = appendFloat64(buf, p.Z)
	default:
		enc := codec.EncodePosition(p, cube, e)
		width := e.BytesPerCoordinate()
		buf = appendUint(buf, enc.X, width)
		buf = appendUint(buf, enc.Y, width)
		buf = appendUint(buf, enc.Z, width)
	}
	return buf
}

func appendUint(buf []byte, v uint32, width int) []byte {
	switch width {
	case 1:
		return append(buf, byte(v))
	case 2:
		var tmp [2]byte
		binary.LittleEndian.PutUint16(tmp[:], uint16(v))
		return append(buf, tmp[:]...)
	case 4:
		var tmp [4]byte
		binary.LittleEndian.PutUint32(tmp[:], v)
		return append(buf, tmp[:]...)
	default:
		return buf
	}
}

func appendFloat32(buf []byte, v float32) []byte {
	var tmp [4]byte
	binary.LittleEndian.PutUint32(tmp[:], math.Float32bits(v))
	return append(buf, tmp[:]...)
}

func appendFloat64(buf []byte, v float64) []byte {
	var tmp [8]byte
	binary.LittleEndian.PutUint64(tmp[:], math.Float64bits(v))
	return append(buf, tmp[:]...)
}

func encodeColumn(c batchio.AttributeColumn) ([]byte, error) {
	switch c.Type {
	case batchio.AttrI64:
		buf := make([]byte, 0, len(c.I64)*8)
		for _, v := range c.I64 {
			var tmp [8]byte
			binary.LittleEndian.PutUint64(tmp[:], uint64(v))
			buf = append(buf, tmp[:]...)
		}
		return buf, nil
	case batchio.AttrU64:
		buf := make([]byte, 0, len(c.U64)*8)
		for _, v := range c.U64 {
			var tmp [8]byte
			binary.LittleEndian.PutUint64(tmp[:], v)
			buf = append(buf, tmp[:]...)
		}
		return buf, nil
	case batchio.AttrF32:
		buf := make([]byte, 0, len(c.F32)*4)
		for _, v := range c.F32 {
			buf = appendFloat32(buf, v)
		}
		return buf, nil
	case batchio.AttrF64:
		buf := make([]byte, 0, len(c.F64)*8)
		for _, v := range c.F64 {
			buf = appendFloat64(buf, v)
		}
		return buf, nil
	case batchio.AttrU8x3:
		buf := make([]byte, 0, len(c.U8x3)*3)
		for _, v := range c.U8x3 {
			buf = append(buf, v[0], v[1], v[2])
		}
		return buf, nil
	case batchio.AttrF64x3:
		buf := make([]byte, 0, len(c.F64x3)*24)
		for _, v := range c.F64x3 {
			buf = appendFloat64(buf, v[0])
			buf = appendFloat64(buf, v[1])
			buf = appendFloat64(buf, v[2])
		}
		return buf, nil
	default:
		return nil, fmt.Errorf("unsupported attribute type %v", c.Type)
	}
}
