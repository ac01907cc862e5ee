package nodeio

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"os"

	"github.com/beetlebugorg/pointcloud/internal/batchio"
	"github.com/beetlebugorg/pointcloud/internal/codec"
	"github.com/beetlebugorg/pointcloud/internal/geom"
)

// RawNodeReader exposes a node's points as a bounded lazy sequence of
// PointsBatch, decoding each record on the fly from the raw per-layer files.
type RawNodeReader struct {
	dir       string
	nodeIDStr string
	cube      geom.Cube
	encoding  codec.PositionEncoding
	schema    map[string]batchio.AttrType

	posFile   *os.File
	attrFiles map[string]*os.File

	numPoints int
	read      int
	batchSize int
}

// NewRawNodeReader opens a node's layer files for reading. numPoints is the
// authoritative point count from the store's manifest; encoding is the
// position encoding recorded for this node at build time.
func NewRawNodeReader(dir, nodeIDStr string, cube geom.Cube, encoding codec.PositionEncoding, schema map[string]batchio.AttrType, numPoints, batchSize int) (*RawNodeReader, error) {
	if batchSize <= 0 {
		return nil, fmt.Errorf("batch size must be positive, got %d", batchSize)
	}
	if !validEncoding(encoding) {
		return nil, &UnsupportedEncodingError{NodeID: nodeIDStr, Encoding: int(encoding)}
	}

	posFile, err := os.Open(layerPath(dir, nodeIDStr, PositionLayer))
	if err != nil {
		return nil, fmt.Errorf("open position layer for node %s: %w", nodeIDStr, err)
	}

	r := &RawNodeReader{
		dir:       dir,
		nodeIDStr: nodeIDStr,
		cube:      cube,
		encoding:  encoding,
		schema:    schema,
		posFile:   posFile,
		attrFiles: make(map[string]*os.File, len(schema)),
		numPoints: numPoints,
		batchSize: batchSize,
	}

	for name := range schema {
		f, err := os.Open(layerPath(dir, nodeIDStr, name))
		if err != nil {
			r.Close()
			return nil, fmt.Errorf("open attribute layer %q for node %s: %w", name, nodeIDStr, err)
		}
		r.attrFiles[name] = f
	}

	return r, nil
}

// Close closes every open layer file.
func (r *RawNodeReader) Close() error {
	var firstErr error
	if r.posFile != nil {
		if err := r.posFile.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	for _, f := range r.attrFiles {
		if err := f.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// NextBatch returns up to batchSize more points, or (nil, nil) once every
// point has been read.
func (r *RawNodeReader) NextBatch() (*batchio.PointsBatch, error) {
	if r.read >= r.numPoints {
		return nil, nil
	}

	n := r.batchSize
	if remaining := r.numPoints - r.read; n > remaining {
		n = remaining
	}

	posWidth := r.encoding.BytesPerCoordinate()
	posBuf := make([]byte, n*posWidth*3)
	if _, err := io.ReadFull(r.posFile, posBuf); err != nil {
		return nil, fmt.Errorf("read position layer for node %s: %w", r.nodeIDStr, err)
	}

	positions := make([]geom.Vec3, n)
	for i := 0; i < n; i++ {
		positions[i] = decodePositionAt(posBuf[i*posWidth*3:], r.cube, r.encoding)
	}

	attrs := make(map[string]batchio.AttributeColumn, len(r.schema))
	for name, attrType := range r.schema {
		f := r.attrFiles[name]
		width := attrType.BytesPerRecord()
		buf := make([]byte, n*width)
		if _, err := io.ReadFull(f, buf); err != nil {
			return nil, fmt.Errorf("read attribute %q for node %s: %w", name, r.nodeIDStr, err)
		}
		col, err := decodeColumn(attrType, buf, n)
		if err != nil {
			return nil, err
		}
		attrs[name] = col
	}

	r.read += n
	return &batchio.PointsBatch{Position: positions, Attributes: attrs}, nil
}

// validEncoding reports whether e is one of the position encodings this
// build knows how to decode. A manifest written by a newer build (or
// corrupted) could name a value outside this set.
func validEncoding(e codec.PositionEncoding) bool {
	switch e {
	case codec.Uint8, codec.Uint16, codec.Uint32, codec.Float32, codec.Float64:
		return true
	default:
		return false
	}
}

func decodePositionAt(buf []byte, cube geom.Cube, e codec.PositionEncoding) geom.Vec3 {
	switch e {
	case codec.Float32:
		return geom.Vec3{
			X: float64(math.Float32frombits(binary.LittleEndian.Uint32(buf[0:4]))),
			Y: float64(math.Float32frombits(binary.LittleEndian.Uint32(buf[4:8]))),
			Z: float64(math.Float32frombits(binary.LittleEndian.Uint32(buf[8:12]))),
		}
	case codec.Float64:
		return geom.Vec3{
			X: math.Float64frombits(binary.LittleEndian.Uint64(buf[0:8])),
			Y: math.Float64frombits(binary.LittleEndian.Uint64(buf[8:16])),
			Z: math.Float64frombits(binary.LittleEndian.Uint64(buf[16:24])),
		}
	default:
		width := e.BytesPerCoordinate()
		enc := codec.EncodedPosition{
			X: readUint(buf[0*width:], width),
			Y: readUint(buf[1*width:], width),
			Z: readUint(buf[2*width:], width),
		}
		return codec.DecodePosition(enc, cube, e)
	}
}

func readUint(buf []byte, width int) uint32 {
	switch width {
	case 1:
		return uint32(buf[0])
	case 2:
		return uint32(binary.LittleEndian.Uint16(buf[0:2]))
	case 4:
		return binary.LittleEndian.Uint32(buf[0:4])
	default:
		return 0
	}
}

func decodeColumn(t batchio.AttrType, buf []byte, n int) (batchio.AttributeColumn, error) {
	col := batchio.AttributeColumn{Type: t}
	switch t {
	case batchio.AttrI64:
		col.I64 = make([]int64, n)
		for i := range col.I64 {
			col.I64[i] = int64(binary.LittleEndian.Uint64(buf[i*8 : i*8+8]))
		}
	case batchio.AttrU64:
		col.U64 = make([]uint64, n)
		for i := range col.U64 {
			col.U64[i] = binary.LittleEndian.Uint64(buf[i*8 : i*8+8])
		}
	case batchio.AttrF32:
		col.F32 = make([]float32, n)
		for i := range col.F32 {
			col.F32[i] = math.Float32frombits(binary.LittleEndian.Uint32(buf[i*4 : i*4+4]))
		}
	case batchio.AttrF64:
		col.F64 = make([]float64, n)
		for i := range col.F64 {
			col.F64[i] = math.Float64frombits(binary.LittleEndian.Uint64(buf[i*8 : i*8+8]))
		}
	case batchio.AttrU8x3:
		col.U8x3 = make([][3]uint8, n)
		for i := range col.U8x3 {
			col.U8x3[i] = [3]uint8{buf[i*3], buf[i*3+1], buf[i*3+2]}
		}
	case batchio.AttrF64x3:
		col.F64x3 = make([][3]float64, n)
		for i := range col.F64x3 {
			off := i * 24
			col.F64x3[i] = [3]float64{
				math.Float64frombits(binary.LittleEndian.Uint64(buf[off : off+8])),
				math.Float64frombits(binary.LittleEndian.Uint64(buf[off+8 : off+16])),
				math.Float64frombits(binary.LittleEndian.Uint64(buf[off+16 : off+24])),
			}
		}
	default:
		return batchio.AttributeColumn{}, fmt.Errorf("unsupported attribute type %v", t)
	}
	return col, nil
}
