package codec

import "github.com/beetlebugorg/pointcloud/internal/geom"

// EncodedPosition is a position quantized against a node's cube under an
// integer encoding (Uint8, Uint16 or Uint32). Float encodings are not
// represented here: EncodePosition yields zeros for them, and the node
// writer stores their float bit patterns directly instead.
type EncodedPosition struct {
	X, Y, Z uint32 // valid bits occupy the low BytesPerCoordinate()*8 bits
}

// EncodePosition quantizes p against cube under e. Callers writing to disk
// should only persist the low BytesPerCoordinate(e) bytes of each field.
func EncodePosition(p geom.Vec3, cube geom.Cube, e PositionEncoding) EncodedPosition {
	return EncodedPosition{
		X: EncodeCoordinate(p.X, cube.Min.X, cube.Edge, e),
		Y: EncodeCoordinate(p.Y, cube.Min.Y, cube.Edge, e),
		Z: EncodeCoordinate(p.Z, cube.Min.Z, cube.Edge, e),
	}
}

// DecodePosition is the inverse of EncodePosition.
func DecodePosition(enc EncodedPosition, cube geom.Cube, e PositionEncoding) geom.Vec3 {
	return geom.Vec3{
		X: DecodeCoordinate(enc.X, cube.Min.X, cube.Edge, e),
		Y: DecodeCoordinate(enc.Y, cube.Min.Y, cube.Edge, e),
		Z: DecodeCoordinate(enc.Z, cube.Min.Z, cube.Edge, e),
	}
}
