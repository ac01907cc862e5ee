// Package codec implements the per-node fixed-point position codec: folding
// a world-space coordinate inside a node's cube into an N-byte unsigned
// integer (or passing it through as a float), and picking the smallest
// integer width that still meets a node's resolution bound.
package codec

import "math"

// PositionEncoding names the on-disk representation chosen for a node's
// positions.
type PositionEncoding int

const (
	Uint8 PositionEncoding = iota
	Uint16
	Uint32
	Float32
	Float64
)

func (e PositionEncoding) String() string {
	switch e {
	case Uint8:
		return "Uint8"
	case Uint16:
		return "Uint16"
	case Uint32:
		return "Uint32"
	case Float32:
		return "Float32"
	case Float64:
		return "Float64"
	default:
		return "PositionEncoding(?)"
	}
}

// BytesPerCoordinate returns the on-disk width, in bytes, of one encoded
// coordinate under this encoding.
func (e PositionEncoding) BytesPerCoordinate() int {
	switch e {
	case Uint8:
		return 1
	case Uint16:
		return 2
	case Uint32:
		return 4
	case Float32:
		return 4
	case Float64:
		return 8
	default:
		return 0
	}
}

// IsInteger reports whether the encoding is a quantized fixed-point width
// rather than a pass-through float.
func (e PositionEncoding) IsInteger() bool {
	return e == Uint8 || e == Uint16 || e == Uint32
}

// maxValueFor returns 2^(8*W)-1 for an integer width of W bytes.
func maxValueFor(e PositionEncoding) float64 {
	switch e {
	case Uint8:
		return math.MaxUint8
	case Uint16:
		return math.MaxUint16
	case Uint32:
		return math.MaxUint32
	default:
		return 0
	}
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// EncodeCoordinate quantizes a world-space coordinate v, relative to a
// node's cube [min, min+edge], to an unsigned integer of the given width:
// clamp((v-min)/edge, 0, 1) * (2^(8W)-1), rounded.
func EncodeCoordinate(v, min, edge float64, e PositionEncoding) uint32 {
	t := clamp01((v - min) / edge)
	return uint32(math.Round(t * maxValueFor(e)))
}

// DecodeCoordinate is the inverse of EncodeCoordinate.
func DecodeCoordinate(raw uint32, min, edge float64, e PositionEncoding) float64 {
	return float64(raw)/maxValueFor(e)*edge + min
}

// PickEncoding chooses the smallest integer width W in {8,16,32} bits such
// that edge/2^(8W) <= resolution. If none of those satisfy the bound, it
// returns Float32; a positive resolution never yields Float64, whatever the
// edge length.
//
// resolution <= 0 requests the Plain encoding (spec.md §6: "Plain (f64)")
// and always returns Float64 directly: Float32 only has ~24 bits of
// mantissa, which at ECEF magnitudes (~1e7 m) resolves to single-digit-meter
// precision, far coarser than a caller who asked to bypass quantization
// entirely ("lossless position encoding" per spec.md §1) would expect.
func PickEncoding(edge, resolution float64) PositionEncoding {
	if resolution <= 0 {
		return Float64
	}
	for _, e := range []PositionEncoding{Uint8, Uint16, Uint32} {
		levels := math.Pow(2, float64(8*e.BytesPerCoordinate()))
		if edge/levels <= resolution {
			return e
		}
	}
	return Float32
}

// ResolutionOf returns the decoded error bound edge/2^(8W) an integer
// encoding achieves for the given cube edge length. Float encodings are
// lossless at the working precision and report 0.
func ResolutionOf(edge float64, e PositionEncoding) float64 {
	if !e.IsInteger() {
		return 0
	}
	levels := math.Pow(2, float64(8*e.BytesPerCoordinate()))
	return edge / levels
}
