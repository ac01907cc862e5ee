package codec

import (
	"math"
	"math/rand"
	"testing"

	"github.com/beetlebugorg/pointcloud/internal/geom"
)

func TestPickEncodingPicksSmallestSufficientWidth(t *testing.T) {
	tests := []struct {
		edge, resolution float64
		want             PositionEncoding
	}{
		{edge: 1, resolution: 1, want: Uint8},
		{edge: 256, resolution: 1, want: Uint8},
		{edge: 257, resolution: 1, want: Uint16},
		{edge: 1 << 16, resolution: 1, want: Uint16},
		{edge: 1<<16 + 1, resolution: 1, want: Uint32},
		{edge: 1e12, resolution: 1e-9, want: Float32},
		// resolution <= 0 requests Plain: always Float64, never Float32,
		// regardless of edge length (this is the case a caller asking to
		// bypass quantization entirely relies on).
		{edge: 1, resolution: 0, want: Float64},
		{edge: 1e7, resolution: 0, want: Float64},
	}
	for _, tt := range tests {
		got := PickEncoding(tt.edge, tt.resolution)
		if got != tt.want {
			t.Errorf("PickEncoding(%v, %v) = %v, want %v", tt.edge, tt.resolution, got, tt.want)
		}
	}
}

func TestResolutionBoundHolds(t *testing.T) {
	for _, edge := range []float64{1, 37.5, 1000, 1 << 20} {
		for _, resolution := range []float64{0.001, 0.01, 1} {
			e := PickEncoding(edge, resolution)
			if !e.IsInteger() {
				continue
			}
			if got := ResolutionOf(edge, e); got > resolution {
				t.Errorf("edge=%v resolution=%v got encoding %v with bound %v > resolution", edge, resolution, e, got)
			}
		}
	}
}

func TestEncodeDecodeRoundTripWithinResolution(t *testing.T) {
	r := rand.New(rand.NewSource(42))
	cube := geom.Cube{Min: geom.Vec3{X: -100, Y: -100, Z: -100}, Edge: 200}
	resolution := 0.001
	e := PickEncoding(cube.Edge, resolution)

	for i := 0; i < 1000; i++ {
		p := geom.Vec3{
			X: cube.Min.X + r.Float64()*cube.Edge,
			Y: cube.Min.Y + r.Float64()*cube.Edge,
			Z: cube.Min.Z + r.Float64()*cube.Edge,
		}
		enc := EncodePosition(p, cube, e)
		dec := DecodePosition(enc, cube, e)
		bound := ResolutionOf(cube.Edge, e)
		if math.Abs(dec.X-p.X) > bound+1e-9 ||
			math.Abs(dec.Y-p.Y) > bound+1e-9 ||
			math.Abs(dec.Z-p.Z) > bound+1e-9 {
			t.Fatalf("decoded position %v too far from original %v (bound %v)", dec, p, bound)
		}
		if !cube.Contains(dec) {
			t.Fatalf("decoded position %v not contained by cube", dec)
		}
	}
}

func TestEncodeClampsOutOfBoundsCoordinates(t *testing.T) {
	got := EncodeCoordinate(-50, 0, 10, Uint8)
	if got != 0 {
		t.Errorf("expected clamp to 0, got %d", got)
	}
	got = EncodeCoordinate(50, 0, 10, Uint8)
	if got != math.MaxUint8 {
		t.Errorf("expected clamp to max, got %d", got)
	}
}
