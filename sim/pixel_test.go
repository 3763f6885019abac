package sim

import (
	"math"
	"testing"

	F "github.com/cbhe/SPH-1/fluid"
)

func TestPackCoordsRoundTrip(t *testing.T) {
	maxX, maxY := float32(20), float32(10)
	parts := []F.Particle{
		{X: 0, Y: 0},
		{X: 20, Y: 10},
		{X: 10, Y: 5},
		{X: 13.37, Y: 2.5},
		{X: 19.999, Y: 0.001},
	}

	coords := PackCoords(parts, len(parts), maxX, maxY)
	if len(coords) != 2*len(parts) {
		t.Fatalf("packed length = %d", len(coords))
	}

	//Decoding must reproduce the position within one quantization step
	qx := float64(maxX) / (2 * SHRT_MAX)
	qy := float64(maxY) / (2 * SHRT_MAX)
	for i, p := range parts {
		x := UnpackCoord(coords[2*i], maxX)
		y := UnpackCoord(coords[2*i+1], maxY)
		if math.Abs(float64(x-p.X)) > qx {
			t.Errorf("x round trip: %v -> %v", p.X, x)
		}
		if math.Abs(float64(y-p.Y)) > qy {
			t.Errorf("y round trip: %v -> %v", p.Y, y)
		}
	}
}

func TestPackCoordsRange(t *testing.T) {
	coords := PackCoords([]F.Particle{{X: 0, Y: 10}}, 1, 20, 10)
	if coords[0] != -SHRT_MAX {
		t.Errorf("min x packs to %d, want %d", coords[0], -SHRT_MAX)
	}
	if coords[1] != SHRT_MAX {
		t.Errorf("max y packs to %d, want %d", coords[1], SHRT_MAX)
	}
}

func TestPackCoordsOwnedOnly(t *testing.T) {
	parts := []F.Particle{{X: 1, Y: 1}, {X: 2, Y: 2}, {X: 3, Y: 3}}
	coords := PackCoords(parts, 2, 20, 10)
	if len(coords) != 4 {
		t.Errorf("halo entries leaked into the frame: %d values", len(coords))
	}
}
