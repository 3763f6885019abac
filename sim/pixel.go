package sim

import F "github.com/cbhe/SPH-1/fluid"

//Pixel-space coordinate packing. Once per frame each worker projects its
//owned positions into signed 16-bit pixel space and ships the packed buffer
//to the coordinator; the display side only ever sees these compact frames.

const SHRT_MAX = 32767

//PackCoords - Projects the owned region into interleaved int16 pairs. The
//mapping sends [0,max] to the full signed range via 2*x/max - 1.
func PackCoords(parts []F.Particle, n int, maxX, maxY float32) []int16 {
	coords := make([]int16, 2*n)
	for i := 0; i < n; i++ {
		coords[2*i] = packCoord(parts[i].X, maxX)
		coords[2*i+1] = packCoord(parts[i].Y, maxY)
	}
	return coords
}

func packCoord(v, max float32) int16 {
	return int16((2.0*v/max - 1.0) * SHRT_MAX)
}

//UnpackCoord - Inverse projection, used by display implementations and tests
func UnpackCoord(v int16, max float32) float32 {
	return (float32(v)/SHRT_MAX + 1.0) * max / 2.0
}
