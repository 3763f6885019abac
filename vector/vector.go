package vector

import "math"

//2D float32 vector primitives for the particle solver. The simulation plane is
//x right / y up; all kernel and constraint math runs through these helpers.
//Free functions are immutable, methods mutate the receiver.

//Vec32 Default Vector Implementation
type Vec32 [2]float32

func New(x float32, y float32) Vec32 {
	return Vec32{x, y}
}

func Add(a Vec32, b Vec32) Vec32 {
	return Vec32{a[0] + b[0], a[1] + b[1]}
}

func Sub(a Vec32, b Vec32) Vec32 {
	return Vec32{a[0] - b[0], a[1] - b[1]}
}

//Scale - Scales vector by scalar s
func Scale(a Vec32, s float32) Vec32 {
	return Vec32{a[0] * s, a[1] * s}
}

func Dot(a Vec32, b Vec32) float32 {
	return a[0]*b[0] + a[1]*b[1]
}

func Length(a Vec32) float32 {
	return float32(math.Sqrt(float64(a[0]*a[0] + a[1]*a[1])))
}

func LengthSq(a Vec32) float32 {
	return a[0]*a[0] + a[1]*a[1]
}

//Dist - Euclidean distance between two points
func Dist(a Vec32, b Vec32) float32 {
	return Length(Sub(a, b))
}

func (v *Vec32) Add(b Vec32) *Vec32 {
	v[0] += b[0]
	v[1] += b[1]
	return v
}

func (v *Vec32) Sub(b Vec32) *Vec32 {
	v[0] -= b[0]
	v[1] -= b[1]
	return v
}

func (v *Vec32) Scale(s float32) *Vec32 {
	v[0] *= s
	v[1] *= s
	return v
}

//Clamp - Clamps both components into [-lim, lim]
func (v *Vec32) Clamp(lim float32) *Vec32 {
	for i := 0; i < 2; i++ {
		if v[i] > lim {
			v[i] = lim
		} else if v[i] < -lim {
			v[i] = -lim
		}
	}
	return v
}
