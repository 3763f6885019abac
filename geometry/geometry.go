package geometry

import "math"

//diesel-style geometry library reduced to what the particle solver collides
//against: the global axis aligned boundary box and the user controlled mover
//disk. Both operate on predicted positions and must stay total - the solver
//hot path has no error returns.

const (
	//CLAMP_EPS keeps a clamped particle strictly below the boundary maximum so
	//the spatial hash never classifies it into the bin past the last one.
	CLAMP_EPS = 0.001
)

//AABB - Global simulation bounds, read only after init. Min corner is the
//axis origin in the standard setup.
type AABB struct {
	MinX float32
	MinY float32
	MaxX float32
	MaxY float32
}

func InitAABB(maxX float32, maxY float32) AABB {
	return AABB{0, 0, maxX, maxY}
}

func (b *AABB) Width() float32 {
	return b.MaxX - b.MinX
}

func (b *AABB) Height() float32 {
	return b.MaxY - b.MinY
}

//Clamp - Forces a predicted position back inside the boundary. The upper edges
//back off by CLAMP_EPS, the lower edges are inclusive.
func (b *AABB) Clamp(x float32, y float32) (float32, float32) {
	if x < b.MinX {
		x = b.MinX
	} else if x > b.MaxX {
		x = b.MaxX - CLAMP_EPS
	}
	if y < b.MinY {
		y = b.MinY
	} else if y > b.MaxY {
		y = b.MaxY - CLAMP_EPS
	}
	return x, y
}

//Contains - Inclusive on min edges, exclusive on max edges to match the hash
func (b *AABB) Contains(x float32, y float32) bool {
	return x >= b.MinX && x < b.MaxX && y >= b.MinY && y < b.MaxY
}

//Mover - Solid disk obstacle driven from the display side. A non positive
//radius disables collision entirely.
type Mover struct {
	CenterX float32
	CenterY float32
	Radius  float32
}

//Collide - Pushes a penetrating position out along the surface normal. A
//particle exactly on the center has no usable normal and is ejected along +x.
func (m *Mover) Collide(x float32, y float32) (float32, float32) {
	if m.Radius <= 0 {
		return x, y
	}
	dx := x - m.CenterX
	dy := y - m.CenterY
	d2 := dx*dx + dy*dy
	if d2 > m.Radius*m.Radius {
		return x, y
	}
	if d2 == 0 {
		return m.CenterX + m.Radius, y
	}
	d := float32(math.Sqrt(float64(d2)))
	nx := (m.CenterX - x) / d
	ny := (m.CenterY - y) / d
	pen := m.Radius - d
	x -= pen * nx
	y -= pen * ny
	return x, y
}
