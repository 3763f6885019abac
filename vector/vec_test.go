package vector

import (
	"math"
	"testing"
)

func TestVectorOps(t *testing.T) {
	a := New(3, 4)
	b := New(-1, 2)

	if got := Add(a, b); got != (Vec32{2, 6}) {
		t.Errorf("Add = %v", got)
	}
	if got := Sub(a, b); got != (Vec32{4, 2}) {
		t.Errorf("Sub = %v", got)
	}
	if got := Scale(a, 2); got != (Vec32{6, 8}) {
		t.Errorf("Scale = %v", got)
	}
	if got := Dot(a, b); got != 5 {
		t.Errorf("Dot = %v", got)
	}
	if got := Length(a); got != 5 {
		t.Errorf("Length = %v", got)
	}
	if got := Dist(a, b); math.Abs(float64(got)-math.Sqrt(20)) > 1e-6 {
		t.Errorf("Dist = %v", got)
	}
	if got := LengthSq(b); got != 5 {
		t.Errorf("LengthSq = %v", got)
	}
}

func TestVectorMethodsMutate(t *testing.T) {
	v := New(1, 1)
	v.Add(Vec32{2, 3})
	v.Scale(2)
	if v != (Vec32{6, 8}) {
		t.Errorf("chained mutation = %v", v)
	}
	v.Sub(Vec32{6, 8})
	if v != (Vec32{0, 0}) {
		t.Errorf("Sub mutation = %v", v)
	}
}

func TestClamp(t *testing.T) {
	v := New(50, -50)
	v.Clamp(20)
	if v != (Vec32{20, -20}) {
		t.Errorf("Clamp = %v", v)
	}
	w := New(3, -4)
	w.Clamp(20)
	if w != (Vec32{3, -4}) {
		t.Errorf("Clamp should not alter in-range values, got %v", w)
	}
}
