package fluid

import (
	"testing"
)

func TestStoreAppendRemove(t *testing.T) {
	s := AllocStore(8)
	for i := 0; i < 5; i++ {
		if err := s.AppendLocal(Particle{X: float32(i)}); err != nil {
			t.Fatal(err)
		}
	}
	if s.NLocal != 5 {
		t.Fatalf("NLocal = %d", s.NLocal)
	}

	//Remove 1 and 3; survivors must be exactly {0,2,4} in some order
	s.RemoveLocal([]int{1, 3})
	if s.NLocal != 3 {
		t.Fatalf("NLocal after removal = %d", s.NLocal)
	}
	seen := map[float32]bool{}
	for i := 0; i < s.NLocal; i++ {
		seen[s.Particles[i].X] = true
	}
	for _, want := range []float32{0, 2, 4} {
		if !seen[want] {
			t.Errorf("particle %v lost in compaction", want)
		}
	}
	if len(seen) != 3 {
		t.Errorf("unexpected survivors: %v", seen)
	}
}

func TestStoreHaloRegion(t *testing.T) {
	s := AllocStore(8)
	for i := 0; i < 3; i++ {
		s.AppendLocal(Particle{X: float32(i)})
	}
	for i := 0; i < 2; i++ {
		s.AppendHalo(Particle{X: float32(100 + i)})
	}
	if s.Total() != 5 || s.NHalo != 2 {
		t.Fatalf("total=%d halo=%d", s.Total(), s.NHalo)
	}
	if s.Particles[3].X != 100 || s.Particles[4].X != 101 {
		t.Errorf("halo block out of order: %v %v", s.Particles[3].X, s.Particles[4].X)
	}

	s.ClearHalo()
	if s.NHalo != 0 || s.NLocal != 3 {
		t.Errorf("clear halo: local=%d halo=%d", s.NLocal, s.NHalo)
	}
}

func TestStoreOverflow(t *testing.T) {
	s := AllocStore(2)
	s.AppendLocal(Particle{})
	s.AppendLocal(Particle{})
	if err := s.AppendLocal(Particle{}); err == nil {
		t.Error("expected overflow error on local append")
	}
	if err := s.AppendHalo(Particle{}); err == nil {
		t.Error("expected overflow error on halo append")
	}
}

func TestRecordRoundTrip(t *testing.T) {
	p := Particle{X: 1, Y: 2, Xs: 3, Ys: 4, Vx: 5, Vy: 6, Density: 9, Lambda: 7}
	q := FromRecord(p.Record())
	if q.X != 1 || q.Y != 2 || q.Xs != 3 || q.Ys != 4 || q.Vx != 5 || q.Vy != 6 {
		t.Errorf("record round trip = %+v", q)
	}
	//Solver scratch never travels
	if q.Density != 0 || q.Lambda != 0 {
		t.Errorf("scratch fields must not survive the wire: %+v", q)
	}
}
