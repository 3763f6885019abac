package fluid

import (
	"math/rand"
	"testing"
)

func TestGridScanFindsNearby(t *testing.T) {
	s := AllocStore(16)
	s.AppendLocal(Particle{Xs: 1.0, Ys: 1.0})
	s.AppendLocal(Particle{Xs: 1.05, Ys: 1.02}) //same bucket
	s.AppendLocal(Particle{Xs: 1.15, Ys: 1.0})  //adjacent bucket
	s.AppendLocal(Particle{Xs: 3.0, Ys: 3.0})   //far away

	g := AllocGrid(16)
	g.Rebuild(0, 0, 4, 4, 0.1, s.Particles, s.Total())

	found := map[int32]bool{}
	g.Scan(1.0, 1.0, func(j int32) { found[j] = true })

	for _, want := range []int32{0, 1, 2} {
		if !found[want] {
			t.Errorf("scan missed index %d", want)
		}
	}
	if found[3] {
		t.Error("scan visited a far bucket")
	}
}

func TestNeighborBuild(t *testing.T) {
	s := AllocStore(16)
	h := float32(0.2)
	s.AppendLocal(Particle{Xs: 1.0, Ys: 1.0})
	s.AppendLocal(Particle{Xs: 1.1, Ys: 1.0})  //within h
	s.AppendLocal(Particle{Xs: 1.0, Ys: 1.15}) //within h
	s.AppendLocal(Particle{Xs: 1.5, Ys: 1.0})  //outside h
	//A halo mirror inside range must be discoverable too
	s.AppendHalo(Particle{Xs: 0.9, Ys: 1.0})

	g := AllocGrid(16)
	g.Rebuild(0, 0, 3, 3, h, s.Particles, s.Total())
	nl := AllocNeighbors(16)
	nl.Build(g, s, h)

	got := map[int32]int{}
	for _, j := range nl.Of(0) {
		got[j]++
	}
	for _, want := range []int32{1, 2, 4} {
		if got[want] != 1 {
			t.Errorf("neighbor %d counted %d times, want exactly once", want, got[want])
		}
	}
	if got[3] != 0 {
		t.Error("out-of-range particle listed as neighbor")
	}
	if got[0] != 0 {
		t.Error("particle listed as its own neighbor")
	}
}

func TestNeighborCap(t *testing.T) {
	n := MAX_NEIGHBORS + 20
	s := AllocStore(n + 1)
	rnd := rand.New(rand.NewSource(7))
	s.AppendLocal(Particle{Xs: 1.0, Ys: 1.0})
	for i := 0; i < n; i++ {
		//Dense cloud inside the support radius
		s.AppendLocal(Particle{
			Xs: 1.0 + rnd.Float32()*0.05,
			Ys: 1.0 + rnd.Float32()*0.05,
		})
	}

	g := AllocGrid(n + 1)
	g.Rebuild(0, 0, 2, 2, 0.1, s.Particles, s.Total())
	nl := AllocNeighbors(n + 1)
	nl.Build(g, s, 0.1)

	if got := len(nl.Of(0)); got != MAX_NEIGHBORS {
		t.Errorf("neighbor count = %d, want capped at %d", got, MAX_NEIGHBORS)
	}
}
