package app

import (
	"testing"
	"time"

	"github.com/cbhe/SPH-1/sim"
)

func testConfig() *Config {
	cfg := DefaultConfig()
	cfg.Simulation.Procs = 3
	cfg.Simulation.DomainWidth = 10
	cfg.Simulation.DomainHeight = 10
	cfg.Simulation.ParticlesX = 12
	cfg.Simulation.ParticlesY = 4
	cfg.Simulation.FillHeight = 2
	cfg.Simulation.StepsPerFrame = 2
	cfg.Fluid.SmoothingRadius = 0.5
	return cfg
}

//countingSink stops the cluster after a fixed number of presented frames and
//can fire per-frame hooks, standing in for an interactive display.
type countingSink struct {
	stopAfter int
	stop      func()
	totals    []int
	hooks     map[int]func()
}

func (s *countingSink) Present(frames [][]int16) {
	total := 0
	for _, f := range frames {
		total += len(f) / 2
	}
	s.totals = append(s.totals, total)
	if hook, ok := s.hooks[len(s.totals)]; ok {
		hook()
	}
	if len(s.totals) == s.stopAfter {
		s.stop()
	}
}

//The full pipeline: frames flow, every frame carries every particle, and the
//kill switch shuts every rank down cleanly.
func TestClusterRunAndKill(t *testing.T) {
	cfg := testConfig()
	sink := &countingSink{stopAfter: 4}
	cl, err := InitCluster(cfg, sink)
	if err != nil {
		t.Fatal(err)
	}
	sink.stop = cl.Stop

	done := make(chan error, 1)
	go func() { done <- cl.Run() }()

	select {
	case err := <-done:
		if err != nil {
			t.Fatal(err)
		}
	case <-time.After(30 * time.Second):
		t.Fatal("cluster did not shut down after kill")
	}

	want := cfg.Simulation.ParticlesX * cfg.Simulation.ParticlesY
	if len(sink.totals) != sink.stopAfter {
		t.Fatalf("presented %d frames, want %d", len(sink.totals), sink.stopAfter)
	}
	for f, total := range sink.totals {
		if total != want {
			t.Errorf("frame %d carries %d particles, want %d", f, total, want)
		}
	}

	//Ownership may move, the global count may not
	sum := 0
	for _, w := range cl.Workers {
		sum += w.NLocal()
	}
	if sum != want {
		t.Errorf("workers own %d particles after shutdown, want %d", sum, want)
	}
	if got := cl.Coordinator.TotalParticles(); got != want {
		t.Errorf("startup sync counted %d particles, want %d", got, want)
	}
}

//Retiring a partition mid-run drains the retired worker through ordinary
//migration; restoring it afterwards re-splits the slab. Mass is conserved
//throughout.
func TestClusterPartitionChange(t *testing.T) {
	cfg := testConfig()
	sink := &countingSink{stopAfter: 10}
	cl, err := InitCluster(cfg, sink)
	if err != nil {
		t.Fatal(err)
	}
	sink.stop = cl.Stop

	//Retire before the first frame, restore while frames are flowing; the
	//coordinator applies queued events before each frame's scatter.
	cl.Controls() <- sim.ControlEvent{Kind: sim.CTRL_REMOVE_PARTITION}
	sink.hooks = map[int]func(){
		5: func() { cl.Controls() <- sim.ControlEvent{Kind: sim.CTRL_ADD_PARTITION} },
	}

	done := make(chan error, 1)
	go func() { done <- cl.Run() }()

	select {
	case err := <-done:
		if err != nil {
			t.Fatal(err)
		}
	case <-time.After(30 * time.Second):
		t.Fatal("cluster did not shut down")
	}

	want := cfg.Simulation.ParticlesX * cfg.Simulation.ParticlesY
	for f, total := range sink.totals {
		if total != want {
			t.Errorf("frame %d carries %d particles, want %d", f, total, want)
		}
	}
	if got := cl.Coordinator.Params.NumActive; got != 2 {
		t.Errorf("active partitions after restore = %d, want 2", got)
	}
}

func TestInitClusterRejectsInvalidConfig(t *testing.T) {
	cfg := testConfig()
	cfg.Simulation.Procs = 1
	if _, err := InitCluster(cfg, nil); err == nil {
		t.Fatal("expected config validation to fail cluster init")
	}
}
