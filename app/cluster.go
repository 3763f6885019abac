package app

import (
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/cbhe/SPH-1/sim"
)

//Cluster - One coordinator plus workers wired over the in-process fabric,
//each rank driven by its own goroutine. Ranks share nothing; the first rank
//error tears the group down.
type Cluster struct {
	Coordinator *sim.Coordinator
	Workers     []*sim.Worker
	controls    chan sim.ControlEvent
	comms       []*sim.Comm
}

//InitCluster - Validates the config and assembles every rank. The display
//sink may be nil for a headless run.
func InitCluster(cfg *Config, display sim.FrameSink) (*Cluster, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	st := cfg.Settings()
	procs := cfg.Simulation.Procs

	comms := sim.InitComms(procs)
	controls := make(chan sim.ControlEvent, 64)
	params := sim.InitTunableParameters(st.Initial, procs-1, st.Boundary.MaxX)

	cl := &Cluster{
		Coordinator: sim.InitCoordinator(comms[0], params, display, controls),
		controls:    controls,
		comms:       comms,
	}
	for r := 1; r < procs; r++ {
		w, err := sim.InitWorker(comms[r], st)
		if err != nil {
			return nil, fmt.Errorf("cluster init: %v", err)
		}
		cl.Workers = append(cl.Workers, w)
	}
	return cl, nil
}

//Controls - The event queue feeding the coordinator's parameter model
func (cl *Cluster) Controls() chan<- sim.ControlEvent {
	return cl.controls
}

//Stop - Queues the cooperative shutdown; every rank exits within a frame of
//the next scatter.
func (cl *Cluster) Stop() {
	cl.controls <- sim.ControlEvent{Kind: sim.CTRL_KILL}
}

//Run - Blocks until every rank has exited, returning the first rank error.
//A failing rank aborts the transport so its peers unblock instead of waiting
//on exchanges that will never be posted.
func (cl *Cluster) Run() error {
	var g errgroup.Group
	rank := func(run func() error) func() error {
		return func() error {
			if err := run(); err != nil {
				cl.comms[0].Abort()
				return err
			}
			return nil
		}
	}
	g.Go(rank(cl.Coordinator.Run))
	for _, w := range cl.Workers {
		w := w
		g.Go(rank(w.Run))
	}
	return g.Wait()
}
