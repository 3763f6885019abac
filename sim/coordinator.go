package sim

import "log"

//Coordinator - Rank 0. Owns the master tunables and the partition layout;
//per frame it applies queued control events, scatters the per-worker
//snapshots, then gathers the packed coordinate frames for the display sink.
//Simulation of the next frame's early substeps overlaps the gather and
//whatever the sink does with the data.

//FrameSink - Abstract display surface. Present receives one packed pixel
//buffer per compute worker, in rank order; implementations must not retain
//the slices past the call.
type FrameSink interface {
	Present(frames [][]int16)
}

//NullSink - Discards frames; used headless and in tests
type NullSink struct{}

func (NullSink) Present([][]int16) {}

type Coordinator struct {
	comm     *Comm
	Params   *TunableParameters
	display  FrameSink
	controls <-chan ControlEvent

	//Initial per-worker particle counts from the startup sync
	counts []int
}

func InitCoordinator(comm *Comm, params *TunableParameters, display FrameSink, controls <-chan ControlEvent) *Coordinator {
	if display == nil {
		display = NullSink{}
	}
	return &Coordinator{
		comm:     comm,
		Params:   params,
		display:  display,
		controls: controls,
		counts:   make([]int, comm.Size-1),
	}
}

//TotalParticles - Global particle count from the startup sync
func (c *Coordinator) TotalParticles() int {
	total := 0
	for _, n := range c.counts {
		total += n
	}
	return total
}

//Run - Drives frames until a kill event has been scattered. After the kill
//scatter the workers finish their in-flight substep and exit without
//reporting coordinates, so no final gather is posted.
func (c *Coordinator) Run() error {
	for r := 1; r < c.comm.Size; r++ {
		data, err := c.comm.Recv(r, TAG_COUNT)
		if err != nil {
			return err
		}
		c.counts[r-1] = data.(int)
	}
	log.Printf("coordinator: %d particles across %d workers", c.TotalParticles(), c.comm.Size-1)

	for {
		c.drainControls()

		for r := 1; r < c.comm.Size; r++ {
			c.comm.Send(r, TAG_TUNABLES, c.Params.WorkerTunables(r))
		}
		if c.Params.KillSim {
			log.Printf("coordinator: kill scattered, shutting down")
			return nil
		}

		frames := make([][]int16, c.comm.Size-1)
		for r := 1; r < c.comm.Size; r++ {
			data, err := c.comm.Recv(r, TAG_COORDS)
			if err != nil {
				return err
			}
			frames[r-1] = data.([]int16)
		}
		c.display.Present(frames)
	}
}

func (c *Coordinator) drainControls() {
	if c.controls == nil {
		return
	}
	for {
		select {
		case ev := <-c.controls:
			c.Params.Apply(ev)
			if ev.Kind == CTRL_ADD_PARTITION || ev.Kind == CTRL_REMOVE_PARTITION {
				log.Printf("coordinator: %d of %d partitions active", c.Params.NumActive, c.Params.NumProcs)
			}
		default:
			return
		}
	}
}
