package sim

import (
	"fmt"
	"log"

	F "github.com/cbhe/SPH-1/fluid"
	G "github.com/cbhe/SPH-1/geometry"
)

//Worker - One compute rank. Owns the particles currently inside its slab
//[NodeStartX, NodeEndX), a halo mirror band from each neighbor, and the
//derived solver state. A worker keeps executing the full substep pipeline
//even when its slab is parked out of bounds: a parked slab classifies every
//remaining particle as OOB-left on the next substep, so retirement drains
//particles to the absorbing neighbor through the ordinary migration protocol
//and no particle is ever dropped.
type Worker struct {
	comm   *Comm
	st     Settings
	params Tunables

	store  *F.ParticleStore
	solver *F.Solver

	oobLeft  []int
	oobRight []int

	//Halo pairing state. sentLeft/sentRight hold the owned indices shipped to
	//each neighbor during the halo exchange, in wire order; the intra-
	//iteration lambda and position publishes reuse exactly this order.
	//haloLeft/haloRight are the received block sizes: the halo region is the
	//left block followed by the right block.
	sentLeft  []int
	sentRight []int
	haloLeft  int
	haloRight int

	coordsReq *Request
}

//InitWorker - Creates the rank's slab state and fills it from the global
//uniform grid: the worker owns exactly the fill columns that land inside its
//initial slab.
func InitWorker(comm *Comm, st Settings) (*Worker, error) {
	numProcs := comm.Size - 1
	if numProcs < 1 {
		return nil, fmt.Errorf("worker init: need at least 2 ranks, have %d", comm.Size)
	}

	//Same arithmetic as the coordinator's partition table so the initial
	//bounds agree to the bit before the first scatter arrives.
	slab := st.Boundary.MaxX / float32(numProcs)
	start := float32(comm.Rank-1) * slab
	end := float32(comm.Rank) * slab
	if comm.Rank == comm.Size-1 {
		end = st.Boundary.MaxX
	}
	if slab < MIN_SLAB_FACTOR*st.Initial.SmoothingRadius {
		return nil, fmt.Errorf("worker init: slab width %v below %v times smoothing radius", slab, float32(MIN_SLAB_FACTOR))
	}

	perWorker := st.ParticlesX * st.ParticlesY / numProcs
	capacity := int(st.CapacityFactor*float32(perWorker)) + 64
	store := F.AllocStore(capacity)

	dx := st.Boundary.Width() / float32(st.ParticlesX)
	dy := st.FillHeight / float32(st.ParticlesY)
	for i := 0; i < st.ParticlesX; i++ {
		x := st.Boundary.MinX + (float32(i)+0.5)*dx
		if x < start || x >= end {
			continue
		}
		for j := 0; j < st.ParticlesY; j++ {
			y := st.Boundary.MinY + (float32(j)+0.5)*dy
			if err := store.AppendLocal(F.Particle{X: x, Y: y, Xs: x, Ys: y}); err != nil {
				return nil, fmt.Errorf("worker %d init: %v", comm.Rank, err)
			}
		}
	}

	params := st.Initial
	params.NodeStartX = start
	params.NodeEndX = end
	params.Active = true

	return &Worker{
		comm:   comm,
		st:     st,
		params: params,
		store:  store,
		solver: F.InitSolver(store, st.Boundary),
	}, nil
}

//NLocal - Owned particle count, for inspection
func (w *Worker) NLocal() int {
	return w.store.NLocal
}

func (w *Worker) leftRank() int {
	if w.comm.Rank > 1 {
		return w.comm.Rank - 1
	}
	return -1
}

func (w *Worker) rightRank() int {
	if w.comm.Rank < w.comm.Size-1 {
		return w.comm.Rank + 1
	}
	return -1
}

func (w *Worker) fluidParams() F.FluidParams {
	return F.FluidParams{
		Gravity:     w.params.Gravity,
		Dt:          w.params.TimeStep,
		RestDensity: w.params.RestDensity,
		K:           w.params.K,
		Dq:          w.params.Dq,
		Viscosity:   w.params.Viscosity,
		Mass:        w.st.ParticleMass,
		H:           w.params.SmoothingRadius,
	}
}

//Run - Executes frames until the scattered kill flag arrives. The initial
//particle count is reported to the coordinator first, mirroring the startup
//sync of the frame protocol.
func (w *Worker) Run() error {
	w.comm.Send(0, TAG_COUNT, w.store.NLocal)
	for {
		kill, err := w.frame()
		if err != nil {
			return fmt.Errorf("worker %d: %v", w.comm.Rank, err)
		}
		if kill {
			log.Printf("worker %d: shutting down with %d particles", w.comm.Rank, w.store.NLocal)
			return nil
		}
	}
}

//frame - steps_per_frame substeps followed by the async coordinate report.
//The scatter for the next frame is received at the top of the terminal
//substep, so that substep's migration phase already runs against any new
//slab bounds; this is what hands particles over on a partition change.
func (w *Worker) frame() (bool, error) {
	kill := false
	steps := w.params.StepsPerFrame

	for s := 0; s < steps; s++ {
		fp := w.fluidParams()
		w.solver.Mover = G.Mover{
			CenterX: w.params.MoverCenterX,
			CenterY: w.params.MoverCenterY,
			Radius:  w.params.MoverRadius,
		}

		w.solver.ApplyGravity(fp)
		w.solver.PredictPositions(fp)

		if s == 0 {
			w.coordsReq.Wait()
			w.coordsReq = nil
		}

		if s == steps-1 {
			data, err := w.comm.Recv(0, TAG_TUNABLES)
			if err != nil {
				return false, err
			}
			t := data.(Tunables)
			if t.Active != w.params.Active {
				log.Printf("worker %d: active %v -> %v", w.comm.Rank, w.params.Active, t.Active)
			}
			w.params = t
			if t.KillSim {
				kill = true
			}
			fp = w.fluidParams()
			w.solver.Mover = G.Mover{
				CenterX: t.MoverCenterX,
				CenterY: t.MoverCenterY,
				Radius:  t.MoverRadius,
			}
		}

		w.store.ClearHalo()
		if err := w.exchangeOOB(); err != nil {
			return false, err
		}
		if err := w.exchangeHalo(fp.H); err != nil {
			return false, err
		}

		w.solver.BuildNeighbors(fp, w.params.NodeStartX-fp.H, w.params.NodeEndX-w.params.NodeStartX+2*fp.H)

		for it := 0; it < F.SOLVE_ITERATIONS; it++ {
			w.solver.ComputeDensities(fp)
			w.solver.ComputeLambdas(fp)
			if err := w.publishLambdas(); err != nil {
				return false, err
			}
			w.solver.ComputeDp(fp)
			w.solver.ApplyDp(fp)
			if err := w.publishPositions(); err != nil {
				return false, err
			}
		}

		w.solver.UpdateVelocities(fp)
		w.solver.XSPHViscosity(fp)
		w.solver.CommitPositions()

		if s == steps-1 && !kill {
			coords := PackCoords(w.store.Particles, w.store.NLocal, w.st.Boundary.MaxX, w.st.Boundary.MaxY)
			w.coordsReq = w.comm.Isend(0, TAG_COORDS, coords)
		}
	}
	return kill, nil
}

//exchangeOOB - Migrates particles whose predicted position left the slab.
//Both sides post the count exchange before the payload exchange; link
//buffering keeps the symmetric sends from deadlocking.
func (w *Worker) exchangeOOB() error {
	w.oobLeft = w.oobLeft[:0]
	w.oobRight = w.oobRight[:0]
	for i := 0; i < w.store.NLocal; i++ {
		p := &w.store.Particles[i]
		if p.Xs < w.params.NodeStartX {
			w.oobLeft = append(w.oobLeft, i)
		} else if p.Xs > w.params.NodeEndX {
			w.oobRight = append(w.oobRight, i)
		}
	}

	left, right := w.leftRank(), w.rightRank()

	sendLeft := recordsAt(w.store, w.oobLeft)
	sendRight := recordsAt(w.store, w.oobRight)

	if left >= 0 {
		w.comm.Send(left, TAG_OOB_COUNT, len(sendLeft))
	}
	if right >= 0 {
		w.comm.Send(right, TAG_OOB_COUNT, len(sendRight))
	}

	var fromLeft, fromRight int
	var err error
	if fromLeft, err = w.recvCount(left, TAG_OOB_COUNT); err != nil {
		return err
	}
	if fromRight, err = w.recvCount(right, TAG_OOB_COUNT); err != nil {
		return err
	}

	if left >= 0 {
		w.comm.Send(left, TAG_OOB, sendLeft)
	}
	if right >= 0 {
		w.comm.Send(right, TAG_OOB, sendRight)
	}

	//Compact the owned region before appending arrivals; the removal list is
	//consumed in place.
	removed := append(w.oobLeft, w.oobRight...)
	w.store.RemoveLocal(removed)

	if err := w.recvParticles(left, TAG_OOB, fromLeft); err != nil {
		return err
	}
	if err := w.recvParticles(right, TAG_OOB, fromRight); err != nil {
		return err
	}
	return nil
}

//exchangeHalo - Mirrors owned particles within h of each shared boundary
//into the neighbor's halo region. Arrivals from the left neighbor form the
//first halo block, arrivals from the right the second.
func (w *Worker) exchangeHalo(h float32) error {
	w.sentLeft = w.sentLeft[:0]
	w.sentRight = w.sentRight[:0]
	for i := 0; i < w.store.NLocal; i++ {
		p := &w.store.Particles[i]
		if p.Xs < w.params.NodeStartX+h {
			w.sentLeft = append(w.sentLeft, i)
		}
		if p.Xs > w.params.NodeEndX-h {
			w.sentRight = append(w.sentRight, i)
		}
	}

	left, right := w.leftRank(), w.rightRank()

	if left >= 0 {
		w.comm.Send(left, TAG_HALO_COUNT, len(w.sentLeft))
	}
	if right >= 0 {
		w.comm.Send(right, TAG_HALO_COUNT, len(w.sentRight))
	}

	var err error
	if w.haloLeft, err = w.recvCount(left, TAG_HALO_COUNT); err != nil {
		return err
	}
	if w.haloRight, err = w.recvCount(right, TAG_HALO_COUNT); err != nil {
		return err
	}

	if left >= 0 {
		w.comm.Send(left, TAG_HALO, recordsAt(w.store, w.sentLeft))
	}
	if right >= 0 {
		w.comm.Send(right, TAG_HALO, recordsAt(w.store, w.sentRight))
	}

	if err := w.recvHalo(left, w.haloLeft); err != nil {
		return err
	}
	if err := w.recvHalo(right, w.haloRight); err != nil {
		return err
	}
	return nil
}

//publishLambdas - Sends fresh constraint multipliers for the particles each
//neighbor mirrors, and refreshes the local mirrors in kind. Pairing follows
//the order of the preceding halo exchange.
func (w *Worker) publishLambdas() error {
	left, right := w.leftRank(), w.rightRank()

	if left >= 0 {
		w.comm.Send(left, TAG_LAMBDA, w.lambdasAt(w.sentLeft))
	}
	if right >= 0 {
		w.comm.Send(right, TAG_LAMBDA, w.lambdasAt(w.sentRight))
	}

	if err := w.recvLambdas(left, w.store.NLocal, w.haloLeft); err != nil {
		return err
	}
	if err := w.recvLambdas(right, w.store.NLocal+w.haloLeft, w.haloRight); err != nil {
		return err
	}
	return nil
}

//publishPositions - Same pairing as publishLambdas, for corrected predicted
//positions.
func (w *Worker) publishPositions() error {
	left, right := w.leftRank(), w.rightRank()

	if left >= 0 {
		w.comm.Send(left, TAG_POSITION, w.positionsAt(w.sentLeft))
	}
	if right >= 0 {
		w.comm.Send(right, TAG_POSITION, w.positionsAt(w.sentRight))
	}

	if err := w.recvPositions(left, w.store.NLocal, w.haloLeft); err != nil {
		return err
	}
	if err := w.recvPositions(right, w.store.NLocal+w.haloLeft, w.haloRight); err != nil {
		return err
	}
	return nil
}

func recordsAt(s *F.ParticleStore, indices []int) []F.ParticleRecord {
	out := make([]F.ParticleRecord, len(indices))
	for k, i := range indices {
		out[k] = s.Particles[i].Record()
	}
	return out
}

func (w *Worker) lambdasAt(indices []int) []float32 {
	out := make([]float32, len(indices))
	for k, i := range indices {
		out[k] = w.store.Particles[i].Lambda
	}
	return out
}

func (w *Worker) positionsAt(indices []int) [][2]float32 {
	out := make([][2]float32, len(indices))
	for k, i := range indices {
		out[k] = [2]float32{w.store.Particles[i].Xs, w.store.Particles[i].Ys}
	}
	return out
}

func (w *Worker) recvCount(from int, tag int) (int, error) {
	if from < 0 {
		return 0, nil
	}
	data, err := w.comm.Recv(from, tag)
	if err != nil {
		return 0, err
	}
	return data.(int), nil
}

func (w *Worker) recvParticles(from int, tag int, count int) error {
	if from < 0 {
		return nil
	}
	data, err := w.comm.Recv(from, tag)
	if err != nil {
		return err
	}
	records := data.([]F.ParticleRecord)
	if len(records) != count {
		return fmt.Errorf("rank %d: particle payload size %d does not match count %d", w.comm.Rank, len(records), count)
	}
	for _, r := range records {
		if err := w.store.AppendLocal(F.FromRecord(r)); err != nil {
			return err
		}
	}
	return nil
}

func (w *Worker) recvHalo(from int, count int) error {
	if from < 0 {
		return nil
	}
	data, err := w.comm.Recv(from, TAG_HALO)
	if err != nil {
		return err
	}
	records := data.([]F.ParticleRecord)
	if len(records) != count {
		return fmt.Errorf("rank %d: halo payload size %d does not match count %d", w.comm.Rank, len(records), count)
	}
	for _, r := range records {
		if err := w.store.AppendHalo(F.FromRecord(r)); err != nil {
			return err
		}
	}
	return nil
}

func (w *Worker) recvLambdas(from int, offset int, count int) error {
	if from < 0 {
		return nil
	}
	data, err := w.comm.Recv(from, TAG_LAMBDA)
	if err != nil {
		return err
	}
	lambdas := data.([]float32)
	if len(lambdas) != count {
		return fmt.Errorf("rank %d: lambda update size %d does not match halo block %d", w.comm.Rank, len(lambdas), count)
	}
	for k, l := range lambdas {
		w.store.Particles[offset+k].Lambda = l
	}
	return nil
}

func (w *Worker) recvPositions(from int, offset int, count int) error {
	if from < 0 {
		return nil
	}
	data, err := w.comm.Recv(from, TAG_POSITION)
	if err != nil {
		return err
	}
	positions := data.([][2]float32)
	if len(positions) != count {
		return fmt.Errorf("rank %d: position update size %d does not match halo block %d", w.comm.Rank, len(positions), count)
	}
	for k, p := range positions {
		w.store.Particles[offset+k].Xs = p[0]
		w.store.Particles[offset+k].Ys = p[1]
	}
	return nil
}
