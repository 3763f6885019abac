package fluid

import (
	G "github.com/cbhe/SPH-1/geometry"
	V "github.com/cbhe/SPH-1/vector"
)

//PBF density-projection solver. Each phase walks the owned region of the
//arena; the distributed layer interleaves halo publishes between Jacobi
//iterations so interface particles see symmetric updates.

const (
	V_MAX            = 20.0 //Componentwise velocity limit
	LAMBDA_EPS       = 1.0  //CFM relaxation term of the constraint solve
	SOLVE_ITERATIONS = 4
)

//FluidParams - Immutable per-substep snapshot of the solver constants. The
//distributed layer derives it from the scattered tunables; solver phases
//treat it as read only.
type FluidParams struct {
	Gravity     float32 //Positive pulls along -y
	Dt          float32
	RestDensity float32
	K           float32 //Anti-clustering strength
	Dq          float32 //Anti-clustering reference distance
	Viscosity   float32 //XSPH coefficient
	Mass        float32
	H           float32 //Smoothing radius
}

//Solver - Binds the arena to its derived per-substep structures and the
//collision geometry.
type Solver struct {
	Store     *ParticleStore
	Grid      *SpatialHashGrid
	Neighbors *NeighborList
	Kernel    PBFKernel
	Boundary  G.AABB
	Mover     G.Mover
}

func InitSolver(store *ParticleStore, boundary G.AABB) *Solver {
	return &Solver{
		Store:     store,
		Grid:      AllocGrid(store.Capacity()),
		Neighbors: AllocNeighbors(store.Capacity()),
		Boundary:  boundary,
	}
}

//ApplyGravity - Accelerates owned particles along -y
func (sv *Solver) ApplyGravity(p FluidParams) {
	g := -p.Gravity * p.Dt
	for i := 0; i < sv.Store.NLocal; i++ {
		sv.Store.Particles[i].Vy += g
	}
}

//PredictPositions - Advances predicted positions one explicit Euler step and
//resolves boundary and mover penetration immediately.
func (sv *Solver) PredictPositions(p FluidParams) {
	for i := 0; i < sv.Store.NLocal; i++ {
		pt := &sv.Store.Particles[i]
		pt.Xs = pt.X + pt.Vx*p.Dt
		pt.Ys = pt.Y + pt.Vy*p.Dt
		sv.resolveCollisions(pt)
	}
}

func (sv *Solver) resolveCollisions(pt *Particle) {
	pt.Xs, pt.Ys = sv.Mover.Collide(pt.Xs, pt.Ys)
	pt.Xs, pt.Ys = sv.Boundary.Clamp(pt.Xs, pt.Ys)
}

//BuildNeighbors - Rehashes the combined owned+halo arena and rebuilds the
//neighbor lists. minX is the left edge of the slab's halo band.
func (sv *Solver) BuildNeighbors(p FluidParams, minX, width float32) {
	sv.Kernel = InitPBF(p.H)
	sv.Grid.Rebuild(minX, sv.Boundary.MinY, width, sv.Boundary.Height(), p.H, sv.Store.Particles, sv.Store.Total())
	sv.Neighbors.Build(sv.Grid, sv.Store, p.H)
}

//ComputeDensities - SPH density estimate at each owned particle, own
//contribution included.
func (sv *Solver) ComputeDensities(p FluidParams) {
	for i := 0; i < sv.Store.NLocal; i++ {
		pt := &sv.Store.Particles[i]
		density := p.Mass * sv.Kernel.W(0)
		for _, j := range sv.Neighbors.Of(i) {
			q := &sv.Store.Particles[j]
			r := Dist(pt.Xs, pt.Ys, q.Xs, q.Ys)
			if r <= p.H {
				density += p.Mass * sv.Kernel.W(r)
			}
		}
		pt.Density = density
	}
}

//ComputeLambdas - Constraint multiplier of the density constraint
//C_i = rho_i/rho0 - 1. The gradient norm sum carries both the k=i and k=j
//terms of the PBF derivation.
func (sv *Solver) ComputeLambdas(p FluidParams) {
	rho0 := p.RestDensity
	for i := 0; i < sv.Store.NLocal; i++ {
		pt := &sv.Store.Particles[i]
		Ci := pt.Density/rho0 - 1.0

		sumGrad := V.Vec32{}
		sumC := float32(0)
		for _, j := range sv.Neighbors.Of(i) {
			q := &sv.Store.Particles[j]
			r := Dist(pt.Xs, pt.Ys, q.Xs, q.Ys)
			grad := sv.Kernel.DelW(r)
			gv := V.Vec32{grad * (pt.Xs - q.Xs), grad * (pt.Ys - q.Ys)}
			sumGrad.Add(gv)
			sumC += V.LengthSq(gv)
		}
		sumC += V.LengthSq(sumGrad)

		pt.Lambda = -Ci / (sumC/(rho0*rho0) + LAMBDA_EPS)
	}
}

//ComputeDp - Position correction with the s_corr anti-clustering term
func (sv *Solver) ComputeDp(p FluidParams) {
	wDq := sv.Kernel.W(p.Dq)
	for i := 0; i < sv.Store.NLocal; i++ {
		pt := &sv.Store.Particles[i]
		var dpx, dpy float32
		for _, j := range sv.Neighbors.Of(i) {
			q := &sv.Store.Particles[j]
			r := Dist(pt.Xs, pt.Ys, q.Xs, q.Ys)
			sCorr := float32(0)
			if wDq > 0 {
				ratio := sv.Kernel.W(r) / wDq
				sCorr = -p.K * ratio * ratio * ratio * ratio
			}
			dp := (pt.Lambda + q.Lambda + sCorr) * sv.Kernel.DelW(r)
			dpx += dp * (pt.Xs - q.Xs)
			dpy += dp * (pt.Ys - q.Ys)
		}
		pt.Dpx = dpx / p.RestDensity
		pt.Dpy = dpy / p.RestDensity
	}
}

//ApplyDp - Moves predicted positions by the pending correction and
//re-resolves collisions.
func (sv *Solver) ApplyDp(p FluidParams) {
	for i := 0; i < sv.Store.NLocal; i++ {
		pt := &sv.Store.Particles[i]
		pt.Xs += pt.Dpx
		pt.Ys += pt.Dpy
		sv.resolveCollisions(pt)
	}
}

//UpdateVelocities - Derives velocities from the position delta for owned and
//halo particles so XSPH reads current neighbor state, then clamps to V_MAX.
func (sv *Solver) UpdateVelocities(p FluidParams) {
	inv := 1.0 / p.Dt
	for i := 0; i < sv.Store.Total(); i++ {
		pt := &sv.Store.Particles[i]
		v := V.Vec32{(pt.Xs - pt.X) * inv, (pt.Ys - pt.Y) * inv}
		v.Clamp(V_MAX)
		pt.Vx = v[0]
		pt.Vy = v[1]
	}
}

//XSPHViscosity - Smooths owned velocities toward the neighborhood average
func (sv *Solver) XSPHViscosity(p FluidParams) {
	for i := 0; i < sv.Store.NLocal; i++ {
		pt := &sv.Store.Particles[i]
		var sumX, sumY float32
		for _, j := range sv.Neighbors.Of(i) {
			q := &sv.Store.Particles[j]
			r := Dist(pt.Xs, pt.Ys, q.Xs, q.Ys)
			w := sv.Kernel.W(r)
			sumX += (q.Vx - pt.Vx) * w
			sumY += (q.Vy - pt.Vy) * w
		}
		pt.Vx += p.Viscosity * sumX
		pt.Vy += p.Viscosity * sumY
	}
}

//CommitPositions - Promotes predicted positions to committed state
func (sv *Solver) CommitPositions() {
	for i := 0; i < sv.Store.NLocal; i++ {
		pt := &sv.Store.Particles[i]
		pt.X = pt.Xs
		pt.Y = pt.Ys
	}
}
