package sim

import G "github.com/cbhe/SPH-1/geometry"

//Settings - Immutable cluster-wide setup shared by every rank at init. Unlike
//tunables these never change during a run; both coordinator and workers are
//constructed from the same value so derived state (initial partition, fill
//layout) agrees without an extra broadcast.
type Settings struct {
	Boundary G.AABB

	//Initial fluid fill: a ParticlesX by ParticlesY grid spanning the domain
	//width and FillHeight up from the floor.
	ParticlesX int
	ParticlesY int
	FillHeight float32

	//CapacityFactor scales each worker's particle arena relative to its share
	//of the fill. 2.0 is the safe default; migration past that is fatal.
	CapacityFactor float32

	//ParticleMass is fixed at init; with the normalized 2D kernel a fill at
	//rest density wants mass = rest_density * fill_area / particle_count.
	ParticleMass float32

	Initial Tunables
}
