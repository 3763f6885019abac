package fluid

import "fmt"

//Particle state lives in one contiguous arena per worker. Neighbor lists store
//indices into the arena; nothing holds a pointer to a particle across
//substeps. The owned region [0,NLocal) is authoritative, the halo region
//[NLocal,NLocal+NHalo) mirrors neighbor-owned particles and is rebuilt every
//substep.

//Particle - Committed position, predicted position, velocity and the solver
//scratch fields of the density constraint.
type Particle struct {
	X, Y     float32 //Committed position
	Xs, Ys   float32 //Predicted position (x-star)
	Vx, Vy   float32 //Velocity
	Density  float32
	Lambda   float32
	Dpx, Dpy float32 //Pending position correction
}

//ParticleRecord - Fixed-layout wire record for OOB migration and halo
//exchange: x, y, x*, y*, vx, vy.
type ParticleRecord [6]float32

func (p *Particle) Record() ParticleRecord {
	return ParticleRecord{p.X, p.Y, p.Xs, p.Ys, p.Vx, p.Vy}
}

func FromRecord(r ParticleRecord) Particle {
	return Particle{X: r[0], Y: r[1], Xs: r[2], Ys: r[3], Vx: r[4], Vy: r[5]}
}

//ParticleStore - Arena of capacity C sized at init. Migration and halo
//traffic must never exceed C; overflow means the time step violates the
//one-slab-per-substep assumption and is fatal.
type ParticleStore struct {
	Particles []Particle
	NLocal    int
	NHalo     int
}

func AllocStore(capacity int) *ParticleStore {
	return &ParticleStore{Particles: make([]Particle, capacity)}
}

func (s *ParticleStore) Capacity() int {
	return len(s.Particles)
}

//Total - Owned plus halo count, the extent of valid arena entries
func (s *ParticleStore) Total() int {
	return s.NLocal + s.NHalo
}

//ClearHalo - Drops all halo mirrors at the start of a substep
func (s *ParticleStore) ClearHalo() {
	s.NHalo = 0
}

func (s *ParticleStore) AppendLocal(p Particle) error {
	if s.Total() >= s.Capacity() {
		return fmt.Errorf("particle store overflow: capacity %d exceeded appending local", s.Capacity())
	}
	//Keep the halo block contiguous after the owned block
	if s.NHalo > 0 {
		s.Particles[s.NLocal+s.NHalo] = s.Particles[s.NLocal]
	}
	s.Particles[s.NLocal] = p
	s.NLocal++
	return nil
}

func (s *ParticleStore) AppendHalo(p Particle) error {
	if s.Total() >= s.Capacity() {
		return fmt.Errorf("particle store overflow: capacity %d exceeded appending halo", s.Capacity())
	}
	s.Particles[s.NLocal+s.NHalo] = p
	s.NHalo++
	return nil
}

//RemoveLocal - Compacts the owned region by overwriting the vacated slots
//with tail entries and shrinking NLocal. Indices must refer to the owned
//region; the slice is consumed in place.
func (s *ParticleStore) RemoveLocal(indices []int) {
	//Process from the highest index down so tail swaps never disturb a
	//pending removal.
	sortDescending(indices)
	for _, idx := range indices {
		last := s.NLocal - 1
		if idx != last {
			s.Particles[idx] = s.Particles[last]
		}
		s.NLocal = last
	}
}

func sortDescending(a []int) {
	//Insertion sort; OOB batches are small
	for i := 1; i < len(a); i++ {
		v := a[i]
		j := i - 1
		for j >= 0 && a[j] < v {
			a[j+1] = a[j]
			j--
		}
		a[j+1] = v
	}
}
