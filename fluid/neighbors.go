package fluid

//Neighbor lists index into the combined owned+halo arena and are rebuilt
//after every halo exchange. The per-particle cap bounds both memory and the
//cost of a Jacobi iteration; in a well-parameterized run the cap is never
//reached.

const MAX_NEIGHBORS = 60

type NeighborList struct {
	indices []int32 //NLocal * MAX_NEIGHBORS, flat
	counts  []int32
}

func AllocNeighbors(capacity int) *NeighborList {
	return &NeighborList{
		indices: make([]int32, capacity*MAX_NEIGHBORS),
		counts:  make([]int32, capacity),
	}
}

//Build - Fills the list for every owned particle from the hash grid. A
//candidate j is kept when it is a distinct particle within the smoothing
//radius of i's predicted position; each such j appears exactly once because
//the 9-bucket scan visits each bucket once.
func (nl *NeighborList) Build(grid *SpatialHashGrid, s *ParticleStore, h float32) {
	for i := 0; i < s.NLocal; i++ {
		p := &s.Particles[i]
		base := i * MAX_NEIGHBORS
		count := int32(0)
		grid.Scan(p.Xs, p.Ys, func(j int32) {
			if int(j) == i || count >= MAX_NEIGHBORS {
				return
			}
			q := &s.Particles[j]
			if Dist(p.Xs, p.Ys, q.Xs, q.Ys) <= h {
				nl.indices[base+int(count)] = j
				count++
			}
		})
		nl.counts[i] = count
	}
}

//Of - Neighbor indices of owned particle i
func (nl *NeighborList) Of(i int) []int32 {
	base := i * MAX_NEIGHBORS
	return nl.indices[base : base+int(nl.counts[i])]
}
