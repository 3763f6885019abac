package fluid

//Spatial Hash Grid - Uniform bucket grid over the worker slab plus its halo
//band. Cell size equals the smoothing radius so a particle's neighbors are
//confined to its own bucket and the 8 surrounding ones. The grid is derived
//state: rebuilt from predicted positions every substep, never persisted.

type SpatialHashGrid struct {
	MinX float32 //Grid origin, slab start minus the halo band
	MinY float32
	Cell float32 //Bucket edge length = smoothing radius
	Cols int
	Rows int
	head []int32 //Bucket -> first particle index, -1 when empty
	next []int32 //Particle index -> next particle in the same bucket
}

//AllocGrid - Sizes the chain array for the particle arena capacity so it never
//reallocates. Bucket storage depends on the extent and is sized by Rebuild.
func AllocGrid(capacity int) *SpatialHashGrid {
	return &SpatialHashGrid{next: make([]int32, capacity)}
}

//Rebuild - Rehashes the first n arena entries by predicted position. The
//extent arguments describe the slab plus halo band; indices outside the
//extent clamp into the edge bins so hashing stays total.
func (g *SpatialHashGrid) Rebuild(minX, minY, width, height, cell float32, parts []Particle, n int) {
	g.MinX = minX
	g.MinY = minY
	g.Cell = cell
	g.Cols = int(width/cell) + 1
	g.Rows = int(height/cell) + 1
	if g.Cols < 1 {
		g.Cols = 1
	}
	if g.Rows < 1 {
		g.Rows = 1
	}

	nb := g.Cols * g.Rows
	if cap(g.head) < nb {
		g.head = make([]int32, nb)
	}
	g.head = g.head[:nb]
	for i := range g.head {
		g.head[i] = -1
	}

	for i := 0; i < n; i++ {
		b := g.bucket(parts[i].Xs, parts[i].Ys)
		g.next[i] = g.head[b]
		g.head[b] = int32(i)
	}
}

func (g *SpatialHashGrid) cellOf(x, y float32) (int, int) {
	ix := int((x - g.MinX) / g.Cell)
	iy := int((y - g.MinY) / g.Cell)
	if ix < 0 {
		ix = 0
	} else if ix >= g.Cols {
		ix = g.Cols - 1
	}
	if iy < 0 {
		iy = 0
	} else if iy >= g.Rows {
		iy = g.Rows - 1
	}
	return ix, iy
}

func (g *SpatialHashGrid) bucket(x, y float32) int {
	ix, iy := g.cellOf(x, y)
	return iy*g.Cols + ix
}

//Scan - Visits every particle index in the bucket holding (x,y) and the 8
//surrounding buckets.
func (g *SpatialHashGrid) Scan(x, y float32, visit func(j int32)) {
	ix, iy := g.cellOf(x, y)
	for dy := -1; dy <= 1; dy++ {
		cy := iy + dy
		if cy < 0 || cy >= g.Rows {
			continue
		}
		for dx := -1; dx <= 1; dx++ {
			cx := ix + dx
			if cx < 0 || cx >= g.Cols {
				continue
			}
			for j := g.head[cy*g.Cols+cx]; j >= 0; j = g.next[j] {
				visit(j)
			}
		}
	}
}
