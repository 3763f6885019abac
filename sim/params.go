package sim

//Tunable parameter model. The coordinator owns the authoritative copy and the
//partition layout; each worker holds the snapshot most recently scattered to
//it and treats it as read only for the duration of a substep.

//Tunables - Per-worker parameter snapshot, the scatter payload. Only
//NodeStartX, NodeEndX and Active differ between workers.
type Tunables struct {
	Gravity         float32
	SmoothingRadius float32
	K               float32
	Dq              float32
	RestDensity     float32
	Viscosity       float32
	TimeStep        float32
	MoverCenterX    float32
	MoverCenterY    float32
	MoverRadius     float32
	NodeStartX      float32
	NodeEndX        float32
	StepsPerFrame   int
	Active          bool
	KillSim         bool
}

//SelectedParam - Cyclic selector over the adjustable fields
type SelectedParam int

const (
	SELECT_GRAVITY SelectedParam = iota
	SELECT_SMOOTH
	SELECT_DENSITY
	SELECT_K
	SELECT_DQ
	SELECT_VISCOSITY

	selectMin = SELECT_GRAVITY
	selectMax = SELECT_VISCOSITY
)

//Mover radius bounds
const (
	MOVER_RADIUS_MIN     = 1.0
	MOVER_RADIUS_MAX     = 4.0
	MOVER_RADIUS_STEP    = 0.2
	MOVER_RADIUS_DEFAULT = 2.0
)

//MIN_SLAB_FACTOR times the smoothing radius is the narrowest slab that can
//still hold a halo band on both sides.
const MIN_SLAB_FACTOR = 2.5

//paramRange - One row of the stepping table. A negative step means an
//"increase" moves the value down, which is how gravity behaves.
type paramRange struct {
	min  float32
	max  float32
	step float32
}

//TunableParameters - Coordinator-side master copy plus the partition layout
//over the compute workers.
type TunableParameters struct {
	Tunables
	Selected SelectedParam

	NumProcs   int //compute workers, excludes the coordinator
	NumActive  int
	ProcStarts []float32
	ProcEnds   []float32
	DomainMaxX float32

	//Unproject maps display coordinates to simulation coordinates for mover
	//placement. Supplied by the embedding application.
	Unproject func(x, y, z float32) (float32, float32)
}

//InitTunableParameters - Builds the master copy with all workers active and
//the domain tiled evenly across them.
func InitTunableParameters(initial Tunables, numProcs int, domainMaxX float32) *TunableParameters {
	tp := &TunableParameters{
		Tunables:   initial,
		NumProcs:   numProcs,
		NumActive:  numProcs,
		ProcStarts: make([]float32, numProcs),
		ProcEnds:   make([]float32, numProcs),
		DomainMaxX: domainMaxX,
	}
	slab := domainMaxX / float32(numProcs)
	for i := 0; i < numProcs; i++ {
		tp.ProcStarts[i] = float32(i) * slab
		tp.ProcEnds[i] = float32(i+1) * slab
	}
	tp.ProcEnds[numProcs-1] = domainMaxX
	return tp
}

//rangeOf - The stepping table of §controls: bounds and step per field. The
//dq row scales with the current smoothing radius.
func (tp *TunableParameters) rangeOf(p SelectedParam) paramRange {
	switch p {
	case SELECT_GRAVITY:
		return paramRange{-9, 9, -1.0}
	case SELECT_SMOOTH:
		return paramRange{0, 5, 0.1}
	case SELECT_DENSITY:
		return paramRange{-5, 5, 0.01}
	case SELECT_K:
		return paramRange{-5, 5, 0.05}
	case SELECT_DQ:
		return paramRange{0, tp.SmoothingRadius, 0.05 * tp.SmoothingRadius}
	case SELECT_VISCOSITY:
		return paramRange{-100, 100, 0.05}
	}
	return paramRange{}
}

func (tp *TunableParameters) fieldOf(p SelectedParam) *float32 {
	switch p {
	case SELECT_GRAVITY:
		return &tp.Gravity
	case SELECT_SMOOTH:
		return &tp.SmoothingRadius
	case SELECT_DENSITY:
		return &tp.RestDensity
	case SELECT_K:
		return &tp.K
	case SELECT_DQ:
		return &tp.Dq
	case SELECT_VISCOSITY:
		return &tp.Viscosity
	}
	return nil
}

//MoveParameterUp - Steps the selector with wrap-around
func (tp *TunableParameters) MoveParameterUp() {
	if tp.Selected == selectMin {
		tp.Selected = selectMax
	} else {
		tp.Selected--
	}
}

func (tp *TunableParameters) MoveParameterDown() {
	if tp.Selected == selectMax {
		tp.Selected = selectMin
	} else {
		tp.Selected++
	}
}

//IncreaseParameter - Steps the selected field toward its "increase" bound.
//Gravity's step is inverted: increasing gravity drives g toward -9.
func (tp *TunableParameters) IncreaseParameter() {
	tp.stepParameter(tp.Selected, 1)
}

func (tp *TunableParameters) DecreaseParameter() {
	tp.stepParameter(tp.Selected, -1)
}

func (tp *TunableParameters) stepParameter(p SelectedParam, dir float32) {
	r := tp.rangeOf(p)
	f := tp.fieldOf(p)
	if f == nil {
		return
	}
	v := *f + dir*r.step
	if v > r.max {
		v = r.max
	}
	if v < r.min {
		v = r.min
	}
	*f = v
}

func (tp *TunableParameters) IncreaseMoverRadius() {
	if tp.MoverRadius < MOVER_RADIUS_MAX {
		tp.MoverRadius += MOVER_RADIUS_STEP
	}
}

func (tp *TunableParameters) DecreaseMoverRadius() {
	if tp.MoverRadius > MOVER_RADIUS_MIN {
		tp.MoverRadius -= MOVER_RADIUS_STEP
	}
}

func (tp *TunableParameters) ResetMoverRadius() {
	tp.MoverRadius = MOVER_RADIUS_DEFAULT
}

//SetMoverCenterFromDisplay - Places the mover from display coordinates using
//the supplied unprojection. Without one, coordinates are taken verbatim.
func (tp *TunableParameters) SetMoverCenterFromDisplay(x, y, z float32) {
	if tp.Unproject != nil {
		tp.MoverCenterX, tp.MoverCenterY = tp.Unproject(x, y, z)
		return
	}
	tp.MoverCenterX = x
	tp.MoverCenterY = y
}

//RemovePartition - Retires the rightmost active worker. Its slab is absorbed
//by the left neighbor and the retired slab is parked one unit past the
//domain so no particle can land in it; the parked worker then drains itself
//through ordinary OOB migration.
func (tp *TunableParameters) RemovePartition() {
	if tp.NumActive == 1 {
		return
	}
	removed := tp.NumActive - 1

	tp.ProcEnds[removed-1] = tp.ProcEnds[removed]

	parked := tp.ProcEnds[removed] + 1.0
	tp.ProcStarts[removed] = parked
	tp.ProcEnds[removed] = parked

	tp.NumActive--
}

//AddPartition - Reactivates the next parked worker by splitting the current
//rightmost active slab in half, provided that slab is at least
//MIN_SLAB_FACTOR smoothing radii wide before the split. The resulting halves
//are not checked against that width.
func (tp *TunableParameters) AddPartition() {
	if tp.NumActive == tp.NumProcs {
		return
	}
	last := tp.NumActive - 1
	length := tp.ProcEnds[last] - tp.ProcStarts[last]
	if length < MIN_SLAB_FACTOR*tp.SmoothingRadius {
		return
	}

	tp.ProcEnds[tp.NumActive] = tp.ProcEnds[last]
	mid := tp.ProcStarts[last] + length*0.5
	tp.ProcEnds[last] = mid
	tp.ProcStarts[tp.NumActive] = mid

	tp.NumActive++
}

//WorkerTunables - The per-worker snapshot for a compute rank (1..NumProcs)
func (tp *TunableParameters) WorkerTunables(rank int) Tunables {
	t := tp.Tunables
	idx := rank - 1
	t.NodeStartX = tp.ProcStarts[idx]
	t.NodeEndX = tp.ProcEnds[idx]
	t.Active = idx < tp.NumActive
	return t
}
