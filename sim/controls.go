package sim

//Control events are the abstract input surface of the coordinator. The
//embedding application translates whatever input device it owns into these
//events; the coordinator drains the queue once per frame and applies them to
//the master parameter copy before the scatter.

type ControlKind int

const (
	CTRL_SELECT_UP ControlKind = iota
	CTRL_SELECT_DOWN
	CTRL_INCREASE
	CTRL_DECREASE
	CTRL_MOVER_GROW
	CTRL_MOVER_SHRINK
	CTRL_MOVER_RESET
	CTRL_MOVER_CENTER
	CTRL_ADD_PARTITION
	CTRL_REMOVE_PARTITION
	CTRL_KILL
)

//ControlEvent - One input action. X/Y/Z carry display coordinates for
//CTRL_MOVER_CENTER and are ignored otherwise.
type ControlEvent struct {
	Kind ControlKind
	X    float32
	Y    float32
	Z    float32
}

//Apply - Mutates the master copy according to one event
func (tp *TunableParameters) Apply(ev ControlEvent) {
	switch ev.Kind {
	case CTRL_SELECT_UP:
		tp.MoveParameterUp()
	case CTRL_SELECT_DOWN:
		tp.MoveParameterDown()
	case CTRL_INCREASE:
		tp.IncreaseParameter()
	case CTRL_DECREASE:
		tp.DecreaseParameter()
	case CTRL_MOVER_GROW:
		tp.IncreaseMoverRadius()
	case CTRL_MOVER_SHRINK:
		tp.DecreaseMoverRadius()
	case CTRL_MOVER_RESET:
		tp.ResetMoverRadius()
	case CTRL_MOVER_CENTER:
		tp.SetMoverCenterFromDisplay(ev.X, ev.Y, ev.Z)
	case CTRL_ADD_PARTITION:
		tp.AddPartition()
	case CTRL_REMOVE_PARTITION:
		tp.RemovePartition()
	case CTRL_KILL:
		tp.KillSim = true
	}
}
