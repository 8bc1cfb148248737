package ik

// State is where a solver is in its lifecycle.
type State int

// The solver states. A solver is Idle until it is given a target, Solving while iterating, and ends a Solve call
// either Converged or Failed.
const (
	Idle State = iota
	Solving
	Converged
	Failed
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Solving:
		return "solving"
	case Converged:
		return "converged"
	case Failed:
		return "failed"
	default:
		return "unknown"
	}
}
