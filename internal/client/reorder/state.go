package reorder

import "fmt"

// State is the lifecycle of a List's order.
type State int

const (
	// StateClean means the local order matches the last confirmed one.
	StateClean State = iota
	// StateDirty means a command was applied locally and not yet sent.
	StateDirty
	// StatePersisting means a batch is in flight.
	StatePersisting
	// StateRolledBack means the last batch was rejected and the snapshot
	// taken before it was restored.
	StateRolledBack
)

func (s State) String() string {
	switch s {
	case StateClean:
		return "clean"
	case StateDirty:
		return "dirty"
	case StatePersisting:
		return "persisting"
	case StateRolledBack:
		return "rolled_back"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

var transitions = map[State][]State{
	StateClean:      {StateDirty, StateClean},
	StateDirty:      {StatePersisting, StateClean},
	StatePersisting: {StateClean, StateRolledBack},
	StateRolledBack: {StateDirty, StateClean},
}

// CanTransition reports whether from may move to to.
func CanTransition(from, to State) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}
