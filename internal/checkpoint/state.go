package checkpoint

import "fmt"

// State is a step of the load pipeline.
type State int

// Load states. Assigned and Failed are terminal.
const (
	StateStart State = iota
	StateDeserialized
	StateFactoryBuilt
	StateValidated
	StateAssigned
	StateFailed
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case StateStart:
		return "START"
	case StateDeserialized:
		return "DESERIALIZED"
	case StateFactoryBuilt:
		return "FACTORY_BUILT"
	case StateValidated:
		return "VALIDATED"
	case StateAssigned:
		return "ASSIGNED"
	case StateFailed:
		return "ERROR"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// IsTerminal reports whether no transition leaves s.
func IsTerminal(s State) bool {
	return s == StateAssigned || s == StateFailed
}

func isAllowedTransition(from, to State) bool {
	switch from {
	case StateStart:
		return to == StateDeserialized || to == StateFailed
	case StateDeserialized:
		return to == StateFactoryBuilt || to == StateFailed
	case StateFactoryBuilt:
		return to == StateValidated || to == StateFailed
	case StateValidated:
		return to == StateAssigned || to == StateFailed
	default:
		return false
	}
}
