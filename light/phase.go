package light

import "strconv"

// A Phase is the signal state of a traffic light. The zero Phase is Red.
type Phase uint32

const (
	Red   Phase = iota // vehicles must wait
	Green              // vehicles may proceed
)

// Valid reports whether p is one of the defined phases.
func (p Phase) Valid() bool { return p == Red || p == Green }

// Toggle returns the phase that follows p: Red becomes Green, and anything
// else becomes Red.
func (p Phase) Toggle() Phase {
	if p == Red {
		return Green
	}
	return Red
}

func (p Phase) String() string {
	switch p {
	case Red:
		return "red"
	case Green:
		return "green"
	default:
		return "Phase(" + strconv.FormatUint(uint64(p), 10) + ")"
	}
}
