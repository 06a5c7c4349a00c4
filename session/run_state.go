package session

// RunState reports whether the auto-play loop is ticking
type RunState int

const (
	// Idle is a session whose auto-play loop has never run since creation or reset
	Idle RunState = iota
	// Running is a session whose auto-play loop is ticking
	Running
	// Stopped is a session whose auto-play loop was stopped or reset
	Stopped
)

func (s RunState) String() string {
	switch s {
	case Idle:
		return "Idle"
	case Running:
		return "Running"
	case Stopped:
		return "Stopped"
	default:
		return "Unknown"
	}
}
