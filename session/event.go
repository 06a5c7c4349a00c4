package session

import (
	"github.com/zyedidia/generic/mapset"

	"github.com/sheikhrachel/go-gol-board/model"
)

// EventKind names what changed in a session
type EventKind int

const (
	EventSetup EventKind = iota
	EventToggle
	EventStep
	EventReset
	EventRunState
	EventClosed
)

func (k EventKind) String() string {
	switch k {
	case EventSetup:
		return "setup"
	case EventToggle:
		return "toggle"
	case EventStep:
		return "step"
	case EventReset:
		return "reset"
	case EventRunState:
		return "run-state"
	case EventClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// Event is published to subscribers after every session change.
// Changed is shared between subscribers and must be treated as read-only.
type Event struct {
	// Seq numbers this subscriber's events from 1; a gap means events were dropped
	Seq        uint64
	Kind       EventKind
	Generation int
	State      RunState
	Changed    mapset.Set[model.Coord]
}

// subscriberBuffer bounds how far a slow subscriber can lag before its oldest events are dropped
const subscriberBuffer = 16
