package world

// Phase is the state of a single game.
type Phase int

const (
	PhaseReady   Phase = iota // Waiting for the first flap
	PhasePlaying              // Bird under player control
	PhaseCrashed              // Collision happened; waiting for Reset
)

func (p Phase) String() string {
	switch p {
	case PhaseReady:
		return "ready"
	case PhasePlaying:
		return "playing"
	case PhaseCrashed:
		return "crashed"
	}
	return "unknown"
}

// Cause identifies what the bird hit.
type Cause int

const (
	CauseNone Cause = iota
	CausePipe
	CauseGround
	CauseCeiling
)

func (c Cause) String() string {
	switch c {
	case CausePipe:
		return "pipe"
	case CauseGround:
		return "ground"
	case CauseCeiling:
		return "ceiling"
	}
	return "none"
}

// EventKind identifies an Event.
type EventKind int

const (
	EventFlap    EventKind = iota // The bird flapped
	EventScored                   // A pipe was passed; Score holds the new score
	EventCrashed                  // The game ended; Score and Cause are set
)

// Event is something that happened during a Step.
type Event struct {
	Kind  EventKind
	Score int
	Cause Cause
}
