package typewriter

import "fmt"

// Phase is the engine's position in the type/hold/delete cycle.
type Phase string

const (
	PhaseIdle     Phase = "idle"
	PhaseTyping   Phase = "typing"
	PhaseHolding  Phase = "holding"
	PhaseDeleting Phase = "deleting"
	PhaseComplete Phase = "complete"
)

// Animating reports whether the caret should blink in this phase.
func (p Phase) Animating() bool {
	switch p {
	case PhaseIdle, PhaseTyping, PhaseHolding, PhaseDeleting:
		return true
	}
	return false
}

// Event is a transition trigger produced by one tick.
type Event string

const (
	Start    Event = "start"    // start delay elapsed
	Skip     Event = "skip"     // skip animation requested at creation
	Reveal   Event = "reveal"   // one more word shown
	Finished Event = "finished" // last word of the statement shown
	Cycle    Event = "cycle"    // hold elapsed, another statement follows
	Rest     Event = "rest"     // hold elapsed, statement is final
	Erase    Event = "erase"    // one word removed
	Cleared  Event = "cleared"  // statement fully removed
)

// transitionTable lists every legal move.
// Key: current phase → event → next phase.
var transitionTable = map[Phase]map[Event]Phase{
	PhaseIdle: {
		Start: PhaseTyping,
		Skip:  PhaseComplete,
	},
	PhaseTyping: {
		Reveal:   PhaseTyping,
		Finished: PhaseHolding,
	},
	PhaseHolding: {
		Cycle: PhaseDeleting,
		Rest:  PhaseComplete,
	},
	PhaseDeleting: {
		Erase:   PhaseDeleting,
		Cleared: PhaseTyping,
	},
	PhaseComplete: {},
}

// ApplyTransition returns the phase reached from current by event.
func ApplyTransition(current Phase, event Event) (Phase, error) {
	events, ok := transitionTable[current]
	if !ok {
		return "", fmt.Errorf("no transitions defined for phase %q", current)
	}
	next, ok := events[event]
	if !ok {
		return "", fmt.Errorf("invalid transition: %q + %q", current, event)
	}
	return next, nil
}
