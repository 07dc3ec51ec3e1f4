package typewriter

import (
	"strings"
	"time"
)

// machine is the engine state without any timers. Each call to step
// performs exactly one tick.
type machine struct {
	statements [][]string
	loop       bool
	skip       bool

	phase   Phase
	index   int // 0 is the initial text, i >= 1 is CyclingWords[i-1]
	visible int
	text    string
}

func newMachine(cfg Config) *machine {
	m := &machine{
		statements: cfg.statements(),
		loop:       cfg.Loop,
		skip:       cfg.SkipAnimation,
		phase:      PhaseIdle,
	}
	if m.skip {
		m.rest()
	}
	return m
}

// rest moves straight to the resting statement.
func (m *machine) rest() {
	m.phase, _ = ApplyTransition(m.phase, Skip)
	m.index = len(m.statements) - 1
	m.visible = len(m.statements[m.index])
	m.render()
}

// wait returns how long the machine sleeps before its next step. The
// second result is false once the machine is at rest.
func (m *machine) wait(cfg Config) (time.Duration, bool) {
	switch m.phase {
	case PhaseIdle:
		return cfg.StartDelay, true
	case PhaseTyping:
		return cfg.TypeInterval, true
	case PhaseHolding:
		return cfg.Hold, true
	case PhaseDeleting:
		return cfg.DeleteInterval, true
	}
	return 0, false
}

// step advances one tick and returns the event it applied.
func (m *machine) step() (Event, error) {
	event := m.nextEvent()
	next, err := ApplyTransition(m.phase, event)
	if err != nil {
		return "", err
	}

	switch event {
	case Start:
		m.index, m.visible = 0, 0
	case Reveal, Finished:
		m.visible++
	case Erase:
		m.visible--
	case Cleared:
		m.visible = 0
		m.index = m.following()
	}
	m.phase = next
	m.render()
	return event, nil
}

// nextEvent decides what the current phase does on its next tick.
func (m *machine) nextEvent() Event {
	cycling := len(m.statements) - 1
	switch m.phase {
	case PhaseIdle:
		return Start
	case PhaseTyping:
		if m.visible+1 >= len(m.active()) {
			return Finished
		}
		return Reveal
	case PhaseHolding:
		switch {
		case cycling == 0:
			return Rest
		case m.index == 0, m.loop:
			return Cycle
		case m.index == cycling:
			return Rest
		default:
			return Cycle
		}
	case PhaseDeleting:
		if m.visible <= 1 {
			return Cleared
		}
		return Erase
	}
	// Complete has no outgoing edge; ApplyTransition rejects this.
	return Rest
}

// following returns the statement typed after the current one has been
// deleted. Once cycling has started the initial text is never shown
// again: the last cycling statement wraps to the first.
func (m *machine) following() int {
	next := m.index + 1
	if next >= len(m.statements) {
		next = 1
	}
	return next
}

func (m *machine) active() []string {
	return m.statements[m.index]
}

func (m *machine) render() {
	m.text = strings.Join(m.active()[:m.visible], " ")
}

func (m *machine) frame() Frame {
	return Frame{
		Text:       m.text,
		Phase:      m.phase,
		ShowCursor: m.phase.Animating() && !m.skip,
		Statement:  m.index,
		Visible:    m.visible,
	}
}
