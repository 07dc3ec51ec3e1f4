// Package typewriter implements the cycling typewriter animation: an
// initial statement is revealed word by word, held, deleted, and
// followed by each cycling statement in turn.
//
// An Engine owns one animation. It keeps at most one timer pending,
// runs every tick under its own lock, and publishes a Frame to its
// subscribers after each state change. Configuration is fixed at
// creation; to change it, Dispose the engine and create a new one.
package typewriter

import (
	"log/slog"
	"sync"

	"github.com/kastheco/marquee/clock"
)

// Frame is the observable output of an engine after a state change.
type Frame struct {
	Text       string `json:"text" yaml:"text" toml:"text"`
	Phase      Phase  `json:"phase" yaml:"phase" toml:"phase"`
	ShowCursor bool   `json:"show_cursor" yaml:"show_cursor" toml:"show_cursor"`
	Statement  int    `json:"statement" yaml:"statement" toml:"statement"`
	Visible    int    `json:"visible" yaml:"visible" toml:"visible"`
}

// Option configures an Engine at creation.
type Option func(*Engine)

// WithClock sets the clock used to schedule ticks. Defaults to clock.Real().
func WithClock(c clock.Clock) Option {
	return func(e *Engine) { e.clock = c }
}

// WithLogger sets the logger used for transition traces.
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

// WithSubscriber registers fn before the first tick can be scheduled,
// so no frame is missed even with a zero start delay.
func WithSubscriber(fn func(Frame)) Option {
	return func(e *Engine) { e.addSubscriber(fn) }
}

// Engine runs one animation.
//
// Subscribers are called on the tick goroutine while the engine is
// locked. They may unsubscribe but must not call Dispose or any other
// Engine method; hand the frame off to another goroutine instead.
type Engine struct {
	mu       sync.Mutex
	cfg      Config
	m        *machine
	clock    clock.Clock
	logger   *slog.Logger
	timer    *clock.Timer
	gen      uint64
	disposed bool

	subMu   sync.Mutex
	subs    []subscriber
	nextSub int
}

type subscriber struct {
	id int
	fn func(Frame)
}

// New validates cfg and starts the animation. With SkipAnimation set
// the engine is created already at rest and never schedules a timer.
func New(cfg Config, opts ...Option) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	cfg.CyclingWords = append([]string(nil), cfg.CyclingWords...)
	e := &Engine{
		cfg:    cfg,
		m:      newMachine(cfg),
		clock:  clock.Real(),
		logger: slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(e)
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	e.logger.Debug("typewriter started",
		"phase", e.m.phase,
		"statements", len(e.m.statements),
		"loop", cfg.Loop,
		"skip", cfg.SkipAnimation)
	e.scheduleLocked()
	return e, nil
}

// InitialFrame is the frame an engine created from cfg shows before its
// first tick.
func InitialFrame(cfg Config) Frame {
	return newMachine(cfg).frame()
}

// PlayedThrough reports whether f, emitted by an engine running cfg,
// shows that every statement has been displayed in full: the engine
// reached Complete, or a looping cycle is holding its last statement.
// Skipped animations never count.
func PlayedThrough(cfg Config, f Frame) bool {
	if cfg.SkipAnimation {
		return false
	}
	switch f.Phase {
	case PhaseComplete:
		return true
	case PhaseHolding:
		return cfg.Loop && len(cfg.CyclingWords) > 0 && f.Statement == len(cfg.CyclingWords)
	}
	return false
}

// Config returns the configuration the engine was created with.
func (e *Engine) Config() Config {
	cfg := e.cfg
	cfg.CyclingWords = append([]string(nil), e.cfg.CyclingWords...)
	return cfg
}

// Frame returns the current output.
func (e *Engine) Frame() Frame {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.m.frame()
}

// Phase returns the current phase.
func (e *Engine) Phase() Phase { return e.Frame().Phase }

// Text returns the text currently displayed.
func (e *Engine) Text() string { return e.Frame().Text }

// ShowCursor reports whether a blinking caret should be drawn.
func (e *Engine) ShowCursor() bool { return e.Frame().ShowCursor }

// Subscribe registers fn for every future frame. The returned function
// removes it and may be called from inside fn.
func (e *Engine) Subscribe(fn func(Frame)) (unsubscribe func()) {
	id := e.addSubscriber(fn)
	var once sync.Once
	return func() {
		once.Do(func() { e.removeSubscriber(id) })
	}
}

// Dispose cancels the pending timer. Once it returns no tick runs and
// no subscriber is called. Calling it again does nothing.
func (e *Engine) Dispose() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.disposed {
		return
	}
	e.disposed = true
	e.gen++
	e.timer.Stop()
	e.timer = nil
	e.logger.Debug("typewriter disposed", "phase", e.m.phase)
}

// Disposed reports whether Dispose has been called.
func (e *Engine) Disposed() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.disposed
}

// scheduleLocked arms the single pending timer for the machine's next
// step. Must be called with e.mu held.
func (e *Engine) scheduleLocked() {
	d, ok := e.m.wait(e.cfg)
	if !ok || e.disposed {
		e.timer = nil
		return
	}
	e.gen++
	gen := e.gen
	e.timer = e.clock.AfterFunc(d, func() { e.tick(gen) })
}

// tick runs one step. Callbacks from a replaced or cancelled timer
// carry a stale generation and are dropped.
func (e *Engine) tick(gen uint64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.disposed || gen != e.gen {
		return
	}
	e.timer = nil

	from := e.m.phase
	event, err := e.m.step()
	if err != nil {
		// Unreachable while nextEvent and the table agree.
		e.logger.Error("typewriter halted", "phase", from, "err", err)
		return
	}
	if event != Reveal && event != Erase {
		e.logger.Debug("typewriter transition",
			"from", from,
			"event", event,
			"to", e.m.phase,
			"statement", e.m.index)
	}

	e.scheduleLocked()
	e.publishLocked(e.m.frame())
}

func (e *Engine) publishLocked(f Frame) {
	e.subMu.Lock()
	subs := append([]subscriber(nil), e.subs...)
	e.subMu.Unlock()
	for _, s := range subs {
		s.fn(f)
	}
}

func (e *Engine) addSubscriber(fn func(Frame)) int {
	e.subMu.Lock()
	defer e.subMu.Unlock()
	e.nextSub++
	e.subs = append(e.subs, subscriber{id: e.nextSub, fn: fn})
	return e.nextSub
}

func (e *Engine) removeSubscriber(id int) {
	e.subMu.Lock()
	defer e.subMu.Unlock()
	for i, s := range e.subs {
		if s.id == id {
			e.subs = append(e.subs[:i], e.subs[i+1:]...)
			return
		}
	}
}
