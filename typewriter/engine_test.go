package typewriter

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kastheco/marquee/clock"
)

var epoch = time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

// recorder collects frames published by an engine.
type recorder struct {
	mu     sync.Mutex
	frames []Frame
}

func (r *recorder) record(f Frame) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.frames = append(r.frames, f)
}

func (r *recorder) texts() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.frames))
	for i, f := range r.frames {
		out[i] = f.Text
	}
	return out
}

func (r *recorder) len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.frames)
}

func newTestEngine(t *testing.T, cfg Config) (*Engine, *clock.FakeClock, *recorder) {
	t.Helper()
	c := clock.Fake(epoch)
	rec := &recorder{}
	e, err := New(cfg, WithClock(c), WithSubscriber(rec.record))
	require.NoError(t, err)
	t.Cleanup(e.Dispose)
	return e, c, rec
}

func TestEngine_TypesInitialTextThenCompletes(t *testing.T) {
	e, c, _ := newTestEngine(t, Config{
		InitialText:  "Hello world",
		TypeInterval: 100 * time.Millisecond,
		Hold:         500 * time.Millisecond,
	})
	assert.Equal(t, PhaseIdle, e.Phase())

	c.Advance(0) // start delay
	assert.Equal(t, PhaseTyping, e.Phase())
	assert.Equal(t, "", e.Text())

	c.Advance(100 * time.Millisecond)
	assert.Equal(t, "Hello", e.Text())

	c.Advance(100 * time.Millisecond)
	assert.Equal(t, "Hello world", e.Text())
	assert.Equal(t, PhaseHolding, e.Phase())
	assert.True(t, e.ShowCursor())

	c.Advance(499 * time.Millisecond)
	assert.Equal(t, PhaseHolding, e.Phase())

	c.Advance(time.Millisecond)
	assert.Equal(t, PhaseComplete, e.Phase())
	assert.Equal(t, "Hello world", e.Text())
	assert.False(t, e.ShowCursor())
	assert.Equal(t, 0, c.Pending(), "complete schedules nothing")
}

func TestEngine_NonLoopingCyclesThenRestsOnFinalStatement(t *testing.T) {
	e, c, rec := newTestEngine(t, Config{
		InitialText:    "Hi",
		CyclingWords:   []string{"Bye now"},
		TypeInterval:   10 * time.Millisecond,
		DeleteInterval: 10 * time.Millisecond,
		Hold:           50 * time.Millisecond,
	})

	c.Advance(time.Second)
	assert.Equal(t, PhaseComplete, e.Phase())
	assert.Equal(t, "Bye now", e.Text())

	assert.Equal(t, []string{
		"",        // start
		"Hi",      // typed, holding
		"Hi",      // hold elapsed, deleting
		"",        // cleared, typing next
		"Bye",     // reveal
		"Bye now", // finished, holding
		"Bye now", // rest
	}, rec.texts())

	before := rec.len()
	c.Advance(time.Hour)
	assert.Equal(t, before, rec.len())
	assert.Equal(t, "Bye now", e.Text())
}

func TestEngine_LoopWrapsToFirstCyclingStatement(t *testing.T) {
	e, c, rec := newTestEngine(t, Config{
		InitialText:    "Intro",
		CyclingWords:   []string{"A B", "C D"},
		TypeInterval:   10 * time.Millisecond,
		DeleteInterval: 10 * time.Millisecond,
		Hold:           10 * time.Millisecond,
		Loop:           true,
	})

	var typed []string
	for i := 0; i < 400; i++ {
		c.Advance(10 * time.Millisecond)
		require.NotEqual(t, PhaseComplete, e.Phase(), "looping never completes")
	}
	rec.mu.Lock()
	for _, f := range rec.frames {
		if f.Phase == PhaseHolding {
			typed = append(typed, f.Text)
		}
	}
	rec.mu.Unlock()

	require.GreaterOrEqual(t, len(typed), 5)
	assert.Equal(t, []string{"Intro", "A B", "C D", "A B", "C D"}, typed[:5])
	for _, s := range typed[1:] {
		assert.NotEqual(t, "Intro", s, "initial text is not revisited")
	}
}

func TestEngine_SkipAnimationRestsImmediately(t *testing.T) {
	e, c, rec := newTestEngine(t, Config{
		InitialText:   "start",
		CyclingWords:  []string{"X", "Y", "Z"},
		TypeInterval:  time.Millisecond,
		SkipAnimation: true,
	})

	f := e.Frame()
	assert.Equal(t, "Z", f.Text)
	assert.Equal(t, PhaseComplete, f.Phase)
	assert.False(t, f.ShowCursor)
	assert.Equal(t, 0, c.Pending())

	c.Advance(time.Minute)
	assert.Zero(t, rec.len(), "no intermediate frames")
}

func TestEngine_SkipWithoutCyclingShowsInitialText(t *testing.T) {
	e, _, _ := newTestEngine(t, Config{InitialText: "Only this", SkipAnimation: true})
	assert.Equal(t, "Only this", e.Text())
	assert.Equal(t, 0, e.Frame().Statement)
}

func TestEngine_NewRejectsNegativeInterval(t *testing.T) {
	e, err := New(Config{InitialText: "x", TypeInterval: -5 * time.Millisecond})
	assert.Nil(t, e)
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestEngine_NewRejectsZeroTimedLoop(t *testing.T) {
	_, err := New(Config{InitialText: "a", CyclingWords: []string{"b"}, Loop: true})
	var cerr *ConfigurationError
	require.ErrorAs(t, err, &cerr)
	assert.Equal(t, "loop", cerr.Field)
}

func TestPlayedThrough(t *testing.T) {
	loop := Config{InitialText: "a", CyclingWords: []string{"b", "c"}, Loop: true}
	once := Config{InitialText: "a", CyclingWords: []string{"b", "c"}}
	skipped := once
	skipped.SkipAnimation = true

	assert.True(t, PlayedThrough(once, Frame{Phase: PhaseComplete, Statement: 2}))
	assert.False(t, PlayedThrough(once, Frame{Phase: PhaseHolding, Statement: 1}))
	assert.True(t, PlayedThrough(loop, Frame{Phase: PhaseHolding, Statement: 2}))
	assert.False(t, PlayedThrough(loop, Frame{Phase: PhaseHolding, Statement: 1}))
	assert.False(t, PlayedThrough(loop, Frame{Phase: PhaseTyping, Statement: 2}))
	assert.False(t, PlayedThrough(skipped, Frame{Phase: PhaseComplete, Statement: 2}))
}

func TestPlayedThrough_LoopingEngineReachesLastHold(t *testing.T) {
	cfg := Config{
		InitialText:    "Intro",
		CyclingWords:   []string{"A B", "C D"},
		TypeInterval:   10 * time.Millisecond,
		DeleteInterval: 10 * time.Millisecond,
		Hold:           10 * time.Millisecond,
		Loop:           true,
	}
	_, c, rec := newTestEngine(t, cfg)
	for i := 0; i < 100; i++ {
		c.Advance(10 * time.Millisecond)
	}

	rec.mu.Lock()
	defer rec.mu.Unlock()
	var hits []string
	for _, f := range rec.frames {
		if PlayedThrough(cfg, f) {
			hits = append(hits, f.Text)
		}
	}
	require.NotEmpty(t, hits)
	assert.Equal(t, "C D", hits[0])
}

func TestEngine_StartDelay(t *testing.T) {
	e, c, _ := newTestEngine(t, Config{
		InitialText:  "go",
		StartDelay:   300 * time.Millisecond,
		TypeInterval: 10 * time.Millisecond,
	})
	c.Advance(299 * time.Millisecond)
	assert.Equal(t, PhaseIdle, e.Phase())
	assert.True(t, e.ShowCursor(), "caret blinks while waiting to start")
	c.Advance(time.Millisecond)
	assert.Equal(t, PhaseTyping, e.Phase())
}

func TestEngine_SingleTimerInFlight(t *testing.T) {
	_, c, _ := newTestEngine(t, Config{
		InitialText:    "one two three",
		CyclingWords:   []string{"four five"},
		TypeInterval:   7 * time.Millisecond,
		DeleteInterval: 3 * time.Millisecond,
		Hold:           11 * time.Millisecond,
		Loop:           true,
	})
	for i := 0; i < 200; i++ {
		assert.LessOrEqual(t, c.Pending(), 1)
		c.Advance(time.Millisecond)
	}
}

func TestEngine_DisposeHaltsNotifications(t *testing.T) {
	phases := []Phase{PhaseIdle, PhaseTyping, PhaseHolding, PhaseDeleting}
	for _, stopAt := range phases {
		t.Run(string(stopAt), func(t *testing.T) {
			e, c, rec := newTestEngine(t, Config{
				InitialText:    "alpha beta",
				CyclingWords:   []string{"gamma delta"},
				StartDelay:     5 * time.Millisecond,
				TypeInterval:   5 * time.Millisecond,
				DeleteInterval: 5 * time.Millisecond,
				Hold:           5 * time.Millisecond,
				Loop:           true,
			})
			for e.Phase() != stopAt {
				c.Advance(time.Millisecond)
			}

			e.Dispose()
			e.Dispose() // idempotent
			assert.True(t, e.Disposed())

			frozen := e.Frame()
			seen := rec.len()
			c.Advance(time.Second)
			assert.Equal(t, seen, rec.len())
			assert.Equal(t, frozen, e.Frame())
			assert.Equal(t, 0, c.Pending())
		})
	}
}

func TestEngine_UnsubscribeFromCallback(t *testing.T) {
	c := clock.Fake(epoch)
	e, err := New(Config{InitialText: "a b c", TypeInterval: time.Millisecond}, WithClock(c))
	require.NoError(t, err)
	defer e.Dispose()

	calls := 0
	var unsubscribe func()
	unsubscribe = e.Subscribe(func(Frame) {
		calls++
		unsubscribe()
	})
	c.Advance(time.Second)
	assert.Equal(t, 1, calls)
}

func TestEngine_RealClockReachesCompletion(t *testing.T) {
	done := make(chan Frame, 16)
	e, err := New(Config{
		InitialText:  "quick run",
		CyclingWords: []string{"done"},
	}, WithSubscriber(func(f Frame) {
		if f.Phase == PhaseComplete {
			done <- f
		}
	}))
	require.NoError(t, err)
	defer e.Dispose()

	select {
	case f := <-done:
		assert.Equal(t, "done", f.Text)
	case <-time.After(2 * time.Second):
		t.Fatal("engine did not complete on the real clock")
	}
}

func TestEngine_ConfigIsCopied(t *testing.T) {
	words := []string{"first"}
	e, _, _ := newTestEngine(t, Config{InitialText: "x", CyclingWords: words, SkipAnimation: true})
	words[0] = "mutated"
	assert.Equal(t, "first", e.Config().CyclingWords[0])
	assert.Equal(t, "first", e.Text())
}

func TestInitialFrame_MatchesNewEngine(t *testing.T) {
	cfg := Config{InitialText: "Hi", CyclingWords: []string{"Bye now"}, TypeInterval: time.Millisecond}
	e, _, _ := newTestEngine(t, cfg)
	assert.Equal(t, e.Frame(), InitialFrame(cfg))

	cfg.SkipAnimation = true
	f := InitialFrame(cfg)
	assert.Equal(t, PhaseComplete, f.Phase)
	assert.Equal(t, "Bye now", f.Text)
	assert.False(t, f.ShowCursor)
}
