package ui

import (
	"log/slog"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"github.com/kastheco/marquee/clock"
	"github.com/kastheco/marquee/config"
	"github.com/kastheco/marquee/typewriter"
	"github.com/kastheco/marquee/ui/overlay"
)

// frameBuffer bounds the frames queued between the engine and the
// program. When the program falls behind, the oldest frame is dropped.
const frameBuffer = 32

// Options configures a player Model.
type Options struct {
	Name    string // preset name, shown under the banner
	Config  typewriter.Config
	Clock   clock.Clock
	Logger  *slog.Logger
	NoColor bool

	// Presets, when set, can be browsed with the pick key.
	Presets *config.PresetFile

	// OnComplete is called once per engine when a (not skipped)
	// animation has shown every statement: it reached Complete, or a
	// looping cycle is holding its last statement for the first time.
	OnComplete func(name string)
}

// frameMsg carries one engine frame. gen identifies the engine that
// produced it so frames from a disposed engine are ignored.
type frameMsg struct {
	gen   int
	frame typewriter.Frame
}

type springTickMsg struct{}

// ReloadMsg carries a freshly loaded presets file, for example after it
// changed on disk. The model restarts with its current preset's new config.
type ReloadMsg struct {
	Presets *config.PresetFile
	Err     error
}

// Model is a bubbletea model that plays one typewriter animation.
type Model struct {
	opts   Options
	logger *slog.Logger
	theme  Theme
	keys   KeyMap
	help   help.Model

	engine   *typewriter.Engine
	frames   chan frameMsg
	gen      int
	frame    typewriter.Frame
	total    int // word count of the statement being shown
	fallback bool
	notified bool

	picker        *overlay.Picker
	caret         cursor.Model
	spring        *RuleSpring
	springRunning bool

	width, height int
	quitting      bool
}

// New creates a model and starts its engine. A config the engine
// rejects is logged and the model shows the initial text without
// animation instead.
func New(opts Options) *Model {
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.DiscardHandler)
	}
	if opts.Clock == nil {
		opts.Clock = clock.Real()
	}

	caret := cursor.New()
	caret.SetChar(" ")

	m := &Model{
		opts:   opts,
		logger: opts.Logger.With("preset", opts.Name),
		theme:  NewTheme(opts.NoColor),
		keys:   DefaultKeyMap(),
		help:   help.New(),
		frames: make(chan frameMsg, frameBuffer),
		caret:  caret,
		spring: NewRuleSpring(),
	}
	m.caret.Style = m.theme.Caret
	m.start(opts.Config)
	m.spring.Snap()
	return m
}

// start disposes any running engine and creates a new one for cfg.
func (m *Model) start(cfg typewriter.Config) {
	m.stop()
	m.opts.Config = cfg
	m.gen++
	m.notified = false
	gen := m.gen
	frames := m.frames

	engine, err := typewriter.New(cfg,
		typewriter.WithClock(m.opts.Clock),
		typewriter.WithLogger(m.logger),
		typewriter.WithSubscriber(func(f typewriter.Frame) {
			push(frames, frameMsg{gen: gen, frame: f})
		}),
	)
	if err != nil {
		m.logger.Warn("animation disabled", "err", err)
		m.fallback = true
		m.frame = typewriter.Frame{Text: typewriter.Normalize(cfg.InitialText), Phase: typewriter.PhaseComplete}
		m.total = len(strings.Fields(m.frame.Text))
		m.spring.SetTarget(ansi.StringWidth(m.frame.Text))
		return
	}
	m.fallback = false
	m.engine = engine
	m.apply(engine.Frame())
}

// push queues msg, discarding the oldest queued frame when full.
// It never blocks the engine's tick.
func push(ch chan frameMsg, msg frameMsg) {
	for {
		select {
		case ch <- msg:
			return
		default:
		}
		select {
		case <-ch:
		default:
		}
	}
}

func (m *Model) stop() {
	if m.engine != nil {
		m.engine.Dispose()
		m.engine = nil
	}
}

// Close disposes the running engine. Safe to call more than once.
func (m *Model) Close() {
	m.stop()
}

// Frame returns the frame currently drawn.
func (m *Model) Frame() typewriter.Frame {
	return m.frame
}

// Fallback reports whether the model is showing static text because the
// config was rejected.
func (m *Model) Fallback() bool {
	return m.fallback
}

func (m *Model) apply(f typewriter.Frame) {
	m.frame = f
	cfg := m.opts.Config
	switch {
	case f.Statement == 0:
		m.total = len(strings.Fields(cfg.InitialText))
	case f.Statement <= len(cfg.CyclingWords):
		m.total = len(strings.Fields(cfg.CyclingWords[f.Statement-1]))
	}
	m.spring.SetTarget(ansi.StringWidth(f.Text))
}

func (m *Model) listen() tea.Cmd {
	frames := m.frames
	return func() tea.Msg {
		return <-frames
	}
}

func springTick() tea.Cmd {
	return tea.Tick(springInterval, func(time.Time) tea.Msg { return springTickMsg{} })
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	cmds := []tea.Cmd{m.listen()}
	if m.frame.ShowCursor {
		cmds = append(cmds, m.caret.Focus())
	}
	return tea.Batch(cmds...)
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		return m, nil

	case tea.KeyMsg:
		if m.picker != nil {
			return m, m.handlePicker(msg)
		}
		switch {
		case key.Matches(msg, m.keys.Quit):
			m.quitting = true
			m.stop()
			return m, tea.Quit
		case key.Matches(msg, m.keys.Skip):
			cfg := m.opts.Config
			cfg.SkipAnimation = true
			m.start(cfg)
			m.caret.Blur()
			return m, m.springCmd()
		case key.Matches(msg, m.keys.Restart):
			cfg := m.opts.Config
			cfg.SkipAnimation = false
			m.start(cfg)
			return m, tea.Batch(m.caret.Focus(), m.springCmd())
		case key.Matches(msg, m.keys.Pick):
			if m.opts.Presets != nil {
				m.picker = overlay.NewPicker("presets", m.opts.Presets.Names(), m.opts.Name)
			}
		}
		return m, nil

	case frameMsg:
		cmds := []tea.Cmd{m.listen()}
		if msg.gen != m.gen {
			return m, tea.Batch(cmds...)
		}
		wasShowing := m.frame.ShowCursor
		m.apply(msg.frame)
		switch {
		case msg.frame.ShowCursor && !wasShowing:
			cmds = append(cmds, m.caret.Focus())
		case !msg.frame.ShowCursor && wasShowing:
			m.caret.Blur()
		}
		if typewriter.PlayedThrough(m.opts.Config, msg.frame) && !m.notified {
			m.notified = true
			m.logger.Info("animation played through", "phase", msg.frame.Phase, "text", msg.frame.Text)
			if m.opts.OnComplete != nil {
				m.opts.OnComplete(m.opts.Name)
			}
		}
		cmds = append(cmds, m.springCmd())
		return m, tea.Batch(cmds...)

	case springTickMsg:
		if m.spring.Tick() {
			return m, springTick()
		}
		m.springRunning = false
		return m, nil

	case ReloadMsg:
		if msg.Err != nil {
			m.logger.Warn("reload failed, keeping current animation", "err", msg.Err)
			return m, nil
		}
		if msg.Presets == nil {
			return m, nil
		}
		a, err := msg.Presets.Preset(m.opts.Name)
		if err != nil {
			m.logger.Warn("reloaded presets lack current preset, keeping animation", "err", err)
			return m, nil
		}
		m.logger.Info("presets reloaded")
		m.opts.Presets = msg.Presets
		m.start(a.EngineConfig())
		return m, tea.Batch(m.caret.Focus(), m.springCmd())
	}

	var cmd tea.Cmd
	m.caret, cmd = m.caret.Update(msg)
	return m, cmd
}

// handlePicker routes a key to the open picker and switches preset
// when one is chosen.
func (m *Model) handlePicker(msg tea.KeyMsg) tea.Cmd {
	if !m.picker.HandleKeyPress(msg) {
		return nil
	}
	name := m.picker.Value()
	m.picker = nil
	if name == "" {
		return nil
	}
	a, err := m.opts.Presets.Preset(name)
	if err != nil {
		m.logger.Warn("pick preset", "err", err)
		return nil
	}
	m.logger.Info("preset picked", "preset", name)
	m.opts.Name = name
	m.logger = m.opts.Logger.With("preset", name)
	m.start(a.EngineConfig())
	return tea.Batch(m.caret.Focus(), m.springCmd())
}

// springCmd starts the spring tick loop unless it is already running
// or the rule is at rest.
func (m *Model) springCmd() tea.Cmd {
	if m.springRunning || m.spring.Settled() {
		return nil
	}
	m.springRunning = true
	return springTick()
}

// View implements tea.Model.
func (m *Model) View() string {
	if m.quitting {
		return ""
	}

	text := m.theme.Paint(m.frame.Text, m.total)
	if m.frame.ShowCursor {
		text += m.caret.View()
	}
	rule := m.theme.Rule.Render(strings.Repeat("━", m.spring.Width()))
	banner := m.theme.Banner.Render(lipgloss.JoinVertical(lipgloss.Left, text, rule))

	parts := []string{banner}
	if m.opts.Name != "" {
		parts = append(parts, m.theme.Name.Render(m.opts.Name))
	}
	parts = append(parts, m.theme.Help.Render(m.help.ShortHelpView(m.keys.ShortHelp())))
	body := lipgloss.JoinVertical(lipgloss.Center, parts...)
	if m.picker != nil {
		body = m.picker.Render()
	}

	if m.width > 0 && m.height > 0 {
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, body)
	}
	return body
}
