package wizard

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/huh"

	"github.com/kastheco/marquee/config"
)

// State holds the answers collected by the init form. Numeric fields
// stay strings while editing so the inputs can be validated as typed.
type State struct {
	Name           string
	InitialText    string
	CyclingWords   string // one statement per line
	TypeIntervalMS string
	HoldMS         string
	Loop           bool
}

// DefaultState pre-fills the form from the builtin hero preset.
func DefaultState() State {
	hero, _ := config.Builtin().Preset(config.DefaultPresetName)
	return State{
		Name:           config.DefaultPresetName,
		InitialText:    hero.InitialText,
		CyclingWords:   strings.Join(hero.CyclingWords, "\n"),
		TypeIntervalMS: strconv.Itoa(config.DefaultTypeIntervalMS),
		HoldMS:         strconv.Itoa(config.DefaultHoldMS),
		Loop:           hero.Loop,
	}
}

// PresetFile converts the answers into a single-preset file.
func (s State) PresetFile() (*config.PresetFile, error) {
	if err := validateName(s.Name); err != nil {
		return nil, err
	}
	typeMS, err := parseMS(s.TypeIntervalMS)
	if err != nil {
		return nil, fmt.Errorf("type interval: %w", err)
	}
	holdMS, err := parseMS(s.HoldMS)
	if err != nil {
		return nil, fmt.Errorf("hold: %w", err)
	}

	var words []string
	for _, line := range strings.Split(s.CyclingWords, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			words = append(words, line)
		}
	}

	f := &config.PresetFile{Presets: map[string]config.Animation{
		s.Name: {
			InitialText:    strings.TrimSpace(s.InitialText),
			CyclingWords:   words,
			TypeIntervalMS: &typeMS,
			HoldMS:         &holdMS,
			Loop:           s.Loop,
		},
	}}
	if err := f.Validate(); err != nil {
		return nil, err
	}
	return f, nil
}

// Run shows the init form and fills state with the answers.
func Run(state *State) error {
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Preset name").
				Value(&state.Name).
				Validate(validateName),
			huh.NewInput().
				Title("Initial text").
				Description("Shown first, typed word by word").
				Value(&state.InitialText).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return fmt.Errorf("initial text must not be empty")
					}
					return nil
				}),
			huh.NewText().
				Title("Cycling statements").
				Description("One per line; leave empty for a single statement").
				Value(&state.CyclingWords),
		),
		huh.NewGroup(
			huh.NewInput().
				Title("Type interval (ms)").
				Value(&state.TypeIntervalMS).
				Validate(validateMS),
			huh.NewInput().
				Title("Hold (ms)").
				Value(&state.HoldMS).
				Validate(validateMS),
			huh.NewConfirm().
				Title("Loop forever").
				Value(&state.Loop),
		),
	)
	return form.Run()
}

// validateName ensures a preset name is usable as a TOML key and URL path segment.
// Rejects empty strings and any character outside [a-zA-Z0-9_-].
func validateName(name string) error {
	if name == "" {
		return fmt.Errorf("preset name must not be empty")
	}
	for _, c := range name {
		if !((c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') ||
			(c >= '0' && c <= '9') || c == '_' || c == '-') {
			return fmt.Errorf("invalid preset name %q: must contain only letters, digits, hyphens, or underscores", name)
		}
	}
	return nil
}

func validateMS(s string) error {
	_, err := parseMS(s)
	return err
}

func parseMS(s string) (int, error) {
	v, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, fmt.Errorf("must be a whole number of milliseconds")
	}
	if v < 0 {
		return 0, fmt.Errorf("must not be negative")
	}
	return v, nil
}
