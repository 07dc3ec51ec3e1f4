package typewriter

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"golang.org/x/text/unicode/norm"
)

// ErrInvalidConfig is wrapped by every ConfigurationError.
var ErrInvalidConfig = errors.New("invalid animation config")

// ConfigurationError reports a Config that New refuses to run: a
// negative interval, a statement with no words, or a looping cycle
// whose type, delete and hold intervals are all zero (it would never
// yield between ticks).
type ConfigurationError struct {
	Field  string
	Reason string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("typewriter: %s: %s", e.Field, e.Reason)
}

func (e *ConfigurationError) Unwrap() error { return ErrInvalidConfig }

// Config describes one animation. It is read once by New.
//
// Statements are split into words on whitespace, so "a  b" and "a b"
// animate identically. Use Normalize when text comes from user input.
type Config struct {
	InitialText  string
	CyclingWords []string

	TypeInterval   time.Duration
	DeleteInterval time.Duration
	StartDelay     time.Duration
	Hold           time.Duration

	Loop          bool
	SkipAnimation bool
}

// Validate checks the config against the rules New enforces.
func (c Config) Validate() error {
	intervals := []struct {
		field string
		d     time.Duration
	}{
		{"type_interval", c.TypeInterval},
		{"delete_interval", c.DeleteInterval},
		{"start_delay", c.StartDelay},
		{"hold", c.Hold},
	}
	for _, iv := range intervals {
		if iv.d < 0 {
			return &ConfigurationError{Field: iv.field, Reason: fmt.Sprintf("must be >= 0, got %s", iv.d)}
		}
	}

	if len(words(c.InitialText)) == 0 {
		return &ConfigurationError{Field: "initial_text", Reason: "statement is empty"}
	}
	for i, s := range c.CyclingWords {
		if len(words(s)) == 0 {
			return &ConfigurationError{Field: fmt.Sprintf("cycling_words[%d]", i), Reason: "statement is empty"}
		}
	}

	// A looping cycle with no time between steps never yields.
	if c.Loop && len(c.CyclingWords) > 0 && !c.SkipAnimation &&
		c.TypeInterval == 0 && c.DeleteInterval == 0 && c.Hold == 0 {
		return &ConfigurationError{Field: "loop", Reason: "looping requires a non-zero type, delete or hold interval"}
	}
	return nil
}

// RestingText is the text shown once the animation has nothing left to
// do: the last cycling statement, or the initial text when there is none.
func (c Config) RestingText() string {
	if n := len(c.CyclingWords); n > 0 {
		return strings.Join(words(c.CyclingWords[n-1]), " ")
	}
	return strings.Join(words(c.InitialText), " ")
}

// statements returns the word lists in engine index order: the initial
// text at 0, then the cycling words.
func (c Config) statements() [][]string {
	out := make([][]string, 0, len(c.CyclingWords)+1)
	out = append(out, words(c.InitialText))
	for _, s := range c.CyclingWords {
		out = append(out, words(s))
	}
	return out
}

// Normalize returns s in Unicode NFC form with runs of whitespace
// collapsed to single spaces and the ends trimmed.
func Normalize(s string) string {
	return strings.Join(strings.Fields(norm.NFC.String(s)), " ")
}

func words(s string) []string {
	return strings.Fields(s)
}
