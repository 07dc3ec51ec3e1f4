package config

import (
	"bytes"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
	"github.com/tidwall/jsonc"
	"github.com/zeebo/blake3"
	"gopkg.in/yaml.v3"

	"github.com/kastheco/marquee/typewriter"
)

// Timing defaults applied when a preset leaves a field out.
const (
	DefaultTypeIntervalMS   = 120
	DefaultDeleteIntervalMS = 60
	DefaultStartDelayMS     = 400
	DefaultHoldMS           = 1800
)

// DefaultPresetName is used when no preset is named on the command line.
const DefaultPresetName = "hero"

// ErrPresetNotFound is returned by PresetFile.Preset for unknown names.
var ErrPresetNotFound = errors.New("preset not found")

// Animation is one preset as written in a presets file. Timing fields
// are milliseconds; nil means "use the default".
type Animation struct {
	InitialText      string   `toml:"initial_text" yaml:"initial_text" json:"initial_text"`
	CyclingWords     []string `toml:"cycling_words,omitempty" yaml:"cycling_words,omitempty" json:"cycling_words,omitempty"`
	TypeIntervalMS   *int     `toml:"type_interval_ms,omitempty" yaml:"type_interval_ms,omitempty" json:"type_interval_ms,omitempty"`
	DeleteIntervalMS *int     `toml:"delete_interval_ms,omitempty" yaml:"delete_interval_ms,omitempty" json:"delete_interval_ms,omitempty"`
	StartDelayMS     *int     `toml:"start_delay_ms,omitempty" yaml:"start_delay_ms,omitempty" json:"start_delay_ms,omitempty"`
	HoldMS           *int     `toml:"hold_ms,omitempty" yaml:"hold_ms,omitempty" json:"hold_ms,omitempty"`
	Loop             bool     `toml:"loop" yaml:"loop" json:"loop"`
	SkipAnimation    bool     `toml:"skip_animation" yaml:"skip_animation" json:"skip_animation"`
}

// PresetFile is the top-level layout of a presets file.
type PresetFile struct {
	Presets map[string]Animation `toml:"presets" yaml:"presets" json:"presets"`

	// Path is where the file was loaded from; empty for builtins.
	Path string `toml:"-" yaml:"-" json:"-"`
}

// maxMS is the largest millisecond value a time.Duration can hold.
const maxMS = math.MaxInt64 / int64(time.Millisecond)

func ms(v *int, def int) time.Duration {
	if v == nil {
		return time.Duration(def) * time.Millisecond
	}
	return time.Duration(*v) * time.Millisecond
}

// EngineConfig converts the preset into an engine config. Statement
// text is normalized; validation is left to typewriter.New.
func (a Animation) EngineConfig() typewriter.Config {
	cfg := typewriter.Config{
		InitialText:    typewriter.Normalize(a.InitialText),
		TypeInterval:   ms(a.TypeIntervalMS, DefaultTypeIntervalMS),
		DeleteInterval: ms(a.DeleteIntervalMS, DefaultDeleteIntervalMS),
		StartDelay:     ms(a.StartDelayMS, DefaultStartDelayMS),
		Hold:           ms(a.HoldMS, DefaultHoldMS),
		Loop:           a.Loop,
		SkipAnimation:  a.SkipAnimation,
	}
	for _, w := range a.CyclingWords {
		cfg.CyclingWords = append(cfg.CyclingWords, typewriter.Normalize(w))
	}
	return cfg
}

// Fingerprint identifies the animation a preset produces. Two presets
// that differ only in formatting or omitted defaults share a fingerprint.
func (a Animation) Fingerprint() string {
	cfg := a.EngineConfig()
	canonical := struct {
		Initial string   `json:"i"`
		Cycling []string `json:"c"`
		Type    int64    `json:"t"`
		Delete  int64    `json:"d"`
		Start   int64    `json:"s"`
		Hold    int64    `json:"h"`
		Loop    bool     `json:"l"`
	}{
		cfg.InitialText, cfg.CyclingWords,
		cfg.TypeInterval.Milliseconds(), cfg.DeleteInterval.Milliseconds(),
		cfg.StartDelay.Milliseconds(), cfg.Hold.Milliseconds(), cfg.Loop,
	}
	data, _ := json.Marshal(canonical)
	sum := blake3.Sum256(data)
	return hex.EncodeToString(sum[:16])
}

// Names returns the preset names, sorted.
func (f *PresetFile) Names() []string {
	names := make([]string, 0, len(f.Presets))
	for name := range f.Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Preset looks up a preset by name.
func (f *PresetFile) Preset(name string) (Animation, error) {
	a, ok := f.Presets[name]
	if !ok {
		return Animation{}, fmt.Errorf("%w: %q (have %s)", ErrPresetNotFound, name, strings.Join(f.Names(), ", "))
	}
	return a, nil
}

// checkRange rejects timings whose magnitude overflows a time.Duration.
func (a Animation) checkRange() error {
	fields := []struct {
		name string
		v    *int
	}{
		{"type_interval_ms", a.TypeIntervalMS},
		{"delete_interval_ms", a.DeleteIntervalMS},
		{"start_delay_ms", a.StartDelayMS},
		{"hold_ms", a.HoldMS},
	}
	for _, f := range fields {
		if f.v != nil && (int64(*f.v) > maxMS || int64(*f.v) < -maxMS) {
			return &typewriter.ConfigurationError{Field: f.name, Reason: fmt.Sprintf("out of range, got %d", *f.v)}
		}
	}
	return nil
}

// Validate checks every preset against the engine rules.
func (f *PresetFile) Validate() error {
	if len(f.Presets) == 0 {
		return fmt.Errorf("no presets defined")
	}
	for _, name := range f.Names() {
		if err := f.Presets[name].checkRange(); err != nil {
			return fmt.Errorf("preset %q: %w", name, err)
		}
		if err := f.Presets[name].EngineConfig().Validate(); err != nil {
			return fmt.Errorf("preset %q: %w", name, err)
		}
	}
	return nil
}

// LoadPresets reads a presets file. The format follows the extension:
// .toml, .yaml/.yml, .json or .jsonc.
func LoadPresets(path string) (*PresetFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read presets: %w", err)
	}
	f, err := ParsePresets(data, FormatOf(path))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	f.Path = path
	return f, nil
}

// LoadPresetsOrBuiltin loads path, or returns the builtin presets when
// path is empty or the file does not exist.
func LoadPresetsOrBuiltin(path string) (*PresetFile, error) {
	if path == "" {
		return Builtin(), nil
	}
	f, err := LoadPresets(path)
	if errors.Is(err, os.ErrNotExist) {
		return Builtin(), nil
	}
	return f, err
}

// ParsePresets decodes and validates presets in the given format.
// Unknown keys are rejected in every format.
func ParsePresets(data []byte, format string) (*PresetFile, error) {
	var f PresetFile
	switch format {
	case "toml":
		if err := toml.NewDecoder(bytes.NewReader(data)).DisallowUnknownFields().Decode(&f); err != nil {
			return nil, fmt.Errorf("parse toml: %w", err)
		}
	case "yaml":
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&f); err != nil {
			return nil, fmt.Errorf("parse yaml: %w", err)
		}
	case "json":
		dec := json.NewDecoder(bytes.NewReader(jsonc.ToJSON(data)))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&f); err != nil {
			return nil, fmt.Errorf("parse json: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported presets format %q", format)
	}

	if err := f.Validate(); err != nil {
		return nil, err
	}
	return &f, nil
}

// EncodePresets writes f in the given format.
func EncodePresets(f *PresetFile, format string) ([]byte, error) {
	switch format {
	case "toml":
		return toml.Marshal(f)
	case "yaml":
		return yaml.Marshal(f)
	case "json":
		return json.MarshalIndent(f, "", "  ")
	}
	return nil, fmt.Errorf("unsupported presets format %q", format)
}

// FormatOf maps a presets file extension to a ParsePresets format name.
func FormatOf(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return "yaml"
	case ".json", ".jsonc":
		return "json"
	case ".toml":
		return "toml"
	}
	return strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
}

func intPtr(v int) *int { return &v }

// Builtin returns the presets shipped with the binary. "hero" is the
// landing-page banner; "tagline" is a single statement with no cycle.
func Builtin() *PresetFile {
	return &PresetFile{Presets: map[string]Animation{
		"hero": {
			InitialText: "We build websites that work",
			CyclingWords: []string{
				"We design pages people remember",
				"We ship fast and measure everything",
				"We turn visitors into customers",
			},
			TypeIntervalMS:   intPtr(DefaultTypeIntervalMS),
			DeleteIntervalMS: intPtr(DefaultDeleteIntervalMS),
			StartDelayMS:     intPtr(DefaultStartDelayMS),
			HoldMS:           intPtr(DefaultHoldMS),
			Loop:             true,
		},
		"tagline": {
			InitialText:    "Marketing sites without the busywork",
			TypeIntervalMS: intPtr(90),
			HoldMS:         intPtr(1200),
		},
	}}
}
