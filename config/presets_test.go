package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kastheco/marquee/typewriter"
)

const tomlPresets = `
[presets.hero]
initial_text = "Hello   world"
cycling_words = ["Fast sites", "Happy  teams"]
type_interval_ms = 50
hold_ms = 0
loop = true

[presets.plain]
initial_text = "Just text"
`

const yamlPresets = `
presets:
  hero:
    initial_text: Hello world
    cycling_words:
      - Fast sites
      - Happy teams
    type_interval_ms: 50
    hold_ms: 0
    loop: true
`

const jsoncPresets = `{
  // comments are allowed
  "presets": {
    "hero": {
      "initial_text": "Hello world",
      "cycling_words": ["Fast sites", "Happy teams"],
      "type_interval_ms": 50,
      "hold_ms": 0,
      "loop": true, /* trailing comma below */
    },
  },
}`

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadPresets_Formats(t *testing.T) {
	cases := map[string]string{
		"presets.toml":  tomlPresets,
		"presets.yaml":  yamlPresets,
		"presets.jsonc": jsoncPresets,
	}
	for name, content := range cases {
		t.Run(name, func(t *testing.T) {
			path := writeFile(t, name, content)
			f, err := LoadPresets(path)
			require.NoError(t, err)
			assert.Equal(t, path, f.Path)

			hero, err := f.Preset("hero")
			require.NoError(t, err)
			cfg := hero.EngineConfig()
			assert.Equal(t, "Hello world", cfg.InitialText)
			assert.Equal(t, []string{"Fast sites", "Happy teams"}, cfg.CyclingWords)
			assert.Equal(t, 50*time.Millisecond, cfg.TypeInterval)
			assert.Equal(t, time.Duration(0), cfg.Hold, "explicit zero is kept")
			assert.Equal(t, DefaultDeleteIntervalMS*time.Millisecond, cfg.DeleteInterval)
			assert.Equal(t, DefaultStartDelayMS*time.Millisecond, cfg.StartDelay)
			assert.True(t, cfg.Loop)
		})
	}
}

func TestLoadPresets_SameAnimationSameFingerprint(t *testing.T) {
	a, err := LoadPresets(writeFile(t, "a.toml", tomlPresets))
	require.NoError(t, err)
	b, err := LoadPresets(writeFile(t, "b.yaml", yamlPresets))
	require.NoError(t, err)

	assert.Equal(t, a.Presets["hero"].Fingerprint(), b.Presets["hero"].Fingerprint())
	assert.NotEqual(t, a.Presets["hero"].Fingerprint(), a.Presets["plain"].Fingerprint())
}

func TestLoadPresets_RejectsUnknownKeys(t *testing.T) {
	path := writeFile(t, "bad.toml", "[presets.hero]\ninitial_text = \"x\"\nspeed = 3\n")
	_, err := LoadPresets(path)
	assert.Error(t, err)

	path = writeFile(t, "bad.yaml", "presets:\n  hero:\n    initial_text: x\n    speed: 3\n")
	_, err = LoadPresets(path)
	assert.Error(t, err)
}

func TestLoadPresets_RejectsInvalidAnimation(t *testing.T) {
	path := writeFile(t, "neg.toml", "[presets.hero]\ninitial_text = \"x\"\ntype_interval_ms = -5\n")
	_, err := LoadPresets(path)
	assert.ErrorIs(t, err, typewriter.ErrInvalidConfig)
	assert.ErrorContains(t, err, `preset "hero"`)
}

func TestLoadPresets_RejectsOverflowingTiming(t *testing.T) {
	path := writeFile(t, "huge.toml", "[presets.hero]\ninitial_text = \"x\"\nhold_ms = 9223372036854775807\n")
	_, err := LoadPresets(path)
	assert.ErrorIs(t, err, typewriter.ErrInvalidConfig)
	var cerr *typewriter.ConfigurationError
	require.ErrorAs(t, err, &cerr)
	assert.Equal(t, "hold_ms", cerr.Field)

	// Would wrap to a positive duration without the range check.
	path = writeFile(t, "huge-neg.toml", "[presets.hero]\ninitial_text = \"x\"\ntype_interval_ms = -9223372036854775807\n")
	_, err = LoadPresets(path)
	require.ErrorAs(t, err, &cerr)
	assert.Equal(t, "type_interval_ms", cerr.Field)
}

func TestPresetFile_ValidateAcceptsLargestTiming(t *testing.T) {
	largest := int(maxMS)
	f := &PresetFile{Presets: map[string]Animation{
		"slow": {InitialText: "x", HoldMS: &largest},
	}}
	assert.NoError(t, f.Validate())
}

func TestLoadPresets_RejectsEmptyFile(t *testing.T) {
	_, err := LoadPresets(writeFile(t, "empty.toml", ""))
	assert.ErrorContains(t, err, "no presets")
}

func TestLoadPresets_UnsupportedExtension(t *testing.T) {
	_, err := LoadPresets(writeFile(t, "presets.ini", "x"))
	assert.ErrorContains(t, err, "unsupported")
}

func TestLoadPresetsOrBuiltin(t *testing.T) {
	f, err := LoadPresetsOrBuiltin("")
	require.NoError(t, err)
	assert.Contains(t, f.Names(), DefaultPresetName)

	f, err = LoadPresetsOrBuiltin(filepath.Join(t.TempDir(), "missing.toml"))
	require.NoError(t, err)
	assert.Empty(t, f.Path)
}

func TestPreset_NotFound(t *testing.T) {
	_, err := Builtin().Preset("nope")
	assert.ErrorIs(t, err, ErrPresetNotFound)
	assert.ErrorContains(t, err, "hero")
}

func TestBuiltin_Valid(t *testing.T) {
	require.NoError(t, Builtin().Validate())
	assert.Equal(t, []string{"hero", "tagline"}, Builtin().Names())
}

func TestEncodePresets_RoundTrip(t *testing.T) {
	for _, format := range []string{"toml", "yaml", "json"} {
		t.Run(format, func(t *testing.T) {
			data, err := EncodePresets(Builtin(), format)
			require.NoError(t, err)

			f, err := ParsePresets(data, format)
			require.NoError(t, err)
			assert.Equal(t, Builtin().Presets["hero"].Fingerprint(), f.Presets["hero"].Fingerprint())
		})
	}
}
