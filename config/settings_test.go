package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadSettings_Defaults(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	s, err := LoadSettings(viper.New(), "")
	require.NoError(t, err)
	assert.Equal(t, "info", s.LogLevel)
	assert.Equal(t, "text", s.LogFormat)
	assert.Equal(t, "127.0.0.1:7434", s.Server.Addr())
	assert.Equal(t, "presets.toml", filepath.Base(s.Presets))
}

func TestLoadSettings_FileAndEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "marquee.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
log_level = "debug"
presets = "site/presets.yaml"

[server]
port = 9000
`), 0o644))
	t.Setenv("MARQUEE_SERVER_BIND", "0.0.0.0")

	s, err := LoadSettings(viper.New(), path)
	require.NoError(t, err)
	assert.Equal(t, "debug", s.LogLevel)
	assert.Equal(t, "site/presets.yaml", s.Presets)
	assert.Equal(t, "0.0.0.0:9000", s.Server.Addr())
}

func TestLoadSettings_ExplicitPathMustExist(t *testing.T) {
	_, err := LoadSettings(viper.New(), filepath.Join(t.TempDir(), "missing.toml"))
	assert.Error(t, err)
}

func TestLoadSettings_RejectsBadPort(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("MARQUEE_SERVER_PORT", "70000")

	_, err := LoadSettings(viper.New(), "")
	assert.ErrorContains(t, err, "server.port")
}
