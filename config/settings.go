package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

const (
	settingsName = "marquee"
	envPrefix    = "MARQUEE"
)

// Settings are the process-wide knobs: logging, where presets live,
// where the seen cache is kept, and how the server listens.
type Settings struct {
	LogLevel  string         `mapstructure:"log_level"`
	LogFormat string         `mapstructure:"log_format"`
	LogFile   string         `mapstructure:"log_file"`
	Presets   string         `mapstructure:"presets"`
	CacheDir  string         `mapstructure:"cache_dir"`
	NoColor   bool           `mapstructure:"no_color"`
	Server    ServerSettings `mapstructure:"server"`
}

// ServerSettings configures `marquee serve`.
type ServerSettings struct {
	Bind string `mapstructure:"bind"`
	Port int    `mapstructure:"port"`
}

// Addr returns the listen address.
func (s ServerSettings) Addr() string {
	return fmt.Sprintf("%s:%d", s.Bind, s.Port)
}

// ConfigDir returns $XDG_CONFIG_HOME/marquee (or the platform equivalent).
func ConfigDir() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return filepath.Join(".", ".marquee")
	}
	return filepath.Join(dir, "marquee")
}

// CacheDir returns the default seen-cache directory.
func CacheDir() string {
	dir, err := os.UserCacheDir()
	if err != nil {
		return filepath.Join(".", ".marquee", "cache")
	}
	return filepath.Join(dir, "marquee")
}

// SetDefaults registers the defaults on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "text")
	v.SetDefault("log_file", "")
	v.SetDefault("presets", filepath.Join(ConfigDir(), "presets.toml"))
	v.SetDefault("cache_dir", CacheDir())
	v.SetDefault("no_color", false)
	v.SetDefault("server.bind", "127.0.0.1")
	v.SetDefault("server.port", 7434)
}

// LoadSettings resolves settings from, lowest first: defaults, the
// settings file, MARQUEE_* environment variables, and any flags already
// bound on v. An explicit path must exist; otherwise marquee.toml is
// looked up in the config dir and the working directory and may be absent.
func LoadSettings(v *viper.Viper, path string) (*Settings, error) {
	SetDefaults(v)
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName(settingsName)
		v.SetConfigType("toml")
		v.AddConfigPath(ConfigDir())
		v.AddConfigPath(".")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read settings: %w", err)
		}
	}

	var s Settings
	if err := v.Unmarshal(&s); err != nil {
		return nil, fmt.Errorf("decode settings: %w", err)
	}
	if s.Server.Port <= 0 || s.Server.Port > 65535 {
		return nil, fmt.Errorf("server.port out of range: %d", s.Server.Port)
	}
	return &s, nil
}
