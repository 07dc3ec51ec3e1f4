package cmd

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"golang.org/x/term"

	"github.com/kastheco/marquee/config"
	"github.com/kastheco/marquee/internal/logging"
)

// tuiAnnotation marks commands that draw on the terminal, so their logs
// go to the log file instead of stderr.
const tuiAnnotation = "marquee/tui"

// app carries what every subcommand needs once flags are parsed.
type app struct {
	v          *viper.Viper
	configPath string

	settings  *config.Settings
	logger    *slog.Logger
	logCloser io.Closer
}

// NewRootCmd returns the root cobra command with all subcommands registered.
func NewRootCmd() *cobra.Command {
	a := &app{v: viper.New()}

	root := &cobra.Command{
		Use:           "marquee",
		Short:         "marquee - cycling typewriter banners",
		Long:          "Play, export and serve typewriter animations that type, hold, delete and cycle through statements.",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd)
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			if a.logCloser != nil {
				return a.logCloser.Close()
			}
			return nil
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&a.configPath, "config", "", "settings file (default: marquee.toml in the config dir or working directory)")
	flags.String("presets", "", "presets file (.toml, .yaml, .json or .jsonc)")
	flags.String("log-level", "", "log level: debug, info, warn, error")
	flags.String("log-format", "", "log format: text or json")
	flags.String("log-file", "", "append logs to this file")
	flags.Bool("no-color", false, "disable colors")
	a.bind(flags, map[string]string{
		"presets":    "presets",
		"log_level":  "log-level",
		"log_format": "log-format",
		"log_file":   "log-file",
		"no_color":   "no-color",
	})

	root.AddCommand(newPlayCmd(a))
	root.AddCommand(newFramesCmd(a))
	root.AddCommand(newServeCmd(a))
	root.AddCommand(newTailCmd(a))
	root.AddCommand(newInitCmd(a))
	root.AddCommand(newPresetsCmd(a))
	return root
}

// bind ties settings keys to flags so a flag set on the command line
// overrides the settings file and environment.
func (a *app) bind(flags *pflag.FlagSet, keys map[string]string) {
	for key, name := range keys {
		if err := a.v.BindPFlag(key, flags.Lookup(name)); err != nil {
			panic(fmt.Sprintf("bind flag %s: %v", name, err))
		}
	}
}

// setup loads settings and builds the logger. Commands that draw on the
// terminal log to --log-file or nowhere.
func (a *app) setup(cmd *cobra.Command) error {
	s, err := config.LoadSettings(a.v, a.configPath)
	if err != nil {
		return err
	}
	a.settings = s

	out := cmd.ErrOrStderr()
	tui := cmd.Annotations[tuiAnnotation] == "true" && isTerminal(cmd.OutOrStdout())
	if s.LogFile != "" || tui {
		f, err := logging.OpenFile(s.LogFile)
		if err != nil {
			return err
		}
		a.logCloser = f
		out = f
	}

	a.logger, err = logging.New(logging.Options{Level: s.LogLevel, Format: s.LogFormat, Output: out})
	if err != nil {
		return err
	}
	a.logger.Debug("settings loaded",
		"command", cmd.Name(),
		"presets", s.Presets,
		"cache_dir", s.CacheDir)
	return nil
}

// loadPresets reads the configured presets file, or the builtins when
// it does not exist.
func (a *app) loadPresets() (*config.PresetFile, error) {
	f, err := config.LoadPresetsOrBuiltin(a.settings.Presets)
	if err != nil {
		return nil, err
	}
	if f.Path == "" {
		a.logger.Debug("using builtin presets", "missing", a.settings.Presets)
	}
	return f, nil
}

// preset resolves the preset named by args, defaulting to hero.
func (a *app) preset(args []string) (string, config.Animation, *config.PresetFile, error) {
	f, err := a.loadPresets()
	if err != nil {
		return "", config.Animation{}, nil, err
	}
	name := config.DefaultPresetName
	if len(args) > 0 {
		name = args[0]
	}
	anim, err := f.Preset(name)
	if err != nil {
		return "", config.Animation{}, nil, err
	}
	return name, anim, f, nil
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
