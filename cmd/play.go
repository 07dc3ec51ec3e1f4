package cmd

import (
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/kastheco/marquee/config"
	"github.com/kastheco/marquee/timeline"
	"github.com/kastheco/marquee/typewriter"
	"github.com/kastheco/marquee/ui"
)

// defaultUntil caps headless runs of looping presets.
const defaultUntil = 30 * time.Second

// newPlayCmd returns the `marquee play` cobra command.
func newPlayCmd(a *app) *cobra.Command {
	var (
		once  bool
		reset bool
		watch bool
		skip  bool
	)

	cmd := &cobra.Command{
		Use:         "play [preset]",
		Short:       "play a preset in the terminal",
		Long:        "Play a preset full screen. When stdout is not a terminal the frames are printed as a text timeline instead.",
		Args:        cobra.MaximumNArgs(1),
		Annotations: map[string]string{tuiAnnotation: "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			name, anim, file, err := a.preset(args)
			if err != nil {
				return err
			}
			cfg := anim.EngineConfig()
			cfg.SkipAnimation = cfg.SkipAnimation || skip

			var cache *config.SeenCache
			if once || reset {
				cache = config.NewSeenCache(a.settings.CacheDir)
				if err := cache.Load(); err != nil {
					a.logger.Warn("seen cache unreadable, starting fresh", "err", err)
				}
				if reset {
					cache.Forget(anim.Fingerprint())
					if err := cache.Save(); err != nil {
						return fmt.Errorf("reset seen cache: %w", err)
					}
				}
				if cache.Seen(anim.Fingerprint()) {
					a.logger.Info("preset already played, showing resting text", "preset", name)
					cfg.SkipAnimation = true
				}
			}
			markSeen := func(fingerprint string) {
				if cache == nil {
					return
				}
				cache.MarkSeen(fingerprint, time.Now())
				if err := cache.Save(); err != nil {
					a.logger.Warn("save seen cache", "err", err)
				}
			}

			if !isTerminal(cmd.OutOrStdout()) {
				tl, err := timeline.Record(cfg, defaultUntil, a.logger.With("preset", name))
				if err != nil {
					return err
				}
				for _, e := range tl.Frames {
					if typewriter.PlayedThrough(cfg, typewriter.Frame{Phase: e.Phase, Statement: e.Statement}) {
						markSeen(anim.Fingerprint())
						break
					}
				}
				return tl.Write(cmd.OutOrStdout(), "text")
			}

			opts := ui.Options{
				Name:    name,
				Config:  cfg,
				Logger:  a.logger,
				NoColor: a.settings.NoColor,
				Presets: file,
			}
			if cache != nil {
				opts.OnComplete = func(played string) {
					if anim, err := file.Preset(played); err == nil {
						markSeen(anim.Fingerprint())
					}
				}
			}

			m := ui.New(opts)
			defer m.Close()
			p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithOutput(cmd.OutOrStdout()))

			if watch {
				if file.Path == "" {
					return fmt.Errorf("--watch needs a presets file; %s does not exist", a.settings.Presets)
				}
				w, err := ui.WatchPresets(file.Path, p.Send, a.logger)
				if err != nil {
					return err
				}
				defer w.Close()
			}

			_, err = p.Run()
			return err
		},
	}

	cmd.Flags().BoolVar(&once, "once", false, "show the resting text if this animation already played")
	cmd.Flags().BoolVar(&reset, "reset", false, "forget that this animation played, then play it with --once semantics")
	cmd.Flags().BoolVar(&watch, "watch", false, "reload the preset when the presets file changes")
	cmd.Flags().BoolVar(&skip, "skip", false, "start at the resting text")

	return cmd
}
