package cmd

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/kastheco/marquee/timeline"
)

// newFramesCmd returns the `marquee frames` cobra command.
func newFramesCmd(a *app) *cobra.Command {
	var (
		format string
		until  time.Duration
		skip   bool
	)

	cmd := &cobra.Command{
		Use:   "frames [preset]",
		Short: "print every frame of a preset with its timestamp",
		Long:  "Run a preset on a simulated clock and print the frames it emits. Looping presets stop at --until.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !slices.Contains(timeline.Formats, format) {
				return fmt.Errorf("unknown format %q (want one of %s)", format, strings.Join(timeline.Formats, ", "))
			}
			if until <= 0 {
				return fmt.Errorf("--until must be positive")
			}
			name, anim, _, err := a.preset(args)
			if err != nil {
				return err
			}
			cfg := anim.EngineConfig()
			cfg.SkipAnimation = cfg.SkipAnimation || skip

			tl, err := timeline.Record(cfg, until, a.logger.With("preset", name))
			if err != nil {
				return err
			}
			a.logger.Debug("timeline recorded",
				"preset", name,
				"frames", len(tl.Frames),
				"duration", tl.Duration(),
				"truncated", tl.Truncated)
			return tl.Write(cmd.OutOrStdout(), format)
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "text", "output format: "+strings.Join(timeline.Formats, ", "))
	cmd.Flags().DurationVar(&until, "until", defaultUntil, "stop after this much animation time")
	cmd.Flags().BoolVar(&skip, "skip", false, "start at the resting text")

	return cmd
}
