package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kastheco/marquee/ui"
)

// newPresetsCmd returns the `marquee presets` cobra command.
func newPresetsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "presets",
		Short: "list the available presets",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			presets, err := a.loadPresets()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			source := presets.Path
			if source == "" {
				source = "builtin"
			}
			fmt.Fprintf(out, "presets: %s\n", source)

			theme := ui.NewTheme(a.settings.NoColor || !isTerminal(out))
			name := theme.Name.Width(14)
			for _, n := range presets.Names() {
				anim := presets.Presets[n]
				cfg := anim.EngineConfig()
				mode := "once"
				if cfg.Loop {
					mode = "loop"
				}
				fmt.Fprintf(out, "%s %s  %-4s  %s\n",
					name.Render(n),
					anim.Fingerprint()[:8],
					mode,
					theme.Help.Render(cfg.RestingText()))
			}
			return nil
		},
	}
}
