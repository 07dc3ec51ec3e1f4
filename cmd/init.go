package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kastheco/marquee/internal/initcmd/scaffold"
	"github.com/kastheco/marquee/internal/initcmd/wizard"
)

// newInitCmd returns the `marquee init` cobra command.
func newInitCmd(a *app) *cobra.Command {
	var (
		yes   bool
		force bool
	)

	cmd := &cobra.Command{
		Use:   "init",
		Short: "write a starter presets file",
		Long:  "Ask for a banner's statements and timing and write them to the presets file. --yes writes the builtin hero preset without asking.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			state := wizard.DefaultState()
			if !yes {
				if err := wizard.Run(&state); err != nil {
					return fmt.Errorf("init form: %w", err)
				}
			}
			presets, err := state.PresetFile()
			if err != nil {
				return err
			}

			res, err := scaffold.WritePresets(a.settings.Presets, presets, force)
			if err != nil {
				return err
			}
			a.logger.Info("init finished", "path", res.Path, "created", res.Created)
			if res.Created {
				fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", res.Path)
			} else {
				fmt.Fprintf(cmd.OutOrStdout(), "skipped %s (exists; use --force to overwrite)\n", res.Path)
			}
			return nil
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "skip the form and write the default preset")
	cmd.Flags().BoolVar(&force, "force", false, "overwrite an existing presets file")

	return cmd
}
