package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/charmbracelet/x/ansi"
	"github.com/spf13/cobra"

	"github.com/kastheco/marquee/config"
	"github.com/kastheco/marquee/server"
	"github.com/kastheco/marquee/typewriter"
)

// newTailCmd returns the `marquee tail` cobra command.
func newTailCmd(a *app) *cobra.Command {
	var (
		addr string
		skip bool
	)

	cmd := &cobra.Command{
		Use:   "tail [preset]",
		Short: "follow a preset streamed by a running marquee server",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if addr == "" {
				addr = "http://" + a.settings.Server.Addr()
			}
			name := config.DefaultPresetName
			if len(args) > 0 {
				name = args[0]
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			out := cmd.OutOrStdout()
			tty := isTerminal(out)
			client := server.NewClient(addr)
			a.logger.Debug("tailing", "addr", addr, "preset", name)

			err := client.Stream(ctx, name, skip, func(f typewriter.Frame) {
				if !tty {
					fmt.Fprintln(out, f.Text)
					return
				}
				caret := ""
				if f.ShowCursor {
					caret = "▌"
				}
				fmt.Fprint(out, "\r"+ansi.EraseEntireLine+f.Text+caret)
			})
			if tty {
				fmt.Fprintln(out)
			}
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "server base URL (default: http://<server.bind>:<server.port>)")
	cmd.Flags().BoolVar(&skip, "skip", false, "ask the server for the resting text only")

	return cmd
}
