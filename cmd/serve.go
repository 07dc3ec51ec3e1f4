package cmd

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/kastheco/marquee/server"
)

// newServeCmd returns the `marquee serve` cobra command.
// It serves presets over HTTP and streams frames over websockets.
func newServeCmd(a *app) *cobra.Command {
	var origins []string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "start the preset HTTP server",
		Long:  "Start an HTTP server that lists presets, streams their frames over websockets and serves a hero page.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			presets, err := a.loadPresets()
			if err != nil {
				return err
			}

			handler := server.NewHandler(presets, server.Options{
				Logger:         a.logger,
				OriginPatterns: origins,
			})
			addr := a.settings.Server.Addr()

			// Hijacked websocket connections outlive Shutdown; cancelling
			// the base context ends their streams.
			streams, closeStreams := context.WithCancel(context.Background())
			defer closeStreams()
			srv := &http.Server{
				Addr:              addr,
				Handler:           handler,
				ReadHeaderTimeout: 5 * time.Second,
				BaseContext:       func(net.Listener) context.Context { return streams },
			}
			srv.RegisterOnShutdown(closeStreams)

			source := presets.Path
			if source == "" {
				source = "builtin"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "marquee listening on http://%s (presets: %s)\n", addr, source)
			a.logger.Info("server starting", "addr", addr, "presets", presets.Names())

			// Graceful shutdown on SIGINT/SIGTERM.
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			errCh := make(chan error, 1)
			go func() {
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					errCh <- err
				}
				close(errCh)
			}()

			select {
			case err := <-errCh:
				return err
			case <-ctx.Done():
				fmt.Fprintln(cmd.OutOrStdout(), "\nshutting down...")
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				return srv.Shutdown(shutdownCtx)
			}
		},
	}

	cmd.Flags().Int("port", 7434, "port to listen on")
	cmd.Flags().String("bind", "127.0.0.1", "address to bind to")
	cmd.Flags().StringSliceVar(&origins, "origin", nil, "extra origins allowed to open frame streams (e.g. example.com)")
	a.bind(cmd.Flags(), map[string]string{
		"server.port": "port",
		"server.bind": "bind",
	})

	return cmd
}
