package commands

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"shortlist-monitor/internal/api"
	"shortlist-monitor/internal/poller"

	"github.com/oklog/run"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

const shutdownTimeout = 5 * time.Second

func newServeCommand(opts *rootOptions) *cobra.Command {

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Expose the watched job over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), opts)
		},
	}

	cmd.Flags().String("addr", "", "Listen address (default from server.addr)")

	return cmd
}

func runServe(ctx context.Context, opts *rootOptions) error {

	cfg := opts.cfg

	source, closeSource, err := newSource(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeSource()

	state := api.NewState()
	listeners := poller.Listeners{state}

	publisher, closePublisher, err := newPublisher(ctx, cfg)
	if err != nil {
		return err
	}
	defer closePublisher()

	if publisher != nil {
		listeners = append(listeners, publisher)
	}

	coordinator := newCoordinator(cfg, source, listeners)
	defer coordinator.Close()

	server := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           api.NewRouter(api.NewAPIHandler(ctx, coordinator, state)),
		ReadHeaderTimeout: 10 * time.Second,
	}

	var g run.Group

	// HTTP server.
	{
		g.Add(
			func() error {
				log.Info().Str("component", "api").Str("addr", server.Addr).Msg("Listening")
				if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					return fmt.Errorf("http server: %w", err)
				}
				return nil
			},
			func(_ error) {
				shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
				defer cancel()
				_ = server.Shutdown(shutdownCtx)
			},
		)
	}

	// Context cancellation (from parent signal handling).
	{
		ctx, cancel := context.WithCancel(ctx)
		defer cancel()

		g.Add(
			func() error {
				<-ctx.Done()
				return nil
			},
			func(_ error) {
				cancel()
			},
		)
	}

	return g.Run()
}
