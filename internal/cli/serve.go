package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/urbanpilot/oddnet/internal/server"
)

// serveCommand creates the serve command for the HTTP API.
func (c *CLI) serveCommand() *cobra.Command {
	var listen string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the analysis pipeline over HTTP",
		Long: `Serve the analysis pipeline over HTTP.

The server exposes POST /query to load a snapshot for an extent,
POST /junction to analyze it, and POST /network to extract the
compliant road network. Analysis thresholds and predefined criteria
from the config file apply to every request; request bodies override
them per field.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			addr := listen
			if addr == "" {
				addr = c.config.Listen
			}
			return c.runServe(cmd.Context(), addr)
		},
	}

	cmd.Flags().StringVarP(&listen, "listen", "l", "", "bind address (default from config, then :8080)")

	return cmd
}

// runServe starts the HTTP server and shuts it down when ctx ends.
func (c *CLI) runServe(ctx context.Context, addr string) error {
	runner, err := c.newRunner(ctx, false)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close(context.Background())

	srv := server.New(runner, c.config.pipelineOptions(), c.Logger)
	httpSrv := &http.Server{
		Addr:              addr,
		Handler:           srv.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		c.Logger.Info("listening", "addr", addr)
		errCh <- httpSrv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("serve: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	c.Logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
