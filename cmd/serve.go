package cmd

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/lehigh-university-libraries/photobooth/internal/booth"
	"github.com/lehigh-university-libraries/photobooth/internal/export"
	"github.com/lehigh-university-libraries/photobooth/internal/framesource"
	"github.com/lehigh-university-libraries/photobooth/internal/handlers"
	"github.com/spf13/cobra"
)

func newServeCmd(opts *rootOptions) *cobra.Command {
	var port string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the photobooth web service",
		Long: `Starts the photobooth HTTP API on the specified port.

Browser clients create a session, upload their preview frames (or use the
configured camera), trigger captures and download the finished strip.
Session notifications are streamed as Server-Sent Events.`,
		Example: `  # Start server on default port 8888
  photobooth serve

  # Start server on custom port with a network camera
  PHOTOBOOTH_SOURCE=http PHOTOBOOTH_SOURCE_URL=http://cam.local/snapshot.jpg photobooth serve --port 3000`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := opts.cfg
			if port != "" {
				cfg.Server.Port = port
			}

			open, err := framesource.NewOpener(cfg.FrameSource())
			if err != nil {
				return err
			}

			handler := handlers.New(open, export.NewDirSaver(cfg.Output.Dir), cfg.Output.Dir, booth.Options{})
			defer handler.Close()

			addr := ":" + cfg.Server.Port
			server := &http.Server{
				Addr:              addr,
				Handler:           handler.Routes(),
				ReadHeaderTimeout: 10 * time.Second,
			}

			// Start server in goroutine
			serverErr := make(chan error, 1)
			go func() {
				slog.Info("Photobooth available", "addr", addr, "url", "http://localhost"+addr, "source", cfg.Source.Kind)
				if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					serverErr <- err
				}
			}()

			// Wait for context cancellation (Ctrl+C) or server error
			select {
			case <-cmd.Context().Done():
				slog.Info("Shutting down server...")
				// Give server 5 seconds to shut down gracefully
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				if err := server.Shutdown(shutdownCtx); err != nil {
					slog.Error("Server shutdown failed", "err", err)
					return err
				}
				slog.Info("Server stopped")
				return nil
			case err := <-serverErr:
				return err
			}
		},
	}

	cmd.Flags().StringVarP(&port, "port", "p", "", "Port to listen on (default from config, 8888)")

	return cmd
}
