package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/lehigh-university-libraries/photobooth/internal/booth"
	"github.com/lehigh-university-libraries/photobooth/internal/export"
	"github.com/lehigh-university-libraries/photobooth/internal/framesource"
	"github.com/lehigh-university-libraries/photobooth/internal/models"
	"github.com/spf13/cobra"
)

func newShootCmd(opts *rootOptions) *cobra.Command {
	var output string
	var source string

	cmd := &cobra.Command{
		Use:   "shoot",
		Short: "Take one strip headless and save it",
		Long: `Runs a full session without a browser: four countdowns and captures from
the configured camera, then composes the strip and writes it as PNG.

The pushed source needs a browser and cannot be used here; pick pattern,
directory or http.`,
		Example: `  # Strip from the synthetic test pattern
  photobooth shoot --source pattern

  # Strip from a directory of frames, written to ./out
  PHOTOBOOTH_SOURCE_DIR=./frames photobooth shoot --source directory --output ./out`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := opts.cfg
			if source != "" {
				cfg.Source.Kind = source
			}
			if output != "" {
				cfg.Output.Dir = output
			}
			if cfg.Source.Kind == framesource.KindPushed {
				return fmt.Errorf("the %s source needs a browser; use --source pattern, directory or http", framesource.KindPushed)
			}

			open, err := framesource.NewOpener(cfg.FrameSource())
			if err != nil {
				return err
			}

			path, err := shoot(cmd.Context(), open, export.NewDirSaver(cfg.Output.Dir), booth.Options{})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Strip saved to %s\n", path)
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "Directory for the strip (default from config, ./strips)")
	cmd.Flags().StringVar(&source, "source", "", "Frame source: pattern, directory or http (default from config)")

	return cmd
}

// shoot runs one session to completion and saves its strip.
func shoot(ctx context.Context, open framesource.Opener, saver export.Saver, options booth.Options) (string, error) {
	session, err := booth.New(ctx, open, options)
	if err != nil {
		if errors.Is(err, booth.ErrFrameSourceUnavailable) {
			return "", fmt.Errorf("failed to access camera: %w", err)
		}
		return "", err
	}
	defer session.Close()

	events, cancel := session.Events(16)
	defer cancel()
	go func() {
		for ev := range events {
			switch ev.Type {
			case models.EventTick:
				slog.Info("Countdown", "photo", ev.Count+1, "remaining", ev.Remaining)
			case models.EventCaptured:
				slog.Info("Photo taken", "count", ev.Count, "of", models.MaxPhotos)
			case models.EventComposing:
				slog.Info("Building strip...")
			}
		}
	}()

	for session.View().State != models.StateReviewing {
		captured, err := session.Capture(ctx)
		if err != nil {
			return "", err
		}
		if !captured {
			return "", fmt.Errorf("capture refused in state %s", session.View().State)
		}
	}

	blob, err := session.Export()
	if err != nil {
		return "", err
	}
	return saver.Save(ctx, blob)
}
