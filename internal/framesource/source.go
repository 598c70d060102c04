// Package framesource provides the live camera feed the booth snapshots from.
package framesource

import (
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
)

var (
	// ErrUnavailable means the camera could not be opened (permission denied or hardware absent)
	ErrUnavailable = errors.New("frame source unavailable")
	// ErrNoFrame means the source is live but has no frame yet
	ErrNoFrame = errors.New("no frame available yet")
	// ErrStopped is returned by Frame after Stop
	ErrStopped = errors.New("frame source stopped")
)

// Source is a live feed that can yield its current frame.
type Source interface {
	// Start opens the feed. It returns an error wrapping ErrUnavailable when
	// the feed cannot be opened.
	Start(ctx context.Context) error
	// Frame returns the current frame at its natural size.
	Frame(ctx context.Context) (image.Image, error)
	// Stop releases the feed. It is safe to call more than once.
	Stop()
}

// Opener acquires a fresh, started Source.
type Opener func(ctx context.Context) (Source, error)

// Kinds accepted by Config.Kind
const (
	KindPushed    = "pushed"
	KindPattern   = "pattern"
	KindDirectory = "directory"
	KindHTTP      = "http"
)

// Config selects and parameterizes a Source implementation.
type Config struct {
	Kind string
	URL  string // snapshot endpoint for KindHTTP
	Dir  string // image directory for KindDirectory
}

// NewOpener returns an Opener building the source described by cfg.
func NewOpener(cfg Config) (Opener, error) {
	var build func() Source
	switch cfg.Kind {
	case KindPushed, "":
		build = func() Source { return NewPushed() }
	case KindPattern:
		build = func() Source { return NewPattern(nil, 1280, 720) }
	case KindDirectory:
		if cfg.Dir == "" {
			return nil, fmt.Errorf("directory source requires a directory")
		}
		build = func() Source { return NewDirectory(cfg.Dir) }
	case KindHTTP:
		if cfg.URL == "" {
			return nil, fmt.Errorf("http source requires a snapshot URL")
		}
		build = func() Source { return NewHTTPSnapshot(cfg.URL) }
	default:
		return nil, fmt.Errorf("unknown frame source kind %q", cfg.Kind)
	}

	return func(ctx context.Context) (Source, error) {
		src := build()
		if err := src.Start(ctx); err != nil {
			return nil, err
		}
		return src, nil
	}, nil
}
