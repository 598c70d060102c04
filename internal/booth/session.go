// Package booth implements the photobooth session: countdown, capture,
// strip composition and retake.
package booth

import (
	"context"
	"errors"
	"fmt"
	"image"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/lehigh-university-libraries/photobooth/internal/capture"
	"github.com/lehigh-university-libraries/photobooth/internal/collage"
	"github.com/lehigh-university-libraries/photobooth/internal/countdown"
	"github.com/lehigh-university-libraries/photobooth/internal/export"
	"github.com/lehigh-university-libraries/photobooth/internal/framesource"
	"github.com/lehigh-university-libraries/photobooth/internal/models"
)

var (
	ErrFrameSourceUnavailable = errors.New("camera unavailable")
	ErrCompositionInFlight    = errors.New("strip composition in progress")
	ErrCaptureInFlight        = errors.New("capture in progress")
	ErrNotReviewing           = errors.New("strip is not ready")
	ErrClosed                 = errors.New("session closed")
)

const (
	// NoticeDuration is how long a user-visible message stays up
	NoticeDuration = 5 * time.Second
	// FlashDuration is how long the capture flash is shown
	FlashDuration = 300 * time.Millisecond
)

// Options tune a session. The zero value is valid.
type Options struct {
	// CountdownInterval overrides the 600ms tick, mostly for tests.
	CountdownInterval time.Duration
	Compositor        *collage.Compositor
	Now               func() time.Time
}

// Session is one photobooth run: up to MaxPhotos captures, then a strip.
type Session struct {
	id         string
	createdAt  time.Time
	open       framesource.Opener
	hub        *Hub
	countdown  *countdown.Countdown
	compositor collage.Compositor
	now        func() time.Time

	// mu guards everything below. It is never held while calling into the
	// countdown, which calls back into publish.
	mu         sync.Mutex
	state      models.State
	photos     []models.Photo
	source     framesource.Source
	strip      *image.RGBA
	generation int
	notice     *models.Notice
	closed     bool
}

// New opens a frame source through open and returns an idle session. A
// source that cannot be opened is fatal: the error wraps
// ErrFrameSourceUnavailable.
func New(ctx context.Context, open framesource.Opener, opts Options) (*Session, error) {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Compositor == nil {
		opts.Compositor = collage.New()
	}

	s := &Session{
		id:         uuid.NewString(),
		open:       open,
		hub:        NewHub(),
		compositor: *opts.Compositor,
		now:        opts.Now,
		state:      models.StateIdle,
	}
	s.createdAt = s.now()
	s.countdown = countdown.New(opts.CountdownInterval,
		func(remaining int) { s.publish(models.EventTick, remaining, "") },
		func() { s.publish(models.EventCountdownComplete, 0, "") },
	)
	onReady := opts.Compositor.OnReady
	s.compositor.OnReady = func() {
		slog.Debug("All photos drawn", "session_id", s.id)
		if onReady != nil {
			onReady()
		}
	}

	src, err := open(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrFrameSourceUnavailable, err)
	}
	s.source = src

	slog.Info("Session started", "session_id", s.id)
	return s, nil
}

func (s *Session) ID() string { return s.id }

// CreatedAt is when the session was started.
func (s *Session) CreatedAt() time.Time { return s.createdAt }

// Events subscribes to the session's notifications.
func (s *Session) Events(buffer int) (<-chan models.Event, func()) {
	return s.hub.Subscribe(buffer)
}

// Source returns the live frame source, or nil while none is open.
func (s *Session) Source() framesource.Source {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.source
}

// Capture runs the countdown and takes one photo. It returns false without
// error when a capture is already in flight or the strip is full. When the
// photo completes the strip, the camera is released and the strip composed
// before Capture returns.
func (s *Session) Capture(ctx context.Context) (bool, error) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return false, ErrClosed
	}
	if s.state != models.StateIdle || len(s.photos) >= models.MaxPhotos {
		s.mu.Unlock()
		return false, nil
	}
	src := s.source
	if src == nil {
		s.mu.Unlock()
		return false, ErrFrameSourceUnavailable
	}
	s.state = models.StateCapturing
	index := len(s.photos)
	s.mu.Unlock()

	if err := s.countdown.Run(ctx); err != nil {
		s.abortCapture()
		return false, fmt.Errorf("countdown interrupted: %w", err)
	}

	s.publish(models.EventFlash, 0, FlashDuration.String())
	photo, err := capture.Snapshot(ctx, src, index)
	if err != nil {
		s.abortCapture()
		s.raise("Failed to capture photo. Please try again.")
		return false, err
	}

	s.mu.Lock()
	s.photos = append(s.photos, photo)
	full := len(s.photos) >= models.MaxPhotos
	var photos []models.Photo
	if full {
		s.state = models.StateComposing
		photos = append([]models.Photo(nil), s.photos...)
		s.source = nil
	} else {
		s.state = models.StateIdle
	}
	s.mu.Unlock()

	slog.Info("Photo captured", "session_id", s.id, "index", index, "width", photo.Width, "height", photo.Height)
	s.publish(models.EventCaptured, 0, "")

	if !full {
		return true, nil
	}

	src.Stop()
	return true, s.compose(context.WithoutCancel(ctx), photos)
}

func (s *Session) compose(ctx context.Context, photos []models.Photo) error {
	s.publish(models.EventComposing, 0, "")

	strip, err := s.compositor.Compose(ctx, photos)

	s.mu.Lock()
	if err != nil {
		s.state = models.StateFailed
	} else {
		s.strip = strip
		s.state = models.StateReviewing
	}
	s.mu.Unlock()

	if err != nil {
		slog.Error("Failed to compose strip", "session_id", s.id, "err", err)
		s.publish(models.EventFailed, 0, err.Error())
		s.raise("Failed to build the photo strip. Please retake.")
		return fmt.Errorf("failed to compose strip: %w", err)
	}

	slog.Info("Strip ready", "session_id", s.id, "width", strip.Bounds().Dx(), "height", strip.Bounds().Dy())
	s.publish(models.EventReady, 0, "")
	return nil
}

func (s *Session) abortCapture() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == models.StateCapturing {
		s.state = models.StateIdle
	}
}

// Retake discards every photo and the strip, releases the frame source,
// acquires a new one and returns to idle. It is refused while a countdown or
// a composition is running.
func (s *Session) Retake(ctx context.Context) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrClosed
	}
	switch s.state {
	case models.StateComposing:
		s.mu.Unlock()
		return ErrCompositionInFlight
	case models.StateCapturing:
		s.mu.Unlock()
		return ErrCaptureInFlight
	}

	if s.source != nil {
		s.source.Stop()
		s.source = nil
	}
	s.photos = nil
	s.strip = nil
	s.generation++
	gen := s.generation
	s.state = models.StateIdle
	s.mu.Unlock()

	src, err := s.open(ctx)

	s.mu.Lock()
	if s.closed || s.generation != gen {
		closed := s.closed
		s.mu.Unlock()
		if src != nil {
			src.Stop()
		}
		if closed {
			return ErrClosed
		}
		// a later retake owns the session now
		return nil
	}
	if err == nil {
		s.source = src
	}
	s.mu.Unlock()

	s.publish(models.EventRetake, 0, "")
	if err != nil {
		slog.Error("Failed to restart camera", "session_id", s.id, "err", err)
		s.raise("Failed to restart camera. Please refresh the page.")
		return fmt.Errorf("%w: %w", ErrFrameSourceUnavailable, err)
	}

	slog.Info("Session reset", "session_id", s.id)
	return nil
}

// Strip returns the composed strip while the session is reviewing.
func (s *Session) Strip() (*image.RGBA, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != models.StateReviewing {
		return nil, ErrNotReviewing
	}
	return s.strip, nil
}

// Export encodes the strip for download and acknowledges it with a saved event.
func (s *Session) Export() (export.Blob, error) {
	strip, err := s.Strip()
	if err != nil {
		return export.Blob{}, err
	}
	blob, err := export.Export(strip, s.now())
	if err != nil {
		return export.Blob{}, err
	}
	s.publish(models.EventSaved, 0, blob.Filename)
	return blob, nil
}

// View is a read-only snapshot of the session.
func (s *Session) View() models.SessionView {
	s.mu.Lock()
	defer s.mu.Unlock()

	view := models.SessionView{
		ID:         s.id,
		State:      s.state,
		Count:      len(s.photos),
		MaxPhotos:  models.MaxPhotos,
		Generation: s.generation,
		Photos:     append([]models.Photo{}, s.photos...),
		CreatedAt:  s.createdAt,
	}
	if s.notice.Active(s.now()) {
		notice := *s.notice
		view.Notice = &notice
	}
	return view
}

// Close releases the frame source and ends all event subscriptions.
func (s *Session) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	src := s.source
	s.source = nil
	s.mu.Unlock()

	s.countdown.Stop()
	if src != nil {
		src.Stop()
	}
	s.hub.Close()
	slog.Info("Session closed", "session_id", s.id)
}

// raise records a notice that dismisses itself after NoticeDuration.
func (s *Session) raise(message string) {
	now := s.now()
	s.mu.Lock()
	s.notice = &models.Notice{
		Message:   message,
		RaisedAt:  now,
		ExpiresAt: now.Add(NoticeDuration),
	}
	s.mu.Unlock()
	s.publish(models.EventError, 0, message)
}

func (s *Session) publish(typ models.EventType, remaining int, message string) {
	s.mu.Lock()
	ev := models.Event{
		Type:       typ,
		Session:    s.id,
		Generation: s.generation,
		Count:      len(s.photos),
		Remaining:  remaining,
		Message:    message,
		At:         s.now(),
	}
	s.mu.Unlock()
	s.hub.Publish(ev)
}
