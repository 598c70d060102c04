package framesource

import (
	"context"
	"fmt"
	"image"
	"io"
	"net/http"
	"sync"
	"time"
)

// maxSnapshotBytes limits how much a camera may send for one frame
const maxSnapshotBytes = 10 * 1024 * 1024

// HTTPSnapshot reads frames from a network camera exposing a still-image
// endpoint (for example /snapshot.jpg).
type HTTPSnapshot struct {
	URL        string
	HTTPClient *http.Client

	mu   sync.Mutex
	live bool
}

func NewHTTPSnapshot(url string) *HTTPSnapshot {
	return &HTTPSnapshot{
		URL: url,
		HTTPClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// Start probes the endpoint once so an unreachable camera fails session start.
func (h *HTTPSnapshot) Start(ctx context.Context) error {
	h.mu.Lock()
	h.live = true
	h.mu.Unlock()

	if _, err := h.fetch(ctx); err != nil {
		h.Stop()
		return fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	return nil
}

func (h *HTTPSnapshot) Frame(ctx context.Context) (image.Image, error) {
	h.mu.Lock()
	live := h.live
	h.mu.Unlock()
	if !live {
		return nil, ErrStopped
	}
	return h.fetch(ctx)
}

func (h *HTTPSnapshot) fetch(ctx context.Context) (image.Image, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, h.URL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build snapshot request: %w", err)
	}

	resp, err := h.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch snapshot: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("snapshot endpoint returned status %d", resp.StatusCode)
	}

	img, _, err := image.Decode(io.LimitReader(resp.Body, maxSnapshotBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to decode snapshot: %w", err)
	}
	return img, nil
}

func (h *HTTPSnapshot) Stop() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.live = false
}
