package framesource

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"sync"
)

// Pushed is fed by a client that uploads its preview frames, for example a
// browser reading getUserMedia. Only the latest frame is kept.
type Pushed struct {
	mu     sync.RWMutex
	latest image.Image
	live   bool
}

func NewPushed() *Pushed {
	return &Pushed{}
}

func (p *Pushed) Start(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.live = true
	p.latest = nil
	return nil
}

// Push replaces the current frame with img.
func (p *Pushed) Push(img image.Image) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.live {
		return ErrStopped
	}
	p.latest = img
	return nil
}

// PushEncoded decodes data (JPEG, PNG or GIF) and pushes it.
func (p *Pushed) PushEncoded(data []byte) (image.Image, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to decode frame: %w", err)
	}
	if err := p.Push(img); err != nil {
		return nil, err
	}
	return img, nil
}

func (p *Pushed) Frame(ctx context.Context) (image.Image, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if !p.live {
		return nil, ErrStopped
	}
	if p.latest == nil {
		return nil, ErrNoFrame
	}
	return p.latest, nil
}

func (p *Pushed) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.live = false
	p.latest = nil
}
