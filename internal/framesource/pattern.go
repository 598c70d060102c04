package framesource

import (
	"context"
	"image"
	"image/color"
	"image/draw"
	"sync"
)

// DefaultPalette is cycled by Pattern when no colors are given
var DefaultPalette = []color.RGBA{
	{R: 0xd9, G: 0x3b, B: 0x3b, A: 0xff},
	{R: 0x3b, G: 0xa5, B: 0x5c, A: 0xff},
	{R: 0x3b, G: 0x6e, B: 0xd9, A: 0xff},
	{R: 0xe8, G: 0xc5, B: 0x3a, A: 0xff},
}

// Pattern is a synthetic camera producing solid frames, advancing to the next
// color on every Frame call.
type Pattern struct {
	colors []color.RGBA
	width  int
	height int

	mu   sync.Mutex
	next int
	live bool
}

func NewPattern(colors []color.RGBA, width, height int) *Pattern {
	if len(colors) == 0 {
		colors = DefaultPalette
	}
	return &Pattern{colors: colors, width: width, height: height}
}

func (p *Pattern) Start(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.live = true
	p.next = 0
	return nil
}

func (p *Pattern) Frame(ctx context.Context) (image.Image, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.live {
		return nil, ErrStopped
	}
	c := p.colors[p.next%len(p.colors)]
	p.next++

	img := image.NewRGBA(image.Rect(0, 0, p.width, p.height))
	draw.Draw(img, img.Bounds(), &image.Uniform{C: c}, image.Point{}, draw.Src)
	return img, nil
}

func (p *Pattern) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.live = false
}
