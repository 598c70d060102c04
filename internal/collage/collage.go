// Package collage lays captured photos out as a vertical photo strip.
package collage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/draw"
	_ "image/jpeg"
	_ "image/png"
	"log/slog"
	"sync/atomic"

	"github.com/lehigh-university-libraries/photobooth/internal/models"
	xdraw "golang.org/x/image/draw"
	"golang.org/x/sync/errgroup"
)

var (
	ErrNoPhotos = errors.New("no photos to compose")
	ErrDecode   = errors.New("failed to decode photo")
)

// Decoder turns an encoded photo back into an image.
type Decoder func(data []byte) (image.Image, error)

// Compositor draws photos into a strip.
type Compositor struct {
	Layout Layout
	Decode Decoder
	Scaler xdraw.Scaler
	// OnReady is called once, after the last photo has been drawn.
	OnReady func()
}

func New() *Compositor {
	return &Compositor{
		Layout: Default,
		Decode: decodeImage,
		Scaler: xdraw.CatmullRom,
	}
}

// Compose decodes every photo concurrently and draws each into its cell, top
// to bottom in capture order. Completion is tracked by counting finished
// cells, so the strip is ready only once all of them are drawn whatever order
// the decodes finish in. Any decode failure aborts the whole strip.
func (c *Compositor) Compose(ctx context.Context, photos []models.Photo) (*image.RGBA, error) {
	n := len(photos)
	if n == 0 {
		return nil, ErrNoPhotos
	}

	size := c.Layout.CanvasSize(n)
	canvas := image.NewRGBA(image.Rect(0, 0, size.X, size.Y))
	draw.Draw(canvas, canvas.Bounds(), image.White, image.Point{}, draw.Src)

	slog.Debug("Composing strip", "photos", n, "width", size.X, "height", size.Y)

	var drawn atomic.Int32
	g, gctx := errgroup.WithContext(ctx)
	for i, photo := range photos {
		g.Go(func() error {
			img, err := c.Decode(photo.Data)
			if err != nil {
				return fmt.Errorf("%w %d: %w", ErrDecode, i, err)
			}
			if err := gctx.Err(); err != nil {
				return err
			}

			// cells never overlap, so each goroutine writes its own pixels
			c.drawCell(canvas, i, img)

			if drawn.Add(1) == int32(n) && c.OnReady != nil {
				c.OnReady()
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return canvas, nil
}

func (c *Compositor) drawCell(canvas *image.RGBA, i int, img image.Image) {
	cell := c.Layout.Cell(i)
	sb := img.Bounds()

	local := image.NewRGBA(image.Rect(0, 0, cell.Dx(), cell.Dy()))
	c.Scaler.Scale(local, c.Layout.Fill(sb.Dx(), sb.Dy()), img, sb, xdraw.Src, nil)

	mask := newRoundedMask(cell.Dx(), cell.Dy(), c.Layout.Radius)
	draw.DrawMask(canvas, cell, local, image.Point{}, mask, image.Point{}, draw.Over)
}

func decodeImage(data []byte) (image.Image, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	return img, err
}
