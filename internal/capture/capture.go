// Package capture turns the current camera frame into a stored Photo.
package capture

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/draw"
	"image/jpeg"
	"time"

	"github.com/lehigh-university-libraries/photobooth/internal/framesource"
	"github.com/lehigh-university-libraries/photobooth/internal/models"
)

// JPEGQuality matches the 0.9 quality the preview canvas exported with
const JPEGQuality = 90

// Snapshot reads the current frame from src, mirrors it horizontally so the
// stored photo matches the mirrored live preview, and encodes it as JPEG.
func Snapshot(ctx context.Context, src framesource.Source, index int) (models.Photo, error) {
	frame, err := src.Frame(ctx)
	if err != nil {
		return models.Photo{}, fmt.Errorf("failed to read frame: %w", err)
	}

	bounds := frame.Bounds()
	if bounds.Empty() {
		return models.Photo{}, fmt.Errorf("frame has no size: %w", framesource.ErrNoFrame)
	}

	mirrored := Mirror(frame)

	buf := new(bytes.Buffer)
	if err := jpeg.Encode(buf, mirrored, &jpeg.Options{Quality: JPEGQuality}); err != nil {
		return models.Photo{}, fmt.Errorf("failed to encode photo: %w", err)
	}

	return models.Photo{
		Index:      index,
		Data:       buf.Bytes(),
		MimeType:   "image/jpeg",
		Width:      bounds.Dx(),
		Height:     bounds.Dy(),
		CapturedAt: time.Now(),
	}, nil
}

// Mirror returns a copy of img flipped on the horizontal axis, anchored at the origin.
func Mirror(img image.Image) *image.RGBA {
	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()

	src := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(src, src.Bounds(), img, bounds.Min, draw.Src)

	out := image.NewRGBA(src.Bounds())
	for y := 0; y < h; y++ {
		row := src.Pix[y*src.Stride : y*src.Stride+w*4]
		dst := out.Pix[y*out.Stride : y*out.Stride+w*4]
		for x := 0; x < w; x++ {
			copy(dst[(w-1-x)*4:(w-x)*4], row[x*4:x*4+4])
		}
	}
	return out
}
