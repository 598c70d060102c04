package collage

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/lehigh-university-libraries/photobooth/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func solid(c color.Color, w, h int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, c)
		}
	}
	return img
}

func jpegPhoto(t *testing.T, i int, img image.Image) models.Photo {
	t.Helper()
	buf := new(bytes.Buffer)
	require.NoError(t, jpeg.Encode(buf, img, &jpeg.Options{Quality: 90}))
	return models.Photo{Index: i, Data: buf.Bytes(), MimeType: "image/jpeg", Width: img.Bounds().Dx(), Height: img.Bounds().Dy()}
}

func pngPhoto(t *testing.T, i int, img image.Image) models.Photo {
	t.Helper()
	buf := new(bytes.Buffer)
	require.NoError(t, png.Encode(buf, img))
	return models.Photo{Index: i, Data: buf.Bytes(), MimeType: "image/png", Width: img.Bounds().Dx(), Height: img.Bounds().Dy()}
}

func assertNear(t *testing.T, want color.RGBA, got color.Color, tolerance int) {
	t.Helper()
	r, g, b, _ := got.RGBA()
	diff := func(a uint8, b uint32) int {
		d := int(a) - int(b>>8)
		if d < 0 {
			return -d
		}
		return d
	}
	if diff(want.R, r) > tolerance || diff(want.G, g) > tolerance || diff(want.B, b) > tolerance {
		t.Errorf("color mismatch: want %v, got (%d,%d,%d)", want, r>>8, g>>8, b>>8)
	}
}

func TestCanvasSize(t *testing.T) {
	tests := []struct {
		n    int
		want image.Point
	}{
		{n: 1, want: image.Point{X: 640, Y: 490}},
		{n: 2, want: image.Point{X: 640, Y: 950}},
		{n: 4, want: image.Point{X: 640, Y: 1870}},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Default.CanvasSize(tt.n), "n=%d", tt.n)
	}
}

func TestCell(t *testing.T) {
	assert.Equal(t, image.Rect(20, 20, 620, 470), Default.Cell(0))
	assert.Equal(t, image.Rect(20, 480, 620, 930), Default.Cell(1))
	assert.Equal(t, image.Rect(20, 1400, 620, 1850), Default.Cell(3))
}

func TestFill(t *testing.T) {
	tests := []struct {
		name       string
		srcW, srcH int
		want       image.Rectangle
	}{
		{name: "same aspect", srcW: 1200, srcH: 900, want: image.Rect(0, 0, 600, 450)},
		{name: "wider crops horizontally", srcW: 1280, srcH: 720, want: image.Rect(-100, 0, 700, 450)},
		{name: "taller crops vertically", srcW: 600, srcH: 600, want: image.Rect(0, -75, 600, 525)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Default.Fill(tt.srcW, tt.srcH))
		})
	}
}

func TestRoundedMask(t *testing.T) {
	m := newRoundedMask(600, 450, 8)

	assert.False(t, m.inside(0, 0), "corner pixel is clipped")
	assert.False(t, m.inside(599, 449), "opposite corner pixel is clipped")
	assert.True(t, m.inside(4, 4))
	assert.True(t, m.inside(300, 0), "edge midpoints are kept")
	assert.True(t, m.inside(0, 225))
	assert.False(t, m.inside(-1, 10))
	assert.False(t, m.inside(600, 10))

	square := newRoundedMask(10, 10, 0)
	assert.True(t, square.inside(0, 0))
}

func TestComposeSolidColors(t *testing.T) {
	colors := []color.RGBA{
		{R: 220, G: 40, B: 40, A: 255},
		{R: 40, G: 180, B: 80, A: 255},
		{R: 40, G: 90, B: 220, A: 255},
		{R: 230, G: 200, B: 50, A: 255},
	}
	photos := make([]models.Photo, len(colors))
	for i, c := range colors {
		photos[i] = jpegPhoto(t, i, solid(c, 1280, 720))
	}

	c := New()
	var ready atomic.Int32
	c.OnReady = func() { ready.Add(1) }

	strip, err := c.Compose(context.Background(), photos)
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 640, 1870), strip.Bounds())
	assert.Equal(t, int32(1), ready.Load())

	for i, want := range colors {
		center := Default.Cell(i).Min.Add(image.Point{X: 300, Y: 225})
		assertNear(t, want, strip.At(center.X, center.Y), 12)
	}

	// border, gaps and clipped corners stay white
	white := color.RGBA{R: 255, G: 255, B: 255, A: 255}
	assertNear(t, white, strip.At(5, 5), 0)
	assertNear(t, white, strip.At(320, 475), 0)
	assertNear(t, white, strip.At(20, 20), 0)
}

func TestComposeCropsCentered(t *testing.T) {
	red := color.RGBA{R: 255, A: 255}
	green := color.RGBA{G: 255, A: 255}
	blue := color.RGBA{B: 255, A: 255}

	// wide frame: vertical bands left to right
	wide := image.NewRGBA(image.Rect(0, 0, 1600, 900))
	// tall frame: horizontal bands top to bottom
	tall := image.NewRGBA(image.Rect(0, 0, 900, 1600))
	for y := 0; y < 1600; y++ {
		for x := 0; x < 1600; x++ {
			band := []color.RGBA{red, green, blue}[min(x*3/1600, 2)]
			if y < 900 {
				wide.Set(x, y, band)
			}
			if x < 900 {
				tall.Set(x, y, []color.RGBA{red, green, blue}[min(y*3/1600, 2)])
			}
		}
	}

	strip, err := New().Compose(context.Background(), []models.Photo{
		pngPhoto(t, 0, wide),
		pngPhoto(t, 1, tall),
	})
	require.NoError(t, err)

	wideCell := Default.Cell(0)
	assertNear(t, green, strip.At(wideCell.Min.X+300, wideCell.Min.Y+225), 2)
	assertNear(t, red, strip.At(wideCell.Min.X+40, wideCell.Min.Y+225), 2)
	assertNear(t, blue, strip.At(wideCell.Max.X-40, wideCell.Min.Y+225), 2)

	tallCell := Default.Cell(1)
	assertNear(t, green, strip.At(tallCell.Min.X+300, tallCell.Min.Y+225), 2)
	assertNear(t, red, strip.At(tallCell.Min.X+300, tallCell.Min.Y+20), 2)
	assertNear(t, blue, strip.At(tallCell.Min.X+300, tallCell.Max.Y-20), 2)
}

func TestComposeReadyAfterOutOfOrderDecodes(t *testing.T) {
	const n = 4
	photos := make([]models.Photo, n)
	release := make([]chan struct{}, n)
	for i := range photos {
		photos[i] = models.Photo{Index: i, Data: []byte{byte(i)}}
		release[i] = make(chan struct{})
	}

	var (
		mu      sync.Mutex
		decoded []int
	)
	started := make(chan struct{}, n)
	finished := make(chan struct{})

	c := New()
	c.Decode = func(data []byte) (image.Image, error) {
		i := int(data[0])
		started <- struct{}{}
		<-release[i]
		mu.Lock()
		decoded = append(decoded, i)
		mu.Unlock()
		finished <- struct{}{}
		return solid(color.Black, 40, 30), nil
	}
	var ready atomic.Int32
	c.OnReady = func() { ready.Add(1) }

	type result struct {
		img *image.RGBA
		err error
	}
	done := make(chan result, 1)
	go func() {
		img, err := c.Compose(context.Background(), photos)
		done <- result{img, err}
	}()

	for i := 0; i < n; i++ {
		<-started
	}

	// finish the last photo first, the first photo last
	for i := n - 1; i > 0; i-- {
		release[i] <- struct{}{}
		<-finished
	}
	assert.Zero(t, ready.Load(), "ready must wait for every decode")
	release[0] <- struct{}{}
	<-finished

	res := <-done
	require.NoError(t, res.err)
	assert.Equal(t, int32(1), ready.Load())

	mu.Lock()
	assert.Equal(t, []int{3, 2, 1, 0}, decoded)
	mu.Unlock()
}

func TestComposeErrors(t *testing.T) {
	t.Run("no photos", func(t *testing.T) {
		_, err := New().Compose(context.Background(), nil)
		assert.ErrorIs(t, err, ErrNoPhotos)
	})

	t.Run("decode failure aborts the strip", func(t *testing.T) {
		c := New()
		var ready atomic.Int32
		c.OnReady = func() { ready.Add(1) }

		photos := []models.Photo{
			jpegPhoto(t, 0, solid(color.Black, 40, 30)),
			{Index: 1, Data: []byte("corrupt")},
		}
		_, err := c.Compose(context.Background(), photos)
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrDecode))
		assert.Contains(t, err.Error(), "photo 1")
		assert.Zero(t, ready.Load())
	})
}
