package collage

import (
	"image"
	"image/color"
	"math"
)

// roundedMask is an alpha mask for a w x h rectangle whose corners follow the
// quadratic curve from (r,0) to (0,r) with its control point on the corner.
// That curve is the parabola sqrt(dx)+sqrt(dy) = sqrt(r), with dx, dy the
// distances to the corner.
type roundedMask struct {
	w, h  int
	r     float64
	sqrtR float64
}

func newRoundedMask(w, h, radius int) *roundedMask {
	r := float64(radius)
	return &roundedMask{w: w, h: h, r: r, sqrtR: math.Sqrt(r)}
}

func (m *roundedMask) ColorModel() color.Model { return color.AlphaModel }

func (m *roundedMask) Bounds() image.Rectangle { return image.Rect(0, 0, m.w, m.h) }

func (m *roundedMask) At(x, y int) color.Color {
	if m.inside(x, y) {
		return color.Alpha{A: 0xff}
	}
	return color.Alpha{}
}

func (m *roundedMask) inside(x, y int) bool {
	if x < 0 || y < 0 || x >= m.w || y >= m.h {
		return false
	}
	if m.r <= 0 {
		return true
	}

	// sample at the pixel center
	fx, fy := float64(x)+0.5, float64(y)+0.5
	dx, dy := -1.0, -1.0
	switch {
	case fx < m.r:
		dx = fx
	case fx > float64(m.w)-m.r:
		dx = float64(m.w) - fx
	}
	switch {
	case fy < m.r:
		dy = fy
	case fy > float64(m.h)-m.r:
		dy = float64(m.h) - fy
	}
	if dx < 0 || dy < 0 {
		return true
	}
	return math.Sqrt(dx)+math.Sqrt(dy) >= m.sqrtR
}
