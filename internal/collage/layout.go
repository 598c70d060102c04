package collage

import (
	"image"
	"math"
)

// Layout holds the fixed geometry of a photo strip.
type Layout struct {
	CellWidth  int
	CellHeight int
	Border     int
	Spacing    int
	Radius     int
}

// Default is the strip geometry: 600x450 cells, 20px border, 10px gaps, 8px corners.
var Default = Layout{
	CellWidth:  600,
	CellHeight: 450,
	Border:     20,
	Spacing:    10,
	Radius:     8,
}

// CanvasSize returns the strip size for n photos.
func (l Layout) CanvasSize(n int) image.Point {
	if n <= 0 {
		return image.Point{X: l.CellWidth + 2*l.Border, Y: 2 * l.Border}
	}
	return image.Point{
		X: l.CellWidth + 2*l.Border,
		Y: l.CellHeight*n + 2*l.Border + l.Spacing*(n-1),
	}
}

// Cell returns the canvas rectangle occupied by photo i.
func (l Layout) Cell(i int) image.Rectangle {
	y := l.Border + i*(l.CellHeight+l.Spacing)
	return image.Rect(l.Border, y, l.Border+l.CellWidth, y+l.CellHeight)
}

// Fill returns where a srcW x srcH image must be drawn, relative to the cell
// origin, so that it covers the whole cell. The excess dimension overflows the
// cell equally on both sides.
func (l Layout) Fill(srcW, srcH int) image.Rectangle {
	cw, ch := float64(l.CellWidth), float64(l.CellHeight)
	if srcW <= 0 || srcH <= 0 {
		return image.Rect(0, 0, l.CellWidth, l.CellHeight)
	}

	srcAspect := float64(srcW) / float64(srcH)
	targetAspect := cw / ch

	drawW, drawH := cw, ch
	drawX, drawY := 0.0, 0.0
	if srcAspect > targetAspect {
		drawW = ch * srcAspect
		drawX = -(drawW - cw) / 2
	} else {
		drawH = cw / srcAspect
		drawY = -(drawH - ch) / 2
	}

	x0, y0 := int(math.Round(drawX)), int(math.Round(drawY))
	return image.Rect(x0, y0, x0+int(math.Round(drawW)), y0+int(math.Round(drawH)))
}
