//go:build ebiten

package render

import (
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"

	"casearch/internal/core"
)

// GridPainter keeps one RGBA image the size of the viewport and redraws it
// from a grid every frame.
type GridPainter struct {
	w, h    int
	img     *ebiten.Image
	buf     []byte
	palette []color.RGBA
}

// NewGridPainter allocates a painter for a w*h viewport drawing states
// states.
func NewGridPainter(w, h, states int) *GridPainter {
	return &GridPainter{
		w:       w,
		h:       h,
		img:     ebiten.NewImage(w, h),
		buf:     make([]byte, 4*w*h),
		palette: Palette(states),
	}
}

// SetStates replaces the palette after a rule change.
func (gp *GridPainter) SetStates(states int) { gp.palette = Palette(states) }

// Blit draws the viewport of g onto dst at the given scale.
func (gp *GridPainter) Blit(dst *ebiten.Image, g *core.Grid, vp Viewport, scale int) {
	if vp.W != gp.w || vp.H != gp.h {
		return
	}
	Fill(gp.buf, g, vp, gp.palette)
	gp.img.WritePixels(gp.buf)

	op := &ebiten.DrawImageOptions{}
	op.GeoM.Scale(float64(scale), float64(scale))
	dst.DrawImage(gp.img, op)
}

// Size returns the dimensions of the underlying image.
func (gp *GridPainter) Size() (int, int) { return gp.w, gp.h }
