// Package render turns a window of a grid into RGBA pixels.
package render

import (
	"image/color"

	"casearch/internal/core"
)

// Viewport is the window of the plane that is drawn, in cells.
type Viewport struct {
	Origin core.Coordinate
	W, H   int
}

// Centred returns a w*h viewport centred on the bounding box of g, or on
// (0, 0) when g is empty.
func Centred(g *core.Grid, w, h int) Viewport {
	lo, hi, ok := g.Bounds()
	if !ok {
		return Viewport{Origin: core.C(-w/2, -h/2), W: w, H: h}
	}
	cx, cy := (lo.X+hi.X)/2, (lo.Y+hi.Y)/2
	return Viewport{Origin: core.C(cx-w/2, cy-h/2), W: w, H: h}
}

// Pan returns the viewport moved by (dx, dy) cells.
func (v Viewport) Pan(dx, dy int) Viewport {
	v.Origin = v.Origin.Add(core.C(dx, dy))
	return v
}

// Cell maps a pixel of the unscaled image to its cell.
func (v Viewport) Cell(px, py int) core.Coordinate {
	return core.C(v.Origin.X+px, v.Origin.Y+py)
}

// Palette returns one colour per state. State 0 is black. Two-state rules
// draw live cells white; with more states the colours fade from white
// through yellow to red.
func Palette(states int) []color.RGBA {
	if states < 2 {
		states = 2
	}
	out := make([]color.RGBA, states)
	out[0] = color.RGBA{A: 255}
	out[1] = color.RGBA{R: 255, G: 255, B: 255, A: 255}
	if states == 2 {
		return out
	}
	yellow := color.RGBA{R: 255, G: 230, A: 255}
	red := color.RGBA{R: 200, G: 24, B: 24, A: 255}
	for s := 2; s < states; s++ {
		t := float64(s-2) / float64(max(states-3, 1))
		out[s] = lerp(yellow, red, t)
	}
	return out
}

func lerp(a, b color.RGBA, t float64) color.RGBA {
	mix := func(x, y uint8) uint8 { return uint8(float64(x) + (float64(y)-float64(x))*t) }
	return color.RGBA{R: mix(a.R, b.R), G: mix(a.G, b.G), B: mix(a.B, b.B), A: 255}
}

// Fill writes the viewport of g into buf, which must hold 4*W*H bytes.
// Cells are drawn in their actual state, so a strobing background shows.
// States past the end of the palette use its last colour.
func Fill(buf []byte, g *core.Grid, vp Viewport, palette []color.RGBA) {
	last := len(palette) - 1
	for py := 0; py < vp.H; py++ {
		for px := 0; px < vp.W; px++ {
			base := (py*vp.W + px) * 4
			if last < 0 {
				buf[base+0], buf[base+1], buf[base+2], buf[base+3] = 0, 0, 0, 0
				continue
			}
			col := palette[min(g.Actual(vp.Cell(px, py)), last)]
			buf[base+0] = col.R
			buf[base+1] = col.G
			buf[base+2] = col.B
			buf[base+3] = col.A
		}
	}
}
