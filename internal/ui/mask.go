package ui

import (
	"image"

	"casearch/internal/core"
	"casearch/internal/render"
)

// FrontierMask marks the cells of vp that are in cells.
func FrontierMask(vp render.Viewport, cells map[core.Coordinate]struct{}) []float32 {
	mask := make([]float32, vp.W*vp.H)
	for c := range cells {
		px, py := c.X-vp.Origin.X, c.Y-vp.Origin.Y
		if px < 0 || py < 0 || px >= vp.W || py >= vp.H {
			continue
		}
		mask[py*vp.W+px] = 1
	}
	return mask
}

// UpdateHeat fades heat by decay and sets every cell of vp whose actual
// state differs between prev and cur back to 1. heat is reallocated when
// its size does not match vp.
func UpdateHeat(heat []float32, vp render.Viewport, prev, cur *core.Grid, decay float32) []float32 {
	if len(heat) != vp.W*vp.H {
		heat = make([]float32, vp.W*vp.H)
	}
	for py := 0; py < vp.H; py++ {
		for px := 0; px < vp.W; px++ {
			i := py*vp.W + px
			c := vp.Cell(px, py)
			if prev.Actual(c) != cur.Actual(c) {
				heat[i] = 1
				continue
			}
			heat[i] *= decay
			if heat[i] < 0.02 {
				heat[i] = 0
			}
		}
	}
	return heat
}

// BorderRect returns the bounded grid's extent in viewport pixels. An
// unbounded axis spans the whole viewport. ok is false without a bound.
func BorderRect(vp render.Viewport, b *core.BoundedGrid) (image.Rectangle, bool) {
	if b == nil {
		return image.Rectangle{}, false
	}
	x0, x1 := 0, vp.W
	if b.Width > 0 {
		x0, x1 = -vp.Origin.X, b.Width-vp.Origin.X
	}
	y0, y1 := 0, vp.H
	if b.Height > 0 {
		y0, y1 = -vp.Origin.Y, b.Height-vp.Origin.Y
	}
	return image.Rect(x0, y0, x1, y1), true
}
