//go:build ebiten

package ui

import (
	"image/color"
	"math"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"

	"casearch/internal/core"
	"casearch/internal/render"
	"casearch/internal/sim"
)

// heatDecay is the factor change highlights fade by each generation.
const heatDecay = 0.8

// Overlay draws optional debugging visuals on top of the grid: the edge of
// a bounded grid, the engine's frontier and a fading trail of changes.
type Overlay struct {
	scale        int
	showBorder   bool
	showFrontier bool
	showHeat     bool

	maskImg *ebiten.Image
	maskBuf []byte

	heat []float32
	prev *core.Grid

	pixel *ebiten.Image
}

// NewOverlay constructs a new overlay instance. The border is shown by
// default.
func NewOverlay(scale int) *Overlay {
	o := &Overlay{scale: max(scale, 1), showBorder: true}
	o.pixel = ebiten.NewImage(1, 1)
	o.pixel.Fill(color.White)
	return o
}

// Update toggles the layers.
func (o *Overlay) Update() {
	if inpututil.IsKeyJustPressed(ebiten.KeyDigit1) {
		o.showBorder = !o.showBorder
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyDigit2) {
		o.showFrontier = !o.showFrontier
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyDigit3) {
		o.showHeat = !o.showHeat
		o.heat = nil
		o.prev = nil
	}
}

// Observe records a generation for the change trail. Call it after every
// step.
func (o *Overlay) Observe(vp render.Viewport, sm *sim.Simulator) {
	if !o.showHeat {
		return
	}
	cur := sm.Snapshot()
	if o.prev != nil {
		o.heat = UpdateHeat(o.heat, vp, o.prev, cur, heatDecay)
	}
	o.prev = cur
}

// Reset forgets the change trail, e.g. after the grid is replaced.
func (o *Overlay) Reset() {
	o.heat = nil
	o.prev = nil
}

// Draw renders the enabled layers onto screen.
func (o *Overlay) Draw(screen *ebiten.Image, vp render.Viewport, sm *sim.Simulator) {
	if vp.W <= 0 || vp.H <= 0 {
		return
	}
	total := vp.W * vp.H
	if o.maskImg == nil || o.maskImg.Bounds().Dx() != vp.W || o.maskImg.Bounds().Dy() != vp.H {
		o.maskImg = ebiten.NewImage(vp.W, vp.H)
		o.maskBuf = make([]byte, 4*total)
	}

	if o.showHeat && len(o.heat) == total {
		o.drawMask(screen, o.heat, color.RGBA{R: 255, G: 120, B: 40})
	}
	if o.showFrontier {
		o.drawMask(screen, FrontierMask(vp, sm.Frontier()), color.RGBA{R: 64, G: 164, B: 223})
	}
	if o.showBorder {
		o.drawBorder(screen, vp, sm.Rule().Bounded())
	}
}

func (o *Overlay) drawBorder(screen *ebiten.Image, vp render.Viewport, b *core.BoundedGrid) {
	rect, ok := BorderRect(vp, b)
	if !ok {
		return
	}
	s := float64(o.scale)
	x0, y0 := float64(rect.Min.X)*s, float64(rect.Min.Y)*s
	x1, y1 := float64(rect.Max.X)*s, float64(rect.Max.Y)*s
	col := color.RGBA{R: 90, G: 200, B: 120, A: 200}
	if b.Kind == core.Plane {
		col = color.RGBA{R: 200, G: 90, B: 90, A: 200}
	}
	o.drawLine(screen, x0, y0, x1, y0, 1, col)
	o.drawLine(screen, x1, y0, x1, y1, 1, col)
	o.drawLine(screen, x1, y1, x0, y1, 1, col)
	o.drawLine(screen, x0, y1, x0, y0, 1, col)
}

func (o *Overlay) drawLine(screen *ebiten.Image, x1, y1, x2, y2, thickness float64, col color.RGBA) {
	if o.pixel == nil || thickness <= 0 {
		return
	}
	dx := x2 - x1
	dy := y2 - y1
	length := math.Hypot(dx, dy)
	if length <= 1e-4 {
		return
	}
	op := &ebiten.DrawImageOptions{}
	op.GeoM.Scale(length, thickness)
	op.GeoM.Translate(0, -thickness/2)
	op.GeoM.Rotate(math.Atan2(dy, dx))
	op.GeoM.Translate(x1, y1)
	op.ColorScale.ScaleWithColor(col)
	screen.DrawImage(o.pixel, op)
}

func (o *Overlay) drawMask(screen *ebiten.Image, mask []float32, tint color.RGBA) {
	if len(mask)*4 != len(o.maskBuf) {
		return
	}
	const (
		maxAlpha      = 140.0
		glowBase      = 0.35
		glowRange     = 0.65
		intensityBias = 0.75
	)

	for i := range mask {
		base := i * 4
		intensity := clamp01(float64(mask[i]))
		if intensity == 0 {
			o.maskBuf[base+0] = 0
			o.maskBuf[base+1] = 0
			o.maskBuf[base+2] = 0
			o.maskBuf[base+3] = 0
			continue
		}

		alpha := math.Round(maxAlpha * math.Pow(intensity, intensityBias))
		glow := glowBase + glowRange*math.Sqrt(intensity)

		// WritePixels takes premultiplied alpha.
		o.maskBuf[base+0] = scaleColorComponent(tint.R, glow*alpha/255)
		o.maskBuf[base+1] = scaleColorComponent(tint.G, glow*alpha/255)
		o.maskBuf[base+2] = scaleColorComponent(tint.B, glow*alpha/255)
		o.maskBuf[base+3] = uint8(alpha)
	}
	o.maskImg.WritePixels(o.maskBuf)
	op := &ebiten.DrawImageOptions{}
	op.GeoM.Scale(float64(o.scale), float64(o.scale))
	screen.DrawImage(o.maskImg, op)
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func scaleColorComponent(value uint8, factor float64) uint8 {
	scaled := math.Round(float64(value) * factor)
	if scaled < 0 {
		return 0
	}
	if scaled > 255 {
		return 255
	}
	return uint8(scaled)
}
