//go:build ebiten

package ui

import (
	"image"
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/text"
	"golang.org/x/image/font/basicfont"
)

// HUD renders the status panel to the right of the simulation view. Its
// only control is the speed, adjusted with the +/- buttons.
type HUD struct {
	width      int
	panel      *ebiten.Image
	lastHeight int
	status     Status

	onSpeed      func(delta int)
	panelOffsetX int
	minusRect    image.Rectangle
	plusRect     image.Rectangle

	pixel *ebiten.Image
}

// NewHUD constructs a HUD of the given width. onSpeed is called with -1 or
// +1 when a speed button is clicked.
func NewHUD(width int, onSpeed func(delta int)) *HUD {
	if width < 0 {
		width = 0
	}
	h := &HUD{width: width, onSpeed: onSpeed}
	if width > 0 {
		h.pixel = ebiten.NewImage(1, 1)
		h.pixel.Fill(color.White)
	}
	plus := image.Rect(width-panelPadding-buttonSize, panelPadding, width-panelPadding, panelPadding+buttonSize)
	h.plusRect = plus
	h.minusRect = image.Rect(plus.Min.X-buttonGap-buttonSize, plus.Min.Y, plus.Min.X-buttonGap, plus.Max.Y)
	return h
}

// Width is the panel width in pixels.
func (h *HUD) Width() int {
	if h == nil {
		return 0
	}
	return h.width
}

// Update stores the status to show and handles clicks on the panel.
func (h *HUD) Update(panelOffsetX int, st Status) {
	if h == nil {
		return
	}
	h.panelOffsetX = panelOffsetX
	h.status = st
	if h.onSpeed == nil || !inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft) {
		return
	}
	mx, my := ebiten.CursorPosition()
	px := mx - h.panelOffsetX
	switch {
	case pointInRect(px, my, h.minusRect):
		h.onSpeed(-1)
	case pointInRect(px, my, h.plusRect):
		h.onSpeed(1)
	}
}

// Draw paints the panel at offsetX with the given height.
func (h *HUD) Draw(screen *ebiten.Image, offsetX, height int) {
	if h == nil || h.width <= 0 || height <= 0 {
		return
	}
	if h.panel == nil || h.lastHeight != height {
		h.panel = ebiten.NewImage(h.width, height)
		h.lastHeight = height
	}
	h.panel.Fill(color.RGBA{R: 16, G: 16, B: 20, A: 255})
	h.drawLines(height)
	h.drawButton(h.minusRect, "-")
	h.drawButton(h.plusRect, "+")

	op := &ebiten.DrawImageOptions{}
	op.GeoM.Translate(float64(offsetX), 0)
	screen.DrawImage(h.panel, op)
}

func (h *HUD) drawLines(height int) {
	face := basicfont.Face7x13
	cols := (h.width - 2*panelPadding) / face.Advance
	y := panelPadding + headerBaseline
	for i, line := range Lines(h.status, cols) {
		if y > height-panelPadding {
			return
		}
		col := color.RGBA{R: 220, G: 220, B: 230, A: 255}
		switch line.Style {
		case Heading:
			col = color.RGBA{R: 200, G: 200, B: 120, A: 255}
		case Dim:
			col = color.RGBA{R: 140, G: 140, B: 150, A: 255}
		}
		// The first line shares its row with the speed buttons.
		if i == 0 {
			text.Draw(h.panel, line.Text, face, panelPadding, y, col)
			y += buttonSize + 4
			continue
		}
		text.Draw(h.panel, line.Text, face, panelPadding, y, col)
		y += lineHeight
	}
}

func (h *HUD) drawButton(rect image.Rectangle, label string) {
	if h.pixel == nil {
		return
	}
	bg := color.RGBA{R: 54, G: 56, B: 64, A: 255}
	fg := color.RGBA{R: 230, G: 230, B: 240, A: 255}
	op := &ebiten.DrawImageOptions{}
	op.GeoM.Scale(float64(rect.Dx()), float64(rect.Dy()))
	op.GeoM.Translate(float64(rect.Min.X), float64(rect.Min.Y))
	op.ColorScale.ScaleWithColor(bg)
	h.panel.DrawImage(h.pixel, op)

	face := basicfont.Face7x13
	bounds := text.BoundString(face, label)
	x := rect.Min.X + (rect.Dx()-bounds.Dx())/2
	y := rect.Min.Y + (rect.Dy()-bounds.Dy())/2 + bounds.Dy()
	text.Draw(h.panel, label, face, x, y, fg)
}

func pointInRect(x, y int, rect image.Rectangle) bool {
	return x >= rect.Min.X && x < rect.Max.X && y >= rect.Min.Y && y < rect.Max.Y
}

const (
	panelPadding   = 12
	lineHeight     = 16
	buttonSize     = 24
	buttonGap      = 6
	headerBaseline = 18
)
