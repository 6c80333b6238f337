//go:build ebiten

package app

import (
	"log/slog"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"

	"casearch/internal/config"
	"casearch/internal/core"
	"casearch/internal/patterns"
	"casearch/internal/render"
	"casearch/internal/sim"
	"casearch/internal/ui"
)

const (
	hudWidth = 240
	panStep  = 8
)

type identified struct {
	pattern *patterns.Pattern
	err     error
}

// Game adapts a simulator to the ebiten.Game interface.
type Game struct {
	sm      *sim.Simulator
	initial *sim.Simulator
	cfg     config.ViewerConfig
	log     *slog.Logger

	view    render.Viewport
	painter *render.GridPainter
	overlay *ui.Overlay
	hud     *ui.HUD

	tick     *core.Interval
	tps      int
	paused   bool
	tickOnce bool
	seed     int64

	maxPeriod int
	pending   chan identified
	result    *patterns.Pattern
	message   string
}

// New constructs a Game showing sm. Reset returns to the state sm is in
// now.
func New(sm *sim.Simulator, cfg config.ViewerConfig, maxPeriod int, log *slog.Logger) *Game {
	g := &Game{
		sm:        sm,
		initial:   sm.Clone(),
		cfg:       cfg,
		log:       log,
		view:      render.Centred(sm.Grid(), cfg.Width, cfg.Height),
		painter:   render.NewGridPainter(cfg.Width, cfg.Height, sm.Rule().NumStates()),
		overlay:   ui.NewOverlay(cfg.Scale),
		tps:       cfg.TPS,
		tick:      core.NewFixedStep(cfg.TPS),
		maxPeriod: maxPeriod,
		seed:      time.Now().UnixNano(),
	}
	g.hud = ui.NewHUD(hudWidth, g.changeSpeed)
	return g
}

// Reset restores the starting pattern.
func (g *Game) Reset() {
	g.sm = g.initial.Clone()
	g.afterReplace()
}

// Soup replaces the grid with a random soup.
func (g *Game) Soup(seed int64) {
	g.seed = seed
	sm := sim.New(g.sm.Rule().Clone())
	sm.Insert(Soup(sm.Rule(), g.cfg.SoupSize, g.cfg.SoupDensity, seed), core.Coordinate{})
	g.sm = sm
	g.afterReplace()
	g.log.Debug("soup", "seed", seed, "population", sm.Population())
}

func (g *Game) afterReplace() {
	g.view = render.Centred(g.sm.Grid(), g.cfg.Width, g.cfg.Height)
	g.overlay.Reset()
	g.tickOnce = false
	g.result, g.message, g.pending = nil, "", nil
}

func (g *Game) changeSpeed(delta int) {
	g.tps = min(max(g.tps+delta*5, 1), 240)
	g.tick.SetTPS(g.tps)
}

// identify classifies the current pattern in the background on a copy.
func (g *Game) identify() {
	if g.pending != nil {
		return
	}
	ch := make(chan identified, 1)
	g.pending = ch
	g.result, g.message = nil, "Identifying..."
	clone, maxPeriod := g.sm.Clone(), g.maxPeriod
	go func() {
		p, err := clone.Identify(maxPeriod, nil)
		ch <- identified{pattern: p, err: err}
	}()
}

func (g *Game) collect() {
	if g.pending == nil {
		return
	}
	select {
	case res := <-g.pending:
		g.pending = nil
		switch {
		case res.err != nil:
			g.message = res.err.Error()
			g.log.Warn("identify failed", "err", res.err)
		case res.pattern == nil:
			g.message = "Unidentified"
		default:
			g.result, g.message = res.pattern, ""
			g.log.Info("identified", "pattern", res.pattern.String(), "rle", res.pattern.RLE())
		}
	default:
	}
}

// Update handles per-frame logic and advances the simulation.
func (g *Game) Update() error {
	if inpututil.IsKeyJustPressed(ebiten.KeyQ) || inpututil.IsKeyJustPressed(ebiten.KeyEscape) {
		return ebiten.Termination
	}
	if inpututil.IsKeyJustPressed(ebiten.KeySpace) {
		g.paused = !g.paused
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyEnter) {
		g.paused = false
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyN) {
		g.tickOnce = true
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyR) {
		g.Reset()
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyS) {
		g.Soup(time.Now().UnixNano())
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyI) {
		g.identify()
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyEqual) {
		g.changeSpeed(1)
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyMinus) {
		g.changeSpeed(-1)
	}
	g.pan()
	g.overlay.Update()
	g.collect()

	if (!g.paused && g.tick.Due()) || g.tickOnce {
		g.sm.Step()
		g.overlay.Observe(g.view, g.sm)
		g.tickOnce = false
	}

	g.hud.Update(g.cfg.Width*g.cfg.Scale, ui.Status{
		Rule:       g.sm.Rule(),
		Generation: g.sm.Generation(),
		Population: g.sm.Population(),
		TPS:        g.tps,
		Paused:     g.paused,
		Result:     g.result,
		Message:    g.message,
	})
	return nil
}

func (g *Game) pan() {
	switch {
	case inpututil.IsKeyJustPressed(ebiten.KeyArrowLeft):
		g.view = g.view.Pan(-panStep, 0)
	case inpututil.IsKeyJustPressed(ebiten.KeyArrowRight):
		g.view = g.view.Pan(panStep, 0)
	case inpututil.IsKeyJustPressed(ebiten.KeyArrowUp):
		g.view = g.view.Pan(0, -panStep)
	case inpututil.IsKeyJustPressed(ebiten.KeyArrowDown):
		g.view = g.view.Pan(0, panStep)
	case inpututil.IsKeyJustPressed(ebiten.KeyC):
		g.view = render.Centred(g.sm.Grid(), g.cfg.Width, g.cfg.Height)
	}
}

// Draw renders the current simulation state.
func (g *Game) Draw(screen *ebiten.Image) {
	g.painter.Blit(screen, g.sm.Grid(), g.view, g.cfg.Scale)
	g.overlay.Draw(screen, g.view, g.sm)
	g.hud.Draw(screen, g.cfg.Width*g.cfg.Scale, g.cfg.Height*g.cfg.Scale)
}

// Layout returns the logical screen size.
func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	return g.cfg.Width*g.cfg.Scale + g.hud.Width(), g.cfg.Height * g.cfg.Scale
}
