package game

import (
	"github.com/hajimehoshi/ebiten/v2"
)

// TerritoryLayer adapts the territory engine to the layer stack and
// routes the bus events that change how territory is displayed.
type TerritoryLayer struct {
	engine TerritoryRenderer
	bus    *Bus
}

func NewTerritoryLayer(bus *Bus, engine TerritoryRenderer) *TerritoryLayer {
	return &TerritoryLayer{engine: engine, bus: bus}
}

func (l *TerritoryLayer) Init() {
	l.bus.Subscribe(KindAlternateView, func(e Event) {
		l.engine.SetAlternateView(e.(AlternateViewEvent).Enabled)
	})
	l.bus.Subscribe(KindHoverPlayer, func(e Event) {
		l.engine.SetHover(e.(HoverPlayerEvent).ID)
	})
	l.bus.Subscribe(KindRefreshGraphics, func(Event) {
		l.engine.RefreshPalette()
		l.engine.MarkAllDirty()
	})
}

func (l *TerritoryLayer) Tick(diff *TickDiff) {
	l.engine.Tick(diff)
}

// SetTickProgress forwards the frame's fractional tick progress.
func (l *TerritoryLayer) SetTickProgress(p float64) {
	l.engine.SetTickProgress(p)
}

func (l *TerritoryLayer) Render(dst *ebiten.Image, cam *Camera) {
	l.engine.Render(dst, cam, true)
}

func (l *TerritoryLayer) ShouldTransform() bool { return true }
