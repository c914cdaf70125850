package game

import (
	"github.com/hajimehoshi/ebiten/v2"
)

// Layer is one visual stratum of the client. World-space layers render
// into a shared offscreen world buffer beneath the screen-space UI;
// both receive the camera and position their content with it.
type Layer interface {
	// Init wires bus subscriptions. Called once at registration.
	Init()
	// Tick ingests the per-tick diff. Layers with no tick-coupled
	// state implement it empty.
	Tick(diff *TickDiff)
	Render(dst *ebiten.Image, cam *Camera)
	// ShouldTransform reports whether the layer belongs to the world
	// buffer (true) or draws directly on the screen afterwards.
	ShouldTransform() bool
}

// Compositor owns the registered layers and the offscreen world
// buffer. Registration order is draw order within each group.
type Compositor struct {
	layers []Layer

	worldBuf *ebiten.Image
	w, h     int
}

func NewCompositor() *Compositor {
	return &Compositor{}
}

// Add registers and initialises a layer.
func (c *Compositor) Add(l Layer) {
	l.Init()
	c.layers = append(c.layers, l)
}

// Tick forwards the diff to every layer in registration order.
func (c *Compositor) Tick(diff *TickDiff) {
	for _, l := range c.layers {
		l.Tick(diff)
	}
}

// Render composites all layers: world layers into the offscreen
// buffer, one blit, then screen layers on top.
func (c *Compositor) Render(screen *ebiten.Image, cam *Camera) {
	b := screen.Bounds()
	if c.worldBuf == nil || c.w != b.Dx() || c.h != b.Dy() {
		c.w, c.h = b.Dx(), b.Dy()
		c.worldBuf = ebiten.NewImage(c.w, c.h)
	}

	c.worldBuf.Clear()
	for _, l := range c.layers {
		if l.ShouldTransform() {
			l.Render(c.worldBuf, cam)
		}
	}
	screen.DrawImage(c.worldBuf, nil)

	for _, l := range c.layers {
		if !l.ShouldTransform() {
			l.Render(screen, cam)
		}
	}
}
