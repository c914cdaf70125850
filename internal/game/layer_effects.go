package game

import (
	"image/color"
	"math"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"
)

const (
	pingDuration  = 1.5 // seconds
	flashDuration = 0.6
)

// worldEffect is one transient animation anchored in world space.
type worldEffect struct {
	x, y  float64
	age   float64
	life  float64
	flash bool // flash = filled burst, otherwise expanding ping ring
}

// EffectsLayer draws transient world-space feedback: ping rings from
// the ping menu, attack flashes, and the trajectory preview while a
// ranged placement waits for its aim tile.
type EffectsLayer struct {
	bus  *Bus
	view GameView
	cam  *Camera

	effects []worldEffect

	// trajectory supplies the ranged-placement preview line, wired to
	// the structures layer by the orchestrator.
	trajectory func() (from, to WorldPoint, ok bool)
}

func NewEffectsLayer(bus *Bus, view GameView, cam *Camera) *EffectsLayer {
	return &EffectsLayer{bus: bus, view: view, cam: cam}
}

// SetTrajectorySource installs the preview-line provider.
func (l *EffectsLayer) SetTrajectorySource(fn func() (WorldPoint, WorldPoint, bool)) {
	l.trajectory = fn
}

func (l *EffectsLayer) Init() {
	l.bus.Subscribe(KindPingMenu, func(e Event) {
		ev := e.(PingMenuEvent)
		wp := l.cam.ScreenToWorld(ev.ScreenX, ev.ScreenY)
		l.effects = append(l.effects, worldEffect{x: wp.X, y: wp.Y, life: pingDuration})
	})
	l.bus.Subscribe(KindAttackIntent, func(e Event) {
		ev := e.(AttackIntentEvent)
		cx, cy := tileCenter(l.view, ev.Tile)
		l.effects = append(l.effects, worldEffect{x: cx, y: cy, life: flashDuration, flash: true})
	})
}

// Step ages the running effects by frame time and drops finished ones.
func (l *EffectsLayer) Step(dt float64) {
	kept := l.effects[:0]
	for _, e := range l.effects {
		e.age += dt
		if e.age < e.life {
			kept = append(kept, e)
		}
	}
	l.effects = kept
}

func (l *EffectsLayer) Tick(*TickDiff) {}

func (l *EffectsLayer) Render(dst *ebiten.Image, cam *Camera) {
	for _, e := range l.effects {
		sx, sy := cam.WorldToScreen(WorldPoint{X: e.x, Y: e.y})
		frac := e.age / e.life
		fade := uint8(255 * (1 - frac))
		if e.flash {
			r := float32(cam.Scale()) * float32(0.4+0.5*frac)
			vector.FillCircle(dst, float32(sx), float32(sy), r,
				color.RGBA{R: 255, G: 170, B: 40, A: fade}, false)
			continue
		}
		r := float32(cam.Scale()) * float32(0.3+2.2*frac)
		vector.StrokeCircle(dst, float32(sx), float32(sy), r, 2.0,
			color.RGBA{R: 255, G: 255, B: 255, A: fade}, false)
	}

	if l.trajectory != nil {
		if from, to, ok := l.trajectory(); ok {
			l.drawTrajectory(dst, cam, from, to)
		}
	}
}

// drawTrajectory dashes an arced preview from launch site to aim point.
func (l *EffectsLayer) drawTrajectory(dst *ebiten.Image, cam *Camera, from, to WorldPoint) {
	x1, y1 := cam.WorldToScreen(from)
	x2, y2 := cam.WorldToScreen(to)
	col := color.RGBA{R: 255, G: 120, B: 60, A: 180}

	// Quadratic arc lifted perpendicular to the chord.
	mx, my := (x1+x2)/2, (y1+y2)/2
	dist := math.Hypot(x2-x1, y2-y1)
	lift := dist * 0.2
	cxp, cyp := mx, my-lift

	const segs = 16
	px, py := x1, y1
	for i := 1; i <= segs; i++ {
		t := float64(i) / segs
		it := 1 - t
		qx := it*it*x1 + 2*it*t*cxp + t*t*x2
		qy := it*it*y1 + 2*it*t*cyp + t*t*y2
		if i%2 == 1 {
			vector.StrokeLine(dst, float32(px), float32(py), float32(qx), float32(qy), 1.5, col, false)
		}
		px, py = qx, qy
	}
	vector.StrokeCircle(dst, float32(x2), float32(y2), 4, 1.5, col, false)
}

func (l *EffectsLayer) ShouldTransform() bool { return true }
