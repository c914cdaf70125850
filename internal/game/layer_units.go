package game

import (
	"image/color"
	"math"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"
)

// unitPickRadius is how close a tap must land to a unit, in world tiles.
const unitPickRadius = 0.75

// UnitsLayer draws mobile units at their interpolated plan positions
// and owns the unit selection: tap on a unit selects it, tap elsewhere
// with an own warship selected orders a move.
type UnitsLayer struct {
	view GameView
	bus  *Bus
	cam  *Camera
	pal  *Palette
	me   PlayerID

	selected int // unit id, -1 = none

	tick     int64
	progress float64
	snap     bool

	// tapBlocked suppresses selection taps while another consumer
	// (ghost placement) owns the pointer.
	tapBlocked func() bool
}

func NewUnitsLayer(bus *Bus, view GameView, cam *Camera, me PlayerID) *UnitsLayer {
	return &UnitsLayer{
		view:     view,
		bus:      bus,
		cam:      cam,
		pal:      BuildPalette(view),
		me:       me,
		selected: -1,
	}
}

// SetTapBlocked installs the pointer-ownership check.
func (l *UnitsLayer) SetTapBlocked(fn func() bool) { l.tapBlocked = fn }

func (l *UnitsLayer) Init() {
	l.bus.Subscribe(KindTapSelect, func(e Event) {
		if l.tapBlocked != nil && l.tapBlocked() {
			return
		}
		ev := e.(TapSelectEvent)
		l.onTap(ev.ScreenX, ev.ScreenY)
	})
}

func (l *UnitsLayer) onTap(sx, sy float64) {
	wp := l.cam.ScreenToWorld(sx, sy)

	if id, ok := l.unitAt(wp); ok {
		if id != l.selected {
			l.selected = id
			l.bus.Publish(SelectionChangedEvent{UnitIDs: []int{id}})
		}
		return
	}

	// Empty tap: an own selected warship takes it as a move order.
	if l.selected >= 0 {
		if u, ok := l.view.Unit(l.selected); ok && u.Kind == UnitWarship && u.Owner == l.me {
			tx, ty := int(math.Floor(wp.X)), int(math.Floor(wp.Y))
			if l.view.InBounds(tx, ty) {
				l.bus.Publish(MoveWarshipEvent{UnitID: l.selected, Target: l.view.Ref(tx, ty)})
				return
			}
		}
		l.selected = -1
		l.bus.Publish(SelectionChangedEvent{})
	}
}

// unitAt finds the nearest active unit within the pick radius.
func (l *UnitsLayer) unitAt(wp WorldPoint) (int, bool) {
	bestID, bestD := -1, unitPickRadius
	for _, u := range l.view.Units() {
		if !u.Active {
			continue
		}
		x, y := l.unitPos(u)
		d := math.Hypot(x-wp.X, y-wp.Y)
		if d <= bestD {
			bestID, bestD = u.ID, d
		}
	}
	return bestID, bestID >= 0
}

func (l *UnitsLayer) unitPos(u UnitSnapshot) (float64, float64) {
	if l.snap {
		return SnapUnitPos(l.view, u, l.tick)
	}
	return SampleUnitPos(l.view, u, l.tick, l.progress)
}

func (l *UnitsLayer) Tick(diff *TickDiff) {
	l.tick = diff.Tick
	if diff.RosterChanged {
		l.pal = BuildPalette(l.view)
	}
	if l.selected >= 0 {
		if _, ok := l.view.Unit(l.selected); !ok {
			l.selected = -1
			l.bus.Publish(SelectionChangedEvent{})
		}
	}
}

// SetFrame supplies the frame's interpolation inputs. snap disables
// sub-step blending while the client catches up on a tick backlog.
func (l *UnitsLayer) SetFrame(progress float64, snap bool) {
	l.progress = progress
	l.snap = snap
}

func (l *UnitsLayer) Render(dst *ebiten.Image, cam *Camera) {
	for _, u := range l.view.Units() {
		if !u.Active {
			continue
		}
		x, y := l.unitPos(u)
		sx, sy := cam.WorldToScreen(WorldPoint{X: x, Y: y})
		r := float32(0.35 * cam.Scale())
		if r < 2 {
			r = 2
		}

		entry := l.pal.Entry(u.Owner)
		fill := color.RGBA{R: entry.Fill.R, G: entry.Fill.G, B: entry.Fill.B, A: 255}
		outline := color.RGBA{R: entry.Border.R, G: entry.Border.G, B: entry.Border.B, A: 255}

		switch u.Kind {
		case UnitWarship:
			vector.FillCircle(dst, float32(sx), float32(sy), r*1.2, fill, false)
			vector.StrokeCircle(dst, float32(sx), float32(sy), r*1.2, 1.0, outline, false)
		case UnitTradeShip:
			vector.FillRect(dst, float32(sx)-r*0.8, float32(sy)-r*0.8, r*1.6, r*1.6, fill, false)
		default:
			vector.FillCircle(dst, float32(sx), float32(sy), r*0.9, fill, false)
		}

		if u.ID == l.selected {
			vector.StrokeCircle(dst, float32(sx), float32(sy), r*1.8, 1.5,
				color.RGBA{R: 255, G: 255, B: 255, A: 220}, false)
			l.drawRemainingPath(dst, cam, u)
		}
	}
}

// drawRemainingPath dashes the selected unit's plan from its current
// position to the destination.
func (l *UnitsLayer) drawRemainingPath(dst *ebiten.Image, cam *Camera, u UnitSnapshot) {
	if len(u.Path) == 0 || u.TicksPerStep <= 0 {
		return
	}
	step := (l.tick - u.PathStartTick) / u.TicksPerStep
	if step < 0 {
		step = 0
	}
	if step >= int64(len(u.Path)) {
		return
	}

	col := color.RGBA{R: 255, G: 255, B: 255, A: 90}
	px, py := l.unitPos(u)
	x1, y1 := cam.WorldToScreen(WorldPoint{X: px, Y: py})
	for i := step + 1; i < int64(len(u.Path)); i++ {
		cx, cy := tileCenter(l.view, u.Path[i])
		x2, y2 := cam.WorldToScreen(WorldPoint{X: cx, Y: cy})
		dashedLine(dst, float32(x1), float32(y1), float32(x2), float32(y2), 1.0, col)
		x1, y1 = x2, y2
	}
}

// dashedLine strokes a dashed segment, 8 px on, 6 px off.
func dashedLine(dst *ebiten.Image, x1, y1, x2, y2, thickness float32, col color.RGBA) {
	const dashLen, gapLen = float32(8), float32(6)
	dx, dy := x2-x1, y2-y1
	total := float32(math.Hypot(float64(dx), float64(dy)))
	if total < 1 {
		return
	}
	ndx, ndy := dx/total, dy/total
	drawn := float32(0)
	for drawn < total {
		segEnd := drawn + dashLen
		if segEnd > total {
			segEnd = total
		}
		vector.StrokeLine(dst,
			x1+ndx*drawn, y1+ndy*drawn,
			x1+ndx*segEnd, y1+ndy*segEnd,
			thickness, col, false)
		drawn = segEnd + gapLen
	}
}

func (l *UnitsLayer) ShouldTransform() bool { return true }
