package game

import (
	"image/color"
	"math"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"
)

// placedStructure is the client-side record of a structure. The
// authoritative list lives in the simulation; this mirrors confirmed
// build intents so the sandbox renders them immediately.
type placedStructure struct {
	Tile   TileRef
	Kind   StructureKind
	Owner  PlayerID
	Target TileRef
}

// StructuresLayer draws placed structures and runs ghost placement:
// a pending structure follows the cursor, buildability comes back
// through the throttled async query, and ranged structures lock an aim
// tile before the intent is sent.
type StructuresLayer struct {
	view    GameView
	bus     *Bus
	cam     *Camera
	me      PlayerID
	querier *BuildQuerier

	structures map[TileRef]placedStructure
	version    int // bumped on placement, consumed by the rail layer

	ghost     StructureKind // StructureNone = no ghost
	ghostTile TileRef
	hasGhost  bool

	site    TileRef // placement site awaiting an aim tile (ranged)
	hasSite bool

	cursorX, cursorY float64
}

func NewStructuresLayer(bus *Bus, view GameView, cam *Camera, me PlayerID) *StructuresLayer {
	return &StructuresLayer{
		view:       view,
		bus:        bus,
		cam:        cam,
		me:         me,
		querier:    NewBuildQuerier(view),
		structures: make(map[TileRef]placedStructure),
	}
}

func (l *StructuresLayer) Init() {
	l.bus.Subscribe(KindGhostChanged, func(e Event) {
		kind := e.(GhostChangedEvent).Kind
		if kind == l.ghost {
			return
		}
		l.ghost = kind
		l.hasSite = false
		l.querier.Invalidate()
		if kind != StructureNone {
			l.refreshGhostTile()
		}
	})
	l.bus.Subscribe(KindTapSelect, func(e Event) {
		ev := e.(TapSelectEvent)
		if l.ghost != StructureNone {
			l.onPlacementTap(ev.ScreenX, ev.ScreenY)
			return
		}
		l.onStructureTap(ev.ScreenX, ev.ScreenY)
	})
	l.bus.Subscribe(KindBuildIntent, func(e Event) {
		ev := e.(BuildIntentEvent)
		l.structures[ev.Tile] = placedStructure{
			Tile: ev.Tile, Kind: ev.Kind, Owner: l.me, Target: ev.Target,
		}
		l.version++
	})
}

// GhostActive reports whether placement currently owns taps.
func (l *StructuresLayer) GhostActive() bool { return l.ghost != StructureNone }

// Version counts placements, for collaborators caching derived data.
func (l *StructuresLayer) Version() int { return l.version }

// StructureAt returns the client-side structure record on a tile.
func (l *StructuresLayer) StructureAt(ref TileRef) (placedStructure, bool) {
	s, ok := l.structures[ref]
	return s, ok
}

// Structures iterates the placed structures.
func (l *StructuresLayer) Structures(fn func(placedStructure)) {
	for _, s := range l.structures {
		fn(s)
	}
}

// SetCursor feeds the frame's cursor position; the ghost follows it
// and re-queries buildability when it crosses onto a new tile.
func (l *StructuresLayer) SetCursor(x, y float64) {
	l.cursorX, l.cursorY = x, y
	if l.ghost != StructureNone {
		l.refreshGhostTile()
	}
}

func (l *StructuresLayer) refreshGhostTile() {
	wp := l.cam.ScreenToWorld(l.cursorX, l.cursorY)
	tx, ty := int(math.Floor(wp.X)), int(math.Floor(wp.Y))
	if !l.view.InBounds(tx, ty) {
		l.hasGhost = false
		return
	}
	ref := l.view.Ref(tx, ty)
	if l.hasGhost && ref == l.ghostTile {
		return
	}
	l.ghostTile = ref
	l.hasGhost = true
	l.querier.Request(ref)
}

func (l *StructuresLayer) onPlacementTap(sx, sy float64) {
	wp := l.cam.ScreenToWorld(sx, sy)
	tx, ty := int(math.Floor(wp.X)), int(math.Floor(wp.Y))
	if !l.view.InBounds(tx, ty) {
		return
	}
	ref := l.view.Ref(tx, ty)

	if l.hasSite {
		// Second tap of a ranged placement: ref is the aim tile.
		l.bus.Publish(BuildIntentEvent{Tile: l.site, Kind: l.ghost, Target: ref})
		l.clearGhost()
		return
	}

	if !l.buildAllowed(ref) {
		return
	}
	if RangedStructure(l.ghost) {
		l.site = ref
		l.hasSite = true
		return
	}
	l.bus.Publish(BuildIntentEvent{Tile: ref, Kind: l.ghost})
	l.clearGhost()
}

// onStructureTap requests an upgrade when the tap lands on one of the
// local player's structures.
func (l *StructuresLayer) onStructureTap(sx, sy float64) {
	wp := l.cam.ScreenToWorld(sx, sy)
	tx, ty := int(math.Floor(wp.X)), int(math.Floor(wp.Y))
	if !l.view.InBounds(tx, ty) {
		return
	}
	ref := l.view.Ref(tx, ty)
	if s, ok := l.structures[ref]; ok && s.Owner == l.me {
		l.bus.Publish(UpgradeIntentEvent{Tile: ref})
	}
}

func (l *StructuresLayer) clearGhost() {
	l.ghost = StructureNone
	l.hasSite = false
	l.hasGhost = false
	l.querier.Invalidate()
	l.bus.Publish(GhostChangedEvent{Kind: StructureNone})
}

// buildAllowed checks the latest query answer for the ghost kind at
// ref. No answer yet (or an answer for another tile) means not yet.
func (l *StructuresLayer) buildAllowed(ref TileRef) bool {
	tile, opts, ok := l.querier.Result()
	if !ok || tile != ref {
		return false
	}
	for _, o := range opts {
		if o.Kind == l.ghost {
			return o.Allowed
		}
	}
	return false
}

// Trajectory returns the preview line for a ranged placement waiting
// on its aim tile: from the chosen site to the tile under the cursor.
func (l *StructuresLayer) Trajectory() (from, to WorldPoint, ok bool) {
	if !l.hasSite {
		return WorldPoint{}, WorldPoint{}, false
	}
	fx, fy := tileCenter(l.view, l.site)
	wp := l.cam.ScreenToWorld(l.cursorX, l.cursorY)
	return WorldPoint{X: fx, Y: fy}, wp, true
}

func (l *StructuresLayer) Tick(*TickDiff) {
	l.querier.Poll()
}

func (l *StructuresLayer) Render(dst *ebiten.Image, cam *Camera) {
	for _, s := range l.structures {
		l.drawStructure(dst, cam, s.Tile, s.Kind, 255)
	}

	if l.ghost != StructureNone && l.hasGhost {
		ref := l.ghostTile
		if l.hasSite {
			ref = l.site
		}
		l.drawGhostFrame(dst, cam, ref)
		l.drawStructure(dst, cam, ref, l.ghost, 140)
	}
}

// drawGhostFrame outlines the ghost tile, green when buildable.
func (l *StructuresLayer) drawGhostFrame(dst *ebiten.Image, cam *Camera, ref TileRef) {
	col := color.RGBA{R: 220, G: 60, B: 60, A: 200}
	if l.hasSite || l.buildAllowed(ref) {
		col = color.RGBA{R: 80, G: 220, B: 80, A: 200}
	}
	x, y := l.view.XY(ref)
	sx, sy := cam.WorldToScreen(WorldPoint{X: float64(x), Y: float64(y)})
	side := float32(cam.Scale())
	vector.StrokeRect(dst, float32(sx), float32(sy), side, side, 1.5, col, false)
}

// drawStructure renders one structure glyph at a tile center.
func (l *StructuresLayer) drawStructure(dst *ebiten.Image, cam *Camera, ref TileRef, kind StructureKind, alpha uint8) {
	cx, cy := tileCenter(l.view, ref)
	sx, sy := cam.WorldToScreen(WorldPoint{X: cx, Y: cy})
	r := float32(0.3 * cam.Scale())
	if r < 2.5 {
		r = 2.5
	}
	fx, fy := float32(sx), float32(sy)

	body := color.RGBA{R: 225, G: 225, B: 210, A: alpha}
	edge := color.RGBA{R: 40, G: 40, B: 40, A: alpha}

	switch kind {
	case StructureCity:
		vector.FillRect(dst, fx-r, fy-r, 2*r, 2*r, body, false)
		vector.StrokeRect(dst, fx-r, fy-r, 2*r, 2*r, 1.0, edge, false)
	case StructurePort:
		vector.FillRect(dst, fx-r, fy-r*0.5, 2*r, r, body, false)
		vector.FillCircle(dst, fx, fy-r*0.6, r*0.45, body, false)
	case StructureDefensePost:
		vector.StrokeCircle(dst, fx, fy, r, 1.5, body, false)
		vector.FillCircle(dst, fx, fy, r*0.35, body, false)
	case StructureMissileSilo:
		vector.FillCircle(dst, fx, fy, r, body, false)
		vector.FillCircle(dst, fx, fy, r*0.4, color.RGBA{R: 200, G: 60, B: 40, A: alpha}, false)
	case StructureSAMLauncher:
		vector.StrokeLine(dst, fx-r, fy+r, fx, fy-r, 1.5, body, false)
		vector.StrokeLine(dst, fx, fy-r, fx+r, fy+r, 1.5, body, false)
		vector.StrokeLine(dst, fx-r, fy+r, fx+r, fy+r, 1.5, body, false)
	}
}

func (l *StructuresLayer) ShouldTransform() bool { return true }
