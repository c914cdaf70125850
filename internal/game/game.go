package game

import (
	"fmt"
	"math"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
)

const (
	defaultViewW = 1280
	defaultViewH = 720

	// Simulation cadence: the sandbox view advances this many ticks per
	// realtime second at replay speed 1.
	ticksPerSecond = 10.0

	frameDT = 1.0 / 60.0
)

// TickSource extends GameView with the drive and pump hooks the
// orchestrator needs. MemView implements it for the sandbox; a
// transport adapter would in production.
type TickSource interface {
	GameView
	AdvanceTick() *TickDiff
	FlushQueries()
}

// unitMover is the optional sandbox hook for applying warship orders
// locally.
type unitMover interface {
	MoveUnit(id int, path []TileRef, ticksPerStep int64)
}

// mouseID is the pointer id of the mouse in the resolver's pointer map.
const mouseID = -1

// Client is the playable client: ebiten.Game implementation owning the
// camera, bus, input resolver, layer stack, and the tick pump.
type Client struct {
	view TickSource
	me   PlayerID

	bus      *Bus
	cam      *Camera
	kb       *Keybinds
	resolver *InputResolver

	comp       *Compositor
	territory  *TerritoryLayer
	units      *UnitsLayer
	structures *StructuresLayer
	effects    *EffectsLayer
	hud        *HUDLayer
	perf       *PerfMonitor

	simSpeed  float64
	tickAccum float64
	catchUp   bool

	mouseDown  bool
	lastCX     int
	lastCY     int
	touchIDs   []ebiten.TouchID
	viewW      int
	viewH      int
}

// NewClient assembles the full layer stack over the given view.
func NewClient(view TickSource, me PlayerID) (*Client, error) {
	if view.MapWidth() <= 0 || view.MapHeight() <= 0 {
		return nil, fmt.Errorf("client: degenerate map %dx%d", view.MapWidth(), view.MapHeight())
	}

	bus := NewBus()
	cam := NewCamera(defaultViewW, defaultViewH, view.MapWidth(), view.MapHeight())
	kb := LoadKeybinds(KeybindsPath())

	engine := NewTerritoryRenderer(view, me, false)

	c := &Client{
		view:     view,
		me:       me,
		bus:      bus,
		cam:      cam,
		kb:       kb,
		resolver: NewInputResolver(bus, kb, cam, view),
		comp:     NewCompositor(),
		simSpeed: 1,
		viewW:    defaultViewW,
		viewH:    defaultViewH,
	}

	c.territory = NewTerritoryLayer(bus, engine)
	c.structures = NewStructuresLayer(bus, view, cam, me)
	c.units = NewUnitsLayer(bus, view, cam, me)
	c.effects = NewEffectsLayer(bus, view, cam)
	c.hud = NewHUDLayer(bus, view, me, engine.Backend())
	c.perf = NewPerfMonitor(bus, engine.Backend())

	c.units.SetTapBlocked(c.structures.GhostActive)
	c.effects.SetTrajectorySource(c.structures.Trajectory)

	// World-space layers in draw order, then the screen-space UI.
	c.comp.Add(c.territory)
	c.comp.Add(NewRailLayer(view, c.structures))
	c.comp.Add(c.structures)
	c.comp.Add(c.units)
	c.comp.Add(c.effects)
	c.comp.Add(NewEventLog(bus, view))
	c.comp.Add(c.hud)
	c.comp.Add(c.perf)

	bus.Subscribe(KindDrag, func(e Event) {
		ev := e.(DragEvent)
		cam.Translate(ev.DX, ev.DY)
	})
	bus.Subscribe(KindZoom, func(e Event) {
		ev := e.(ZoomEvent)
		cam.ZoomAt(ev.ScreenX, ev.ScreenY, ev.Delta)
	})
	bus.Subscribe(KindReplaySpeed, func(e Event) {
		c.simSpeed = e.(ReplaySpeedEvent).Speed
	})
	bus.Subscribe(KindCenterCamera, func(Event) {
		c.centerOnOwnTerritory()
	})
	if mover, ok := view.(unitMover); ok {
		bus.Subscribe(KindMoveWarship, func(e Event) {
			ev := e.(MoveWarshipEvent)
			u, ok := view.Unit(ev.UnitID)
			if !ok {
				return
			}
			mover.MoveUnit(ev.UnitID, linePath(view, u.Tile, ev.Target), 2)
		})
	}

	return c, nil
}

// centerOnOwnTerritory pans the camera to the centroid of the local
// player's tiles. No-op with no territory.
func (c *Client) centerOnOwnTerritory() {
	var sx, sy, n float64
	total := c.view.MapWidth() * c.view.MapHeight()
	for ref := 0; ref < total; ref++ {
		if c.view.StateAt(TileRef(ref)).Owner() != c.me {
			continue
		}
		x, y := c.view.XY(TileRef(ref))
		sx += float64(x)
		sy += float64(y)
		n++
	}
	if n == 0 {
		return
	}
	target := WorldPoint{X: sx/n + 0.5, Y: sy/n + 0.5}
	center := c.cam.ScreenToWorld(float64(c.viewW)/2, float64(c.viewH)/2)
	c.cam.Translate((target.X-center.X)*c.cam.Scale(), (target.Y-center.Y)*c.cam.Scale())
}

// linePath walks the straight segment between two tiles, one tile per
// step. Crude sandbox routing; real paths come from the simulation.
func linePath(view GameView, from, to TileRef) []TileRef {
	x0, y0 := view.XY(from)
	x1, y1 := view.XY(to)
	steps := int(math.Max(math.Abs(float64(x1-x0)), math.Abs(float64(y1-y0))))
	path := []TileRef{from}
	for i := 1; i <= steps; i++ {
		t := float64(i) / float64(steps)
		x := int(math.Round(float64(x0) + t*float64(x1-x0)))
		y := int(math.Round(float64(y0) + t*float64(y1-y0)))
		if view.InBounds(x, y) {
			path = append(path, view.Ref(x, y))
		}
	}
	return path
}

func (c *Client) Update() error {
	start := time.Now()

	c.pollDevices()
	c.resolver.Step(frameDT)

	cx, cy := ebiten.CursorPosition()
	c.structures.SetCursor(float64(cx), float64(cy))
	c.hud.SetCursor(float64(cx), float64(cy))

	// Tick pump: whole ticks drain into the layers, the remainder is
	// the interpolation progress. More than one tick in a frame means
	// we are catching up; interpolation snaps then.
	c.tickAccum += c.simSpeed * frameDT * ticksPerSecond
	pending := int(c.tickAccum)
	c.tickAccum -= float64(pending)
	c.catchUp = pending > 1
	for i := 0; i < pending; i++ {
		tickStart := time.Now()
		diff := c.view.AdvanceTick()
		c.comp.Tick(diff)
		c.perf.ObserveTick(time.Since(tickStart))
	}

	progress := c.tickAccum
	if c.catchUp {
		progress = 1
	}
	c.territory.SetTickProgress(progress)
	c.units.SetFrame(progress, c.catchUp)
	c.effects.Step(frameDT)

	c.view.FlushQueries()
	c.perf.ObserveFrame(time.Since(start))
	return nil
}

// pollDevices translates Ebiten device state into resolver events.
func (c *Client) pollDevices() {
	cx, cy := ebiten.CursorPosition()
	fx, fy := float64(cx), float64(cy)

	if inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft) {
		c.mouseDown = true
		c.resolver.PointerDown(mouseID, fx, fy)
	}
	if cx != c.lastCX || cy != c.lastCY {
		c.resolver.PointerMove(mouseID, fx, fy)
		c.lastCX, c.lastCY = cx, cy
	}
	if c.mouseDown && inpututil.IsMouseButtonJustReleased(ebiten.MouseButtonLeft) {
		c.mouseDown = false
		c.resolver.PointerUp(mouseID, fx, fy)
	}

	for _, id := range inpututil.AppendJustPressedTouchIDs(nil) {
		x, y := ebiten.TouchPosition(id)
		c.resolver.PointerDown(int(id), float64(x), float64(y))
	}
	c.touchIDs = ebiten.AppendTouchIDs(c.touchIDs[:0])
	for _, id := range c.touchIDs {
		x, y := ebiten.TouchPosition(id)
		c.resolver.PointerMove(int(id), float64(x), float64(y))
	}
	for _, id := range inpututil.AppendJustReleasedTouchIDs(nil) {
		x, y := inpututil.TouchPositionInPreviousTick(id)
		c.resolver.PointerUp(int(id), float64(x), float64(y))
	}

	if _, wy := ebiten.Wheel(); wy != 0 {
		shift := ebiten.IsKeyPressed(ebiten.KeyShiftLeft) || ebiten.IsKeyPressed(ebiten.KeyShiftRight)
		ctrl := ebiten.IsKeyPressed(ebiten.KeyControlLeft) || ebiten.IsKeyPressed(ebiten.KeyControlRight)
		// Wheel-up (positive) zooms in: browser-style negative deltaY.
		c.resolver.Wheel(fx, fy, -wy*120, shift, ctrl)
	}

	shift := ebiten.IsKeyPressed(ebiten.KeyShiftLeft) || ebiten.IsKeyPressed(ebiten.KeyShiftRight)
	for key, code := range keyCodes {
		if inpututil.IsKeyJustPressed(key) {
			if code == "KeyC" && shift && c.perf.Visible() {
				c.perf.CopyReport()
				continue
			}
			c.resolver.KeyDown(code)
		}
		if inpututil.IsKeyJustReleased(key) {
			c.resolver.KeyUp(code)
		}
	}
}

func (c *Client) Draw(screen *ebiten.Image) {
	c.comp.Render(screen, c.cam)
	c.cam.ResetChanged()
}

func (c *Client) Layout(outsideWidth, outsideHeight int) (int, int) {
	if outsideWidth != c.viewW || outsideHeight != c.viewH {
		c.viewW, c.viewH = outsideWidth, outsideHeight
		c.cam.Resize(outsideWidth, outsideHeight)
		c.bus.Publish(RefreshGraphicsEvent{})
	}
	return outsideWidth, outsideHeight
}

// keyCodes maps Ebiten keys to the browser-style codes used by the
// keybind layer.
var keyCodes = buildKeyCodes()

func buildKeyCodes() map[ebiten.Key]string {
	m := map[ebiten.Key]string{
		ebiten.KeySpace:        "Space",
		ebiten.KeyComma:        "Comma",
		ebiten.KeyPeriod:       "Period",
		ebiten.KeyEscape:       "Escape",
		ebiten.KeyShiftLeft:    "ShiftLeft",
		ebiten.KeyShiftRight:   "ShiftRight",
		ebiten.KeyControlLeft:  "ControlLeft",
		ebiten.KeyControlRight: "ControlRight",
		ebiten.KeyAltLeft:      "AltLeft",
		ebiten.KeyAltRight:     "AltRight",
		ebiten.KeyMetaLeft:     "MetaLeft",
		ebiten.KeyMetaRight:    "MetaRight",
		ebiten.KeyArrowUp:      "ArrowUp",
		ebiten.KeyArrowDown:    "ArrowDown",
		ebiten.KeyArrowLeft:    "ArrowLeft",
		ebiten.KeyArrowRight:   "ArrowRight",
	}
	for i := 0; i < 26; i++ {
		m[ebiten.KeyA+ebiten.Key(i)] = "Key" + string(rune('A'+i))
	}
	for i := 0; i < 10; i++ {
		m[ebiten.KeyDigit0+ebiten.Key(i)] = "Digit" + string(rune('0'+i))
	}
	return m
}
