package game

import "math"

// Gesture thresholds.
const (
	tapMoveThreshold  = 10.0  // px of movement before a tap becomes a pan
	tapMaxDuration    = 0.3   // seconds
	pinchMinDelta     = 1.0   // px of inter-pointer distance change per zoom event
	pinchZoomFactor   = 2.0
	trackpadZoomBoost = 10.0  // synthetic-ctrl wheel compensation
	keyPanSpeed       = 420.0 // screen px/s while a movement key is held
	keyZoomSpeed      = 600.0 // zoom delta/s while a zoom key is held
)

// Replay speed ladder stepped through by the replay keys.
var replaySpeeds = []float64{0, 0.5, 1, 2, 4}

// buildHotkeys maps the digit-key actions to structure kinds.
var buildHotkeys = map[string]StructureKind{
	ActionBuild1: StructureCity,
	ActionBuild2: StructurePort,
	ActionBuild3: StructureDefensePost,
	ActionBuild4: StructureMissileSilo,
	ActionBuild5: StructureSAMLauncher,
}

type gestureMode int

const (
	gestureIdle gestureMode = iota
	gesturePending // single pointer down, tap-vs-pan undecided
	gesturePanning
	gesturePinching
)

type pointerState struct {
	downX, downY float64
	lastX, lastY float64
	downAt       float64 // resolver clock seconds
}

// InputResolver turns raw pointer/key events into semantic bus events.
// It is a pure state machine: the caller feeds device transitions
// (PointerDown/Move/Up, Wheel, KeyDown/KeyUp) and advances time with
// Step. Every fed event is handled synchronously exactly once.
type InputResolver struct {
	bus  *Bus
	kb   *Keybinds
	cam  *Camera
	view GameView

	mode     gestureMode
	pointers map[int]*pointerState
	lastDist float64 // pinch inter-pointer distance

	held map[string]bool // currently held key codes
	now  float64         // resolver clock, advanced by Step

	cursorX, cursorY float64
	altView          bool
	replaySpeed      float64

	// TapOpensMenu mirrors the user preference that swaps the default
	// tap action from select to context menu.
	TapOpensMenu bool
}

// NewInputResolver wires a resolver to the bus. The camera and view are
// read-only collaborators used to resolve cursor positions to tiles.
func NewInputResolver(bus *Bus, kb *Keybinds, cam *Camera, view GameView) *InputResolver {
	return &InputResolver{
		bus:         bus,
		kb:          kb,
		cam:         cam,
		view:        view,
		pointers:    make(map[int]*pointerState),
		held:        make(map[string]bool),
		replaySpeed: 1,
	}
}

// PointerDown registers a pressed pointer (mouse button or touch).
func (r *InputResolver) PointerDown(id int, x, y float64) {
	r.cursorX, r.cursorY = x, y
	r.pointers[id] = &pointerState{downX: x, downY: y, lastX: x, lastY: y, downAt: r.now}
	switch len(r.pointers) {
	case 1:
		r.mode = gesturePending
	case 2:
		r.mode = gesturePinching
		r.lastDist = r.pinchDistance()
	default:
		// Extra pointers are tracked but do not change the gesture.
	}
}

// PointerMove updates a pointer position, possibly reclassifying the
// gesture and emitting drag/zoom events.
func (r *InputResolver) PointerMove(id int, x, y float64) {
	r.cursorX, r.cursorY = x, y
	p, ok := r.pointers[id]
	if !ok {
		return // hover only
	}
	switch r.mode {
	case gesturePending:
		if math.Hypot(x-p.downX, y-p.downY) > tapMoveThreshold {
			r.mode = gesturePanning
			r.bus.Publish(DragEvent{DX: p.lastX - x, DY: p.lastY - y})
		}
	case gesturePanning:
		r.bus.Publish(DragEvent{DX: p.lastX - x, DY: p.lastY - y})
	case gesturePinching:
		p.lastX, p.lastY = x, y
		d := r.pinchDistance()
		if math.Abs(d-r.lastDist) > pinchMinDelta {
			mx, my := r.pinchMidpoint()
			r.bus.Publish(ZoomEvent{ScreenX: mx, ScreenY: my, Delta: (r.lastDist - d) * pinchZoomFactor})
			r.lastDist = d
		}
		return
	}
	p.lastX, p.lastY = x, y
}

// PointerUp releases a pointer. A release still inside the tap
// threshold and duration classifies as a tap; a gesture that became a
// pan or pinch never retroactively taps.
func (r *InputResolver) PointerUp(id int, x, y float64) {
	p, ok := r.pointers[id]
	if !ok {
		return
	}
	delete(r.pointers, id)
	switch r.mode {
	case gesturePending:
		if r.now-p.downAt <= tapMaxDuration {
			r.emitTap(x, y)
		}
		r.mode = gestureIdle
	case gesturePanning:
		if len(r.pointers) == 0 {
			r.mode = gestureIdle
		}
	case gesturePinching:
		// Dropping to one pointer continues as a pan, never a tap.
		if len(r.pointers) <= 1 {
			r.mode = gesturePanning
		}
		if len(r.pointers) == 0 {
			r.mode = gestureIdle
		}
	}
}

func (r *InputResolver) emitTap(x, y float64) {
	switch {
	case r.held[r.kb.Code(ActionModifier)]:
		r.bus.Publish(BuildMenuEvent{ScreenX: x, ScreenY: y})
	case r.held[r.kb.Code(ActionAlt)]:
		r.bus.Publish(PingMenuEvent{ScreenX: x, ScreenY: y})
	case r.TapOpensMenu:
		r.bus.Publish(ContextMenuEvent{ScreenX: x, ScreenY: y})
	default:
		r.bus.Publish(TapSelectEvent{ScreenX: x, ScreenY: y})
	}
}

// Wheel handles a wheel event at the cursor. Shift remaps the wheel to
// attack-ratio adjustment. A ctrl flag without a physically held
// Control key is the browser's trackpad-pinch synthesis and gets a 10x
// sensitivity boost.
func (r *InputResolver) Wheel(x, y, deltaY float64, shift, ctrl bool) {
	if deltaY == 0 {
		return
	}
	if shift {
		r.bus.Publish(AttackRatioEvent{Delta: deltaY})
		return
	}
	delta := deltaY
	if ctrl && !r.ctrlHeld() {
		delta *= trackpadZoomBoost
	}
	r.bus.Publish(ZoomEvent{ScreenX: x, ScreenY: y, Delta: delta})
}

func (r *InputResolver) ctrlHeld() bool {
	return r.held["ControlLeft"] || r.held["ControlRight"]
}

func (r *InputResolver) shiftHeld() bool {
	return r.held["ShiftLeft"] || r.held["ShiftRight"]
}

// KeyDown handles a key-down transition: records held state for the
// poll step and fires edge-triggered one-shot actions.
func (r *InputResolver) KeyDown(code string) {
	if r.held[code] {
		return // key repeat
	}
	r.held[code] = true

	if code == "KeyD" && r.shiftHeld() {
		r.bus.Publish(PerfOverlayEvent{})
		return
	}

	switch r.kb.Action(code) {
	case ActionToggleView:
		r.altView = !r.altView
		r.bus.Publish(AlternateViewEvent{Enabled: r.altView})
	case ActionAttack:
		if ref, ok := r.cursorTile(); ok {
			r.bus.Publish(AttackIntentEvent{Tile: ref})
		}
	case ActionCenterCamera:
		r.bus.Publish(CenterCameraEvent{})
	case ActionReplaySlower:
		r.stepReplaySpeed(-1)
	case ActionReplayFaster:
		r.stepReplaySpeed(+1)
	default:
		if kind, ok := buildHotkeys[r.kb.Action(code)]; ok {
			r.bus.Publish(GhostChangedEvent{Kind: kind})
		}
	}
}

// KeyUp handles a key-up transition.
func (r *InputResolver) KeyUp(code string) {
	delete(r.held, code)
}

func (r *InputResolver) stepReplaySpeed(dir int) {
	idx := 0
	for i, s := range replaySpeeds {
		if math.Abs(s-r.replaySpeed) < math.Abs(replaySpeeds[idx]-r.replaySpeed) {
			idx = i
		}
	}
	idx += dir
	if idx < 0 {
		idx = 0
	}
	if idx >= len(replaySpeeds) {
		idx = len(replaySpeeds) - 1
	}
	if replaySpeeds[idx] != r.replaySpeed {
		r.replaySpeed = replaySpeeds[idx]
		r.bus.Publish(ReplaySpeedEvent{Speed: r.replaySpeed})
	}
}

// Step advances the resolver clock by dt seconds and polls held keys
// for continuous camera movement. Polling (rather than per-event
// deltas) lets opposite keys cancel and diagonals combine.
func (r *InputResolver) Step(dt float64) {
	r.now += dt

	var dx, dy float64
	if r.held[r.kb.Code(ActionMoveUp)] {
		dy -= 1
	}
	if r.held[r.kb.Code(ActionMoveDown)] {
		dy += 1
	}
	if r.held[r.kb.Code(ActionMoveLeft)] {
		dx -= 1
	}
	if r.held[r.kb.Code(ActionMoveRight)] {
		dx += 1
	}
	if dx != 0 || dy != 0 {
		r.bus.Publish(DragEvent{DX: dx * keyPanSpeed * dt, DY: dy * keyPanSpeed * dt})
	}

	var zoom float64
	if r.held[r.kb.Code(ActionZoomIn)] {
		zoom -= 1
	}
	if r.held[r.kb.Code(ActionZoomOut)] {
		zoom += 1
	}
	if zoom != 0 {
		vw, vh := r.cam.ViewSize()
		r.bus.Publish(ZoomEvent{
			ScreenX: float64(vw) / 2,
			ScreenY: float64(vh) / 2,
			Delta:   zoom * keyZoomSpeed * dt,
		})
	}
}

// cursorTile resolves the current cursor position to a tile reference.
func (r *InputResolver) cursorTile() (TileRef, bool) {
	w := r.cam.ScreenToWorld(r.cursorX, r.cursorY)
	x, y := int(math.Floor(w.X)), int(math.Floor(w.Y))
	if !r.view.InBounds(x, y) {
		return 0, false
	}
	return r.view.Ref(x, y), true
}

func (r *InputResolver) pinchDistance() float64 {
	pts := r.twoPointers()
	if pts[1] == nil {
		return 0
	}
	return math.Hypot(pts[0].lastX-pts[1].lastX, pts[0].lastY-pts[1].lastY)
}

func (r *InputResolver) pinchMidpoint() (float64, float64) {
	pts := r.twoPointers()
	if pts[1] == nil {
		return pts[0].lastX, pts[0].lastY
	}
	return (pts[0].lastX + pts[1].lastX) / 2, (pts[0].lastY + pts[1].lastY) / 2
}

// twoPointers returns up to two active pointers in stable id order.
func (r *InputResolver) twoPointers() [2]*pointerState {
	var out [2]*pointerState
	ids := make([]int, 0, len(r.pointers))
	for id := range r.pointers {
		ids = append(ids, id)
	}
	for i := 0; i < len(ids); i++ {
		for j := i + 1; j < len(ids); j++ {
			if ids[j] < ids[i] {
				ids[i], ids[j] = ids[j], ids[i]
			}
		}
	}
	for i, id := range ids {
		if i >= 2 {
			break
		}
		out[i] = r.pointers[id]
	}
	return out
}
