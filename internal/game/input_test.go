package game

import (
	"math"
	"testing"
)

// eventRecorder collects every published event of the kinds it watches.
type eventRecorder struct {
	events []Event
}

func record(b *Bus, kinds ...EventKind) *eventRecorder {
	rec := &eventRecorder{}
	for _, k := range kinds {
		b.Subscribe(k, func(e Event) { rec.events = append(rec.events, e) })
	}
	return rec
}

func (r *eventRecorder) count() int { return len(r.events) }

func newTestResolver(t *testing.T) (*InputResolver, *Bus) {
	t.Helper()
	bus := NewBus()
	view := NewMemView(WithMapSize(32, 32), WithPlayers(2), WithOwnerRect(1, 0, 0, 4, 4))
	cam := NewCamera(640, 480, 32, 32)
	return NewInputResolver(bus, DefaultKeybinds(), cam, view), bus
}

func TestInput_TapSelect(t *testing.T) {
	r, bus := newTestResolver(t)
	taps := record(bus, KindTapSelect)
	drags := record(bus, KindDrag)

	r.PointerDown(0, 100, 100)
	r.PointerMove(0, 104, 103) // inside the 10px threshold
	r.Step(0.05)
	r.PointerUp(0, 104, 103)

	if taps.count() != 1 {
		t.Fatalf("tap events = %d, want 1", taps.count())
	}
	if drags.count() != 0 {
		t.Fatalf("drag events = %d, want 0", drags.count())
	}
	tap := taps.events[0].(TapSelectEvent)
	if tap.ScreenX != 104 || tap.ScreenY != 103 {
		t.Fatalf("tap at (%v,%v)", tap.ScreenX, tap.ScreenY)
	}
}

func TestInput_MovementReclassifiesAsPan(t *testing.T) {
	r, bus := newTestResolver(t)
	taps := record(bus, KindTapSelect, KindContextMenu)
	drags := record(bus, KindDrag)

	r.PointerDown(0, 100, 100)
	r.PointerMove(0, 130, 100) // beyond threshold
	r.PointerMove(0, 140, 110)
	r.PointerUp(0, 140, 110)

	if taps.count() != 0 {
		t.Fatalf("a pan must never retroactively tap, got %d tap events", taps.count())
	}
	if drags.count() == 0 {
		t.Fatal("expected drag events")
	}
	d := drags.events[0].(DragEvent)
	if d.DX != -30 || d.DY != 0 {
		t.Fatalf("first drag delta (%v,%v), want (-30,0)", d.DX, d.DY)
	}
}

func TestInput_SlowReleaseIsNotATap(t *testing.T) {
	r, bus := newTestResolver(t)
	taps := record(bus, KindTapSelect)

	r.PointerDown(0, 100, 100)
	r.Step(0.5) // hold past tapMaxDuration
	r.PointerUp(0, 101, 100)

	if taps.count() != 0 {
		t.Fatalf("slow release classified as tap")
	}
}

func TestInput_ModifierTapOpensBuildMenu(t *testing.T) {
	r, bus := newTestResolver(t)
	builds := record(bus, KindBuildMenu)
	taps := record(bus, KindTapSelect)

	r.KeyDown(DefaultKeybinds().Code(ActionModifier))
	r.PointerDown(0, 50, 60)
	r.PointerUp(0, 50, 60)

	if builds.count() != 1 || taps.count() != 0 {
		t.Fatalf("build=%d tap=%d, want 1/0", builds.count(), taps.count())
	}
}

func TestInput_AltTapOpensPingMenu(t *testing.T) {
	r, bus := newTestResolver(t)
	pings := record(bus, KindPingMenu)

	r.KeyDown("AltLeft")
	r.PointerDown(0, 10, 10)
	r.PointerUp(0, 10, 10)

	if pings.count() != 1 {
		t.Fatalf("ping menu events = %d, want 1", pings.count())
	}
}

func TestInput_TapPreferenceOpensContextMenu(t *testing.T) {
	r, bus := newTestResolver(t)
	r.TapOpensMenu = true
	menus := record(bus, KindContextMenu)

	r.PointerDown(0, 10, 10)
	r.PointerUp(0, 10, 10)

	if menus.count() != 1 {
		t.Fatalf("context menu events = %d, want 1", menus.count())
	}
}

func TestInput_PinchZoomsAtMidpoint(t *testing.T) {
	r, bus := newTestResolver(t)
	zooms := record(bus, KindZoom)
	taps := record(bus, KindTapSelect)

	r.PointerDown(1, 100, 200)
	r.PointerDown(2, 200, 200)
	r.PointerMove(2, 260, 200) // spread: zoom in

	if zooms.count() != 1 {
		t.Fatalf("zoom events = %d, want 1", zooms.count())
	}
	z := zooms.events[0].(ZoomEvent)
	if math.Abs(z.ScreenX-180) > 1e-9 || z.ScreenY != 200 {
		t.Fatalf("zoom pivot (%v,%v), want (180,200)", z.ScreenX, z.ScreenY)
	}
	if z.Delta >= 0 {
		t.Fatalf("spreading fingers must zoom in (negative delta), got %v", z.Delta)
	}

	// Releasing both pointers after a pinch must not tap.
	r.PointerUp(2, 260, 200)
	r.PointerUp(1, 100, 200)
	if taps.count() != 0 {
		t.Fatalf("pinch release fired a tap")
	}
}

func TestInput_WheelZoomAndTrackpadCompensation(t *testing.T) {
	r, bus := newTestResolver(t)
	zooms := record(bus, KindZoom)

	r.Wheel(300, 300, 120, false, false)
	if zooms.count() != 1 {
		t.Fatal("expected a zoom event")
	}
	if d := zooms.events[0].(ZoomEvent).Delta; d != 120 {
		t.Fatalf("plain wheel delta = %v, want 120", d)
	}

	// Browser-synthesised ctrl (trackpad pinch) with no physical
	// Control key held gets the 10x boost.
	r.Wheel(300, 300, 120, false, true)
	if d := zooms.events[1].(ZoomEvent).Delta; d != 1200 {
		t.Fatalf("synthetic-ctrl wheel delta = %v, want 1200", d)
	}

	// A physically held Control key disables the compensation.
	r.KeyDown("ControlLeft")
	r.Wheel(300, 300, 120, false, true)
	if d := zooms.events[2].(ZoomEvent).Delta; d != 120 {
		t.Fatalf("real-ctrl wheel delta = %v, want 120", d)
	}
}

func TestInput_ShiftWheelAdjustsAttackRatio(t *testing.T) {
	r, bus := newTestResolver(t)
	zooms := record(bus, KindZoom)
	ratios := record(bus, KindAttackRatio)

	r.Wheel(0, 0, 120, true, false)
	if zooms.count() != 0 || ratios.count() != 1 {
		t.Fatalf("zoom=%d ratio=%d, want 0/1", zooms.count(), ratios.count())
	}
	if d := ratios.events[0].(AttackRatioEvent).Delta; d != 120 {
		t.Fatalf("ratio delta = %v, want 120", d)
	}
}

func TestInput_HeldKeysPollAndCancel(t *testing.T) {
	r, bus := newTestResolver(t)
	drags := record(bus, KindDrag)

	r.KeyDown("KeyW")
	r.KeyDown("KeyS") // opposite: cancels
	r.Step(0.016)
	if drags.count() != 0 {
		t.Fatalf("opposite keys must cancel, got %d drag events", drags.count())
	}

	r.KeyUp("KeyS")
	r.KeyDown("KeyD")
	r.Step(0.016)
	if drags.count() != 1 {
		t.Fatalf("drag events = %d, want 1", drags.count())
	}
	d := drags.events[0].(DragEvent)
	if d.DY >= 0 || d.DX <= 0 {
		t.Fatalf("diagonal up-right should be DX>0, DY<0, got (%v,%v)", d.DX, d.DY)
	}
}

func TestInput_LegacyKeybindDrivesPan(t *testing.T) {
	// End-to-end: legacy nested storage binds physical KeyW to moveUp.
	path := writeKeybinds(t, `{"moveUp": {"key":"moveUp","value":"KeyW"}}`)
	bus := NewBus()
	view := NewMemView(WithMapSize(16, 16))
	cam := NewCamera(320, 240, 16, 16)
	r := NewInputResolver(bus, LoadKeybinds(path), cam, view)
	drags := record(bus, KindDrag)

	r.KeyDown("KeyW")
	r.Step(0.016)

	if drags.count() != 1 {
		t.Fatalf("drag events = %d, want 1", drags.count())
	}
	if d := drags.events[0].(DragEvent); d.DY >= 0 {
		t.Fatalf("moveUp must pan up (DY<0), got %v", d.DY)
	}
}

func TestInput_OneShots(t *testing.T) {
	r, bus := newTestResolver(t)
	alts := record(bus, KindAlternateView)
	perf := record(bus, KindPerfOverlay)
	ghosts := record(bus, KindGhostChanged)
	speeds := record(bus, KindReplaySpeed)

	r.KeyDown("Space")
	r.KeyUp("Space")
	r.KeyDown("Space")
	if alts.count() != 2 {
		t.Fatalf("alternate view events = %d, want 2", alts.count())
	}
	if !alts.events[0].(AlternateViewEvent).Enabled || alts.events[1].(AlternateViewEvent).Enabled {
		t.Fatal("alternate view should toggle on then off")
	}

	r.KeyDown("ShiftLeft")
	r.KeyDown("KeyD")
	if perf.count() != 1 {
		t.Fatalf("perf overlay events = %d, want 1", perf.count())
	}
	r.KeyUp("KeyD")
	r.KeyUp("ShiftLeft")

	r.KeyDown("Digit1")
	if ghosts.count() != 1 || ghosts.events[0].(GhostChangedEvent).Kind != StructureCity {
		t.Fatalf("Digit1 must select the city ghost")
	}

	r.KeyDown("Period")
	if speeds.count() != 1 || speeds.events[0].(ReplaySpeedEvent).Speed != 2 {
		t.Fatalf("replay faster from 1 should give 2, got %+v", speeds.events)
	}
	r.KeyUp("Period")
	r.KeyDown("Comma")
	r.KeyUp("Comma")
	r.KeyDown("Comma")
	if speeds.count() != 3 || speeds.events[2].(ReplaySpeedEvent).Speed != 0.5 {
		t.Fatalf("replay slower twice from 2 should give 0.5, got %+v", speeds.events)
	}
}

func TestInput_KeyRepeatIsIgnored(t *testing.T) {
	r, bus := newTestResolver(t)
	alts := record(bus, KindAlternateView)
	r.KeyDown("Space")
	r.KeyDown("Space") // OS key repeat
	if alts.count() != 1 {
		t.Fatalf("repeat fired extra one-shots: %d", alts.count())
	}
}
