package game

import (
	"math"
	"testing"
)

const coordEps = 1e-9

func TestCamera_RoundTrip(t *testing.T) {
	c := NewCamera(800, 600, 200, 100)
	c.Translate(37, -12)
	c.ZoomAt(400, 300, -250)

	points := [][2]float64{{0, 0}, {400, 300}, {799, 599}, {13.5, 211.25}}
	for _, p := range points {
		w := c.ScreenToWorld(p[0], p[1])
		sx, sy := c.WorldToScreen(w)
		w2 := c.ScreenToWorld(sx, sy)
		if math.Abs(w2.X-w.X) > coordEps || math.Abs(w2.Y-w.Y) > coordEps {
			t.Fatalf("round trip drifted: (%v,%v) -> %v -> (%v,%v) -> %v", p[0], p[1], w, sx, sy, w2)
		}
	}
}

func TestCamera_ZoomPivotStaysFixed(t *testing.T) {
	c := NewCamera(800, 600, 200, 100)
	const sx, sy = 123.0, 456.0
	before := c.ScreenToWorld(sx, sy)
	c.ZoomAt(sx, sy, -300)
	ax, ay := c.WorldToScreen(before)
	if math.Abs(ax-sx) > 1e-6 || math.Abs(ay-sy) > 1e-6 {
		t.Fatalf("pivot moved: want (%v,%v), got (%v,%v)", sx, sy, ax, ay)
	}
}

func TestCamera_ZoomClamped(t *testing.T) {
	c := NewCamera(800, 600, 200, 100)
	for i := 0; i < 200; i++ {
		c.ZoomAt(400, 300, -10000)
	}
	if c.Scale() > zoomMax {
		t.Fatalf("scale %v exceeds max %v", c.Scale(), zoomMax)
	}
	for i := 0; i < 200; i++ {
		c.ZoomAt(400, 300, 10000)
	}
	if c.Scale() < zoomMin {
		t.Fatalf("scale %v below min %v", c.Scale(), zoomMin)
	}
}

func TestCamera_TranslateMovesBoundingRect(t *testing.T) {
	c := NewCamera(800, 600, 800, 600) // scale 1
	r0 := c.BoundingRect()
	c.Translate(50, -20)
	r1 := c.BoundingRect()
	if math.Abs((r1.MinX-r0.MinX)-50) > coordEps {
		t.Fatalf("pan X: want +50 world, got %v", r1.MinX-r0.MinX)
	}
	if math.Abs((r1.MinY-r0.MinY)+20) > coordEps {
		t.Fatalf("pan Y: want -20 world, got %v", r1.MinY-r0.MinY)
	}
}

func TestCamera_ChangedFlag(t *testing.T) {
	c := NewCamera(800, 600, 100, 100)
	if !c.HasChanged() {
		t.Fatal("fresh camera should report changed")
	}
	c.ResetChanged()
	if c.HasChanged() {
		t.Fatal("flag should be clear after reset")
	}
	c.Translate(0, 0)
	if c.HasChanged() {
		t.Fatal("zero pan should not dirty the transform")
	}
	c.Translate(1, 0)
	if !c.HasChanged() {
		t.Fatal("pan should dirty the transform")
	}
}

func TestCamera_ZeroViewportGuarded(t *testing.T) {
	c := NewCamera(0, 0, 100, 100)
	if c.Scale() <= 0 || math.IsInf(c.Scale(), 0) || math.IsNaN(c.Scale()) {
		t.Fatalf("degenerate scale %v for zero viewport", c.Scale())
	}
	w := c.ScreenToWorld(10, 10)
	if math.IsNaN(w.X) || math.IsNaN(w.Y) {
		t.Fatalf("NaN world point %v", w)
	}
}
