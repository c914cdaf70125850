package game

import "math"

// Camera zoom limits. Scale is screen pixels per world tile.
const (
	zoomMin = 0.25
	zoomMax = 48.0
)

// WorldPoint is a position in world (tile) space. Fractional values
// address sub-tile positions.
type WorldPoint struct {
	X float64
	Y float64
}

// WorldRect is an axis-aligned rectangle in world space.
type WorldRect struct {
	MinX, MinY float64
	MaxX, MaxY float64
}

// Camera holds the pan/zoom state shared by every layer. It converts
// between screen pixels and world tiles. One instance per session,
// owned by the orchestrator; all mutation happens on the UI goroutine.
type Camera struct {
	scale   float64 // screen pixels per world tile
	offsetX float64 // world coordinate at the left screen edge
	offsetY float64 // world coordinate at the top screen edge

	viewW int // viewport size in screen pixels
	viewH int

	changed bool
}

// NewCamera creates a camera showing the whole map inside the viewport.
func NewCamera(viewW, viewH, mapW, mapH int) *Camera {
	c := &Camera{viewW: viewW, viewH: viewH, scale: 1, changed: true}
	if mapW > 0 && mapH > 0 && viewW > 0 && viewH > 0 {
		sx := float64(viewW) / float64(mapW)
		sy := float64(viewH) / float64(mapH)
		c.scale = clamp(math.Min(sx, sy), zoomMin, zoomMax)
		// Centre the map in the viewport.
		c.offsetX = (float64(mapW) - float64(viewW)/c.scale) / 2
		c.offsetY = (float64(mapH) - float64(viewH)/c.scale) / 2
	}
	return c
}

// Scale returns the current zoom factor (screen pixels per tile).
func (c *Camera) Scale() float64 { return c.scale }

// Offset returns the world coordinate of the top-left screen corner.
func (c *Camera) Offset() (float64, float64) { return c.offsetX, c.offsetY }

// ViewSize returns the viewport size in screen pixels.
func (c *Camera) ViewSize() (int, int) { return c.viewW, c.viewH }

// Resize updates the viewport size. The world point at the screen
// centre stays fixed.
func (c *Camera) Resize(viewW, viewH int) {
	if viewW == c.viewW && viewH == c.viewH {
		return
	}
	cx := c.offsetX + float64(c.viewW)/(2*c.scale)
	cy := c.offsetY + float64(c.viewH)/(2*c.scale)
	c.viewW = viewW
	c.viewH = viewH
	c.offsetX = cx - float64(viewW)/(2*c.scale)
	c.offsetY = cy - float64(viewH)/(2*c.scale)
	c.changed = true
}

// WorldToScreen projects a world point to screen pixels.
func (c *Camera) WorldToScreen(p WorldPoint) (float64, float64) {
	return (p.X - c.offsetX) * c.scale, (p.Y - c.offsetY) * c.scale
}

// ScreenToWorld converts a screen pixel position to world space.
func (c *Camera) ScreenToWorld(sx, sy float64) WorldPoint {
	return WorldPoint{
		X: c.offsetX + sx/c.scale,
		Y: c.offsetY + sy/c.scale,
	}
}

// BoundingRect returns the world-space rectangle currently visible.
func (c *Camera) BoundingRect() WorldRect {
	return WorldRect{
		MinX: c.offsetX,
		MinY: c.offsetY,
		MaxX: c.offsetX + float64(c.viewW)/c.scale,
		MaxY: c.offsetY + float64(c.viewH)/c.scale,
	}
}

// Translate pans the camera by a screen-pixel delta.
func (c *Camera) Translate(dx, dy float64) {
	if dx == 0 && dy == 0 {
		return
	}
	c.offsetX += dx / c.scale
	c.offsetY += dy / c.scale
	c.changed = true
}

// ZoomAt zooms by delta, pivoting around the screen point (sx, sy) so
// the world point under the cursor stays fixed. Positive delta zooms
// out. The resulting scale is clamped to [zoomMin, zoomMax].
func (c *Camera) ZoomAt(sx, sy, delta float64) {
	pivot := c.ScreenToWorld(sx, sy)
	factor := math.Pow(1.0012, -delta)
	c.scale = clamp(c.scale*factor, zoomMin, zoomMax)
	// Re-anchor so pivot maps back to (sx, sy).
	c.offsetX = pivot.X - sx/c.scale
	c.offsetY = pivot.Y - sy/c.scale
	c.changed = true
}

// HasChanged reports whether the transform moved since the last
// ResetChanged. Layers use it to skip recomputation.
func (c *Camera) HasChanged() bool { return c.changed }

// ResetChanged clears the dirty flag. Called once per frame by the
// orchestrator after all layers rendered.
func (c *Camera) ResetChanged() { c.changed = false }

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
