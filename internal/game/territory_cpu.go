package game

import (
	"image"
	"math"

	"github.com/hajimehoshi/ebiten/v2"
)

// RasterTerritory is the CPU territory backend: one RGBA texel per
// tile in an in-memory buffer (plus a parallel alternate-view buffer),
// repainted tile-by-tile and blitted through a viewport-windowed
// partial copy. It has no transition animation — ownership changes pop
// instantly. This is the required fallback when the shader backend is
// unavailable.
type RasterTerritory struct {
	territoryCore

	buf    []byte // normal view, w*h*4
	altBuf []byte // alternate view, painted in parallel

	tex     *ebiten.Image // allocated lazily on first Render
	nowTick uint16

	// Tiles painted with an active contest; repainted when it expires.
	contestTiles map[TileRef]struct{}
}

// NewRasterTerritory builds the raster backend and paints the full map.
func NewRasterTerritory(view GameView, me PlayerID) *RasterTerritory {
	r := &RasterTerritory{
		territoryCore: newTerritoryCore(view, me),
		contestTiles:  make(map[TileRef]struct{}),
	}
	r.buf = make([]byte, r.w*r.h*4)
	r.altBuf = make([]byte, r.w*r.h*4)
	r.repaintAll()
	return r
}

func (r *RasterTerritory) Backend() string { return "raster" }

// SetTickProgress is a no-op: the raster path has no animation.
func (r *RasterTerritory) SetTickProgress(float64) {}

// premul converts a straight-alpha color to the premultiplied form
// WritePixels requires.
func premul(c RGBA) RGBA {
	if c.A == 255 {
		return c
	}
	a := uint16(c.A)
	return RGBA{
		R: uint8(uint16(c.R) * a / 255),
		G: uint8(uint16(c.G) * a / 255),
		B: uint8(uint16(c.B) * a / 255),
		A: c.A,
	}
}

// PaintTile recomputes one tile into both view buffers.
func (r *RasterTerritory) PaintTile(ref TileRef) {
	state := r.view.StateAt(ref)
	col := premul(r.tileColor(ref, state, r.nowTick))
	alt := premul(r.altTileColor(ref, state))

	o := int(ref) * 4
	r.buf[o], r.buf[o+1], r.buf[o+2], r.buf[o+3] = col.R, col.G, col.B, col.A
	r.altBuf[o], r.altBuf[o+1], r.altBuf[o+2], r.altBuf[o+3] = alt.R, alt.G, alt.B, alt.A
	r.dirty.markTile(ref)

	if c, ok := r.view.ContestAt(ref); ok && contestActive(c, r.nowTick) {
		r.contestTiles[ref] = struct{}{}
	} else {
		delete(r.contestTiles, ref)
	}
}

// MarkAllDirty schedules a full repaint and full upload.
func (r *RasterTerritory) MarkAllDirty() {
	r.repaintAll()
}

func (r *RasterTerritory) repaintAll() {
	r.dirty.markAll()
	for ref := 0; ref < r.w*r.h; ref++ {
		state := r.view.StateAt(TileRef(ref))
		col := premul(r.tileColor(TileRef(ref), state, r.nowTick))
		alt := premul(r.altTileColor(TileRef(ref), state))
		o := ref * 4
		r.buf[o], r.buf[o+1], r.buf[o+2], r.buf[o+3] = col.R, col.G, col.B, col.A
		r.altBuf[o], r.altBuf[o+1], r.altBuf[o+2], r.altBuf[o+3] = alt.R, alt.G, alt.B, alt.A

		// Keep expiry tracking in sync on full repaints too, so a
		// contest that first lands during one still gets swept.
		if c, ok := r.view.ContestAt(TileRef(ref)); ok && contestActive(c, r.nowTick) {
			r.contestTiles[TileRef(ref)] = struct{}{}
		} else {
			delete(r.contestTiles, TileRef(ref))
		}
	}
}

// Tick repaints the tiles flagged by the diff, their neighbours (whose
// border status may have flipped), and any tile whose contest expired.
func (r *RasterTerritory) Tick(diff *TickDiff) {
	r.nowTick = contestTick(diff.Tick)

	if diff.RosterChanged || diff.RelationsChanged {
		// The full repaint covers the changed tiles and re-registers
		// any contests they carry for the expiry sweep.
		r.RefreshPalette()
		return
	}

	for _, ref := range diff.ChangedTiles {
		r.paintWithNeighbours(ref)
	}
	for ref := range r.contestTiles {
		if c, ok := r.view.ContestAt(ref); !ok || !contestActive(c, r.nowTick) {
			r.PaintTile(ref)
		}
	}
}

func (r *RasterTerritory) paintWithNeighbours(ref TileRef) {
	r.PaintTile(ref)
	x, y := int(ref)%r.w, int(ref)/r.w
	if x > 0 {
		r.PaintTile(ref - 1)
	}
	if x < r.w-1 {
		r.PaintTile(ref + 1)
	}
	if y > 0 {
		r.PaintTile(ref - TileRef(r.w))
	}
	if y < r.h-1 {
		r.PaintTile(ref + TileRef(r.w))
	}
}

func (r *RasterTerritory) SetAlternateView(on bool) { r.setAlternateView(on) }

func (r *RasterTerritory) SetHover(id PlayerID) {
	if r.hover == id {
		return
	}
	r.hover = id
	r.repaintAll()
}

func (r *RasterTerritory) SetHoverOptions(opts HoverOptions) {
	r.hoverOpts = opts
	if r.hover != NeutralID {
		r.repaintAll()
	}
}

func (r *RasterTerritory) RefreshPalette() {
	r.pal = BuildPalette(r.view)
	r.repaintAll()
}

// Render uploads pending rows and blits the visible window of the
// territory texture at the camera transform. blit=false reuses the
// texture as-is.
func (r *RasterTerritory) Render(dst *ebiten.Image, cam *Camera, blit bool) {
	if r.tex == nil {
		r.tex = ebiten.NewImage(r.w, r.h)
	}
	if blit && !r.dirty.empty() {
		r.upload()
	}

	// Windowed partial copy: only the rows/columns inside the viewport.
	rect := cam.BoundingRect()
	x0 := clampInt(int(math.Floor(rect.MinX)), 0, r.w)
	y0 := clampInt(int(math.Floor(rect.MinY)), 0, r.h)
	x1 := clampInt(int(math.Ceil(rect.MaxX)), 0, r.w)
	y1 := clampInt(int(math.Ceil(rect.MaxY)), 0, r.h)
	if x0 >= x1 || y0 >= y1 {
		return
	}
	sub := r.tex.SubImage(image.Rect(x0, y0, x1, y1)).(*ebiten.Image)

	offX, offY := cam.Offset()
	var op ebiten.DrawImageOptions
	op.GeoM.Translate(float64(x0)-offX, float64(y0)-offY)
	op.GeoM.Scale(cam.Scale(), cam.Scale())
	dst.DrawImage(sub, &op)
}

// upload pushes dirty rows (or everything) from the active view buffer
// into the texture, leaving the dirty set empty.
func (r *RasterTerritory) upload() {
	src := r.buf
	if r.alt {
		src = r.altBuf
	}
	if r.dirty.full {
		r.tex.WritePixels(src)
	} else {
		for row := 0; row < r.h; row++ {
			if !r.dirty.rows[row] {
				continue
			}
			line := src[row*r.w*4 : (row+1)*r.w*4]
			r.tex.SubImage(image.Rect(0, row, r.w, row+1)).(*ebiten.Image).WritePixels(line)
		}
	}
	r.dirty.clear()
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
