package game

import (
	"errors"
	"fmt"
	"image"
	"log"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
)

// paletteDim is the width of the palette and relation texture regions.
// Player ids above it fall outside the lookup tables and render with
// the zero entry, same as the raster backend's out-of-range rule.
const paletteDim = 256

// paletteRows: row 0 fill, row 1 border, rows 2..9 pattern bytes.
const paletteRows = 10

// maxTextureDim caps the map sizes the shader backend accepts. Larger
// maps fall back to the raster path.
const maxTextureDim = 8192

// BackendError reports why the shader backend could not be built. The
// stage string is surfaced in logs and the debug report.
type BackendError struct {
	Stage string
	Err   error
}

func (e *BackendError) Error() string {
	return fmt.Sprintf("territory shader backend: %s: %v", e.Stage, e.Err)
}

func (e *BackendError) Unwrap() error { return e.Err }

// ShaderTerritory is the GPU territory backend: tile state lives in
// data textures and a single Kage fragment pass does border detection,
// tints, patterns, contest dithering, and tick interpolation. CPU-side
// byte buffers mirror the textures; dirty rows are re-uploaded before
// each blit.
type ShaderTerritory struct {
	territoryCore

	texW, texH int

	stateBuf []byte // texW*texH*4, layout per territoryShaderSrc
	palBuf   []byte // paletteDim*paletteRows*4
	relBuf   []byte // paletteDim*paletteDim*4
	animBuf  []byte // texW*texH*4

	shader   *ebiten.Shader
	stateTex *ebiten.Image // allocated lazily on first Render
	palTex   *ebiten.Image
	relTex   *ebiten.Image
	animTex  *ebiten.Image

	palDirty  bool
	relDirty  bool
	animDirty bool

	smoother  *TickSmoother
	smoothing bool
	progress  float64
	snapshot  []TileState

	nowTick      uint16
	contestTiles map[TileRef]struct{}

	start time.Time
}

// NewShaderTerritory compiles the territory shader and builds the
// backend's data buffers. A *BackendError explains any failure.
func NewShaderTerritory(view GameView, me PlayerID) (*ShaderTerritory, error) {
	w, h := view.MapWidth(), view.MapHeight()
	if w > maxTextureDim || h > maxTextureDim {
		return nil, &BackendError{
			Stage: "texture-size",
			Err:   fmt.Errorf("map %dx%d exceeds %d", w, h, maxTextureDim),
		}
	}
	shader, err := ebiten.NewShader([]byte(territoryShaderSrc))
	if err != nil {
		return nil, &BackendError{Stage: "compile", Err: err}
	}

	texW, texH := w, h
	if texW < paletteDim {
		texW = paletteDim
	}
	if texH < paletteDim {
		texH = paletteDim
	}

	g := &ShaderTerritory{
		territoryCore: newTerritoryCore(view, me),
		texW:          texW,
		texH:          texH,
		stateBuf:      make([]byte, texW*texH*4),
		palBuf:        make([]byte, paletteDim*paletteRows*4),
		relBuf:        make([]byte, paletteDim*paletteDim*4),
		animBuf:       make([]byte, texW*texH*4),
		shader:        shader,
		smoothing:     true,
		snapshot:      make([]TileState, w*h),
		contestTiles:  make(map[TileRef]struct{}),
		smoother:      NewTickSmoother(w, h),
		start:         time.Now(),
	}
	g.encodePalette()
	for ref := 0; ref < w*h; ref++ {
		g.writeState(TileRef(ref))
	}
	g.dirty.markAll()
	g.smoother.Rotate(g.snapshot)
	return g, nil
}

func (g *ShaderTerritory) Backend() string { return "shader" }

// SetSmoothing toggles boundary interpolation. Disabled, ownership
// changes pop at the tick edge (the degraded mode for slow hosts).
func (g *ShaderTerritory) SetSmoothing(on bool) { g.smoothing = on }

// SetTickProgress records fractional progress through the current tick
// interval, clamped to [0,1].
func (g *ShaderTerritory) SetTickProgress(p float64) {
	if p < 0 {
		p = 0
	}
	if p > 1 {
		p = 1
	}
	g.progress = p
}

// PaintTile re-encodes one tile into the state buffer.
func (g *ShaderTerritory) PaintTile(ref TileRef) {
	g.writeState(ref)
}

// writeState packs owner, flags, and any active contest into the state
// texture layout and keeps the smoother snapshot in step.
func (g *ShaderTerritory) writeState(ref TileRef) {
	state := g.view.StateAt(ref)
	own := uint16(state.Owner())

	var flags byte
	if state.Defended() {
		flags |= 1
	}
	if state.Fallout() {
		flags |= 2
	}

	var attacker, strength byte
	if c, ok := g.view.ContestAt(ref); ok && contestActive(c, g.nowTick) {
		attacker = byte(c.Attacker)
		s := c.Strength
		if s < 0 {
			s = 0
		}
		if s > 1 {
			s = 1
		}
		strength = byte(s*255 + 0.5)
		g.contestTiles[ref] = struct{}{}
	} else {
		delete(g.contestTiles, ref)
	}

	x, y := int(ref)%g.w, int(ref)/g.w
	o := (y*g.texW + x) * 4
	g.stateBuf[o] = byte(own)
	g.stateBuf[o+1] = flags | byte(own>>8)<<4
	g.stateBuf[o+2] = attacker
	g.stateBuf[o+3] = strength

	g.snapshot[ref] = state
	g.dirty.markTile(ref)
}

// MarkAllDirty re-encodes the whole map and forces a full upload.
func (g *ShaderTerritory) MarkAllDirty() {
	for ref := 0; ref < g.w*g.h; ref++ {
		g.writeState(TileRef(ref))
	}
	g.dirty.markAll()
}

// Tick ingests the per-tick diff, rotates the smoother, and rebuilds
// the interpolation texture. Progress resets to 0 so the new boundary
// sweeps in from the old one.
func (g *ShaderTerritory) Tick(diff *TickDiff) {
	g.nowTick = contestTick(diff.Tick)

	if diff.RosterChanged || diff.RelationsChanged {
		g.RefreshPalette()
	}
	for _, ref := range diff.ChangedTiles {
		g.writeState(ref)
	}
	for ref := range g.contestTiles {
		if c, ok := g.view.ContestAt(ref); !ok || !contestActive(c, g.nowTick) {
			g.writeState(ref)
		}
	}

	g.smoother.Rotate(g.snapshot)
	g.rebuildAnim()
	g.progress = 0
}

// rebuildAnim packs the smoother's pre-change owners, distance fields,
// and changed mask into the anim texture layout.
func (g *ShaderTerritory) rebuildAnim() {
	distPrev, distCur := g.smoother.DistanceFields()
	for y := 0; y < g.h; y++ {
		for x := 0; x < g.w; x++ {
			idx := y*g.w + x
			o := (y*g.texW + x) * 4
			if !g.smoother.Changed(idx) {
				g.animBuf[o+3] = 0
				continue
			}
			g.animBuf[o] = byte(g.smoother.PrevState(idx).Owner())
			g.animBuf[o+1] = quantizeDist(distPrev[idx])
			g.animBuf[o+2] = quantizeDist(distCur[idx])
			g.animBuf[o+3] = 255
		}
	}
	g.animDirty = true
}

// quantizeDist encodes a tile distance at 1/4-tile resolution.
func quantizeDist(d float32) byte {
	q := d * 4
	if q > 255 {
		q = 255
	}
	return byte(q + 0.5)
}

func (g *ShaderTerritory) SetAlternateView(on bool) { g.alt = on }

func (g *ShaderTerritory) SetHover(id PlayerID) { g.hover = id }

func (g *ShaderTerritory) SetHoverOptions(opts HoverOptions) { g.hoverOpts = opts }

// RefreshPalette rebuilds the palette and relation tables and schedules
// their re-upload. Tile pixels need no repaint: the shader resolves
// colors through the tables at draw time.
func (g *ShaderTerritory) RefreshPalette() {
	g.pal = BuildPalette(g.view)
	g.encodePalette()
}

// encodePalette packs the palette into its texture layout: column =
// player id, row 0 fill, row 1 border, rows 2..9 the pattern bytes, and
// the relation matrix at (a, b).
func (g *ShaderTerritory) encodePalette() {
	for i := range g.palBuf {
		g.palBuf[i] = 0
	}
	for i := range g.relBuf {
		g.relBuf[i] = 0
	}

	n := g.pal.Size()
	if n > paletteDim {
		n = paletteDim
	}
	for id := 0; id < n; id++ {
		entry := g.pal.Entry(PlayerID(id))
		o := id * 4
		g.palBuf[o], g.palBuf[o+1], g.palBuf[o+2], g.palBuf[o+3] =
			entry.Fill.R, entry.Fill.G, entry.Fill.B, 255
		o += paletteDim * 4
		g.palBuf[o], g.palBuf[o+1], g.palBuf[o+2], g.palBuf[o+3] =
			entry.Border.R, entry.Border.G, entry.Border.B, 255
		for row := 0; row < 8; row++ {
			o := ((row+2)*paletteDim + id) * 4
			g.palBuf[o] = byte(entry.Pattern >> (8 * row))
			g.palBuf[o+3] = 255
		}
	}
	for a := 0; a < n; a++ {
		for b := 0; b < n; b++ {
			o := (b*paletteDim + a) * 4
			g.relBuf[o] = byte(g.pal.Relation(PlayerID(a), PlayerID(b)))
			g.relBuf[o+3] = 255
		}
	}
	g.palDirty = true
	g.relDirty = true
}

// Render uploads pending texture regions and draws the map rect
// through the territory shader at the camera transform.
func (g *ShaderTerritory) Render(dst *ebiten.Image, cam *Camera, blit bool) {
	g.ensureTextures()
	if blit {
		g.upload()
	}

	scale := cam.Scale()
	offX, offY := cam.Offset()

	op := &ebiten.DrawRectShaderOptions{}
	op.Images[0] = g.stateTex
	op.Images[1] = g.palTex
	op.Images[2] = g.relTex
	op.Images[3] = g.animTex
	op.GeoM.Scale(scale, scale)
	op.GeoM.Translate(-offX*scale, -offY*scale)
	op.Uniforms = map[string]any{
		"MapSize":       []float32{float32(g.w), float32(g.h)},
		"Progress":      float32(g.progress),
		"Smoothing":     boolUniform(g.smoothing),
		"AltView":       boolUniform(g.alt),
		"MyID":          float32(g.me),
		"HoverID":       float32(g.hover),
		"HoverColor":    colorUniform(g.hoverOpts.Color),
		"HoverStrength": float32(g.hoverOpts.Strength),
		"PulseSpeed":    float32(g.hoverOpts.PulseSpeed),
		"PulseStrength": float32(g.hoverOpts.PulseStrength),
		"Time":          float32(time.Since(g.start).Seconds()),
	}
	dst.DrawRectShader(g.texW, g.texH, g.shader, op)
}

func (g *ShaderTerritory) ensureTextures() {
	if g.stateTex != nil {
		return
	}
	g.stateTex = ebiten.NewImage(g.texW, g.texH)
	g.palTex = ebiten.NewImage(g.texW, g.texH)
	g.relTex = ebiten.NewImage(g.texW, g.texH)
	g.animTex = ebiten.NewImage(g.texW, g.texH)
}

// upload pushes dirty rows of the state buffer, the palette and
// relation regions, and the anim texture when flagged.
func (g *ShaderTerritory) upload() {
	if !g.dirty.empty() {
		if g.dirty.full {
			g.stateTex.WritePixels(g.stateBuf)
		} else {
			for row := 0; row < g.h; row++ {
				if !g.dirty.rows[row] {
					continue
				}
				line := g.stateBuf[row*g.texW*4 : (row+1)*g.texW*4]
				g.stateTex.SubImage(image.Rect(0, row, g.texW, row+1)).(*ebiten.Image).WritePixels(line)
			}
		}
		g.dirty.clear()
	}
	if g.palDirty {
		g.palTex.SubImage(image.Rect(0, 0, paletteDim, paletteRows)).(*ebiten.Image).WritePixels(g.palBuf)
		g.palDirty = false
	}
	if g.relDirty {
		g.relTex.SubImage(image.Rect(0, 0, paletteDim, paletteDim)).(*ebiten.Image).WritePixels(g.relBuf)
		g.relDirty = false
	}
	if g.animDirty {
		g.animTex.WritePixels(g.animBuf)
		g.animDirty = false
	}
}

func boolUniform(b bool) float32 {
	if b {
		return 1
	}
	return 0
}

func colorUniform(c RGBA) []float32 {
	return []float32{
		float32(c.R) / 255,
		float32(c.G) / 255,
		float32(c.B) / 255,
		float32(c.A) / 255,
	}
}

// ErrBackendForced marks an operator-forced raster fallback in logs.
var ErrBackendForced = errors.New("raster backend forced by configuration")

// NewTerritoryRenderer probes the shader backend and falls back to the
// raster one, logging the structured reason for any fallback.
func NewTerritoryRenderer(view GameView, me PlayerID, forceRaster bool) TerritoryRenderer {
	if forceRaster {
		log.Printf("territory: using raster backend: %v", ErrBackendForced)
		return NewRasterTerritory(view, me)
	}
	st, err := NewShaderTerritory(view, me)
	if err != nil {
		log.Printf("territory: using raster backend: %v", err)
		return NewRasterTerritory(view, me)
	}
	return st
}
