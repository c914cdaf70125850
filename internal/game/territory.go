package game

import (
	"github.com/hajimehoshi/ebiten/v2"
)

// HoverOptions parameterise the pulsing highlight drawn on one
// player's territory while their roster row is hovered. Cosmetic only.
type HoverOptions struct {
	Color         RGBA
	Strength      float64 // blend ratio at pulse peak
	PulseSpeed    float64 // pulses per second
	PulseStrength float64 // amplitude of the pulse, 0 = steady
}

// DefaultHoverOptions is the roster-hover highlight used by the UI.
var DefaultHoverOptions = HoverOptions{
	Color:         RGBA{R: 255, G: 255, B: 255, A: 255},
	Strength:      0.5,
	PulseSpeed:    1.6,
	PulseStrength: 0.35,
}

// TerritoryRenderer is the strategy interface over the two territory
// compositor backends. All call sites depend only on this interface;
// the concrete backend is chosen once at startup by a capability probe.
type TerritoryRenderer interface {
	// PaintTile recomputes the stored visual state of one tile from
	// current ownership, neighbour ownership, and flags. Idempotent.
	PaintTile(ref TileRef)
	// MarkAllDirty forces every tile to be reconsidered before the
	// next render, and the next upload to be a full upload.
	MarkAllDirty()
	// Tick ingests the per-tick diff (changed tiles, roster/relation
	// invalidation) and advances animation state.
	Tick(diff *TickDiff)
	// Render composites the current (possibly mid-transition) state
	// into dst at the camera's viewport. blit=false reuses the last
	// composited pixels without recomputation.
	Render(dst *ebiten.Image, cam *Camera, blit bool)
	// SetAlternateView switches to the relation-only border view.
	SetAlternateView(enabled bool)
	// SetHover drives the highlight on one player's territory (0 off).
	SetHover(id PlayerID)
	SetHoverOptions(opts HoverOptions)
	// RefreshPalette rebuilds palette/relation tables. Must be called
	// on roster, diplomacy, or cosmetic changes.
	RefreshPalette()
	// SetTickProgress supplies the fractional progress through the
	// current tick interval, driving boundary animation. The raster
	// backend ignores it.
	SetTickProgress(p float64)
	// Backend names the implementation for diagnostics ("raster"/"shader").
	Backend() string
}

// dirtySet tracks tiles needing repaint and rows needing re-upload.
// A full flag supersedes incremental tracking.
type dirtySet struct {
	w, h  int
	tiles []TileRef
	seen  []bool
	rows  []bool
	full  bool
}

func newDirtySet(w, h int) *dirtySet {
	return &dirtySet{
		w: w, h: h,
		seen: make([]bool, w*h),
		rows: make([]bool, h),
	}
}

func (d *dirtySet) markTile(ref TileRef) {
	if d.full || d.seen[ref] {
		return
	}
	d.seen[ref] = true
	d.tiles = append(d.tiles, ref)
	d.rows[int(ref)/d.w] = true
}

func (d *dirtySet) markAll() {
	d.full = true
	d.tiles = d.tiles[:0]
}

// empty reports whether nothing is pending (the post-upload invariant).
func (d *dirtySet) empty() bool {
	return !d.full && len(d.tiles) == 0
}

func (d *dirtySet) clear() {
	for _, ref := range d.tiles {
		d.seen[ref] = false
	}
	d.tiles = d.tiles[:0]
	for i := range d.rows {
		d.rows[i] = false
	}
	if d.full {
		for i := range d.seen {
			d.seen[i] = false
		}
		d.full = false
	}
}

// territoryCore holds the state shared by both backends: the view,
// palette tables, view-mode flags, and the tile-color rules.
type territoryCore struct {
	view GameView
	pal  *Palette
	me   PlayerID // local player, perspective for the alternate view
	w, h int

	alt       bool
	hover     PlayerID
	hoverOpts HoverOptions

	dirty *dirtySet
}

func newTerritoryCore(view GameView, me PlayerID) territoryCore {
	w, h := view.MapWidth(), view.MapHeight()
	return territoryCore{
		view:      view,
		pal:       BuildPalette(view),
		me:        me,
		w:         w,
		h:         h,
		hoverOpts: DefaultHoverOptions,
		dirty:     newDirtySet(w, h),
	}
}

// isBorder applies the border rule against live view state: a tile is
// a border tile iff at least one 4-connected neighbour has a different
// owner id (neutral 0 is a distinct owner for this purpose).
func (c *territoryCore) isBorder(ref TileRef) bool {
	x, y := int(ref)%c.w, int(ref)/c.w
	own := c.view.StateAt(ref).Owner()
	if x > 0 && c.view.StateAt(ref-1).Owner() != own {
		return true
	}
	if x < c.w-1 && c.view.StateAt(ref+1).Owner() != own {
		return true
	}
	if y > 0 && c.view.StateAt(ref-TileRef(c.w)).Owner() != own {
		return true
	}
	if y < c.h-1 && c.view.StateAt(ref+TileRef(c.w)).Owner() != own {
		return true
	}
	return false
}

// neighbourTints scans differing 4-neighbours and reports whether any
// is friendly with, or embargoed by, the tile's owner.
func (c *territoryCore) neighbourTints(ref TileRef, own PlayerID) (friendly, embargoed bool) {
	x, y := int(ref)%c.w, int(ref)/c.w
	check := func(n TileRef) {
		other := c.view.StateAt(n).Owner()
		if other == own {
			return
		}
		rel := c.pal.Relation(own, other)
		if rel&RelationFriendly != 0 {
			friendly = true
		}
		if rel&RelationEmbargoed != 0 {
			embargoed = true
		}
	}
	if x > 0 {
		check(ref - 1)
	}
	if x < c.w-1 {
		check(ref + 1)
	}
	if y > 0 {
		check(ref - TileRef(c.w))
	}
	if y < c.h-1 {
		check(ref + TileRef(c.w))
	}
	return friendly, embargoed
}

// tileColor computes the composited color for a tile in the normal
// view from a given state word. nowTick drives contest expiry.
func (c *territoryCore) tileColor(ref TileRef, state TileState, nowTick uint16) RGBA {
	own := state.Owner()
	if own == NeutralID {
		if state.Fallout() {
			return falloutColor
		}
		return RGBA{} // fully transparent: terrain shows through
	}
	entry := c.pal.Entry(own)

	var col RGBA
	if c.isBorder(ref) {
		col = entry.Border
		col.A = 255
		friendly, embargoed := c.neighbourTints(ref, own)
		if friendly {
			col = tintToward(col, RGBA{G: 255, A: col.A}, borderTintRatio)
		}
		if embargoed {
			col = tintToward(col, RGBA{R: 255, A: col.A}, borderTintRatio)
		}
		if state.Defended() {
			col = tintToward(col, RGBA{R: 255, G: 255, B: 255, A: col.A}, 0.25)
		}
	} else {
		x, y := int(ref)%c.w, int(ref)/c.w
		if contest, ok := c.view.ContestAt(ref); ok && contestActive(contest, nowTick) {
			col = contestColor(c.pal, contest, x, y)
		} else if patternBit(entry.Pattern, x, y) {
			col = entry.Border
		} else {
			col = entry.Fill
		}
		col.A = territoryFillAlpha
	}

	if c.hover != NeutralID && own == c.hover {
		// The raster backend shows a steady highlight; the pulse lives
		// in the shader backend only.
		col = tintToward(col, c.hoverOpts.Color, c.hoverOpts.Strength)
	}
	return col
}

// altTileColor computes the minimal relation-only alternate view:
// border tiles colored by their owner's relation to the local player,
// everything else transparent except fallout.
func (c *territoryCore) altTileColor(ref TileRef, state TileState) RGBA {
	own := state.Owner()
	if own == NeutralID {
		if state.Fallout() {
			return falloutColor
		}
		return RGBA{}
	}
	if !c.isBorder(ref) {
		return RGBA{}
	}
	rel := c.pal.Relation(own, c.me)
	switch {
	case rel&RelationSelf != 0:
		return altSelfColor
	case rel&RelationFriendly != 0:
		return altAllyColor
	case rel&RelationEmbargoed != 0:
		return altEnemyColor
	default:
		return altNeutralColor
	}
}

func (c *territoryCore) setAlternateView(on bool) {
	if c.alt == on {
		return
	}
	c.alt = on
	c.dirty.markAll()
}

func (c *territoryCore) setHover(id PlayerID) {
	if c.hover == id {
		return
	}
	c.hover = id
	c.dirty.markAll()
}

func (c *territoryCore) refreshPalette() {
	c.pal = BuildPalette(c.view)
	c.dirty.markAll()
}
