package game

import "math"

// RGBA is a straight-alpha color used by the territory color rules and
// palette tables. Backends premultiply at their output boundary: the
// raster path before WritePixels, the shader in its final mix.
type RGBA struct {
	R, G, B, A uint8
}

// Fixed colors shared by both backends.
var (
	falloutColor = RGBA{R: 120, G: 255, B: 71, A: 150}
	// Alternate-view relation colors (relation-only border view).
	altSelfColor    = RGBA{R: 0, G: 255, B: 220, A: 255}
	altAllyColor    = RGBA{R: 80, G: 220, B: 80, A: 255}
	altEnemyColor   = RGBA{R: 230, G: 70, B: 70, A: 255}
	altNeutralColor = RGBA{R: 160, G: 160, B: 160, A: 255}
)

// territoryFillAlpha is the partial opacity of non-border owned tiles.
const territoryFillAlpha = 150

// borderTintRatio is how far border colors are pulled toward green
// (friendly neighbour) or red (embargoed neighbour).
const borderTintRatio = 0.35

// PaletteEntry is the per-player color pair plus optional pattern.
type PaletteEntry struct {
	Fill    RGBA
	Border  RGBA
	Pattern uint64 // 8x8 bit pattern, 0 = none
}

// Palette holds per-player colors and the relation matrix, both keyed
// by small id. Rebuilt whenever roster or diplomacy changes.
type Palette struct {
	entries   []PaletteEntry
	relations []Relation
	n         int // matrix dimension = max small id + 1
}

// BuildPalette derives colors and relations from the current roster.
func BuildPalette(view GameView) *Palette {
	players := view.Players()
	maxID := PlayerID(0)
	for _, p := range players {
		if p.ID > maxID {
			maxID = p.ID
		}
	}
	n := int(maxID) + 1
	pal := &Palette{
		entries:   make([]PaletteEntry, n),
		relations: make([]Relation, n*n),
		n:         n,
	}
	for _, p := range players {
		pal.entries[p.ID] = paletteEntryFor(p)
	}
	for _, a := range players {
		for _, b := range players {
			pal.relations[int(a.ID)*n+int(b.ID)] = view.Relation(a.ID, b.ID)
		}
	}
	return pal
}

func paletteEntryFor(p PlayerInfo) PaletteEntry {
	// Hue from the color seed, spread with the golden angle so dense
	// small ids land far apart on the wheel.
	hue := math.Mod(float64(p.ColorSeed)*0.38196601125, 1.0)
	fr, fg, fb := hslToRGB(hue, 0.55, 0.55)
	br, bg, bb := hslToRGB(hue, 0.65, 0.35)
	return PaletteEntry{
		Fill:    RGBA{R: fr, G: fg, B: fb, A: 255},
		Border:  RGBA{R: br, G: bg, B: bb, A: 255},
		Pattern: p.Pattern,
	}
}

// Entry returns the palette entry for a player id. Out-of-range ids
// (stale diffs racing a roster rebuild) get the zero entry.
func (p *Palette) Entry(id PlayerID) PaletteEntry {
	if int(id) >= len(p.entries) {
		return PaletteEntry{}
	}
	return p.entries[id]
}

// Relation returns the cached relation flags from a to b.
func (p *Palette) Relation(a, b PlayerID) Relation {
	if int(a) >= p.n || int(b) >= p.n {
		return 0
	}
	return p.relations[int(a)*p.n+int(b)]
}

// Size returns the matrix dimension (max small id + 1).
func (p *Palette) Size() int { return p.n }

// tintToward pulls c toward target by ratio, additively composable.
func tintToward(c RGBA, target RGBA, ratio float64) RGBA {
	mix := func(a, b uint8) uint8 {
		v := float64(a) + (float64(b)-float64(a))*ratio
		if v < 0 {
			v = 0
		}
		if v > 255 {
			v = 255
		}
		return uint8(v)
	}
	return RGBA{R: mix(c.R, target.R), G: mix(c.G, target.G), B: mix(c.B, target.B), A: c.A}
}

// patternBit samples an 8x8 bit pattern at a world position.
func patternBit(pattern uint64, x, y int) bool {
	if pattern == 0 {
		return false
	}
	bit := uint((y&7)*8 + (x & 7))
	return pattern&(1<<bit) != 0
}

func hslToRGB(h, s, l float64) (uint8, uint8, uint8) {
	var r, g, b float64
	if s == 0 {
		r, g, b = l, l, l
	} else {
		var q float64
		if l < 0.5 {
			q = l * (1 + s)
		} else {
			q = l + s - l*s
		}
		p := 2*l - q
		r = hueToRGB(p, q, h+1.0/3)
		g = hueToRGB(p, q, h)
		b = hueToRGB(p, q, h-1.0/3)
	}
	return uint8(r*255 + 0.5), uint8(g*255 + 0.5), uint8(b*255 + 0.5)
}

func hueToRGB(p, q, t float64) float64 {
	if t < 0 {
		t++
	}
	if t > 1 {
		t--
	}
	switch {
	case t < 1.0/6:
		return p + (q-p)*6*t
	case t < 1.0/2:
		return q
	case t < 2.0/3:
		return p + (q-p)*(2.0/3-t)*6
	default:
		return p
	}
}
