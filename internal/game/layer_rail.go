package game

import (
	"image/color"
	"math"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"
)

// railLinkRange is the maximum tile distance between two structures
// for a rail link to form.
const railLinkRange = 14.0

// railLink joins two linkable structures.
type railLink struct {
	a, b TileRef
}

// RailLayer draws rail polylines between linked structures (cities and
// ports). Links are recomputed only when the structure set changes.
type RailLayer struct {
	view       GameView
	structures *StructuresLayer

	links       []railLink
	seenVersion int
}

func NewRailLayer(view GameView, structures *StructuresLayer) *RailLayer {
	return &RailLayer{view: view, structures: structures, seenVersion: -1}
}

func (l *RailLayer) Init() {}

func (l *RailLayer) Tick(*TickDiff) {
	if l.structures.Version() == l.seenVersion {
		return
	}
	l.seenVersion = l.structures.Version()
	l.rebuildLinks()
}

func linkable(k StructureKind) bool {
	return k == StructureCity || k == StructurePort
}

func (l *RailLayer) rebuildLinks() {
	var nodes []TileRef
	l.structures.Structures(func(s placedStructure) {
		if linkable(s.Kind) {
			nodes = append(nodes, s.Tile)
		}
	})

	l.links = l.links[:0]
	for i := 0; i < len(nodes); i++ {
		for j := i + 1; j < len(nodes); j++ {
			ax, ay := l.view.XY(nodes[i])
			bx, by := l.view.XY(nodes[j])
			d := math.Hypot(float64(ax-bx), float64(ay-by))
			if d <= railLinkRange {
				l.links = append(l.links, railLink{a: nodes[i], b: nodes[j]})
			}
		}
	}
}

func (l *RailLayer) Render(dst *ebiten.Image, cam *Camera) {
	railCol := color.RGBA{R: 115, G: 85, B: 55, A: 230}
	tieCol := color.RGBA{R: 70, G: 55, B: 40, A: 230}

	for _, lk := range l.links {
		ax, ay := tileCenter(l.view, lk.a)
		bx, by := tileCenter(l.view, lk.b)
		x1, y1 := cam.WorldToScreen(WorldPoint{X: ax, Y: ay})
		x2, y2 := cam.WorldToScreen(WorldPoint{X: bx, Y: by})
		vector.StrokeLine(dst, float32(x1), float32(y1), float32(x2), float32(y2), 2.0, railCol, false)

		// Cross-ties every few pixels, perpendicular to the track.
		dx, dy := x2-x1, y2-y1
		length := math.Hypot(dx, dy)
		if length < 1 {
			continue
		}
		nx, ny := -dy/length, dx/length
		tieHalf := 3.0
		spacing := 9.0
		for t := spacing; t < length; t += spacing {
			cx := x1 + dx*t/length
			cy := y1 + dy*t/length
			vector.StrokeLine(dst,
				float32(cx-nx*tieHalf), float32(cy-ny*tieHalf),
				float32(cx+nx*tieHalf), float32(cy+ny*tieHalf),
				1.0, tieCol, false)
		}
	}
}

func (l *RailLayer) ShouldTransform() bool { return true }
