package game

import (
	"fmt"
	"image/color"
	"sort"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	text "github.com/hajimehoshi/ebiten/v2/text/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"
)

const (
	rosterPanelWidth   = 190
	rosterRowHeight    = 16
	rosterRecountTicks = 10

	attackRatioMin  = 0.05
	attackRatioStep = 0.05
)

// rosterRow is one player entry in the HUD roster panel.
type rosterRow struct {
	id    PlayerID
	name  string
	tiles int
}

// HUDLayer is the screen-space UI overlay: match status line, attack
// ratio bar, roster panel with the hover-highlight hook, and the
// current selection readout.
type HUDLayer struct {
	bus     *Bus
	view    GameView
	me      PlayerID
	backend string

	attackRatio float64
	replaySpeed float64
	selection   []int

	roster  []rosterRow
	hovered PlayerID
	width   int // last rendered screen width, for roster hit tests

	cursorX, cursorY float64
	pal              *Palette
}

func NewHUDLayer(bus *Bus, view GameView, me PlayerID, backend string) *HUDLayer {
	return &HUDLayer{
		bus:         bus,
		view:        view,
		me:          me,
		backend:     backend,
		attackRatio: 0.25,
		replaySpeed: 1,
		pal:         BuildPalette(view),
	}
}

func (l *HUDLayer) Init() {
	l.bus.Subscribe(KindAttackRatio, func(e Event) {
		// One wheel notch is 120 units; scroll up raises the ratio.
		notches := -e.(AttackRatioEvent).Delta / 120
		l.attackRatio = clamp(l.attackRatio+notches*attackRatioStep, attackRatioMin, 1)
	})
	l.bus.Subscribe(KindReplaySpeed, func(e Event) {
		l.replaySpeed = e.(ReplaySpeedEvent).Speed
	})
	l.bus.Subscribe(KindSelectionChanged, func(e Event) {
		l.selection = e.(SelectionChangedEvent).UnitIDs
	})
	// Alt-tap on another player's roster row sends them an emoji.
	l.bus.Subscribe(KindPingMenu, func(e Event) {
		ev := e.(PingMenuEvent)
		if id, ok := l.rosterRowAt(ev.ScreenX, ev.ScreenY); ok && id != l.me {
			l.bus.Publish(SendEmojiEvent{Emoji: "wave", Target: id})
		}
	})
}

// rosterRowAt hit-tests the roster panel. The panel is anchored to the
// right edge, so hits resolve only after the first rendered frame has
// recorded the screen width.
func (l *HUDLayer) rosterRowAt(x, y float64) (PlayerID, bool) {
	if l.width == 0 || len(l.roster) == 0 {
		return 0, false
	}
	panelX := l.width - rosterPanelWidth - 8
	if x < float64(panelX) || x >= float64(panelX+rosterPanelWidth) {
		return 0, false
	}
	row := (int(y) - 10) / rosterRowHeight
	if y < 10 || row >= len(l.roster) {
		return 0, false
	}
	return l.roster[row].id, true
}

// AttackRatio exposes the current troop ratio for intent emitters.
func (l *HUDLayer) AttackRatio() float64 { return l.attackRatio }

// SetCursor feeds the cursor position for roster hover detection.
func (l *HUDLayer) SetCursor(x, y float64) { l.cursorX, l.cursorY = x, y }

func (l *HUDLayer) Tick(diff *TickDiff) {
	if diff.RosterChanged {
		l.pal = BuildPalette(l.view)
	}
	if diff.Tick%rosterRecountTicks == 0 || diff.RosterChanged {
		l.recountRoster()
	}
}

// recountRoster tallies owned tiles per player, largest first.
func (l *HUDLayer) recountRoster() {
	counts := make(map[PlayerID]int)
	n := l.view.MapWidth() * l.view.MapHeight()
	for ref := 0; ref < n; ref++ {
		if own := l.view.StateAt(TileRef(ref)).Owner(); own != NeutralID {
			counts[own]++
		}
	}
	l.roster = l.roster[:0]
	for _, p := range l.view.Players() {
		l.roster = append(l.roster, rosterRow{id: p.ID, name: p.Name, tiles: counts[p.ID]})
	}
	sort.Slice(l.roster, func(i, j int) bool { return l.roster[i].tiles > l.roster[j].tiles })
}

func (l *HUDLayer) Render(dst *ebiten.Image, _ *Camera) {
	l.drawStatus(dst)
	l.drawRoster(dst)
}

func (l *HUDLayer) drawStatus(dst *ebiten.Image) {
	if face := hudTitleFace(); face != nil {
		op := &text.DrawOptions{}
		op.GeoM.Translate(10, 6)
		op.ColorScale.ScaleWithColor(color.RGBA{R: 230, G: 230, B: 215, A: 255})
		text.Draw(dst, "LANDGRAB", face, op)
	}

	status := fmt.Sprintf("tick %d  speed %gx  %s", l.view.Tick(), l.replaySpeed, l.backend)
	ebitenutil.DebugPrintAt(dst, status, 10, 28)
	if len(l.selection) > 0 {
		ebitenutil.DebugPrintAt(dst, fmt.Sprintf("selected unit %v", l.selection), 10, 42)
	}

	// Attack ratio bar.
	const barX, barY, barW, barH = 10, 60, 120, 8
	vector.FillRect(dst, barX, barY, barW, barH, color.RGBA{R: 30, G: 30, B: 30, A: 200}, false)
	vector.FillRect(dst, barX, barY, float32(barW*l.attackRatio), barH,
		color.RGBA{R: 200, G: 90, B: 60, A: 230}, false)
	vector.StrokeRect(dst, barX, barY, barW, barH, 1.0, color.RGBA{R: 120, G: 120, B: 120, A: 255}, false)
	ebitenutil.DebugPrintAt(dst, fmt.Sprintf("attack %d%%", int(l.attackRatio*100+0.5)), barX+barW+8, barY-4)
}

func (l *HUDLayer) drawRoster(dst *ebiten.Image) {
	if len(l.roster) == 0 {
		return
	}
	l.width = dst.Bounds().Dx()
	panelX := l.width - rosterPanelWidth - 8
	panelH := len(l.roster)*rosterRowHeight + 8

	vector.FillRect(dst, float32(panelX), 8, rosterPanelWidth, float32(panelH),
		color.RGBA{R: 10, G: 12, B: 10, A: 200}, false)

	hovered, _ := l.rosterRowAt(l.cursorX, l.cursorY)
	y := 12
	for _, row := range l.roster {
		if row.id == hovered {
			vector.FillRect(dst, float32(panelX+2), float32(y-2), rosterPanelWidth-4, rosterRowHeight,
				color.RGBA{R: 40, G: 50, B: 40, A: 220}, false)
		}

		entry := l.pal.Entry(row.id)
		vector.FillRect(dst, float32(panelX+6), float32(y+2), 8, 8,
			color.RGBA{R: entry.Fill.R, G: entry.Fill.G, B: entry.Fill.B, A: 255}, false)

		name := row.name
		if row.id == l.me {
			name += " (you)"
		}
		ebitenutil.DebugPrintAt(dst, fmt.Sprintf("%-14s %6d", name, row.tiles), panelX+20, y)
		y += rosterRowHeight
	}

	if hovered != l.hovered {
		l.hovered = hovered
		l.bus.Publish(HoverPlayerEvent{ID: hovered})
	}
}

func (l *HUDLayer) ShouldTransform() bool { return false }
