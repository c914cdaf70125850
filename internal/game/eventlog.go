package game

import (
	"fmt"
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/vector"
)

const (
	logMaxEntries  = 60
	logVisibleRows = 8
	logLineHeight  = 14
)

// LogEntry is a single line in the event log.
type LogEntry struct {
	Tick    int64
	Message string
}

// EventLog is a screen-space layer showing the most recent semantic
// events in a ring buffer, newest at the bottom.
type EventLog struct {
	bus  *Bus
	view GameView

	entries []LogEntry
	head    int
	count   int
}

func NewEventLog(bus *Bus, view GameView) *EventLog {
	return &EventLog{
		bus:     bus,
		view:    view,
		entries: make([]LogEntry, logMaxEntries),
	}
}

func (l *EventLog) Init() {
	l.bus.Subscribe(KindBuildIntent, func(e Event) {
		ev := e.(BuildIntentEvent)
		x, y := l.view.XY(ev.Tile)
		l.Add(fmt.Sprintf("build %s at (%d,%d)", structureName(ev.Kind), x, y))
	})
	l.bus.Subscribe(KindUpgradeIntent, func(e Event) {
		x, y := l.view.XY(e.(UpgradeIntentEvent).Tile)
		l.Add(fmt.Sprintf("upgrade structure at (%d,%d)", x, y))
	})
	l.bus.Subscribe(KindAttackIntent, func(e Event) {
		ev := e.(AttackIntentEvent)
		x, y := l.view.XY(ev.Tile)
		l.Add(fmt.Sprintf("attack toward (%d,%d)", x, y))
	})
	l.bus.Subscribe(KindMoveWarship, func(e Event) {
		ev := e.(MoveWarshipEvent)
		x, y := l.view.XY(ev.Target)
		l.Add(fmt.Sprintf("warship %d -> (%d,%d)", ev.UnitID, x, y))
	})
	l.bus.Subscribe(KindReplaySpeed, func(e Event) {
		l.Add(fmt.Sprintf("replay speed %gx", e.(ReplaySpeedEvent).Speed))
	})
	l.bus.Subscribe(KindAlternateView, func(e Event) {
		if e.(AlternateViewEvent).Enabled {
			l.Add("tactical view on")
		} else {
			l.Add("tactical view off")
		}
	})
	l.bus.Subscribe(KindSendEmoji, func(e Event) {
		ev := e.(SendEmojiEvent)
		l.Add(fmt.Sprintf("emoji %s -> player %d", ev.Emoji, ev.Target))
	})
}

func structureName(k StructureKind) string {
	switch k {
	case StructureCity:
		return "city"
	case StructurePort:
		return "port"
	case StructureDefensePost:
		return "defense post"
	case StructureMissileSilo:
		return "missile silo"
	case StructureSAMLauncher:
		return "SAM launcher"
	default:
		return "structure"
	}
}

// Add appends an entry stamped with the view's current tick.
func (l *EventLog) Add(msg string) {
	l.entries[l.head] = LogEntry{Tick: l.view.Tick(), Message: msg}
	l.head = (l.head + 1) % logMaxEntries
	if l.count < logMaxEntries {
		l.count++
	}
}

// Recent returns entries in chronological order, oldest first.
func (l *EventLog) Recent() []LogEntry {
	result := make([]LogEntry, l.count)
	for i := 0; i < l.count; i++ {
		idx := (l.head - l.count + i + logMaxEntries) % logMaxEntries
		result[i] = l.entries[idx]
	}
	return result
}

func (l *EventLog) Tick(*TickDiff) {}

// Render stacks the newest rows in the bottom-left corner, newest at
// the bottom with a highlight pill.
func (l *EventLog) Render(dst *ebiten.Image, _ *Camera) {
	entries := l.Recent()
	if len(entries) > logVisibleRows {
		entries = entries[len(entries)-logVisibleRows:]
	}
	if len(entries) == 0 {
		return
	}

	h := dst.Bounds().Dy()
	y := h - 8 - len(entries)*logLineHeight
	for i, e := range entries {
		line := fmt.Sprintf("%5d  %s", e.Tick, e.Message)
		bg := color.RGBA{R: 10, G: 12, B: 10, A: 150}
		if i == len(entries)-1 {
			bg = color.RGBA{R: 25, G: 35, B: 25, A: 210}
		}
		vector.FillRect(dst, 6, float32(y-2), float32(len(line)*6+10), logLineHeight, bg, false)
		ebitenutil.DebugPrintAt(dst, line, 10, y)
		y += logLineHeight
	}
}

func (l *EventLog) ShouldTransform() bool { return false }
