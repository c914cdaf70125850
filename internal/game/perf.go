package game

import (
	"fmt"
	"image/color"
	"log"
	"sort"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/vector"
)

// perfWindow is how many recent frame/tick samples are retained.
const perfWindow = 180

// PerfMonitor collects frame and tick durations in fixed rings and
// renders the Shift+D performance overlay. The full report can be
// copied to the clipboard for bug filing.
type PerfMonitor struct {
	bus     *Bus
	backend string

	frames     [perfWindow]float64 // ms
	frameHead  int
	frameCount int
	ticks      [perfWindow]float64 // ms
	tickHead   int
	tickCount  int

	visible  bool
	copiedAt time.Time
}

func NewPerfMonitor(bus *Bus, backend string) *PerfMonitor {
	return &PerfMonitor{bus: bus, backend: backend}
}

func (p *PerfMonitor) Init() {
	p.bus.Subscribe(KindPerfOverlay, func(Event) {
		p.visible = !p.visible
	})
}

// Visible reports whether the overlay is currently shown.
func (p *PerfMonitor) Visible() bool { return p.visible }

// ObserveFrame records one frame's update+draw duration.
func (p *PerfMonitor) ObserveFrame(d time.Duration) {
	p.frames[p.frameHead] = float64(d.Microseconds()) / 1000
	p.frameHead = (p.frameHead + 1) % perfWindow
	if p.frameCount < perfWindow {
		p.frameCount++
	}
}

// ObserveTick records one simulation tick application.
func (p *PerfMonitor) ObserveTick(d time.Duration) {
	p.ticks[p.tickHead] = float64(d.Microseconds()) / 1000
	p.tickHead = (p.tickHead + 1) % perfWindow
	if p.tickCount < perfWindow {
		p.tickCount++
	}
}

// ring returns the retained samples, unordered.
func ring(buf *[perfWindow]float64, count int) []float64 {
	out := make([]float64, count)
	copy(out, buf[:count])
	return out
}

func perfStats(samples []float64) (avg, p95, max float64) {
	if len(samples) == 0 {
		return 0, 0, 0
	}
	sorted := append([]float64(nil), samples...)
	sort.Float64s(sorted)
	sum := 0.0
	for _, v := range sorted {
		sum += v
	}
	avg = sum / float64(len(sorted))
	p95 = sorted[len(sorted)*95/100]
	max = sorted[len(sorted)-1]
	return avg, p95, max
}

// Report builds the clipboard debug report.
func (p *PerfMonitor) Report() string {
	fAvg, fP95, fMax := perfStats(ring(&p.frames, p.frameCount))
	tAvg, tP95, tMax := perfStats(ring(&p.ticks, p.tickCount))

	var b strings.Builder
	fmt.Fprintf(&b, "--- landgrab perf report ---\n")
	fmt.Fprintf(&b, "backend=%s fps=%.1f tps=%.1f\n", p.backend, ebiten.ActualFPS(), ebiten.ActualTPS())
	fmt.Fprintf(&b, "frame ms: avg=%.2f p95=%.2f max=%.2f (n=%d)\n", fAvg, fP95, fMax, p.frameCount)
	fmt.Fprintf(&b, "tick  ms: avg=%.2f p95=%.2f max=%.2f (n=%d)\n", tAvg, tP95, tMax, p.tickCount)
	return b.String()
}

// CopyReport puts the report on the system clipboard.
func (p *PerfMonitor) CopyReport() {
	if err := clipboard.WriteAll(p.Report()); err != nil {
		log.Printf("perf: clipboard copy failed: %v", err)
		return
	}
	p.copiedAt = time.Now()
}

func (p *PerfMonitor) Tick(*TickDiff) {}

func (p *PerfMonitor) Render(dst *ebiten.Image, _ *Camera) {
	if !p.visible {
		return
	}
	fAvg, fP95, _ := perfStats(ring(&p.frames, p.frameCount))
	tAvg, _, tMax := perfStats(ring(&p.ticks, p.tickCount))

	lines := []string{
		fmt.Sprintf("fps %.1f  tps %.1f  %s", ebiten.ActualFPS(), ebiten.ActualTPS(), p.backend),
		fmt.Sprintf("frame avg %.2fms  p95 %.2fms", fAvg, fP95),
		fmt.Sprintf("tick  avg %.2fms  max %.2fms", tAvg, tMax),
		"shift+c copies report",
	}
	if time.Since(p.copiedAt) < 2*time.Second {
		lines = append(lines, "copied to clipboard")
	}

	const x, y, lineH = 10, 90, 14
	w := 0
	for _, l := range lines {
		if len(l) > w {
			w = len(l)
		}
	}
	vector.FillRect(dst, x-4, y-4, float32(w*6+12), float32(len(lines)*lineH+8),
		color.RGBA{R: 15, G: 18, B: 15, A: 210}, false)
	for i, l := range lines {
		ebitenutil.DebugPrintAt(dst, l, x, y+i*lineH)
	}
}

func (p *PerfMonitor) ShouldTransform() bool { return false }
