package main

import (
	"flag"
	"fmt"
	"sort"
	"time"

	"github.com/mwestray/landgrab/internal/game"
)

// tickTimings aggregates per-tick engine costs for one backend run.
type tickTimings struct {
	backend string
	samples []time.Duration
}

func (t *tickTimings) observe(d time.Duration) {
	t.samples = append(t.samples, d)
}

func (t *tickTimings) report(ticks int) {
	if len(t.samples) == 0 {
		return
	}
	sorted := append([]time.Duration(nil), t.samples...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })
	var sum time.Duration
	for _, d := range sorted {
		sum += d
	}
	avg := sum / time.Duration(len(sorted))
	p95 := sorted[len(sorted)*95/100]
	fmt.Printf("%-7s ticks=%d avg=%v p95=%v max=%v\n",
		t.backend, ticks, avg, p95, sorted[len(sorted)-1])
}

func main() {
	var ticks, mapW, mapH, players int
	var seed int64
	flag.IntVar(&ticks, "ticks", 600, "simulation ticks to drive")
	flag.IntVar(&mapW, "map-width", 512, "map width in tiles")
	flag.IntVar(&mapH, "map-height", 512, "map height in tiles")
	flag.IntVar(&players, "players", 12, "sandbox players")
	flag.Int64Var(&seed, "seed", 42, "expansion seed")
	flag.Parse()

	fmt.Printf("=== territory engine bench ===\n")
	fmt.Printf("map=%dx%d players=%d ticks=%d seed=%d\n\n", mapW, mapH, players, ticks, seed)

	for _, backend := range []string{"raster", "shader"} {
		view := game.NewMemView(
			game.WithMapSize(mapW, mapH),
			game.WithSeed(seed),
			game.WithPlayers(players),
			spawns(mapW, mapH, players),
		)

		var r game.TerritoryRenderer
		if backend == "shader" {
			st, err := game.NewShaderTerritory(view, 1)
			if err != nil {
				fmt.Printf("shader backend unavailable: %v\n", err)
				continue
			}
			r = st
		} else {
			r = game.NewRasterTerritory(view, 1)
		}

		t := &tickTimings{backend: backend}
		for i := 0; i < ticks; i++ {
			diff := view.AdvanceTick()
			start := time.Now()
			r.Tick(diff)
			t.observe(time.Since(start))
		}
		t.report(ticks)
	}
}

// spawns scatters player seed rectangles across the map.
func spawns(mapW, mapH, players int) game.ViewOption {
	opts := make([]game.ViewOption, 0, players)
	for i := 1; i <= players; i++ {
		x := (i * 31) % (mapW - 8)
		y := (i * 53) % (mapH - 8)
		opts = append(opts, game.WithOwnerRect(game.PlayerID(i), x, y, 4, 4))
	}
	return game.CombineOptions(opts...)
}
