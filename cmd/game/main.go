package main

import (
	"flag"
	"log"
	"time"

	"github.com/hajimehoshi/ebiten/v2"

	"github.com/mwestray/landgrab/internal/game"
)

func main() {
	var seed int64
	var mapW, mapH, players int
	flag.Int64Var(&seed, "seed", time.Now().UnixNano(), "sandbox expansion seed")
	flag.IntVar(&mapW, "map-width", 256, "map width in tiles")
	flag.IntVar(&mapH, "map-height", 160, "map height in tiles")
	flag.IntVar(&players, "players", 6, "number of sandbox players")
	flag.Parse()

	view := game.NewMemView(
		game.WithMapSize(mapW, mapH),
		game.WithSeed(seed),
		game.WithPlayers(players),
		game.WithOwnerRect(1, mapW/8, mapH/2, 6, 6),
		game.WithOwnerRect(2, mapW*6/8, mapH/4, 6, 6),
		game.WithOwnerRect(3, mapW/2, mapH*3/4, 6, 6),
		game.WithRelation(1, 2, game.RelationFriendly),
		game.WithRelation(2, 1, game.RelationFriendly),
		game.WithRelation(3, 1, game.RelationEmbargoed),
		game.WithUnit(game.UnitSnapshot{
			ID: 1, Kind: game.UnitWarship, Owner: 1, Active: true,
			Tile: warshipSpawn(mapW, mapH),
		}),
	)

	client, err := game.NewClient(view, 1)
	if err != nil {
		log.Fatal(err)
	}

	ebiten.SetWindowTitle("Landgrab")
	ebiten.SetWindowSize(1280, 720)
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	if err := ebiten.RunGame(client); err != nil {
		log.Fatal(err)
	}
}

// warshipSpawn places the demo warship near player 1's spawn.
func warshipSpawn(mapW, mapH int) game.TileRef {
	return game.TileRef((mapH/2+3)*mapW + mapW/8 - 4)
}
