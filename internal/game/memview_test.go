package game

import "testing"

func TestMemView_DeterministicExpansion(t *testing.T) {
	build := func() *MemView {
		return NewMemView(
			WithMapSize(32, 32),
			WithSeed(7),
			WithPlayers(3),
			WithOwnerRect(1, 2, 2, 3, 3),
			WithOwnerRect(2, 20, 20, 3, 3),
		)
	}
	a, b := build(), build()

	for tick := 0; tick < 50; tick++ {
		da := a.AdvanceTick()
		db := b.AdvanceTick()
		if da.Tick != db.Tick || len(da.ChangedTiles) != len(db.ChangedTiles) {
			t.Fatalf("tick %d diverged: %d vs %d changed tiles", tick, len(da.ChangedTiles), len(db.ChangedTiles))
		}
	}
	for ref := 0; ref < 32*32; ref++ {
		if a.StateAt(TileRef(ref)) != b.StateAt(TileRef(ref)) {
			t.Fatalf("tile %d diverged after identical runs", ref)
		}
	}
}

func TestMemView_DiffListsChanges(t *testing.T) {
	view := NewMemView(WithMapSize(16, 16), WithPlayers(1), WithOwnerRect(1, 4, 4, 2, 2))
	diff := view.AdvanceTick()
	for _, ref := range diff.ChangedTiles {
		if view.StateAt(ref).Owner() != 1 {
			t.Fatalf("diff lists tile %d which player 1 does not own", ref)
		}
	}
	// Change sets reset between ticks.
	if d2 := view.AdvanceTick(); d2.Tick != 2 {
		t.Fatalf("tick = %d, want 2", d2.Tick)
	}
}

func TestMemView_UnitPlanStepping(t *testing.T) {
	view := NewMemView(WithMapSize(16, 16), WithUnit(UnitSnapshot{
		ID: 3, Kind: UnitWarship, Owner: 1, Active: true, Tile: TileRef(0),
	}))
	path := []TileRef{view.Ref(0, 0), view.Ref(1, 0), view.Ref(2, 0)}
	view.MoveUnit(3, path, 2)

	view.AdvanceTick()
	view.AdvanceTick() // tick 2: step 1
	u, _ := view.Unit(3)
	if u.Tile != view.Ref(1, 0) {
		t.Fatalf("unit tile = %v, want (1,0)", u.Tile)
	}

	for i := 0; i < 4; i++ {
		view.AdvanceTick()
	}
	u, _ = view.Unit(3)
	if u.Tile != view.Ref(2, 0) {
		t.Fatalf("unit tile = %v, want destination", u.Tile)
	}
	if u.Path != nil {
		t.Fatal("finished plan must be cleared")
	}
}
