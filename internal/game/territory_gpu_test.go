package game

import (
	"errors"
	"testing"
)

// shaderFixture builds the backend without touching the GPU: textures
// are allocated lazily in Render, which these tests never call. The
// constructor still compiles the Kage source, so a broken shader fails
// every test here.
func shaderFixture(t *testing.T, opts ...ViewOption) (*MemView, *ShaderTerritory) {
	t.Helper()
	base := []ViewOption{WithMapSize(8, 8), WithPlayers(3)}
	view := NewMemView(append(base, opts...)...)
	g, err := NewShaderTerritory(view, 1)
	if err != nil {
		t.Fatalf("shader backend: %v", err)
	}
	return view, g
}

func stateBytes(g *ShaderTerritory, ref TileRef) [4]byte {
	x, y := int(ref)%g.w, int(ref)/g.w
	o := (y*g.texW + x) * 4
	return [4]byte{g.stateBuf[o], g.stateBuf[o+1], g.stateBuf[o+2], g.stateBuf[o+3]}
}

func animBytes(g *ShaderTerritory, ref TileRef) [4]byte {
	x, y := int(ref)%g.w, int(ref)/g.w
	o := (y*g.texW + x) * 4
	return [4]byte{g.animBuf[o], g.animBuf[o+1], g.animBuf[o+2], g.animBuf[o+3]}
}

func TestShaderBackend_StateEncoding(t *testing.T) {
	view, g := shaderFixture(t, WithOwnerRect(2, 1, 1, 2, 2))
	ref := view.Ref(1, 1)

	got := stateBytes(g, ref)
	if got[0] != 2 || got[1] != 0 {
		t.Fatalf("owner encoding = %v, want R=2 G=0", got)
	}

	// Flags pack into G's low nibble, the owner high bits into the
	// high nibble.
	view.SetState(ref, MakeTileState(300, true, false))
	g.PaintTile(ref)
	got = stateBytes(g, ref)
	if got[0] != 300&0xFF {
		t.Fatalf("owner low byte = %d, want %d", got[0], 300&0xFF)
	}
	if got[1] != 1|byte(300>>8)<<4 {
		t.Fatalf("flags+high nibble = %#x, want %#x", got[1], 1|byte(300>>8)<<4)
	}

	view.SetState(ref, MakeTileState(0, false, true))
	g.PaintTile(ref)
	got = stateBytes(g, ref)
	if got[0] != 0 || got[1] != 2 {
		t.Fatalf("fallout encoding = %v, want R=0 G=2", got)
	}
}

func TestShaderBackend_ContestChannels(t *testing.T) {
	view := NewMemView(WithMapSize(8, 8))
	g, err := NewShaderTerritory(view, 1)
	if err != nil {
		t.Fatalf("shader backend: %v", err)
	}
	ref := view.Ref(3, 3)
	view.SetState(ref, MakeTileState(1, false, false))
	diff := view.AdvanceTick()
	view.SetContest(ref, ContestState{
		ID: 9, Defender: 1, Attacker: 2, Strength: 0.5, LastUpdated: contestTick(view.Tick() + 1),
	})
	g.Tick(diff)
	g.Tick(view.AdvanceTick())

	got := stateBytes(g, ref)
	if got[2] != 2 {
		t.Fatalf("attacker channel = %d, want 2", got[2])
	}
	if got[3] != 128 {
		t.Fatalf("strength channel = %d, want 128", got[3])
	}
	if _, tracked := g.contestTiles[ref]; !tracked {
		t.Fatal("active contest must be tracked for expiry")
	}

	// Run the clock past the contest duration; the expiry sweep must
	// clear both channels without a diff entry for the tile.
	for i := 0; i <= contestDurationTicks; i++ {
		g.Tick(view.AdvanceTick())
	}
	got = stateBytes(g, ref)
	if got[2] != 0 || got[3] != 0 {
		t.Fatalf("expired contest channels = %v, want zeroed", got)
	}
	if _, tracked := g.contestTiles[ref]; tracked {
		t.Fatal("expired contest must leave the tracking set")
	}
}

func TestShaderBackend_PaletteEncoding(t *testing.T) {
	view, g := shaderFixture(t, WithRelation(1, 2, RelationFriendly|RelationEmbargoed))
	view.Players()[1].Pattern = 0xA5 // row 0 of player 2's 8x8 pattern
	g.RefreshPalette()

	entry := g.pal.Entry(2)
	o := 2 * 4
	if g.palBuf[o] != entry.Fill.R || g.palBuf[o+1] != entry.Fill.G || g.palBuf[o+2] != entry.Fill.B {
		t.Fatalf("fill row mismatch for player 2")
	}
	o += paletteDim * 4
	if g.palBuf[o] != entry.Border.R {
		t.Fatalf("border row mismatch for player 2")
	}
	if got := g.palBuf[(2*paletteDim+2)*4]; got != 0xA5 {
		t.Fatalf("pattern row 0 byte = %#x, want 0xA5", got)
	}
	if got := g.palBuf[(3*paletteDim+2)*4]; got != 0 {
		t.Fatalf("pattern row 1 byte = %#x, want 0", got)
	}

	// Relation matrix is addressed as (a, b) = (x, y).
	rel := g.relBuf[(2*paletteDim+1)*4]
	if Relation(rel) != RelationFriendly|RelationEmbargoed {
		t.Fatalf("relation(1,2) byte = %#x", rel)
	}
	if got := g.relBuf[(1*paletteDim+1)*4]; Relation(got) != RelationSelf {
		t.Fatalf("relation(1,1) byte = %#x, want self", got)
	}
	if !g.palDirty || !g.relDirty {
		t.Fatal("refresh must schedule table re-uploads")
	}
}

func TestShaderBackend_TickBuildsAnimTexture(t *testing.T) {
	view := NewMemView(WithMapSize(8, 8))
	g, err := NewShaderTerritory(view, 1)
	if err != nil {
		t.Fatalf("shader backend: %v", err)
	}
	g.Tick(view.AdvanceTick()) // quiet tick establishes prev

	ref := view.Ref(3, 3)
	view.SetState(ref, MakeTileState(2, false, false))
	g.Tick(view.AdvanceTick())

	if !g.animDirty {
		t.Fatal("owner change must schedule an anim upload")
	}
	got := animBytes(g, ref)
	if got[3] != 255 {
		t.Fatalf("changed tile mask = %d, want 255", got[3])
	}
	if got[0] != 0 {
		t.Fatalf("pre-change owner = %d, want 0", got[0])
	}
	// The dilated mask pulls in the 4-neighbours, nothing further.
	if animBytes(g, view.Ref(2, 3))[3] != 255 {
		t.Fatal("neighbour missing from anim mask")
	}
	if animBytes(g, view.Ref(0, 0))[3] != 0 {
		t.Fatal("far tile must not animate")
	}
	if g.progress != 0 {
		t.Fatalf("tick must reset progress, got %v", g.progress)
	}
}

func TestShaderBackend_TickProgressClamped(t *testing.T) {
	_, g := shaderFixture(t)
	g.SetTickProgress(-0.5)
	if g.progress != 0 {
		t.Fatalf("progress = %v, want 0", g.progress)
	}
	g.SetTickProgress(1.5)
	if g.progress != 1 {
		t.Fatalf("progress = %v, want 1", g.progress)
	}
}

func TestShaderBackend_DirtyRows(t *testing.T) {
	view, g := shaderFixture(t)
	g.dirty.clear()

	view.SetState(view.Ref(2, 5), MakeTileState(1, false, false))
	g.PaintTile(view.Ref(2, 5))
	if !g.dirty.rows[5] || g.dirty.rows[4] {
		t.Fatalf("row tracking wrong: %v", g.dirty.rows)
	}

	g.MarkAllDirty()
	if !g.dirty.full {
		t.Fatal("MarkAllDirty must force a full state upload")
	}
}

func TestShaderBackend_RejectsOversizedMap(t *testing.T) {
	view := NewMemView(WithMapSize(maxTextureDim+1, 4))
	_, err := NewShaderTerritory(view, 1)
	var be *BackendError
	if !errors.As(err, &be) {
		t.Fatalf("err = %v, want *BackendError", err)
	}
	if be.Stage != "texture-size" {
		t.Fatalf("stage = %q, want texture-size", be.Stage)
	}
}

func TestNewTerritoryRenderer_ForcedRaster(t *testing.T) {
	view := NewMemView(WithMapSize(8, 8), WithPlayers(1))
	r := NewTerritoryRenderer(view, 1, true)
	if r.Backend() != "raster" {
		t.Fatalf("backend = %q, want raster", r.Backend())
	}
}
