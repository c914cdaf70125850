package game

import "math/rand"

// MemView is an in-memory GameView. The authoritative simulation is an
// external collaborator, so MemView stands in for it: cmd/game uses it
// as a self-contained sandbox, cmd/headless-bench as a driver, and the
// tests as a deterministic fixture. Its "simulation" is a scripted
// frontier expansion, not game logic.
type MemView struct {
	w, h    int
	state   []TileState
	terrain []Terrain

	players   []PlayerInfo
	relations map[[2]PlayerID]Relation
	units     map[int]UnitSnapshot
	contests  map[TileRef]ContestState

	tick    int64
	rng     *rand.Rand
	changed map[TileRef]struct{}

	rosterDirty    bool
	relationsDirty bool
	changedUnits   map[int]struct{}

	pendingQueries []pendingBuildQuery
}

type pendingBuildQuery struct {
	ref TileRef
	cb  func(TileRef, []BuildOption)
}

// viewOptionKind orders option application: infra first, then content.
type viewOptionKind int

const (
	viewOptInfra viewOptionKind = iota
	viewOptContent
)

// ViewOption configures a MemView during construction.
type ViewOption struct {
	kind viewOptionKind
	fn   func(*MemView)
}

// WithMapSize sets the grid dimensions.
func WithMapSize(w, h int) ViewOption {
	return ViewOption{viewOptInfra, func(v *MemView) {
		v.w, v.h = w, h
	}}
}

// WithSeed seeds the scripted expansion for deterministic runs.
func WithSeed(seed int64) ViewOption {
	return ViewOption{viewOptInfra, func(v *MemView) {
		v.rng = rand.New(rand.NewSource(seed)) // #nosec G404 -- sandbox fixture
	}}
}

// WithPlayers registers n players with ids 1..n.
func WithPlayers(n int) ViewOption {
	return ViewOption{viewOptContent, func(v *MemView) {
		for i := 1; i <= n; i++ {
			v.players = append(v.players, PlayerInfo{
				ID:        PlayerID(i),
				Name:      playerName(i),
				ColorSeed: uint32(i * 2654435761),
			})
		}
	}}
}

// WithOwnerRect claims a rectangle of tiles for a player.
func WithOwnerRect(id PlayerID, x, y, w, h int) ViewOption {
	return ViewOption{viewOptContent, func(v *MemView) {
		for ty := y; ty < y+h; ty++ {
			for tx := x; tx < x+w; tx++ {
				if v.InBounds(tx, ty) {
					v.state[v.Ref(tx, ty)] = MakeTileState(id, false, false)
				}
			}
		}
	}}
}

// WithRelation sets the directed relation flags from a to b.
func WithRelation(a, b PlayerID, rel Relation) ViewOption {
	return ViewOption{viewOptContent, func(v *MemView) {
		v.relations[[2]PlayerID{a, b}] = rel
	}}
}

// WithUnit places a mobile unit.
func WithUnit(u UnitSnapshot) ViewOption {
	return ViewOption{viewOptContent, func(v *MemView) {
		v.units[u.ID] = u
	}}
}

// CombineOptions merges several content options into one, for callers
// assembling option lists programmatically.
func CombineOptions(opts ...ViewOption) ViewOption {
	return ViewOption{viewOptContent, func(v *MemView) {
		for _, o := range opts {
			o.fn(v)
		}
	}}
}

// NewMemView builds a fixture view. Defaults: 64x64 map, all land,
// no players, seed 1.
func NewMemView(opts ...ViewOption) *MemView {
	v := &MemView{
		w: 64, h: 64,
		rng:          rand.New(rand.NewSource(1)), // #nosec G404 -- sandbox fixture
		relations:    make(map[[2]PlayerID]Relation),
		units:        make(map[int]UnitSnapshot),
		contests:     make(map[TileRef]ContestState),
		changed:      make(map[TileRef]struct{}),
		changedUnits: make(map[int]struct{}),
	}
	for _, o := range opts {
		if o.kind == viewOptInfra {
			o.fn(v)
		}
	}
	v.state = make([]TileState, v.w*v.h)
	v.terrain = make([]Terrain, v.w*v.h)
	for i := range v.terrain {
		v.terrain[i] = TerrainLand
	}
	for _, o := range opts {
		if o.kind == viewOptContent {
			o.fn(v)
		}
	}
	return v
}

func playerName(i int) string {
	names := []string{"Aster", "Briar", "Calder", "Dune", "Ember", "Fenn", "Gorse", "Heath"}
	return names[(i-1)%len(names)]
}

func (v *MemView) MapWidth() int  { return v.w }
func (v *MemView) MapHeight() int { return v.h }

func (v *MemView) Ref(x, y int) TileRef { return TileRef(y*v.w + x) }

func (v *MemView) XY(ref TileRef) (int, int) {
	return int(ref) % v.w, int(ref) / v.w
}

func (v *MemView) InBounds(x, y int) bool {
	return x >= 0 && y >= 0 && x < v.w && y < v.h
}

func (v *MemView) StateAt(ref TileRef) TileState { return v.state[ref] }
func (v *MemView) TerrainAt(ref TileRef) Terrain { return v.terrain[ref] }

func (v *MemView) ContestAt(ref TileRef) (ContestState, bool) {
	c, ok := v.contests[ref]
	return c, ok
}

func (v *MemView) Tick() int64 { return v.tick }

func (v *MemView) Players() []PlayerInfo { return v.players }

func (v *MemView) Relation(a, b PlayerID) Relation {
	if a == b {
		return RelationSelf
	}
	return v.relations[[2]PlayerID{a, b}]
}

func (v *MemView) Units() []UnitSnapshot {
	out := make([]UnitSnapshot, 0, len(v.units))
	for _, u := range v.units {
		out = append(out, u)
	}
	return out
}

func (v *MemView) Unit(id int) (UnitSnapshot, bool) {
	u, ok := v.units[id]
	return u, ok
}

// CanBuild queues the query; the answer is delivered on a later
// FlushQueries call, modelling the simulation's async round trip.
func (v *MemView) CanBuild(ref TileRef, cb func(TileRef, []BuildOption)) {
	v.pendingQueries = append(v.pendingQueries, pendingBuildQuery{ref: ref, cb: cb})
}

// FlushQueries answers all queued buildability queries. Called once
// per frame by the orchestrator.
func (v *MemView) FlushQueries() {
	queries := v.pendingQueries
	v.pendingQueries = nil
	for _, q := range queries {
		opts := make([]BuildOption, 0, int(structureKindCount)-1)
		buildable := v.terrain[q.ref] == TerrainLand && v.state[q.ref].Owner() != NeutralID
		for k := StructureCity; k < structureKindCount; k++ {
			opts = append(opts, BuildOption{Kind: k, Allowed: buildable, Cost: 50 * int(k)})
		}
		q.cb(q.ref, opts)
	}
}

// SetState overwrites one tile's state word and flags it changed, for
// tests that script exact ownership transitions.
func (v *MemView) SetState(ref TileRef, s TileState) {
	if v.state[ref] == s {
		return
	}
	v.state[ref] = s
	v.changed[ref] = struct{}{}
}

// SetContest installs or updates a contest record.
func (v *MemView) SetContest(ref TileRef, c ContestState) {
	v.contests[ref] = c
	v.changed[ref] = struct{}{}
}

// SetRelation updates a directed relation at runtime.
func (v *MemView) SetRelation(a, b PlayerID, rel Relation) {
	v.relations[[2]PlayerID{a, b}] = rel
	v.relationsDirty = true
}

// MoveUnit installs a motion plan for a unit.
func (v *MemView) MoveUnit(id int, path []TileRef, ticksPerStep int64) {
	u := v.units[id]
	u.Path = path
	u.PathStartTick = v.tick
	u.TicksPerStep = ticksPerStep
	if len(path) > 0 {
		u.Target = path[len(path)-1]
	}
	v.units[id] = u
	v.changedUnits[id] = struct{}{}
}

// AdvanceTick runs one tick of the scripted expansion and returns the
// diff a transport layer would have delivered.
func (v *MemView) AdvanceTick() *TickDiff {
	v.tick++

	// Each player claims a few random neutral 4-neighbours of owned
	// tiles. Crude, but it produces moving borders for the renderer.
	for _, p := range v.players {
		for n := 0; n < 24; n++ {
			x := v.rng.Intn(v.w)
			y := v.rng.Intn(v.h)
			ref := v.Ref(x, y)
			if v.state[ref].Owner() != p.ID {
				continue
			}
			dirs := [4][2]int{{0, -1}, {1, 0}, {0, 1}, {-1, 0}}
			d := dirs[v.rng.Intn(4)]
			nx, ny := x+d[0], y+d[1]
			if !v.InBounds(nx, ny) {
				continue
			}
			nref := v.Ref(nx, ny)
			if v.state[nref].Owner() == NeutralID && v.terrain[nref] == TerrainLand {
				v.SetState(nref, MakeTileState(p.ID, false, false))
			}
		}
	}

	// Advance unit plans.
	for id, u := range v.units {
		if len(u.Path) == 0 || u.TicksPerStep <= 0 {
			continue
		}
		step := (v.tick - u.PathStartTick) / u.TicksPerStep
		if step >= int64(len(u.Path)) {
			u.Tile = u.Path[len(u.Path)-1]
			u.Path = nil
			v.units[id] = u
			v.changedUnits[id] = struct{}{}
			continue
		}
		if u.Tile != u.Path[step] {
			u.Tile = u.Path[step]
			v.units[id] = u
			v.changedUnits[id] = struct{}{}
		}
	}

	diff := &TickDiff{
		Tick:             v.tick,
		RosterChanged:    v.rosterDirty,
		RelationsChanged: v.relationsDirty,
	}
	for ref := range v.changed {
		diff.ChangedTiles = append(diff.ChangedTiles, ref)
	}
	for id := range v.changedUnits {
		diff.ChangedUnits = append(diff.ChangedUnits, id)
	}
	v.changed = make(map[TileRef]struct{})
	v.changedUnits = make(map[int]struct{})
	v.rosterDirty = false
	v.relationsDirty = false
	return diff
}
