package game

// TileRef is an opaque reference to one tile of the world grid.
// It encodes (x, y) as y*mapWidth+x and is stable for the whole match.
type TileRef uint32

// PlayerID is a small per-match integer id. 0 is the unowned/neutral id.
// Ids are recycled between matches so they stay dense for array indexing.
type PlayerID uint16

// NeutralID is the owner id of unowned tiles.
const NeutralID PlayerID = 0

// TileState is the packed per-tile ownership word.
//
// Bit layout:
//
//	0..11  owner small id (0 = unowned)
//	12     defended flag
//	13     fallout flag
//	14..15 reserved
type TileState uint16

const (
	ownerMask     TileState = 0x0FFF
	stateDefended TileState = 1 << 12
	stateFallout  TileState = 1 << 13
)

// Owner returns the owning player id encoded in the state word.
func (s TileState) Owner() PlayerID { return PlayerID(s & ownerMask) }

// Defended reports whether the defended flag is set.
func (s TileState) Defended() bool { return s&stateDefended != 0 }

// Fallout reports whether the fallout flag is set.
func (s TileState) Fallout() bool { return s&stateFallout != 0 }

// MakeTileState packs an owner id and flags into a state word.
func MakeTileState(owner PlayerID, defended, fallout bool) TileState {
	s := TileState(owner) & ownerMask
	if defended {
		s |= stateDefended
	}
	if fallout {
		s |= stateFallout
	}
	return s
}

// Relation flags between an ordered pair of players. Self is reflexive,
// friendship is mutual by convention, embargo is directional.
type Relation uint8

const (
	RelationSelf Relation = 1 << iota
	RelationFriendly
	RelationEmbargoed
)

// Terrain is the immutable base type of a tile.
type Terrain uint8

const (
	TerrainWater Terrain = iota
	TerrainLand
	TerrainMountain
)

// StructureKind identifies a buildable structure type.
type StructureKind uint8

const (
	StructureNone StructureKind = iota
	StructureCity
	StructurePort
	StructureDefensePost
	StructureMissileSilo
	StructureSAMLauncher
	structureKindCount
)

// RangedStructure reports whether placing this structure uses a locked
// aim tile before confirming (long-range weapons).
func RangedStructure(k StructureKind) bool {
	return k == StructureMissileSilo
}

// UnitKind identifies a mobile unit type.
type UnitKind uint8

const (
	UnitWarship UnitKind = iota
	UnitTradeShip
	UnitTransport
)

// UnitSnapshot is the read-only per-unit view exposed by the simulation.
type UnitSnapshot struct {
	ID     int
	Kind   UnitKind
	Owner  PlayerID
	Tile   TileRef
	Target TileRef
	Active bool

	// Motion plan, if the unit is moving. Path is nil for idle units.
	Path          []TileRef
	PathStartTick int64
	TicksPerStep  int64
}

// PlayerInfo is the per-player roster entry.
type PlayerInfo struct {
	ID   PlayerID
	Name string
	// Pattern is an optional 8x8 cosmetic territory bit pattern,
	// row-major, one bit per cell. Zero means no pattern.
	Pattern uint64
	// ColorSeed drives the palette when the player has no explicit color.
	ColorSeed uint32
}

// ContestState describes an actively disputed tile.
type ContestState struct {
	ID          uint16
	Defender    PlayerID
	Attacker    PlayerID // latest attacker
	Strength    float64  // in [0,1]
	LastUpdated uint16   // 15-bit tick counter, wraps
}

// TickDiff is the per-tick change set delivered by the transport layer.
// Tiles whose state word changed are flagged, not structurally diffed.
type TickDiff struct {
	Tick         int64
	ChangedTiles []TileRef
	ChangedUnits []int
	// RosterChanged is set when players joined/left or cosmetics changed.
	RosterChanged bool
	// RelationsChanged is set on alliance/embargo changes.
	RelationsChanged bool
}

// BuildOption is one entry of an async buildability answer.
type BuildOption struct {
	Kind    StructureKind
	Allowed bool
	Cost    int
}

// GameView is the read-only adapter over the authoritative simulation
// state. It is owned and updated externally; every layer renders from it.
// All methods are cheap synchronous reads except CanBuild, which answers
// via callback on a later frame.
type GameView interface {
	MapWidth() int
	MapHeight() int

	// Ref converts grid coordinates to a tile reference. Coordinates
	// must be inside the map.
	Ref(x, y int) TileRef
	// XY converts a tile reference back to grid coordinates.
	XY(ref TileRef) (int, int)
	// InBounds reports whether (x, y) is a valid tile coordinate.
	InBounds(x, y int) bool

	StateAt(ref TileRef) TileState
	TerrainAt(ref TileRef) Terrain
	ContestAt(ref TileRef) (ContestState, bool)

	Tick() int64
	Players() []PlayerInfo
	Relation(a, b PlayerID) Relation

	Units() []UnitSnapshot
	Unit(id int) (UnitSnapshot, bool)

	// CanBuild asks whether the given structure kinds may be placed at
	// ref. The callback runs on the UI goroutine on a later frame.
	CanBuild(ref TileRef, cb func(ref TileRef, opts []BuildOption))
}
