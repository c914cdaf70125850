package game

// EventKind discriminates bus events. Payload structs below implement
// Event; subscribers assert to the concrete type they registered for.
type EventKind int

const (
	// Gesture events emitted by the input resolver.
	KindDrag EventKind = iota
	KindZoom
	KindTapSelect
	KindContextMenu
	KindBuildMenu
	KindPingMenu
	KindAttackRatio

	// UI state changes.
	KindAlternateView
	KindGhostChanged
	KindSelectionChanged
	KindReplaySpeed
	KindPerfOverlay
	KindHoverPlayer
	KindRefreshGraphics
	KindCenterCamera

	// One-way intents destined for the transport layer.
	KindBuildIntent
	KindUpgradeIntent
	KindMoveWarship
	KindSendEmoji
	KindAttackIntent

	eventKindCount
)

// Event is anything publishable on the Bus.
type Event interface {
	EventKind() EventKind
}

// DragEvent is a continuous pan delta in screen pixels.
type DragEvent struct {
	DX, DY float64
}

// ZoomEvent requests a zoom by Delta pivoting at a screen point.
// Positive Delta zooms out (matches wheel deltaY).
type ZoomEvent struct {
	ScreenX, ScreenY float64
	Delta            float64
}

// TapSelectEvent is a primary tap/click at a screen point.
type TapSelectEvent struct {
	ScreenX, ScreenY float64
}

// ContextMenuEvent opens the radial context menu at a screen point.
type ContextMenuEvent struct {
	ScreenX, ScreenY float64
}

// BuildMenuEvent opens the build menu at a screen point.
type BuildMenuEvent struct {
	ScreenX, ScreenY float64
}

// PingMenuEvent opens the emoji/ping menu at a screen point.
type PingMenuEvent struct {
	ScreenX, ScreenY float64
}

// AttackRatioEvent adjusts the troop attack ratio (Shift+wheel).
type AttackRatioEvent struct {
	Delta float64
}

// AlternateViewEvent toggles the tactical relation-only view.
type AlternateViewEvent struct {
	Enabled bool
}

// GhostChangedEvent announces a pending-structure change. Kind is
// StructureNone when placement was cancelled or confirmed.
type GhostChangedEvent struct {
	Kind StructureKind
}

// SelectionChangedEvent announces the new unit selection.
type SelectionChangedEvent struct {
	UnitIDs []int
}

// ReplaySpeedEvent changes the replay/catch-up speed multiplier.
// Speed 0 pauses; 1 is realtime.
type ReplaySpeedEvent struct {
	Speed float64
}

// PerfOverlayEvent toggles the performance overlay (Shift+D).
type PerfOverlayEvent struct{}

// HoverPlayerEvent drives the pulsing territory highlight while a
// player row is hovered in the roster UI. ID 0 clears the highlight.
type HoverPlayerEvent struct {
	ID PlayerID
}

// RefreshGraphicsEvent forces a full repaint (resize, palette change,
// view-mode switch).
type RefreshGraphicsEvent struct{}

// CenterCameraEvent recenters the camera on the player's spawn area.
type CenterCameraEvent struct{}

// BuildIntentEvent asks the transport layer to build a structure.
type BuildIntentEvent struct {
	Tile TileRef
	Kind StructureKind
	// Target is the locked aim tile for ranged structures, 0 otherwise.
	Target TileRef
}

// UpgradeIntentEvent asks the transport layer to upgrade a structure.
type UpgradeIntentEvent struct {
	Tile TileRef
}

// MoveWarshipEvent orders a selected warship to a tile.
type MoveWarshipEvent struct {
	UnitID int
	Target TileRef
}

// SendEmojiEvent fires an emoji at a player (or everyone when Target
// is 0).
type SendEmojiEvent struct {
	Emoji  string
	Target PlayerID
}

// AttackIntentEvent launches an attack toward the tile under the cursor.
type AttackIntentEvent struct {
	Tile TileRef
}

func (DragEvent) EventKind() EventKind             { return KindDrag }
func (ZoomEvent) EventKind() EventKind             { return KindZoom }
func (TapSelectEvent) EventKind() EventKind        { return KindTapSelect }
func (ContextMenuEvent) EventKind() EventKind      { return KindContextMenu }
func (BuildMenuEvent) EventKind() EventKind        { return KindBuildMenu }
func (PingMenuEvent) EventKind() EventKind         { return KindPingMenu }
func (AttackRatioEvent) EventKind() EventKind      { return KindAttackRatio }
func (AlternateViewEvent) EventKind() EventKind    { return KindAlternateView }
func (GhostChangedEvent) EventKind() EventKind     { return KindGhostChanged }
func (SelectionChangedEvent) EventKind() EventKind { return KindSelectionChanged }
func (ReplaySpeedEvent) EventKind() EventKind      { return KindReplaySpeed }
func (PerfOverlayEvent) EventKind() EventKind      { return KindPerfOverlay }
func (HoverPlayerEvent) EventKind() EventKind      { return KindHoverPlayer }
func (RefreshGraphicsEvent) EventKind() EventKind  { return KindRefreshGraphics }
func (CenterCameraEvent) EventKind() EventKind     { return KindCenterCamera }
func (BuildIntentEvent) EventKind() EventKind      { return KindBuildIntent }
func (UpgradeIntentEvent) EventKind() EventKind    { return KindUpgradeIntent }
func (MoveWarshipEvent) EventKind() EventKind      { return KindMoveWarship }
func (SendEmojiEvent) EventKind() EventKind        { return KindSendEmoji }
func (AttackIntentEvent) EventKind() EventKind     { return KindAttackIntent }
