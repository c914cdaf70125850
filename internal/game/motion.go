package game

// tileCenter maps a tile reference to its world-space center.
func tileCenter(view GameView, ref TileRef) (float64, float64) {
	x, y := view.XY(ref)
	return float64(x) + 0.5, float64(y) + 0.5
}

// SampleUnitPos returns a unit's world position at fractional
// simulation time tick+progress, interpolated along its motion plan.
// Idle units (and plans the unit has finished) sit at their tile.
func SampleUnitPos(view GameView, u UnitSnapshot, tick int64, progress float64) (float64, float64) {
	if len(u.Path) == 0 || u.TicksPerStep <= 0 {
		return tileCenter(view, u.Tile)
	}
	t := float64(tick-u.PathStartTick) + progress
	steps := t / float64(u.TicksPerStep)
	last := len(u.Path) - 1
	if steps <= 0 {
		return tileCenter(view, u.Path[0])
	}
	if steps >= float64(last) {
		return tileCenter(view, u.Path[last])
	}
	idx := int(steps)
	frac := steps - float64(idx)
	x0, y0 := tileCenter(view, u.Path[idx])
	x1, y1 := tileCenter(view, u.Path[idx+1])
	return x0 + (x1-x0)*frac, y0 + (y1-y0)*frac
}

// SnapUnitPos returns the plan position with no sub-step blending.
// Used while the client is catching up on a tick backlog, where
// interpolating against a racing clock would smear units around.
func SnapUnitPos(view GameView, u UnitSnapshot, tick int64) (float64, float64) {
	if len(u.Path) == 0 || u.TicksPerStep <= 0 {
		return tileCenter(view, u.Tile)
	}
	step := (tick - u.PathStartTick) / u.TicksPerStep
	if step < 0 {
		step = 0
	}
	if step >= int64(len(u.Path)) {
		step = int64(len(u.Path)) - 1
	}
	return tileCenter(view, u.Path[step])
}
