package game

import "math"

// noSeedDistance is the sentinel distance for tiles with no reachable
// border seed (e.g. a snapshot with uniform ownership).
const noSeedDistance float32 = 1 << 14

// ownerOf reads the owner id out of a raw snapshot.
func ownerOf(state []TileState, idx int) PlayerID {
	return state[idx].Owner()
}

// isBorderIn reports whether tile idx is a border tile within the given
// ownership snapshot: at least one 4-connected neighbour has a
// different owner id, with id 0 counting as a distinct neutral owner.
// Map edges are not borders by themselves.
func isBorderIn(state []TileState, w, h, idx int) bool {
	x, y := idx%w, idx/w
	own := ownerOf(state, idx)
	if x > 0 && ownerOf(state, idx-1) != own {
		return true
	}
	if x < w-1 && ownerOf(state, idx+1) != own {
		return true
	}
	if y > 0 && ownerOf(state, idx-w) != own {
		return true
	}
	if y < h-1 && ownerOf(state, idx+w) != own {
		return true
	}
	return false
}

// jumpFloodDistances computes, for every tile, the euclidean distance
// to the nearest seed tile via the jump flood algorithm: nearest-seed
// coordinates are propagated in decreasing power-of-two steps through
// a pair of ping-pong buffers.
func jumpFloodDistances(w, h int, isSeed func(idx int) bool) []float32 {
	n := w * h
	// Packed nearest-seed coordinate per tile, -1 = none yet.
	cur := make([]int32, n)
	next := make([]int32, n)
	for i := 0; i < n; i++ {
		if isSeed(i) {
			cur[i] = int32(i)
		} else {
			cur[i] = -1
		}
	}

	maxDim := w
	if h > maxDim {
		maxDim = h
	}
	step := 1
	for step < maxDim {
		step <<= 1
	}

	for step >= 1 {
		for y := 0; y < h; y++ {
			for x := 0; x < w; x++ {
				idx := y*w + x
				best := cur[idx]
				bestD := seedDistSq(best, x, y, w)
				for dy := -1; dy <= 1; dy++ {
					for dx := -1; dx <= 1; dx++ {
						if dx == 0 && dy == 0 {
							continue
						}
						nx, ny := x+dx*step, y+dy*step
						if nx < 0 || ny < 0 || nx >= w || ny >= h {
							continue
						}
						cand := cur[ny*w+nx]
						if cand < 0 {
							continue
						}
						if d := seedDistSq(cand, x, y, w); d < bestD {
							best, bestD = cand, d
						}
					}
				}
				next[idx] = best
			}
		}
		cur, next = next, cur
		step >>= 1
	}

	dist := make([]float32, n)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			idx := y*w + x
			if cur[idx] < 0 {
				dist[idx] = noSeedDistance
				continue
			}
			dist[idx] = float32(math.Sqrt(seedDistSq(cur[idx], x, y, w)))
		}
	}
	return dist
}

func seedDistSq(seed int32, x, y, w int) float64 {
	if seed < 0 {
		return math.Inf(1)
	}
	sx, sy := int(seed)%w, int(seed)/w
	dx, dy := float64(sx-x), float64(sy-y)
	return dx*dx + dy*dy
}

// TickSmoother animates ownership-boundary motion between simulation
// ticks. Each tick the snapshots rotate older <- prev <- current (the
// rotation contract the interpolation depends on); distance-to-border
// fields are then rebuilt for the prev and current snapshots, and a
// dilated changed-tile mask gates which tiles animate at all.
type TickSmoother struct {
	w, h int

	older []TileState
	prev  []TileState
	cur   []TileState

	distPrev []float32
	distCur  []float32
	changed  []bool

	hasPrev bool
}

// NewTickSmoother allocates a smoother for the given grid.
func NewTickSmoother(w, h int) *TickSmoother {
	n := w * h
	return &TickSmoother{
		w: w, h: h,
		older:    make([]TileState, n),
		prev:     make([]TileState, n),
		cur:      make([]TileState, n),
		distPrev: make([]float32, n),
		distCur:  make([]float32, n),
		changed:  make([]bool, n),
	}
}

// Rotate ingests the post-tick ownership snapshot, shifting the triple
// buffer and rebuilding the distance fields and changed mask.
func (s *TickSmoother) Rotate(current []TileState) {
	s.older, s.prev, s.cur = s.prev, s.cur, s.older
	copy(s.cur, current)

	if !s.hasPrev {
		// First snapshot: nothing to animate from.
		copy(s.prev, s.cur)
		copy(s.older, s.cur)
		s.hasPrev = true
	}

	// Changed mask: tiles whose owner differs between prev and current,
	// dilated one tile so pixels whose border-adjacency changed are
	// included even when their own owner did not.
	n := s.w * s.h
	raw := make([]bool, n)
	any := false
	for i := 0; i < n; i++ {
		raw[i] = ownerOf(s.prev, i) != ownerOf(s.cur, i)
		any = any || raw[i]
	}
	if !any {
		// Quiet tick: nothing animates, so the distance fields are not
		// consulted and the jump flood can be skipped.
		for i := range s.changed {
			s.changed[i] = false
		}
		return
	}
	for i := 0; i < n; i++ {
		s.changed[i] = raw[i]
		if s.changed[i] {
			continue
		}
		x, y := i%s.w, i/s.w
		if (x > 0 && raw[i-1]) || (x < s.w-1 && raw[i+1]) ||
			(y > 0 && raw[i-s.w]) || (y < s.h-1 && raw[i+s.w]) {
			s.changed[i] = true
		}
	}

	s.distPrev = jumpFloodDistances(s.w, s.h, func(i int) bool { return isBorderIn(s.prev, s.w, s.h, i) })
	s.distCur = jumpFloodDistances(s.w, s.h, func(i int) bool { return isBorderIn(s.cur, s.w, s.h, i) })
}

// Changed reports whether the tile participates in this tick's
// animation. Unchanged tiles render their current state immediately.
func (s *TickSmoother) Changed(idx int) bool { return s.changed[idx] }

// PrevState returns the pre-change state word for an animated tile.
func (s *TickSmoother) PrevState(idx int) TileState { return s.prev[idx] }

// ShowNew decides, for smoothing progress in [0,1], whether an
// animated tile already displays its post-change state. The decision
// is monotone in progress: once a tile shows the new state it never
// reverts at a higher progress value.
func (s *TickSmoother) ShowNew(idx int, progress float64) bool {
	if progress <= 0 {
		return false
	}
	if progress >= 1 {
		return true
	}
	dNew := float64(s.distCur[idx])
	dOld := float64(s.distPrev[idx])
	return dNew*(1-progress) < dOld*progress
}

// DistanceFields exposes the prev/current distance fields for upload
// to the GPU backend's interpolation textures.
func (s *TickSmoother) DistanceFields() (prev, cur []float32) {
	return s.distPrev, s.distCur
}
