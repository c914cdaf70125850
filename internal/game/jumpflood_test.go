package game

import (
	"math"
	"math/rand"
	"testing"
)

func TestIsBorderIn_RuleAndSymmetry(t *testing.T) {
	const w, h = 6, 6
	state := make([]TileState, w*h)
	// Player 1 owns the left 3 columns, the rest is neutral.
	for y := 0; y < h; y++ {
		for x := 0; x < 3; x++ {
			state[y*w+x] = MakeTileState(1, false, false)
		}
	}
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			idx := y*w + x
			got := isBorderIn(state, w, h, idx)
			want := x == 2 || x == 3 // both sides of the ownership edge
			if got != want {
				t.Fatalf("border(%d,%d) = %v, want %v", x, y, got, want)
			}
		}
	}
	// Symmetry: every border tile has a differing neighbour that is
	// itself a border tile.
	for idx := range state {
		if !isBorderIn(state, w, h, idx) {
			continue
		}
		x, y := idx%w, idx/w
		found := false
		for _, d := range [4][2]int{{-1, 0}, {1, 0}, {0, -1}, {0, 1}} {
			nx, ny := x+d[0], y+d[1]
			if nx < 0 || ny < 0 || nx >= w || ny >= h {
				continue
			}
			nidx := ny*w + nx
			if ownerOf(state, nidx) != ownerOf(state, idx) && isBorderIn(state, w, h, nidx) {
				found = true
			}
		}
		if !found {
			t.Fatalf("border tile (%d,%d) has no differing border neighbour", x, y)
		}
	}
}

func TestJumpFlood_MatchesBruteForce(t *testing.T) {
	const w, h = 24, 17
	rng := rand.New(rand.NewSource(99))
	seeds := make([]bool, w*h)
	for i := 0; i < 20; i++ {
		seeds[rng.Intn(w*h)] = true
	}
	dist := jumpFloodDistances(w, h, func(i int) bool { return seeds[i] })

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			best := math.Inf(1)
			for i, s := range seeds {
				if !s {
					continue
				}
				sx, sy := i%w, i/w
				d := math.Hypot(float64(sx-x), float64(sy-y))
				if d < best {
					best = d
				}
			}
			got := float64(dist[y*w+x])
			// Jump flood is allowed tiny inaccuracies on rare cells.
			if math.Abs(got-best) > 1.0 {
				t.Fatalf("dist(%d,%d) = %v, brute force %v", x, y, got, best)
			}
		}
	}
}

func TestJumpFlood_NoSeeds(t *testing.T) {
	dist := jumpFloodDistances(8, 8, func(int) bool { return false })
	for i, d := range dist {
		if d != noSeedDistance {
			t.Fatalf("dist[%d] = %v, want sentinel", i, d)
		}
	}
}

// expandColumn builds the 10x8 scenario where player 1 grows from the
// left third to the left half between two ticks.
func smootherScenario(t *testing.T) (*TickSmoother, []TileState, []TileState) {
	t.Helper()
	const w, h = 10, 8
	before := make([]TileState, w*h)
	after := make([]TileState, w*h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if x < 3 {
				before[y*w+x] = MakeTileState(1, false, false)
			}
			if x < 5 {
				after[y*w+x] = MakeTileState(1, false, false)
			}
		}
	}
	s := NewTickSmoother(w, h)
	s.Rotate(before)
	s.Rotate(after)
	return s, before, after
}

func TestSmoother_ProgressEndpoints(t *testing.T) {
	s, _, _ := smootherScenario(t)
	for idx := 0; idx < s.w*s.h; idx++ {
		if !s.Changed(idx) {
			continue
		}
		if s.ShowNew(idx, 0) {
			t.Fatalf("tile %d shows new state at progress 0", idx)
		}
		if !s.ShowNew(idx, 1) {
			t.Fatalf("tile %d still shows old state at progress 1", idx)
		}
	}
}

func TestSmoother_Monotonic(t *testing.T) {
	s, _, _ := smootherScenario(t)
	for idx := 0; idx < s.w*s.h; idx++ {
		if !s.Changed(idx) {
			continue
		}
		flipped := false
		for p := 0.0; p <= 1.0; p += 0.01 {
			now := s.ShowNew(idx, p)
			if flipped && !now {
				t.Fatalf("tile %d flickered back to old state at progress %v", idx, p)
			}
			if now {
				flipped = true
			}
		}
	}
}

func TestSmoother_ChangedMaskDilated(t *testing.T) {
	const w, h = 8, 8
	before := make([]TileState, w*h)
	after := make([]TileState, w*h)
	copy(after, before)
	after[3*w+3] = MakeTileState(2, false, false)

	s := NewTickSmoother(w, h)
	s.Rotate(before)
	s.Rotate(after)

	for _, d := range [5][2]int{{0, 0}, {-1, 0}, {1, 0}, {0, -1}, {0, 1}} {
		idx := (3+d[1])*w + (3 + d[0])
		if !s.Changed(idx) {
			t.Fatalf("neighbour (%d,%d) missing from dilated mask", 3+d[0], 3+d[1])
		}
	}
	if s.Changed(0) {
		t.Fatal("far tile must not join the animation")
	}
	if s.Changed(3*w+5) {
		t.Fatal("dilation must be one tile only")
	}
}

func TestSmoother_RotationContract(t *testing.T) {
	const w, h = 4, 4
	snapA := make([]TileState, w*h)
	snapB := make([]TileState, w*h)
	snapC := make([]TileState, w*h)
	snapB[0] = MakeTileState(1, false, false)
	snapC[0] = MakeTileState(2, false, false)

	s := NewTickSmoother(w, h)
	s.Rotate(snapA)
	s.Rotate(snapB)
	s.Rotate(snapC)

	// prev must hold the snapshot from one tick ago.
	if got := s.PrevState(0).Owner(); got != 1 {
		t.Fatalf("prev owner = %d, want 1", got)
	}
	// older must hold the snapshot from two ticks ago.
	if got := s.older[0].Owner(); got != 0 {
		t.Fatalf("older owner = %d, want 0", got)
	}
	if got := s.cur[0].Owner(); got != 2 {
		t.Fatalf("cur owner = %d, want 2", got)
	}
}
