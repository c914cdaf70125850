package game

import (
	"testing"
	"time"
)

func newTestQuerier(view *MemView) (*BuildQuerier, *time.Time) {
	clock := time.Unix(1000, 0)
	q := NewBuildQuerier(view)
	q.now = func() time.Time { return clock }
	return q, &clock
}

func TestBuildQuerier_ThrottleCoalesces(t *testing.T) {
	view := NewMemView(WithMapSize(8, 8), WithPlayers(1), WithOwnerRect(1, 0, 0, 8, 8))
	q, clock := newTestQuerier(view)

	q.Request(view.Ref(1, 1))
	q.Request(view.Ref(2, 2)) // inside the window: deferred
	q.Request(view.Ref(3, 3)) // newest wins
	if got := len(view.pendingQueries); got != 1 {
		t.Fatalf("issued queries = %d, want 1", got)
	}

	*clock = clock.Add(buildQueryInterval)
	q.Poll()
	if got := len(view.pendingQueries); got != 2 {
		t.Fatalf("issued queries after window = %d, want 2", got)
	}
	if view.pendingQueries[1].ref != view.Ref(3, 3) {
		t.Fatalf("deferred query ref = %v, want newest", view.pendingQueries[1].ref)
	}
}

func TestBuildQuerier_StaleAnswerDiscarded(t *testing.T) {
	view := NewMemView(WithMapSize(8, 8), WithPlayers(1), WithOwnerRect(1, 0, 0, 8, 8))
	q, clock := newTestQuerier(view)

	q.Request(view.Ref(1, 1))
	*clock = clock.Add(buildQueryInterval)
	q.Request(view.Ref(2, 2))

	// Both answers arrive together; only the newer one may land.
	view.FlushQueries()
	tile, opts, ok := q.Result()
	if !ok {
		t.Fatal("newer answer must be kept")
	}
	if tile != view.Ref(2, 2) {
		t.Fatalf("result tile = %v, want the newer query's", tile)
	}
	if len(opts) == 0 || !opts[0].Allowed {
		t.Fatalf("owned land tile must be buildable, opts %+v", opts)
	}
}

func TestBuildQuerier_InvalidateDropsInFlight(t *testing.T) {
	view := NewMemView(WithMapSize(8, 8), WithPlayers(1), WithOwnerRect(1, 0, 0, 8, 8))
	q, _ := newTestQuerier(view)

	q.Request(view.Ref(1, 1))
	q.Invalidate()
	view.FlushQueries()
	if _, _, ok := q.Result(); ok {
		t.Fatal("answer arriving after Invalidate must be discarded")
	}
}

func TestBuildQuerier_UnbuildableTile(t *testing.T) {
	view := NewMemView(WithMapSize(8, 8)) // all land, nothing owned
	q, _ := newTestQuerier(view)

	q.Request(view.Ref(4, 4))
	view.FlushQueries()
	_, opts, ok := q.Result()
	if !ok {
		t.Fatal("answer must land")
	}
	for _, o := range opts {
		if o.Allowed {
			t.Fatalf("unowned tile must not be buildable: %+v", o)
		}
	}
}
