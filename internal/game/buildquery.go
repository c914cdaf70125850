package game

import "time"

// buildQueryInterval throttles buildability round trips while the
// ghost cursor sweeps across tiles.
const buildQueryInterval = 50 * time.Millisecond

// BuildQuerier mediates the async CanBuild round trip for the ghost
// placement UI. Requests inside the throttle window coalesce (newest
// wins), and answers that arrive after a newer request or an
// Invalidate are discarded by token.
type BuildQuerier struct {
	view GameView
	now  func() time.Time

	token   uint64
	last    time.Time
	want    TileRef
	hasWant bool

	tile TileRef
	opts []BuildOption
	ok   bool
}

func NewBuildQuerier(view GameView) *BuildQuerier {
	return &BuildQuerier{view: view, now: time.Now}
}

// Request asks for buildability at ref. The query may be deferred to a
// later Poll if one was issued within the throttle window.
func (q *BuildQuerier) Request(ref TileRef) {
	q.want, q.hasWant = ref, true
	q.flush()
}

// Poll issues a deferred request once the throttle window has passed.
// Called once per frame.
func (q *BuildQuerier) Poll() {
	q.flush()
}

func (q *BuildQuerier) flush() {
	if !q.hasWant {
		return
	}
	if q.now().Sub(q.last) < buildQueryInterval {
		return
	}
	ref := q.want
	q.hasWant = false
	q.last = q.now()
	q.token++
	tok := q.token
	q.view.CanBuild(ref, func(ref TileRef, opts []BuildOption) {
		if tok != q.token {
			return // superseded while in flight
		}
		q.tile, q.opts, q.ok = ref, opts, true
	})
}

// Result returns the latest answer, if any.
func (q *BuildQuerier) Result() (TileRef, []BuildOption, bool) {
	return q.tile, q.opts, q.ok
}

// Invalidate drops the current answer and any in-flight queries, for
// when the ghost is cancelled or the menu closes.
func (q *BuildQuerier) Invalidate() {
	q.token++
	q.ok = false
	q.hasWant = false
	q.opts = nil
}
