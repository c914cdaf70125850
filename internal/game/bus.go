package game

// Bus is the process-wide typed publish/subscribe channel. Dispatch is
// synchronous and fire-and-forget: Publish calls every current
// subscriber of the event's kind before returning. There is no queue
// and no cross-goroutine delivery; the bus lives on the UI goroutine.
//
// One Bus is constructed per session and passed to every component
// explicitly — no package-level singleton.
type Bus struct {
	subs [eventKindCount][]func(Event)
}

// NewBus creates an empty bus.
func NewBus() *Bus {
	return &Bus{}
}

// Subscribe registers fn for every future event of the given kind.
// Handlers run synchronously in registration order.
func (b *Bus) Subscribe(kind EventKind, fn func(Event)) {
	b.subs[kind] = append(b.subs[kind], fn)
}

// Publish delivers e to all current subscribers of its kind.
func (b *Bus) Publish(e Event) {
	for _, fn := range b.subs[e.EventKind()] {
		fn(e)
	}
}
