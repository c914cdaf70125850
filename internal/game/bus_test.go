package game

import "testing"

func TestBus_DispatchesToKindSubscribersOnly(t *testing.T) {
	b := NewBus()
	var zooms, drags int
	b.Subscribe(KindZoom, func(e Event) {
		if _, ok := e.(ZoomEvent); !ok {
			t.Fatalf("zoom handler got %T", e)
		}
		zooms++
	})
	b.Subscribe(KindDrag, func(Event) { drags++ })

	b.Publish(ZoomEvent{ScreenX: 1, ScreenY: 2, Delta: 3})
	b.Publish(ZoomEvent{Delta: -3})

	if zooms != 2 {
		t.Fatalf("zoom handler calls = %d, want 2", zooms)
	}
	if drags != 0 {
		t.Fatalf("drag handler should not fire, got %d", drags)
	}
}

func TestBus_SynchronousOrder(t *testing.T) {
	b := NewBus()
	var order []int
	b.Subscribe(KindTapSelect, func(Event) { order = append(order, 1) })
	b.Subscribe(KindTapSelect, func(Event) { order = append(order, 2) })
	b.Publish(TapSelectEvent{})
	if len(order) != 2 || order[0] != 1 || order[1] != 2 {
		t.Fatalf("handlers ran out of order: %v", order)
	}
}

func TestBus_PublishWithNoSubscribers(t *testing.T) {
	b := NewBus()
	// Must not panic.
	b.Publish(SendEmojiEvent{Emoji: "!", Target: 3})
}
