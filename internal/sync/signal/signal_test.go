package signal

import (
	"testing"

	"github.com/caresync/caresync/internal/sync/store"
)

func TestPublishReachesAllSubscribers(t *testing.T) {
	bus := NewBus()
	ch1, cancel1 := bus.Subscribe()
	ch2, cancel2 := bus.Subscribe()
	defer cancel1()
	defer cancel2()

	bus.Publish(Change{Collection: store.Records, Origin: OriginLocal})

	for _, ch := range []<-chan Change{ch1, ch2} {
		select {
		case got := <-ch:
			if got.Collection != store.Records || got.Origin != OriginLocal {
				t.Errorf("unexpected change: %+v", got)
			}
		default:
			t.Error("subscriber did not receive change")
		}
	}
}

func TestPublishNeverBlocks(t *testing.T) {
	bus := NewBus()
	_, cancel := bus.Subscribe()
	defer cancel()

	// Overflow the subscriber buffer; publishing must stay non-blocking.
	for i := 0; i < 100; i++ {
		bus.Publish(Change{Collection: store.Messages, Origin: OriginRemote})
	}
}

func TestCancelStopsDelivery(t *testing.T) {
	bus := NewBus()
	ch, cancel := bus.Subscribe()
	cancel()

	bus.Publish(Change{Collection: store.Records, Origin: OriginLocal})

	if _, open := <-ch; open {
		t.Error("channel should be closed after cancel")
	}
	// Double cancel is safe.
	cancel()
}
