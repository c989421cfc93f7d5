// Package signal is the in-process change bus UI consumers subscribe to
// for replica invalidation.
package signal

import (
	"sync"

	"github.com/caresync/caresync/internal/sync/store"
)

// Origin says whether a change came from this client or from
// reconciliation against the server.
type Origin string

const (
	OriginLocal  Origin = "local"
	OriginRemote Origin = "remote"
)

// Change names the collection whose replica changed. It carries no
// payload; subscribers re-read the store.
type Change struct {
	Collection store.Collection
	Origin     Origin
}

// Bus fans Change events out to subscribers. Publishing never blocks: a
// subscriber that is not draining its channel misses events, which is
// acceptable because a Change is an invalidation hint, not data.
type Bus struct {
	mu   sync.Mutex
	next int
	subs map[int]chan Change
}

func NewBus() *Bus {
	return &Bus{subs: make(map[int]chan Change)}
}

// Subscribe returns a change channel and a cancel function. Cancel must
// be called when the consumer goes away or its channel leaks.
func (b *Bus) Subscribe() (<-chan Change, func()) {
	b.mu.Lock()
	defer b.mu.Unlock()
	id := b.next
	b.next++
	ch := make(chan Change, 16)
	b.subs[id] = ch
	cancel := func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		if sub, ok := b.subs[id]; ok {
			delete(b.subs, id)
			close(sub)
		}
	}
	return ch, cancel
}

func (b *Bus) Publish(change Change) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, ch := range b.subs {
		select {
		case ch <- change:
		default:
		}
	}
}
