package store

import (
	"sync"

	"github.com/twiced-technology-gmbh/laneboard/internal/board"
)

const subscriberBuffer = 16

// broadcaster fans snapshots out to subscribers. Each subscriber gets a
// buffered channel; a full channel drops the snapshot, since only the
// latest one matters for re-rendering.
type broadcaster struct {
	mu          sync.RWMutex
	subscribers []chan board.Board
}

func (b *broadcaster) subscribe() chan board.Board {
	b.mu.Lock()
	defer b.mu.Unlock()
	ch := make(chan board.Board, subscriberBuffer)
	b.subscribers = append(b.subscribers, ch)
	return ch
}

func (b *broadcaster) unsubscribe(ch <-chan board.Board) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for i, sub := range b.subscribers {
		if sub == ch {
			b.subscribers = append(b.subscribers[:i], b.subscribers[i+1:]...)
			close(sub)
			return
		}
	}
}

// broadcast sends each subscriber its own copy of snap.
func (b *broadcaster) broadcast(snap board.Board) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	for _, ch := range b.subscribers {
		select {
		case ch <- snap.Clone():
		default:
		}
	}
}
