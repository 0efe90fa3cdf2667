package notify

import (
	"sync"

	"github.com/marcoskids/marcos/internal/logging"
)

// Bus fans events out to in-process subscribers. Publish never blocks:
// a subscriber whose buffer is full misses the event.
type Bus struct {
	log *logging.Logger

	mu     sync.RWMutex
	nextID int
	subs   map[int]chan Event
	closed bool
}

// NewBus creates an empty bus. log may be nil.
func NewBus(log *logging.Logger) *Bus {
	return &Bus{log: log, subs: make(map[int]chan Event)}
}

// Subscribe registers a subscriber with the given buffer size. The
// returned cancel func unregisters it and closes the channel.
func (b *Bus) Subscribe(buffer int) (<-chan Event, func()) {
	if buffer < 1 {
		buffer = 1
	}
	ch := make(chan Event, buffer)

	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		close(ch)
		return ch, func() {}
	}
	id := b.nextID
	b.nextID++
	b.subs[id] = ch

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			b.mu.Lock()
			defer b.mu.Unlock()
			if c, ok := b.subs[id]; ok {
				delete(b.subs, id)
				close(c)
			}
		})
	}
}

// Publish delivers events to every subscriber.
func (b *Bus) Publish(events ...Event) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.closed {
		return
	}
	for _, ev := range events {
		for id, ch := range b.subs {
			select {
			case ch <- ev:
			default:
				if b.log != nil {
					b.log.Warn("notification dropped", "subscriber", id, "kind", ev.Kind, "child_id", ev.ChildID)
				}
			}
		}
	}
}

// Close unregisters and closes all subscribers.
func (b *Bus) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	b.closed = true
	for id, ch := range b.subs {
		delete(b.subs, id)
		close(ch)
	}
}
