package bus

import (
	"context"
	"sync"

	"github.com/VAshish07243/Chai-Shots/internal/realtime"
)

// MemoryBus fans events out to in-process subscribers. It is what a single
// process uses when Redis is not configured.
type MemoryBus struct {
	mu     sync.RWMutex
	subs   map[int]func(realtime.Event)
	nextID int
	closed bool
}

func NewMemoryBus() *MemoryBus {
	return &MemoryBus{subs: map[int]func(realtime.Event){}}
}

func (b *MemoryBus) Publish(ctx context.Context, ev realtime.Event) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.closed {
		return nil
	}
	for _, fn := range b.subs {
		fn(ev)
	}
	return nil
}

func (b *MemoryBus) StartForwarder(ctx context.Context, onEvent func(ev realtime.Event)) error {
	if onEvent == nil {
		return nil
	}
	b.mu.Lock()
	id := b.nextID
	b.nextID++
	b.subs[id] = onEvent
	b.mu.Unlock()

	go func() {
		<-ctx.Done()
		b.mu.Lock()
		delete(b.subs, id)
		b.mu.Unlock()
	}()
	return nil
}

func (b *MemoryBus) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.closed = true
	b.subs = map[int]func(realtime.Event){}
	return nil
}

// Recorder keeps every published event; tests use it in place of a bus.
type Recorder struct {
	mu     sync.Mutex
	events []realtime.Event
}

func (r *Recorder) Publish(_ context.Context, ev realtime.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
	return nil
}

func (r *Recorder) StartForwarder(context.Context, func(realtime.Event)) error { return nil }

func (r *Recorder) Close() error { return nil }

func (r *Recorder) Events() []realtime.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]realtime.Event(nil), r.events...)
}

func (r *Recorder) OfType(t realtime.EventType) []realtime.Event {
	var out []realtime.Event
	for _, ev := range r.Events() {
		if ev.Type == t {
			out = append(out, ev)
		}
	}
	return out
}
