package broadcast

import (
	"context"
	"sync"
)

// MemoryBroadcaster is an in-process Broadcaster. Delivery never blocks:
// a subscriber whose buffer is full misses the message.
type MemoryBroadcaster[T any] struct {
	mu          sync.RWMutex
	subscribers map[*memorySubscriber[T]]struct{}
	bufferSize  int
	closed      bool
}

// NewMemoryBroadcaster creates a broadcaster that gives each subscriber a
// buffer of bufferSize messages.
func NewMemoryBroadcaster[T any](bufferSize int) *MemoryBroadcaster[T] {
	if bufferSize < 1 {
		bufferSize = 1
	}
	return &MemoryBroadcaster[T]{
		subscribers: make(map[*memorySubscriber[T]]struct{}),
		bufferSize:  bufferSize,
	}
}

// Subscribe registers a subscriber that is removed when ctx ends or Close
// is called. Subscribing to a closed broadcaster returns a closed
// subscriber.
func (b *MemoryBroadcaster[T]) Subscribe(ctx context.Context) Subscriber[T] {
	s := &memorySubscriber[T]{
		ch:     make(chan Message[T], b.bufferSize),
		done:   make(chan struct{}),
		parent: b,
	}

	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		s.shutdown()
		return s
	}
	b.subscribers[s] = struct{}{}
	b.mu.Unlock()

	go func() {
		select {
		case <-ctx.Done():
			_ = s.Close()
		case <-s.done:
		}
	}()

	return s
}

// Broadcast delivers msg to every subscriber with room in its buffer.
func (b *MemoryBroadcaster[T]) Broadcast(ctx context.Context, msg Message[T]) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	b.mu.RLock()
	defer b.mu.RUnlock()

	if b.closed {
		return ErrBroadcasterClosed
	}
	for s := range b.subscribers {
		select {
		case s.ch <- msg:
		default:
		}
	}
	return nil
}

// Len reports the number of live subscribers.
func (b *MemoryBroadcaster[T]) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subscribers)
}

// Close closes every subscriber. Later broadcasts fail with
// ErrBroadcasterClosed.
func (b *MemoryBroadcaster[T]) Close() error {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return nil
	}
	b.closed = true
	subs := b.subscribers
	b.subscribers = make(map[*memorySubscriber[T]]struct{})
	b.mu.Unlock()

	for s := range subs {
		s.shutdown()
	}
	return nil
}

func (b *MemoryBroadcaster[T]) remove(s *memorySubscriber[T]) {
	b.mu.Lock()
	delete(b.subscribers, s)
	b.mu.Unlock()
}

type memorySubscriber[T any] struct {
	ch     chan Message[T]
	done   chan struct{}
	once   sync.Once
	parent *MemoryBroadcaster[T]
}

// Receive returns the message channel, which is closed with the
// subscriber. The memory implementation ignores ctx; cancel the
// subscription context instead.
func (s *memorySubscriber[T]) Receive(ctx context.Context) <-chan Message[T] {
	return s.ch
}

func (s *memorySubscriber[T]) Close() error {
	s.parent.remove(s)
	s.shutdown()
	return nil
}

// shutdown closes the channels once. Callers must have removed s from the
// parent first, so no Broadcast can be sending on ch.
func (s *memorySubscriber[T]) shutdown() {
	s.once.Do(func() {
		close(s.done)
		close(s.ch)
	})
}
