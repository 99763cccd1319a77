package broadcast

import (
	"context"
	"errors"
)

var (
	ErrBroadcasterClosed = errors.New("broadcast: broadcaster is closed")
	ErrSubscriberClosed  = errors.New("broadcast: subscriber is closed")
)

// Message wraps a broadcast payload.
type Message[T any] struct {
	Data T
}

// Broadcaster fans messages out to every live subscriber.
type Broadcaster[T any] interface {
	Subscribe(ctx context.Context) Subscriber[T]
	Broadcast(ctx context.Context, msg Message[T]) error
	Close() error
}

// Subscriber receives broadcast messages until it is closed or its
// subscription context ends.
type Subscriber[T any] interface {
	Receive(ctx context.Context) <-chan Message[T]
	Close() error
}
