package broadcast_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/qrstudio/pkg/broadcast"
)

func receive[T any](t *testing.T, ch <-chan broadcast.Message[T]) (broadcast.Message[T], bool) {
	t.Helper()
	select {
	case msg, ok := <-ch:
		return msg, ok
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for message")
		return broadcast.Message[T]{}, false
	}
}

func TestMemoryBroadcaster(t *testing.T) {
	t.Parallel()

	t.Run("fan out", func(t *testing.T) {
		t.Parallel()

		ctx := context.Background()
		b := broadcast.NewMemoryBroadcaster[string](4)
		defer b.Close()

		s1 := b.Subscribe(ctx)
		s2 := b.Subscribe(ctx)
		require.Equal(t, 2, b.Len())

		require.NoError(t, b.Broadcast(ctx, broadcast.Message[string]{Data: "<svg/>"}))

		msg, ok := receive(t, s1.Receive(ctx))
		require.True(t, ok)
		assert.Equal(t, "<svg/>", msg.Data)

		msg, ok = receive(t, s2.Receive(ctx))
		require.True(t, ok)
		assert.Equal(t, "<svg/>", msg.Data)
	})

	t.Run("full buffer drops instead of blocking", func(t *testing.T) {
		t.Parallel()

		ctx := context.Background()
		b := broadcast.NewMemoryBroadcaster[int](1)
		defer b.Close()

		s := b.Subscribe(ctx)
		require.NoError(t, b.Broadcast(ctx, broadcast.Message[int]{Data: 1}))
		require.NoError(t, b.Broadcast(ctx, broadcast.Message[int]{Data: 2}))

		msg, _ := receive(t, s.Receive(ctx))
		assert.Equal(t, 1, msg.Data)
		select {
		case m := <-s.Receive(ctx):
			t.Fatalf("unexpected message %v", m)
		default:
		}
	})

	t.Run("context cancel unsubscribes", func(t *testing.T) {
		t.Parallel()

		b := broadcast.NewMemoryBroadcaster[int](1)
		defer b.Close()

		ctx, cancel := context.WithCancel(context.Background())
		s := b.Subscribe(ctx)
		cancel()

		_, ok := receive(t, s.Receive(context.Background()))
		assert.False(t, ok, "channel closes after cancel")
		assert.Eventually(t, func() bool { return b.Len() == 0 }, time.Second, 5*time.Millisecond)
	})

	t.Run("subscriber close is idempotent", func(t *testing.T) {
		t.Parallel()

		ctx := context.Background()
		b := broadcast.NewMemoryBroadcaster[int](1)
		s := b.Subscribe(ctx)

		require.NoError(t, s.Close())
		require.NoError(t, s.Close())
		assert.Equal(t, 0, b.Len())
		require.NoError(t, b.Broadcast(ctx, broadcast.Message[int]{Data: 1}))
		require.NoError(t, b.Close())
	})

	t.Run("closed broadcaster", func(t *testing.T) {
		t.Parallel()

		ctx := context.Background()
		b := broadcast.NewMemoryBroadcaster[int](1)
		s := b.Subscribe(ctx)

		require.NoError(t, b.Close())
		require.NoError(t, b.Close())

		_, ok := receive(t, s.Receive(ctx))
		assert.False(t, ok)
		assert.ErrorIs(t, b.Broadcast(ctx, broadcast.Message[int]{Data: 1}), broadcast.ErrBroadcasterClosed)

		late := b.Subscribe(ctx)
		_, ok = receive(t, late.Receive(ctx))
		assert.False(t, ok)
	})

	t.Run("canceled broadcast context", func(t *testing.T) {
		t.Parallel()

		b := broadcast.NewMemoryBroadcaster[int](1)
		defer b.Close()

		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		assert.ErrorIs(t, b.Broadcast(ctx, broadcast.Message[int]{Data: 1}), context.Canceled)
	})
}
