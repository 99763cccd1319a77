// Package broadcast provides generic in-process pub/sub.
//
//	b := broadcast.NewMemoryBroadcaster[[]byte](4)
//	defer b.Close()
//
//	sub := b.Subscribe(ctx)
//	go func() {
//		for msg := range sub.Receive(ctx) {
//			_ = conn.WriteMessage(websocket.TextMessage, msg.Data)
//		}
//	}()
//
//	_ = b.Broadcast(ctx, broadcast.Message[[]byte]{Data: markup})
//
// Subscriptions end when their context is canceled or Close is called.
// Broadcast never blocks: a subscriber with a full buffer misses the
// message, so a slow websocket client cannot stall the others.
package broadcast
