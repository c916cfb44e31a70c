// Package broadcast fans values out to any number of subscribers without ever
// blocking the publisher.
//
// MemoryBroadcaster is tuned for state snapshots rather than event streams:
// when a subscriber falls behind, the oldest undelivered message is discarded
// to make room for the newest one. A slow subscriber therefore may skip
// intermediate values but always receives the most recent one, in publication
// order, and is never disconnected for being slow.
//
// # Usage
//
//	b := broadcast.NewMemoryBroadcaster[Snapshot](8)
//	defer b.Close()
//
//	sub := b.Subscribe(ctx)
//	go func() {
//	    for msg := range sub.Receive(ctx) {
//	        render(msg.Data)
//	    }
//	}()
//
//	_ = b.Broadcast(ctx, broadcast.Message[Snapshot]{Data: current})
//
// Subscriptions end when their context is cancelled, when Close is called on
// the subscriber, or when the broadcaster itself is closed.
package broadcast
