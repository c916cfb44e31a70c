package broadcast_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/authclient/pkg/broadcast"
)

func TestMemoryBroadcaster_Delivery(t *testing.T) {
	t.Parallel()

	b := broadcast.NewMemoryBroadcaster[string](4)
	defer b.Close()

	ctx := context.Background()
	s1 := b.Subscribe(ctx)
	s2 := b.Subscribe(ctx)
	assert.NotEqual(t, s1.ID(), s2.ID())
	assert.Equal(t, 2, b.Len())

	require.NoError(t, b.Broadcast(ctx, broadcast.Message[string]{Data: "authenticating"}))
	require.NoError(t, b.Broadcast(ctx, broadcast.Message[string]{Data: "authenticated"}))

	for _, sub := range []broadcast.Subscriber[string]{s1, s2} {
		assert.Equal(t, "authenticating", (<-sub.Receive(ctx)).Data)
		assert.Equal(t, "authenticated", (<-sub.Receive(ctx)).Data)
	}
}

func TestMemoryBroadcaster_SlowSubscriberKeepsLatest(t *testing.T) {
	t.Parallel()

	b := broadcast.NewMemoryBroadcaster[int](2)
	defer b.Close()

	ctx := context.Background()
	sub := b.Subscribe(ctx)

	for i := 1; i <= 10; i++ {
		require.NoError(t, b.Broadcast(ctx, broadcast.Message[int]{Data: i}))
	}

	assert.Equal(t, 9, (<-sub.Receive(ctx)).Data)
	assert.Equal(t, 10, (<-sub.Receive(ctx)).Data)
	assert.Equal(t, 1, b.Len(), "slow subscriber must stay subscribed")
}

func TestMemoryBroadcaster_ContextCancelUnsubscribes(t *testing.T) {
	t.Parallel()

	b := broadcast.NewMemoryBroadcaster[int](1)
	defer b.Close()

	ctx, cancel := context.WithCancel(context.Background())
	sub := b.Subscribe(ctx)
	cancel()

	require.Eventually(t, func() bool { return b.Len() == 0 }, time.Second, 5*time.Millisecond)
	_, ok := <-sub.Receive(context.Background())
	assert.False(t, ok)
}

func TestMemoryBroadcaster_ClosedSubscriberPruned(t *testing.T) {
	t.Parallel()

	b := broadcast.NewMemoryBroadcaster[int](1)
	defer b.Close()

	sub := b.Subscribe(context.Background())
	require.NoError(t, sub.Close())
	require.NoError(t, sub.Close())

	require.NoError(t, b.Broadcast(context.Background(), broadcast.Message[int]{Data: 1}))
	assert.Equal(t, 0, b.Len())
}

func TestMemoryBroadcaster_Close(t *testing.T) {
	t.Parallel()

	b := broadcast.NewMemoryBroadcaster[int](1)
	sub := b.Subscribe(context.Background())

	require.NoError(t, b.Close())
	require.NoError(t, b.Close())

	_, ok := <-sub.Receive(context.Background())
	assert.False(t, ok)

	err := b.Broadcast(context.Background(), broadcast.Message[int]{Data: 1})
	assert.ErrorAs(t, err, &broadcast.ErrBroadcasterClosed{})

	late := b.Subscribe(context.Background())
	_, ok = <-late.Receive(context.Background())
	assert.False(t, ok)
}
