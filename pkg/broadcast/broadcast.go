package broadcast

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

// Message wraps data of type T for type-safe broadcasting.
type Message[T any] struct {
	Data T
}

// Subscriber receives messages from a Broadcaster.
type Subscriber[T any] interface {
	// ID identifies the subscription.
	ID() string

	// Receive returns the delivery channel. It is closed when the
	// subscription ends.
	Receive(ctx context.Context) <-chan Message[T]

	// Close ends the subscription. It is idempotent.
	Close() error
}

// Broadcaster sends messages to multiple subscribers.
type Broadcaster[T any] interface {
	Subscribe(ctx context.Context) Subscriber[T]
	Broadcast(ctx context.Context, msg Message[T]) error
	Close() error
}

type subscriber[T any] struct {
	id     string
	ch     chan Message[T]
	stop   chan struct{}
	closed bool
	mu     sync.Mutex
}

func newSubscriber[T any](bufferSize int) *subscriber[T] {
	return &subscriber[T]{
		id:   uuid.NewString(),
		ch:   make(chan Message[T], bufferSize),
		stop: make(chan struct{}),
	}
}

func (s *subscriber[T]) closedCh() <-chan struct{} {
	return s.stop
}

func (s *subscriber[T]) ID() string {
	return s.id
}

func (s *subscriber[T]) Receive(ctx context.Context) <-chan Message[T] {
	return s.ch
}

func (s *subscriber[T]) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.closed {
		close(s.ch)
		close(s.stop)
		s.closed = true
	}
	return nil
}

// send enqueues msg, evicting the oldest pending message when the buffer is
// full. Senders are serialized by mu; the receiver only ever frees space, so
// the final send cannot block.
func (s *subscriber[T]) send(msg Message[T]) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return false
	}

	select {
	case s.ch <- msg:
		return true
	default:
	}

	select {
	case <-s.ch:
	default:
	}

	select {
	case s.ch <- msg:
	default:
	}
	return true
}
