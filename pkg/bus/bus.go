package bus

import (
	"context"
	"errors"
	"sync"
)

const defaultBufferSize = 100

// ErrClosed is returned by ConsumeInbound once the bus is closed.
var ErrClosed = errors.New("message bus closed")

// delivery carries either a message or a receive fault, preserving the order
// in which the connection observed them.
type delivery struct {
	msg InboundMessage
	err error
}

// MessageBus turns a callback-driven network client into a blocking,
// ordered stream of inbound events.
type MessageBus struct {
	inbound chan delivery

	done      chan struct{}
	closeOnce sync.Once
}

func NewMessageBus() *MessageBus {
	return NewMessageBusSize(defaultBufferSize)
}

func NewMessageBusSize(size int) *MessageBus {
	if size <= 0 {
		size = defaultBufferSize
	}

	return &MessageBus{
		inbound: make(chan delivery, size),
		done:    make(chan struct{}),
	}
}

// PublishInbound queues one received message. It blocks while the buffer is
// full and returns false once ctx is done or the bus is closed.
func (mb *MessageBus) PublishInbound(ctx context.Context, msg InboundMessage) bool {
	return mb.publish(ctx, delivery{msg: msg})
}

// PublishFault queues a non-terminal receive error, such as a dropped
// gateway session the client is reconnecting.
func (mb *MessageBus) PublishFault(ctx context.Context, err error) bool {
	if err == nil {
		return false
	}

	return mb.publish(ctx, delivery{err: err})
}

func (mb *MessageBus) publish(ctx context.Context, d delivery) bool {
	if ctx == nil {
		ctx = context.Background()
	}

	select {
	case <-ctx.Done():
		return false
	case <-mb.done:
		return false
	default:
	}

	select {
	case <-ctx.Done():
		return false
	case <-mb.done:
		return false
	case mb.inbound <- d:
		return true
	}
}

// ConsumeInbound blocks until the next message or fault. It returns
// ErrClosed after Close and ctx.Err() on cancellation.
func (mb *MessageBus) ConsumeInbound(ctx context.Context) (InboundMessage, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	select {
	case <-ctx.Done():
		return InboundMessage{}, ctx.Err()
	case <-mb.done:
		return InboundMessage{}, ErrClosed
	case d := <-mb.inbound:
		return d.msg, d.err
	}
}

func (mb *MessageBus) Close() {
	mb.closeOnce.Do(func() {
		close(mb.done)
	})
}
