package message

import (
	"context"
	"errors"
	"sync"
)

// ErrClosed is returned by a channel that was closed by either side.
var ErrClosed = errors.New("message channel is closed")

// Channel is one end of a bidirectional message channel.
type Channel interface {
	// Send delivers a message, blocking until the peer accepts it, the
	// channel is closed or the context is done.
	Send(ctx context.Context, msg Message) error

	// TrySend delivers a message only if it can be done without blocking.
	// It returns false when the message was dropped.
	TrySend(msg Message) bool

	// Receive blocks until a message arrives, the channel is closed or the
	// context is done.
	Receive(ctx context.Context) (Message, error)

	// Close closes the channel for both ends.
	Close() error
}

// pipeEnd is one end of an in-process channel pair.
type pipeEnd struct {
	in   <-chan Message
	out  chan<- Message
	done chan struct{}
	once *sync.Once
}

// NewPair creates two connected in-process channel ends. Messages sent on
// one end are received on the other. Each direction buffers up to
// capacity messages.
func NewPair(capacity int) (Channel, Channel) {
	if capacity < 0 {
		capacity = 0
	}
	aToB := make(chan Message, capacity)
	bToA := make(chan Message, capacity)
	done := make(chan struct{})
	once := &sync.Once{}

	a := &pipeEnd{in: bToA, out: aToB, done: done, once: once}
	b := &pipeEnd{in: aToB, out: bToA, done: done, once: once}
	return a, b
}

func (p *pipeEnd) Send(ctx context.Context, msg Message) error {
	select {
	case <-p.done:
		return ErrClosed
	default:
	}

	select {
	case p.out <- msg:
		return nil
	case <-p.done:
		return ErrClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (p *pipeEnd) TrySend(msg Message) bool {
	select {
	case <-p.done:
		return false
	default:
	}

	select {
	case p.out <- msg:
		return true
	default:
		return false
	}
}

func (p *pipeEnd) Receive(ctx context.Context) (Message, error) {
	// buffered messages win over closing
	select {
	case msg := <-p.in:
		return msg, nil
	default:
	}

	select {
	case msg := <-p.in:
		return msg, nil
	case <-p.done:
		return nil, ErrClosed
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (p *pipeEnd) Close() error {
	p.once.Do(func() { close(p.done) })
	return nil
}
