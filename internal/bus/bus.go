package bus

import (
	"context"

	"github.com/dsv-cli/dsv/internal/dsverr"
)

// Bus is a single-producer, single-consumer, blocking channel carrying
// Messages from one pipeline stage to the next — the composition
// primitive spec.md §4.4 calls the MessageBus.
//
// Ordering within a bus is send order. Closing the consumer's context
// cancels the producer at its next Send, which it observes as
// dsverr.UpstreamClosed: a cooperative "stop reading input" signal,
// not a real error.
type Bus struct {
	ch     chan Message
	ctx    context.Context
	cancel context.CancelFunc
}

// New creates a Bus with the given channel capacity (spec.md describes
// it as "blocking"; a small capacity decouples producer/consumer
// scheduling without changing delivery-order guarantees).
func New(parent context.Context, capacity int) *Bus {
	ctx, cancel := context.WithCancel(parent)
	return &Bus{ch: make(chan Message, capacity), ctx: ctx, cancel: cancel}
}

// Send delivers msg to the consumer, blocking if the bus is at
// capacity. It returns dsverr.UpstreamClosed if the consumer has
// cancelled (receiver gone) before or during the send.
func (b *Bus) Send(msg Message) error {
	select {
	case b.ch <- msg:
		return nil
	case <-b.ctx.Done():
		return dsverr.UpstreamClosed
	}
}

// Recv returns the next Message, or ok=false once the producer has
// closed the bus (CloseSend) or the consumer's own context was
// cancelled by an outer signal (e.g. SIGINT).
func (b *Bus) Recv() (Message, bool) {
	select {
	case msg, ok := <-b.ch:
		return msg, ok
	case <-b.ctx.Done():
		return Message{}, false
	}
}

// CloseSend is called by the producer once it has no more Messages to
// send (after Eof, or after an unrecoverable error). It is idempotent
// from the caller's perspective only if called exactly once; callers
// own that invariant via defer.
func (b *Bus) CloseSend() { close(b.ch) }

// CancelConsumer tells the producer to stop: the next Send observes
// dsverr.UpstreamClosed. Used when a downstream consumer exits early
// (e.g. the pager process quit, or a subcommand returned "break").
func (b *Bus) CancelConsumer() { b.cancel() }

// Done reports the channel consumers can select on to observe
// cancellation.
func (b *Bus) Done() <-chan struct{} { return b.ctx.Done() }
