package eventlog

import (
	"context"
	"sync/atomic"
)

// Bus is a bounded in-process fan-out of appended envelopes. Slow consumers
// lose events rather than stall the appender; Dropped counts the losses.
type Bus struct {
	ch      chan Envelope
	dropped uint64
}

func NewBus(size int) *Bus {
	if size <= 0 {
		size = 1 << 16
	}
	return &Bus{ch: make(chan Envelope, size)}
}

func (b *Bus) Publish(ctx context.Context, env Envelope) {
	select {
	case b.ch <- env:
	default:
		atomic.AddUint64(&b.dropped, 1)
	}
}

func (b *Bus) C() <-chan Envelope { return b.ch }
func (b *Bus) Dropped() uint64    { return atomic.LoadUint64(&b.dropped) }
