package audit

import (
	"context"
	"sync"
	"sync/atomic"
)

// Config controls dispatcher buffering. A zero Config disables auditing
// entirely.
type Config struct {
	// Enabled turns event delivery on. When false NewDispatcher
	// returns nil, and a nil *Dispatcher is safe to use.
	Enabled bool

	// BufferSize is the channel capacity between producers and the
	// sink goroutine. Values below 1 are raised to 1.
	BufferSize int

	// DropIfFull makes Emit discard events when the buffer is full
	// instead of waiting. Dropped events are counted, not delivered.
	DropIfFull bool
}

// Dispatcher moves events from authentication flows to a Sink on a
// dedicated goroutine. All methods are safe on a nil receiver so
// callers never branch on whether auditing is configured.
type Dispatcher struct {
	sink     Sink
	events   chan Event
	stop     chan struct{}
	stopOnce sync.Once
	drained  sync.WaitGroup
	dropped  atomic.Uint64
	dropFull bool
	stopped  atomic.Bool
}

// NewDispatcher starts the sink goroutine. It returns nil when auditing
// is disabled.
func NewDispatcher(cfg Config, sink Sink) *Dispatcher {
	if !cfg.Enabled {
		return nil
	}
	if cfg.BufferSize < 1 {
		cfg.BufferSize = 1
	}
	if sink == nil {
		sink = NoOpSink{}
	}

	d := &Dispatcher{
		sink:     sink,
		events:   make(chan Event, cfg.BufferSize),
		stop:     make(chan struct{}),
		dropFull: cfg.DropIfFull,
	}
	d.drained.Add(1)
	go d.deliver()
	return d
}

func (d *Dispatcher) deliver() {
	defer d.drained.Done()

	for {
		select {
		case event := <-d.events:
			d.sink.Emit(context.Background(), event)
		case <-d.stop:
			d.flush()
			return
		}
	}
}

// flush hands every buffered event to the sink before shutdown. Emit
// has already stopped accepting events at this point.
func (d *Dispatcher) flush() {
	for {
		select {
		case event := <-d.events:
			d.sink.Emit(context.Background(), event)
		default:
			return
		}
	}
}

// Emit queues an event for delivery. It never blocks when the
// dispatcher is configured to drop on a full buffer; otherwise it
// waits until the buffer accepts the event, the context is done, or
// the dispatcher is closed.
func (d *Dispatcher) Emit(ctx context.Context, event Event) {
	if d == nil || d.stopped.Load() {
		return
	}
	if ctx == nil {
		ctx = context.Background()
	}

	if d.dropFull {
		select {
		case d.events <- event:
		case <-d.stop:
		default:
			d.dropped.Add(1)
		}
		return
	}

	select {
	case d.events <- event:
	case <-ctx.Done():
	case <-d.stop:
	}
}

// Close stops accepting events, delivers what is buffered and waits
// for the sink goroutine to exit. Close is idempotent.
func (d *Dispatcher) Close() {
	if d == nil {
		return
	}
	d.stopOnce.Do(func() {
		d.stopped.Store(true)
		close(d.stop)
		d.drained.Wait()
	})
}

// Dropped reports how many events were discarded because the buffer
// was full.
func (d *Dispatcher) Dropped() uint64 {
	if d == nil {
		return 0
	}
	return d.dropped.Load()
}
