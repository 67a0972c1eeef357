package events

import (
	"context"
	"fmt"
	"sync"
	"time"

	"propdesk-backend/internal/domain"
	"propdesk-backend/internal/logger"
)

// Publisher is what services depend on to announce mutations.
type Publisher interface {
	Publish(e domain.Event)
}

// Sink consumes events delivered by the Bus. A sink error is logged and
// never reaches the publisher.
type Sink interface {
	Name() string
	Handle(ctx context.Context, e domain.Event) error
}

// LosslessSink is a Sink that must see every event. Publish waits for room
// in its queue instead of dropping.
type LosslessSink interface {
	Sink
	Lossless() bool
}

func isLossless(s Sink) bool {
	l, ok := s.(LosslessSink)
	return ok && l.Lossless()
}

// sinkWorker owns one sink's queue so a slow sink only delays itself.
type sinkWorker struct {
	sink     Sink
	ch       chan domain.Event
	lossless bool
}

// Bus fans events out to sinks. Each sink has its own buffered queue and
// goroutine; events reach a sink in publish order.
type Bus struct {
	workers     []*sinkWorker
	sinkTimeout time.Duration

	mu     sync.RWMutex
	closed bool
	wg     sync.WaitGroup
	done   chan struct{}
	start  sync.Once
}

func NewBus(bufferSize int, sinkTimeout time.Duration, sinks ...Sink) *Bus {
	if bufferSize <= 0 {
		bufferSize = 1
	}
	workers := make([]*sinkWorker, 0, len(sinks))
	for _, s := range sinks {
		workers = append(workers, &sinkWorker{
			sink:     s,
			ch:       make(chan domain.Event, bufferSize),
			lossless: isLossless(s),
		})
	}
	return &Bus{
		workers:     workers,
		sinkTimeout: sinkTimeout,
		done:        make(chan struct{}),
	}
}

// Start launches one goroutine per sink. Calling it more than once has no effect.
func (b *Bus) Start() {
	b.start.Do(func() {
		for _, w := range b.workers {
			b.wg.Add(1)
			go b.run(w)
		}
		go func() {
			b.wg.Wait()
			close(b.done)
		}()
	})
}

// Publish enqueues e for every sink. It waits for lossless sinks and never
// waits for the others.
func (b *Bus) Publish(e domain.Event) {
	b.TryPublish(e)
}

// TryPublish is Publish that reports false when the bus is closed or a
// best-effort sink dropped the event because its queue was full.
func (b *Bus) TryPublish(e domain.Event) bool {
	b.Start()

	b.mu.RLock()
	defer b.mu.RUnlock()

	if b.closed {
		logger.Warn("Event dropped, bus closed", "eventID", e.ID, "type", e.Type)
		return false
	}

	delivered := true
	for _, w := range b.workers {
		if w.lossless {
			w.ch <- e
			continue
		}
		select {
		case w.ch <- e:
		default:
			logger.Warn("Event dropped, sink queue full", "sink", w.sink.Name(), "eventID", e.ID, "type", e.Type)
			delivered = false
		}
	}
	return delivered
}

// Close stops accepting events and waits until the queued ones are delivered.
func (b *Bus) Close() {
	b.mu.Lock()
	if !b.closed {
		b.closed = true
		for _, w := range b.workers {
			close(w.ch)
		}
	}
	b.mu.Unlock()

	b.Start()
	<-b.done
}

func (b *Bus) run(w *sinkWorker) {
	defer b.wg.Done()
	for e := range w.ch {
		b.deliver(w.sink, e)
	}
}

func (b *Bus) deliver(sink Sink, e domain.Event) {
	ctx := context.Background()
	if b.sinkTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, b.sinkTimeout)
		defer cancel()
	}

	err := func() (err error) {
		defer func() {
			if r := recover(); r != nil {
				err = fmt.Errorf("sink panicked: %v", r)
			}
		}()
		return sink.Handle(ctx, e)
	}()
	if err != nil {
		logger.Error("Event sink failed", "sink", sink.Name(), "eventID", e.ID, "type", e.Type, "error", err)
		return
	}
	logger.Debug("Event delivered", "sink", sink.Name(), "eventID", e.ID, "type", e.Type)
}

// PublisherFunc adapts a function to Publisher.
type PublisherFunc func(e domain.Event)

func (f PublisherFunc) Publish(e domain.Event) { f(e) }

// Discard drops every event.
var Discard Publisher = PublisherFunc(func(domain.Event) {})

// Buffer holds events until Flush. Services publish into a Buffer while a
// database transaction is open and flush it once the transaction commits.
type Buffer struct {
	events []domain.Event
}

func (b *Buffer) Publish(e domain.Event) { b.events = append(b.events, e) }

// Flush hands the held events to p in order and empties the buffer.
func (b *Buffer) Flush(p Publisher) {
	for _, e := range b.events {
		p.Publish(e)
	}
	b.events = nil
}
