// Package notify delivers informational events (share notifications,
// link announcements) off the request path. The dispatcher is an
// explicit handle constructed at process start, injected where needed,
// and torn down on shutdown; there is no package-level queue.
package notify

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// Dispatcher accepts events for asynchronous delivery.
type Dispatcher interface {
	// Dispatch enqueues an event without blocking the caller. Events
	// are dropped (with a log) when the queue is full; callers never
	// wait on delivery.
	Dispatch(event Event)
}

// Sender performs one delivery attempt for an event. Implementations
// wrap an email transport or similar.
type Sender interface {
	Send(ctx context.Context, event Event) error
}

// QueueDispatcher runs a single worker goroutine over a bounded queue,
// retrying each event with exponential backoff. Delivery is
// at-least-once from the caller's perspective: an event accepted into
// the queue is attempted until the retry budget runs out.
type QueueDispatcher struct {
	jobs     chan Event
	sender   Sender
	logger   *slog.Logger
	attempts int
	backoff  time.Duration
	wg       sync.WaitGroup

	mu     sync.Mutex
	closed bool
}

// NewQueueDispatcher creates and starts a dispatcher. Close must be
// called on shutdown to drain the queue.
func NewQueueDispatcher(sender Sender, queueSize int, logger *slog.Logger) *QueueDispatcher {
	if queueSize <= 0 {
		queueSize = 1
	}

	d := &QueueDispatcher{
		jobs:     make(chan Event, queueSize),
		sender:   sender,
		logger:   logger,
		attempts: 3,
		backoff:  2 * time.Second,
	}

	d.wg.Add(1)
	go d.run()

	return d
}

// Dispatch enqueues an event. Non-blocking: a full queue drops the
// event rather than stalling the mutation that emitted it.
func (d *QueueDispatcher) Dispatch(event Event) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		d.logger.Warn("notification dropped, dispatcher closed", "kind", event.Kind)
		return
	}

	select {
	case d.jobs <- event:
	default:
		d.logger.Warn("notification dropped, queue full",
			"kind", event.Kind,
			"recipient", event.RecipientEmail,
		)
	}
}

// Close stops accepting events and waits for queued deliveries.
func (d *QueueDispatcher) Close() {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return
	}
	d.closed = true
	close(d.jobs)
	d.mu.Unlock()

	d.wg.Wait()
}

func (d *QueueDispatcher) run() {
	defer d.wg.Done()

	for event := range d.jobs {
		d.deliver(event)
	}
}

func (d *QueueDispatcher) deliver(event Event) {
	ctx := context.Background()
	wait := d.backoff

	for attempt := 1; attempt <= d.attempts; attempt++ {
		err := d.sender.Send(ctx, event)
		if err == nil {
			d.logger.Debug("notification delivered",
				"kind", event.Kind,
				"recipient", event.RecipientEmail,
				"attempt", attempt,
			)
			return
		}

		d.logger.Warn("notification delivery failed",
			"kind", event.Kind,
			"recipient", event.RecipientEmail,
			"attempt", attempt,
			"error", err,
		)

		if attempt < d.attempts {
			time.Sleep(wait)
			wait *= 2
		}
	}

	d.logger.Error("notification abandoned after retries",
		"kind", event.Kind,
		"recipient", event.RecipientEmail,
		"attempts", d.attempts,
	)
}

// LogSender is the development Sender: it logs the event instead of
// delivering it. The production email transport lives outside this
// service and plugs in through the Sender interface.
type LogSender struct {
	Logger *slog.Logger
}

// Send implements Sender.
func (s *LogSender) Send(_ context.Context, event Event) error {
	s.Logger.Info("notification",
		"kind", event.Kind,
		"recipient", event.RecipientEmail,
		"presentation", event.PresentationTitle,
		"actor", event.ActorName,
		"access_level", event.AccessLevel,
	)
	return nil
}
