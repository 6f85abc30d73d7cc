package worker

import (
	"context"
	"errors"
	"sync"

	"go.uber.org/zap"

	"github.com/spec-kit/marketplace/internal/events"
	"github.com/spec-kit/marketplace/internal/service"
)

const defaultQueueSize = 256

var (
	// ErrQueueFull is returned to the publisher when the buffer is exhausted.
	ErrQueueFull = errors.New("notification queue full")
	// ErrStopped is returned for events published after Stop.
	ErrStopped = errors.New("notification worker stopped")
)

// NotificationWorker moves notification work off the request path. Events
// are buffered and handled by a single goroutine in publish order.
type NotificationWorker struct {
	service *service.NotificationService
	logger  *zap.Logger
	queue   chan events.Event

	mu      sync.RWMutex
	stopped bool
	done    chan struct{}
}

// StartNotificationWorker subscribes the worker on dispatcher and starts
// draining. queueSize <= 0 selects a default.
func StartNotificationWorker(dispatcher events.Dispatcher, ns *service.NotificationService, queueSize int, logger *zap.Logger) *NotificationWorker {
	if logger == nil {
		logger = zap.NewNop()
	}
	if queueSize <= 0 {
		queueSize = defaultQueueSize
	}
	w := &NotificationWorker{
		service: ns,
		logger:  logger,
		queue:   make(chan events.Event, queueSize),
		done:    make(chan struct{}),
	}
	for _, topic := range ns.Topics() {
		dispatcher.Subscribe(topic, w.enqueue)
	}
	go w.run()
	return w
}

// Stop rejects new events, drains the buffer and waits for the drain to
// finish or ctx to end.
func (w *NotificationWorker) Stop(ctx context.Context) error {
	w.mu.Lock()
	if !w.stopped {
		w.stopped = true
		close(w.queue)
	}
	w.mu.Unlock()

	select {
	case <-w.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (w *NotificationWorker) enqueue(_ context.Context, event events.Event) error {
	w.mu.RLock()
	defer w.mu.RUnlock()
	if w.stopped {
		return ErrStopped
	}
	select {
	case w.queue <- event:
		return nil
	default:
		return ErrQueueFull
	}
}

func (w *NotificationWorker) run() {
	defer close(w.done)
	for event := range w.queue {
		// The request context is gone by now.
		if err := w.service.Handle(context.Background(), event); err != nil {
			w.logger.Warn("notification failed",
				zap.String("event_id", event.ID),
				zap.String("event_type", string(event.Type)),
				zap.Error(err))
		}
	}
}
