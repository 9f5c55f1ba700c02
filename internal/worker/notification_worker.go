package worker

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/fitlab-service/internal/events"
	"github.com/spec-kit/fitlab-service/internal/service"
)

const deliveryTimeout = 5 * time.Second

// NotificationWorker delivers notifications outside the request that raised the event.
type NotificationWorker struct {
	notifications *service.NotificationService
	logger        *zap.Logger
	queue         chan events.Event
	wg            sync.WaitGroup
}

// StartNotificationWorker subscribes a worker to every notification event and starts consuming.
// The worker stops when ctx is cancelled after draining what is already queued.
func StartNotificationWorker(ctx context.Context, dispatcher events.Dispatcher, notifications *service.NotificationService, logger *zap.Logger, buffer int) *NotificationWorker {
	if buffer <= 0 {
		buffer = 64
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	w := &NotificationWorker{
		notifications: notifications,
		logger:        logger,
		queue:         make(chan events.Event, buffer),
	}
	for _, eventType := range service.NotificationEventTypes {
		dispatcher.Subscribe(eventType, w.enqueue)
	}

	w.wg.Add(1)
	go w.run(ctx)
	return w
}

// Wait blocks until the worker has stopped.
func (w *NotificationWorker) Wait() {
	w.wg.Wait()
}

// enqueue never blocks the publisher; a full queue drops the event.
func (w *NotificationWorker) enqueue(_ context.Context, event events.Event) error {
	select {
	case w.queue <- event:
	default:
		w.logger.Warn("notification queue full, dropping event",
			zap.String("event_id", event.ID),
			zap.String("event_type", string(event.Type)))
	}
	return nil
}

func (w *NotificationWorker) run(ctx context.Context) {
	defer w.wg.Done()
	for {
		select {
		case event := <-w.queue:
			w.deliver(event)
		case <-ctx.Done():
			w.drain()
			return
		}
	}
}

func (w *NotificationWorker) drain() {
	for {
		select {
		case event := <-w.queue:
			w.deliver(event)
		default:
			return
		}
	}
}

func (w *NotificationWorker) deliver(event events.Event) {
	ctx, cancel := context.WithTimeout(context.Background(), deliveryTimeout)
	defer cancel()
	if err := w.notifications.Handle(ctx, event); err != nil {
		w.logger.Error("notification delivery failed",
			zap.String("event_id", event.ID),
			zap.String("event_type", string(event.Type)),
			zap.Error(err))
	}
}
