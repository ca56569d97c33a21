package worker

import (
	"context"

	"go.uber.org/zap"

	"storefront/internal/broker"
	"storefront/internal/models"
	"storefront/internal/util"
)

// EventsWorker consumes order events emitted by other storefront clients
// and surfaces them in logs and metrics. Purely observational; the order
// ledger itself is kept current by the feed mirror.
type EventsWorker struct {
	consumer *broker.Consumer
	handler  *broker.EventHandler
	logger   *zap.Logger
}

// NewEventsWorker creates a worker over the order events topic.
func NewEventsWorker(consumer *broker.Consumer) *EventsWorker {
	logger := util.GetLogger()
	handler := broker.NewEventHandler()

	handler.OnOrderSubmitted(func(ctx context.Context, event *models.OrderSubmittedEvent) error {
		logger.Info("Order submitted elsewhere",
			zap.String("order_id", event.OrderID),
			zap.String("channel", event.Channel),
			zap.Float64("total", event.Total))
		return nil
	})
	handler.OnOrderStatusChanged(func(ctx context.Context, event *models.OrderStatusChangedEvent) error {
		logger.Info("Order status changed",
			zap.String("order_id", event.OrderID),
			zap.String("from", event.FromStatus),
			zap.String("to", event.ToStatus))
		return nil
	})

	return &EventsWorker{consumer: consumer, handler: handler, logger: logger}
}

// Start consumes until ctx ends.
func (w *EventsWorker) Start(ctx context.Context) error {
	w.logger.Info("Starting order events worker")
	return w.consumer.StartConsuming(ctx, w.handler.HandleMessage)
}

// Stop closes the underlying consumer.
func (w *EventsWorker) Stop() error {
	w.logger.Info("Stopping order events worker")
	return w.consumer.Close()
}
