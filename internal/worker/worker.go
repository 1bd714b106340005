package worker

import (
	"context"
	"log"

	"grocer-service/internal/broker"
	"grocer-service/internal/models"
	"grocer-service/internal/store"
	"grocer-service/internal/util"
)

// ArchiveWorker mirrors placed orders into the Postgres archive by
// consuming order events. The persisted key-value list stays the read
// source for listings; the archive serves long-term lookups and keeps
// status transitions in sync.
type ArchiveWorker struct {
	consumer     *broker.Consumer
	eventHandler *broker.EventHandler
	store        *store.Store
}

// NewArchiveWorker creates a new archive worker
func NewArchiveWorker(consumer *broker.Consumer, st *store.Store) *ArchiveWorker {
	w := &ArchiveWorker{
		consumer: consumer,
		store:    st,
	}

	eventHandler := broker.NewEventHandler()
	eventHandler.OnOrderPlaced(w.handleOrderPlaced)
	eventHandler.OnOrderStatusChanged(w.handleStatusChanged)
	eventHandler.OnOrderCancelled(w.handleCancelled)
	w.eventHandler = eventHandler

	return w
}

// Start starts the worker
func (w *ArchiveWorker) Start(ctx context.Context) error {
	log.Println("Starting archive worker...")
	return w.consumer.StartConsuming(ctx, w.eventHandler.HandleMessage)
}

// Stop stops the worker
func (w *ArchiveWorker) Stop() error {
	log.Println("Stopping archive worker...")
	return w.consumer.Close()
}

func (w *ArchiveWorker) handleOrderPlaced(ctx context.Context, event *models.OrderPlacedEvent) error {
	processed, err := w.store.IsEventProcessed(ctx, event.EventID)
	if err != nil {
		return err
	}
	if processed {
		log.Printf("Event already processed: %s", event.EventID)
		return nil
	}

	if err := w.store.ArchiveOrder(ctx, &event.Order); err != nil {
		return err
	}

	util.OrdersArchivedTotal.Inc()
	log.Printf("Order archived: %s", event.Order.ID)

	return w.store.MarkEventProcessed(ctx, event.EventID, event.EventType)
}

func (w *ArchiveWorker) handleStatusChanged(ctx context.Context, event *models.OrderStatusChangedEvent) error {
	processed, err := w.store.IsEventProcessed(ctx, event.EventID)
	if err != nil {
		return err
	}
	if processed {
		return nil
	}

	if err := w.store.UpdateArchivedStatus(ctx, event.OrderID, event.NewStatus); err != nil {
		return err
	}
	return w.store.MarkEventProcessed(ctx, event.EventID, event.EventType)
}

func (w *ArchiveWorker) handleCancelled(ctx context.Context, event *models.OrderCancelledEvent) error {
	processed, err := w.store.IsEventProcessed(ctx, event.EventID)
	if err != nil {
		return err
	}
	if processed {
		return nil
	}

	if err := w.store.UpdateArchivedStatus(ctx, event.OrderID, models.StatusCancelled); err != nil {
		return err
	}
	return w.store.MarkEventProcessed(ctx, event.EventID, event.EventType)
}
