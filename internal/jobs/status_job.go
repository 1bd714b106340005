// Package jobs holds the scheduled background jobs. The only job in this
// service advances simulated order statuses, standing in for a real
// fulfillment backend.
package jobs

import (
	"context"
	"fmt"
	"time"

	"grocer-service/internal/models"
	"grocer-service/internal/tracking"
	"grocer-service/internal/util"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// OrderScanner walks and rewrites persisted per-user order lists.
type OrderScanner interface {
	ScanOrderUsers(ctx context.Context) ([]string, error)
	LoadOrders(ctx context.Context, userID string) ([]models.Order, error)
	SaveOrders(ctx context.Context, userID string, orders []models.Order) error
}

// StatusEvents publishes status transitions.
type StatusEvents interface {
	PublishOrderStatusChanged(ctx context.Context, event *models.OrderStatusChangedEvent) error
}

// StatusProgressionJob periodically advances open orders along
// confirmed -> preparing -> out-for-delivery -> delivered, following the
// simulated fulfillment schedule. Status is the only field it touches.
type StatusProgressionJob struct {
	orders   OrderScanner
	events   StatusEvents
	cron     *cron.Cron
	interval time.Duration
	logger   *zap.Logger
}

// NewStatusProgressionJob creates a new status progression job
func NewStatusProgressionJob(orders OrderScanner, events StatusEvents, interval time.Duration) *StatusProgressionJob {
	return &StatusProgressionJob{
		orders:   orders,
		events:   events,
		cron:     cron.New(),
		interval: interval,
		logger:   util.GetLogger(),
	}
}

// Start schedules the job at its configured interval.
func (j *StatusProgressionJob) Start() error {
	spec := fmt.Sprintf("@every %s", j.interval)
	_, err := j.cron.AddFunc(spec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), j.interval)
		defer cancel()

		if err := j.RunOnce(ctx, time.Now()); err != nil {
			j.logger.Error("Status progression run failed", zap.Error(err))
		}
	})
	if err != nil {
		return err
	}

	j.cron.Start()
	j.logger.Info("Status progression job started", zap.Duration("interval", j.interval))
	return nil
}

// Stop stops the job.
func (j *StatusProgressionJob) Stop() {
	j.cron.Stop()
	j.logger.Info("Status progression job stopped")
}

// RunOnce performs a single progression sweep over all persisted order
// lists.
func (j *StatusProgressionJob) RunOnce(ctx context.Context, now time.Time) error {
	users, err := j.orders.ScanOrderUsers(ctx)
	if err != nil {
		return fmt.Errorf("scan order users: %w", err)
	}

	for _, userID := range users {
		if err := j.progressUser(ctx, userID, now); err != nil {
			j.logger.Error("Failed to progress orders",
				zap.String("user_id", userID),
				zap.Error(err))
		}
	}
	return nil
}

func (j *StatusProgressionJob) progressUser(ctx context.Context, userID string, now time.Time) error {
	orders, err := j.orders.LoadOrders(ctx, userID)
	if err != nil {
		return err
	}

	var transitions []*models.OrderStatusChangedEvent
	for i := range orders {
		next, ok := tracking.Advance(orders[i], now)
		if !ok {
			continue
		}

		transitions = append(transitions, &models.OrderStatusChangedEvent{
			BaseEvent: models.BaseEvent{
				EventID:   uuid.New().String(),
				EventType: models.EventTypeOrderStatusChanged,
				Timestamp: now,
			},
			UserID:    userID,
			OrderID:   orders[i].ID,
			OldStatus: orders[i].Status,
			NewStatus: next,
		})
		orders[i].Status = next
		util.StatusTransitionsTotal.WithLabelValues(next).Inc()
	}

	if len(transitions) == 0 {
		return nil
	}

	if err := j.orders.SaveOrders(ctx, userID, orders); err != nil {
		return err
	}

	for _, event := range transitions {
		if err := j.events.PublishOrderStatusChanged(ctx, event); err != nil {
			j.logger.Error("Failed to publish OrderStatusChanged event", zap.Error(err))
		}
	}
	return nil
}
