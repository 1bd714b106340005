package service

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"grocer-service/internal/models"
	"grocer-service/internal/tracking"
	"grocer-service/internal/util"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ArchiveReader is the fallback source for single-order reads when the
// persisted list no longer holds the id.
type ArchiveReader interface {
	GetArchivedOrder(ctx context.Context, userID, orderID string) (*models.Order, error)
}

// TrackingInfo is the simulated tracking view of an order.
type TrackingInfo struct {
	Order       *models.Order          `json:"order"`
	History     []models.TrackingEvent `json:"history"`
	CurrentStep int                    `json:"currentStep"`
}

// OrderService presents the persisted order list in a query-friendly
// form and owns the customer-facing lifecycle operations.
type OrderService struct {
	orders  OrderStore
	archive ArchiveReader
	events  OrderEvents
	logger  *zap.Logger
}

// NewOrderService creates a new order service
func NewOrderService(orders OrderStore, archive ArchiveReader, events OrderEvents) *OrderService {
	return &OrderService{
		orders:  orders,
		archive: archive,
		events:  events,
		logger:  util.GetLogger(),
	}
}

// ListOrders loads the user's persisted orders, newest first, narrowed by
// the filter. The filters are conjunctive and the read never mutates the
// persisted list.
func (s *OrderService) ListOrders(ctx context.Context, userID string, filter models.OrderFilter) ([]models.Order, error) {
	ctx, span := util.StartSpan(ctx, "OrderService.ListOrders")
	defer span.End()

	orders, err := s.orders.LoadOrders(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("load orders: %w", err)
	}

	sort.SliceStable(orders, func(i, j int) bool {
		return orders[i].CreatedAt.After(orders[j].CreatedAt)
	})

	return filterOrders(orders, filter, time.Now()), nil
}

// filterOrders applies free-text, status and time-window filters, ANDed.
func filterOrders(orders []models.Order, filter models.OrderFilter, now time.Time) []models.Order {
	search := strings.ToLower(strings.TrimSpace(filter.Search))

	var cutoff time.Time
	if d, ok := models.WindowDuration(filter.Window); ok && d > 0 {
		cutoff = now.Add(-d)
	}

	out := make([]models.Order, 0, len(orders))
	for _, order := range orders {
		if search != "" && !matchesSearch(order, search) {
			continue
		}
		if filter.Status != "" && filter.Status != models.StatusFilterAll && order.Status != filter.Status {
			continue
		}
		if !cutoff.IsZero() && order.CreatedAt.Before(cutoff) {
			continue
		}
		out = append(out, order)
	}
	return out
}

// matchesSearch reports whether the lowercased needle occurs in the order
// id or any contained item name.
func matchesSearch(order models.Order, needle string) bool {
	if strings.Contains(strings.ToLower(order.ID), needle) {
		return true
	}
	for _, item := range order.Items {
		if strings.Contains(strings.ToLower(item.Name), needle) {
			return true
		}
	}
	return false
}

// GetOrder finds an order in the persisted list, falling back to the
// archive. A miss in both is terminal.
func (s *OrderService) GetOrder(ctx context.Context, userID, orderID string) (*models.Order, error) {
	orders, err := s.orders.LoadOrders(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("load orders: %w", err)
	}
	for i := range orders {
		if orders[i].ID == orderID {
			return &orders[i], nil
		}
	}

	if s.archive != nil {
		order, err := s.archive.GetArchivedOrder(ctx, userID, orderID)
		if err == nil {
			return order, nil
		}
	}

	return nil, fmt.Errorf("%w: %s", ErrOrderNotFound, orderID)
}

// GetTracking returns the simulated tracking timeline for an order.
func (s *OrderService) GetTracking(ctx context.Context, userID, orderID string) (*TrackingInfo, error) {
	order, err := s.GetOrder(ctx, userID, orderID)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	return &TrackingInfo{
		Order:       order,
		History:     tracking.Timeline(*order, now),
		CurrentStep: tracking.CurrentStep(order.CreatedAt, now),
	}, nil
}

// CancelOrder sets an order's status to cancelled. Delivered orders can
// no longer be cancelled; cancelling twice is a no-op.
func (s *OrderService) CancelOrder(ctx context.Context, userID, orderID string) (*models.Order, error) {
	ctx, span := util.StartSpan(ctx, "OrderService.CancelOrder")
	defer span.End()

	orders, err := s.orders.LoadOrders(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("load orders: %w", err)
	}

	idx := -1
	for i := range orders {
		if orders[i].ID == orderID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil, fmt.Errorf("%w: %s", ErrOrderNotFound, orderID)
	}

	if orders[idx].Status == models.StatusCancelled {
		return &orders[idx], nil
	}
	if orders[idx].Status == models.StatusDelivered {
		return nil, ErrOrderNotCancellable
	}

	orders[idx].Status = models.StatusCancelled
	if err := s.orders.SaveOrders(ctx, userID, orders); err != nil {
		return nil, fmt.Errorf("persist cancellation: %w", err)
	}

	util.OrdersCancelledTotal.Inc()
	s.logger.Info("Order cancelled",
		zap.String("user_id", userID),
		zap.String("order_id", orderID))

	event := &models.OrderCancelledEvent{
		BaseEvent: models.BaseEvent{
			EventID:   uuid.New().String(),
			EventType: models.EventTypeOrderCancelled,
			Timestamp: time.Now(),
		},
		UserID:  userID,
		OrderID: orderID,
		Reason:  "customer_request",
	}
	if err := s.events.PublishOrderCancelled(ctx, event); err != nil {
		s.logger.Error("Failed to publish OrderCancelled event", zap.Error(err))
	}

	return &orders[idx], nil
}
