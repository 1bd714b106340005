package models

import "time"

// Event types
const (
	EventTypeOrderPlaced        = "ORDER_PLACED"
	EventTypeOrderStatusChanged = "ORDER_STATUS_CHANGED"
	EventTypeOrderCancelled     = "ORDER_CANCELLED"
)

// BaseEvent contains common fields for all events
type BaseEvent struct {
	EventID   string    `json:"event_id"`
	EventType string    `json:"event_type"`
	Timestamp time.Time `json:"timestamp"`
}

// OrderPlacedEvent published when a checkout completes and the order has
// been durably appended to the persisted order list
type OrderPlacedEvent struct {
	BaseEvent
	UserID string `json:"user_id"`
	Order  Order  `json:"order"`
}

// OrderStatusChangedEvent published when the lifecycle simulation advances
// an order's status
type OrderStatusChangedEvent struct {
	BaseEvent
	UserID    string `json:"user_id"`
	OrderID   string `json:"order_id"`
	OldStatus string `json:"old_status"`
	NewStatus string `json:"new_status"`
}

// OrderCancelledEvent published when a customer cancels an order
type OrderCancelledEvent struct {
	BaseEvent
	UserID  string `json:"user_id"`
	OrderID string `json:"order_id"`
	Reason  string `json:"reason"`
}
