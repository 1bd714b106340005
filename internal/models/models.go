package models

import "time"

// Product represents a catalog product
type Product struct {
	ID        string    `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	Price     float64   `db:"price" json:"price"`
	Image     string    `db:"image" json:"image"`
	Category  string    `db:"category" json:"category"`
	Unit      string    `db:"unit" json:"unit"`
	Featured  bool      `db:"featured" json:"featured"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// CartItem is a single line in a cart. ID is the product id and is unique
// within the cart; quantity is always >= 1 (an item dropped to zero is
// removed from the cart, never kept as a zero row).
type CartItem struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	Price    float64 `json:"price"`
	Image    string  `json:"image"`
	Quantity int     `json:"quantity"`
}

// CartState is the full cart: line items in insertion order plus derived
// aggregates. Total and ItemCount are projections of Items, recomputed on
// every mutation, never carried as independent truth.
type CartState struct {
	Items     []CartItem `json:"items"`
	Total     float64    `json:"total"`
	ItemCount int        `json:"itemCount"`
}

// ShippingInfo is the delivery address captured at checkout.
type ShippingInfo struct {
	FullName string `json:"fullName"`
	Address  string `json:"address"`
	City     string `json:"city"`
	State    string `json:"state"`
	ZipCode  string `json:"zipCode"`
	Phone    string `json:"phone"`
}

// BillingInfo is the billing address captured at checkout.
type BillingInfo struct {
	FullName string `json:"fullName"`
	Address  string `json:"address"`
	City     string `json:"city"`
	State    string `json:"state"`
	ZipCode  string `json:"zipCode"`
}

// Order is an immutable snapshot of a completed checkout. Items, amounts
// and CreatedAt never change after creation; Status is the only mutable
// field over the order's lifecycle.
type Order struct {
	ID                string       `json:"id"`
	UserID            string       `json:"userId,omitempty"`
	Items             []CartItem   `json:"items"`
	Subtotal          float64      `json:"subtotal"`
	DeliveryFee       float64      `json:"deliveryFee"`
	Tax               float64      `json:"tax"`
	Total             float64      `json:"total"`
	ShippingInfo      ShippingInfo `json:"shippingInfo"`
	BillingInfo       BillingInfo  `json:"billingInfo"`
	PaymentMethod     string       `json:"paymentMethod"`
	DeliveryOption    string       `json:"deliveryOption"`
	Status            string       `json:"status"`
	EstimatedDelivery time.Time    `json:"estimatedDelivery"`
	CreatedAt         time.Time    `json:"createdAt"`
}

// Order statuses
const (
	StatusConfirmed      = "confirmed"
	StatusPreparing      = "preparing"
	StatusOutForDelivery = "out-for-delivery"
	StatusDelivered      = "delivered"
	StatusCancelled      = "cancelled"
)

// ValidStatus reports whether s is one of the five order statuses.
func ValidStatus(s string) bool {
	switch s {
	case StatusConfirmed, StatusPreparing, StatusOutForDelivery, StatusDelivered, StatusCancelled:
		return true
	}
	return false
}

// Delivery options
const (
	DeliveryExpress   = "express"
	DeliveryStandard  = "standard"
	DeliveryScheduled = "scheduled"
)

// DeliveryOffset returns the estimated-delivery offset for a delivery
// option: express +1h, standard +4h, scheduled +24h.
func DeliveryOffset(option string) (time.Duration, bool) {
	switch option {
	case DeliveryExpress:
		return time.Hour, true
	case DeliveryStandard:
		return 4 * time.Hour, true
	case DeliveryScheduled:
		return 24 * time.Hour, true
	}
	return 0, false
}

// Time windows accepted by the order list filter.
const (
	WindowAll     = "all"
	WindowWeek    = "7days"
	WindowMonth   = "1month"
	WindowQuarter = "3months"
	WindowYear    = "1year"

	StatusFilterAll = "all"
)

// WindowDuration returns how far back from now a window reaches.
// WindowAll reports ok with a zero duration, meaning no cutoff.
func WindowDuration(window string) (time.Duration, bool) {
	switch window {
	case WindowAll, "":
		return 0, true
	case WindowWeek:
		return 7 * 24 * time.Hour, true
	case WindowMonth:
		return 30 * 24 * time.Hour, true
	case WindowQuarter:
		return 90 * 24 * time.Hour, true
	case WindowYear:
		return 365 * 24 * time.Hour, true
	}
	return 0, false
}

// OrderFilter narrows an order listing. All populated criteria are
// combined with AND.
type OrderFilter struct {
	Search string
	Status string
	Window string
}

// TrackingEvent is one entry in an order's tracking timeline.
type TrackingEvent struct {
	Status      string    `json:"status"`
	Description string    `json:"description"`
	Timestamp   time.Time `json:"timestamp"`
	Location    string    `json:"location"`
}
