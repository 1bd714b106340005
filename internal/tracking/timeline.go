// Package tracking synthesizes the order tracking timeline. There is no
// courier backend in scope: progress is simulated from the order's
// creation time using fixed offsets, the same schedule the storefront
// shows on the tracking page.
package tracking

import (
	"time"

	"grocer-service/internal/models"
)

// Step is one display stage of the tracking timeline.
type Step struct {
	Label       string
	Description string
	Location    string
	Offset      time.Duration
}

// Steps is the simulated fulfillment schedule, measured from order
// creation.
var Steps = []Step{
	{Label: "Order Confirmed", Description: "We received your order.", Location: "SmartGrocer HQ", Offset: 0},
	{Label: "Preparing", Description: "Picking fresh items.", Location: "Fulfillment Center", Offset: 10 * time.Minute},
	{Label: "Packed", Description: "Order packed securely.", Location: "Packing Station", Offset: 25 * time.Minute},
	{Label: "Out for Delivery", Description: "Courier on the way.", Location: "", Offset: 50 * time.Minute},
	{Label: "Delivered", Description: "Delivered to your address.", Location: "Destination", Offset: 80 * time.Minute},
}

// Timeline returns the tracking events for an order up to now. A
// cancelled order reports a single cancellation event. The out-for-delivery
// step is located in the shipping city when one is known.
func Timeline(order models.Order, now time.Time) []models.TrackingEvent {
	if order.Status == models.StatusCancelled {
		return []models.TrackingEvent{{
			Status:      "Order Cancelled",
			Description: "This order was cancelled.",
			Timestamp:   order.CreatedAt,
			Location:    "SmartGrocer HQ",
		}}
	}

	events := make([]models.TrackingEvent, 0, len(Steps))
	for _, step := range Steps {
		ts := order.CreatedAt.Add(step.Offset)
		if ts.After(now) {
			break
		}
		location := step.Location
		if location == "" {
			location = order.ShippingInfo.City
			if location == "" {
				location = "Your City"
			}
		}
		events = append(events, models.TrackingEvent{
			Status:      step.Label,
			Description: step.Description,
			Timestamp:   ts,
			Location:    location,
		})
	}
	return events
}

// CurrentStep returns the index of the active timeline step for an order
// created at the given time.
func CurrentStep(createdAt, now time.Time) int {
	elapsed := now.Sub(createdAt)
	step := 0
	for i := 1; i < len(Steps); i++ {
		if elapsed >= Steps[i].Offset {
			step = i
		}
	}
	return step
}

// StatusAt maps elapsed time onto the order status enum. The packed
// display step has no status of its own and stays within preparing.
func StatusAt(createdAt, now time.Time) string {
	elapsed := now.Sub(createdAt)
	switch {
	case elapsed < 10*time.Minute:
		return models.StatusConfirmed
	case elapsed < 50*time.Minute:
		return models.StatusPreparing
	case elapsed < 80*time.Minute:
		return models.StatusOutForDelivery
	default:
		return models.StatusDelivered
	}
}

// statusRank orders the progression statuses; cancelled and unknown
// statuses rank below everything so they are never "advanced" to.
func statusRank(status string) int {
	switch status {
	case models.StatusConfirmed:
		return 0
	case models.StatusPreparing:
		return 1
	case models.StatusOutForDelivery:
		return 2
	case models.StatusDelivered:
		return 3
	}
	return -1
}

// Advance returns the status an open order should progress to, or
// ok=false when no forward transition is due. Cancelled and delivered
// orders never advance.
func Advance(order models.Order, now time.Time) (string, bool) {
	if order.Status == models.StatusCancelled || order.Status == models.StatusDelivered {
		return "", false
	}
	next := StatusAt(order.CreatedAt, now)
	if statusRank(next) > statusRank(order.Status) {
		return next, true
	}
	return "", false
}
