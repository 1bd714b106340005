package service

import (
	"context"
	"fmt"
	"time"

	"grocer-service/internal/models"
	"grocer-service/internal/util"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// OrderStore persists the per-user append-only order list.
type OrderStore interface {
	LoadOrders(ctx context.Context, userID string) ([]models.Order, error)
	SaveOrders(ctx context.Context, userID string, orders []models.Order) error
}

// OrderEvents publishes order lifecycle events.
type OrderEvents interface {
	PublishOrderPlaced(ctx context.Context, event *models.OrderPlacedEvent) error
	PublishOrderStatusChanged(ctx context.Context, event *models.OrderStatusChangedEvent) error
	PublishOrderCancelled(ctx context.Context, event *models.OrderCancelledEvent) error
}

// CheckoutAmounts are the charges computed for a checkout.
type CheckoutAmounts struct {
	Subtotal    float64 `json:"subtotal"`
	DeliveryFee float64 `json:"deliveryFee"`
	Tax         float64 `json:"tax"`
	Total       float64 `json:"total"`
}

// PlaceOrderRequest carries the checkout-time inputs.
type PlaceOrderRequest struct {
	ShippingInfo   models.ShippingInfo `json:"shippingInfo" binding:"required"`
	BillingInfo    models.BillingInfo  `json:"billingInfo"`
	PaymentMethod  string              `json:"paymentMethod" binding:"required"`
	DeliveryOption string              `json:"deliveryOption" binding:"required"`
}

// CheckoutPricing are the business knobs for computing amounts.
type CheckoutPricing struct {
	TaxRate               float64
	StandardFee           float64
	ExpressFee            float64
	ScheduledFee          float64
	FreeDeliveryThreshold float64
}

// CheckoutService converts the current cart plus checkout inputs into a
// durable order record. The append to the persisted order list must
// succeed before the cart is cleared, so a failure between the two can
// only leave a stale cart behind, never lose an order.
type CheckoutService struct {
	carts   CartStore
	orders  OrderStore
	events  OrderEvents
	pricing CheckoutPricing
	logger  *zap.Logger
}

// NewCheckoutService creates a new checkout service
func NewCheckoutService(carts CartStore, orders OrderStore, events OrderEvents, pricing CheckoutPricing) *CheckoutService {
	return &CheckoutService{
		carts:   carts,
		orders:  orders,
		events:  events,
		pricing: pricing,
		logger:  util.GetLogger(),
	}
}

// PlaceOrder builds an immutable order snapshot from the user's cart and
// appends it to the persisted order list, then clears the cart.
func (s *CheckoutService) PlaceOrder(ctx context.Context, userID string, req *PlaceOrderRequest) (*models.Order, error) {
	ctx, span := util.StartSpan(ctx, "CheckoutService.PlaceOrder")
	defer span.End()

	offset, ok := models.DeliveryOffset(req.DeliveryOption)
	if !ok {
		util.OrderPlacementFailedTotal.WithLabelValues("invalid_delivery_option").Inc()
		return nil, fmt.Errorf("%w: %s", ErrInvalidDeliveryOption, req.DeliveryOption)
	}

	state, err := s.carts.LoadCart(ctx, userID)
	if err != nil {
		util.OrderPlacementFailedTotal.WithLabelValues("cart_load").Inc()
		return nil, fmt.Errorf("load cart: %w", err)
	}
	if len(state.Items) == 0 {
		util.OrderPlacementFailedTotal.WithLabelValues("empty_cart").Inc()
		return nil, ErrEmptyCart
	}

	existing, err := s.orders.LoadOrders(ctx, userID)
	if err != nil {
		util.OrderPlacementFailedTotal.WithLabelValues("orders_load").Inc()
		return nil, fmt.Errorf("load orders: %w", err)
	}

	now := time.Now().UTC()
	amounts := s.Amounts(state, req.DeliveryOption)

	// The stored items are a deep snapshot: later cart mutations must
	// not reach into a placed order.
	items := make([]models.CartItem, len(state.Items))
	copy(items, state.Items)

	order := models.Order{
		ID:                nextOrderID(existing, now),
		UserID:            userID,
		Items:             items,
		Subtotal:          amounts.Subtotal,
		DeliveryFee:       amounts.DeliveryFee,
		Tax:               amounts.Tax,
		Total:             amounts.Total,
		ShippingInfo:      req.ShippingInfo,
		BillingInfo:       req.BillingInfo,
		PaymentMethod:     req.PaymentMethod,
		DeliveryOption:    req.DeliveryOption,
		Status:            models.StatusConfirmed,
		EstimatedDelivery: now.Add(offset),
		CreatedAt:         now,
	}

	if err := s.orders.SaveOrders(ctx, userID, append(existing, order)); err != nil {
		util.OrderPlacementFailedTotal.WithLabelValues("append").Inc()
		return nil, fmt.Errorf("order placement failed: %w", err)
	}

	// The order is durable; clearing the cart after this point can fail
	// without losing it.
	if err := s.carts.DeleteCart(ctx, userID); err != nil {
		s.logger.Error("Failed to clear cart after checkout",
			zap.String("user_id", userID),
			zap.String("order_id", order.ID),
			zap.Error(err))
	}

	util.OrdersPlacedTotal.Inc()
	s.logger.Info("Order placed",
		zap.String("user_id", userID),
		zap.String("order_id", order.ID),
		zap.Float64("total", order.Total))

	event := &models.OrderPlacedEvent{
		BaseEvent: models.BaseEvent{
			EventID:   uuid.New().String(),
			EventType: models.EventTypeOrderPlaced,
			Timestamp: now,
		},
		UserID: userID,
		Order:  order,
	}
	if err := s.events.PublishOrderPlaced(ctx, event); err != nil {
		s.logger.Error("Failed to publish OrderPlaced event", zap.Error(err))
	}

	return &order, nil
}

// Amounts computes the checkout charges for a cart: subtotal from the
// cart total, the per-option delivery fee (waived above the free-delivery
// threshold), and tax on the subtotal.
func (s *CheckoutService) Amounts(state models.CartState, deliveryOption string) CheckoutAmounts {
	subtotal := state.Total

	var fee float64
	switch deliveryOption {
	case models.DeliveryExpress:
		fee = s.pricing.ExpressFee
	case models.DeliveryScheduled:
		fee = s.pricing.ScheduledFee
	default:
		fee = s.pricing.StandardFee
	}
	if s.pricing.FreeDeliveryThreshold > 0 && subtotal >= s.pricing.FreeDeliveryThreshold {
		fee = 0
	}

	tax := roundCents(subtotal * s.pricing.TaxRate)

	return CheckoutAmounts{
		Subtotal:    subtotal,
		DeliveryFee: fee,
		Tax:         tax,
		Total:       roundCents(subtotal + fee + tax),
	}
}

// nextOrderID derives an id from the millisecond timestamp, bumping past
// any id already present so a same-millisecond checkout cannot collide.
func nextOrderID(existing []models.Order, now time.Time) string {
	taken := make(map[string]struct{}, len(existing))
	for _, o := range existing {
		taken[o.ID] = struct{}{}
	}

	millis := now.UnixMilli()
	for {
		id := fmt.Sprintf("ORD-%d", millis)
		if _, dup := taken[id]; !dup {
			return id
		}
		millis++
	}
}

func roundCents(v float64) float64 {
	return float64(int64(v*100+0.5)) / 100
}
