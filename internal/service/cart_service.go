package service

import (
	"context"
	"fmt"

	"grocer-service/internal/cart"
	"grocer-service/internal/models"
	"grocer-service/internal/util"

	"go.uber.org/zap"
)

// CartStore persists per-user cart state.
type CartStore interface {
	LoadCart(ctx context.Context, userID string) (models.CartState, error)
	SaveCart(ctx context.Context, userID string, state models.CartState) error
	DeleteCart(ctx context.Context, userID string) error
}

// ProductSource resolves product details for add-to-cart.
type ProductSource interface {
	GetProduct(ctx context.Context, id string) (*models.Product, error)
}

// CartService owns the cart lifecycle: every mutation hydrates the
// persisted state, runs the reducer, and persists the result before
// returning it.
type CartService struct {
	carts    CartStore
	products ProductSource
	logger   *zap.Logger
}

// NewCartService creates a new cart service
func NewCartService(carts CartStore, products ProductSource) *CartService {
	return &CartService{
		carts:    carts,
		products: products,
		logger:   util.GetLogger(),
	}
}

// GetCart returns the user's current cart.
func (s *CartService) GetCart(ctx context.Context, userID string) (models.CartState, error) {
	state, err := s.carts.LoadCart(ctx, userID)
	if err != nil {
		return cart.Empty(), err
	}
	return cart.Normalize(state), nil
}

// AddItem adds quantity units of a product to the cart. A quantity below
// one defaults to one. Adding a product already in the cart increments
// its line instead of duplicating it.
func (s *CartService) AddItem(ctx context.Context, userID, productID string, quantity int) (models.CartState, error) {
	product, err := s.products.GetProduct(ctx, productID)
	if err != nil {
		return cart.Empty(), fmt.Errorf("%w: %s", ErrProductNotFound, productID)
	}

	item := models.CartItem{
		ID:       product.ID,
		Name:     product.Name,
		Price:    product.Price,
		Image:    product.Image,
		Quantity: quantity,
	}
	return s.mutate(ctx, userID, "add", cart.AddItem{Item: item})
}

// RemoveItem removes a line from the cart; an absent id is a no-op.
func (s *CartService) RemoveItem(ctx context.Context, userID, productID string) (models.CartState, error) {
	return s.mutate(ctx, userID, "remove", cart.RemoveItem{ID: productID})
}

// UpdateQuantity sets a line's quantity; values below one delete the line.
func (s *CartService) UpdateQuantity(ctx context.Context, userID, productID string, quantity int) (models.CartState, error) {
	return s.mutate(ctx, userID, "update_quantity", cart.UpdateQuantity{ID: productID, Quantity: quantity})
}

// ClearCart resets the cart to the empty state.
func (s *CartService) ClearCart(ctx context.Context, userID string) (models.CartState, error) {
	return s.mutate(ctx, userID, "clear", cart.Clear{})
}

func (s *CartService) mutate(ctx context.Context, userID, op string, action cart.Action) (models.CartState, error) {
	ctx, span := util.StartSpan(ctx, "CartService."+op)
	defer span.End()

	state, err := s.carts.LoadCart(ctx, userID)
	if err != nil {
		return cart.Empty(), err
	}

	next := cart.Apply(cart.Normalize(state), action)

	if err := s.carts.SaveCart(ctx, userID, next); err != nil {
		return cart.Empty(), fmt.Errorf("persist cart: %w", err)
	}

	util.CartMutationsTotal.WithLabelValues(op).Inc()
	util.CartItemCount.Observe(float64(next.ItemCount))
	s.logger.Debug("Cart mutated",
		zap.String("user_id", userID),
		zap.String("op", op),
		zap.Int("item_count", next.ItemCount))

	return next, nil
}
