package service

import (
	"context"
	"errors"
	"fmt"

	"grocer-service/internal/models"
)

type fakeCartStore struct {
	carts    map[string]models.CartState
	saves    int
	saveErr  error
	clearErr error
}

func newFakeCartStore() *fakeCartStore {
	return &fakeCartStore{carts: map[string]models.CartState{}}
}

func (f *fakeCartStore) LoadCart(_ context.Context, userID string) (models.CartState, error) {
	state, ok := f.carts[userID]
	if !ok {
		return models.CartState{Items: []models.CartItem{}}, nil
	}
	return state, nil
}

func (f *fakeCartStore) SaveCart(_ context.Context, userID string, state models.CartState) error {
	if f.saveErr != nil {
		return f.saveErr
	}
	f.saves++
	f.carts[userID] = state
	return nil
}

func (f *fakeCartStore) DeleteCart(_ context.Context, userID string) error {
	if f.clearErr != nil {
		return f.clearErr
	}
	delete(f.carts, userID)
	return nil
}

type fakeOrderStore struct {
	orders  map[string][]models.Order
	saveErr error
}

func newFakeOrderStore() *fakeOrderStore {
	return &fakeOrderStore{orders: map[string][]models.Order{}}
}

func (f *fakeOrderStore) LoadOrders(_ context.Context, userID string) ([]models.Order, error) {
	out := make([]models.Order, len(f.orders[userID]))
	copy(out, f.orders[userID])
	return out, nil
}

func (f *fakeOrderStore) SaveOrders(_ context.Context, userID string, orders []models.Order) error {
	if f.saveErr != nil {
		return f.saveErr
	}
	f.orders[userID] = orders
	return nil
}

type fakeProducts struct {
	products map[string]models.Product
}

func (f *fakeProducts) GetProduct(_ context.Context, id string) (*models.Product, error) {
	p, ok := f.products[id]
	if !ok {
		return nil, fmt.Errorf("product %s not found", id)
	}
	return &p, nil
}

type fakeEvents struct {
	placed    []*models.OrderPlacedEvent
	changed   []*models.OrderStatusChangedEvent
	cancelled []*models.OrderCancelledEvent
}

func (f *fakeEvents) PublishOrderPlaced(_ context.Context, e *models.OrderPlacedEvent) error {
	f.placed = append(f.placed, e)
	return nil
}

func (f *fakeEvents) PublishOrderStatusChanged(_ context.Context, e *models.OrderStatusChangedEvent) error {
	f.changed = append(f.changed, e)
	return nil
}

func (f *fakeEvents) PublishOrderCancelled(_ context.Context, e *models.OrderCancelledEvent) error {
	f.cancelled = append(f.cancelled, e)
	return nil
}

var errStoreDown = errors.New("store down")
