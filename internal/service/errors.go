package service

import "errors"

var (
	// ErrOrderNotFound is terminal: the id exists neither in the
	// persisted order list nor in the archive.
	ErrOrderNotFound = errors.New("order not found")

	// ErrProductNotFound means an add-to-cart referenced an unknown
	// product id.
	ErrProductNotFound = errors.New("product not found")

	// ErrEmptyCart rejects a checkout against an empty cart.
	ErrEmptyCart = errors.New("cart is empty")

	// ErrInvalidDeliveryOption rejects a checkout with a delivery option
	// outside express/standard/scheduled.
	ErrInvalidDeliveryOption = errors.New("invalid delivery option")

	// ErrOrderNotCancellable rejects cancelling a delivered order.
	ErrOrderNotCancellable = errors.New("order can no longer be cancelled")
)
