package service

import (
	"fmt"

	"order-feedback/pkg/apperr"
)

var (
	ErrOrderNotFound     = fmt.Errorf("order %w", apperr.ErrNotFound)
	ErrUserNotFound      = fmt.Errorf("user %w", apperr.ErrNotFound)
	ErrProductNotFound   = fmt.Errorf("product %w", apperr.ErrNotFound)
	ErrNoItems           = apperr.Validation("order must contain at least one item")
	ErrInvalidQuantity   = apperr.Validation("quantity must be greater than zero")
	ErrQuantityTooLarge  = apperr.Validation("quantity is too large")
	ErrInvalidStatus     = apperr.Validation("unknown order status")
	ErrOrderCancelled    = apperr.Validation("cancelled orders cannot change status")
	ErrEmptyCart         = apperr.Validation("cart is empty")
	ErrNotOrderOwner     = apperr.New(apperr.ErrForbidden, "order belongs to another user")
	ErrInsufficientStock = apperr.ErrInsufficientStock
)
