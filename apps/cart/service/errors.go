package service

import (
	"fmt"

	"order-feedback/pkg/apperr"
)

var (
	ErrProductNotFound   = fmt.Errorf("product %w", apperr.ErrNotFound)
	ErrItemNotInCart     = apperr.New(apperr.ErrNotFound, "product is not in the cart")
	ErrInvalidQuantity   = apperr.Validation("quantity must be greater than zero")
	ErrQuantityTooLarge  = apperr.Validation("quantity is too large")
	ErrInsufficientStock = fmt.Errorf("product %w", apperr.ErrInsufficientStock)
)
