package service

import (
	"fmt"

	"order-feedback/pkg/apperr"
)

var (
	ErrProductNotFound    = fmt.Errorf("product %w", apperr.ErrNotFound)
	ErrNameRequired       = apperr.Validation("product name is required")
	ErrInvalidPrice       = apperr.Validation("price must be greater than zero")
	ErrNegativeStock      = apperr.Validation("stock cannot be negative")
	ErrZeroStockDelta     = apperr.Validation("stock delta must not be zero")
	ErrStockDeltaTooLarge = apperr.Validation("stock delta is out of range")
	ErrInvalidQuantity    = apperr.Validation("quantity must be greater than zero")
	ErrInsufficientStock  = fmt.Errorf("product %w", apperr.ErrInsufficientStock)
)
