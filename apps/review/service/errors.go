package service

import (
	"fmt"

	"order-feedback/pkg/apperr"
)

var (
	ErrOrderNotFound     = fmt.Errorf("order %w", apperr.ErrNotFound)
	ErrReviewNotFound    = fmt.Errorf("review %w", apperr.ErrNotFound)
	ErrNotOrderOwner     = apperr.New(apperr.ErrForbidden, "you can only review your own orders")
	ErrNotReviewOwner    = apperr.New(apperr.ErrForbidden, "you can only edit your own reviews")
	ErrOrderNotDelivered = apperr.Validation("order has not been delivered")
	ErrProductNotInOrder = apperr.Validation("product not part of order")
	ErrAlreadyReviewed   = apperr.New(apperr.ErrConflict, "product already reviewed for this order")
	ErrInvalidRating     = apperr.Validation("rating must be between 1 and 5")
	ErrInvalidProductID  = apperr.Validation("product id must be positive")
)
