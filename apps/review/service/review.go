package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	ordermodel "order-feedback/apps/order/model"
	orderservice "order-feedback/apps/order/service"
	"order-feedback/apps/review/model"
	usermodel "order-feedback/apps/user/model"
	"order-feedback/pkg/database"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

var tracer = otel.Tracer("review-service")

const (
	MinRating = 1
	MaxRating = 5
)

type ReviewRepository interface {
	Create(ctx context.Context, rv *model.Review) error
	GetByID(ctx context.Context, id uint) (*model.Review, error)
	Update(ctx context.Context, rv *model.Review) error
	DeleteByOrder(ctx context.Context, orderID uint) (int64, error)
	ExistsForOrderProduct(ctx context.Context, orderID, productID uint) (bool, error)
	ListByOrder(ctx context.Context, orderID uint) ([]model.Review, error)
	ListByProduct(ctx context.Context, productID uint) ([]model.Review, error)
	ListByRating(ctx context.Context, rating int) ([]model.Review, error)
	AverageForProduct(ctx context.Context, productID uint) (float64, error)
}

type OrderReader interface {
	GetWithDetails(ctx context.Context, id uint) (*ordermodel.Order, error)
	HasDeliveredPurchase(ctx context.Context, userID, productID uint) (bool, error)
}

// ReviewService accepts reviews only for delivered orders and drops them again
// when the order leaves Delivered.
type ReviewService struct {
	reviews ReviewRepository
	orders  OrderReader
	log     *zap.Logger
	now     func() time.Time
}

func NewReviewService(reviews ReviewRepository, orders OrderReader, log *zap.Logger) *ReviewService {
	return &ReviewService{reviews: reviews, orders: orders, log: log, now: time.Now}
}

func (s *ReviewService) CreateReview(ctx context.Context, userID, orderID, productID uint, rating int, comment string) (*model.Review, error) {
	ctx, span := tracer.Start(ctx, "ReviewService.CreateReview")
	defer span.End()
	span.SetAttributes(
		attribute.Int("order.id", int(orderID)),
		attribute.Int("product.id", int(productID)),
		attribute.Int("review.rating", rating),
	)

	order, err := s.orders.GetWithDetails(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("get order %d: %w", orderID, err)
	}
	if order == nil {
		return nil, ErrOrderNotFound
	}
	if order.UserID != userID {
		return nil, ErrNotOrderOwner
	}
	if order.Status != ordermodel.StatusDelivered {
		return nil, ErrOrderNotDelivered
	}
	if !order.HasProduct(productID) {
		return nil, ErrProductNotInOrder
	}
	exists, err := s.reviews.ExistsForOrderProduct(ctx, orderID, productID)
	if err != nil {
		return nil, fmt.Errorf("check existing review: %w", err)
	}
	if exists {
		return nil, ErrAlreadyReviewed
	}
	if err := validateRating(rating); err != nil {
		return nil, err
	}

	now := s.now().UTC()
	rv := &model.Review{
		UserID:    userID,
		OrderID:   orderID,
		ProductID: productID,
		Rating:    rating,
		Comment:   strings.TrimSpace(comment),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.reviews.Create(ctx, rv); err != nil {
		if database.IsDuplicateKey(err) {
			return nil, ErrAlreadyReviewed
		}
		return nil, fmt.Errorf("insert review: %w", err)
	}
	s.log.Info("review created",
		zap.Uint("review_id", rv.ID),
		zap.Uint("order_id", orderID),
		zap.Uint("product_id", productID),
		zap.Int("rating", rating),
	)
	return rv, nil
}

// UpdateReview overwrites rating and comment. Only the author or an admin may
// edit a review.
func (s *ReviewService) UpdateReview(ctx context.Context, actor usermodel.Actor, reviewID uint, rating int, comment string) (*model.Review, error) {
	rv, err := s.reviews.GetByID(ctx, reviewID)
	if err != nil {
		return nil, fmt.Errorf("get review %d: %w", reviewID, err)
	}
	if rv == nil {
		return nil, ErrReviewNotFound
	}
	if rv.UserID != actor.UserID && !actor.IsAdmin() {
		return nil, ErrNotReviewOwner
	}
	if err := validateRating(rating); err != nil {
		return nil, err
	}

	rv.Rating = rating
	rv.Comment = strings.TrimSpace(comment)
	rv.UpdatedAt = s.now().UTC()
	if err := s.reviews.Update(ctx, rv); err != nil {
		return nil, fmt.Errorf("update review %d: %w", reviewID, err)
	}
	return rv, nil
}

// HandleOrderStatusChange deletes every review of the order unless the new
// status is Delivered, in which case the current reviews are returned.
func (s *ReviewService) HandleOrderStatusChange(ctx context.Context, orderID uint, status ordermodel.OrderStatus) ([]model.Review, error) {
	if status != ordermodel.StatusDelivered {
		n, err := s.reviews.DeleteByOrder(ctx, orderID)
		if err != nil {
			return nil, fmt.Errorf("delete reviews of order %d: %w", orderID, err)
		}
		if n > 0 {
			s.log.Info("reviews revoked",
				zap.Uint("order_id", orderID),
				zap.String("status", string(status)),
				zap.Int64("count", n),
			)
		}
		return nil, nil
	}
	return s.GetOrderReviews(ctx, orderID)
}

// OnOrderStatusChanged hooks the service into the order engine.
func (s *ReviewService) OnOrderStatusChanged(ctx context.Context, evt orderservice.OrderStatusChanged) error {
	_, err := s.HandleOrderStatusChange(ctx, evt.OrderID, evt.NewStatus)
	return err
}

func (s *ReviewService) HasUserPurchasedProduct(ctx context.Context, userID, productID uint) (bool, error) {
	ok, err := s.orders.HasDeliveredPurchase(ctx, userID, productID)
	if err != nil {
		return false, fmt.Errorf("check purchase: %w", err)
	}
	return ok, nil
}

// GetProductAverageRating is 0 for a product without reviews.
func (s *ReviewService) GetProductAverageRating(ctx context.Context, productID uint) (float64, error) {
	if productID == 0 {
		return 0, ErrInvalidProductID
	}
	avg, err := s.reviews.AverageForProduct(ctx, productID)
	if err != nil {
		return 0, fmt.Errorf("average rating of product %d: %w", productID, err)
	}
	return avg, nil
}

func (s *ReviewService) GetFilteredReviews(ctx context.Context, rating int) ([]model.Review, error) {
	if err := validateRating(rating); err != nil {
		return nil, err
	}
	reviews, err := s.reviews.ListByRating(ctx, rating)
	if err != nil {
		return nil, fmt.Errorf("list reviews with rating %d: %w", rating, err)
	}
	return reviews, nil
}

func (s *ReviewService) GetOrderReviews(ctx context.Context, orderID uint) ([]model.Review, error) {
	reviews, err := s.reviews.ListByOrder(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("list reviews of order %d: %w", orderID, err)
	}
	return reviews, nil
}

func (s *ReviewService) GetProductReviews(ctx context.Context, productID uint) ([]model.Review, error) {
	if productID == 0 {
		return nil, ErrInvalidProductID
	}
	reviews, err := s.reviews.ListByProduct(ctx, productID)
	if err != nil {
		return nil, fmt.Errorf("list reviews of product %d: %w", productID, err)
	}
	return reviews, nil
}

func validateRating(rating int) error {
	if rating < MinRating || rating > MaxRating {
		return ErrInvalidRating
	}
	return nil
}

var _ orderservice.StatusListener = (*ReviewService)(nil)
