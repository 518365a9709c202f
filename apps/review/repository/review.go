package repository

import (
	"context"
	"errors"

	"order-feedback/apps/review/model"
	"order-feedback/pkg/database"

	"gorm.io/gorm"
)

type ReviewRepository struct {
	db *gorm.DB
}

func NewReviewRepository(db *gorm.DB) *ReviewRepository {
	return &ReviewRepository{db: db}
}

func (r *ReviewRepository) Create(ctx context.Context, rv *model.Review) error {
	return database.Conn(ctx, r.db).Create(rv).Error
}

// GetByID returns nil, nil when the review does not exist.
func (r *ReviewRepository) GetByID(ctx context.Context, id uint) (*model.Review, error) {
	var rv model.Review
	err := database.Conn(ctx, r.db).First(&rv, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &rv, nil
}

func (r *ReviewRepository) Update(ctx context.Context, rv *model.Review) error {
	return database.Conn(ctx, r.db).Model(rv).Select("rating", "comment", "updated_at").Updates(rv).Error
}

// DeleteByOrder removes every review of the order and returns how many went.
func (r *ReviewRepository) DeleteByOrder(ctx context.Context, orderID uint) (int64, error) {
	res := database.Conn(ctx, r.db).Where("order_id = ?", orderID).Delete(&model.Review{})
	return res.RowsAffected, res.Error
}

func (r *ReviewRepository) ExistsForOrderProduct(ctx context.Context, orderID, productID uint) (bool, error) {
	var count int64
	err := database.Conn(ctx, r.db).Model(&model.Review{}).
		Where("order_id = ? AND product_id = ?", orderID, productID).
		Count(&count).Error
	return count > 0, err
}

func (r *ReviewRepository) ListByOrder(ctx context.Context, orderID uint) ([]model.Review, error) {
	return r.list(ctx, "order_id = ?", orderID)
}

func (r *ReviewRepository) ListByProduct(ctx context.Context, productID uint) ([]model.Review, error) {
	return r.list(ctx, "product_id = ?", productID)
}

func (r *ReviewRepository) ListByRating(ctx context.Context, rating int) ([]model.Review, error) {
	return r.list(ctx, "rating = ?", rating)
}

// AverageForProduct is 0 when the product has no reviews.
func (r *ReviewRepository) AverageForProduct(ctx context.Context, productID uint) (float64, error) {
	var avg float64
	err := database.Conn(ctx, r.db).Model(&model.Review{}).
		Select("COALESCE(AVG(rating), 0)").
		Where("product_id = ?", productID).
		Scan(&avg).Error
	return avg, err
}

func (r *ReviewRepository) list(ctx context.Context, query string, arg any) ([]model.Review, error) {
	reviews := make([]model.Review, 0)
	err := database.Conn(ctx, r.db).Where(query, arg).Order("created_at DESC").Order("id DESC").Find(&reviews).Error
	return reviews, err
}
