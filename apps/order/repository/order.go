package repository

import (
	"context"
	"errors"

	"order-feedback/apps/order/model"
	"order-feedback/pkg/database"

	"gorm.io/gorm"
)

type OrderRepository struct {
	db *gorm.DB
}

func NewOrderRepository(db *gorm.DB) *OrderRepository {
	return &OrderRepository{db: db}
}

// Create inserts the order together with its items.
func (r *OrderRepository) Create(ctx context.Context, o *model.Order) error {
	return database.Conn(ctx, r.db).Omit("Reviews").Create(o).Error
}

// GetWithDetails loads the order with items and reviews; nil, nil when absent.
func (r *OrderRepository) GetWithDetails(ctx context.Context, id uint) (*model.Order, error) {
	var o model.Order
	err := database.Conn(ctx, r.db).
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("id ASC") }).
		Preload("Reviews", func(db *gorm.DB) *gorm.DB { return db.Order("id ASC") }).
		First(&o, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &o, nil
}

// ListByUser returns the user's orders, newest first.
func (r *OrderRepository) ListByUser(ctx context.Context, userID uint) ([]model.Order, error) {
	var orders []model.Order
	err := database.Conn(ctx, r.db).
		Where("user_id = ?", userID).
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("id ASC") }).
		Preload("Reviews", func(db *gorm.DB) *gorm.DB { return db.Order("id ASC") }).
		Order("created_at DESC").Order("id DESC").
		Find(&orders).Error
	return orders, err
}

// UpdateStatus reports whether the order existed.
func (r *OrderRepository) UpdateStatus(ctx context.Context, id uint, status model.OrderStatus) (bool, error) {
	res := database.Conn(ctx, r.db).Model(&model.Order{}).Where("id = ?", id).Update("status", status)
	return res.RowsAffected > 0, res.Error
}

// HasDeliveredPurchase reports whether the user has a Delivered order
// containing productID.
func (r *OrderRepository) HasDeliveredPurchase(ctx context.Context, userID, productID uint) (bool, error) {
	var count int64
	err := database.Conn(ctx, r.db).Model(&model.OrderItem{}).
		Joins("JOIN orders ON orders.id = order_items.order_id").
		Where("orders.user_id = ? AND orders.status = ? AND order_items.product_id = ?",
			userID, model.StatusDelivered, productID).
		Count(&count).Error
	return count > 0, err
}
