package repository

import (
	"context"
	"errors"
	"fmt"

	"order-feedback/apps/product/model"
	"order-feedback/pkg/database"

	"gorm.io/gorm"
)

type ProductRepository struct {
	db *gorm.DB
}

func NewProductRepository(db *gorm.DB) *ProductRepository {
	return &ProductRepository{db: db}
}

func (r *ProductRepository) List(ctx context.Context) ([]model.Product, error) {
	var products []model.Product
	err := database.Conn(ctx, r.db).Order("name ASC").Order("id ASC").Find(&products).Error
	return products, err
}

// GetByID returns nil, nil when the product does not exist.
func (r *ProductRepository) GetByID(ctx context.Context, id uint) (*model.Product, error) {
	var p model.Product
	err := database.Conn(ctx, r.db).First(&p, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *ProductRepository) Create(ctx context.Context, p *model.Product) error {
	return database.Conn(ctx, r.db).Create(p).Error
}

// Update writes the editable columns; stock is included since admins set it
// directly from the catalog form.
func (r *ProductRepository) Update(ctx context.Context, p *model.Product) error {
	return database.Conn(ctx, r.db).Model(p).Select("name", "description", "price", "stock", "image_path").Updates(p).Error
}

// Delete reports whether a row was removed.
func (r *ProductRepository) Delete(ctx context.Context, id uint) (bool, error) {
	res := database.Conn(ctx, r.db).Delete(&model.Product{}, id)
	return res.RowsAffected > 0, res.Error
}

// DecreaseStock subtracts qty only if enough stock remains. It reports false
// when the guard rejected the update (or the product is gone).
func (r *ProductRepository) DecreaseStock(ctx context.Context, id uint, qty int) (bool, error) {
	if qty <= 0 {
		return false, fmt.Errorf("decrease stock of product %d by %d: quantity must be positive", id, qty)
	}
	res := database.Conn(ctx, r.db).Model(&model.Product{}).
		Where("id = ? AND stock >= ?", id, qty).
		UpdateColumn("stock", gorm.Expr("stock - ?", qty))
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

// AdjustStock adds delta (which may be negative) without letting stock go below zero.
func (r *ProductRepository) AdjustStock(ctx context.Context, id uint, delta int) (bool, error) {
	if delta < 0 {
		return r.DecreaseStock(ctx, id, -delta)
	}
	res := database.Conn(ctx, r.db).Model(&model.Product{}).
		Where("id = ?", id).
		UpdateColumn("stock", gorm.Expr("stock + ?", delta))
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}
