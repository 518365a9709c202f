package repository

import (
	"context"
	"errors"
	"time"

	"order-feedback/apps/cart/model"
	"order-feedback/pkg/database"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormStore keeps carts in the carts and cart_items tables.
type GormStore struct {
	db *gorm.DB
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

// Get returns the user's cart, creating an empty one on first access.
func (s *GormStore) Get(ctx context.Context, userID uint) (*model.Cart, error) {
	cart, err := s.ensure(ctx, userID)
	if err != nil {
		return nil, err
	}
	if err := database.Conn(ctx, s.db).Where("cart_id = ?", cart.ID).Order("id ASC").Find(&cart.Items).Error; err != nil {
		return nil, err
	}
	return cart, nil
}

// SetItem inserts the line or overwrites quantity and price of an existing one.
func (s *GormStore) SetItem(ctx context.Context, userID uint, item model.CartItem) error {
	cart, err := s.ensure(ctx, userID)
	if err != nil {
		return err
	}
	item.ID = 0
	item.CartID = cart.ID
	err = database.Conn(ctx, s.db).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "cart_id"}, {Name: "product_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"quantity", "price"}),
	}).Create(&item).Error
	if err != nil {
		return err
	}
	return s.touch(ctx, cart.ID)
}

func (s *GormStore) RemoveItem(ctx context.Context, userID, productID uint) error {
	res := database.Conn(ctx, s.db).
		Where("product_id = ? AND cart_id IN (?)", productID, s.cartIDs(ctx, userID)).
		Delete(&model.CartItem{})
	return res.Error
}

func (s *GormStore) Clear(ctx context.Context, userID uint) error {
	return database.Conn(ctx, s.db).
		Where("cart_id IN (?)", s.cartIDs(ctx, userID)).
		Delete(&model.CartItem{}).Error
}

func (s *GormStore) cartIDs(ctx context.Context, userID uint) *gorm.DB {
	return database.Conn(ctx, s.db).Model(&model.Cart{}).Select("id").Where("user_id = ?", userID)
}

func (s *GormStore) touch(ctx context.Context, cartID uint) error {
	return database.Conn(ctx, s.db).Model(&model.Cart{}).Where("id = ?", cartID).
		UpdateColumn("updated_at", time.Now().UTC()).Error
}

func (s *GormStore) ensure(ctx context.Context, userID uint) (*model.Cart, error) {
	var cart model.Cart
	err := database.Conn(ctx, s.db).Where("user_id = ?", userID).First(&cart).Error
	if err == nil {
		return &cart, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	cart = model.Cart{UserID: userID}
	err = database.Conn(ctx, s.db).Create(&cart).Error
	if database.IsDuplicateKey(err) {
		// lost the race against a concurrent first access
		cart = model.Cart{}
		err = database.Conn(ctx, s.db).Where("user_id = ?", userID).First(&cart).Error
	}
	if err != nil {
		return nil, err
	}
	return &cart, nil
}
