package model

import "time"

// Review is unique per (order, product).
type Review struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"index;not null" json:"userId"`
	OrderID   uint      `gorm:"not null;uniqueIndex:uni_reviews_order_product" json:"orderId"`
	ProductID uint      `gorm:"not null;index;uniqueIndex:uni_reviews_order_product" json:"productId"`
	Rating    int       `gorm:"type:tinyint;not null;index" json:"rating"`
	Comment   string    `gorm:"type:text" json:"comment"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (Review) TableName() string { return "reviews" }
