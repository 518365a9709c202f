package model

import (
	"time"

	reviewmodel "order-feedback/apps/review/model"

	"github.com/shopspring/decimal"
)

type OrderStatus string

const (
	StatusPending    OrderStatus = "Pending"
	StatusProcessing OrderStatus = "Processing"
	StatusShipped    OrderStatus = "Shipped"
	StatusDelivered  OrderStatus = "Delivered"
	StatusCancelled  OrderStatus = "Cancelled"
)

func (s OrderStatus) Valid() bool {
	switch s {
	case StatusPending, StatusProcessing, StatusShipped, StatusDelivered, StatusCancelled:
		return true
	}
	return false
}

// Order 订单主表. Items and their prices never change after creation.
type Order struct {
	ID          uint                 `gorm:"primaryKey" json:"id"`
	OrderNumber string               `gorm:"type:varchar(64);uniqueIndex:uni_orders_number;not null" json:"orderNumber"`
	UserID      uint                 `gorm:"index;not null" json:"userId"`
	Status      OrderStatus          `gorm:"type:varchar(20);index;not null;default:'Pending'" json:"status"`
	TotalAmount decimal.Decimal      `gorm:"type:decimal(12,2);not null" json:"totalAmount"`
	Items       []OrderItem          `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE" json:"items"`
	Reviews     []reviewmodel.Review `gorm:"foreignKey:OrderID" json:"reviews,omitempty"`
	CreatedAt   time.Time            `json:"createdAt"`
	UpdatedAt   time.Time            `json:"updatedAt"`
}

func (Order) TableName() string { return "orders" }

// HasProduct reports whether productID is one of the order lines.
func (o *Order) HasProduct(productID uint) bool {
	for _, it := range o.Items {
		if it.ProductID == productID {
			return true
		}
	}
	return false
}

// OrderItem 订单明细表
type OrderItem struct {
	ID        uint            `gorm:"primaryKey" json:"id"`
	OrderID   uint            `gorm:"index;not null" json:"orderId"`
	ProductID uint            `gorm:"index;not null" json:"productId"`
	Quantity  int             `gorm:"not null" json:"quantity"`
	UnitPrice decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"unitPrice"`
	CreatedAt time.Time       `json:"createdAt"`
}

func (OrderItem) TableName() string { return "order_items" }

// LineTotal is UnitPrice × Quantity.
func (i OrderItem) LineTotal() decimal.Decimal {
	return i.UnitPrice.Mul(decimal.NewFromInt(int64(i.Quantity)))
}
