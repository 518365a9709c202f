package service

import (
	"context"
	"time"

	"order-feedback/apps/order/model"

	"github.com/shopspring/decimal"
)

// OrderStatusChanged is delivered to every StatusListener inside the
// transaction that changed the status.
type OrderStatusChanged struct {
	OrderID    uint
	UserID     uint
	OldStatus  model.OrderStatus
	NewStatus  model.OrderStatus
	OccurredAt time.Time
}

// StatusListener reacts to a status change. Returning an error rolls the
// status change back.
type StatusListener interface {
	OnOrderStatusChanged(ctx context.Context, evt OrderStatusChanged) error
}

// StatusListenerFunc adapts a function to StatusListener.
type StatusListenerFunc func(ctx context.Context, evt OrderStatusChanged) error

func (f StatusListenerFunc) OnOrderStatusChanged(ctx context.Context, evt OrderStatusChanged) error {
	return f(ctx, evt)
}

// EventPublisher ships integration events out of process after commit.
type EventPublisher interface {
	Publish(ctx context.Context, routingKey string, payload any) error
}

const (
	RoutingOrderCreated       = "order.created"
	RoutingOrderStatusChanged = "order.status_changed"
)

type orderCreatedMessage struct {
	OrderID     uint            `json:"orderId"`
	OrderNumber string          `json:"orderNumber"`
	UserID      uint            `json:"userId"`
	TotalAmount decimal.Decimal `json:"totalAmount"`
	ItemCount   int             `json:"itemCount"`
	CreatedAt   time.Time       `json:"createdAt"`
}

type statusChangedMessage struct {
	OrderID    uint              `json:"orderId"`
	UserID     uint              `json:"userId"`
	OldStatus  model.OrderStatus `json:"oldStatus"`
	NewStatus  model.OrderStatus `json:"newStatus"`
	OccurredAt time.Time         `json:"occurredAt"`
}
