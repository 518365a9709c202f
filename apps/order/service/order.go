package service

import (
	"context"
	"fmt"
	"math"
	"sort"
	"time"

	cartmodel "order-feedback/apps/cart/model"
	"order-feedback/apps/order/model"
	productmodel "order-feedback/apps/product/model"
	usermodel "order-feedback/apps/user/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

var tracer = otel.Tracer("order-service")

type Transactor interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context) error) error
}

type OrderRepository interface {
	Create(ctx context.Context, o *model.Order) error
	GetWithDetails(ctx context.Context, id uint) (*model.Order, error)
	ListByUser(ctx context.Context, userID uint) ([]model.Order, error)
	UpdateStatus(ctx context.Context, id uint, status model.OrderStatus) (bool, error)
}

type ProductRepository interface {
	GetByID(ctx context.Context, id uint) (*productmodel.Product, error)
	DecreaseStock(ctx context.Context, id uint, qty int) (bool, error)
}

type UserRepository interface {
	GetByID(ctx context.Context, id uint) (*usermodel.User, error)
}

// CartSource is the cart Checkout converts into an order.
type CartSource interface {
	GetCart(ctx context.Context, userID uint) (*cartmodel.Cart, error)
	ClearCart(ctx context.Context, userID uint) error
}

// ItemRequest is one requested order line.
type ItemRequest struct {
	ProductID uint `json:"productId"`
	Quantity  int  `json:"quantity"`
}

type OrderService struct {
	tx        Transactor
	orders    OrderRepository
	products  ProductRepository
	users     UserRepository
	carts     CartSource
	listeners []StatusListener
	events    EventPublisher
	log       *zap.Logger
	now       func() time.Time
}

type Option func(*OrderService)

// WithStatusListener registers l for every status change.
func WithStatusListener(l StatusListener) Option {
	return func(s *OrderService) { s.listeners = append(s.listeners, l) }
}

// WithEventPublisher enables the order.* integration events.
func WithEventPublisher(p EventPublisher) Option {
	return func(s *OrderService) { s.events = p }
}

// WithCart enables Checkout.
func WithCart(c CartSource) Option {
	return func(s *OrderService) { s.carts = c }
}

func WithClock(now func() time.Time) Option {
	return func(s *OrderService) { s.now = now }
}

func NewOrderService(tx Transactor, orders OrderRepository, products ProductRepository, users UserRepository, log *zap.Logger, opts ...Option) *OrderService {
	s := &OrderService{
		tx:       tx,
		orders:   orders,
		products: products,
		users:    users,
		log:      log,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreateOrder places an order for userID. Stock check, stock decrement and
// the insert share one transaction.
func (s *OrderService) CreateOrder(ctx context.Context, userID uint, items []ItemRequest) (*model.Order, error) {
	ctx, span := tracer.Start(ctx, "OrderService.CreateOrder")
	defer span.End()
	span.SetAttributes(attribute.Int("user.id", int(userID)), attribute.Int("order.lines", len(items)))

	lines, err := normalizeItems(items)
	if err != nil {
		return nil, err
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("get user %d: %w", userID, err)
	}
	if user == nil {
		return nil, ErrUserNotFound
	}

	var order *model.Order
	err = s.tx.WithinTx(ctx, func(ctx context.Context) error {
		orderItems := make([]model.OrderItem, 0, len(lines))
		for _, line := range lines {
			p, err := s.products.GetByID(ctx, line.ProductID)
			if err != nil {
				return fmt.Errorf("get product %d: %w", line.ProductID, err)
			}
			if p == nil {
				return fmt.Errorf("%w: id %d", ErrProductNotFound, line.ProductID)
			}
			if p.Stock < line.Quantity {
				return insufficient(p.Name, p.Stock, line.Quantity)
			}
			orderItems = append(orderItems, model.OrderItem{
				ProductID: p.ID,
				Quantity:  line.Quantity,
				UnitPrice: p.Price,
			})

			// the guarded update is what actually holds under concurrency
			ok, err := s.products.DecreaseStock(ctx, p.ID, line.Quantity)
			if err != nil {
				return fmt.Errorf("decrease stock of product %d: %w", p.ID, err)
			}
			if !ok {
				return insufficient(p.Name, p.Stock, line.Quantity)
			}
		}

		now := s.now().UTC()
		order = &model.Order{
			OrderNumber: newOrderNumber(now),
			UserID:      userID,
			Status:      model.StatusPending,
			TotalAmount: orderTotal(orderItems),
			Items:       orderItems,
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		if err := s.orders.Create(ctx, order); err != nil {
			return fmt.Errorf("insert order: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	span.SetAttributes(attribute.String("order.number", order.OrderNumber))
	s.log.Info("order created",
		zap.Uint("order_id", order.ID),
		zap.String("order_number", order.OrderNumber),
		zap.Uint("user_id", userID),
		zap.String("total", order.TotalAmount.StringFixed(2)),
	)
	s.publish(ctx, RoutingOrderCreated, orderCreatedMessage{
		OrderID:     order.ID,
		OrderNumber: order.OrderNumber,
		UserID:      order.UserID,
		TotalAmount: order.TotalAmount,
		ItemCount:   len(order.Items),
		CreatedAt:   order.CreatedAt,
	})
	return order, nil
}

// Checkout turns the user's cart into an order and empties the cart once the
// order is committed.
func (s *OrderService) Checkout(ctx context.Context, userID uint) (*model.Order, error) {
	if s.carts == nil {
		return nil, fmt.Errorf("checkout: no cart configured")
	}
	cart, err := s.carts.GetCart(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(cart.Items) == 0 {
		return nil, ErrEmptyCart
	}

	items := make([]ItemRequest, 0, len(cart.Items))
	for _, it := range cart.Items {
		items = append(items, ItemRequest{ProductID: it.ProductID, Quantity: it.Quantity})
	}
	order, err := s.CreateOrder(ctx, userID, items)
	if err != nil {
		return nil, err
	}

	if err := s.carts.ClearCart(ctx, userID); err != nil {
		s.log.Warn("cart not cleared after checkout",
			zap.Uint("user_id", userID), zap.Uint("order_id", order.ID), zap.Error(err))
	}
	return order, nil
}

func (s *OrderService) GetOrderByID(ctx context.Context, id uint) (*model.Order, error) {
	o, err := s.orders.GetWithDetails(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get order %d: %w", id, err)
	}
	if o == nil {
		return nil, ErrOrderNotFound
	}
	return o, nil
}

// GetOrderForActor returns the order if actor owns it or is an admin.
func (s *OrderService) GetOrderForActor(ctx context.Context, actor usermodel.Actor, id uint) (*model.Order, error) {
	o, err := s.GetOrderByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if o.UserID != actor.UserID && !actor.IsAdmin() {
		return nil, ErrNotOrderOwner
	}
	return o, nil
}

func (s *OrderService) GetUserOrders(ctx context.Context, userID uint) ([]model.Order, error) {
	orders, err := s.orders.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list orders of user %d: %w", userID, err)
	}
	return orders, nil
}

// UpdateOrderStatus persists the new status and runs every status listener in
// the same transaction. Cancelled orders keep their status.
func (s *OrderService) UpdateOrderStatus(ctx context.Context, id uint, status model.OrderStatus) (*model.Order, error) {
	ctx, span := tracer.Start(ctx, "OrderService.UpdateOrderStatus")
	defer span.End()
	span.SetAttributes(attribute.Int("order.id", int(id)), attribute.String("order.status", string(status)))

	if !status.Valid() {
		return nil, ErrInvalidStatus
	}

	var evt OrderStatusChanged
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		o, err := s.GetOrderByID(ctx, id)
		if err != nil {
			return err
		}
		if o.Status == model.StatusCancelled && status != model.StatusCancelled {
			return ErrOrderCancelled
		}
		if _, err := s.orders.UpdateStatus(ctx, id, status); err != nil {
			return fmt.Errorf("update status of order %d: %w", id, err)
		}

		evt = OrderStatusChanged{
			OrderID:    o.ID,
			UserID:     o.UserID,
			OldStatus:  o.Status,
			NewStatus:  status,
			OccurredAt: s.now().UTC(),
		}
		for _, l := range s.listeners {
			if err := l.OnOrderStatusChanged(ctx, evt); err != nil {
				return fmt.Errorf("status listener: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("order status changed",
		zap.Uint("order_id", id),
		zap.String("from", string(evt.OldStatus)),
		zap.String("to", string(evt.NewStatus)),
	)
	s.publish(ctx, RoutingOrderStatusChanged, statusChangedMessage(evt))
	return s.GetOrderByID(ctx, id)
}

// publish is best effort: the order is already committed.
func (s *OrderService) publish(ctx context.Context, routingKey string, payload any) {
	if s.events == nil {
		return
	}
	if err := s.events.Publish(ctx, routingKey, payload); err != nil {
		s.log.Warn("publish integration event failed", zap.String("routing_key", routingKey), zap.Error(err))
	}
}

// normalizeItems validates the request and merges repeated products. Lines
// come back sorted by product id so concurrent orders lock rows in the same
// order.
func normalizeItems(items []ItemRequest) ([]ItemRequest, error) {
	if len(items) == 0 {
		return nil, ErrNoItems
	}
	merged := make(map[uint]int, len(items))
	for _, it := range items {
		if it.Quantity <= 0 {
			return nil, ErrInvalidQuantity
		}
		if merged[it.ProductID] > math.MaxInt-it.Quantity {
			return nil, ErrQuantityTooLarge
		}
		merged[it.ProductID] += it.Quantity
	}
	lines := make([]ItemRequest, 0, len(merged))
	for id, q := range merged {
		lines = append(lines, ItemRequest{ProductID: id, Quantity: q})
	}
	sort.Slice(lines, func(i, j int) bool { return lines[i].ProductID < lines[j].ProductID })
	return lines, nil
}

func orderTotal(items []model.OrderItem) decimal.Decimal {
	total := decimal.Zero
	for _, it := range items {
		total = total.Add(it.LineTotal())
	}
	return total
}

// newOrderNumber formats ORD-<yyyyMMdd>-<8 hex>.
func newOrderNumber(now time.Time) string {
	return fmt.Sprintf("ORD-%s-%s", now.UTC().Format("20060102"), uuid.NewString()[:8])
}

func insufficient(name string, available, requested int) error {
	return fmt.Errorf("%w for %q: available %d, requested %d", ErrInsufficientStock, name, available, requested)
}
