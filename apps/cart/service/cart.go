package service

import (
	"context"
	"fmt"
	"math"

	"order-feedback/apps/cart/model"
	productmodel "order-feedback/apps/product/model"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

var tracer = otel.Tracer("cart-service")

// Store is the cart backend. Get never returns nil for a missing cart; it
// returns an empty one.
type Store interface {
	Get(ctx context.Context, userID uint) (*model.Cart, error)
	SetItem(ctx context.Context, userID uint, item model.CartItem) error
	RemoveItem(ctx context.Context, userID, productID uint) error
	Clear(ctx context.Context, userID uint) error
}

type ProductReader interface {
	GetByID(ctx context.Context, id uint) (*productmodel.Product, error)
}

// CartService manages the per-user cart. Stock checks here are advisory;
// the order engine checks again when the order is placed.
type CartService struct {
	store    Store
	products ProductReader
	log      *zap.Logger
}

func NewCartService(store Store, products ProductReader, log *zap.Logger) *CartService {
	return &CartService{store: store, products: products, log: log}
}

func (s *CartService) GetCart(ctx context.Context, userID uint) (*model.Cart, error) {
	cart, err := s.store.Get(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("load cart of user %d: %w", userID, err)
	}
	return cart, nil
}

// AddToCart merges quantity into an existing line or appends a new one priced
// at the current catalog price.
func (s *CartService) AddToCart(ctx context.Context, userID, productID uint, quantity int) (*model.Cart, error) {
	ctx, span := tracer.Start(ctx, "CartService.AddToCart")
	defer span.End()
	span.SetAttributes(attribute.Int("product.id", int(productID)), attribute.Int("quantity", quantity))

	if quantity <= 0 {
		return nil, ErrInvalidQuantity
	}
	product, err := s.product(ctx, productID)
	if err != nil {
		return nil, err
	}
	cart, err := s.GetCart(ctx, userID)
	if err != nil {
		return nil, err
	}

	line := model.CartItem{ProductID: productID, Quantity: quantity, Price: product.Price}
	if existing := cart.Item(productID); existing != nil {
		if existing.Quantity > math.MaxInt-quantity {
			return nil, ErrQuantityTooLarge
		}
		line.Quantity += existing.Quantity
		line.Price = existing.Price
	}
	if product.Stock < line.Quantity {
		return nil, fmt.Errorf("%w: %s has %d in stock", ErrInsufficientStock, product.Name, product.Stock)
	}

	if err := s.store.SetItem(ctx, userID, line); err != nil {
		return nil, fmt.Errorf("save cart item: %w", err)
	}
	return s.GetCart(ctx, userID)
}

func (s *CartService) UpdateCartItemQuantity(ctx context.Context, userID, productID uint, quantity int) (*model.Cart, error) {
	if quantity <= 0 {
		return nil, ErrInvalidQuantity
	}
	cart, err := s.GetCart(ctx, userID)
	if err != nil {
		return nil, err
	}
	existing := cart.Item(productID)
	if existing == nil {
		return nil, ErrItemNotInCart
	}
	product, err := s.product(ctx, productID)
	if err != nil {
		return nil, err
	}
	if product.Stock < quantity {
		return nil, fmt.Errorf("%w: %s has %d in stock", ErrInsufficientStock, product.Name, product.Stock)
	}

	line := *existing
	line.Quantity = quantity
	if err := s.store.SetItem(ctx, userID, line); err != nil {
		return nil, fmt.Errorf("save cart item: %w", err)
	}
	return s.GetCart(ctx, userID)
}

// RemoveFromCart is a no-op when the product is not in the cart.
func (s *CartService) RemoveFromCart(ctx context.Context, userID, productID uint) error {
	if err := s.store.RemoveItem(ctx, userID, productID); err != nil {
		return fmt.Errorf("remove cart item: %w", err)
	}
	return nil
}

func (s *CartService) ClearCart(ctx context.Context, userID uint) error {
	if err := s.store.Clear(ctx, userID); err != nil {
		return fmt.Errorf("clear cart of user %d: %w", userID, err)
	}
	return nil
}

func (s *CartService) product(ctx context.Context, id uint) (*productmodel.Product, error) {
	p, err := s.products.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get product %d: %w", id, err)
	}
	if p == nil {
		return nil, ErrProductNotFound
	}
	return p, nil
}
