package service

import (
	"context"
	"fmt"
	"math"
	"strings"

	"order-feedback/apps/product/model"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

var tracer = otel.Tracer("product-service")

type Repository interface {
	List(ctx context.Context) ([]model.Product, error)
	GetByID(ctx context.Context, id uint) (*model.Product, error)
	Create(ctx context.Context, p *model.Product) error
	Update(ctx context.Context, p *model.Product) error
	Delete(ctx context.Context, id uint) (bool, error)
	AdjustStock(ctx context.Context, id uint, delta int) (bool, error)
}

// maxStockDelta bounds a single adjustment so stock arithmetic stays in range.
const maxStockDelta = math.MaxInt32

type ProductService struct {
	repo Repository
	log  *zap.Logger
}

func NewProductService(repo Repository, log *zap.Logger) *ProductService {
	return &ProductService{repo: repo, log: log}
}

// Input carries the editable fields of a product.
type Input struct {
	Name        string
	Description string
	Price       decimal.Decimal
	Stock       int
	ImagePath   string
}

func (in Input) validate() error {
	if strings.TrimSpace(in.Name) == "" {
		return ErrNameRequired
	}
	if !in.Price.IsPositive() {
		return ErrInvalidPrice
	}
	if in.Stock < 0 {
		return ErrNegativeStock
	}
	return nil
}

func (s *ProductService) ListProducts(ctx context.Context) ([]model.Product, error) {
	products, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	return products, nil
}

func (s *ProductService) GetProduct(ctx context.Context, id uint) (*model.Product, error) {
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get product %d: %w", id, err)
	}
	if p == nil {
		return nil, ErrProductNotFound
	}
	return p, nil
}

func (s *ProductService) CreateProduct(ctx context.Context, in Input) (*model.Product, error) {
	ctx, span := tracer.Start(ctx, "ProductService.CreateProduct")
	defer span.End()

	if err := in.validate(); err != nil {
		return nil, err
	}
	p := &model.Product{
		Name:        strings.TrimSpace(in.Name),
		Description: in.Description,
		Price:       in.Price,
		Stock:       in.Stock,
		ImagePath:   in.ImagePath,
	}
	if err := s.repo.Create(ctx, p); err != nil {
		return nil, fmt.Errorf("create product: %w", err)
	}
	span.SetAttributes(attribute.Int("product.id", int(p.ID)))
	s.log.Info("product created", zap.Uint("product_id", p.ID), zap.String("name", p.Name))
	return p, nil
}

func (s *ProductService) UpdateProduct(ctx context.Context, id uint, in Input) (*model.Product, error) {
	ctx, span := tracer.Start(ctx, "ProductService.UpdateProduct")
	defer span.End()
	span.SetAttributes(attribute.Int("product.id", int(id)))

	if err := in.validate(); err != nil {
		return nil, err
	}
	p, err := s.GetProduct(ctx, id)
	if err != nil {
		return nil, err
	}
	p.Name = strings.TrimSpace(in.Name)
	p.Description = in.Description
	p.Price = in.Price
	p.Stock = in.Stock
	p.ImagePath = in.ImagePath
	if err := s.repo.Update(ctx, p); err != nil {
		return nil, fmt.Errorf("update product %d: %w", id, err)
	}
	return p, nil
}

func (s *ProductService) DeleteProduct(ctx context.Context, id uint) error {
	deleted, err := s.repo.Delete(ctx, id)
	if err != nil {
		return fmt.Errorf("delete product %d: %w", id, err)
	}
	if !deleted {
		return ErrProductNotFound
	}
	s.log.Info("product deleted", zap.Uint("product_id", id))
	return nil
}

// AdjustStock adds delta to the stock. A negative delta larger than the
// current stock fails with ErrInsufficientStock and changes nothing.
func (s *ProductService) AdjustStock(ctx context.Context, id uint, delta int) (*model.Product, error) {
	ctx, span := tracer.Start(ctx, "ProductService.AdjustStock")
	defer span.End()
	span.SetAttributes(attribute.Int("product.id", int(id)), attribute.Int("stock.delta", delta))

	if delta == 0 {
		return nil, ErrZeroStockDelta
	}
	if delta > maxStockDelta || delta < -maxStockDelta {
		return nil, ErrStockDeltaTooLarge
	}
	if _, err := s.GetProduct(ctx, id); err != nil {
		return nil, err
	}
	ok, err := s.repo.AdjustStock(ctx, id, delta)
	if err != nil {
		return nil, fmt.Errorf("adjust stock of product %d: %w", id, err)
	}
	if !ok {
		return nil, fmt.Errorf("%w: cannot remove %d units from product %d", ErrInsufficientStock, -delta, id)
	}
	return s.GetProduct(ctx, id)
}

// IsInStock reports whether at least qty units are available.
func (s *ProductService) IsInStock(ctx context.Context, id uint, qty int) (bool, error) {
	if qty <= 0 {
		return false, ErrInvalidQuantity
	}
	p, err := s.GetProduct(ctx, id)
	if err != nil {
		return false, err
	}
	return p.Stock >= qty, nil
}
