package handler

import (
	productservice "order-feedback/apps/product/service"
	"order-feedback/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

type productRequest struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Stock       int             `json:"stock"`
	ImagePath   string          `json:"imagePath"`
}

func (r productRequest) input() productservice.Input {
	return productservice.Input{
		Name:        r.Name,
		Description: r.Description,
		Price:       r.Price,
		Stock:       r.Stock,
		ImagePath:   r.ImagePath,
	}
}

type stockRequest struct {
	Delta int `json:"delta"`
}

type stockResponse struct {
	ProductID uint `json:"productId"`
	Stock     int  `json:"stock"`
	InStock   bool `json:"inStock"`
}

func (h *Handler) ListProducts(c *gin.Context) {
	products, err := h.products.ListProducts(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, products)
}

func (h *Handler) GetProduct(c *gin.Context) {
	id, ok := uintParam(c, "id")
	if !ok {
		return
	}
	p, err := h.products.GetProduct(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, p)
}

func (h *Handler) CreateProduct(c *gin.Context) {
	var req productRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, err)
		return
	}
	p, err := h.products.CreateProduct(c.Request.Context(), req.input())
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Created(c, p)
}

func (h *Handler) UpdateProduct(c *gin.Context) {
	id, ok := uintParam(c, "id")
	if !ok {
		return
	}
	var req productRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, err)
		return
	}
	p, err := h.products.UpdateProduct(c.Request.Context(), id, req.input())
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, p)
}

func (h *Handler) DeleteProduct(c *gin.Context) {
	id, ok := uintParam(c, "id")
	if !ok {
		return
	}
	if err := h.products.DeleteProduct(c.Request.Context(), id); err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, nil)
}

func (h *Handler) AdjustStock(c *gin.Context) {
	id, ok := uintParam(c, "id")
	if !ok {
		return
	}
	var req stockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, err)
		return
	}
	p, err := h.products.AdjustStock(c.Request.Context(), id, req.Delta)
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, stockResponse{ProductID: p.ID, Stock: p.Stock, InStock: p.Stock > 0})
}
