package handler

import (
	"order-feedback/apps/cart/model"
	"order-feedback/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

type addToCartRequest struct {
	ProductID uint `json:"productId" binding:"required"`
	Quantity  int  `json:"quantity"`
}

type quantityRequest struct {
	Quantity int `json:"quantity"`
}

type cartResponse struct {
	*model.Cart
	Total decimal.Decimal `json:"total"`
}

func newCartResponse(c *model.Cart) cartResponse {
	return cartResponse{Cart: c, Total: c.Total()}
}

func (h *Handler) GetCart(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	cart, err := h.carts.GetCart(c.Request.Context(), a.UserID)
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, newCartResponse(cart))
}

func (h *Handler) AddToCart(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	var req addToCartRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, err)
		return
	}
	cart, err := h.carts.AddToCart(c.Request.Context(), a.UserID, req.ProductID, req.Quantity)
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, newCartResponse(cart))
}

func (h *Handler) UpdateCartItemQuantity(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	productID, ok := uintParam(c, "productId")
	if !ok {
		return
	}
	var req quantityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, err)
		return
	}
	cart, err := h.carts.UpdateCartItemQuantity(c.Request.Context(), a.UserID, productID, req.Quantity)
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, newCartResponse(cart))
}

func (h *Handler) RemoveFromCart(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	productID, ok := uintParam(c, "productId")
	if !ok {
		return
	}
	if err := h.carts.RemoveFromCart(c.Request.Context(), a.UserID, productID); err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, nil)
}

func (h *Handler) ClearCart(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	if err := h.carts.ClearCart(c.Request.Context(), a.UserID); err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, nil)
}
