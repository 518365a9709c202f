package handler

import (
	"order-feedback/apps/order/model"
	orderservice "order-feedback/apps/order/service"
	"order-feedback/pkg/response"

	"github.com/gin-gonic/gin"
)

type createOrderRequest struct {
	Items []orderservice.ItemRequest `json:"items"`
}

type statusRequest struct {
	Status string `json:"status" binding:"required"`
}

func (h *Handler) CreateOrder(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	var req createOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, err)
		return
	}
	order, err := h.orders.CreateOrder(c.Request.Context(), a.UserID, req.Items)
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Created(c, order)
}

func (h *Handler) Checkout(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	order, err := h.orders.Checkout(c.Request.Context(), a.UserID)
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Created(c, order)
}

func (h *Handler) GetUserOrders(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	orders, err := h.orders.GetUserOrders(c.Request.Context(), a.UserID)
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, orders)
}

func (h *Handler) GetOrder(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	id, ok := uintParam(c, "id")
	if !ok {
		return
	}
	order, err := h.orders.GetOrderForActor(c.Request.Context(), a, id)
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, order)
}

func (h *Handler) UpdateOrderStatus(c *gin.Context) {
	id, ok := uintParam(c, "id")
	if !ok {
		return
	}
	var req statusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, err)
		return
	}
	order, err := h.orders.UpdateOrderStatus(c.Request.Context(), id, model.OrderStatus(req.Status))
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, order)
}
