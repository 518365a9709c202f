package handler

import (
	"net/http"
	"strconv"

	"order-feedback/pkg/response"

	"github.com/gin-gonic/gin"
)

type createReviewRequest struct {
	OrderID   uint   `json:"orderId" binding:"required"`
	ProductID uint   `json:"productId" binding:"required"`
	Rating    int    `json:"rating"`
	Comment   string `json:"comment"`
}

type updateReviewRequest struct {
	Rating  int    `json:"rating"`
	Comment string `json:"comment"`
}

type ratingResponse struct {
	ProductID     uint    `json:"productId"`
	AverageRating float64 `json:"averageRating"`
}

type purchasedResponse struct {
	ProductID uint `json:"productId"`
	Purchased bool `json:"purchased"`
}

func (h *Handler) CreateReview(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	var req createReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, err)
		return
	}
	rv, err := h.reviews.CreateReview(c.Request.Context(), a.UserID, req.OrderID, req.ProductID, req.Rating, req.Comment)
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Created(c, rv)
}

func (h *Handler) UpdateReview(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	id, ok := uintParam(c, "id")
	if !ok {
		return
	}
	var req updateReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, err)
		return
	}
	rv, err := h.reviews.UpdateReview(c.Request.Context(), a, id, req.Rating, req.Comment)
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, rv)
}

func (h *Handler) GetOrderReviews(c *gin.Context) {
	id, ok := uintParam(c, "orderId")
	if !ok {
		return
	}
	reviews, err := h.reviews.GetOrderReviews(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, reviews)
}

func (h *Handler) GetProductReviews(c *gin.Context) {
	id, ok := uintParam(c, "productId")
	if !ok {
		return
	}
	reviews, err := h.reviews.GetProductReviews(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, reviews)
}

func (h *Handler) GetProductAverageRating(c *gin.Context) {
	id, ok := uintParam(c, "productId")
	if !ok {
		return
	}
	avg, err := h.reviews.GetProductAverageRating(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, ratingResponse{ProductID: id, AverageRating: avg})
}

func (h *Handler) HasUserPurchasedProduct(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	id, ok := uintParam(c, "productId")
	if !ok {
		return
	}
	purchased, err := h.reviews.HasUserPurchasedProduct(c.Request.Context(), a.UserID, id)
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, purchasedResponse{ProductID: id, Purchased: purchased})
}

func (h *Handler) GetFilteredReviews(c *gin.Context) {
	rating, err := strconv.Atoi(c.Query("rating"))
	if err != nil {
		response.Error(c, http.StatusBadRequest, "rating must be a number")
		return
	}
	reviews, err := h.reviews.GetFilteredReviews(c.Request.Context(), rating)
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, reviews)
}
