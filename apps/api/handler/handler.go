package handler

import (
	"errors"
	"net/http"
	"strconv"

	"order-feedback/apps/api/middleware"
	cartservice "order-feedback/apps/cart/service"
	orderservice "order-feedback/apps/order/service"
	productservice "order-feedback/apps/product/service"
	reviewservice "order-feedback/apps/review/service"
	usermodel "order-feedback/apps/user/model"
	userservice "order-feedback/apps/user/service"
	"order-feedback/pkg/apperr"
	"order-feedback/pkg/response"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type Handler struct {
	auth     *userservice.AuthService
	products *productservice.ProductService
	carts    *cartservice.CartService
	orders   *orderservice.OrderService
	reviews  *reviewservice.ReviewService
	log      *zap.Logger
}

func New(
	auth *userservice.AuthService,
	products *productservice.ProductService,
	carts *cartservice.CartService,
	orders *orderservice.OrderService,
	reviews *reviewservice.ReviewService,
	log *zap.Logger,
) *Handler {
	return &Handler{
		auth:     auth,
		products: products,
		carts:    carts,
		orders:   orders,
		reviews:  reviews,
		log:      log,
	}
}

// statusFor maps an error kind to its HTTP status.
func statusFor(err error) int {
	switch {
	case errors.Is(err, apperr.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, apperr.ErrValidation), errors.Is(err, apperr.ErrInsufficientStock):
		return http.StatusBadRequest
	case errors.Is(err, apperr.ErrConflict):
		return http.StatusConflict
	case errors.Is(err, apperr.ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, apperr.ErrForbidden):
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}

// fail writes err to the client. Internal errors are logged and replaced by a
// generic message.
func (h *Handler) fail(c *gin.Context, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		h.log.Error("request failed",
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Error(err),
		)
		_ = c.Error(err)
		response.Error(c, status, "internal server error")
		return
	}
	response.Error(c, status, err.Error())
}

func (h *Handler) badRequest(c *gin.Context, err error) {
	h.log.Debug("invalid request body", zap.String("path", c.FullPath()), zap.Error(err))
	response.Error(c, http.StatusBadRequest, "invalid request body")
}

// uintParam parses a positive id path parameter, answering 400 otherwise.
func uintParam(c *gin.Context, name string) (uint, bool) {
	v, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || v == 0 {
		response.Error(c, http.StatusBadRequest, "invalid "+name)
		return 0, false
	}
	return uint(v), true
}

func actor(c *gin.Context) (usermodel.Actor, bool) {
	a, ok := middleware.ActorFrom(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, "unauthorized")
	}
	return a, ok
}
