package handler

import (
	"net/http"

	"order-feedback/apps/api/middleware"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.uber.org/zap"
)

// RouterOptions carries the cross-cutting pieces of the router.
type RouterOptions struct {
	ServiceName string
	Tokens      middleware.TokenParser
	// OrderLimiter guards order placement; nil disables it.
	OrderLimiter gin.HandlerFunc
	Log          *zap.Logger
}

func NewRouter(h *Handler, opts RouterOptions) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	if opts.ServiceName != "" {
		r.Use(otelgin.Middleware(opts.ServiceName))
	}
	r.Use(middleware.AccessLog(opts.Log))
	r.Use(cors.New(cors.Config{
		AllowOrigins:  []string{"*"},
		AllowMethods:  []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Authorization", "Content-Type"},
		ExposeHeaders: []string{"Content-Length"},
	}))

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := r.Group("/api")

	authGroup := api.Group("/auth")
	{
		authGroup.POST("/register", h.Register)
		authGroup.POST("/login", h.Login)
	}

	authed := api.Group("")
	authed.Use(middleware.Auth(opts.Tokens))
	admin := authed.Group("")
	admin.Use(middleware.RequireAdmin())

	api.GET("/products", h.ListProducts)
	api.GET("/products/:id", h.GetProduct)
	admin.POST("/products", h.CreateProduct)
	admin.PUT("/products/:id", h.UpdateProduct)
	admin.DELETE("/products/:id", h.DeleteProduct)
	admin.POST("/products/:id/stock", h.AdjustStock)

	cart := authed.Group("/cart")
	{
		cart.GET("", h.GetCart)
		cart.POST("/items", h.AddToCart)
		cart.PUT("/items/:productId", h.UpdateCartItemQuantity)
		cart.DELETE("/items/:productId", h.RemoveFromCart)
		cart.DELETE("/clear", h.ClearCart)
	}

	limited := func(next gin.HandlerFunc) []gin.HandlerFunc {
		if opts.OrderLimiter == nil {
			return []gin.HandlerFunc{next}
		}
		return []gin.HandlerFunc{opts.OrderLimiter, next}
	}
	orders := authed.Group("/orders")
	{
		orders.POST("", limited(h.CreateOrder)...)
		orders.POST("/checkout", limited(h.Checkout)...)
		orders.GET("/user", h.GetUserOrders)
		orders.GET("/:id", h.GetOrder)
	}
	admin.PUT("/orders/:id/status", h.UpdateOrderStatus)

	reviews := authed.Group("/reviews")
	{
		reviews.POST("", h.CreateReview)
		reviews.PUT("/:id", h.UpdateReview)
		reviews.GET("/order/:orderId", h.GetOrderReviews)
		reviews.GET("/product/:productId", h.GetProductReviews)
		reviews.GET("/product/:productId/rating", h.GetProductAverageRating)
		reviews.GET("/product/:productId/purchased", h.HasUserPurchasedProduct)
		reviews.GET("/filter", h.GetFilteredReviews)
	}

	return r
}
