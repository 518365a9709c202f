package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"order-feedback/apps/api/handler"
	"order-feedback/apps/api/middleware"
	cartmodel "order-feedback/apps/cart/model"
	cartrepo "order-feedback/apps/cart/repository"
	cartservice "order-feedback/apps/cart/service"
	ordermodel "order-feedback/apps/order/model"
	orderrepo "order-feedback/apps/order/repository"
	orderservice "order-feedback/apps/order/service"
	productmodel "order-feedback/apps/product/model"
	productrepo "order-feedback/apps/product/repository"
	productservice "order-feedback/apps/product/service"
	reviewmodel "order-feedback/apps/review/model"
	reviewrepo "order-feedback/apps/review/repository"
	reviewservice "order-feedback/apps/review/service"
	usermodel "order-feedback/apps/user/model"
	userrepo "order-feedback/apps/user/repository"
	userservice "order-feedback/apps/user/service"
	"order-feedback/pkg/config"
	"order-feedback/pkg/database"
	"order-feedback/pkg/discovery"
	"order-feedback/pkg/hash"
	"order-feedback/pkg/jwt"
	"order-feedback/pkg/logger"
	"order-feedback/pkg/mq"
	"order-feedback/pkg/tracer"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func main() {
	// 1. 加载配置
	c, err := config.LoadConfig(".")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	if err := logger.Init(c.Log.Development); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to init logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()
	log := logger.L()

	if err := run(c, log); err != nil {
		log.Fatal("service stopped with error", zap.Error(err))
	}
}

func run(c *config.Config, log *zap.Logger) error {
	// 2. 链路追踪
	if c.Tracing.Endpoint != "" {
		tp, err := tracer.InitTracer(c.Service.Name, c.Tracing.Endpoint, envName(c))
		if err != nil {
			return err
		}
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := tp.Shutdown(ctx); err != nil {
				log.Warn("tracer shutdown", zap.Error(err))
			}
		}()
	}

	// 3. 数据库
	db, err := database.InitMySQL(c.Mysql, log)
	if err != nil {
		return err
	}
	defer database.Close(db, log)
	if err := migrate(db); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}

	var cartStore cartservice.Store
	switch c.Cart.Store {
	case "redis":
		rdb, err := database.InitRedis(c.Redis, log)
		if err != nil {
			return err
		}
		defer rdb.Close()
		cartStore = cartrepo.NewRedisStore(rdb)
	default:
		cartStore = cartrepo.NewGormStore(db)
	}

	// 4. 组装服务
	tx := database.NewTransactor(db)
	users := userrepo.NewUserRepository(db)
	products := productrepo.NewProductRepository(db)
	orders := orderrepo.NewOrderRepository(db)
	reviews := reviewrepo.NewReviewRepository(db)

	tokens := jwt.NewManager(c.Jwt.Secret, c.Jwt.Issuer, c.Jwt.Audience, c.Jwt.TTL)
	authSvc := userservice.NewAuthService(users, hash.NewBcrypt(0), tokens, log.Named("auth"))
	productSvc := productservice.NewProductService(products, log.Named("product"))
	cartSvc := cartservice.NewCartService(cartStore, products, log.Named("cart"))
	reviewSvc := reviewservice.NewReviewService(reviews, orders, log.Named("review"))

	orderOpts := []orderservice.Option{
		orderservice.WithStatusListener(reviewSvc),
		orderservice.WithCart(cartSvc),
	}
	if c.RabbitMQ.URL != "" {
		pub, err := mq.NewPublisher(c.RabbitMQ.URL, c.RabbitMQ.Exchange, log.Named("mq"))
		if err != nil {
			// events are best effort; the API runs without them
			log.Warn("RabbitMQ unavailable, integration events disabled", zap.Error(err))
		} else {
			defer pub.Close()
			orderOpts = append(orderOpts, orderservice.WithEventPublisher(pub))
		}
	}
	orderSvc := orderservice.NewOrderService(tx, orders, products, users, log.Named("order"), orderOpts...)

	if err := authSvc.EnsureAdmin(context.Background(), c.Admin.Email, c.Admin.Username, c.Admin.Password); err != nil {
		return fmt.Errorf("seed admin: %w", err)
	}

	// 5. 限流
	var orderLimiter gin.HandlerFunc
	if c.RateLimit.OrderQPS > 0 {
		if err := middleware.InitSentinel(middleware.ResOrderPlacement, c.RateLimit.OrderQPS); err != nil {
			return err
		}
		orderLimiter = middleware.RateLimit(middleware.ResOrderPlacement)
		log.Info("order placement rate limit loaded", zap.Float64("qps", c.RateLimit.OrderQPS))
	}

	if !c.Log.Development {
		gin.SetMode(gin.ReleaseMode)
	}
	h := handler.New(authSvc, productSvc, cartSvc, orderSvc, reviewSvc, log.Named("http"))
	router := handler.NewRouter(h, handler.RouterOptions{
		ServiceName:  c.Service.Name,
		Tokens:       tokens,
		OrderLimiter: orderLimiter,
		Log:          log.Named("access"),
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", c.Service.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("HTTP server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	// 6. 注册到 Consul
	if c.Consul.Address != "" {
		reg, err := discovery.RegisterService(c.Service.Name, c.Service.Port, c.Consul.Address, "/healthz", log)
		if err != nil {
			log.Warn("consul registration failed", zap.Error(err))
		} else {
			defer reg.Deregister()
		}
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case sig := <-quit:
		log.Info("shutting down", zap.String("signal", sig.String()))
	case err := <-errCh:
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(ctx)
}

func migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&usermodel.User{},
		&productmodel.Product{},
		&cartmodel.Cart{},
		&cartmodel.CartItem{},
		&ordermodel.Order{},
		&ordermodel.OrderItem{},
		&reviewmodel.Review{},
	)
}

func envName(c *config.Config) string {
	if c.Log.Development {
		return "development"
	}
	return "production"
}
