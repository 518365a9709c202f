package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"order-feedback/apps/api/handler"
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
	"order-feedback/pkg/database"
	"order-feedback/pkg/hash"
	"order-feedback/pkg/jwt"
	"order-feedback/pkg/testutil"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

type envelope struct {
	Code int             `json:"code"`
	Msg  string          `json:"msg"`
	Data json.RawMessage `json:"data"`
}

type api struct {
	t      *testing.T
	router *gin.Engine
}

func newAPI(t *testing.T) *api {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db := testutil.SetupTestDB(t,
		&usermodel.User{},
		&productmodel.Product{},
		&cartmodel.Cart{},
		&cartmodel.CartItem{},
		&ordermodel.Order{},
		&ordermodel.OrderItem{},
		&reviewmodel.Review{},
	)
	log := zap.NewNop()

	users := userrepo.NewUserRepository(db)
	products := productrepo.NewProductRepository(db)
	orders := orderrepo.NewOrderRepository(db)
	tokens := jwt.NewManager("handler-secret", "order-feedback", "clients", time.Hour)

	authSvc := userservice.NewAuthService(users, hash.NewBcrypt(bcrypt.MinCost), tokens, log)
	productSvc := productservice.NewProductService(products, log)
	cartSvc := cartservice.NewCartService(cartrepo.NewGormStore(db), products, log)
	reviewSvc := reviewservice.NewReviewService(reviewrepo.NewReviewRepository(db), orders, log)
	orderSvc := orderservice.NewOrderService(database.NewTransactor(db), orders, products, users, log,
		orderservice.WithStatusListener(reviewSvc),
		orderservice.WithCart(cartSvc),
	)
	require.NoError(t, authSvc.EnsureAdmin(context.Background(), "admin@example.com", "admin", "admin-pass"))

	h := handler.New(authSvc, productSvc, cartSvc, orderSvc, reviewSvc, log)
	router := handler.NewRouter(h, handler.RouterOptions{
		ServiceName: "order-feedback-test",
		Tokens:      tokens,
		Log:         log,
	})
	return &api{t: t, router: router}
}

func (a *api) do(method, path, token string, body any) (int, envelope) {
	a.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(a.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)

	var env envelope
	if w.Body.Len() > 0 {
		require.NoError(a.t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	}
	return w.Code, env
}

func decode[T any](t *testing.T, raw json.RawMessage) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(raw, &v), string(raw))
	return v
}

func (a *api) token(email, password string) string {
	a.t.Helper()
	code, env := a.do(http.MethodPost, "/api/auth/login", "", map[string]string{"email": email, "password": password})
	require.Equal(a.t, http.StatusOK, code, env.Msg)
	return decode[userservice.AuthResult](a.t, env.Data).Token
}

func (a *api) register(email, username, password string) string {
	a.t.Helper()
	code, env := a.do(http.MethodPost, "/api/auth/register", "", map[string]string{
		"email": email, "username": username, "password": password,
	})
	require.Equal(a.t, http.StatusCreated, code, env.Msg)
	return decode[userservice.AuthResult](a.t, env.Data).Token
}

func TestOrderToReviewFlow(t *testing.T) {
	a := newAPI(t)
	admin := a.token("admin@example.com", "admin-pass")
	alice := a.register("alice@example.com", "alice", "alice-pass")
	bob := a.register("bob@example.com", "bob", "bob-pass")

	code, env := a.do(http.MethodPost, "/api/products", admin, map[string]any{
		"name": "Lamp", "price": "10.50", "stock": 5, "description": "desk lamp",
	})
	require.Equal(t, http.StatusCreated, code, env.Msg)
	lamp := decode[productmodel.Product](t, env.Data)

	code, _ = a.do(http.MethodPost, "/api/cart/items", alice, map[string]any{"productId": lamp.ID, "quantity": 2})
	require.Equal(t, http.StatusOK, code)

	code, env = a.do(http.MethodPost, "/api/orders/checkout", alice, nil)
	require.Equal(t, http.StatusCreated, code, env.Msg)
	order := decode[ordermodel.Order](t, env.Data)
	assert.Equal(t, ordermodel.StatusPending, order.Status)
	assert.True(t, decimal.NewFromInt(21).Equal(order.TotalAmount), order.TotalAmount.String())

	code, env = a.do(http.MethodGet, "/api/cart", alice, nil)
	require.Equal(t, http.StatusOK, code)
	assert.Empty(t, decode[cartmodel.Cart](t, env.Data).Items)

	orderPath := fmt.Sprintf("/api/orders/%d", order.ID)
	code, _ = a.do(http.MethodGet, orderPath, bob, nil)
	assert.Equal(t, http.StatusForbidden, code)
	code, _ = a.do(http.MethodGet, orderPath, admin, nil)
	assert.Equal(t, http.StatusOK, code)

	review := map[string]any{"orderId": order.ID, "productId": lamp.ID, "rating": 5, "comment": "great"}
	code, env = a.do(http.MethodPost, "/api/reviews", alice, review)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "order has not been delivered", env.Msg)

	code, _ = a.do(http.MethodPut, orderPath+"/status", alice, map[string]string{"status": "Delivered"})
	assert.Equal(t, http.StatusForbidden, code)
	code, _ = a.do(http.MethodPut, orderPath+"/status", admin, map[string]string{"status": "Teleported"})
	assert.Equal(t, http.StatusBadRequest, code)
	code, _ = a.do(http.MethodPut, orderPath+"/status", admin, map[string]string{"status": "Delivered"})
	require.Equal(t, http.StatusOK, code)

	code, env = a.do(http.MethodPost, "/api/reviews", alice, review)
	require.Equal(t, http.StatusCreated, code, env.Msg)
	created := decode[reviewmodel.Review](t, env.Data)

	code, _ = a.do(http.MethodPost, "/api/reviews", alice, review)
	assert.Equal(t, http.StatusConflict, code)

	code, _ = a.do(http.MethodPost, "/api/reviews", bob, review)
	assert.Equal(t, http.StatusForbidden, code)

	code, _ = a.do(http.MethodPut, fmt.Sprintf("/api/reviews/%d", created.ID), bob, map[string]any{"rating": 1})
	assert.Equal(t, http.StatusForbidden, code)

	ratingPath := fmt.Sprintf("/api/reviews/product/%d/rating", lamp.ID)
	code, env = a.do(http.MethodGet, ratingPath, bob, nil)
	require.Equal(t, http.StatusOK, code)
	assert.InDelta(t, 5.0, decode[map[string]float64](t, env.Data)["averageRating"], 1e-9)

	code, env = a.do(http.MethodGet, fmt.Sprintf("/api/reviews/product/%d/purchased", lamp.ID), alice, nil)
	require.Equal(t, http.StatusOK, code)
	assert.True(t, decode[map[string]any](t, env.Data)["purchased"].(bool))

	code, env = a.do(http.MethodGet, "/api/reviews/filter?rating=5", bob, nil)
	require.Equal(t, http.StatusOK, code)
	assert.Len(t, decode[[]reviewmodel.Review](t, env.Data), 1)

	// leaving Delivered revokes the review
	code, _ = a.do(http.MethodPut, orderPath+"/status", admin, map[string]string{"status": "Shipped"})
	require.Equal(t, http.StatusOK, code)
	code, env = a.do(http.MethodGet, fmt.Sprintf("/api/reviews/order/%d", order.ID), alice, nil)
	require.Equal(t, http.StatusOK, code)
	assert.Empty(t, decode[[]reviewmodel.Review](t, env.Data))
	code, env = a.do(http.MethodGet, ratingPath, bob, nil)
	require.Equal(t, http.StatusOK, code)
	assert.Zero(t, decode[map[string]float64](t, env.Data)["averageRating"])

	code, env = a.do(http.MethodGet, "/api/orders/user", alice, nil)
	require.Equal(t, http.StatusOK, code)
	assert.Len(t, decode[[]ordermodel.Order](t, env.Data), 1)
}

func TestStockErrorsOverHTTP(t *testing.T) {
	a := newAPI(t)
	admin := a.token("admin@example.com", "admin-pass")
	user := a.register("carol@example.com", "carol", "carol-pass")

	code, env := a.do(http.MethodPost, "/api/products", admin, map[string]any{"name": "Vase", "price": 20, "stock": 1})
	require.Equal(t, http.StatusCreated, code, env.Msg)
	vase := decode[productmodel.Product](t, env.Data)

	items := map[string]any{"items": []map[string]any{{"productId": vase.ID, "quantity": 2}}}
	code, env = a.do(http.MethodPost, "/api/orders", user, items)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Contains(t, env.Msg, "insufficient stock")

	code, _ = a.do(http.MethodPost, "/api/orders", user, map[string]any{"items": []any{}})
	assert.Equal(t, http.StatusBadRequest, code)

	code, _ = a.do(http.MethodPost, "/api/cart/items", user, map[string]any{"productId": vase.ID, "quantity": 3})
	assert.Equal(t, http.StatusBadRequest, code)

	code, env = a.do(http.MethodPost, fmt.Sprintf("/api/products/%d/stock", vase.ID), admin, map[string]int{"delta": 4})
	require.Equal(t, http.StatusOK, code, env.Msg)
	assert.Equal(t, float64(5), decode[map[string]any](t, env.Data)["stock"])

	code, env = a.do(http.MethodPost, "/api/orders", user, items)
	require.Equal(t, http.StatusCreated, code, env.Msg)

	code, env = a.do(http.MethodGet, fmt.Sprintf("/api/products/%d", vase.ID), "", nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, 3, decode[productmodel.Product](t, env.Data).Stock)
}

func TestAuthAndRouting(t *testing.T) {
	a := newAPI(t)
	user := a.register("dave@example.com", "dave", "dave-pass")

	code, _ := a.do(http.MethodGet, "/healthz", "", nil)
	assert.Equal(t, http.StatusOK, code)

	code, env := a.do(http.MethodGet, "/api/cart", "", nil)
	assert.Equal(t, http.StatusUnauthorized, code)
	assert.Equal(t, http.StatusUnauthorized, env.Code)

	code, _ = a.do(http.MethodGet, "/api/cart", "not-a-jwt", nil)
	assert.Equal(t, http.StatusUnauthorized, code)

	code, _ = a.do(http.MethodPost, "/api/products", user, map[string]any{"name": "X", "price": 1, "stock": 1})
	assert.Equal(t, http.StatusForbidden, code)

	code, _ = a.do(http.MethodGet, "/api/products/abc", "", nil)
	assert.Equal(t, http.StatusBadRequest, code)
	code, _ = a.do(http.MethodGet, "/api/products/42", "", nil)
	assert.Equal(t, http.StatusNotFound, code)

	code, _ = a.do(http.MethodPost, "/api/auth/register", "", map[string]string{
		"email": "dave@example.com", "username": "dave2", "password": "dave-pass",
	})
	assert.Equal(t, http.StatusConflict, code)

	code, env = a.do(http.MethodPost, "/api/auth/login", "", map[string]string{"email": "dave@example.com", "password": "wrong"})
	assert.Equal(t, http.StatusUnauthorized, code)
	assert.Equal(t, "invalid credentials", env.Msg)

	code, _ = a.do(http.MethodGet, "/api/reviews/filter?rating=x", user, nil)
	assert.Equal(t, http.StatusBadRequest, code)
	code, _ = a.do(http.MethodGet, "/api/reviews/filter?rating=9", user, nil)
	assert.Equal(t, http.StatusBadRequest, code)
}
