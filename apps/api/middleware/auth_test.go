package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	usermodel "order-feedback/apps/user/model"
	"order-feedback/pkg/jwt"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

type fakeParser map[string]*jwt.Claims

func (f fakeParser) ParseToken(token string) (*jwt.Claims, error) {
	if c, ok := f[token]; ok {
		return c, nil
	}
	return nil, jwt.ErrInvalidToken
}

func newEngine() *gin.Engine {
	gin.SetMode(gin.TestMode)
	tokens := fakeParser{
		"user-token":  {UserID: 7, Username: "alice", Role: usermodel.RoleUser},
		"admin-token": {UserID: 1, Username: "root", Role: usermodel.RoleAdmin},
	}
	r := gin.New()
	r.Use(AccessLog(zap.NewNop()))
	authed := r.Group("", Auth(tokens))
	authed.GET("/me", func(c *gin.Context) {
		actor, ok := ActorFrom(c)
		if !ok {
			c.Status(http.StatusInternalServerError)
			return
		}
		c.JSON(http.StatusOK, gin.H{"id": actor.UserID, "admin": actor.IsAdmin()})
	})
	authed.GET("/admin", RequireAdmin(), func(c *gin.Context) { c.Status(http.StatusNoContent) })
	return r
}

func TestAuth(t *testing.T) {
	r := newEngine()

	tests := []struct {
		name   string
		header string
		path   string
		want   int
	}{
		{"missing header", "", "/me", http.StatusUnauthorized},
		{"wrong scheme", "Basic user-token", "/me", http.StatusUnauthorized},
		{"empty token", "Bearer ", "/me", http.StatusUnauthorized},
		{"unknown token", "Bearer nope", "/me", http.StatusUnauthorized},
		{"user", "Bearer user-token", "/me", http.StatusOK},
		{"lowercase scheme", "bearer user-token", "/me", http.StatusOK},
		{"user on admin route", "Bearer user-token", "/admin", http.StatusForbidden},
		{"admin on admin route", "Bearer admin-token", "/admin", http.StatusNoContent},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)
			assert.Equal(t, tt.want, w.Code)
		})
	}
}

func TestActorFrom_Empty(t *testing.T) {
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	_, ok := ActorFrom(c)
	assert.False(t, ok)

	c.Set(CtxUserID, "7")
	_, ok = ActorFrom(c)
	assert.False(t, ok)
}

