package middleware

import (
	"net/http"
	"strings"

	usermodel "order-feedback/apps/user/model"
	"order-feedback/pkg/jwt"
	"order-feedback/pkg/response"

	"github.com/gin-gonic/gin"
)

// Context keys set by Auth.
const (
	CtxUserID   = "userId"
	CtxUsername = "username"
	CtxRole     = "role"
)

type TokenParser interface {
	ParseToken(token string) (*jwt.Claims, error)
}

// Auth requires a valid "Bearer <token>" header and stores the caller's
// identity in the gin context.
func Auth(tokens TokenParser) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			response.Abort(c, http.StatusUnauthorized, "Authorization header required")
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || strings.TrimSpace(parts[1]) == "" {
			response.Abort(c, http.StatusUnauthorized, "Authorization header format must be Bearer {token}")
			return
		}

		claims, err := tokens.ParseToken(strings.TrimSpace(parts[1]))
		if err != nil {
			response.Abort(c, http.StatusUnauthorized, "Invalid token")
			return
		}

		c.Set(CtxUserID, claims.UserID)
		c.Set(CtxUsername, claims.Username)
		c.Set(CtxRole, claims.Role)
		c.Next()
	}
}

// RequireAdmin must run after Auth.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		if actor, ok := ActorFrom(c); !ok || !actor.IsAdmin() {
			response.Abort(c, http.StatusForbidden, "admin role required")
			return
		}
		c.Next()
	}
}

// ActorFrom returns the identity stored by Auth.
func ActorFrom(c *gin.Context) (usermodel.Actor, bool) {
	id, ok := c.Get(CtxUserID)
	if !ok {
		return usermodel.Actor{}, false
	}
	userID, ok := id.(uint)
	if !ok || userID == 0 {
		return usermodel.Actor{}, false
	}
	return usermodel.Actor{UserID: userID, Role: c.GetString(CtxRole)}, true
}
