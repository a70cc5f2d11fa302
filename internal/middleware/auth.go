package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/facility-api/internal/handler"
	"github.com/jwalitptl/facility-api/internal/model"
	"github.com/jwalitptl/facility-api/internal/service/access"
)

// SessionResolver loads the session behind a bearer token.
type SessionResolver interface {
	Current(ctx context.Context, token string) (*model.Session, error)
}

type AuthMiddleware struct {
	sessions SessionResolver
}

func NewAuthMiddleware(sessions SessionResolver) *AuthMiddleware {
	return &AuthMiddleware{sessions: sessions}
}

// Authenticate resolves the bearer session token and puts the session user
// and token in the context.
func (m *AuthMiddleware) Authenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, handler.NewErrorResponse("missing authorization header"))
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || parts[1] == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, handler.NewErrorResponse("invalid authorization format"))
			return
		}

		session, err := m.sessions.Current(c.Request.Context(), parts[1])
		if err != nil {
			status := handler.StatusOf(err)
			if status < http.StatusInternalServerError {
				c.AbortWithStatusJSON(http.StatusUnauthorized, handler.NewErrorResponse("invalid or expired session"))
				return
			}
			_ = c.Error(err)
			c.AbortWithStatusJSON(status, handler.NewErrorResponse(http.StatusText(status)))
			return
		}

		user := session.User
		c.Set(handler.UserKey, &user)
		c.Set(handler.TokenKey, session.Token)
		c.Next()
	}
}

// RequireCapability rejects callers whose role holds none of caps.
func (m *AuthMiddleware) RequireCapability(caps ...access.Capability) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := access.Require(handler.CurrentUser(c), caps...); err != nil {
			c.AbortWithStatusJSON(http.StatusForbidden, handler.NewErrorResponse("permission denied"))
			return
		}
		c.Next()
	}
}
