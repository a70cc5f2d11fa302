package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/facility-api/internal/model"
)

// Context keys set by the auth middleware.
const (
	UserKey  = "user"
	TokenKey = "token"
)

// CurrentUser returns the authenticated user, or nil outside the auth group.
func CurrentUser(c *gin.Context) *model.User {
	v, ok := c.Get(UserKey)
	if !ok {
		return nil
	}
	u, _ := v.(*model.User)
	return u
}

// CurrentToken returns the session token of the request.
func CurrentToken(c *gin.Context) string {
	return c.GetString(TokenKey)
}
