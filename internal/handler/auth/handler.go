package auth

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/jwalitptl/facility-api/internal/handler"
	"github.com/jwalitptl/facility-api/internal/model"
	"github.com/jwalitptl/facility-api/internal/service/access"
	"github.com/jwalitptl/facility-api/internal/service/auth"
)

type Handler struct {
	svc *auth.Service
}

func NewHandler(svc *auth.Service) *Handler {
	return &Handler{svc: svc}
}

// RegisterPublicRoutes mounts the endpoints that open a session.
func (h *Handler) RegisterPublicRoutes(r *gin.RouterGroup) {
	auth := r.Group("/auth")
	{
		auth.POST("/login", h.Login)
		auth.POST("/signup", h.Signup)
	}
}

// RegisterRoutes mounts the endpoints that need a session.
func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	auth := r.Group("/auth")
	{
		auth.GET("/me", h.Me)
		auth.POST("/logout", h.Logout)
		auth.GET("/nav", h.Nav)
	}
}

func (h *Handler) Login(c *gin.Context) {
	var req model.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handler.RespondBindError(c, err)
		return
	}

	session, err := h.svc.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		handler.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(session))
}

func (h *Handler) Signup(c *gin.Context) {
	var req model.SignupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handler.RespondBindError(c, err)
		return
	}

	session, err := h.svc.Signup(c.Request.Context(), req)
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	log.Info().Str("user_id", session.User.ID).Msg("patient signed up")

	c.JSON(http.StatusCreated, handler.NewSuccessResponse(session))
}

func (h *Handler) Me(c *gin.Context) {
	session, err := h.svc.Current(c.Request.Context(), handler.CurrentToken(c))
	if err != nil {
		handler.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(session))
}

func (h *Handler) Logout(c *gin.Context) {
	if err := h.svc.Logout(c.Request.Context(), handler.CurrentToken(c)); err != nil {
		handler.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse("logged out successfully"))
}

// Nav returns the dashboard navigation and capability set for the caller's role.
func (h *Handler) Nav(c *gin.Context) {
	c.JSON(http.StatusOK, handler.NewSuccessResponse(access.NavFor(handler.CurrentUser(c).Role)))
}
