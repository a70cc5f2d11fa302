package user

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/jwalitptl/facility-api/internal/handler"
	"github.com/jwalitptl/facility-api/internal/model"
	"github.com/jwalitptl/facility-api/internal/service/user"
)

// SessionUpdater refreshes the user copy held by a session.
type SessionUpdater interface {
	UpdateSessionUser(ctx context.Context, token string, u model.User) error
}

type Handler struct {
	service  user.UserServicer
	sessions SessionUpdater
	guard    []gin.HandlerFunc
}

// NewHandler builds the users handler. guard runs in front of the
// directory routes; profile and single-user reads stay open to every
// signed-in user.
func NewHandler(service user.UserServicer, sessions SessionUpdater, guard ...gin.HandlerFunc) *Handler {
	return &Handler{
		service:  service,
		sessions: sessions,
		guard:    guard,
	}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	users := r.Group("/users")
	{
		users.PUT("/profile", h.UpdateProfile)
		users.GET("/:id", h.GetUser)
	}

	directory := users.Group("", h.guard...)
	{
		directory.GET("", h.ListUsers)
		directory.POST("", h.CreateStaff)
		directory.POST("/:id/approve", h.ApproveUser)
		directory.PUT("/:id/role", h.SetRole)
		directory.PUT("/:id/active", h.SetActive)
	}
}

func (h *Handler) ListUsers(c *gin.Context) {
	users, err := h.service.List(c.Request.Context(), handler.CurrentUser(c), model.Role(c.Query("role")))
	if err != nil {
		handler.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(users))
}

func (h *Handler) GetUser(c *gin.Context) {
	u, err := h.service.Get(c.Request.Context(), handler.CurrentUser(c), c.Param("id"))
	if err != nil {
		handler.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(u))
}

func (h *Handler) CreateStaff(c *gin.Context) {
	var req model.CreateStaffRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handler.RespondBindError(c, err)
		return
	}

	u, err := h.service.CreateStaff(c.Request.Context(), handler.CurrentUser(c), req)
	if err != nil {
		handler.RespondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, handler.NewSuccessResponse(u))
}

func (h *Handler) ApproveUser(c *gin.Context) {
	u, err := h.service.Approve(c.Request.Context(), handler.CurrentUser(c), c.Param("id"))
	if err != nil {
		handler.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(u))
}

func (h *Handler) SetRole(c *gin.Context) {
	var req model.SetRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handler.RespondBindError(c, err)
		return
	}

	u, err := h.service.SetRole(c.Request.Context(), handler.CurrentUser(c), c.Param("id"), req.Role)
	if err != nil {
		handler.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(u))
}

func (h *Handler) SetActive(c *gin.Context) {
	var req model.SetActiveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handler.RespondBindError(c, err)
		return
	}

	u, err := h.service.SetActive(c.Request.Context(), handler.CurrentUser(c), c.Param("id"), *req.IsActive)
	if err != nil {
		handler.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(u))
}

// UpdateProfile edits the caller's own account and refreshes their session.
func (h *Handler) UpdateProfile(c *gin.Context) {
	var req model.UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handler.RespondBindError(c, err)
		return
	}

	u, err := h.service.UpdateProfile(c.Request.Context(), handler.CurrentUser(c), req)
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	if h.sessions != nil {
		if err := h.sessions.UpdateSessionUser(c.Request.Context(), handler.CurrentToken(c), *u); err != nil {
			log.Warn().Err(err).Str("user_id", u.ID).Msg("failed to refresh session user")
		}
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(u))
}
