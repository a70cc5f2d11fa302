package notification

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/facility-api/internal/handler"
	"github.com/jwalitptl/facility-api/internal/model"
	"github.com/jwalitptl/facility-api/internal/service/notification"
)

// Handler serves the caller's slice of the feed. Every operation is scoped
// to entries addressed to the caller's user id or role.
type Handler struct {
	feed *notification.Feed
}

func NewHandler(feed *notification.Feed) *Handler {
	return &Handler{feed: feed}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	n := r.Group("/notifications")
	{
		n.GET("", h.ListNotifications)
		n.GET("/unread-count", h.UnreadCount)
		n.POST("/read-all", h.MarkAllAsRead)
		n.POST("/:id/read", h.MarkAsRead)
		n.DELETE("", h.Clear)
	}
}

func recipient(c *gin.Context) model.Recipient {
	u := handler.CurrentUser(c)
	return model.Recipient{UserID: u.ID, Role: u.Role}
}

func (h *Handler) ListNotifications(c *gin.Context) {
	c.JSON(http.StatusOK, handler.NewSuccessResponse(h.feed.ListFor(recipient(c))))
}

func (h *Handler) UnreadCount(c *gin.Context) {
	c.JSON(http.StatusOK, handler.NewSuccessResponse(gin.H{"unread": h.feed.UnreadCountFor(recipient(c))}))
}

func (h *Handler) MarkAsRead(c *gin.Context) {
	if err := h.feed.MarkAsReadFor(recipient(c), c.Param("id")); err != nil {
		handler.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse("notification marked as read"))
}

func (h *Handler) MarkAllAsRead(c *gin.Context) {
	h.feed.MarkAllAsReadFor(recipient(c))
	c.JSON(http.StatusOK, handler.NewSuccessResponse("all notifications marked as read"))
}

func (h *Handler) Clear(c *gin.Context) {
	h.feed.ClearFor(recipient(c))
	c.JSON(http.StatusOK, handler.NewSuccessResponse("notifications cleared"))
}
