package facility

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/facility-api/internal/handler"
	"github.com/jwalitptl/facility-api/internal/model"
	"github.com/jwalitptl/facility-api/internal/service/facility"
)

type Handler struct {
	service facility.FacilityService
}

func NewHandler(service facility.FacilityService) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	f := r.Group("/facility")
	{
		f.GET("/blocks", h.ListBlocks)
		f.GET("/rooms", h.ListRooms)
		f.GET("/rooms/:id", h.GetRoom)
		f.GET("/rooms/:id/beds", h.ListRoomBeds)
		f.GET("/beds", h.ListBeds)
		f.GET("/beds/available", h.AvailableBeds)
		f.PUT("/beds/:id", h.UpdateBed)
	}
}

func (h *Handler) ListBlocks(c *gin.Context) {
	blocks, err := h.service.Blocks(c.Request.Context())
	if err != nil {
		handler.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(blocks))
}

// ListRooms accepts an optional block_id query.
func (h *Handler) ListRooms(c *gin.Context) {
	rooms, err := h.service.Rooms(c.Request.Context(), c.Query("block_id"))
	if err != nil {
		handler.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(rooms))
}

func (h *Handler) GetRoom(c *gin.Context) {
	room, err := h.service.Room(c.Request.Context(), c.Param("id"))
	if err != nil {
		handler.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(room))
}

func (h *Handler) ListRoomBeds(c *gin.Context) {
	h.listBeds(c, c.Param("id"))
}

func (h *Handler) ListBeds(c *gin.Context) {
	h.listBeds(c, c.Query("room_id"))
}

func (h *Handler) listBeds(c *gin.Context, roomID string) {
	beds, err := h.service.Beds(c.Request.Context(), roomID)
	if err != nil {
		handler.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(beds))
}

func (h *Handler) AvailableBeds(c *gin.Context) {
	beds, err := h.service.AvailableBeds(c.Request.Context())
	if err != nil {
		handler.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(beds))
}

func (h *Handler) UpdateBed(c *gin.Context) {
	var req model.UpdateBedRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handler.RespondBindError(c, err)
		return
	}

	bed, err := h.service.UpdateBed(c.Request.Context(), handler.CurrentUser(c), c.Param("id"), req)
	if err != nil {
		handler.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(bed))
}
