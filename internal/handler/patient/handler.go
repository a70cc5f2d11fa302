package patient

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/facility-api/internal/handler"
	"github.com/jwalitptl/facility-api/internal/model"
	"github.com/jwalitptl/facility-api/internal/service/patient"
	"github.com/jwalitptl/facility-api/internal/service/record"
)

type Handler struct {
	service patient.PatientService
	records record.RecordService
}

func NewHandler(service patient.PatientService, records record.RecordService) *Handler {
	return &Handler{
		service: service,
		records: records,
	}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	patients := r.Group("/patients")
	{
		patients.POST("", h.CreatePatient)
		patients.GET("", h.ListPatients)
		patients.POST("/from-signup", h.RegisterFromSignup)
		patients.GET("/:id", h.GetPatient)
		patients.PUT("/:id", h.UpdatePatient)

		patients.POST("/:id/assign-room", h.AssignRoom)
		patients.POST("/:id/discharge", h.Discharge)

		patients.POST("/:id/health-records", h.RecordHealthCheck)
		patients.GET("/:id/health-records", h.ListHealthRecords)
	}
}

func (h *Handler) CreatePatient(c *gin.Context) {
	var req model.CreatePatientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handler.RespondBindError(c, err)
		return
	}

	p, err := h.service.Create(c.Request.Context(), handler.CurrentUser(c), req)
	if err != nil {
		handler.RespondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, handler.NewSuccessResponse(p))
}

// RegisterFromSignup turns the caller's pending signup into a patient record.
func (h *Handler) RegisterFromSignup(c *gin.Context) {
	p, err := h.service.RegisterFromSignup(c.Request.Context(), handler.CurrentUser(c))
	if err != nil {
		handler.RespondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, handler.NewSuccessResponse(p))
}

func (h *Handler) ListPatients(c *gin.Context) {
	var filter model.PatientFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		handler.RespondBindError(c, err)
		return
	}

	patients, err := h.service.List(c.Request.Context(), handler.CurrentUser(c), filter)
	if err != nil {
		handler.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(patients))
}

func (h *Handler) GetPatient(c *gin.Context) {
	p, err := h.service.Get(c.Request.Context(), handler.CurrentUser(c), c.Param("id"))
	if err != nil {
		handler.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(p))
}

func (h *Handler) UpdatePatient(c *gin.Context) {
	var req model.UpdatePatientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handler.RespondBindError(c, err)
		return
	}

	p, err := h.service.Update(c.Request.Context(), handler.CurrentUser(c), c.Param("id"), req)
	if err != nil {
		handler.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(p))
}

func (h *Handler) AssignRoom(c *gin.Context) {
	var req model.AssignRoomRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handler.RespondBindError(c, err)
		return
	}

	p, err := h.service.AssignRoom(c.Request.Context(), handler.CurrentUser(c), c.Param("id"), req)
	if err != nil {
		handler.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(p))
}

func (h *Handler) Discharge(c *gin.Context) {
	p, err := h.service.Discharge(c.Request.Context(), handler.CurrentUser(c), c.Param("id"))
	if err != nil {
		handler.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(p))
}

func (h *Handler) RecordHealthCheck(c *gin.Context) {
	var req model.HealthCheckRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handler.RespondBindError(c, err)
		return
	}

	rec, err := h.records.RecordHealthCheck(c.Request.Context(), handler.CurrentUser(c), c.Param("id"), req)
	if err != nil {
		handler.RespondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, handler.NewSuccessResponse(rec))
}

func (h *Handler) ListHealthRecords(c *gin.Context) {
	records, err := h.records.ListForPatient(c.Request.Context(), handler.CurrentUser(c), c.Param("id"))
	if err != nil {
		handler.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(records))
}
