package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/facility-api/internal/repository"
	"github.com/jwalitptl/facility-api/internal/service/access"
	"github.com/jwalitptl/facility-api/internal/service/appointment"
	"github.com/jwalitptl/facility-api/internal/service/auth"
	"github.com/jwalitptl/facility-api/internal/service/notification"
	apperrors "github.com/jwalitptl/facility-api/pkg/errors"
	"github.com/jwalitptl/facility-api/pkg/validator"
)

type Response struct {
	Status  string      `json:"status"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

func NewSuccessResponse(data interface{}) *Response {
	return &Response{
		Status: "success",
		Data:   data,
	}
}

func NewErrorResponse(message string) *Response {
	return &Response{
		Status:  "error",
		Message: message,
	}
}

// RespondBindError answers a request whose body or query failed binding.
func RespondBindError(c *gin.Context, err error) {
	_ = c.Error(err).SetType(gin.ErrorTypeBind)
	resp := NewErrorResponse("invalid request")
	if fields := validator.Describe(err); fields != nil {
		resp.Data = fields
	} else {
		resp.Message = err.Error()
	}
	c.JSON(http.StatusBadRequest, resp)
}

// RespondError maps a service error to its status and writes the envelope.
// Server errors are reported with a generic message.
func RespondError(c *gin.Context, err error) {
	_ = c.Error(err)
	status := StatusOf(err)
	msg := err.Error()
	if status >= http.StatusInternalServerError {
		msg = http.StatusText(status)
	}
	c.JSON(status, NewErrorResponse(msg))
}

// StatusOf returns the HTTP status for err.
func StatusOf(err error) int {
	var appErr *apperrors.AppError
	switch {
	case errors.As(err, &appErr):
		return appErr.HTTPStatus()
	case errors.Is(err, access.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, auth.ErrInvalidCredentials), errors.Is(err, auth.ErrSessionNotFound):
		return http.StatusUnauthorized
	case errors.Is(err, repository.ErrNotFound),
		errors.Is(err, auth.ErrNoHandoff),
		errors.Is(err, notification.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, repository.ErrBedOccupied),
		errors.Is(err, repository.ErrAlreadyPlaced),
		errors.Is(err, repository.ErrInvalidTransition),
		errors.Is(err, repository.ErrDuplicateID),
		errors.Is(err, repository.ErrRoomInactive),
		errors.Is(err, auth.ErrEmailTaken),
		errors.Is(err, appointment.ErrNoAvailability):
		return http.StatusConflict
	case errors.Is(err, repository.ErrBedNotInRoom):
		return http.StatusBadRequest
	case errors.Is(err, auth.ErrMalformedResponse):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
