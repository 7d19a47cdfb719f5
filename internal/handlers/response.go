package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/tesseract-hub/onboarding-service/internal/middleware"
	"github.com/tesseract-hub/onboarding-service/internal/models"
	"github.com/tesseract-hub/onboarding-service/internal/services"
)

func requestID(c *gin.Context) string {
	v, _ := c.Get("request_id")
	s, _ := v.(string)
	return s
}

// SuccessResponse sends a success response
func SuccessResponse(c *gin.Context, status int, message string, data interface{}) {
	c.JSON(status, models.APIResponse{
		Success:   true,
		Message:   message,
		Data:      data,
		RequestID: requestID(c),
		Timestamp: nowUTC(),
	})
}

// ErrorResponse sends an error response
func ErrorResponse(c *gin.Context, status int, code, message string, fields map[string]string) {
	c.JSON(status, models.APIResponse{
		Success: false,
		Message: message,
		Error: &models.APIError{
			Code:    code,
			Message: message,
			Fields:  fields,
		},
		RequestID: requestID(c),
		Timestamp: nowUTC(),
	})
}

// handleServiceError maps a service error to its HTTP response. Unknown
// errors are logged and answered with a generic message.
func handleServiceError(c *gin.Context, logger *logrus.Logger, err error) {
	if verr, ok := services.IsValidationError(err); ok {
		ErrorResponse(c, http.StatusBadRequest, "VALIDATION_FAILED", "Validation failed", verr.Fields)
		return
	}
	if stepErr, ok := services.IsStepNotAccessible(err); ok {
		ErrorResponse(c, http.StatusConflict, "STEP_NOT_ACCESSIBLE",
			fmt.Sprintf("Please complete the %s step first", stepErr.CurrentStep), nil)
		return
	}
	if incomplete, ok := services.IsIncompleteSteps(err); ok {
		fields := make(map[string]string, len(incomplete.Missing))
		for _, s := range incomplete.Missing {
			fields[string(s)] = "This step is not completed."
		}
		ErrorResponse(c, http.StatusConflict, "INCOMPLETE_STEPS",
			"All previous steps must be completed before submission", fields)
		return
	}

	switch {
	case errors.Is(err, services.ErrNotFound):
		ErrorResponse(c, http.StatusNotFound, "NOT_FOUND", "Resource not found", nil)
	case errors.Is(err, services.ErrForbidden):
		ErrorResponse(c, http.StatusForbidden, "FORBIDDEN", "You do not have access to this resource", nil)
	case errors.Is(err, services.ErrUnknownVariant):
		ErrorResponse(c, http.StatusNotFound, "UNKNOWN_VARIANT", "Unknown profile type", nil)
	case errors.Is(err, services.ErrConflict):
		ErrorResponse(c, http.StatusConflict, "CONFLICT", "The profile was modified concurrently, please retry", nil)
	case errors.Is(err, services.ErrInvalidCode):
		ErrorResponse(c, http.StatusBadRequest, "INVALID_CODE", "Invalid verification code", nil)
	case errors.Is(err, services.ErrCodeExpired):
		ErrorResponse(c, http.StatusBadRequest, "CODE_EXPIRED", "Verification code has expired", nil)
	case errors.Is(err, services.ErrRateLimited):
		ErrorResponse(c, http.StatusTooManyRequests, "RATE_LIMITED", "Too many verification codes requested, try again later", nil)
	case errors.Is(err, services.ErrExternalServiceUnavailable):
		logger.WithError(err).WithField("request_id", requestID(c)).Error("External service unavailable")
		ErrorResponse(c, http.StatusServiceUnavailable, "SERVICE_UNAVAILABLE", "A required service is temporarily unavailable", nil)
	default:
		logger.WithError(err).WithField("request_id", requestID(c)).Error("Unhandled service error")
		ErrorResponse(c, http.StatusInternalServerError, "INTERNAL_ERROR", "An unexpected error occurred", nil)
	}
}

func bindError(c *gin.Context, err error) {
	ErrorResponse(c, http.StatusBadRequest, "INVALID_REQUEST", "Invalid request payload", map[string]string{"body": err.Error()})
}

// variantParam resolves the :variant path segment
func variantParam(c *gin.Context) (models.Variant, bool) {
	v, ok := models.ParseVariant(c.Param("variant"))
	if !ok {
		ErrorResponse(c, http.StatusNotFound, "UNKNOWN_VARIANT", "Unknown profile type", nil)
	}
	return v, ok
}

func idParam(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		ErrorResponse(c, http.StatusBadRequest, "INVALID_ID", "Invalid ID", nil)
		return uuid.Nil, false
	}
	return id, true
}

func actor(c *gin.Context) (models.Actor, bool) {
	a, ok := middleware.ActorFromContext(c)
	if !ok {
		ErrorResponse(c, http.StatusUnauthorized, "UNAUTHORIZED", "Authentication required", nil)
	}
	return a, ok
}

func pagination(c *gin.Context) (int, int) {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if err != nil || limit <= 0 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}
	offset, err := strconv.Atoi(c.DefaultQuery("offset", "0"))
	if err != nil || offset < 0 {
		offset = 0
	}
	return limit, offset
}

// ListResponse is a page of results
type ListResponse struct {
	Items  interface{} `json:"items"`
	Total  int64       `json:"total"`
	Limit  int         `json:"limit"`
	Offset int         `json:"offset"`
}

func nowUTC() time.Time {
	return time.Now().UTC()
}
