package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/tesseract-hub/onboarding-service/internal/models"
)

// AdminAPI is the review surface used by AdminHandler
type AdminAPI interface {
	ListReviewQueue(ctx context.Context, variant models.Variant, actor models.Actor, limit, offset int) ([]models.ProfileSummary, int64, error)
	GetReview(ctx context.Context, variant models.Variant, actor models.Actor, id uuid.UUID) (*models.ProfileDetail, error)
	Review(ctx context.Context, variant models.Variant, actor models.Actor, id uuid.UUID, req *models.AdminReviewRequest) (*models.ProfileSummary, error)
	BulkAction(ctx context.Context, variant models.Variant, actor models.Actor, req *models.BulkActionRequest) (*models.BulkActionResult, error)
}

// UserAPI is the user management surface used by AdminHandler
type UserAPI interface {
	DeleteUser(ctx context.Context, actor models.Actor, id uuid.UUID) error
}

// AdminHandler handles staff review requests
type AdminHandler struct {
	admin  AdminAPI
	users  UserAPI
	logger *logrus.Logger
}

// NewAdminHandler creates a new admin handler
func NewAdminHandler(admin AdminAPI, users UserAPI, logger *logrus.Logger) *AdminHandler {
	if logger == nil {
		logger = logrus.New()
	}
	return &AdminHandler{admin: admin, users: users, logger: logger}
}

// ListReviews returns the submitted profiles awaiting review
func (h *AdminHandler) ListReviews(c *gin.Context) {
	variant, ok := variantParam(c)
	if !ok {
		return
	}
	a, ok := actor(c)
	if !ok {
		return
	}

	limit, offset := pagination(c)
	items, total, err := h.admin.ListReviewQueue(c.Request.Context(), variant, a, limit, offset)
	if err != nil {
		handleServiceError(c, h.logger, err)
		return
	}
	SuccessResponse(c, http.StatusOK, "Review queue retrieved successfully", ListResponse{
		Items:  items,
		Total:  total,
		Limit:  limit,
		Offset: offset,
	})
}

// GetReview returns one profile with its history and completeness
func (h *AdminHandler) GetReview(c *gin.Context) {
	variant, ok := variantParam(c)
	if !ok {
		return
	}
	id, ok := idParam(c)
	if !ok {
		return
	}
	a, ok := actor(c)
	if !ok {
		return
	}

	detail, err := h.admin.GetReview(c.Request.Context(), variant, a, id)
	if err != nil {
		handleServiceError(c, h.logger, err)
		return
	}
	SuccessResponse(c, http.StatusOK, "Profile retrieved successfully", detail)
}

// Review records a staff decision on one profile
func (h *AdminHandler) Review(c *gin.Context) {
	variant, ok := variantParam(c)
	if !ok {
		return
	}
	id, ok := idParam(c)
	if !ok {
		return
	}
	a, ok := actor(c)
	if !ok {
		return
	}

	var req models.AdminReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	summary, err := h.admin.Review(c.Request.Context(), variant, a, id, &req)
	if err != nil {
		handleServiceError(c, h.logger, err)
		return
	}
	SuccessResponse(c, http.StatusOK, "Profile reviewed successfully", summary)
}

// BulkAction applies one review action to several profiles
func (h *AdminHandler) BulkAction(c *gin.Context) {
	variant, ok := variantParam(c)
	if !ok {
		return
	}
	a, ok := actor(c)
	if !ok {
		return
	}

	var req models.BulkActionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	result, err := h.admin.BulkAction(c.Request.Context(), variant, a, &req)
	if err != nil {
		handleServiceError(c, h.logger, err)
		return
	}
	SuccessResponse(c, http.StatusOK, "Bulk action applied successfully", result)
}

// DeleteUser removes a user and everything they own
func (h *AdminHandler) DeleteUser(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	a, ok := actor(c)
	if !ok {
		return
	}

	if err := h.users.DeleteUser(c.Request.Context(), a, id); err != nil {
		handleServiceError(c, h.logger, err)
		return
	}
	SuccessResponse(c, http.StatusOK, "User deleted successfully", nil)
}
