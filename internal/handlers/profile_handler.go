package handlers

import (
	"context"
	"io"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/tesseract-hub/onboarding-service/internal/models"
)

// ProfileAPI is the profile service surface used by ProfileHandler
type ProfileAPI interface {
	GetOrCreateProfile(ctx context.Context, variant models.Variant, actor models.Actor) (*models.ProfileSummary, error)
	GetStatus(ctx context.Context, variant models.Variant, actor models.Actor) (*models.StatusSnapshot, error)
	GetProfile(ctx context.Context, variant models.Variant, actor models.Actor, id uuid.UUID) (*models.ProfileDetail, error)
	ListProfiles(ctx context.Context, variant models.Variant, actor models.Actor, filter models.ProfileFilter) ([]models.ProfileSummary, int64, error)
	GetAccountView(ctx context.Context, actor models.Actor) (*models.AccountView, error)
	SubmitBusinessProfile(ctx context.Context, variant models.Variant, actor models.Actor, req *models.BusinessProfileRequest) (*models.StepResult, error)
	SubmitIdentityVerification(ctx context.Context, variant models.Variant, actor models.Actor, req *models.IdentityVerificationRequest) (*models.StepResult, error)
	SubmitContactDetails(ctx context.Context, variant models.Variant, actor models.Actor, req *models.ContactDetailsRequest) (*models.StepResult, error)
	SubmitForReview(ctx context.Context, variant models.Variant, actor models.Actor, req *models.ReviewSubmissionRequest) (*models.StepResult, error)
}

// ProfileHandler handles owner-facing onboarding requests
type ProfileHandler struct {
	profiles ProfileAPI
	logger   *logrus.Logger
}

// NewProfileHandler creates a new profile handler
func NewProfileHandler(profiles ProfileAPI, logger *logrus.Logger) *ProfileHandler {
	if logger == nil {
		logger = logrus.New()
	}
	return &ProfileHandler{profiles: profiles, logger: logger}
}

// GetMine returns the caller's profile, creating a draft on first access
func (h *ProfileHandler) GetMine(c *gin.Context) {
	variant, ok := variantParam(c)
	if !ok {
		return
	}
	a, ok := actor(c)
	if !ok {
		return
	}

	summary, err := h.profiles.GetOrCreateProfile(c.Request.Context(), variant, a)
	if err != nil {
		handleServiceError(c, h.logger, err)
		return
	}
	SuccessResponse(c, http.StatusOK, "Profile retrieved successfully", summary)
}

// GetStatus returns the caller's progress snapshot
func (h *ProfileHandler) GetStatus(c *gin.Context) {
	variant, ok := variantParam(c)
	if !ok {
		return
	}
	a, ok := actor(c)
	if !ok {
		return
	}

	snapshot, err := h.profiles.GetStatus(c.Request.Context(), variant, a)
	if err != nil {
		handleServiceError(c, h.logger, err)
		return
	}
	SuccessResponse(c, http.StatusOK, "Status retrieved successfully", snapshot)
}

// SubmitBusinessProfile handles the multipart business step
func (h *ProfileHandler) SubmitBusinessProfile(c *gin.Context) {
	variant, ok := variantParam(c)
	if !ok {
		return
	}
	a, ok := actor(c)
	if !ok {
		return
	}

	var req models.BusinessProfileRequest
	if err := c.ShouldBind(&req); err != nil {
		bindError(c, err)
		return
	}
	files := newFormFiles(c)
	defer files.Close()
	req.LicenseDocument = files.get("license_document")
	req.BusinessLogo = files.get("business_logo")

	result, err := h.profiles.SubmitBusinessProfile(c.Request.Context(), variant, a, &req)
	if err != nil {
		handleServiceError(c, h.logger, err)
		return
	}
	SuccessResponse(c, http.StatusOK, "Business profile saved successfully", result)
}

// SubmitIdentityVerification handles the multipart identity step. A document
// the provider refused is reported with success false and the step left open.
func (h *ProfileHandler) SubmitIdentityVerification(c *gin.Context) {
	variant, ok := variantParam(c)
	if !ok {
		return
	}
	a, ok := actor(c)
	if !ok {
		return
	}

	var req models.IdentityVerificationRequest
	if err := c.ShouldBind(&req); err != nil {
		bindError(c, err)
		return
	}
	files := newFormFiles(c)
	defer files.Close()
	req.DocumentImageFront = files.get("document_image_front")
	req.DocumentImageBack = files.get("document_image_back")

	result, err := h.profiles.SubmitIdentityVerification(c.Request.Context(), variant, a, &req)
	if err != nil {
		handleServiceError(c, h.logger, err)
		return
	}
	if !result.Completed {
		c.JSON(http.StatusOK, models.APIResponse{
			Success:   false,
			Message:   "Identity verification failed: " + result.Profile.ReviewNotes,
			Data:      result,
			RequestID: requestID(c),
			Timestamp: nowUTC(),
		})
		return
	}
	SuccessResponse(c, http.StatusOK, "Identity verified successfully", result)
}

// SubmitContactDetails handles the contact step
func (h *ProfileHandler) SubmitContactDetails(c *gin.Context) {
	variant, ok := variantParam(c)
	if !ok {
		return
	}
	a, ok := actor(c)
	if !ok {
		return
	}

	var req models.ContactDetailsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	result, err := h.profiles.SubmitContactDetails(c.Request.Context(), variant, a, &req)
	if err != nil {
		handleServiceError(c, h.logger, err)
		return
	}
	SuccessResponse(c, http.StatusOK, "Contact details saved successfully", result)
}

// SubmitForReview handles the final step
func (h *ProfileHandler) SubmitForReview(c *gin.Context) {
	variant, ok := variantParam(c)
	if !ok {
		return
	}
	a, ok := actor(c)
	if !ok {
		return
	}

	var req models.ReviewSubmissionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	result, err := h.profiles.SubmitForReview(c.Request.Context(), variant, a, &req)
	if err != nil {
		handleServiceError(c, h.logger, err)
		return
	}
	SuccessResponse(c, http.StatusOK, "Profile submitted for review", result)
}

// GetProfile returns a profile in full to its owner or to staff
func (h *ProfileHandler) GetProfile(c *gin.Context) {
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

	detail, err := h.profiles.GetProfile(c.Request.Context(), variant, a, id)
	if err != nil {
		handleServiceError(c, h.logger, err)
		return
	}
	SuccessResponse(c, http.StatusOK, "Profile retrieved successfully", detail)
}

// ListProfiles lists profiles for staff
func (h *ProfileHandler) ListProfiles(c *gin.Context) {
	variant, ok := variantParam(c)
	if !ok {
		return
	}
	a, ok := actor(c)
	if !ok {
		return
	}

	limit, offset := pagination(c)
	filter := models.ProfileFilter{
		Status: models.ProfileStatus(c.Query("status")),
		Limit:  limit,
		Offset: offset,
	}
	if raw := c.Query("ids"); raw != "" {
		for _, part := range strings.Split(raw, ",") {
			id, err := uuid.Parse(strings.TrimSpace(part))
			if err != nil {
				ErrorResponse(c, http.StatusBadRequest, "INVALID_ID", "Invalid profile ID in ids filter", nil)
				return
			}
			filter.IDs = append(filter.IDs, id)
		}
	}

	items, total, err := h.profiles.ListProfiles(c.Request.Context(), variant, a, filter)
	if err != nil {
		handleServiceError(c, h.logger, err)
		return
	}
	SuccessResponse(c, http.StatusOK, "Profiles retrieved successfully", ListResponse{
		Items:  items,
		Total:  total,
		Limit:  limit,
		Offset: offset,
	})
}

// GetAccount returns the caller with both of their profiles
func (h *ProfileHandler) GetAccount(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}

	view, err := h.profiles.GetAccountView(c.Request.Context(), a)
	if err != nil {
		handleServiceError(c, h.logger, err)
		return
	}
	SuccessResponse(c, http.StatusOK, "Account retrieved successfully", view)
}

// formFiles opens multipart files and closes them once the request is done
type formFiles struct {
	c      *gin.Context
	opened []io.Closer
}

func newFormFiles(c *gin.Context) *formFiles {
	return &formFiles{c: c}
}

// get returns nil when the field is absent or unreadable; required-file
// checks belong to the form validation.
func (f *formFiles) get(field string) *models.FileUpload {
	header, err := f.c.FormFile(field)
	if err != nil {
		return nil
	}
	return f.open(header)
}

func (f *formFiles) open(header *multipart.FileHeader) *models.FileUpload {
	file, err := header.Open()
	if err != nil {
		return nil
	}
	f.opened = append(f.opened, file)
	return &models.FileUpload{
		Filename:    header.Filename,
		Size:        header.Size,
		ContentType: header.Header.Get("Content-Type"),
		Content:     file,
	}
}

func (f *formFiles) Close() {
	for _, c := range f.opened {
		_ = c.Close()
	}
}
