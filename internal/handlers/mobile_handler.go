package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/tesseract-hub/onboarding-service/internal/models"
)

// MobileAPI is the mobile verification surface used by MobileHandler
type MobileAPI interface {
	SendCode(ctx context.Context, variant models.Variant, actor models.Actor, req *models.SendMobileCodeRequest) (*models.MobileCodeResponse, error)
	ConfirmCode(ctx context.Context, variant models.Variant, actor models.Actor, req *models.VerifyMobileCodeRequest) (*models.ContactDetails, error)
}

// MobileHandler handles mobile number verification
type MobileHandler struct {
	mobile MobileAPI
	logger *logrus.Logger
}

// NewMobileHandler creates a new mobile handler
func NewMobileHandler(mobile MobileAPI, logger *logrus.Logger) *MobileHandler {
	if logger == nil {
		logger = logrus.New()
	}
	return &MobileHandler{mobile: mobile, logger: logger}
}

// SendCode sends a fresh code to the caller's mobile number
func (h *MobileHandler) SendCode(c *gin.Context) {
	variant, ok := variantParam(c)
	if !ok {
		return
	}
	a, ok := actor(c)
	if !ok {
		return
	}

	var req models.SendMobileCodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	resp, err := h.mobile.SendCode(c.Request.Context(), variant, a, &req)
	if err != nil {
		handleServiceError(c, h.logger, err)
		return
	}
	SuccessResponse(c, http.StatusOK, "Verification code sent successfully", resp)
}

// VerifyCode confirms the code the caller received
func (h *MobileHandler) VerifyCode(c *gin.Context) {
	variant, ok := variantParam(c)
	if !ok {
		return
	}
	a, ok := actor(c)
	if !ok {
		return
	}

	var req models.VerifyMobileCodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	contact, err := h.mobile.ConfirmCode(c.Request.Context(), variant, a, &req)
	if err != nil {
		handleServiceError(c, h.logger, err)
		return
	}
	SuccessResponse(c, http.StatusOK, "Mobile number verified successfully", contact)
}
