package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/tesseract-hub/onboarding-service/internal/middleware"
	"github.com/tesseract-hub/onboarding-service/internal/models"
)

// Routes groups the handlers mounted under /api/v1
type Routes struct {
	Profiles *ProfileHandler
	Mobile   *MobileHandler
	Admin    *AdminHandler
	Verified middleware.VerifiedChecker
}

// Register mounts the API on group, which must already authenticate callers
func (r *Routes) Register(api *gin.RouterGroup, logger *logrus.Logger) {
	api.GET("/me", r.Profiles.GetAccount)

	// Other services probe these before serving host or vendor features.
	verified := api.Group("/me/verified")
	{
		verified.GET("/hosts", middleware.RequireApprovedProfile(r.Verified, models.VariantHost, logger), approved)
		verified.GET("/vendors", middleware.RequireApprovedProfile(r.Verified, models.VariantVendor, logger), approved)
	}

	admin := api.Group("/admin", middleware.RequireStaff(logger))
	{
		admin.DELETE("/users/:id", r.Admin.DeleteUser)
		admin.GET("/:variant/reviews", r.Admin.ListReviews)
		admin.GET("/:variant/reviews/:id", r.Admin.GetReview)
		admin.POST("/:variant/reviews/:id", r.Admin.Review)
		admin.POST("/:variant/bulk", r.Admin.BulkAction)
	}

	variant := api.Group("/:variant")
	{
		variant.GET("", r.Profiles.ListProfiles)
		variant.GET("/me", r.Profiles.GetMine)
		variant.GET("/me/status", r.Profiles.GetStatus)
		variant.POST("/me/business-profile", r.Profiles.SubmitBusinessProfile)
		variant.POST("/me/identity-verification", r.Profiles.SubmitIdentityVerification)
		variant.POST("/me/contact-details", r.Profiles.SubmitContactDetails)
		variant.POST("/me/submit", r.Profiles.SubmitForReview)
		variant.POST("/me/mobile/send", r.Mobile.SendCode)
		variant.POST("/me/mobile/verify", r.Mobile.VerifyCode)
		variant.GET("/:id", r.Profiles.GetProfile)
	}
}

func approved(c *gin.Context) {
	SuccessResponse(c, http.StatusOK, "Profile is approved", gin.H{"verified": true})
}
