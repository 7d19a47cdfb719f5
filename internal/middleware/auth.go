package middleware

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/tesseract-hub/onboarding-service/internal/models"
	"github.com/tesseract-hub/onboarding-service/internal/services"
)

const actorKey = "actor"

// Claims represents the JWT claims issued by the identity provider
type Claims struct {
	UserID    string   `json:"user_id"`
	Email     string   `json:"email"`
	FirstName string   `json:"first_name"`
	LastName  string   `json:"last_name"`
	Phone     string   `json:"phone"`
	Roles     []string `json:"roles"`
	IsStaff   bool     `json:"is_staff"`
	jwt.RegisteredClaims
}

// UserSyncer mirrors the token's user into the local store
type UserSyncer interface {
	SyncFromClaims(ctx context.Context, claims services.UserClaims) (*models.User, error)
}

// VerifiedChecker answers whether a user's profile of a variant is approved
type VerifiedChecker interface {
	IsVerified(ctx context.Context, variant models.Variant, userID uuid.UUID) (bool, error)
}

func abort(c *gin.Context, status int, code, message string) {
	requestID, _ := c.Get("request_id")
	rid, _ := requestID.(string)
	c.AbortWithStatusJSON(status, models.APIResponse{
		Success:   false,
		Message:   message,
		Error:     &models.APIError{Code: code, Message: message},
		RequestID: rid,
		Timestamp: time.Now().UTC(),
	})
}

// JWTAuth validates the bearer token, syncs the user mirror and stores the
// caller as an Actor on the context
func JWTAuth(jwtSecret string, staffRoles []string, users UserSyncer, logger *logrus.Logger) gin.HandlerFunc {
	staff := make(map[string]bool, len(staffRoles))
	for _, r := range staffRoles {
		staff[r] = true
	}

	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			abort(c, http.StatusUnauthorized, "MISSING_TOKEN", "Authorization header is required")
			return
		}

		tokenParts := strings.SplitN(authHeader, " ", 2)
		if len(tokenParts) != 2 || !strings.EqualFold(tokenParts[0], "Bearer") {
			abort(c, http.StatusUnauthorized, "INVALID_TOKEN_FORMAT", "Authorization header must be in format: Bearer <token>")
			return
		}

		claims := &Claims{}
		token, err := jwt.ParseWithClaims(tokenParts[1], claims, func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
			}
			return []byte(jwtSecret), nil
		})
		if err != nil || !token.Valid {
			logger.WithError(err).Warn("Invalid or expired token")
			abort(c, http.StatusUnauthorized, "INVALID_TOKEN", "Invalid or expired token")
			return
		}

		rawID := claims.UserID
		if rawID == "" {
			rawID = claims.Subject
		}
		userID, err := uuid.Parse(rawID)
		if err != nil {
			abort(c, http.StatusUnauthorized, "INVALID_CLAIMS", "Invalid token claims")
			return
		}

		isStaff := claims.IsStaff
		for _, r := range claims.Roles {
			if staff[r] {
				isStaff = true
				break
			}
		}

		if _, err := users.SyncFromClaims(c.Request.Context(), services.UserClaims{
			UserID:    userID,
			Email:     claims.Email,
			FirstName: claims.FirstName,
			LastName:  claims.LastName,
			Phone:     claims.Phone,
			IsStaff:   isStaff,
		}); err != nil {
			logger.WithError(err).WithField("user_id", userID).Error("Failed to sync user")
			if _, ok := services.IsValidationError(err); ok {
				abort(c, http.StatusUnauthorized, "INVALID_CLAIMS", "Invalid token claims")
				return
			}
			abort(c, http.StatusInternalServerError, "INTERNAL_ERROR", "An unexpected error occurred")
			return
		}

		c.Set(actorKey, models.Actor{UserID: userID, IsStaff: isStaff})
		c.Set("user_id", userID.String())
		c.Set("user_email", claims.Email)

		logger.WithFields(logrus.Fields{
			"user_id":  userID,
			"is_staff": isStaff,
		}).Debug("User authenticated successfully")

		c.Next()
	}
}

// ActorFromContext returns the authenticated caller
func ActorFromContext(c *gin.Context) (models.Actor, bool) {
	v, ok := c.Get(actorKey)
	if !ok {
		return models.Actor{}, false
	}
	actor, ok := v.(models.Actor)
	return actor, ok
}

// RequireStaff rejects callers without staff rights
func RequireStaff(logger *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor, ok := ActorFromContext(c)
		if !ok {
			abort(c, http.StatusUnauthorized, "UNAUTHORIZED", "Authentication required")
			return
		}
		if !actor.IsStaff {
			logger.WithField("user_id", actor.UserID).Warn("Staff route requested by non-staff user")
			abort(c, http.StatusForbidden, "INSUFFICIENT_PERMISSIONS", "Staff access required")
			return
		}
		c.Next()
	}
}

// RequireApprovedProfile only lets through users whose profile of the
// variant has been approved
func RequireApprovedProfile(checker VerifiedChecker, variant models.Variant, logger *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor, ok := ActorFromContext(c)
		if !ok {
			abort(c, http.StatusUnauthorized, "UNAUTHORIZED", "Authentication required")
			return
		}
		verified, err := checker.IsVerified(c.Request.Context(), variant, actor.UserID)
		if err != nil {
			logger.WithError(err).Error("Failed to check profile approval")
			abort(c, http.StatusInternalServerError, "INTERNAL_ERROR", "An unexpected error occurred")
			return
		}
		if !verified {
			abort(c, http.StatusForbidden, "PROFILE_NOT_APPROVED",
				fmt.Sprintf("An approved %s profile is required", variant))
			return
		}
		c.Next()
	}
}
