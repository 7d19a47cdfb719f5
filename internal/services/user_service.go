package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/tesseract-hub/onboarding-service/internal/cache"
	"github.com/tesseract-hub/onboarding-service/internal/models"
	"github.com/tesseract-hub/onboarding-service/internal/repository"
)

// UserClaims is the identity asserted by an access token
type UserClaims struct {
	UserID    uuid.UUID
	Email     string
	FirstName string
	LastName  string
	Phone     string
	IsStaff   bool
}

// UserService keeps the local user mirror in step with the identity provider
type UserService struct {
	store  *repository.Store
	cache  cache.Cache
	logger *logrus.Entry
}

// NewUserService creates a new user service
func NewUserService(store *repository.Store, statusCache cache.Cache, logger *logrus.Logger) *UserService {
	if statusCache == nil {
		statusCache = cache.NewNoOpCache()
	}
	return &UserService{
		store:  store,
		cache:  statusCache,
		logger: logger.WithField("component", "user_service"),
	}
}

// SyncFromClaims upserts the user named by the token
func (s *UserService) SyncFromClaims(ctx context.Context, claims UserClaims) (*models.User, error) {
	if claims.UserID == uuid.Nil {
		return nil, NewValidationError("user_id", "This field is required.")
	}
	email := strings.ToLower(strings.TrimSpace(claims.Email))
	if email != "" && !ValidEmail(email) {
		return nil, NewValidationError("email", "Enter a valid email address.")
	}

	user := &models.User{
		ID:        claims.UserID,
		Email:     email,
		FirstName: claims.FirstName,
		LastName:  claims.LastName,
		Phone:     claims.Phone,
		IsStaff:   claims.IsStaff,
		IsActive:  true,
	}
	if err := s.store.Users.Upsert(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to sync user: %w", err)
	}
	return user, nil
}

// DeleteUser removes a user together with the profiles they own
func (s *UserService) DeleteUser(ctx context.Context, actor models.Actor, id uuid.UUID) error {
	if !actor.IsStaff {
		return ErrForbidden
	}
	if err := s.store.Users.Delete(ctx, id); err != nil {
		return err
	}

	keys := []string{
		cache.StatusCacheKey(string(models.VariantHost), id),
		cache.StatusCacheKey(string(models.VariantVendor), id),
	}
	if err := s.cache.Delete(ctx, keys...); err != nil {
		s.logger.WithError(err).Warn("Failed to invalidate status cache")
	}

	s.logger.WithFields(logrus.Fields{
		"user_id":    id,
		"deleted_by": actor.UserID,
	}).Info("User deleted")
	return nil
}
