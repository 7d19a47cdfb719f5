package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/tesseract-hub/onboarding-service/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// StepRepository handles the per-step sub-entities. Each sub-entity is keyed
// by a unique profile_id, which makes lazy creation race-safe.
type StepRepository struct {
	db *gorm.DB
}

// NewStepRepository creates a new step repository
func NewStepRepository(db *gorm.DB) *StepRepository {
	return &StepRepository{db: db}
}

func firstByProfile[T any](db *gorm.DB, profileID uuid.UUID) (*T, error) {
	var out T
	if err := db.Where("profile_id = ?", profileID).First(&out).Error; err != nil {
		return nil, translate(err)
	}
	return &out, nil
}

func getOrCreate[T any](db *gorm.DB, profileID uuid.UUID, blank *T) (*T, bool, error) {
	existing, err := firstByProfile[T](db, profileID)
	if err == nil {
		return existing, false, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return nil, false, err
	}

	res := db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "profile_id"}},
		DoNothing: true,
	}).Create(blank)
	if res.Error != nil {
		return nil, false, res.Error
	}
	if res.RowsAffected == 1 {
		return blank, true, nil
	}

	existing, err = firstByProfile[T](db, profileID)
	if errors.Is(err, ErrNotFound) {
		return nil, false, ErrConflict
	}
	return existing, false, err
}

// GetOrCreateBusinessProfile returns the business sub-entity, creating an empty one if missing
func (r *StepRepository) GetOrCreateBusinessProfile(ctx context.Context, profileID uuid.UUID) (*models.BusinessProfile, error) {
	bp, _, err := getOrCreate(r.db.WithContext(ctx), profileID, &models.BusinessProfile{ProfileID: profileID})
	return bp, err
}

// GetOrCreateIdentityVerification returns the identity sub-entity, creating an empty one if missing
func (r *StepRepository) GetOrCreateIdentityVerification(ctx context.Context, profileID uuid.UUID) (*models.IdentityVerification, error) {
	iv, _, err := getOrCreate(r.db.WithContext(ctx), profileID, &models.IdentityVerification{
		ProfileID:          profileID,
		VerificationStatus: models.VerificationPending,
	})
	return iv, err
}

// GetOrCreateContactDetails returns the contact sub-entity, creating an empty one if missing
func (r *StepRepository) GetOrCreateContactDetails(ctx context.Context, profileID uuid.UUID) (*models.ContactDetails, error) {
	cd, _, err := getOrCreate(r.db.WithContext(ctx), profileID, &models.ContactDetails{
		ProfileID:        profileID,
		MobileVerified:   models.VerificationPending,
		WhatsappVerified: models.VerificationPending,
		TelegramVerified: models.VerificationPending,
		FacebookVerified: models.VerificationPending,
		EmailVerified:    models.VerificationPending,
	})
	return cd, err
}

// GetOrCreateReviewSubmission returns the review sub-entity, creating an empty one if missing
func (r *StepRepository) GetOrCreateReviewSubmission(ctx context.Context, profileID uuid.UUID) (*models.ReviewSubmission, error) {
	rs, _, err := getOrCreate(r.db.WithContext(ctx), profileID, &models.ReviewSubmission{ProfileID: profileID})
	return rs, err
}

// GetContactDetails retrieves the contact sub-entity of a profile
func (r *StepRepository) GetContactDetails(ctx context.Context, profileID uuid.UUID) (*models.ContactDetails, error) {
	return firstByProfile[models.ContactDetails](r.db.WithContext(ctx), profileID)
}

// GetContactDetailsForUpdate retrieves and locks the contact sub-entity of a profile
func (r *StepRepository) GetContactDetailsForUpdate(ctx context.Context, profileID uuid.UUID) (*models.ContactDetails, error) {
	return firstByProfile[models.ContactDetails](
		r.db.WithContext(ctx).Clauses(clause.Locking{Strength: "UPDATE"}), profileID)
}

// GetIdentityVerification retrieves the identity sub-entity of a profile
func (r *StepRepository) GetIdentityVerification(ctx context.Context, profileID uuid.UUID) (*models.IdentityVerification, error) {
	return firstByProfile[models.IdentityVerification](r.db.WithContext(ctx), profileID)
}

// Save persists a sub-entity in place
func (r *StepRepository) Save(ctx context.Context, entity interface{}) error {
	return r.db.WithContext(ctx).Save(entity).Error
}

// GetBusinessProfile retrieves the business sub-entity of a profile
func (r *StepRepository) GetBusinessProfile(ctx context.Context, profileID uuid.UUID) (*models.BusinessProfile, error) {
	return firstByProfile[models.BusinessProfile](r.db.WithContext(ctx), profileID)
}

// ClearExpiredMobileCodes drops pending mobile codes sent before cutoff
func (r *StepRepository) ClearExpiredMobileCodes(ctx context.Context, cutoff time.Time) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&models.ContactDetails{}).
		Where("mobile_verification_code <> '' AND mobile_verification_sent_at < ?", cutoff).
		Updates(map[string]interface{}{
			"mobile_verification_code":    "",
			"mobile_verification_sent_at": nil,
		})
	return res.RowsAffected, res.Error
}
