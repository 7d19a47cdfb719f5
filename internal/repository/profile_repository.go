package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/tesseract-hub/onboarding-service/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ProfileRepository handles database operations for onboarding profiles
type ProfileRepository struct {
	db *gorm.DB
}

// NewProfileRepository creates a new profile repository
func NewProfileRepository(db *gorm.DB) *ProfileRepository {
	return &ProfileRepository{db: db}
}

// GetOrCreate returns the owner's profile for the workflow variant, creating
// it in its initial state when missing. Concurrent first calls resolve on the
// (owner_id, variant) unique index: the loser re-reads the winner's row.
func (r *ProfileRepository) GetOrCreate(ctx context.Context, owner uuid.UUID, wf models.Workflow) (*models.Profile, bool, error) {
	existing, err := r.GetByOwner(ctx, owner, wf.Variant)
	if err == nil {
		return existing, false, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return nil, false, err
	}

	profile := models.NewProfile(owner, wf)
	res := r.db.WithContext(ctx).
		Omit(clause.Associations).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "owner_id"}, {Name: "variant"}},
			DoNothing: true,
		}).
		Create(profile)
	if res.Error != nil {
		return nil, false, res.Error
	}
	if res.RowsAffected == 1 {
		return profile, true, nil
	}

	existing, err = r.GetByOwner(ctx, owner, wf.Variant)
	if errors.Is(err, ErrNotFound) {
		return nil, false, ErrConflict
	}
	return existing, false, err
}

// GetByOwner retrieves the profile of an owner for a variant
func (r *ProfileRepository) GetByOwner(ctx context.Context, owner uuid.UUID, variant models.Variant) (*models.Profile, error) {
	var profile models.Profile
	err := r.db.WithContext(ctx).
		Where("owner_id = ? AND variant = ?", owner, variant).
		First(&profile).Error
	if err != nil {
		return nil, translate(err)
	}
	return &profile, nil
}

// GetByID retrieves a profile by ID
func (r *ProfileRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Profile, error) {
	var profile models.Profile
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&profile).Error; err != nil {
		return nil, translate(err)
	}
	return &profile, nil
}

// GetForUpdate retrieves a profile and locks its row for the rest of the transaction
func (r *ProfileRepository) GetForUpdate(ctx context.Context, id uuid.UUID) (*models.Profile, error) {
	var profile models.Profile
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", id).
		First(&profile).Error
	if err != nil {
		return nil, translate(err)
	}
	return &profile, nil
}

// GetDetail retrieves a profile with its owner, sub-entities and history (newest first)
func (r *ProfileRepository) GetDetail(ctx context.Context, id uuid.UUID) (*models.Profile, error) {
	var profile models.Profile
	err := r.db.WithContext(ctx).
		Preload("Owner").
		Preload("BusinessProfile").
		Preload("IdentityVerification").
		Preload("ContactDetails").
		Preload("ReviewSubmission").
		Preload("StatusHistory", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at DESC")
		}).
		Preload("StatusHistory.ChangedBy").
		Where("id = ?", id).
		First(&profile).Error
	if err != nil {
		return nil, translate(err)
	}
	return &profile, nil
}

// Save persists the profile row without touching its associations
func (r *ProfileRepository) Save(ctx context.Context, profile *models.Profile) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Save(profile).Error
}

// List returns profiles matching the filter, newest first, with the total count
func (r *ProfileRepository) List(ctx context.Context, filter models.ProfileFilter) ([]models.Profile, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.Profile{})
	if filter.Variant != "" {
		query = query.Where("variant = ?", filter.Variant)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if len(filter.IDs) > 0 {
		query = query.Where("id IN ?", filter.IDs)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	order := "created_at DESC"
	if filter.Status == models.StatusSubmitted {
		order = "submitted_at DESC"
	}
	query = query.Order(order)
	if filter.Limit > 0 {
		query = query.Limit(filter.Limit)
	}
	if filter.Offset > 0 {
		query = query.Offset(filter.Offset)
	}

	var profiles []models.Profile
	if err := query.Find(&profiles).Error; err != nil {
		return nil, 0, err
	}
	return profiles, total, nil
}

// ListByOwner returns every profile of a user across variants
func (r *ProfileRepository) ListByOwner(ctx context.Context, owner uuid.UUID) ([]models.Profile, error) {
	var profiles []models.Profile
	err := r.db.WithContext(ctx).Where("owner_id = ?", owner).Find(&profiles).Error
	return profiles, err
}

// ListForUpdate locks and returns the variant's profiles among ids
func (r *ProfileRepository) ListForUpdate(ctx context.Context, variant models.Variant, ids []uuid.UUID) ([]models.Profile, error) {
	var profiles []models.Profile
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("variant = ? AND id IN ?", variant, ids).
		Order("id").
		Find(&profiles).Error
	return profiles, err
}
