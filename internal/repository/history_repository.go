package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/tesseract-hub/onboarding-service/internal/models"
	"gorm.io/gorm"
)

// HistoryRepository appends and reads status history. It deliberately has no
// update or delete operations.
type HistoryRepository struct {
	db *gorm.DB
}

// NewHistoryRepository creates a new history repository
func NewHistoryRepository(db *gorm.DB) *HistoryRepository {
	return &HistoryRepository{db: db}
}

// Create appends one entry
func (r *HistoryRepository) Create(ctx context.Context, entry *models.StatusHistory) error {
	return r.db.WithContext(ctx).Omit("ChangedBy").Create(entry).Error
}

// CreateBatch appends many entries
func (r *HistoryRepository) CreateBatch(ctx context.Context, entries []models.StatusHistory) error {
	if len(entries) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Omit("ChangedBy").CreateInBatches(entries, 100).Error
}

// ListByProfile returns a profile's history newest first
func (r *HistoryRepository) ListByProfile(ctx context.Context, profileID uuid.UUID) ([]models.StatusHistory, error) {
	var entries []models.StatusHistory
	err := r.db.WithContext(ctx).
		Preload("ChangedBy").
		Where("profile_id = ?", profileID).
		Order("created_at DESC").
		Find(&entries).Error
	return entries, err
}

// CountByProfile counts a profile's history entries
func (r *HistoryRepository) CountByProfile(ctx context.Context, profileID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.StatusHistory{}).
		Where("profile_id = ?", profileID).
		Count(&count).Error
	return count, err
}
