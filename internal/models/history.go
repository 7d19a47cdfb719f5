package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// StatusHistory is an immutable record of one profile status transition.
// Statuses are stored as plain text so old rows survive enum changes.
type StatusHistory struct {
	ID           uuid.UUID  `gorm:"type:uuid;primary_key" json:"id"`
	ProfileID    uuid.UUID  `gorm:"type:uuid;not null;index" json:"profile_id"`
	OldStatus    string     `gorm:"type:varchar(20);not null" json:"old_status"`
	NewStatus    string     `gorm:"type:varchar(20);not null" json:"new_status"`
	ChangedByID  *uuid.UUID `gorm:"type:uuid;index" json:"changed_by,omitempty"`
	ChangeReason string     `gorm:"type:text" json:"change_reason"`
	CreatedAt    time.Time  `gorm:"not null;index" json:"created_at"`

	ChangedBy *User `gorm:"foreignKey:ChangedByID;constraint:OnDelete:SET NULL" json:"-"`
}

func (StatusHistory) TableName() string {
	return "onboarding_status_history"
}

func (h *StatusHistory) BeforeCreate(tx *gorm.DB) error {
	if h.ID == uuid.Nil {
		h.ID = uuid.New()
	}
	if h.CreatedAt.IsZero() {
		h.CreatedAt = time.Now().UTC()
	}
	return nil
}

// ChangedByEmail is the actor's email when the relation is preloaded
func (h *StatusHistory) ChangedByEmail() string {
	if h.ChangedBy == nil {
		return ""
	}
	return h.ChangedBy.Email
}
