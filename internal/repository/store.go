package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/tesseract-hub/onboarding-service/internal/models"
	"gorm.io/gorm"
)

var (
	// ErrNotFound is returned when a row does not exist
	ErrNotFound = errors.New("record not found")
	// ErrConflict is returned when a uniqueness race could not be resolved
	ErrConflict = errors.New("conflicting concurrent write")
)

// Store groups the repositories that share one database handle. A Store
// built inside Transaction runs every call on the same transaction.
type Store struct {
	db       *gorm.DB
	Users    *UserRepository
	Profiles *ProfileRepository
	Steps    *StepRepository
	History  *HistoryRepository
}

// NewStore creates a store over db
func NewStore(db *gorm.DB) *Store {
	return &Store{
		db:       db,
		Users:    NewUserRepository(db),
		Profiles: NewProfileRepository(db),
		Steps:    NewStepRepository(db),
		History:  NewHistoryRepository(db),
	}
}

// DB returns the underlying handle
func (s *Store) DB() *gorm.DB {
	return s.db
}

// Transaction runs fn inside a database transaction. Returning an error
// from fn rolls back every write made through the tx store.
func (s *Store) Transaction(ctx context.Context, fn func(tx *Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(NewStore(tx))
	})
}

// Ping checks database connectivity
func (s *Store) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// AutoMigrate creates or updates every onboarding table
func AutoMigrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&models.User{},
		&models.Profile{},
		&models.BusinessProfile{},
		&models.IdentityVerification{},
		&models.ContactDetails{},
		&models.ReviewSubmission{},
		&models.StatusHistory{},
	); err != nil {
		return fmt.Errorf("failed to migrate onboarding schema: %w", err)
	}
	return nil
}

func translate(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}
