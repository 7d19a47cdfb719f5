package services

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/tesseract-hub/onboarding-service/internal/models"
	"github.com/tesseract-hub/onboarding-service/internal/repository"
)

var (
	ErrNotFound                   = repository.ErrNotFound
	ErrConflict                   = repository.ErrConflict
	ErrForbidden                  = errors.New("access to this profile is not allowed")
	ErrUnknownVariant             = errors.New("unknown profile variant")
	ErrExternalServiceUnavailable = errors.New("external service unavailable")
	ErrInvalidCode                = errors.New("invalid verification code")
	ErrCodeExpired                = errors.New("verification code has expired")
	ErrRateLimited                = errors.New("too many verification codes requested")
)

// ValidationError carries per-field messages for redisplaying a form
type ValidationError struct {
	Fields map[string]string `json:"fields"`
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s: %s", k, e.Fields[k]))
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// NewValidationError creates a validation error for a single field
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Fields: map[string]string{field: message}}
}

// IsValidationError checks if an error is a ValidationError
func IsValidationError(err error) (*ValidationError, bool) {
	var validationErr *ValidationError
	if errors.As(err, &validationErr) {
		return validationErr, true
	}
	return nil, false
}

// FieldErrors accumulates field messages while a form is validated
type FieldErrors map[string]string

// Add records msg for field unless the field already has an error
func (fe FieldErrors) Add(field, msg string) {
	if _, exists := fe[field]; !exists {
		fe[field] = msg
	}
}

// Err returns nil when empty, else a *ValidationError
func (fe FieldErrors) Err() error {
	if len(fe) == 0 {
		return nil
	}
	return &ValidationError{Fields: map[string]string(fe)}
}

// StepNotAccessibleError is returned when a caller tries to skip ahead
type StepNotAccessibleError struct {
	Step        models.Step
	CurrentStep models.Step
}

func (e *StepNotAccessibleError) Error() string {
	return fmt.Sprintf("step %s is not accessible from %s", e.Step, e.CurrentStep)
}

// IsStepNotAccessible checks if an error is a StepNotAccessibleError
func IsStepNotAccessible(err error) (*StepNotAccessibleError, bool) {
	var stepErr *StepNotAccessibleError
	if errors.As(err, &stepErr) {
		return stepErr, true
	}
	return nil, false
}

// IncompleteStepsError is returned when review is requested before the prerequisites are done
type IncompleteStepsError struct {
	Missing []models.Step
}

func (e *IncompleteStepsError) Error() string {
	names := make([]string, len(e.Missing))
	for i, s := range e.Missing {
		names[i] = string(s)
	}
	return "all previous steps must be completed before submission: missing " + strings.Join(names, ", ")
}

// IsIncompleteSteps checks if an error is an IncompleteStepsError
func IsIncompleteSteps(err error) (*IncompleteStepsError, bool) {
	var incompleteErr *IncompleteStepsError
	if errors.As(err, &incompleteErr) {
		return incompleteErr, true
	}
	return nil, false
}
