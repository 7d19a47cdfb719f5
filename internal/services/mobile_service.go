package services

import (
	"context"
	"crypto/subtle"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/tesseract-hub/onboarding-service/internal/cache"
	"github.com/tesseract-hub/onboarding-service/internal/metrics"
	"github.com/tesseract-hub/onboarding-service/internal/models"
	"github.com/tesseract-hub/onboarding-service/internal/notifications"
	"github.com/tesseract-hub/onboarding-service/internal/repository"
	"github.com/tesseract-hub/onboarding-service/internal/templates"
)

// Mobile code defaults
const (
	DefaultCodeTTL         = 600 * time.Second
	DefaultMaxSendsPerHour = 5
)

// MobileConfig tunes the mobile verification flow
type MobileConfig struct {
	CodeTTL         time.Duration
	MaxSendsPerHour int
}

// MobileService runs the mobile number verification sub-flow
type MobileService struct {
	store    *repository.Store
	gateway  notifications.Gateway
	limiter  cache.Cache
	codes    func() (string, error)
	ttl      time.Duration
	maxSends int
	logger   *logrus.Entry
	now      func() time.Time
}

// NewMobileService creates a new mobile verification service
func NewMobileService(store *repository.Store, gateway notifications.Gateway, limiter cache.Cache, cfg MobileConfig, logger *logrus.Logger) *MobileService {
	if limiter == nil {
		limiter = cache.NewNoOpCache()
	}
	if cfg.CodeTTL <= 0 {
		cfg.CodeTTL = DefaultCodeTTL
	}
	if cfg.MaxSendsPerHour <= 0 {
		cfg.MaxSendsPerHour = DefaultMaxSendsPerHour
	}
	return &MobileService{
		store:    store,
		gateway:  gateway,
		limiter:  limiter,
		codes:    newMobileCode,
		ttl:      cfg.CodeTTL,
		maxSends: cfg.MaxSendsPerHour,
		logger:   logger.WithField("component", "mobile_service"),
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// SetClock replaces the time source
func (s *MobileService) SetClock(now func() time.Time) {
	s.now = now
}

// issueCode stores a new code on the contact record, replacing any pending one
func issueCode(cd *models.ContactDetails, code string, now time.Time) {
	cd.MobileVerificationCode = code
	cd.MobileVerificationSentAt = &now
}

// confirmCode checks submitted against the pending code. A mismatch or an
// expired code leaves the pending code untouched.
func confirmCode(cd *models.ContactDetails, submitted string, now time.Time, ttl time.Duration) error {
	if cd.MobileVerificationCode == "" || cd.MobileVerificationSentAt == nil {
		return ErrInvalidCode
	}
	if subtle.ConstantTimeCompare([]byte(cd.MobileVerificationCode), []byte(submitted)) != 1 {
		return ErrInvalidCode
	}
	if now.Sub(*cd.MobileVerificationSentAt) >= ttl {
		return ErrCodeExpired
	}
	cd.MobileVerified = models.VerificationVerified
	cd.MobileVerificationCode = ""
	cd.MobileVerificationSentAt = nil
	return nil
}

func (s *MobileService) contactFor(ctx context.Context, variant models.Variant, actor models.Actor) (*models.Profile, *models.ContactDetails, error) {
	if _, err := workflowFor(variant); err != nil {
		return nil, nil, err
	}
	profile, err := s.store.Profiles.GetByOwner(ctx, actor.UserID, variant)
	if err != nil {
		return nil, nil, err
	}
	cd, err := s.store.Steps.GetContactDetails(ctx, profile.ID)
	if err != nil {
		return nil, nil, err
	}
	return profile, cd, nil
}

// SendCode sends a fresh code to the given number of the caller's contact
// record. A different number replaces the stored one and resets its status.
func (s *MobileService) SendCode(ctx context.Context, variant models.Variant, actor models.Actor, req *models.SendMobileCodeRequest) (*models.MobileCodeResponse, error) {
	mobile := strings.TrimSpace(req.MobileNumber)
	if !ValidPhoneNumber(mobile) {
		return nil, NewValidationError("mobile_number", "Invalid mobile number format.")
	}
	profile, _, err := s.contactFor(ctx, variant, actor)
	if err != nil {
		return nil, err
	}
	return s.send(ctx, profile.ID, mobile)
}

// SendCodeForProfile sends a code to the number already on the contact record
func (s *MobileService) SendCodeForProfile(ctx context.Context, profileID uuid.UUID) (*models.MobileCodeResponse, error) {
	return s.send(ctx, profileID, "")
}

func (s *MobileService) send(ctx context.Context, profileID uuid.UUID, mobile string) (*models.MobileCodeResponse, error) {
	sends, err := s.limiter.IncrWindow(ctx, cache.MobileSendCacheKey(profileID), time.Hour)
	if err != nil {
		s.logger.WithError(err).Warn("Failed to check mobile send limit")
	} else if sends > int64(s.maxSends) {
		metrics.MobileCodesTotal.WithLabelValues("send", "rate_limited").Inc()
		return nil, ErrRateLimited
	}

	code, err := s.codes()
	if err != nil {
		return nil, err
	}

	var contact *models.ContactDetails
	now := s.now()
	err = s.store.Transaction(ctx, func(tx *repository.Store) error {
		cd, err := tx.Steps.GetContactDetailsForUpdate(ctx, profileID)
		if err != nil {
			return err
		}
		if mobile != "" && mobile != cd.MobileNumber {
			cd.MobileNumber = mobile
			cd.MobileVerified = models.VerificationPending
		}
		if cd.MobileNumber == "" {
			return NewValidationError("mobile_number", "This field is required.")
		}
		issueCode(cd, code, now)
		if err := tx.Steps.Save(ctx, cd); err != nil {
			return fmt.Errorf("failed to save verification code: %w", err)
		}
		contact = cd
		return nil
	})
	if err != nil {
		metrics.MobileCodesTotal.WithLabelValues("send", "error").Inc()
		return nil, err
	}

	s.gateway.Send(ctx, notifications.Notification{
		Channel:     notifications.ChannelSMS,
		Recipient:   contact.MobileNumber,
		TemplateKey: templates.MobileVerificationCode,
		Context: map[string]string{
			"code":           code,
			"expiry_minutes": fmt.Sprintf("%d", int(s.ttl.Minutes())),
		},
	})
	metrics.MobileCodesTotal.WithLabelValues("send", "sent").Inc()
	s.logger.WithField("profile_id", profileID).Info("Mobile verification code sent")

	return &models.MobileCodeResponse{
		MobileNumber: contact.MobileNumber,
		ExpiresAt:    now.Add(s.ttl),
		ExpiresIn:    int(s.ttl.Seconds()),
	}, nil
}

// ConfirmCode verifies the caller's mobile number with a code
func (s *MobileService) ConfirmCode(ctx context.Context, variant models.Variant, actor models.Actor, req *models.VerifyMobileCodeRequest) (*models.ContactDetails, error) {
	code := cleanMobileCode(req.VerificationCode)
	if !mobileCodePattern.MatchString(code) {
		return nil, NewValidationError("verification_code", "Verification code must contain only digits.")
	}
	profile, _, err := s.contactFor(ctx, variant, actor)
	if err != nil {
		return nil, err
	}

	var contact *models.ContactDetails
	err = s.store.Transaction(ctx, func(tx *repository.Store) error {
		cd, err := tx.Steps.GetContactDetailsForUpdate(ctx, profile.ID)
		if err != nil {
			return err
		}
		if err := confirmCode(cd, code, s.now(), s.ttl); err != nil {
			return err
		}
		if err := tx.Steps.Save(ctx, cd); err != nil {
			return fmt.Errorf("failed to save mobile verification: %w", err)
		}
		contact = cd
		return nil
	})
	if err != nil {
		metrics.MobileCodesTotal.WithLabelValues("verify", codeOutcome(err)).Inc()
		return nil, err
	}

	metrics.MobileCodesTotal.WithLabelValues("verify", "verified").Inc()
	s.logger.WithField("profile_id", profile.ID).Info("Mobile number verified")
	return contact, nil
}

func codeOutcome(err error) string {
	switch err {
	case ErrInvalidCode:
		return "invalid"
	case ErrCodeExpired:
		return "expired"
	}
	return "error"
}
