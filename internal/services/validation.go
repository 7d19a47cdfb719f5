package services

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/tesseract-hub/onboarding-service/internal/models"
	"github.com/tesseract-hub/onboarding-service/internal/storage"
)

const megabyte = 1024 * 1024

var (
	phonePattern    = regexp.MustCompile(`^\+?1?\d{9,15}$`)
	telegramPattern = regexp.MustCompile(`^@[a-zA-Z0-9_]{5,32}$`)
	emailPattern    = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

	facebookPatterns = []*regexp.Regexp{
		regexp.MustCompile(`^https://www\.facebook\.com/[a-zA-Z0-9\.]+/?$`),
		regexp.MustCompile(`^https://facebook\.com/[a-zA-Z0-9\.]+/?$`),
		regexp.MustCompile(`^https://m\.facebook\.com/[a-zA-Z0-9\.]+/?$`),
		regexp.MustCompile(`^https://(www\.)?fb\.com/[a-zA-Z0-9\.]+/?$`),
		regexp.MustCompile(`^https://www\.facebook\.com/pages/[a-zA-Z0-9\-\.]+/\d+/?$`),
	}
)

// FileRule bounds the size and extension of an upload
type FileRule struct {
	MaxBytes    int64
	Extensions  []string
	SizeMessage string
	TypeMessage string
}

var (
	licenseDocumentRule = FileRule{
		MaxBytes:    5 * megabyte,
		Extensions:  []string{"pdf", "jpg", "jpeg", "png"},
		SizeMessage: "License document size should not exceed 5MB.",
		TypeMessage: "License document must be PDF, JPG, JPEG, or PNG format.",
	}
	businessLogoRule = FileRule{
		MaxBytes:    2 * megabyte,
		Extensions:  []string{"jpg", "jpeg", "png", "gif"},
		SizeMessage: "Business logo size should not exceed 2MB.",
		TypeMessage: "Business logo must be JPG, JPEG, PNG, or GIF format.",
	}
	identityImageRule = FileRule{
		MaxBytes:    5 * megabyte,
		Extensions:  []string{"jpg", "jpeg", "png"},
		SizeMessage: "Document image size should not exceed 5MB.",
		TypeMessage: "Document image must be JPG, JPEG, or PNG format.",
	}
)

// Check returns a user-facing message, or "" when the file is acceptable
func (r FileRule) Check(f *models.FileUpload) string {
	if f.Size > r.MaxBytes {
		return r.SizeMessage
	}
	ext := storage.Extension(f.Filename)
	for _, e := range r.Extensions {
		if e == ext {
			return ""
		}
	}
	return r.TypeMessage
}

// ValidPhoneNumber reports whether s is an acceptable mobile or WhatsApp number
func ValidPhoneNumber(s string) bool {
	return phonePattern.MatchString(s)
}

// NormalizeTelegramUsername prefixes a missing "@"
func NormalizeTelegramUsername(s string) string {
	s = strings.TrimSpace(s)
	if s == "" || strings.HasPrefix(s, "@") {
		return s
	}
	return "@" + s
}

// ValidTelegramUsername checks an already-normalized username
func ValidTelegramUsername(s string) bool {
	return telegramPattern.MatchString(s)
}

// ValidFacebookPageURL accepts profile and page URLs on the facebook domains
func ValidFacebookPageURL(s string) bool {
	for _, p := range facebookPatterns {
		if p.MatchString(s) {
			return true
		}
	}
	return false
}

// ValidEmail checks the email format
func ValidEmail(s string) bool {
	return emailPattern.MatchString(s)
}

func required(fe FieldErrors, field, value string) {
	if strings.TrimSpace(value) == "" {
		fe.Add(field, "This field is required.")
	}
}

func maxLength(fe FieldErrors, field, value string, n int) {
	if len(value) > n {
		fe.Add(field, fmt.Sprintf("Ensure this field has no more than %d characters.", n))
	}
}
