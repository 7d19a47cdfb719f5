package storage

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/google/uuid"
)

var (
	invalidFilenameChars = regexp.MustCompile(`[<>:"/\\|?*]`)
	controlChars         = regexp.MustCompile(`[\x00-\x1f\x80-\x9f]`)
)

const maxNameLength = 100

// SanitizeFilename makes an uploaded filename safe to use as an object key segment
func SanitizeFilename(filename string) string {
	sanitized := invalidFilenameChars.ReplaceAllString(filename, "_")
	sanitized = controlChars.ReplaceAllString(sanitized, "")
	sanitized = strings.ReplaceAll(sanitized, " ", "_")

	sanitized = strings.TrimSpace(sanitized)
	sanitized = strings.Trim(sanitized, ".")
	if sanitized == "" {
		sanitized = "unnamed_file"
	}

	ext := strings.ToLower(filepath.Ext(sanitized))
	name := strings.TrimSuffix(sanitized, filepath.Ext(sanitized))
	if len(name) > maxNameLength {
		name = name[:maxNameLength]
	}
	return name + ext
}

// Extension returns the lowercase extension without the dot
func Extension(filename string) string {
	return strings.TrimPrefix(strings.ToLower(filepath.Ext(filename)), ".")
}

var contentTypes = map[string]string{
	"jpg":  "image/jpeg",
	"jpeg": "image/jpeg",
	"png":  "image/png",
	"gif":  "image/gif",
	"pdf":  "application/pdf",
}

// DetectContentType maps the filename extension to a MIME type
func DetectContentType(filename string) string {
	if ct, ok := contentTypes[Extension(filename)]; ok {
		return ct
	}
	return "application/octet-stream"
}

// objectName prefixes the sanitized filename with a random token so a
// resubmitted file never reuses the key of one a saved record points to
func objectName(filename string) string {
	return fmt.Sprintf("%s_%s", uuid.NewString(), SanitizeFilename(filename))
}

// LicensePath is the object path of a business license document
func LicensePath(profileID uuid.UUID, filename string) string {
	return fmt.Sprintf("licenses/%s/%s", profileID, objectName(filename))
}

// LogoPath is the object path of a business logo
func LogoPath(profileID uuid.UUID, filename string) string {
	return fmt.Sprintf("business_logos/%s/%s", profileID, objectName(filename))
}

// IdentityDocumentPath is the object path of an identity document image; side is front or back
func IdentityDocumentPath(profileID uuid.UUID, side, filename string) string {
	return fmt.Sprintf("identity_documents/%s/%s_%s", profileID, side, objectName(filename))
}
