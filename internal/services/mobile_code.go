package services

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"regexp"
	"strings"
)

var (
	mobileCodeSpace   = big.NewInt(1_000_000)
	mobileCodePattern = regexp.MustCompile(`^\d{6}$`)
)

// newMobileCode returns six random digits, zero padded
func newMobileCode() (string, error) {
	n, err := rand.Int(rand.Reader, mobileCodeSpace)
	if err != nil {
		return "", fmt.Errorf("failed to generate mobile code: %w", err)
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}

// cleanMobileCode drops the spaces and dashes people type into codes
func cleanMobileCode(code string) string {
	return strings.Map(func(r rune) rune {
		if r == ' ' || r == '-' {
			return -1
		}
		return r
	}, strings.TrimSpace(code))
}
