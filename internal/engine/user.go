package engine

import (
	"net/mail"
	"strings"
	"unicode/utf8"

	"github.com/mmynk/roommates/internal/models"
)

const (
	maxUserNameLength = 32
	maxEmailLength    = 64
)

// NormalizeEmail lowercases and trims an address so lookups are
// case-insensitive.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// ValidateUser checks the account's profile fields.
func ValidateUser(u *models.User) error {
	if u.Email == "" {
		return invalidf("email", "is required")
	}
	if utf8.RuneCountInString(u.Email) > maxEmailLength {
		return invalidf("email", "must be at most %d characters", maxEmailLength)
	}
	if addr, err := mail.ParseAddress(u.Email); err != nil || addr.Address != u.Email {
		return invalidf("email", "is not a valid address")
	}

	for _, f := range []struct{ field, value string }{
		{"first_name", u.FirstName},
		{"last_name", u.LastName},
	} {
		if strings.TrimSpace(f.value) == "" {
			return invalidf(f.field, "is required")
		}
		if utf8.RuneCountInString(f.value) > maxUserNameLength {
			return invalidf(f.field, "must be at most %d characters", maxUserNameLength)
		}
	}
	return nil
}

// ValidateHousehold checks the household's name.
func ValidateHousehold(h *models.Household) error {
	if strings.TrimSpace(h.Name) == "" {
		return invalidf("name", "is required")
	}
	if utf8.RuneCountInString(h.Name) > maxNameLength {
		return invalidf("name", "must be at most %d characters", maxNameLength)
	}
	return nil
}
