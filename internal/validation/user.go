// Package validation provides input validation utilities
package validation

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"
)

const (
	MaxEmailLen     = 50
	MaxUserNameLen  = 20
	MinPasswordLen  = 6
	MaxPasswordLen  = 100
	MaxBioLen       = 500
	MaxPostLen      = 280
	MinSuggestQuery = 2
)

var (
	emailRegex      = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9\-]+(\.[a-zA-Z0-9\-]+)*\.[a-zA-Z]{2,}$`)
	loginIDStripper = regexp.MustCompile(`[^a-z0-9_-]`)
)

// ValidateEmail checks basic email format and length.
func ValidateEmail(email string) error {
	if strings.TrimSpace(email) == "" {
		return fmt.Errorf("email is required")
	}
	if len(email) > MaxEmailLen {
		return fmt.Errorf("email must not exceed %d characters", MaxEmailLen)
	}
	if !emailRegex.MatchString(email) {
		return fmt.Errorf("invalid email format")
	}
	return nil
}

// ValidateUserName checks the display name. Length is counted in characters, not bytes.
func ValidateUserName(name string) error {
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("user name is required")
	}
	if utf8.RuneCountInString(name) > MaxUserNameLen {
		return fmt.Errorf("user name must not exceed %d characters", MaxUserNameLen)
	}
	return nil
}

// ValidatePassword checks password length and that the confirmation matches.
func ValidatePassword(password, confirm string) error {
	if password == "" {
		return fmt.Errorf("password is required")
	}
	if len(password) < MinPasswordLen || len(password) > MaxPasswordLen {
		return fmt.Errorf("password must be between %d and %d characters", MinPasswordLen, MaxPasswordLen)
	}
	if password != confirm {
		return fmt.Errorf("passwords do not match")
	}
	return nil
}

// ValidateBio limits profile text.
func ValidateBio(bio string) error {
	if utf8.RuneCountInString(bio) > MaxBioLen {
		return fmt.Errorf("bio must not exceed %d characters", MaxBioLen)
	}
	return nil
}

// ValidatePostContent requires non-blank content within the post length limit.
func ValidatePostContent(content string) error {
	if strings.TrimSpace(content) == "" {
		return fmt.Errorf("content is required")
	}
	if utf8.RuneCountInString(content) > MaxPostLen {
		return fmt.Errorf("content must not exceed %d characters", MaxPostLen)
	}
	return nil
}

// LoginIDFromEmail derives a login id from the part of the address before '@':
// lowercased, keeping only letters, digits, underscores and hyphens.
func LoginIDFromEmail(email string) (string, error) {
	at := strings.Index(email, "@")
	if at < 0 {
		return "", fmt.Errorf("invalid email format")
	}
	id := loginIDStripper.ReplaceAllString(strings.ToLower(email[:at]), "")
	if id == "" {
		return "", fmt.Errorf("email local part has no usable characters for a login id")
	}
	return id, nil
}

var loginIDRegex = regexp.MustCompile(`^[a-z0-9_-]{1,50}$`)

// ValidateLoginID checks an explicitly chosen login id.
func ValidateLoginID(loginID string) error {
	if !loginIDRegex.MatchString(loginID) {
		return fmt.Errorf("login id must be 1-50 lowercase letters, numbers, underscores, or hyphens")
	}
	return nil
}
