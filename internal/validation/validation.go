// Package validation holds field validators shared by the services.
package validation

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"
)

var (
	emailRe = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)
	// E.164-style numbers, 9 to 15 digits with an optional leading plus.
	phoneRe = regexp.MustCompile(`^\+?1?\d{9,15}$`)
)

// Email checks basic email shape. Deliverability is out of scope.
func Email(v string) error {
	v = strings.TrimSpace(v)
	if v == "" {
		return fmt.Errorf("email is required")
	}
	if len(v) > 254 || !emailRe.MatchString(v) {
		return fmt.Errorf("invalid email format")
	}
	return nil
}

// Phone checks international phone number shape.
func Phone(v string) error {
	if v == "" {
		return fmt.Errorf("phone number is required")
	}
	if !phoneRe.MatchString(v) {
		return fmt.Errorf("invalid phone number format")
	}
	return nil
}

// Password enforces the minimum credential policy: at least 8 characters
// with at least one letter and one digit.
func Password(v string) error {
	if len(v) < 8 {
		return fmt.Errorf("password must be at least 8 characters")
	}
	var hasLetter, hasDigit bool
	for _, r := range v {
		switch {
		case unicode.IsLetter(r):
			hasLetter = true
		case unicode.IsDigit(r):
			hasDigit = true
		}
	}
	if !hasLetter || !hasDigit {
		return fmt.Errorf("password must contain at least one letter and one digit")
	}
	return nil
}

// Username checks length and allowed characters.
func Username(v string) error {
	v = strings.TrimSpace(v)
	if len(v) < 3 || len(v) > 50 {
		return fmt.Errorf("username must be between 3 and 50 characters")
	}
	for _, r := range v {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '_' && r != '.' && r != '-' {
			return fmt.Errorf("username may contain only letters, digits, '_', '.' and '-'")
		}
	}
	return nil
}
