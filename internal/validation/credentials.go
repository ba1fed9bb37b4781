// Package validation holds account credential rules shared by local
// registration, the admin CLI and the development admin bootstrap.
package validation

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

const (
	minPasswordLength = 12
	maxPasswordLength = 128
	maxEmailLength    = 254
	maxFullNameLength = 120
)

var (
	emailRegex    = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9\-]+(\.[a-zA-Z0-9\-]+)*\.[a-zA-Z]{2,}$`)
	fullNameRegex = regexp.MustCompile(`^[\p{L}][\p{L} .'\-]*[\p{L}.]$`)
)

// passwordClasses are the character classes a password must mix, in the
// order they are reported.
var passwordClasses = []struct {
	label string
	match func(r rune) bool
}{
	{"an uppercase letter", unicode.IsUpper},
	{"a lowercase letter", unicode.IsLower},
	{"a digit", func(r rune) bool { return r >= '0' && r <= '9' }},
	{"a symbol", func(r rune) bool { return strings.ContainsRune(passwordSymbols, r) }},
}

const passwordSymbols = `!@#$%^&*()_+-=[]{};':"\|,.<>/?~`

// ValidatePassword enforces length bounds and a mix of character classes.
// Every missing class is named in a single message.
func ValidatePassword(password string) error {
	n := utf8.RuneCountInString(password)
	if n < minPasswordLength {
		return fmt.Errorf("password must be at least %d characters long", minPasswordLength)
	}
	if n > maxPasswordLength {
		return fmt.Errorf("password must not exceed %d characters", maxPasswordLength)
	}

	var missing []string
	for _, class := range passwordClasses {
		if !strings.ContainsFunc(password, class.match) {
			missing = append(missing, class.label)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("password must also contain %s", strings.Join(missing, ", "))
	}
	return nil
}

// NormalizeEmail lowercases and trims an address so lookups are case-insensitive.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// ValidateEmail checks basic email format.
func ValidateEmail(email string) error {
	if len(email) > maxEmailLength {
		return fmt.Errorf("email must not exceed %d characters", maxEmailLength)
	}
	if !emailRegex.MatchString(email) {
		return fmt.Errorf("invalid email format")
	}
	return nil
}

// ValidateFullName accepts letters, spaces, apostrophes, dots and hyphens.
func ValidateFullName(name string) error {
	name = strings.TrimSpace(name)
	n := utf8.RuneCountInString(name)
	if n < 2 {
		return fmt.Errorf("full name must be at least 2 characters long")
	}
	if n > maxFullNameLength {
		return fmt.Errorf("full name must not exceed %d characters", maxFullNameLength)
	}
	if !fullNameRegex.MatchString(name) {
		return fmt.Errorf("full name can only contain letters, spaces, apostrophes, dots and hyphens")
	}
	return nil
}
