package security

import (
	"errors"
	"strings"
	"unicode"
	"unicode/utf8"
)

const (
	// MaxNameFilterLength defines the maximum allowed length for name filters
	MaxNameFilterLength = 100
)

var (
	errNameFilterTooLong = errors.New("name filter too long")
	errNameFilterInvalid = errors.New("name filter contains invalid characters")
)

// ValidateNameFilter trims a name filter taken from a query string and rejects
// values that cannot be a stored name: overly long input, invalid UTF-8 and
// control or markup characters.
func ValidateNameFilter(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", nil
	}

	if utf8.RuneCountInString(name) > MaxNameFilterLength {
		return "", errNameFilterTooLong
	}

	if !utf8.ValidString(name) {
		return "", errNameFilterInvalid
	}

	for _, char := range name {
		if !isValidNameChar(char) {
			return "", errNameFilterInvalid
		}
	}

	return name, nil
}

// isValidNameChar checks if a character may appear in a person or company name
func isValidNameChar(char rune) bool {
	if unicode.IsControl(char) {
		return false
	}
	switch char {
	case '<', '>', '\\', '`', ';':
		return false
	}
	return unicode.IsPrint(char)
}
