// Package validators checks task titles and descriptions.
//
// A token is a run of 1 to 16 characters drawn from a single class: Latin
// letters, Cyrillic letters (including Ё/ё) or digits. Tokens are separated by
// exactly one whitespace character; surrounding whitespace is ignored.
package validators

import (
	"regexp"
	"strings"

	apperrors "todo-list.com/todo-list/internal/errors"
)

const token = `(?:[A-Za-z]{1,16}|[А-Яа-яЁё]{1,16}|[0-9]{1,16})`

var (
	titlePattern       = regexp.MustCompile(`^` + token + `(?:\s` + token + `)+$`)
	descriptionPattern = regexp.MustCompile(`^` + token + `(?:\s` + token + `)*$`)
	numericToken       = regexp.MustCompile(`^[0-9]+$`)
)

// ValidateTitle reports whether title has at least two valid tokens and at
// least one of them is not purely numeric.
func ValidateTitle(title string) bool {
	trimmed := strings.TrimSpace(title)
	if trimmed == "" {
		return false
	}
	if !titlePattern.MatchString(trimmed) {
		return false
	}

	for _, word := range strings.Fields(trimmed) {
		if !numericToken.MatchString(word) {
			return true
		}
	}
	return false
}

// ValidateDescription reports whether description has at least one valid token
// and differs from title after trimming both.
func ValidateDescription(description, title string) bool {
	trimmed := strings.TrimSpace(description)
	if trimmed == "" {
		return false
	}
	if !descriptionPattern.MatchString(trimmed) {
		return false
	}
	return trimmed != strings.TrimSpace(title)
}

// Validate runs both checks and returns the exception for the first failure.
func Validate(title, description string) error {
	if !ValidateTitle(title) {
		return apperrors.ErrInvalidTitle
	}
	if !ValidateDescription(description, title) {
		return apperrors.ErrInvalidDescription
	}
	return nil
}
