// Package domain holds the identifier types shared across modules.
package domain

import (
	"strings"
	"unicode"
	"unicode/utf8"

	dErrors "rollcall/pkg/domain-errors"
)

// MaxUserIDLength bounds user identifiers in runes.
const MaxUserIDLength = 64

// UserID is a case-normalized (lowercase) identity key.
type UserID string

func (id UserID) String() string { return string(id) }

// IsNil reports whether the ID is empty.
func (id UserID) IsNil() bool { return id == "" }

// ParseUserID trims and lowercases raw and rejects values that cannot be a
// directory key: empty, non-UTF-8, over-long, or containing whitespace,
// control characters or a path separator.
func ParseUserID(raw string) (UserID, error) {
	if !utf8.ValidString(raw) {
		return "", dErrors.New(dErrors.CodeInvalidInput, "user id must be valid UTF-8")
	}
	normalized := strings.ToLower(strings.TrimSpace(raw))
	if normalized == "" {
		return "", dErrors.New(dErrors.CodeInvalidInput, "user id is required")
	}
	if utf8.RuneCountInString(normalized) > MaxUserIDLength {
		return "", dErrors.New(dErrors.CodeInvalidInput, "user id is too long")
	}
	for _, r := range normalized {
		if unicode.IsSpace(r) || unicode.IsControl(r) || r == '/' {
			return "", dErrors.New(dErrors.CodeInvalidInput, "user id contains invalid characters")
		}
	}
	return UserID(normalized), nil
}
