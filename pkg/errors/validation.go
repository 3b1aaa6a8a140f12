package errors

import (
	"strings"
	"unicode"

	"github.com/google/uuid"
)

// Limits applied to path lists arriving from outside the process.
const (
	MaxPathLength = 1024
	MaxPathCount  = 50_000
)

// ValidatePathList checks a raw path list before it reaches the layout
// engine. The engine tolerates any string, so this only guards against
// inputs that are too large to lay out or that carry control characters:
//   - At most MaxPathCount entries
//   - No entry longer than MaxPathLength bytes
//   - No null bytes or control characters
//
// Blank and separator-only entries are allowed here; normalization drops them.
func ValidatePathList(paths []string) error {
	if len(paths) > MaxPathCount {
		return New(ErrCodeInvalidInput, "too many paths: %d (max %d)", len(paths), MaxPathCount)
	}
	for i, p := range paths {
		if err := ValidatePath(p); err != nil {
			return Wrap(ErrCodeInvalidPath, err, "path %d", i)
		}
	}
	return nil
}

// ValidatePath validates a single raw tree path.
func ValidatePath(path string) error {
	if len(path) > MaxPathLength {
		return New(ErrCodeInvalidPath, "path too long (max %d characters)", MaxPathLength)
	}

	for _, r := range path {
		if unicode.IsControl(r) && r != '\t' {
			return New(ErrCodeInvalidPath, "path contains invalid control characters")
		}
	}
	return nil
}

// ValidateSessionID checks that id is a canonical UUID string.
func ValidateSessionID(id string) error {
	if id == "" {
		return New(ErrCodeInvalidInput, "session id cannot be empty")
	}
	if _, err := uuid.Parse(id); err != nil {
		return Wrap(ErrCodeInvalidInput, err, "invalid session id %q", id)
	}
	return nil
}

// ValidateProjectID validates a project identifier. Project ids become file
// names in the file store, so they are restricted to a safe alphabet.
func ValidateProjectID(id string) error {
	if id == "" {
		return New(ErrCodeInvalidInput, "project id cannot be empty")
	}
	if len(id) > 128 {
		return New(ErrCodeInvalidInput, "project id too long (max 128 characters)")
	}
	if strings.HasPrefix(id, ".") {
		return New(ErrCodeInvalidInput, "project id cannot start with a dot")
	}
	for _, r := range id {
		if !(r == '-' || r == '_' || r == '.' || r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r))) {
			return New(ErrCodeInvalidInput, "project id contains invalid character %q", r)
		}
	}
	return nil
}
