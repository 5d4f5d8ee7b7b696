package errors

import (
	"strings"
	"unicode"
)

// ValidateDatasetName validates a dataset name before it is used as a storage
// key (a file name for the file backend, a key suffix for redis and mongo).
//
// The validation rules are intentionally conservative:
//   - No empty names
//   - No control characters
//   - No path separators or traversal sequences
//   - Maximum length of 128 characters
func ValidateDatasetName(name string) error {
	if name == "" {
		return New(ErrCodeInvalidInput, "dataset name cannot be empty")
	}

	if len(name) > 128 {
		return New(ErrCodeInvalidInput, "dataset name too long (max 128 characters)")
	}

	for _, r := range name {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidInput, "dataset name contains invalid control characters")
		}
	}

	for _, pattern := range []string{"..", "/", "\\", "\x00"} {
		if strings.Contains(name, pattern) {
			return New(ErrCodeInvalidInput, "dataset name contains invalid characters: %q", pattern)
		}
	}

	if strings.HasPrefix(name, ".") {
		return New(ErrCodeInvalidInput, "dataset name cannot start with a dot")
	}

	return nil
}

// ValidateTreeKey validates a tree key selected by a caller.
// Tree keys are free-form labels but must be printable and reasonably short.
func ValidateTreeKey(key string) error {
	if len(key) > 64 {
		return New(ErrCodeInvalidInput, "tree key too long (max 64 characters)")
	}
	for _, r := range key {
		if !unicode.IsPrint(r) {
			return New(ErrCodeInvalidInput, "tree key contains non-printable characters")
		}
	}
	return nil
}
