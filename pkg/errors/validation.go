package errors

import (
	"strings"
	"unicode"
)

// HashHexSize is the length of a hex-encoded object hash (SHA-1).
const HashHexSize = 40

// ValidateReferenceName validates a reference name such as "HEAD" or
// "refs/heads/main".
//
// The rules follow the subset of git's ref format that matters for lookups:
//   - No empty names
//   - No control characters, spaces, or any of ~ ^ : ? * [ \
//   - No ".." sequence, no "@{" sequence
//   - No leading or trailing "/", no "//", no trailing "." or ".lock"
//   - Maximum length of 1024 characters
func ValidateReferenceName(name string) error {
	if name == "" {
		return New(ErrCodeInvalidIdentifier, "reference name cannot be empty")
	}

	if len(name) > 1024 {
		return New(ErrCodeInvalidIdentifier, "reference name too long (max 1024 characters)")
	}

	for _, r := range name {
		if unicode.IsControl(r) || r == ' ' {
			return New(ErrCodeInvalidIdentifier, "reference name contains invalid characters: %q", name)
		}
	}

	if strings.ContainsAny(name, "~^:?*[\\") {
		return New(ErrCodeInvalidIdentifier, "reference name contains invalid characters: %q", name)
	}

	for _, pattern := range []string{"..", "@{", "//"} {
		if strings.Contains(name, pattern) {
			return New(ErrCodeInvalidIdentifier, "reference name contains %q: %q", pattern, name)
		}
	}

	if strings.HasPrefix(name, "/") || strings.HasSuffix(name, "/") ||
		strings.HasSuffix(name, ".") || strings.HasSuffix(name, ".lock") {
		return New(ErrCodeInvalidIdentifier, "malformed reference name: %q", name)
	}

	return nil
}

// ValidateHash validates a hex-encoded object hash of the store's native
// length. Both upper and lower case hex digits are accepted.
func ValidateHash(hash string) error {
	if len(hash) != HashHexSize {
		return New(ErrCodeInvalidIdentifier, "object hash must be %d hex characters, got %d", HashHexSize, len(hash))
	}
	for _, r := range hash {
		if !isHexDigit(r) {
			return New(ErrCodeInvalidIdentifier, "object hash contains non-hex character %q", r)
		}
	}
	return nil
}

func isHexDigit(r rune) bool {
	return ('0' <= r && r <= '9') || ('a' <= r && r <= 'f') || ('A' <= r && r <= 'F')
}

// ValidatePath validates a repository path given on the command line or in
// the configuration file.
//
// Validation rules:
//   - Path cannot be empty
//   - Maximum length of 4096 characters
//   - No null bytes or control characters
func ValidatePath(path string) error {
	if path == "" {
		return New(ErrCodeInvalidPath, "path cannot be empty")
	}

	const maxPathLength = 4096
	if len(path) > maxPathLength {
		return New(ErrCodeInvalidPath, "path too long (max %d characters)", maxPathLength)
	}

	for _, r := range path {
		if r == '\x00' || unicode.IsControl(r) {
			return New(ErrCodeInvalidPath, "path contains invalid characters")
		}
	}

	return nil
}
