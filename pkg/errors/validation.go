package errors

import (
	"path/filepath"
	"strings"
	"unicode"
)

// ValidateAssetPath validates an image reference taken from a deck.
// Remote URLs and data URIs are not supported by the local image source, and
// relative paths must stay inside the deck directory.
//
// Validation rules:
//   - Reference cannot be empty
//   - Maximum length of 1024 characters
//   - No null bytes or control characters
//   - No URL schemes (http, https, data, file)
//   - No path traversal sequences (..) in relative references
func ValidateAssetPath(ref string) error {
	if ref == "" {
		return New(ErrCodeInvalidPath, "asset path cannot be empty")
	}

	const maxPathLength = 1024
	if len(ref) > maxPathLength {
		return New(ErrCodeInvalidPath, "asset path too long (max %d characters)", maxPathLength)
	}

	for _, r := range ref {
		if r == '\x00' || unicode.IsControl(r) {
			return New(ErrCodeInvalidPath, "asset path contains invalid characters")
		}
	}

	lower := strings.ToLower(ref)
	for _, scheme := range []string{"http://", "https://", "data:", "file:"} {
		if strings.HasPrefix(lower, scheme) {
			return New(ErrCodeUnsupported, "asset scheme not supported: %q", scheme)
		}
	}

	if filepath.IsAbs(ref) {
		return nil
	}
	for _, part := range strings.FieldsFunc(ref, func(r rune) bool { return r == '/' || r == '\\' }) {
		if part == ".." {
			return New(ErrCodeInvalidPath, "asset path cannot contain path traversal sequences (..)")
		}
	}
	return nil
}

// ValidateSlideSize rejects viewport sizes that cannot be laid out.
func ValidateSlideSize(width, height float64) error {
	if width <= 0 || height <= 0 {
		return New(ErrCodeInvalidInput, "slide size must be positive, got %gx%g", width, height)
	}
	const maxEdge = 100000
	if width > maxEdge || height > maxEdge {
		return New(ErrCodeInvalidInput, "slide size too large: %gx%g (max %d)", width, height, maxEdge)
	}
	return nil
}
