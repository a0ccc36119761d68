package errors

import (
	"strings"
	"unicode"
)

// MaxSceneIDLength bounds the length of scene identifiers.
const MaxSceneIDLength = 256

// ValidateSceneID checks that a scene id, or a hotspot target id, is a
// well-formed identifier:
//   - No empty ids
//   - No control characters or null bytes
//   - No leading or trailing whitespace
//   - Maximum length of MaxSceneIDLength bytes
//
// Whether the id resolves to a loaded scene is not checked here.
func ValidateSceneID(id string) error {
	if id == "" {
		return New(ErrCodeInvalidInput, "scene id cannot be empty")
	}

	if len(id) > MaxSceneIDLength {
		return New(ErrCodeInvalidInput, "scene id too long (max %d characters)", MaxSceneIDLength)
	}

	for _, r := range id {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidInput, "scene id contains invalid control characters")
		}
	}

	if strings.TrimSpace(id) != id {
		return New(ErrCodeInvalidInput, "scene id has leading or trailing whitespace: %q", id)
	}

	return nil
}

// ValidateDocumentPath validates a tour document path given on the command
// line or in a request.
//
// Validation rules:
//   - Path cannot be empty
//   - Maximum length of 4096 characters
//   - No null bytes or control characters
func ValidateDocumentPath(path string) error {
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
