package errors

import (
	"math"
	"strings"
	"unicode"
)

// maxNodeNameLength bounds node names read from network and alignment files.
const maxNodeNameLength = 512

// ValidateNodeName validates a node name taken from a network or alignment file.
//
// Names are whitespace-delimited tokens in the input formats, so the rules are:
//   - No empty names
//   - No whitespace or control characters
//   - No "::" separator (reserved for displaying merged node identities)
//   - Maximum length of 512 characters
func ValidateNodeName(name string) error {
	if name == "" {
		return New(ErrCodeInvalidNetwork, "node name cannot be empty")
	}
	if len(name) > maxNodeNameLength {
		return New(ErrCodeInvalidNetwork, "node name too long (max %d characters)", maxNodeNameLength)
	}
	for _, r := range name {
		if unicode.IsSpace(r) || unicode.IsControl(r) {
			return New(ErrCodeInvalidNetwork, "node name %q contains whitespace or control characters", name)
		}
	}
	if strings.Contains(name, "::") {
		return New(ErrCodeInvalidNetwork, "node name %q contains reserved separator \"::\"", name)
	}
	return nil
}

// ValidatePath validates an input or output file path supplied by a user.
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

// ValidateThreshold checks that a Jaccard similarity threshold lies in [0, 1].
func ValidateThreshold(v float64) error {
	if math.IsNaN(v) || v < 0 || v > 1 {
		return New(ErrCodeInvalidInput, "jaccard threshold must be within [0, 1], got %v", v)
	}
	return nil
}
