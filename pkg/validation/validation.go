package validation

import (
	"path/filepath"
	"regexp"
	"strings"
)

var categoryRegex = regexp.MustCompile(`^[a-z][a-z0-9_]{1,30}$`)

// ValidateBrandName checks the required brand field: non-empty after
// trimming and short enough to fit catalog typography.
func ValidateBrandName(name string) bool {
	name = strings.TrimSpace(name)
	return name != "" && len(name) <= 80
}

// ValidateCategory validates a category tag (e.g. "teen_boy", "infant").
func ValidateCategory(category string) bool {
	return categoryRegex.MatchString(strings.TrimSpace(category))
}

// SanitizeString removes potentially harmful characters
func SanitizeString(input string) string {
	// Basic sanitization
	input = strings.TrimSpace(input)
	// Remove null bytes
	input = strings.ReplaceAll(input, "\x00", "")
	return input
}

// SanitizeFilename strips any directory components and null bytes from an
// uploaded filename so it can be stored safely in a metadata record.
func SanitizeFilename(name string) string {
	name = SanitizeString(name)
	// normalize Windows-style separators before stripping the path
	name = strings.ReplaceAll(name, `\`, "/")
	name = filepath.Base(name)
	if name == "." || name == string(filepath.Separator) {
		return ""
	}
	return name
}
