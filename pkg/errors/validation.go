package errors

import (
	"path/filepath"
	"strings"
	"unicode"
)

// MaxNameLength bounds a single candidate mod name.
const MaxNameLength = 256

// ValidateName validates one candidate mod name from an input list.
//
// Names are free text sent to the catalog search, so the rules only reject
// what can never be a name: empty strings, control characters and
// over-long lines.
func ValidateName(name string) error {
	if strings.TrimSpace(name) == "" {
		return New(ErrCodeInvalidName, "mod name cannot be empty")
	}
	if len(name) > MaxNameLength {
		return New(ErrCodeInvalidName, "mod name too long (max %d characters)", MaxNameLength)
	}
	for _, r := range name {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidName, "mod name contains invalid control characters")
		}
	}
	return nil
}

// ValidateNames validates a whole input list. An empty list is an error.
func ValidateNames(names []string) error {
	if len(names) == 0 {
		return New(ErrCodeInvalidInput, "no mod names given")
	}
	for _, n := range names {
		if err := ValidateName(n); err != nil {
			return err
		}
	}
	return nil
}

// ValidateGameVersion validates a target game version such as "1.20.1".
// The catalog accepts free-form versions; only blanks and whitespace are
// rejected.
func ValidateGameVersion(v string) error {
	if v == "" {
		return New(ErrCodeInvalidVersion, "game version cannot be empty")
	}
	if strings.ContainsFunc(v, unicode.IsSpace) {
		return New(ErrCodeInvalidVersion, "game version %q contains whitespace", v)
	}
	return nil
}

// ValidateDestination validates a download destination directory.
//
// Validation rules:
//   - Path cannot be empty
//   - No null bytes or control characters
//   - Must not name a filesystem root
func ValidateDestination(path string) error {
	if strings.TrimSpace(path) == "" {
		return New(ErrCodeInvalidPath, "destination cannot be empty")
	}
	for _, r := range path {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidPath, "destination contains invalid characters")
		}
	}
	clean := filepath.Clean(path)
	if clean == string(filepath.Separator) || clean == filepath.VolumeName(clean)+string(filepath.Separator) {
		return New(ErrCodeInvalidPath, "destination cannot be a filesystem root")
	}
	return nil
}

// ValidateFilename validates a file name reported by the catalog before it
// is joined onto the destination directory.
func ValidateFilename(name string) error {
	if name == "" {
		return New(ErrCodeInvalidPath, "filename cannot be empty")
	}
	if strings.ContainsAny(name, "/\\") || name == "." || name == ".." {
		return New(ErrCodeInvalidPath, "filename %q must not contain path components", name)
	}
	for _, r := range name {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidPath, "filename contains invalid characters")
		}
	}
	return nil
}

// ValidateURL validates a URL string for safety.
// It ensures the URL has a safe scheme (http or https).
func ValidateURL(rawURL string) error {
	if rawURL == "" {
		return New(ErrCodeInvalidInput, "URL cannot be empty")
	}

	// Simple scheme validation without full URL parsing
	if !strings.HasPrefix(rawURL, "http://") && !strings.HasPrefix(rawURL, "https://") {
		return New(ErrCodeInvalidInput, "URL must use http or https scheme")
	}

	return nil
}
