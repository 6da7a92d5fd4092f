package errors

import (
	"regexp"
	"strings"
	"unicode"
)

// ValidateName validates a snapshot or window name for safety.
// Names become file names in the file store and keys in the other
// backends, so they are kept conservative:
//   - No empty names
//   - No control characters
//   - No path separators or traversal sequences
//   - Maximum length of 128 characters
func ValidateName(name string) error {
	if name == "" {
		return New(ErrCodeInvalidName, "name cannot be empty")
	}

	if len(name) > 128 {
		return New(ErrCodeInvalidName, "name too long (max 128 characters)")
	}

	for _, r := range name {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidName, "name contains invalid control characters")
		}
	}

	for _, pattern := range []string{"..", "/", "\\"} {
		if strings.Contains(name, pattern) {
			return New(ErrCodeInvalidName, "name contains invalid characters: %q", pattern)
		}
	}

	return nil
}

// ValidateTitle validates a window title. Titles are free text but must
// stay printable and short enough to draw.
func ValidateTitle(title string) error {
	if len(title) > 256 {
		return New(ErrCodeInvalidInput, "title too long (max 256 characters)")
	}
	for _, r := range title {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidInput, "title contains invalid control characters")
		}
	}
	return nil
}

// colorRegex matches #rgb and #rrggbb colors.
var colorRegex = regexp.MustCompile(`^#([0-9a-fA-F]{3}|[0-9a-fA-F]{6})$`)

// ValidateColor validates a hex color. The empty string is allowed and
// means "pick one".
func ValidateColor(color string) error {
	if color == "" || colorRegex.MatchString(color) {
		return nil
	}
	return New(ErrCodeInvalidInput, "invalid color %q (want #rgb or #rrggbb)", color)
}

// ValidateMongoURI validates a MongoDB connection string.
// It ensures the URI uses the mongodb or mongodb+srv scheme.
func ValidateMongoURI(uri string) error {
	if uri == "" {
		return New(ErrCodeInvalidConfig, "mongo URI cannot be empty")
	}
	if !strings.HasPrefix(uri, "mongodb://") && !strings.HasPrefix(uri, "mongodb+srv://") {
		return New(ErrCodeInvalidConfig, "mongo URI must use mongodb or mongodb+srv scheme")
	}
	return nil
}

// addrRegex matches host:port pairs.
var addrRegex = regexp.MustCompile(`^[A-Za-z0-9._-]*:[0-9]{1,5}$`)

// ValidateAddr validates a host:port network address such as a Redis
// endpoint or the HTTP listen address. The host may be empty.
func ValidateAddr(addr string) error {
	if !addrRegex.MatchString(addr) {
		return New(ErrCodeInvalidConfig, "invalid address %q (want host:port)", addr)
	}
	return nil
}
