package errors

import (
	"math"
	"strings"
)

// ValidatePositive validates that a named numeric input is a finite value
// strictly greater than zero. Lighting inputs (dimensions, illuminance,
// luminous output) must never be zero, negative, NaN, or infinite: silently
// substituting a default would misrepresent the lighting requirements, so
// callers surface this error and re-prompt instead.
func ValidatePositive(name string, v float64) error {
	if math.IsNaN(v) {
		return New(ErrCodeInvalidInput, "%s must be a number", name)
	}
	if math.IsInf(v, 0) {
		return New(ErrCodeInvalidInput, "%s must be finite", name)
	}
	if v <= 0 {
		return New(ErrCodeInvalidInput, "%s must be positive, got %g", name, v)
	}
	return nil
}

// ValidateCount validates that a fixture count is at least one.
func ValidateCount(name string, n int) error {
	if n < 1 {
		return New(ErrCodeInvalidInput, "%s must be at least 1, got %d", name, n)
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

// ValidateSessionID validates a session identifier for storage safety.
// IDs are generated as UUIDs but may arrive over the wire, so reject
// anything that could escape a key namespace or a file path.
func ValidateSessionID(id string) error {
	if id == "" {
		return New(ErrCodeInvalidInput, "session id cannot be empty")
	}
	if len(id) > 64 {
		return New(ErrCodeInvalidInput, "session id too long (max 64 characters)")
	}
	for _, r := range id {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		case r == '-' || r == '_':
		default:
			return New(ErrCodeInvalidInput, "session id contains invalid character %q", r)
		}
	}
	return nil
}
