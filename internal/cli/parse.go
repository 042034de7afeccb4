package cli

import (
	"math"
	"strconv"
	"strings"

	"github.com/lumenlab/lumen/pkg/errors"
)

// parsePositive parses a user-supplied numeric string into a strictly
// positive float. There is no fallback: an empty string, a parse failure,
// or a non-positive value all block the computation rather than being
// silently replaced with a default.
func parsePositive(name, raw string) (float64, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, errors.New(errors.ErrCodeInvalidInput, "%s is required", name)
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, errors.New(errors.ErrCodeInvalidInput, "%s must be a number, got %q", name, raw)
	}
	if math.IsNaN(v) || math.IsInf(v, 0) || v <= 0 {
		return 0, errors.New(errors.ErrCodeInvalidInput, "%s must be positive, got %q", name, raw)
	}
	return v, nil
}
