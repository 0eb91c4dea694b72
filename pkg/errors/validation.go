package errors

import (
	"math"
	"unicode"

	"github.com/google/uuid"
)

// MaxNameLength bounds record and series entry names accepted from untrusted input.
const MaxNameLength = 256

// ValidateName validates a record or series entry name received from an
// untrusted source such as an HTTP request body.
//
// The rules are conservative:
//   - No empty names
//   - No control characters or null bytes
//   - Maximum length of [MaxNameLength] bytes
func ValidateName(name string) error {
	if name == "" {
		return New(ErrCodeInvalidRecord, "name cannot be empty")
	}

	if len(name) > MaxNameLength {
		return New(ErrCodeInvalidRecord, "name too long (max %d characters)", MaxNameLength)
	}

	for _, r := range name {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidRecord, "name %q contains control characters", name)
		}
	}

	return nil
}

// ValidateViewport checks the geometry inputs of a render pass.
// Width and bar height must be positive finite numbers and padding must
// lie in [0, 1).
func ValidateViewport(width, barHeight, padding float64) error {
	if !finite(width) || width <= 0 {
		return New(ErrCodeInvalidViewport, "width must be a positive number, got %v", width)
	}
	if !finite(barHeight) || barHeight <= 0 {
		return New(ErrCodeInvalidViewport, "bar height must be a positive number, got %v", barHeight)
	}
	if !finite(padding) || padding < 0 || padding >= 1 {
		return New(ErrCodeInvalidViewport, "padding must be in [0, 1), got %v", padding)
	}
	return nil
}

// ValidateChartID validates a chart handle identifier.
// Handles are UUIDs; anything else is rejected before it reaches a cache key.
func ValidateChartID(id string) error {
	if id == "" {
		return New(ErrCodeInvalidInput, "chart id cannot be empty")
	}
	if _, err := uuid.Parse(id); err != nil {
		return New(ErrCodeInvalidInput, "invalid chart id %q", id)
	}
	return nil
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
