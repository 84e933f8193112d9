package errors

import (
	"math"
	"path/filepath"
	"strings"
	"unicode"
)

// ValidatePositive checks that a numeric setting is finite and strictly positive.
func ValidatePositive(name string, v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return Invalid("%s must be a finite number, got %v", name, v)
	}
	if v <= 0 {
		return Invalid("%s must be positive, got %v", name, v)
	}
	return nil
}

// ValidateVertexCount checks the lower bound shared by every regular polygon.
func ValidateVertexCount(n int) error {
	if n < 3 {
		return Invalid("vertex count must be at least 3, got %d", n)
	}
	return nil
}

// ValidateDimensions checks that a frame size is usable for rasterisation.
//
// Validation rules:
//   - Both sides must be positive
//   - Neither side may exceed maxSide pixels
func ValidateDimensions(width, height int) error {
	const maxSide = 16384
	if width <= 0 || height <= 0 {
		return Invalid("frame size must be positive, got %dx%d", width, height)
	}
	if width > maxSide || height > maxSide {
		return Invalid("frame size too large (max %d pixels per side), got %dx%d", maxSide, width, height)
	}
	return nil
}

// ValidateOutputDir validates an output directory path for safety.
// It rejects empty paths, control characters and traversal sequences.
func ValidateOutputDir(path string) error {
	if path == "" {
		return Invalid("output directory cannot be empty")
	}

	for _, r := range path {
		if r == '\x00' || unicode.IsControl(r) {
			return Invalid("output directory contains invalid characters")
		}
	}

	for _, part := range strings.Split(filepath.ToSlash(path), "/") {
		if part == ".." {
			return Invalid("output directory cannot contain path traversal sequences (..)")
		}
	}

	return nil
}
