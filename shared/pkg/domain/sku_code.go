package domain

import (
	"errors"
	"strings"
)

// ErrInvalidSkuCode is returned when an empty item code is provided
var ErrInvalidSkuCode = errors.New("invalid sku code")

// SkuCode represents an immutable item identifier
type SkuCode struct {
	value string
}

// NewSkuCode creates a new SkuCode, trimming surrounding whitespace
func NewSkuCode(code string) (SkuCode, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return SkuCode{}, ErrInvalidSkuCode
	}
	return SkuCode{value: code}, nil
}

// MustSkuCode creates a SkuCode or panics if invalid (use for constants only)
func MustSkuCode(code string) SkuCode {
	sku, err := NewSkuCode(code)
	if err != nil {
		panic(err)
	}
	return sku
}

// String returns the item code
func (s SkuCode) String() string {
	return s.value
}

// IsZero reports whether the code is unset
func (s SkuCode) IsZero() bool {
	return s.value == ""
}

// Equals checks if two codes are equal
func (s SkuCode) Equals(other SkuCode) bool {
	return s.value == other.value
}
