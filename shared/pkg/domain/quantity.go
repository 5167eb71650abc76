package domain

import (
	"errors"
	"fmt"
	"strconv"
)

// ErrInvalidQuantity is returned when a non-positive quantity is provided
var ErrInvalidQuantity = errors.New("invalid quantity")

// Quantity represents an immutable positive unit count
type Quantity struct {
	value int
}

// NewQuantity creates a new Quantity value object with validation
func NewQuantity(value int) (Quantity, error) {
	if value <= 0 {
		return Quantity{}, fmt.Errorf("%w: must be positive, got %d", ErrInvalidQuantity, value)
	}
	return Quantity{value: value}, nil
}

// MustQuantity creates a Quantity or panics if invalid (use for constants only)
func MustQuantity(value int) Quantity {
	q, err := NewQuantity(value)
	if err != nil {
		panic(err)
	}
	return q
}

// Value returns the unit count
func (q Quantity) Value() int {
	return q.value
}

// IsZero reports whether the quantity is unset
func (q Quantity) IsZero() bool {
	return q.value == 0
}

// Add returns the sum of two quantities
func (q Quantity) Add(other Quantity) Quantity {
	return Quantity{value: q.value + other.value}
}

// Subtract returns the difference, failing when the result would not be positive
func (q Quantity) Subtract(other Quantity) (Quantity, error) {
	return NewQuantity(q.value - other.value)
}

// Multiply returns the quantity scaled by factor
func (q Quantity) Multiply(factor int) (Quantity, error) {
	return NewQuantity(q.value * factor)
}

// String returns the string representation of the quantity
func (q Quantity) String() string {
	return strconv.Itoa(q.value)
}
