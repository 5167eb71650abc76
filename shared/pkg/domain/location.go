package domain

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrInvalidLocation is returned when an invalid bin location value is provided
var ErrInvalidLocation = errors.New("invalid bin location")

const locationSeparator = "-"

// BinLocation represents an immutable physical slot in the warehouse
// Format: AISLE-RACK-LEVEL (e.g., "A1-01-1")
type BinLocation struct {
	aisle string
	rack  string
	level string
}

// NewBinLocation creates a new BinLocation value object with validation
func NewBinLocation(aisle, rack, level string) (BinLocation, error) {
	aisle = strings.TrimSpace(aisle)
	rack = strings.TrimSpace(rack)
	level = strings.TrimSpace(level)

	parts := [3][2]string{{"aisle", aisle}, {"rack", rack}, {"level", level}}
	for _, p := range parts {
		if p[1] == "" {
			return BinLocation{}, fmt.Errorf("%w: %s is required", ErrInvalidLocation, p[0])
		}
		if strings.Contains(p[1], locationSeparator) {
			return BinLocation{}, fmt.Errorf("%w: %s must not contain %q", ErrInvalidLocation, p[0], locationSeparator)
		}
	}

	return BinLocation{aisle: aisle, rack: rack, level: level}, nil
}

// ParseBinLocation parses the AISLE-RACK-LEVEL text form
func ParseBinLocation(s string) (BinLocation, error) {
	parts := strings.Split(strings.TrimSpace(s), locationSeparator)
	if len(parts) != 3 {
		return BinLocation{}, fmt.Errorf("%w: expected AISLE-RACK-LEVEL, got %q", ErrInvalidLocation, s)
	}
	return NewBinLocation(parts[0], parts[1], parts[2])
}

// MustBinLocation creates a BinLocation or panics if invalid (use for constants only)
func MustBinLocation(aisle, rack, level string) BinLocation {
	location, err := NewBinLocation(aisle, rack, level)
	if err != nil {
		panic(err)
	}
	return location
}

// Aisle returns the aisle component
func (l BinLocation) Aisle() string {
	return l.aisle
}

// Rack returns the rack component
func (l BinLocation) Rack() string {
	return l.rack
}

// Level returns the level component
func (l BinLocation) Level() string {
	return l.level
}

// RackNumber returns the rack as an integer when it is numeric
func (l BinLocation) RackNumber() (int, bool) {
	n, err := strconv.Atoi(l.rack)
	return n, err == nil
}

// LevelNumber returns the level as an integer when it is numeric
func (l BinLocation) LevelNumber() (int, bool) {
	n, err := strconv.Atoi(l.level)
	return n, err == nil
}

// IsZero reports whether the location was never initialised
func (l BinLocation) IsZero() bool {
	return l == BinLocation{}
}

// String returns the AISLE-RACK-LEVEL representation
func (l BinLocation) String() string {
	if l.IsZero() {
		return ""
	}
	return l.aisle + locationSeparator + l.rack + locationSeparator + l.level
}

// Equals checks if two locations are equal
func (l BinLocation) Equals(other BinLocation) bool {
	return l == other
}

// MarshalText implements encoding.TextMarshaler for JSON/BSON serialization
func (l BinLocation) MarshalText() ([]byte, error) {
	return []byte(l.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler for JSON/BSON deserialization
func (l *BinLocation) UnmarshalText(text []byte) error {
	location, err := ParseBinLocation(string(text))
	if err != nil {
		return err
	}
	*l = location
	return nil
}
