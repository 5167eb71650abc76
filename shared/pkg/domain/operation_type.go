package domain

import (
	"errors"
	"strings"
)

// ErrInvalidOperationType is returned when an unknown operation type is provided
var ErrInvalidOperationType = errors.New("invalid operation type")

// OperationType represents the kind of warehouse work a location is requested for
type OperationType string

const (
	OperationPick      OperationType = "pick"
	OperationPut       OperationType = "put"
	OperationMove      OperationType = "move"
	OperationCount     OperationType = "count"
	OperationPack      OperationType = "pack"
	OperationReplenish OperationType = "replenish"
)

var operationDescriptions = map[OperationType]string{
	OperationPick:      "Pick items from location",
	OperationPut:       "Put items into location",
	OperationMove:      "Move items between locations",
	OperationCount:     "Count items at location",
	OperationPack:      "Pack items for shipment",
	OperationReplenish: "Replenish pick locations from reserve",
}

// ParseOperationType parses a case-insensitive operation type token
func ParseOperationType(s string) (OperationType, error) {
	op := OperationType(strings.ToLower(strings.TrimSpace(s)))
	if !op.IsValid() {
		return "", ErrInvalidOperationType
	}
	return op, nil
}

// AllOperationTypes returns every known operation type
func AllOperationTypes() []OperationType {
	return []OperationType{
		OperationPick, OperationPut, OperationMove,
		OperationCount, OperationPack, OperationReplenish,
	}
}

// IsValid checks if the operation type is valid
func (o OperationType) IsValid() bool {
	_, ok := operationDescriptions[o]
	return ok
}

// Description returns a human readable description
func (o OperationType) Description() string {
	return operationDescriptions[o]
}

// String returns the string representation of the operation type
func (o OperationType) String() string {
	return string(o)
}
