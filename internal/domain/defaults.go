package domain

import (
	"fmt"

	shared "github.com/wms-platform/location-directive-service/shared/pkg/domain"
)

const (
	// DefaultDirectivePriority is the priority of directives built by CreateDefaultDirective
	DefaultDirectivePriority = 100
	// SystemUser is recorded as creator of generated directives
	SystemUser = "system"
	// AccessibilityStandard is the accessibility level default directives require
	AccessibilityStandard = "STANDARD"
)

// DefaultConstraints returns the constraints a default directive gets for op
func DefaultConstraints(op shared.OperationType) []LocationConstraint {
	accessible := MustLocationConstraint(ConstraintAccessibility, string(OpEquals), StringValue(AccessibilityStandard))
	switch op {
	case shared.OperationPick:
		return []LocationConstraint{
			accessible,
			MustLocationConstraint(ConstraintInventoryAvailable, string(OpGreaterThan), IntValue(0)),
		}
	case shared.OperationPut:
		return []LocationConstraint{
			MustLocationConstraint(ConstraintCapacityRequirement, string(OpGreaterThan), NumberValue(0)),
			accessible,
		}
	case shared.OperationCount:
		return []LocationConstraint{accessible}
	default:
		return nil
	}
}

// CreateDefaultDirective builds a directive with sensible default constraints for op
func CreateDefaultDirective(op shared.OperationType, strategy LocationStrategy, opts ...DirectiveOption) (*LocationDirective, error) {
	opts = append([]DirectiveOption{
		WithCreatedBy(SystemUser),
		WithConstraints(DefaultConstraints(op)...),
	}, opts...)

	return NewLocationDirective(
		fmt.Sprintf("Default %s %s", op, strategy),
		fmt.Sprintf("Default directive for %s operations using %s strategy", op, strategy),
		op,
		strategy,
		DefaultDirectivePriority,
		opts...,
	)
}
