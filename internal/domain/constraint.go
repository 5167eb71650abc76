package domain

import (
	"errors"
	"fmt"
	"math"
	"strings"
)

// ErrInvalidConstraint is returned when a constraint is missing its type, operator or value
var ErrInvalidConstraint = errors.New("invalid location constraint")

// Operator is a normalised comparison token
type Operator string

const (
	OpEquals       Operator = "equals"
	OpNotEquals    Operator = "not_equals"
	OpIn           Operator = "in"
	OpGreaterThan  Operator = "gt"
	OpGreaterEqual Operator = "gte"
	OpLessThan     Operator = "lt"
	OpLessEqual    Operator = "lte"
)

var operatorAliases = map[string]Operator{
	"eq":            OpEquals,
	"ne":            OpNotEquals,
	"greater_than":  OpGreaterThan,
	"greater_equal": OpGreaterEqual,
	"less_than":     OpLessThan,
	"less_equal":    OpLessEqual,
}

// NormalizeOperator lower-cases an operator token and resolves aliases
func NormalizeOperator(op string) Operator {
	op = strings.ToLower(strings.TrimSpace(op))
	if alias, ok := operatorAliases[op]; ok {
		return alias
	}
	return Operator(op)
}

// ParamTolerance is the temperature tolerance parameter
const ParamTolerance = "tolerance"

// LocationConstraint is a single typed predicate over a LocationContext
type LocationConstraint struct {
	constraintType ConstraintType
	operator       Operator
	value          Value
	parameters     Attributes
}

// NewLocationConstraint creates a constraint. Unknown types are accepted and evaluate true.
func NewLocationConstraint(constraintType ConstraintType, operator string, value Value, parameters Attributes) (LocationConstraint, error) {
	if strings.TrimSpace(string(constraintType)) == "" {
		return LocationConstraint{}, fmt.Errorf("%w: type is required", ErrInvalidConstraint)
	}
	op := NormalizeOperator(operator)
	if op == "" {
		return LocationConstraint{}, fmt.Errorf("%w: operator is required", ErrInvalidConstraint)
	}
	if value.IsNull() {
		return LocationConstraint{}, fmt.Errorf("%w: value is required", ErrInvalidConstraint)
	}
	return LocationConstraint{
		constraintType: constraintType,
		operator:       op,
		value:          value,
		parameters:     parameters.Clone(),
	}, nil
}

// MustLocationConstraint creates a constraint or panics (use for constants only)
func MustLocationConstraint(constraintType ConstraintType, operator string, value Value) LocationConstraint {
	c, err := NewLocationConstraint(constraintType, operator, value, nil)
	if err != nil {
		panic(err)
	}
	return c
}

// Type returns the constraint type
func (c LocationConstraint) Type() ConstraintType {
	return c.constraintType
}

// Operator returns the normalised operator
func (c LocationConstraint) Operator() Operator {
	return c.operator
}

// Value returns the comparison value
func (c LocationConstraint) Value() Value {
	return c.value
}

// Parameters returns a copy of the extra parameters
func (c LocationConstraint) Parameters() Attributes {
	return c.parameters.Clone()
}

// Parameter returns a single extra parameter
func (c LocationConstraint) Parameter(key string) (Value, bool) {
	return c.parameters.Get(key)
}

// Equals compares type, operator, value and parameters
func (c LocationConstraint) Equals(other LocationConstraint) bool {
	if c.constraintType != other.constraintType || c.operator != other.operator || c.value != other.value {
		return false
	}
	if len(c.parameters) != len(other.parameters) {
		return false
	}
	for k, v := range c.parameters {
		if ov, ok := other.parameters[k]; !ok || ov != v {
			return false
		}
	}
	return true
}

// String renders the constraint for violation messages
func (c LocationConstraint) String() string {
	return fmt.Sprintf("%s %s %s", c.constraintType, c.operator, c.value)
}

// Evaluate checks the constraint against ctx. It never panics: missing or
// non-coercible data fails the constraint.
func (c LocationConstraint) Evaluate(ctx LocationContext) bool {
	switch c.constraintType {
	case ConstraintZoneRestriction:
		return c.compareText(ctx.Zone())
	case ConstraintCapacityRequirement:
		return c.compareNumber(ctx.AvailableCapacity())
	case ConstraintAccessibility:
		return c.compareText(ctx.Accessibility())
	case ConstraintEquipment:
		return c.evaluateEquipment(ctx)
	case ConstraintSafetyRestriction:
		return c.compareText(ctx.SafetyLevel())
	case ConstraintTemperatureRange:
		return c.evaluateTemperature(ctx)
	case ConstraintHazmatCompatibility:
		return c.evaluateHazmat(ctx)
	case ConstraintInventoryAvailable:
		return c.evaluateInventory(ctx)
	case ConstraintHeightRestriction:
		return c.compareNumber(ctx.MaxHeight())
	case ConstraintWeightRestriction:
		return c.compareNumber(ctx.MaxWeight())
	default:
		// no comparison defined for this type
		return true
	}
}

func (c LocationConstraint) compareText(actual string, ok bool) bool {
	if !ok {
		return false
	}
	required, ok := c.value.AsString()
	if !ok {
		return false
	}
	switch c.operator {
	case OpEquals:
		return actual == required
	case OpNotEquals:
		return actual != required
	case OpIn:
		return listContains(required, actual)
	default:
		return false
	}
}

func (c LocationConstraint) compareNumber(actual float64, ok bool) bool {
	if !ok {
		return false
	}
	required, ok := c.value.AsFloat()
	if !ok {
		return false
	}
	return compareOrdered(c.operator, actual, required)
}

func (c LocationConstraint) evaluateInventory(ctx LocationContext) bool {
	actual, ok := ctx.AvailableInventory()
	if !ok {
		return false
	}
	required, ok := c.value.AsInt()
	if !ok {
		return false
	}
	return compareOrdered(c.operator, actual, required)
}

func (c LocationConstraint) evaluateEquipment(ctx LocationContext) bool {
	required, ok := c.value.AsString()
	if !ok {
		return false
	}
	hasAny := false
	for _, name := range strings.Split(required, ",") {
		if ctx.HasEquipment(name) {
			hasAny = true
			break
		}
	}
	switch c.operator {
	case OpEquals, OpIn:
		return hasAny
	case OpNotEquals:
		return !hasAny
	default:
		return false
	}
}

func (c LocationConstraint) evaluateTemperature(ctx LocationContext) bool {
	actual, ok := ctx.Temperature()
	if !ok {
		return false
	}
	required, ok := c.value.AsFloat()
	if !ok {
		return false
	}
	if c.operator != OpEquals {
		if c.operator == OpNotEquals {
			return false
		}
		return compareOrdered(c.operator, actual, required)
	}
	tolerance := 0.0
	if v, ok := c.parameters.GetFloat(ParamTolerance); ok {
		tolerance = math.Abs(v)
	}
	return math.Abs(actual-required) <= tolerance
}

func (c LocationConstraint) evaluateHazmat(ctx LocationContext) bool {
	actual, ok := ctx.HazmatCompatible()
	if !ok {
		return false
	}
	required, ok := c.value.AsBool()
	if !ok {
		return false
	}
	switch c.operator {
	case OpEquals:
		return actual == required
	case OpNotEquals:
		return actual != required
	default:
		return false
	}
}

func compareOrdered[T int | float64](op Operator, actual, required T) bool {
	switch op {
	case OpGreaterThan:
		return actual > required
	case OpGreaterEqual:
		return actual >= required
	case OpLessThan:
		return actual < required
	case OpLessEqual:
		return actual <= required
	case OpEquals:
		return actual == required
	case OpNotEquals:
		return actual != required
	default:
		return false
	}
}

func listContains(list, s string) bool {
	for _, item := range strings.Split(list, ",") {
		if strings.TrimSpace(item) == s {
			return true
		}
	}
	return false
}
