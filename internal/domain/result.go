package domain

import "strings"

// ResultType tags the outcome of evaluating a directive against a location
type ResultType string

const (
	ResultSuitable            ResultType = "suitable"
	ResultNotApplicable       ResultType = "not_applicable"
	ResultConstraintViolation ResultType = "constraint_violation"
	ResultError               ResultType = "error"
)

// LocationDirectiveResult is the outcome of one directive/location evaluation
type LocationDirectiveResult struct {
	Type       ResultType `json:"type"`
	Score      float64    `json:"score"`
	Message    string     `json:"message"`
	Violations []string   `json:"violations,omitempty"`
}

// Suitable creates a suitable result with score
func Suitable(score float64) LocationDirectiveResult {
	return LocationDirectiveResult{Type: ResultSuitable, Score: score, Message: "Location is suitable"}
}

// NotApplicable creates a result for a directive that does not apply
func NotApplicable(reason string) LocationDirectiveResult {
	return LocationDirectiveResult{Type: ResultNotApplicable, Message: reason}
}

// ConstraintViolation creates a result listing the violated constraints
func ConstraintViolation(violations []string) LocationDirectiveResult {
	return LocationDirectiveResult{
		Type:       ResultConstraintViolation,
		Message:    "Constraint violations: " + strings.Join(violations, ", "),
		Violations: append([]string(nil), violations...),
	}
}

// ErrorResult creates a result for an evaluation that could not complete
func ErrorResult(reason string) LocationDirectiveResult {
	return LocationDirectiveResult{Type: ResultError, Message: reason}
}

// IsSuitable reports whether the location is suitable
func (r LocationDirectiveResult) IsSuitable() bool {
	return r.Type == ResultSuitable
}

// IsNotApplicable reports whether the directive did not apply
func (r LocationDirectiveResult) IsNotApplicable() bool {
	return r.Type == ResultNotApplicable
}

// HasViolations reports whether constraints were violated
func (r LocationDirectiveResult) HasViolations() bool {
	return r.Type == ResultConstraintViolation
}

// IsError reports whether evaluation failed
func (r LocationDirectiveResult) IsError() bool {
	return r.Type == ResultError
}
