package domain

import (
	"errors"
	"fmt"

	shared "github.com/wms-platform/location-directive-service/shared/pkg/domain"
)

// Well-known query parameters
const (
	ParamFixedLocation = "fixed_location"
	ParamRequiredZone  = "required_zone"
)

// ErrInvalidQuery is returned when a LocationQuery cannot be constructed
var ErrInvalidQuery = errors.New("invalid location query")

// LocationQuery describes a request for a bin location. It is immutable once constructed.
type LocationQuery struct {
	operationType shared.OperationType
	item          shared.SkuCode
	quantity      shared.Quantity
	reference     *shared.BinLocation
	parameters    Attributes
	candidates    []shared.BinLocation
}

// QueryOption configures optional LocationQuery fields
type QueryOption func(*LocationQuery)

// WithReferenceLocation sets the location distance-based strategies measure from
func WithReferenceLocation(location shared.BinLocation) QueryOption {
	return func(q *LocationQuery) {
		q.reference = &location
	}
}

// WithParameter sets a single query parameter
func WithParameter(key string, value Value) QueryOption {
	return func(q *LocationQuery) {
		q.parameters[key] = value
	}
}

// WithParameters merges parameters into the query
func WithParameters(params Attributes) QueryOption {
	return func(q *LocationQuery) {
		for k, v := range params {
			q.parameters[k] = v
		}
	}
}

// WithCandidates restricts selection to an explicit candidate list
func WithCandidates(locations ...shared.BinLocation) QueryOption {
	return func(q *LocationQuery) {
		q.candidates = append(q.candidates, locations...)
	}
}

// NewLocationQuery creates a query
func NewLocationQuery(op shared.OperationType, item shared.SkuCode, quantity shared.Quantity, opts ...QueryOption) (LocationQuery, error) {
	if !op.IsValid() {
		return LocationQuery{}, fmt.Errorf("%w: %w", ErrInvalidQuery, shared.ErrInvalidOperationType)
	}
	if item.IsZero() {
		return LocationQuery{}, fmt.Errorf("%w: %w", ErrInvalidQuery, shared.ErrInvalidSkuCode)
	}
	if quantity.IsZero() {
		return LocationQuery{}, fmt.Errorf("%w: %w", ErrInvalidQuery, shared.ErrInvalidQuantity)
	}

	q := LocationQuery{
		operationType: op,
		item:          item,
		quantity:      quantity,
		parameters:    Attributes{},
	}
	for _, opt := range opts {
		opt(&q)
	}
	return q, nil
}

// OperationType returns the requested operation
func (q LocationQuery) OperationType() shared.OperationType {
	return q.operationType
}

// Item returns the item code
func (q LocationQuery) Item() shared.SkuCode {
	return q.item
}

// Quantity returns the requested quantity
func (q LocationQuery) Quantity() shared.Quantity {
	return q.quantity
}

// ReferenceLocation returns the reference location, if any
func (q LocationQuery) ReferenceLocation() (shared.BinLocation, bool) {
	if q.reference == nil {
		return shared.BinLocation{}, false
	}
	return *q.reference, true
}

// Parameters returns a copy of the parameters
func (q LocationQuery) Parameters() Attributes {
	return q.parameters.Clone()
}

// Parameter returns a single parameter
func (q LocationQuery) Parameter(key string) (Value, bool) {
	return q.parameters.Get(key)
}

// HasCandidates reports whether an explicit candidate list was supplied
func (q LocationQuery) HasCandidates() bool {
	return len(q.candidates) > 0
}

// Candidates returns a copy of the explicit candidate list
func (q LocationQuery) Candidates() []shared.BinLocation {
	if len(q.candidates) == 0 {
		return nil
	}
	return append([]shared.BinLocation(nil), q.candidates...)
}

// FixedLocation returns the fixed_location parameter
func (q LocationQuery) FixedLocation() (string, bool) {
	return q.parameters.GetString(ParamFixedLocation)
}

// RequiredZone returns the required_zone parameter
func (q LocationQuery) RequiredZone() (string, bool) {
	return q.parameters.GetString(ParamRequiredZone)
}

// ContextFor builds the context for location without an attribute overlay
func (q LocationQuery) ContextFor(location shared.BinLocation) LocationContext {
	return NewContextBuilder(nil).Build(q, location)
}
