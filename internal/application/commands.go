package application

import (
	"fmt"

	"github.com/wms-platform/location-directive-service/internal/domain"
	shared "github.com/wms-platform/location-directive-service/shared/pkg/domain"
	"github.com/wms-platform/location-directive-service/shared/pkg/errors"
)

// LocationQueryCommand describes the placement being asked for
type LocationQueryCommand struct {
	OperationType     string
	SKU               string
	Quantity          int
	ReferenceLocation string
	Parameters        map[string]any
	Candidates        []string
}

// toQuery builds the domain query, reporting bad input as a validation error
func (c LocationQueryCommand) toQuery() (domain.LocationQuery, error) {
	op, err := shared.ParseOperationType(c.OperationType)
	if err != nil {
		return domain.LocationQuery{}, errors.ErrValidation("invalid operation type").Wrap(err)
	}
	sku, err := shared.NewSkuCode(c.SKU)
	if err != nil {
		return domain.LocationQuery{}, errors.ErrValidation("invalid sku").Wrap(err)
	}
	qty, err := shared.NewQuantity(c.Quantity)
	if err != nil {
		return domain.LocationQuery{}, errors.ErrValidation("invalid quantity").Wrap(err)
	}

	opts := []domain.QueryOption{domain.WithParameters(domain.AttributesOf(c.Parameters))}
	if c.ReferenceLocation != "" {
		ref, err := shared.ParseBinLocation(c.ReferenceLocation)
		if err != nil {
			return domain.LocationQuery{}, errors.ErrValidation("invalid reference location").Wrap(err)
		}
		opts = append(opts, domain.WithReferenceLocation(ref))
	}
	if len(c.Candidates) > 0 {
		candidates, err := parseLocations(c.Candidates)
		if err != nil {
			return domain.LocationQuery{}, err
		}
		opts = append(opts, domain.WithCandidates(candidates...))
	}

	query, err := domain.NewLocationQuery(op, sku, qty, opts...)
	if err != nil {
		return domain.LocationQuery{}, errors.ErrValidation("invalid location query").Wrap(err)
	}
	return query, nil
}

func parseLocations(ids []string) ([]shared.BinLocation, error) {
	out := make([]shared.BinLocation, 0, len(ids))
	for _, id := range ids {
		loc, err := shared.ParseBinLocation(id)
		if err != nil {
			return nil, errors.ErrValidation(fmt.Sprintf("invalid location %q", id)).Wrap(err)
		}
		out = append(out, loc)
	}
	return out, nil
}

// EvaluateLocationCommand asks how every applicable directive judges one location
type EvaluateLocationCommand struct {
	Query    LocationQueryCommand
	Location string
}

// FindBestLocationsCommand asks for the top-scoring candidates
type FindBestLocationsCommand struct {
	Query      LocationQueryCommand
	MaxResults int
}

// ConstraintCommand describes one constraint
type ConstraintCommand struct {
	Type       string
	Operator   string
	Value      any
	Parameters map[string]any
}

func (c ConstraintCommand) toConstraint() (domain.LocationConstraint, error) {
	constraint, err := domain.NewLocationConstraint(
		domain.ConstraintType(c.Type),
		c.Operator,
		domain.ValueOf(c.Value),
		domain.AttributesOf(c.Parameters),
	)
	if err != nil {
		return domain.LocationConstraint{}, errors.ErrValidation("invalid constraint").Wrap(err)
	}
	return constraint, nil
}

// CreateDirectiveCommand represents the command to create a directive
type CreateDirectiveCommand struct {
	Name          string
	Description   string
	OperationType string
	Strategy      string
	Priority      int
	CreatedBy     string
	Constraints   []ConstraintCommand
}

// CreateDefaultDirectiveCommand represents the command to create a default directive
type CreateDefaultDirectiveCommand struct {
	OperationType string
	Strategy      string
}

// ConstraintChangeCommand adds or removes one constraint
type ConstraintChangeCommand struct {
	DirectiveID string
	Constraint  ConstraintCommand
}

// UpdateStrategyCommand changes a directive's strategy
type UpdateStrategyCommand struct {
	DirectiveID string
	Strategy    string
}

// UpdatePriorityCommand changes a directive's priority
type UpdatePriorityCommand struct {
	DirectiveID string
	Priority    int
}

// UpdateNameCommand renames a directive
type UpdateNameCommand struct {
	DirectiveID string
	Name        string
}

// UpdateDescriptionCommand changes a directive's description
type UpdateDescriptionCommand struct {
	DirectiveID string
	Description string
}

// ListDirectivesQuery filters the directive listing; zero fields are ignored
type ListDirectivesQuery struct {
	OperationType string
	Strategy      string
	Active        *bool
	NameContains  string
	CreatedBy     string
	MinPriority   int
	MaxPriority   int
}

// UpdateLocationAttributesCommand replaces the stored attributes of one location
type UpdateLocationAttributesCommand struct {
	Location   string
	Attributes map[string]any
}
