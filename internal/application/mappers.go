package application

import (
	"github.com/wms-platform/location-directive-service/internal/domain"
)

// ToLocationConstraintDTO converts a constraint to its DTO
func ToLocationConstraintDTO(c domain.LocationConstraint) LocationConstraintDTO {
	dto := LocationConstraintDTO{
		Type:     string(c.Type()),
		Operator: string(c.Operator()),
		Value:    c.Value().Interface(),
	}
	if params := c.Parameters(); len(params) > 0 {
		dto.Parameters = params.ToMap()
	}
	return dto
}

// ToLocationDirectiveDTO converts a directive to its DTO
func ToLocationDirectiveDTO(d *domain.LocationDirective) *LocationDirectiveDTO {
	if d == nil {
		return nil
	}

	constraints := d.Constraints()
	dtos := make([]LocationConstraintDTO, 0, len(constraints))
	for _, c := range constraints {
		dtos = append(dtos, ToLocationConstraintDTO(c))
	}
	var disabled []LocationConstraintDTO
	for _, c := range d.DisabledConstraints() {
		disabled = append(disabled, ToLocationConstraintDTO(c))
	}

	return &LocationDirectiveDTO{
		DirectiveID:         d.ID().String(),
		Name:                d.Name(),
		Description:         d.Description(),
		OperationType:       string(d.OperationType()),
		Strategy:            string(d.Strategy()),
		Constraints:         dtos,
		DisabledConstraints: disabled,
		Priority:            d.Priority(),
		Active:              d.IsActive(),
		CreatedAt:           d.CreatedAt(),
		LastModifiedAt:      d.LastModifiedAt(),
		CreatedBy:           d.CreatedBy(),
		Version:             d.Version(),
	}
}

// ToLocationDirectiveDTOs converts a slice of directives
func ToLocationDirectiveDTOs(directives []*domain.LocationDirective) []LocationDirectiveDTO {
	out := make([]LocationDirectiveDTO, 0, len(directives))
	for _, d := range directives {
		out = append(out, *ToLocationDirectiveDTO(d))
	}
	return out
}

// ToSelectionDTO converts an engine selection
func ToSelectionDTO(sel domain.Selection) *SelectionDTO {
	dto := &SelectionDTO{DirectivesTried: sel.Attempted}
	if sel.Location != nil {
		dto.Found = true
		dto.Location = sel.Location.String()
	}
	if sel.Directive != nil {
		dto.DirectiveID = sel.Directive.ID().String()
		dto.DirectiveName = sel.Directive.Name()
		dto.Strategy = string(sel.Directive.Strategy())
	}
	for _, f := range sel.Faults {
		dto.Faults = append(dto.Faults, StrategyFaultDTO{
			DirectiveID: f.DirectiveID.String(),
			Strategy:    string(f.Strategy),
			Error:       f.Err.Error(),
		})
	}
	return dto
}

// ToEvaluationDTO converts an engine evaluation
func ToEvaluationDTO(r domain.EvaluationResult) *EvaluationDTO {
	dto := &EvaluationDTO{
		Location:                 r.Location.String(),
		Suitable:                 r.Suitable,
		Score:                    r.Score,
		ApplicableDirectiveCount: r.ApplicableDirectiveCount,
		SuitableDirectiveCount:   r.SuitableDirectiveCount,
		Violations:               r.Violations,
	}
	for _, o := range r.Outcomes {
		dto.Outcomes = append(dto.Outcomes, DirectiveOutcomeDTO{
			DirectiveID: o.DirectiveID.String(),
			Name:        o.Name,
			Strategy:    string(o.Strategy),
			Result:      string(o.Result.Type),
			Score:       o.Result.Score,
			Message:     o.Result.Message,
			Violations:  o.Result.Violations,
		})
	}
	return dto
}

// ToScoredLocationDTOs converts ranked locations
func ToScoredLocationDTOs(scored []domain.ScoredLocation) []ScoredLocationDTO {
	out := make([]ScoredLocationDTO, 0, len(scored))
	for _, s := range scored {
		out = append(out, ScoredLocationDTO{Location: s.Location.String(), Score: s.Score})
	}
	return out
}
