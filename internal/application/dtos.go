package application

import "time"

// LocationConstraintDTO represents a constraint in responses
type LocationConstraintDTO struct {
	Type       string         `json:"type"`
	Operator   string         `json:"operator"`
	Value      any            `json:"value"`
	Parameters map[string]any `json:"parameters,omitempty"`
}

// LocationDirectiveDTO represents a directive in responses
type LocationDirectiveDTO struct {
	DirectiveID         string                  `json:"directiveId"`
	Name                string                  `json:"name"`
	Description         string                  `json:"description,omitempty"`
	OperationType       string                  `json:"operationType"`
	Strategy            string                  `json:"strategy"`
	Constraints         []LocationConstraintDTO `json:"constraints"`
	DisabledConstraints []LocationConstraintDTO `json:"disabledConstraints,omitempty"`
	Priority            int                     `json:"priority"`
	Active              bool                    `json:"active"`
	CreatedAt           time.Time               `json:"createdAt"`
	LastModifiedAt      time.Time               `json:"lastModifiedAt"`
	CreatedBy           string                  `json:"createdBy,omitempty"`
	Version             int64                   `json:"version"`
}

// StrategyFaultDTO reports a strategy that failed during selection
type StrategyFaultDTO struct {
	DirectiveID string `json:"directiveId"`
	Strategy    string `json:"strategy"`
	Error       string `json:"error"`
}

// SelectionDTO is the outcome of a location selection
type SelectionDTO struct {
	Found           bool               `json:"found"`
	Location        string             `json:"location,omitempty"`
	DirectiveID     string             `json:"directiveId,omitempty"`
	DirectiveName   string             `json:"directiveName,omitempty"`
	Strategy        string             `json:"strategy,omitempty"`
	DirectivesTried int                `json:"directivesTried"`
	Faults          []StrategyFaultDTO `json:"faults,omitempty"`
}

// DirectiveOutcomeDTO is one directive's verdict on a location
type DirectiveOutcomeDTO struct {
	DirectiveID string   `json:"directiveId"`
	Name        string   `json:"name"`
	Strategy    string   `json:"strategy"`
	Result      string   `json:"result"`
	Score       float64  `json:"score"`
	Message     string   `json:"message"`
	Violations  []string `json:"violations,omitempty"`
}

// EvaluationDTO aggregates every applicable directive's verdict on a location
type EvaluationDTO struct {
	Location                 string                `json:"location"`
	Suitable                 bool                  `json:"suitable"`
	Score                    float64               `json:"score"`
	ApplicableDirectiveCount int                   `json:"applicableDirectiveCount"`
	SuitableDirectiveCount   int                   `json:"suitableDirectiveCount"`
	Violations               []string              `json:"violations,omitempty"`
	Outcomes                 []DirectiveOutcomeDTO `json:"outcomes,omitempty"`
}

// ScoredLocationDTO is a ranked location
type ScoredLocationDTO struct {
	Location string  `json:"location"`
	Score    float64 `json:"score"`
}

// ValidationDTO reports configuration issues of a directive
type ValidationDTO struct {
	DirectiveID string   `json:"directiveId"`
	Valid       bool     `json:"valid"`
	Issues      []string `json:"issues"`
}

// DirectiveStatsDTO summarizes the directive store
type DirectiveStatsDTO struct {
	Active                int64            `json:"active"`
	ByOperationType       map[string]int64 `json:"byOperationType"`
	ActiveByOperationType map[string]int64 `json:"activeByOperationType"`
	ByStrategy            map[string]int64 `json:"byStrategy"`
}

// LocationAttributesDTO holds the stored attributes of one location
type LocationAttributesDTO struct {
	Location   string         `json:"location"`
	Attributes map[string]any `json:"attributes"`
}
