package domain

import "fmt"

// Directive configuration issues
const (
	IssueInactive          = "Directive is inactive"
	IssueNoConstraints     = "No constraints defined for non-fixed strategy"
	IssueMissingInventory  = "Strategy requires inventory data but no inventory constraints defined"
	IssueMissingZone       = "Strategy requires zone configuration but no zone constraints defined"
	issueUnknownConstraint = "Unknown constraint type: %s"
	issueUnknownStrategy   = "Unknown strategy: %s"
	issueMissingDirective  = "Directive is required"
)

// ValidationResult reports configuration issues of a directive
type ValidationResult struct {
	Valid  bool     `json:"valid"`
	Issues []string `json:"issues"`
}

// ValidateDirective checks a directive's configuration. It never fails; problems are issues.
func ValidateDirective(d *LocationDirective) ValidationResult {
	if d == nil {
		return ValidationResult{Issues: []string{issueMissingDirective}}
	}

	issues := []string{}
	if !d.IsActive() {
		issues = append(issues, IssueInactive)
	}
	strategy := d.Strategy()
	if !strategy.IsValid() {
		issues = append(issues, fmt.Sprintf(issueUnknownStrategy, strategy))
	}
	if len(d.constraints) == 0 && !strategy.RequiresFixedMapping() {
		issues = append(issues, IssueNoConstraints)
	}
	if strategy.RequiresInventoryData() && !d.HasConstraintType(ConstraintInventoryAvailable) {
		issues = append(issues, IssueMissingInventory)
	}
	if strategy.RequiresZoneConfiguration() && !d.HasConstraintType(ConstraintZoneRestriction) {
		issues = append(issues, IssueMissingZone)
	}
	for _, c := range d.constraints {
		if !c.Type().IsValid() {
			issues = append(issues, fmt.Sprintf(issueUnknownConstraint, c.Type()))
		}
	}

	return ValidationResult{Valid: len(issues) == 0, Issues: issues}
}
