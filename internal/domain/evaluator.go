package domain

import (
	"fmt"
	"sort"

	shared "github.com/wms-platform/location-directive-service/shared/pkg/domain"
)

// NoApplicableDirectives is the violation reported when nothing applies to a query
const NoApplicableDirectives = "No applicable directives available"

// PriorityOrder decides which directive is tried first during selection
type PriorityOrder string

const (
	// PriorityAscending tries priority 1 first
	PriorityAscending PriorityOrder = "ascending"
	// PriorityDescending tries the largest priority number first, matching the score weight
	PriorityDescending PriorityOrder = "descending"
)

// ParsePriorityOrder parses ascending/descending; empty means ascending
func ParsePriorityOrder(s string) (PriorityOrder, error) {
	switch PriorityOrder(s) {
	case "", PriorityAscending:
		return PriorityAscending, nil
	case PriorityDescending:
		return PriorityDescending, nil
	default:
		return "", fmt.Errorf("unknown priority order %q", s)
	}
}

// StrategyFault records a selector that failed for one directive
type StrategyFault struct {
	DirectiveID DirectiveID
	Strategy    LocationStrategy
	Err         error
}

func (f StrategyFault) Error() string {
	return fmt.Sprintf("strategy %s failed for directive %s: %v", f.Strategy, f.DirectiveID, f.Err)
}

func (f StrategyFault) Unwrap() error { return f.Err }

// Selection is the outcome of SelectOptimalLocation
type Selection struct {
	// Location is nil when no directive produced a placement
	Location  *shared.BinLocation
	Directive *LocationDirective
	Attempted int
	Faults    []StrategyFault
}

// DirectiveOutcome is one directive's verdict on a location
type DirectiveOutcome struct {
	DirectiveID DirectiveID             `json:"directiveId"`
	Name        string                  `json:"name"`
	Strategy    LocationStrategy        `json:"strategy"`
	Result      LocationDirectiveResult `json:"result"`
}

// EvaluationResult aggregates every applicable directive's verdict on a location
type EvaluationResult struct {
	Location                 shared.BinLocation `json:"location"`
	Suitable                 bool               `json:"suitable"`
	Score                    float64            `json:"score"`
	ApplicableDirectiveCount int                `json:"applicableDirectiveCount"`
	SuitableDirectiveCount   int                `json:"suitableDirectiveCount"`
	Violations               []string           `json:"violations,omitempty"`
	Outcomes                 []DirectiveOutcome `json:"outcomes,omitempty"`
}

// ScoredLocation is a suitable location with its aggregate score
type ScoredLocation struct {
	Location shared.BinLocation `json:"location"`
	Score    float64            `json:"score"`
}

// DirectiveEvaluator is the pure selection engine. It reads directives as snapshots
// and is safe for concurrent use.
type DirectiveEvaluator struct {
	registry  *SelectorRegistry
	order     PriorityOrder
	equipment []string
}

// EvaluatorOption configures a DirectiveEvaluator
type EvaluatorOption func(*DirectiveEvaluator)

// WithRegistry sets the selector registry
func WithRegistry(registry *SelectorRegistry) EvaluatorOption {
	return func(e *DirectiveEvaluator) {
		if registry != nil {
			e.registry = registry
		}
	}
}

// WithPriorityOrder sets the selection order
func WithPriorityOrder(order PriorityOrder) EvaluatorOption {
	return func(e *DirectiveEvaluator) {
		if order != "" {
			e.order = order
		}
	}
}

// WithEquipment sets the equipment assumed available at every location
func WithEquipment(equipment ...string) EvaluatorOption {
	return func(e *DirectiveEvaluator) {
		e.equipment = append([]string(nil), equipment...)
	}
}

// NewDirectiveEvaluator creates an evaluator with the default registry and ascending order
func NewDirectiveEvaluator(opts ...EvaluatorOption) *DirectiveEvaluator {
	e := &DirectiveEvaluator{order: PriorityAscending}
	for _, opt := range opts {
		opt(e)
	}
	if e.registry == nil {
		e.registry = NewSelectorRegistry()
	}
	return e
}

// Registry returns the selector registry
func (e *DirectiveEvaluator) Registry() *SelectorRegistry {
	return e.registry
}

// PriorityOrder returns the configured selection order
func (e *DirectiveEvaluator) PriorityOrder() PriorityOrder {
	return e.order
}

// ApplicableDirectives returns the active directives for op in selection order
func (e *DirectiveEvaluator) ApplicableDirectives(op shared.OperationType, directives []*LocationDirective) []*LocationDirective {
	var out []*LocationDirective
	for _, d := range directives {
		if d != nil && d.IsApplicableFor(op) {
			out = append(out, d)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if e.order == PriorityDescending {
			return out[i].Priority() > out[j].Priority()
		}
		return out[i].Priority() < out[j].Priority()
	})
	return out
}

// CandidateUniverse extends the package-level CandidateUniverse with the locations
// the selectors of the applicable directives may draw, so callers can prefetch
// attributes for every context the engine will build.
func (e *DirectiveEvaluator) CandidateUniverse(query LocationQuery, directives []*LocationDirective) []shared.BinLocation {
	out := CandidateUniverse(query)
	seen := make(map[shared.BinLocation]struct{}, len(out))
	for _, loc := range out {
		seen[loc] = struct{}{}
	}
	for _, d := range e.ApplicableDirectives(query.OperationType(), directives) {
		spacer, ok := e.registry.Resolve(d.Strategy()).(candidateSpacer)
		if !ok {
			continue
		}
		for _, loc := range spacer.CandidateSpace(query) {
			if _, dup := seen[loc]; !dup {
				seen[loc] = struct{}{}
				out = append(out, loc)
			}
		}
	}
	return out
}

// CanSatisfyQuery reports whether any active directive applies to the query
func (e *DirectiveEvaluator) CanSatisfyQuery(query LocationQuery, directives []*LocationDirective) bool {
	return len(e.ApplicableDirectives(query.OperationType(), directives)) > 0
}

// SelectOptimalLocation asks each applicable directive's selector for a placement and
// returns the first one found. A selector that fails is recorded and skipped.
func (e *DirectiveEvaluator) SelectOptimalLocation(query LocationQuery, directives []*LocationDirective, overlay AttributeOverlay) Selection {
	builder := e.contextBuilder(overlay)
	contextFor := func(loc shared.BinLocation) LocationContext { return builder.Build(query, loc) }

	var sel Selection
	for _, d := range e.ApplicableDirectives(query.OperationType(), directives) {
		sel.Attempted++
		selector := e.registry.Resolve(d.Strategy())
		loc, err := safeSelect(selector, SelectionRequest{Query: query, Directive: d, Context: contextFor})
		if err != nil {
			sel.Faults = append(sel.Faults, StrategyFault{DirectiveID: d.ID(), Strategy: d.Strategy(), Err: err})
			continue
		}
		if loc != nil {
			sel.Location = loc
			sel.Directive = d
			return sel
		}
	}
	return sel
}

// EvaluateLocation scores location against every applicable directive. The score is the
// mean over the directives that found it suitable.
func (e *DirectiveEvaluator) EvaluateLocation(query LocationQuery, location shared.BinLocation, directives []*LocationDirective, overlay AttributeOverlay) EvaluationResult {
	return e.evaluate(query, location, e.ApplicableDirectives(query.OperationType(), directives), e.contextBuilder(overlay))
}

// FindBestLocations returns up to maxResults suitable locations by descending score
func (e *DirectiveEvaluator) FindBestLocations(query LocationQuery, maxResults int, directives []*LocationDirective, overlay AttributeOverlay) []shared.BinLocation {
	scored := e.FindBestLocationsScored(query, maxResults, directives, overlay)
	out := make([]shared.BinLocation, len(scored))
	for i, s := range scored {
		out[i] = s.Location
	}
	return out
}

// FindBestLocationsScored is FindBestLocations with the scores
func (e *DirectiveEvaluator) FindBestLocationsScored(query LocationQuery, maxResults int, directives []*LocationDirective, overlay AttributeOverlay) []ScoredLocation {
	if maxResults <= 0 {
		return []ScoredLocation{}
	}
	applicable := e.ApplicableDirectives(query.OperationType(), directives)
	builder := e.contextBuilder(overlay)

	candidates := query.Candidates()
	if len(candidates) == 0 {
		candidates = DefaultCandidateGrid()
	}

	scored := make([]ScoredLocation, 0, len(candidates))
	for _, loc := range candidates {
		result := e.evaluate(query, loc, applicable, builder)
		if result.Suitable {
			scored = append(scored, ScoredLocation{Location: loc, Score: result.Score})
		}
	}
	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})
	if len(scored) > maxResults {
		scored = scored[:maxResults]
	}
	return scored
}

func (e *DirectiveEvaluator) evaluate(query LocationQuery, location shared.BinLocation, applicable []*LocationDirective, builder *ContextBuilder) EvaluationResult {
	result := EvaluationResult{
		Location:                 location,
		ApplicableDirectiveCount: len(applicable),
	}
	if len(applicable) == 0 {
		result.Violations = []string{NoApplicableDirectives}
		return result
	}

	ctx := builder.Build(query, location)
	var total float64
	var violations []string
	seen := make(map[string]struct{})
	for _, d := range applicable {
		outcome := d.EvaluateForLocation(query, ctx, e.registry.Bonus(d.Strategy()))
		result.Outcomes = append(result.Outcomes, DirectiveOutcome{
			DirectiveID: d.ID(),
			Name:        d.Name(),
			Strategy:    d.Strategy(),
			Result:      outcome,
		})
		if outcome.IsSuitable() {
			total += outcome.Score
			result.SuitableDirectiveCount++
			continue
		}
		for _, v := range outcome.Violations {
			if _, dup := seen[v]; !dup {
				seen[v] = struct{}{}
				violations = append(violations, v)
			}
		}
	}

	if result.SuitableDirectiveCount > 0 {
		result.Suitable = true
		result.Score = total / float64(result.SuitableDirectiveCount)
		return result
	}
	result.Violations = violations
	return result
}

func (e *DirectiveEvaluator) contextBuilder(overlay AttributeOverlay) *ContextBuilder {
	return NewContextBuilder(overlay, e.equipment...)
}

func safeSelect(selector Selector, req SelectionRequest) (loc *shared.BinLocation, err error) {
	defer func() {
		if r := recover(); r != nil {
			loc, err = nil, fmt.Errorf("selector panic: %v", r)
		}
	}()
	return selector.Select(req)
}
