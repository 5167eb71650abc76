package domain

import (
	"fmt"

	shared "github.com/wms-platform/location-directive-service/shared/pkg/domain"
)

// Selector is a placement algorithm bound to one LocationStrategy
type Selector interface {
	Strategy() LocationStrategy
	Supports(strategy LocationStrategy) bool
	Description() string

	// Select returns the chosen location, or nil when the strategy has no placement.
	// An error reports a strategy fault; callers skip the directive.
	Select(req SelectionRequest) (*shared.BinLocation, error)

	// ScoreBonus is the strategy-specific score term for a suitable location
	ScoreBonus(ctx LocationContext) float64
}

// SelectionRequest carries what a selector needs for one directive
type SelectionRequest struct {
	Query     LocationQuery
	Directive *LocationDirective
	// Context builds the evaluation context for a location; nil uses the query alone
	Context func(shared.BinLocation) LocationContext
}

func (r SelectionRequest) contextFor(location shared.BinLocation) LocationContext {
	if r.Context == nil {
		return r.Query.ContextFor(location)
	}
	return r.Context(location)
}

func (r SelectionRequest) satisfied(ctx LocationContext) bool {
	if r.Directive == nil {
		return true
	}
	return r.Directive.SatisfiesConstraints(ctx)
}

// candidates returns the explicit candidates or the generated fallback
func (r SelectionRequest) candidates(fallback func() []shared.BinLocation) []shared.BinLocation {
	if r.Query.HasCandidates() {
		return r.Query.Candidates()
	}
	return fallback()
}

type baseSelector struct {
	strategy    LocationStrategy
	description string
	bonus       ScoreBonus
}

func (b baseSelector) Strategy() LocationStrategy { return b.strategy }

func (b baseSelector) Supports(strategy LocationStrategy) bool { return b.strategy == strategy }

func (b baseSelector) Description() string { return b.description }

func (b baseSelector) ScoreBonus(ctx LocationContext) float64 {
	if b.bonus == nil {
		return 0
	}
	return b.bonus(ctx)
}

// Candidate grid generated when a query has no explicit candidates
const (
	gridAisles        = 5
	gridRacks         = 10
	gridLevels        = 3
	gridMaxCandidates = 50
)

// DefaultCandidateGrid returns the first 50 of aisles A1..A5 × racks 01..10 × levels 1..3
func DefaultCandidateGrid() []shared.BinLocation {
	out := make([]shared.BinLocation, 0, gridMaxCandidates)
	for a := 1; a <= gridAisles; a++ {
		for r := 1; r <= gridRacks; r++ {
			for l := 1; l <= gridLevels; l++ {
				if len(out) == gridMaxCandidates {
					return out
				}
				out = append(out, shared.MustBinLocation(fmt.Sprintf("A%d", a), fmt.Sprintf("%02d", r), fmt.Sprint(l)))
			}
		}
	}
	return out
}

// Random draw space: aisles A1..A10 × racks 01..20 × levels 1..5
const (
	drawAisles = 10
	drawRacks  = 20
	drawLevels = 5
)

// RandomDrawSpace returns every slot the random strategy may draw without explicit candidates
func RandomDrawSpace() []shared.BinLocation {
	out := make([]shared.BinLocation, 0, drawAisles*drawRacks*drawLevels)
	for a := 1; a <= drawAisles; a++ {
		for r := 1; r <= drawRacks; r++ {
			for l := 1; l <= drawLevels; l++ {
				out = append(out, shared.MustBinLocation(fmt.Sprintf("A%d", a), fmt.Sprintf("%02d", r), fmt.Sprint(l)))
			}
		}
	}
	return out
}

// candidateSpacer is implemented by selectors that may look beyond CandidateUniverse
type candidateSpacer interface {
	CandidateSpace(query LocationQuery) []shared.BinLocation
}

// DefaultReferenceLocation is used when a query carries no reference location
var DefaultReferenceLocation = shared.MustBinLocation("A", "01", "1")

// Neighborhood returns the slots around reference: same aisle, racks ±2, levels ±1,
// clamped at 1 and de-duplicated, in generation order.
func Neighborhood(reference shared.BinLocation) ([]shared.BinLocation, error) {
	rack, ok := reference.RackNumber()
	if !ok {
		return nil, fmt.Errorf("reference rack %q is not numeric", reference.Rack())
	}
	level, ok := reference.LevelNumber()
	if !ok {
		return nil, fmt.Errorf("reference level %q is not numeric", reference.Level())
	}

	seen := make(map[shared.BinLocation]struct{})
	var out []shared.BinLocation
	for dr := -2; dr <= 2; dr++ {
		for dl := -1; dl <= 1; dl++ {
			loc, err := shared.NewBinLocation(reference.Aisle(), fmt.Sprintf("%02d", max(1, rack+dr)), fmt.Sprint(max(1, level+dl)))
			if err != nil {
				return nil, err
			}
			if _, dup := seen[loc]; dup {
				continue
			}
			seen[loc] = struct{}{}
			out = append(out, loc)
		}
	}
	return out, nil
}

// CandidateUniverse is every location the engine may build a context for when
// answering query without random draws: explicit candidates, or the default grid
// plus the neighborhood of the reference location.
func CandidateUniverse(query LocationQuery) []shared.BinLocation {
	if query.HasCandidates() {
		return query.Candidates()
	}
	out := DefaultCandidateGrid()
	reference, ok := query.ReferenceLocation()
	if !ok {
		reference = DefaultReferenceLocation
	}
	if fixed, ok := query.FixedLocation(); ok {
		if loc, err := shared.ParseBinLocation(fixed); err == nil {
			out = append(out, loc)
		}
	}
	neighbors, err := Neighborhood(reference)
	if err != nil {
		return out
	}
	seen := make(map[shared.BinLocation]struct{}, len(out))
	for _, loc := range out {
		seen[loc] = struct{}{}
	}
	for _, loc := range neighbors {
		if _, dup := seen[loc]; !dup {
			out = append(out, loc)
		}
	}
	return out
}
