package domain

import (
	shared "github.com/wms-platform/location-directive-service/shared/pkg/domain"
)

// EmptinessCheck decides whether a location can take new stock
type EmptinessCheck func(ctx LocationContext) bool

// DefaultEmptinessCheck reads is_empty, then available_inventory == 0, and otherwise
// treats odd levels as empty.
func DefaultEmptinessCheck(ctx LocationContext) bool {
	if v, ok := ctx.Attribute(AttrIsEmpty); ok {
		if empty, ok := v.AsBool(); ok {
			return empty
		}
	}
	if inventory, ok := ctx.AvailableInventory(); ok {
		return inventory == 0
	}
	level, ok := ctx.Location().LevelNumber()
	return ok && level%2 == 1
}

// nearestEmptySelector picks the closest empty slot that satisfies the directive
type nearestEmptySelector struct {
	baseSelector
	isEmpty EmptinessCheck
}

func newNearestEmptySelector(isEmpty EmptinessCheck) *nearestEmptySelector {
	if isEmpty == nil {
		isEmpty = DefaultEmptinessCheck
	}
	return &nearestEmptySelector{
		baseSelector: baseSelector{
			strategy:    StrategyNearestEmpty,
			description: "Selects nearest empty locations using distance calculation",
			bonus:       NearestEmptyBonus,
		},
		isEmpty: isEmpty,
	}
}

func (s *nearestEmptySelector) Select(req SelectionRequest) (*shared.BinLocation, error) {
	reference, ok := req.Query.ReferenceLocation()
	if !ok {
		reference = DefaultReferenceLocation
	}

	var candidates []shared.BinLocation
	if req.Query.HasCandidates() {
		candidates = req.Query.Candidates()
	} else {
		neighbors, err := Neighborhood(reference)
		if err != nil {
			return nil, err
		}
		candidates = neighbors
	}

	var best *shared.BinLocation
	bestDistance := 0
	for _, loc := range candidates {
		ctx := req.contextFor(loc)
		if !req.satisfied(ctx) || !s.isEmpty(ctx) {
			continue
		}
		d, ok := WeightedDistance(reference, loc)
		if !ok {
			continue
		}
		if best == nil || d < bestDistance {
			l := loc
			best, bestDistance = &l, d
		}
	}
	return best, nil
}
