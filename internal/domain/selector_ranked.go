package domain

import (
	"math"

	shared "github.com/wms-platform/location-directive-service/shared/pkg/domain"
)

// rankedSelector keeps the constraint-satisfying candidates and returns the best one
// under its ordering. Ties keep candidate order.
type rankedSelector struct {
	baseSelector
	// eligible filters survivors beyond the directive's constraints; nil admits all
	eligible func(req SelectionRequest, ctx LocationContext) bool
	// better reports whether a ranks strictly ahead of b; nil keeps the first survivor
	better func(a, b LocationContext) bool
}

func (s *rankedSelector) Select(req SelectionRequest) (*shared.BinLocation, error) {
	var best *LocationContext
	for _, loc := range req.candidates(DefaultCandidateGrid) {
		ctx := req.contextFor(loc)
		if !req.satisfied(ctx) {
			continue
		}
		if s.eligible != nil && !s.eligible(req, ctx) {
			continue
		}
		if best == nil || (s.better != nil && s.better(ctx, *best)) {
			c := ctx
			best = &c
		}
	}
	if best == nil {
		return nil, nil
	}
	loc := best.Location()
	return &loc, nil
}

func newCapacityOptimizedSelector() *rankedSelector {
	return &rankedSelector{
		baseSelector: baseSelector{
			strategy:    StrategyCapacityOptimized,
			description: "Selects locations optimized for capacity utilization",
			bonus:       CapacityBonus,
		},
		better: func(a, b LocationContext) bool {
			return capacityOf(a) > capacityOf(b)
		},
	}
}

func newBulkLocationSelector() *rankedSelector {
	return &rankedSelector{
		baseSelector: baseSelector{
			strategy:    StrategyBulkLocation,
			description: "Selects bulk storage locations",
		},
		better: func(a, b LocationContext) bool {
			ab, bb := isZone(a, ZoneBulk), isZone(b, ZoneBulk)
			if ab != bb {
				return ab
			}
			return capacityOf(a) > capacityOf(b)
		},
	}
}

func newFastMovingSelector() *rankedSelector {
	return &rankedSelector{
		baseSelector: baseSelector{
			strategy:    StrategyFastMoving,
			description: "Selects locations optimized for fast-moving items",
			bonus:       FastMovingBonus,
		},
		better: func(a, b LocationContext) bool {
			return FastMovingBonus(a) > FastMovingBonus(b)
		},
	}
}

func newZoneBasedSelector() *rankedSelector {
	return &rankedSelector{
		baseSelector: baseSelector{
			strategy:    StrategyZoneBased,
			description: "Selects locations based on zone restrictions",
		},
		eligible: func(req SelectionRequest, ctx LocationContext) bool {
			required, ok := req.Query.RequiredZone()
			if !ok {
				return true
			}
			return isZone(ctx, required)
		},
	}
}

func newFIFOSelector() *rankedSelector {
	return &rankedSelector{
		baseSelector: baseSelector{
			strategy:    StrategyFIFO,
			description: "Selects locations using First In, First Out strategy",
		},
		better: func(a, b LocationContext) bool {
			return ageOf(a, math.Inf(-1)) > ageOf(b, math.Inf(-1))
		},
	}
}

func newLIFOSelector() *rankedSelector {
	return &rankedSelector{
		baseSelector: baseSelector{
			strategy:    StrategyLIFO,
			description: "Selects locations using Last In, First Out strategy",
		},
		better: func(a, b LocationContext) bool {
			return ageOf(a, math.Inf(1)) < ageOf(b, math.Inf(1))
		},
	}
}

func newLowestLevelSelector() *rankedSelector {
	return &rankedSelector{
		baseSelector: baseSelector{
			strategy:    StrategyLowestLevel,
			description: "Selects locations at the lowest available level",
		},
		better: func(a, b LocationContext) bool {
			return levelOf(a, math.MaxInt) < levelOf(b, math.MaxInt)
		},
	}
}

func newHighestLevelSelector() *rankedSelector {
	return &rankedSelector{
		baseSelector: baseSelector{
			strategy:    StrategyHighestLevel,
			description: "Selects locations at the highest available level",
		},
		better: func(a, b LocationContext) bool {
			return levelOf(a, math.MinInt) > levelOf(b, math.MinInt)
		},
	}
}

func capacityOf(ctx LocationContext) float64 {
	if c, ok := ctx.AvailableCapacity(); ok {
		return c
	}
	return math.Inf(-1)
}

func ageOf(ctx LocationContext, missing float64) float64 {
	if age, ok := ctx.InventoryAge(); ok {
		return age
	}
	return missing
}

func levelOf(ctx LocationContext, missing int) int {
	if level, ok := ctx.Location().LevelNumber(); ok {
		return level
	}
	return missing
}

func isZone(ctx LocationContext, zone string) bool {
	z, ok := ctx.Zone()
	return ok && z == zone
}
