package domain

import (
	"errors"
	"strings"
)

// ErrInvalidStrategy is returned when an unknown location strategy is provided
var ErrInvalidStrategy = errors.New("invalid location strategy")

// LocationStrategy names the placement algorithm a directive uses
type LocationStrategy string

const (
	StrategyFixed             LocationStrategy = "fixed"
	StrategyNearestEmpty      LocationStrategy = "nearest_empty"
	StrategyBulkLocation      LocationStrategy = "bulk_location"
	StrategyFastMoving        LocationStrategy = "fast_moving"
	StrategyZoneBased         LocationStrategy = "zone_based"
	StrategyCapacityOptimized LocationStrategy = "capacity_optimized"
	StrategyFIFO              LocationStrategy = "fifo"
	StrategyLIFO              LocationStrategy = "lifo"
	StrategyRandom            LocationStrategy = "random"
	StrategyLowestLevel       LocationStrategy = "lowest_level"
	StrategyHighestLevel      LocationStrategy = "highest_level"
)

var strategyDescriptions = map[LocationStrategy]string{
	StrategyFixed:             "Use a fixed predetermined location",
	StrategyNearestEmpty:      "Find the nearest empty location",
	StrategyBulkLocation:      "Use bulk storage locations",
	StrategyFastMoving:        "Use fast-moving item locations",
	StrategyZoneBased:         "Select based on zone restrictions",
	StrategyCapacityOptimized: "Optimize for capacity utilization",
	StrategyFIFO:              "First in, first out",
	StrategyLIFO:              "Last in, first out",
	StrategyRandom:            "Random location selection",
	StrategyLowestLevel:       "Prefer lowest level locations",
	StrategyHighestLevel:      "Prefer highest level locations",
}

// ParseLocationStrategy parses a case-insensitive strategy token
func ParseLocationStrategy(s string) (LocationStrategy, error) {
	strategy := LocationStrategy(strings.ToLower(strings.TrimSpace(s)))
	if !strategy.IsValid() {
		return "", ErrInvalidStrategy
	}
	return strategy, nil
}

// AllStrategies returns every known strategy
func AllStrategies() []LocationStrategy {
	return []LocationStrategy{
		StrategyFixed, StrategyNearestEmpty, StrategyBulkLocation, StrategyFastMoving,
		StrategyZoneBased, StrategyCapacityOptimized, StrategyFIFO, StrategyLIFO,
		StrategyRandom, StrategyLowestLevel, StrategyHighestLevel,
	}
}

// IsValid checks if the strategy is valid
func (s LocationStrategy) IsValid() bool {
	_, ok := strategyDescriptions[s]
	return ok
}

// Description returns a human readable description
func (s LocationStrategy) Description() string {
	return strategyDescriptions[s]
}

// RequiresInventoryData reports whether the strategy ranks by stock data
func (s LocationStrategy) RequiresInventoryData() bool {
	return s == StrategyFIFO || s == StrategyLIFO || s == StrategyCapacityOptimized
}

// RequiresZoneConfiguration reports whether the strategy depends on zone setup
func (s LocationStrategy) RequiresZoneConfiguration() bool {
	return s == StrategyZoneBased || s == StrategyFastMoving || s == StrategyBulkLocation
}

// IsDistanceBased reports whether the strategy ranks by distance
func (s LocationStrategy) IsDistanceBased() bool {
	return s == StrategyNearestEmpty
}

// IsLevelBased reports whether the strategy ranks by level
func (s LocationStrategy) IsLevelBased() bool {
	return s == StrategyLowestLevel || s == StrategyHighestLevel
}

// RequiresFixedMapping reports whether the strategy maps items to a fixed slot
func (s LocationStrategy) RequiresFixedMapping() bool {
	return s == StrategyFixed
}

// String returns the string representation of the strategy
func (s LocationStrategy) String() string {
	return string(s)
}
