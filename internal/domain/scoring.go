package domain

import "math"

// Zones recognised by the fast-moving strategy
const (
	ZoneFastPick   = "FAST_PICK"
	ZoneMediumPick = "MEDIUM_PICK"
	ZoneBulk       = "BULK"
)

// NearestEmptyBonus rewards locations close to the default origin
func NearestEmptyBonus(ctx LocationContext) float64 {
	return math.Max(0, 100-10*float64(OriginDistance(ctx.Location())))
}

// CapacityBonus rewards available capacity, capped at 100
func CapacityBonus(ctx LocationContext) float64 {
	capacity, ok := ctx.AvailableCapacity()
	if !ok {
		return 0
	}
	return math.Min(100, capacity*10)
}

// FastMovingBonus rewards fast and medium pick zones
func FastMovingBonus(ctx LocationContext) float64 {
	zone, _ := ctx.Zone()
	switch zone {
	case ZoneFastPick:
		return 50
	case ZoneMediumPick:
		return 25
	default:
		return 0
	}
}
