package domain

import (
	"strconv"
	"strings"

	shared "github.com/wms-platform/location-directive-service/shared/pkg/domain"
)

// Weights of the nearest-empty distance metric
const (
	AisleDistanceWeight = 10
	RackDistanceWeight  = 1
	LevelDistanceWeight = 2
)

// AisleDistance compares aisle identifiers: equal aisles are 0 apart, single-character
// aisles compare directly, longer ones by their trailing character.
func AisleDistance(a, b string) int {
	if a == b {
		return 0
	}
	if a == "" || b == "" {
		return 0
	}
	if len(a) == 1 && len(b) == 1 {
		return abs(int(a[0]) - int(b[0]))
	}
	return abs(int(a[len(a)-1]) - int(b[len(b)-1]))
}

// WeightedDistance is the nearest-empty metric between two locations.
// It reports false when a rack or level is not numeric.
func WeightedDistance(from, to shared.BinLocation) (int, bool) {
	fromRack, ok1 := from.RackNumber()
	toRack, ok2 := to.RackNumber()
	fromLevel, ok3 := from.LevelNumber()
	toLevel, ok4 := to.LevelNumber()
	if !ok1 || !ok2 || !ok3 || !ok4 {
		return 0, false
	}
	return AisleDistance(from.Aisle(), to.Aisle())*AisleDistanceWeight +
		abs(fromRack-toRack)*RackDistanceWeight +
		abs(fromLevel-toLevel)*LevelDistanceWeight, true
}

// OriginDistance is the unweighted distance of location from the default origin
// (aisle 1 or A, rack 1, level 1) used by nearest-empty scoring.
// Components that cannot be read as numbers or letters contribute 0.
func OriginDistance(location shared.BinLocation) int {
	d := 0
	aisle := location.Aisle()
	if n, err := strconv.Atoi(aisle); err == nil {
		d += abs(n - 1)
	} else if len(aisle) == 1 {
		c := strings.ToUpper(aisle)[0]
		if c >= 'A' && c <= 'Z' {
			d += int(c - 'A')
		}
	}
	if rack, ok := location.RackNumber(); ok {
		d += abs(rack - 1)
	}
	if level, ok := location.LevelNumber(); ok {
		d += abs(level - 1)
	}
	return d
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
