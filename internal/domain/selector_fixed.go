package domain

import (
	"fmt"
	"hash/fnv"

	shared "github.com/wms-platform/location-directive-service/shared/pkg/domain"
)

// fixedSelector places an item in its configured slot, or in a slot derived from its code
type fixedSelector struct {
	baseSelector
}

func newFixedSelector() *fixedSelector {
	return &fixedSelector{baseSelector{
		strategy:    StrategyFixed,
		description: "Selects fixed predetermined locations",
	}}
}

func (s *fixedSelector) Select(req SelectionRequest) (*shared.BinLocation, error) {
	if fixed, ok := req.Query.FixedLocation(); ok {
		loc, err := shared.ParseBinLocation(fixed)
		if err != nil {
			return nil, nil
		}
		return &loc, nil
	}

	loc := hashedSlot(req.Query.Item())
	return &loc, nil
}

// hashedSlot maps an item code onto aisles A1..A10, racks 01..20, levels 1..5
func hashedSlot(item shared.SkuCode) shared.BinLocation {
	h := fnv.New32a()
	_, _ = h.Write([]byte(item.String()))
	sum := h.Sum32()

	return shared.MustBinLocation(
		fmt.Sprintf("A%d", sum%10+1),
		fmt.Sprintf("%02d", sum%20+1),
		fmt.Sprint(sum%5+1),
	)
}
