package domain

// ConstraintType identifies what a LocationConstraint checks
type ConstraintType string

const (
	ConstraintZoneRestriction     ConstraintType = "zone_restriction"
	ConstraintCapacityRequirement ConstraintType = "capacity_requirement"
	ConstraintAccessibility       ConstraintType = "accessibility"
	ConstraintEquipment           ConstraintType = "equipment_requirement"
	ConstraintSafetyRestriction   ConstraintType = "safety_restriction"
	ConstraintTemperatureRange    ConstraintType = "temperature_range"
	ConstraintHazmatCompatibility ConstraintType = "hazmat_compatibility"
	ConstraintInventoryAvailable  ConstraintType = "inventory_available"
	ConstraintHeightRestriction   ConstraintType = "height_restriction"
	ConstraintWeightRestriction   ConstraintType = "weight_restriction"
)

// ConstraintCategory groups constraint types for validation and reporting
type ConstraintCategory string

const (
	CategoryPhysical      ConstraintCategory = "physical"
	CategoryEnvironmental ConstraintCategory = "environmental"
	CategoryOperational   ConstraintCategory = "operational"
	CategoryZone          ConstraintCategory = "zone"
)

type constraintTypeInfo struct {
	description string
	category    ConstraintCategory
}

var constraintTypes = map[ConstraintType]constraintTypeInfo{
	ConstraintZoneRestriction:     {"Restricts location to specific zones", CategoryZone},
	ConstraintCapacityRequirement: {"Requires minimum available capacity", CategoryPhysical},
	ConstraintAccessibility:       {"Requires specific accessibility level", CategoryOperational},
	ConstraintEquipment:           {"Requires specific equipment availability", CategoryOperational},
	ConstraintSafetyRestriction:   {"Applies safety level restrictions", CategoryEnvironmental},
	ConstraintTemperatureRange:    {"Requires specific temperature range", CategoryEnvironmental},
	ConstraintHazmatCompatibility: {"Requires hazmat compatibility", CategoryEnvironmental},
	ConstraintInventoryAvailable:  {"Requires available inventory", CategoryOperational},
	ConstraintHeightRestriction:   {"Restricts by location height", CategoryPhysical},
	ConstraintWeightRestriction:   {"Restricts by location weight capacity", CategoryPhysical},
}

// AllConstraintTypes returns every known constraint type
func AllConstraintTypes() []ConstraintType {
	return []ConstraintType{
		ConstraintZoneRestriction, ConstraintCapacityRequirement, ConstraintAccessibility,
		ConstraintEquipment, ConstraintSafetyRestriction, ConstraintTemperatureRange,
		ConstraintHazmatCompatibility, ConstraintInventoryAvailable,
		ConstraintHeightRestriction, ConstraintWeightRestriction,
	}
}

// IsValid checks if the constraint type is known to this build
func (t ConstraintType) IsValid() bool {
	_, ok := constraintTypes[t]
	return ok
}

// Description returns a human readable description
func (t ConstraintType) Description() string {
	return constraintTypes[t].description
}

// Category returns the validation group of the type
func (t ConstraintType) Category() ConstraintCategory {
	return constraintTypes[t].category
}

// IsPhysical reports whether the type checks physical slot properties
func (t ConstraintType) IsPhysical() bool {
	return t.Category() == CategoryPhysical
}

// IsEnvironmental reports whether the type checks environmental conditions
func (t ConstraintType) IsEnvironmental() bool {
	return t.Category() == CategoryEnvironmental
}

// IsOperational reports whether the type checks operational readiness
func (t ConstraintType) IsOperational() bool {
	return t.Category() == CategoryOperational
}

// IsZoneBased reports whether the type restricts by zone
func (t ConstraintType) IsZoneBased() bool {
	return t.Category() == CategoryZone
}
