package domain

import (
	"sort"
	"strings"

	shared "github.com/wms-platform/location-directive-service/shared/pkg/domain"
)

// Well-known attribute keys read by constraints and selectors
const (
	AttrZone               = "zone"
	AttrAvailableCapacity  = "available_capacity"
	AttrAccessibility      = "accessibility"
	AttrSafetyLevel        = "safety_level"
	AttrTemperature        = "temperature"
	AttrHazmatCompatible   = "hazmat_compatible"
	AttrAvailableInventory = "available_inventory"
	AttrMaxWeight          = "max_weight"
	AttrMaxHeight          = "max_height"
	AttrIsEmpty            = "is_empty"
	AttrInventoryAge       = "inventory_age"
	AttrEquipment          = "equipment"
	AttrAisle              = "aisle"
	AttrRack               = "rack"
	AttrLevel              = "level"
	AttrOperationType      = "work_type"
)

// DefaultEquipment is available at every location unless an overlay says otherwise
var DefaultEquipment = []string{"scanner", "printer"}

// LocationContext is the read-only attribute snapshot a constraint is evaluated against
type LocationContext struct {
	location   shared.BinLocation
	item       shared.SkuCode
	attributes Attributes
	equipment  map[string]struct{}
}

// NewLocationContext creates a context; attributes and equipment are copied
func NewLocationContext(location shared.BinLocation, item shared.SkuCode, attributes Attributes, equipment []string) LocationContext {
	eq := make(map[string]struct{}, len(equipment))
	for _, e := range equipment {
		if e = strings.TrimSpace(e); e != "" {
			eq[e] = struct{}{}
		}
	}
	return LocationContext{
		location:   location,
		item:       item,
		attributes: attributes.Clone(),
		equipment:  eq,
	}
}

// Location returns the location under evaluation
func (c LocationContext) Location() shared.BinLocation {
	return c.location
}

// Item returns the item, if one was supplied
func (c LocationContext) Item() (shared.SkuCode, bool) {
	return c.item, !c.item.IsZero()
}

// Attribute returns a raw attribute
func (c LocationContext) Attribute(key string) (Value, bool) {
	return c.attributes.Get(key)
}

// Attributes returns a copy of the attribute bag
func (c LocationContext) Attributes() Attributes {
	return c.attributes.Clone()
}

// Zone returns the zone attribute
func (c LocationContext) Zone() (string, bool) {
	return c.attributes.GetString(AttrZone)
}

// AvailableCapacity returns the available capacity attribute
func (c LocationContext) AvailableCapacity() (float64, bool) {
	return c.attributes.GetFloat(AttrAvailableCapacity)
}

// Accessibility returns the accessibility attribute
func (c LocationContext) Accessibility() (string, bool) {
	return c.attributes.GetString(AttrAccessibility)
}

// SafetyLevel returns the safety level attribute
func (c LocationContext) SafetyLevel() (string, bool) {
	return c.attributes.GetString(AttrSafetyLevel)
}

// Temperature returns the temperature attribute
func (c LocationContext) Temperature() (float64, bool) {
	return c.attributes.GetFloat(AttrTemperature)
}

// HazmatCompatible returns the hazmat compatibility attribute
func (c LocationContext) HazmatCompatible() (bool, bool) {
	return c.attributes.GetBool(AttrHazmatCompatible)
}

// AvailableInventory returns the available inventory attribute
func (c LocationContext) AvailableInventory() (int, bool) {
	return c.attributes.GetInt(AttrAvailableInventory)
}

// MaxWeight returns the max weight attribute
func (c LocationContext) MaxWeight() (float64, bool) {
	return c.attributes.GetFloat(AttrMaxWeight)
}

// MaxHeight returns the max height attribute
func (c LocationContext) MaxHeight() (float64, bool) {
	return c.attributes.GetFloat(AttrMaxHeight)
}

// InventoryAge returns the age of the stock held at the location
func (c LocationContext) InventoryAge() (float64, bool) {
	return c.attributes.GetFloat(AttrInventoryAge)
}

// HasEquipment reports whether the equipment is available
func (c LocationContext) HasEquipment(name string) bool {
	_, ok := c.equipment[strings.TrimSpace(name)]
	return ok
}

// Equipment returns the available equipment, sorted
func (c LocationContext) Equipment() []string {
	out := make([]string, 0, len(c.equipment))
	for e := range c.equipment {
		out = append(out, e)
	}
	sort.Strings(out)
	return out
}

// AttributeOverlay supplies per-location attributes such as inventory or capacity
type AttributeOverlay interface {
	AttributesFor(location shared.BinLocation) Attributes
}

// StaticOverlay is an in-memory AttributeOverlay keyed by location
type StaticOverlay map[shared.BinLocation]Attributes

// AttributesFor returns the attributes recorded for location
func (o StaticOverlay) AttributesFor(location shared.BinLocation) Attributes {
	return o[location]
}

// ContextBuilder assembles LocationContexts from a query and an optional overlay
type ContextBuilder struct {
	overlay   AttributeOverlay
	equipment []string
}

// NewContextBuilder creates a builder. With no equipment given, DefaultEquipment is used.
func NewContextBuilder(overlay AttributeOverlay, equipment ...string) *ContextBuilder {
	if len(equipment) == 0 {
		equipment = DefaultEquipment
	}
	return &ContextBuilder{overlay: overlay, equipment: append([]string(nil), equipment...)}
}

// Build creates the context for evaluating location under query.
// Precedence, lowest first: query parameters, overlay attributes, location coordinates and operation type.
func (b *ContextBuilder) Build(query LocationQuery, location shared.BinLocation) LocationContext {
	attrs := query.Parameters()

	equipment := append([]string(nil), b.equipment...)
	if b.overlay != nil {
		for k, v := range b.overlay.AttributesFor(location) {
			attrs[k] = v
		}
	}
	if extra, ok := attrs.GetString(AttrEquipment); ok {
		equipment = append(equipment, strings.Split(extra, ",")...)
	}

	attrs[AttrAisle] = StringValue(location.Aisle())
	attrs[AttrRack] = StringValue(location.Rack())
	attrs[AttrLevel] = StringValue(location.Level())
	attrs[AttrOperationType] = StringValue(query.OperationType().String())

	return NewLocationContext(location, query.Item(), attrs, equipment)
}
