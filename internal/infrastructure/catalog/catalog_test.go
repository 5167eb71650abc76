package catalog

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/multierr"

	"github.com/wms-platform/location-directive-service/internal/domain"
	"github.com/wms-platform/location-directive-service/internal/infrastructure/memory"
	shared "github.com/wms-platform/location-directive-service/shared/pkg/domain"
	"github.com/wms-platform/location-directive-service/shared/pkg/logging"
)

const sample = `
directives:
  - id: 5b0c7a52-8f8e-4a8b-9d2c-0c7f6f1f6a01
    name: Fast pick
    operationType: pick
    strategy: fast_moving
    priority: 1
    constraints:
      - type: zone_restriction
        operator: in
        value: FAST_PICK,MEDIUM_PICK
      - type: inventory_available
        operator: gt
        value: 0
  - id: 5b0c7a52-8f8e-4a8b-9d2c-0c7f6f1f6a02
    name: Reserve put
    operationType: put
    strategy: capacity_optimized
    priority: 10
    active: false
    createdBy: planner
    constraints:
      - type: capacity_requirement
        operator: gte
        value: 2.5
locations:
  - id: A-01-1
    attributes:
      zone: FAST_PICK
      available_inventory: 12
`

func TestParseAndBuild(t *testing.T) {
	f, err := Parse(strings.NewReader(sample))
	require.NoError(t, err)

	directives, err := f.BuildDirectives()
	require.NoError(t, err)
	require.Len(t, directives, 2)

	fast := directives[0]
	assert.Equal(t, domain.DirectiveID("5b0c7a52-8f8e-4a8b-9d2c-0c7f6f1f6a01"), fast.ID())
	assert.Equal(t, domain.SystemUser, fast.CreatedBy())
	assert.True(t, fast.IsActive())
	require.Len(t, fast.Constraints(), 2)
	assert.Equal(t, "inventory_available gt 0", fast.Constraints()[1].String())

	reserve := directives[1]
	assert.False(t, reserve.IsActive())
	assert.Equal(t, "planner", reserve.CreatedBy())

	overlay, err := f.Overlay()
	require.NoError(t, err)
	n, ok := overlay.AttributesFor(shared.MustBinLocation("A", "01", "1")).GetInt(domain.AttrAvailableInventory)
	assert.True(t, ok)
	assert.Equal(t, 12, n)
}

func TestParse_RejectsInvalidEntries(t *testing.T) {
	doc := `
directives:
  - id: not-a-uuid
    name: ""
    operationType: pick
    strategy: fixed
    priority: 0
`
	_, err := Parse(strings.NewReader(doc))
	require.Error(t, err)
	assert.Len(t, multierr.Errors(err), 3)
	assert.Contains(t, err.Error(), "Priority")

	_, err = Parse(strings.NewReader("directives:\n  - id: x\n    bogus: 1\n"))
	assert.ErrorContains(t, err, "bogus")
}

func TestBuildDirectives_AggregatesErrors(t *testing.T) {
	f := &File{Directives: []DirectiveEntry{
		{ID: "5b0c7a52-8f8e-4a8b-9d2c-0c7f6f1f6a03", Name: "A", OperationType: "ship", Strategy: "fixed", Priority: 1},
		{ID: "5b0c7a52-8f8e-4a8b-9d2c-0c7f6f1f6a04", Name: "B", OperationType: "pick", Strategy: "teleport", Priority: 1},
		{ID: "5b0c7a52-8f8e-4a8b-9d2c-0c7f6f1f6a05", Name: "C", OperationType: "pick", Strategy: "fixed", Priority: 1,
			Constraints: []ConstraintEntry{{Type: "zone_restriction", Operator: "equals"}}},
	}}

	_, err := f.BuildDirectives()
	require.Error(t, err)
	errs := multierr.Errors(err)
	require.Len(t, errs, 3)
	assert.ErrorIs(t, errs[0], shared.ErrInvalidOperationType)
	assert.ErrorIs(t, errs[1], domain.ErrInvalidStrategy)
	assert.ErrorIs(t, errs[2], domain.ErrInvalidConstraint)
}

func TestSeed_SkipsExisting(t *testing.T) {
	ctx := context.Background()
	f, err := Parse(strings.NewReader(sample))
	require.NoError(t, err)

	directives := memory.NewLocationDirectiveRepository()
	attributes := memory.NewLocationAttributeRepository(nil)

	result, err := Seed(ctx, f, directives, attributes, logging.NewNop())
	require.NoError(t, err)
	assert.Equal(t, SeedResult{Created: 2, Locations: 1}, result)

	result, err = Seed(ctx, f, directives, nil, logging.NewNop())
	require.NoError(t, err)
	assert.Equal(t, SeedResult{Skipped: 2}, result)

	n, err := directives.CountActive(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

func TestSeed_KeepsStoredAttributes(t *testing.T) {
	ctx := context.Background()
	f, err := Parse(strings.NewReader(sample))
	require.NoError(t, err)

	slot := shared.MustBinLocation("A", "01", "1")
	attributes := memory.NewLocationAttributeRepository(domain.StaticOverlay{
		slot: {domain.AttrZone: domain.StringValue("RESERVE")},
	})

	result, err := Seed(ctx, f, memory.NewLocationDirectiveRepository(), attributes, logging.NewNop())
	require.NoError(t, err)
	assert.Equal(t, SeedResult{Created: 2, LocationsSkipped: 1}, result)

	stored, err := attributes.FindByLocations(ctx, []shared.BinLocation{slot})
	require.NoError(t, err)
	zone, ok := stored[slot].GetString(domain.AttrZone)
	require.True(t, ok)
	assert.Equal(t, "RESERVE", zone)
}
