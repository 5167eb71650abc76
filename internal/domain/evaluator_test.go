package domain

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	shared "github.com/wms-platform/location-directive-service/shared/pkg/domain"
)

var binLocationComparer = cmp.Comparer(func(a, b shared.BinLocation) bool { return a == b })

func TestEvaluateLocation_CapacityOptimizedScore(t *testing.T) {
	d := mustDirective(t, shared.OperationPut, StrategyCapacityOptimized, 100,
		MustLocationConstraint(ConstraintCapacityRequirement, "gte", NumberValue(5.0)))
	q := mustQuery(t, shared.OperationPut, WithParameter(AttrAvailableCapacity, NumberValue(8.0)))

	result := NewDirectiveEvaluator().EvaluateLocation(q, loc("B-02-1"), []*LocationDirective{d}, nil)

	assert.True(t, result.Suitable)
	assert.Equal(t, 10080.0, result.Score)
	assert.Equal(t, 1, result.ApplicableDirectiveCount)
	assert.Empty(t, result.Violations)
}

func TestSelectOptimalLocation_FixedLocation(t *testing.T) {
	d := mustDirective(t, shared.OperationPick, StrategyFixed, 1)
	q := mustQuery(t, shared.OperationPick, WithParameter(ParamFixedLocation, StringValue("A1-01-1")))

	sel := NewDirectiveEvaluator().SelectOptimalLocation(q, []*LocationDirective{d}, nil)

	require.NotNil(t, sel.Location)
	assert.Equal(t, shared.MustBinLocation("A1", "01", "1"), *sel.Location)
	assert.True(t, sel.Directive.Equals(d))
}

func TestSelectOptimalLocation_NoDirectives(t *testing.T) {
	e := NewDirectiveEvaluator()
	q := mustQuery(t, shared.OperationPick)

	inactive := mustDirective(t, shared.OperationPick, StrategyFixed, 1)
	inactive.Deactivate()
	otherOp := mustDirective(t, shared.OperationPut, StrategyFixed, 1)

	for _, set := range [][]*LocationDirective{nil, {inactive, otherOp}} {
		sel := e.SelectOptimalLocation(q, set, nil)
		assert.Nil(t, sel.Location)
		assert.Zero(t, sel.Attempted)
		assert.False(t, e.CanSatisfyQuery(q, set))
	}

	result := e.EvaluateLocation(q, loc("A-01-1"), nil, nil)
	assert.False(t, result.Suitable)
	assert.Equal(t, []string{NoApplicableDirectives}, result.Violations)
}

func TestEvaluateLocation_ZoneViolation(t *testing.T) {
	d := mustDirective(t, shared.OperationPick, StrategyFastMoving, 2,
		MustLocationConstraint(ConstraintZoneRestriction, "equals", StringValue("FAST_PICK")))
	q := mustQuery(t, shared.OperationPick, WithParameter(AttrZone, StringValue("SLOW_PICK")))

	result := NewDirectiveEvaluator().EvaluateLocation(q, loc("A-01-1"), []*LocationDirective{d}, nil)

	assert.False(t, result.Suitable)
	assert.Zero(t, result.Score)
	assert.Equal(t, []string{"zone_restriction equals FAST_PICK"}, result.Violations)
	assert.Equal(t, 1, result.ApplicableDirectiveCount)
	assert.Zero(t, result.SuitableDirectiveCount)
	require.Len(t, result.Outcomes, 1)
	assert.Equal(t, ResultConstraintViolation, result.Outcomes[0].Result.Type)
}

func TestEvaluateLocation_Averaging(t *testing.T) {
	zone := MustLocationConstraint(ConstraintZoneRestriction, "equals", StringValue("FAST_PICK"))
	a := mustDirective(t, shared.OperationPick, StrategyFastMoving, 2, zone)
	b := mustDirective(t, shared.OperationPick, StrategyLowestLevel, 4)
	blocked := mustDirective(t, shared.OperationPick, StrategyFIFO, 1,
		MustLocationConstraint(ConstraintInventoryAvailable, "gt", IntValue(0)))

	q := mustQuery(t, shared.OperationPick, WithParameter(AttrZone, StringValue("FAST_PICK")))
	e := NewDirectiveEvaluator()

	single := e.EvaluateLocation(q, loc("A-01-1"), []*LocationDirective{a, blocked}, nil)
	assert.True(t, single.Suitable)
	assert.Equal(t, 250.0, single.Score, "one suitable directive scores exactly its own score")
	assert.Equal(t, 2, single.ApplicableDirectiveCount)
	assert.Equal(t, 1, single.SuitableDirectiveCount)

	both := e.EvaluateLocation(q, loc("A-01-1"), []*LocationDirective{a, b, blocked}, nil)
	assert.Equal(t, (250.0+400.0)/2, both.Score)
}

func TestEvaluateLocation_ViolationUnion(t *testing.T) {
	zone := MustLocationConstraint(ConstraintZoneRestriction, "equals", StringValue("FAST_PICK"))
	inventory := MustLocationConstraint(ConstraintInventoryAvailable, "gt", IntValue(0))
	a := mustDirective(t, shared.OperationPick, StrategyFIFO, 1, zone, inventory)
	b := mustDirective(t, shared.OperationPick, StrategyLIFO, 2, inventory)

	result := NewDirectiveEvaluator().EvaluateLocation(mustQuery(t, shared.OperationPick), loc("A-01-1"), []*LocationDirective{a, b}, nil)

	assert.False(t, result.Suitable)
	assert.Equal(t, []string{zone.String(), inventory.String()}, result.Violations)
}

func TestEvaluateLocation_Idempotent(t *testing.T) {
	d1 := mustDirective(t, shared.OperationPut, StrategyNearestEmpty, 3)
	d2 := mustDirective(t, shared.OperationPut, StrategyCapacityOptimized, 1,
		MustLocationConstraint(ConstraintCapacityRequirement, "gt", NumberValue(1)))
	overlay := StaticOverlay{loc("B-03-2"): {AttrAvailableCapacity: NumberValue(4)}}
	q := mustQuery(t, shared.OperationPut)
	set := []*LocationDirective{d1, d2}
	before := d1.Snapshot()

	e := NewDirectiveEvaluator()
	first := e.EvaluateLocation(q, loc("B-03-2"), set, overlay)
	second := e.EvaluateLocation(q, loc("B-03-2"), set, overlay)

	if diff := cmp.Diff(first, second, binLocationComparer); diff != "" {
		t.Errorf("evaluation not idempotent (-first +second):\n%s", diff)
	}
	if diff := cmp.Diff(before, d1.Snapshot(), binLocationComparer, cmp.Comparer(func(a, b LocationConstraint) bool { return a.Equals(b) })); diff != "" {
		t.Errorf("evaluation mutated the directive:\n%s", diff)
	}
}

func TestFindBestLocations(t *testing.T) {
	d := mustDirective(t, shared.OperationPut, StrategyCapacityOptimized, 1,
		MustLocationConstraint(ConstraintCapacityRequirement, "gt", NumberValue(0)))
	candidates := []shared.BinLocation{loc("A-01-1"), loc("A-02-1"), loc("A-03-1"), loc("A-04-1"), loc("A-05-1")}
	overlay := StaticOverlay{
		loc("A-01-1"): {AttrAvailableCapacity: NumberValue(2)},
		loc("A-02-1"): {AttrAvailableCapacity: NumberValue(0)},
		loc("A-03-1"): {AttrAvailableCapacity: NumberValue(7)},
		loc("A-04-1"): {AttrAvailableCapacity: NumberValue(5)},
		loc("A-05-1"): {AttrAvailableCapacity: NumberValue(7)},
	}
	q := mustQuery(t, shared.OperationPut, WithCandidates(candidates...))
	e := NewDirectiveEvaluator()

	scored := e.FindBestLocationsScored(q, 3, []*LocationDirective{d}, overlay)
	require.Len(t, scored, 3)
	for i := 1; i < len(scored); i++ {
		assert.GreaterOrEqual(t, scored[i-1].Score, scored[i].Score)
	}
	assert.Equal(t, []shared.BinLocation{loc("A-03-1"), loc("A-05-1"), loc("A-04-1")},
		e.FindBestLocations(q, 3, []*LocationDirective{d}, overlay))

	all := e.FindBestLocations(q, 10, []*LocationDirective{d}, overlay)
	assert.Len(t, all, 4, "zero-capacity slot is unsuitable")
	assert.Empty(t, e.FindBestLocations(q, 0, []*LocationDirective{d}, overlay))
}

func TestFindBestLocations_GeneratedGrid(t *testing.T) {
	d := mustDirective(t, shared.OperationMove, StrategyNearestEmpty, 1)
	e := NewDirectiveEvaluator()

	got := e.FindBestLocationsScored(mustQuery(t, shared.OperationMove), 5, []*LocationDirective{d}, nil)
	require.Len(t, got, 5)
	assert.Equal(t, loc("A1-01-1"), got[0].Location)
	assert.Equal(t, 200.0, got[0].Score)
	for i := 1; i < len(got); i++ {
		assert.GreaterOrEqual(t, got[i-1].Score, got[i].Score)
	}
}

func TestSelectOptimalLocation_Ordering(t *testing.T) {
	low := mustDirective(t, shared.OperationPick, StrategyFixed, 1)
	high := mustDirective(t, shared.OperationPick, StrategyLowestLevel, 50)
	q := mustQuery(t, shared.OperationPick, WithParameter(ParamFixedLocation, StringValue("F-01-1")))
	set := []*LocationDirective{high, low}

	asc := NewDirectiveEvaluator().SelectOptimalLocation(q, set, nil)
	require.NotNil(t, asc.Location)
	assert.True(t, asc.Directive.Equals(low))

	desc := NewDirectiveEvaluator(WithPriorityOrder(PriorityDescending)).SelectOptimalLocation(q, set, nil)
	require.NotNil(t, desc.Location)
	assert.True(t, desc.Directive.Equals(high))
	assert.Equal(t, loc("A1-01-1"), *desc.Location)
}

type panickingSelector struct {
	baseSelector
}

func (panickingSelector) Select(SelectionRequest) (*shared.BinLocation, error) {
	panic("selector exploded")
}

func TestSelectOptimalLocation_StrategyFaultIsolation(t *testing.T) {
	registry := NewSelectorRegistry(WithSelector(panickingSelector{baseSelector{strategy: StrategyBulkLocation}}))
	broken := mustDirective(t, shared.OperationPut, StrategyBulkLocation, 1)
	fallback := mustDirective(t, shared.OperationPut, StrategyFixed, 2)
	q := mustQuery(t, shared.OperationPut, WithParameter(ParamFixedLocation, StringValue("R-02-3")))

	sel := NewDirectiveEvaluator(WithRegistry(registry)).SelectOptimalLocation(q, []*LocationDirective{broken, fallback}, nil)

	require.NotNil(t, sel.Location)
	assert.Equal(t, loc("R-02-3"), *sel.Location)
	assert.Equal(t, 2, sel.Attempted)
	require.Len(t, sel.Faults, 1)
	assert.Equal(t, broken.ID(), sel.Faults[0].DirectiveID)
	assert.Contains(t, sel.Faults[0].Error(), "selector exploded")
}

func TestSelectOptimalLocation_DefaultDirectiveWithoutConstraints(t *testing.T) {
	d, err := CreateDefaultDirective(shared.OperationMove, StrategyNearestEmpty)
	require.NoError(t, err)

	sel := NewDirectiveEvaluator().SelectOptimalLocation(mustQuery(t, shared.OperationMove), []*LocationDirective{d}, nil)
	assert.NotNil(t, sel.Location)
}

func TestValidateDirective(t *testing.T) {
	accessibility := MustLocationConstraint(ConstraintAccessibility, "equals", StringValue("STANDARD"))
	inactive := mustDirective(t, shared.OperationPick, StrategyFixed, 1)
	inactive.Deactivate()

	tests := []struct {
		name      string
		directive *LocationDirective
		want      []string
	}{
		{"fixed without constraints", mustDirective(t, shared.OperationPick, StrategyFixed, 1), []string{}},
		{"nearest without constraints", mustDirective(t, shared.OperationPick, StrategyNearestEmpty, 1), []string{IssueNoConstraints}},
		{"fifo without inventory", mustDirective(t, shared.OperationPick, StrategyFIFO, 1, accessibility), []string{IssueMissingInventory}},
		{"zone based without zone", mustDirective(t, shared.OperationPick, StrategyZoneBased, 1, accessibility), []string{IssueMissingZone}},
		{"capacity optimized empty", mustDirective(t, shared.OperationPut, StrategyCapacityOptimized, 1), []string{IssueNoConstraints, IssueMissingInventory}},
		{"inactive", inactive, []string{IssueInactive}},
		{"unknown constraint type", mustDirective(t, shared.OperationPick, StrategyRandom, 1,
			MustLocationConstraint(ConstraintType("aisle_width"), "gt", NumberValue(1))), []string{"Unknown constraint type: aisle_width"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ValidateDirective(tt.directive)
			assert.Equal(t, tt.want, got.Issues)
			assert.Equal(t, len(tt.want) == 0, got.Valid)
		})
	}

	assert.False(t, ValidateDirective(nil).Valid)
}

func TestCreateDefaultDirective(t *testing.T) {
	tests := []struct {
		op    shared.OperationType
		types []ConstraintType
	}{
		{shared.OperationPick, []ConstraintType{ConstraintAccessibility, ConstraintInventoryAvailable}},
		{shared.OperationPut, []ConstraintType{ConstraintCapacityRequirement, ConstraintAccessibility}},
		{shared.OperationCount, []ConstraintType{ConstraintAccessibility}},
		{shared.OperationReplenish, nil},
	}

	for _, tt := range tests {
		t.Run(string(tt.op), func(t *testing.T) {
			d, err := CreateDefaultDirective(tt.op, StrategyNearestEmpty)
			require.NoError(t, err)

			assert.Equal(t, "Default "+string(tt.op)+" nearest_empty", d.Name())
			assert.Equal(t, "Default directive for "+string(tt.op)+" operations using nearest_empty strategy", d.Description())
			assert.Equal(t, DefaultDirectivePriority, d.Priority())
			assert.Equal(t, SystemUser, d.CreatedBy())
			assert.True(t, d.IsActive())

			var types []ConstraintType
			for _, c := range d.Constraints() {
				types = append(types, c.Type())
			}
			assert.Equal(t, tt.types, types)
		})
	}
}

func TestParsePriorityOrder(t *testing.T) {
	o, err := ParsePriorityOrder("")
	require.NoError(t, err)
	assert.Equal(t, PriorityAscending, o)
	o, err = ParsePriorityOrder("descending")
	require.NoError(t, err)
	assert.Equal(t, PriorityDescending, o)
	_, err = ParsePriorityOrder("sideways")
	assert.Error(t, err)
}

func TestCandidateUniverse_CoversRandomDraws(t *testing.T) {
	e := NewDirectiveEvaluator()
	q := mustQuery(t, shared.OperationCount)
	base := CandidateUniverse(q)

	fixed := mustDirective(t, shared.OperationCount, StrategyFixed, 1)
	assert.Len(t, e.CandidateUniverse(q, []*LocationDirective{fixed}), len(base))

	random := mustDirective(t, shared.OperationCount, StrategyRandom, 2)
	universe := e.CandidateUniverse(q, []*LocationDirective{fixed, random})
	seen := make(map[shared.BinLocation]bool, len(universe))
	for _, l := range universe {
		assert.False(t, seen[l], "duplicate %s", l)
		seen[l] = true
	}
	for _, l := range RandomDrawSpace() {
		assert.True(t, seen[l], "missing %s", l)
	}

	explicit := mustQuery(t, shared.OperationCount, WithCandidates(loc("Z-01-1")))
	assert.Equal(t, []shared.BinLocation{loc("Z-01-1")}, e.CandidateUniverse(explicit, []*LocationDirective{random}))
}
