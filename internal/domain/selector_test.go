package domain

import (
	"errors"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	shared "github.com/wms-platform/location-directive-service/shared/pkg/domain"
)

func loc(s string) shared.BinLocation {
	l, err := shared.ParseBinLocation(s)
	if err != nil {
		panic(err)
	}
	return l
}

func mustQuery(t *testing.T, op shared.OperationType, opts ...QueryOption) LocationQuery {
	t.Helper()
	q, err := NewLocationQuery(op, shared.MustSkuCode("SKU-100"), shared.MustQuantity(1), opts...)
	require.NoError(t, err)
	return q
}

func mustDirective(t *testing.T, op shared.OperationType, strategy LocationStrategy, priority int, constraints ...LocationConstraint) *LocationDirective {
	t.Helper()
	d, err := NewLocationDirective(string(strategy)+" directive", "", op, strategy, priority, WithConstraints(constraints...))
	require.NoError(t, err)
	return d
}

func selectWith(t *testing.T, registry *SelectorRegistry, q LocationQuery, d *LocationDirective, overlay AttributeOverlay) *shared.BinLocation {
	t.Helper()
	builder := NewContextBuilder(overlay)
	got, err := registry.Resolve(d.Strategy()).Select(SelectionRequest{
		Query:     q,
		Directive: d,
		Context:   func(l shared.BinLocation) LocationContext { return builder.Build(q, l) },
	})
	require.NoError(t, err)
	return got
}

func TestAisleDistance(t *testing.T) {
	tests := []struct {
		a, b string
		want int
	}{
		{"A", "A", 0},
		{"A", "C", 2},
		{"c", "a", 2},
		{"A1", "A4", 3},
		{"AB", "C", 1},
		{"", "B", 0},
	}
	for _, tt := range tests {
		if got := AisleDistance(tt.a, tt.b); got != tt.want {
			t.Errorf("AisleDistance(%q, %q) = %d, want %d", tt.a, tt.b, got, tt.want)
		}
	}
}

func TestWeightedAndOriginDistance(t *testing.T) {
	d, ok := WeightedDistance(loc("A-01-1"), loc("C-04-3"))
	require.True(t, ok)
	assert.Equal(t, 2*10+3+2*2, d)

	_, ok = WeightedDistance(loc("A-01-1"), loc("A-XX-1"))
	assert.False(t, ok)

	assert.Equal(t, 0, OriginDistance(loc("A-01-1")))
	assert.Equal(t, 2+4+1, OriginDistance(loc("c-05-2")))
	assert.Equal(t, 2+0+0, OriginDistance(loc("3-01-1")))
	assert.Equal(t, 0+1+0, OriginDistance(loc("A1-02-1")), "multi-character aisles contribute nothing")
}

func TestNeighborhood(t *testing.T) {
	n, err := Neighborhood(loc("A-01-1"))
	require.NoError(t, err)
	// racks clamp to 01..03, levels to 1..2
	assert.Len(t, n, 6)
	assert.Equal(t, loc("A-01-1"), n[0])

	n, err = Neighborhood(loc("B-05-2"))
	require.NoError(t, err)
	assert.Len(t, n, 15)

	_, err = Neighborhood(loc("B-XX-2"))
	assert.Error(t, err)
}

func TestDefaultCandidateGrid(t *testing.T) {
	grid := DefaultCandidateGrid()
	require.Len(t, grid, 50)
	assert.Equal(t, loc("A1-01-1"), grid[0])
	assert.Equal(t, loc("A1-10-3"), grid[29])
	assert.Equal(t, loc("A2-07-2"), grid[49])
}

func TestFixedSelector(t *testing.T) {
	registry := NewSelectorRegistry()
	d := mustDirective(t, shared.OperationPick, StrategyFixed, 1)

	got := selectWith(t, registry, mustQuery(t, shared.OperationPick, WithParameter(ParamFixedLocation, StringValue("A1-01-1"))), d, nil)
	require.NotNil(t, got)
	assert.Equal(t, loc("A1-01-1"), *got)

	got = selectWith(t, registry, mustQuery(t, shared.OperationPick, WithParameter(ParamFixedLocation, StringValue("A1-01"))), d, nil)
	assert.Nil(t, got, "malformed fixed location yields no placement")

	first := selectWith(t, registry, mustQuery(t, shared.OperationPick), d, nil)
	second := selectWith(t, registry, mustQuery(t, shared.OperationPick), d, nil)
	require.NotNil(t, first)
	assert.Equal(t, *first, *second, "hashed slot is stable per item")
	level, ok := first.LevelNumber()
	assert.True(t, ok)
	assert.True(t, level >= 1 && level <= 5)
}

func TestNearestEmptySelector(t *testing.T) {
	registry := NewSelectorRegistry()
	d := mustDirective(t, shared.OperationPut, StrategyNearestEmpty, 1)

	// odd levels count as empty without inventory data
	got := selectWith(t, registry, mustQuery(t, shared.OperationPut, WithReferenceLocation(loc("A-05-2"))), d, nil)
	require.NotNil(t, got)
	assert.Equal(t, loc("A-05-1"), *got)

	q := mustQuery(t, shared.OperationPut, WithCandidates(loc("C-01-1"), loc("A-09-1"), loc("A-02-1")))
	overlay := StaticOverlay{
		loc("A-02-1"): {AttrAvailableInventory: IntValue(5)},
		loc("A-09-1"): {AttrIsEmpty: BoolValue(true)},
		loc("C-01-1"): {AttrIsEmpty: BoolValue(true)},
	}
	got = selectWith(t, registry, q, d, overlay)
	require.NotNil(t, got)
	assert.Equal(t, loc("A-09-1"), *got, "occupied A-02-1 is skipped, C is two aisles away")

	constrained := mustDirective(t, shared.OperationPut, StrategyNearestEmpty, 1,
		MustLocationConstraint(ConstraintZoneRestriction, "equals", StringValue("RESERVE")))
	assert.Nil(t, selectWith(t, registry, q, constrained, overlay))
}

func TestNearestEmptySelector_BadReferenceIsFault(t *testing.T) {
	registry := NewSelectorRegistry()
	d := mustDirective(t, shared.OperationPut, StrategyNearestEmpty, 1)
	q := mustQuery(t, shared.OperationPut, WithReferenceLocation(loc("A-R1-1")))

	_, err := registry.Resolve(StrategyNearestEmpty).Select(SelectionRequest{Query: q, Directive: d})
	assert.Error(t, err)
}

func TestRandomSelector_Deterministic(t *testing.T) {
	d := mustDirective(t, shared.OperationMove, StrategyRandom, 1,
		MustLocationConstraint(ConstraintZoneRestriction, "in", StringValue("A,B")))
	q := mustQuery(t, shared.OperationMove, WithCandidates(loc("X-01-1"), loc("X-02-1"), loc("X-03-1"), loc("X-04-1")))
	overlay := StaticOverlay{
		loc("X-01-1"): {AttrZone: StringValue("A")},
		loc("X-02-1"): {AttrZone: StringValue("C")},
		loc("X-03-1"): {AttrZone: StringValue("B")},
		loc("X-04-1"): {AttrZone: StringValue("C")},
	}

	r1 := NewSelectorRegistry(WithRandomSource(rand.New(rand.NewSource(7))))
	r2 := NewSelectorRegistry(WithRandomSource(rand.New(rand.NewSource(7))))
	for i := 0; i < 20; i++ {
		a := selectWith(t, r1, q, d, overlay)
		b := selectWith(t, r2, q, d, overlay)
		require.NotNil(t, a)
		assert.Equal(t, *a, *b)
		assert.Contains(t, []shared.BinLocation{loc("X-01-1"), loc("X-03-1")}, *a)
	}

	open := mustDirective(t, shared.OperationMove, StrategyRandom, 1)
	drawn := selectWith(t, r1, mustQuery(t, shared.OperationMove), open, nil)
	require.NotNil(t, drawn)
	rack, ok := drawn.RackNumber()
	assert.True(t, ok && rack >= 1 && rack <= 20)
}

func TestRankedSelectors(t *testing.T) {
	candidates := []shared.BinLocation{loc("A-01-2"), loc("A-02-1"), loc("A-03-4"), loc("A-04-3")}
	overlay := StaticOverlay{
		loc("A-01-2"): {AttrAvailableCapacity: NumberValue(3), AttrZone: StringValue("MEDIUM_PICK"), AttrInventoryAge: NumberValue(10)},
		loc("A-02-1"): {AttrAvailableCapacity: NumberValue(9), AttrZone: StringValue("BULK"), AttrInventoryAge: NumberValue(40)},
		loc("A-03-4"): {AttrAvailableCapacity: NumberValue(12), AttrZone: StringValue("FAST_PICK"), AttrInventoryAge: NumberValue(2)},
		loc("A-04-3"): {AttrAvailableCapacity: NumberValue(12), AttrZone: StringValue("BULK")},
	}

	tests := []struct {
		strategy LocationStrategy
		opts     []QueryOption
		want     string
	}{
		{StrategyCapacityOptimized, nil, "A-03-4"},
		{StrategyBulkLocation, nil, "A-04-3"},
		{StrategyFastMoving, nil, "A-03-4"},
		{StrategyZoneBased, []QueryOption{WithParameter(ParamRequiredZone, StringValue("MEDIUM_PICK"))}, "A-01-2"},
		{StrategyZoneBased, nil, "A-01-2"},
		{StrategyFIFO, nil, "A-02-1"},
		{StrategyLIFO, nil, "A-03-4"},
		{StrategyLowestLevel, nil, "A-02-1"},
		{StrategyHighestLevel, nil, "A-03-4"},
	}

	registry := NewSelectorRegistry()
	for _, tt := range tests {
		t.Run(string(tt.strategy), func(t *testing.T) {
			q := mustQuery(t, shared.OperationPut, append([]QueryOption{WithCandidates(candidates...)}, tt.opts...)...)
			d := mustDirective(t, shared.OperationPut, tt.strategy, 1)
			got := selectWith(t, registry, q, d, overlay)
			require.NotNil(t, got)
			assert.Equal(t, loc(tt.want), *got)
		})
	}
}

func TestRankedSelector_NoSurvivor(t *testing.T) {
	registry := NewSelectorRegistry()
	d := mustDirective(t, shared.OperationPut, StrategyLowestLevel, 1,
		MustLocationConstraint(ConstraintCapacityRequirement, "gt", NumberValue(0)))
	// the generated grid carries no capacity data
	assert.Nil(t, selectWith(t, registry, mustQuery(t, shared.OperationPut), d, nil))
}

type stubSelector struct {
	baseSelector
	loc *shared.BinLocation
	err error
}

func (s *stubSelector) Select(SelectionRequest) (*shared.BinLocation, error) {
	return s.loc, s.err
}

func TestSelectorRegistry(t *testing.T) {
	registry := NewSelectorRegistry()
	for _, s := range AllStrategies() {
		sel := registry.Resolve(s)
		assert.True(t, sel.Supports(s), s)
		assert.NotEmpty(t, sel.Description(), s)
	}
	assert.Equal(t, StrategyRandom, registry.Resolve("unmapped").Strategy())
	assert.Len(t, registry.Strategies(), len(AllStrategies()))

	stub := &stubSelector{baseSelector: baseSelector{strategy: StrategyRandom}, err: errors.New("boom")}
	overridden := NewSelectorRegistry(WithSelector(stub))
	assert.Same(t, stub, overridden.Resolve("unmapped"))
}

func TestScoreBonuses(t *testing.T) {
	registry := NewSelectorRegistry()
	near := contextWith(nil)
	far := NewLocationContext(loc("Z-30-9"), shared.SkuCode{}, nil, nil)

	assert.Equal(t, 100.0, registry.Bonus(StrategyNearestEmpty)(near))
	assert.Equal(t, 0.0, registry.Bonus(StrategyNearestEmpty)(far))
	assert.Equal(t, 80.0, registry.Bonus(StrategyCapacityOptimized)(contextWith(Attributes{AttrAvailableCapacity: NumberValue(8)})))
	assert.Equal(t, 100.0, registry.Bonus(StrategyCapacityOptimized)(contextWith(Attributes{AttrAvailableCapacity: NumberValue(30)})))
	assert.Equal(t, 0.0, registry.Bonus(StrategyCapacityOptimized)(near))
	assert.Equal(t, 50.0, registry.Bonus(StrategyFastMoving)(contextWith(Attributes{AttrZone: StringValue("FAST_PICK")})))
	assert.Equal(t, 25.0, registry.Bonus(StrategyFastMoving)(contextWith(Attributes{AttrZone: StringValue("MEDIUM_PICK")})))
	assert.Equal(t, 0.0, registry.Bonus(StrategyFIFO)(contextWith(Attributes{AttrAvailableCapacity: NumberValue(8)})))
}
