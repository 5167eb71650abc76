package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wms-platform/location-directive-service/internal/domain"
	shared "github.com/wms-platform/location-directive-service/shared/pkg/domain"
)

func newDirective(t *testing.T, name string, op shared.OperationType, strategy domain.LocationStrategy, priority int) *domain.LocationDirective {
	t.Helper()
	d, err := domain.NewLocationDirective(name, "", op, strategy, priority, domain.WithCreatedBy("tester"))
	require.NoError(t, err)
	return d
}

func TestSave_OptimisticVersioning(t *testing.T) {
	ctx := context.Background()
	repo := NewLocationDirectiveRepository()
	d := newDirective(t, "Pick", shared.OperationPick, domain.StrategyFIFO, 2)

	require.NoError(t, repo.Save(ctx, d))
	assert.Equal(t, int64(1), d.Version())

	first, err := repo.FindByID(ctx, d.ID())
	require.NoError(t, err)
	second, err := repo.FindByID(ctx, d.ID())
	require.NoError(t, err)
	assert.NotSame(t, first, second, "every read returns a fresh instance")

	require.NoError(t, first.UpdatePriority(3))
	require.NoError(t, repo.Save(ctx, first))
	assert.Equal(t, int64(2), first.Version())

	require.NoError(t, second.UpdatePriority(4))
	assert.ErrorIs(t, repo.Save(ctx, second), domain.ErrVersionConflict)

	stored, err := repo.FindByID(ctx, d.ID())
	require.NoError(t, err)
	assert.Equal(t, 3, stored.Priority())
}

func TestFindByID_Missing(t *testing.T) {
	repo := NewLocationDirectiveRepository()
	d, err := repo.FindByID(context.Background(), domain.NewDirectiveID())
	assert.NoError(t, err)
	assert.Nil(t, d)
}

func TestQueries(t *testing.T) {
	ctx := context.Background()
	repo := NewLocationDirectiveRepository()

	fast := newDirective(t, "Fast pick", shared.OperationPick, domain.StrategyFastMoving, 1)
	slow := newDirective(t, "Slow pick", shared.OperationPick, domain.StrategyFIFO, 5)
	put := newDirective(t, "Reserve put", shared.OperationPut, domain.StrategyFIFO, 3)
	put.Deactivate()
	for _, d := range []*domain.LocationDirective{slow, put, fast} {
		require.NoError(t, repo.Save(ctx, d))
	}

	names := func(ds []*domain.LocationDirective, err error) []string {
		require.NoError(t, err)
		out := make([]string, 0, len(ds))
		for _, d := range ds {
			out = append(out, d.Name())
		}
		return out
	}

	assert.Equal(t, []string{"Fast pick", "Slow pick"}, names(repo.FindByOperationTypeAndActive(ctx, shared.OperationPick, true)))
	assert.Empty(t, names(repo.FindByOperationTypeAndActive(ctx, shared.OperationPut, true)))
	assert.Equal(t, []string{"Reserve put"}, names(repo.FindByOperationType(ctx, shared.OperationPut)))
	assert.Equal(t, []string{"Reserve put", "Slow pick"}, names(repo.FindByStrategy(ctx, domain.StrategyFIFO)))
	assert.Equal(t, []string{"Slow pick"}, names(repo.FindActiveByStrategy(ctx, domain.StrategyFIFO)))
	assert.Equal(t, []string{"Fast pick", "Slow pick"}, names(repo.FindActive(ctx)))
	assert.Equal(t, []string{"Reserve put", "Slow pick"}, names(repo.FindByPriorityRange(ctx, 2, 5)))
	assert.Equal(t, []string{"Fast pick", "Slow pick"}, names(repo.FindByNameContaining(ctx, "PICK")))
	assert.Len(t, names(repo.FindByCreatedBy(ctx, "tester")), 3)

	inactive := false
	assert.Equal(t, []string{"Reserve put"}, names(repo.FindAll(ctx, domain.DirectiveFilter{Active: &inactive})))
	assert.Equal(t, []string{"Slow pick"}, names(repo.FindAll(ctx, domain.DirectiveFilter{
		OperationType: shared.OperationPick,
		Strategy:      domain.StrategyFIFO,
	})))

	count := func(n int64, err error) int64 {
		require.NoError(t, err)
		return n
	}
	assert.Equal(t, int64(2), count(repo.CountByOperationType(ctx, shared.OperationPick)))
	assert.Equal(t, int64(2), count(repo.CountByStrategy(ctx, domain.StrategyFIFO)))
	assert.Equal(t, int64(2), count(repo.CountActive(ctx)))
	assert.Equal(t, int64(0), count(repo.CountActiveByOperationType(ctx, shared.OperationPut)))

	exists, err := repo.ExistsByID(ctx, put.ID())
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestAttributeRepository(t *testing.T) {
	ctx := context.Background()
	a := shared.MustBinLocation("A", "01", "1")
	b := shared.MustBinLocation("B", "02", "3")
	repo := NewLocationAttributeRepository(domain.StaticOverlay{
		a: {domain.AttrZone: domain.StringValue("FAST_PICK")},
	})

	require.NoError(t, repo.Save(ctx, b, domain.Attributes{domain.AttrAvailableCapacity: domain.NumberValue(4)}))

	overlay, err := repo.FindByLocations(ctx, []shared.BinLocation{a, b, shared.MustBinLocation("C", "01", "1")})
	require.NoError(t, err)
	assert.Len(t, overlay, 2)

	zone, ok := overlay.AttributesFor(a).GetString(domain.AttrZone)
	assert.True(t, ok)
	assert.Equal(t, "FAST_PICK", zone)

	overlay[a][domain.AttrZone] = domain.StringValue("CHANGED")
	again, err := repo.FindByLocations(ctx, []shared.BinLocation{a})
	require.NoError(t, err)
	zone, _ = again.AttributesFor(a).GetString(domain.AttrZone)
	assert.Equal(t, "FAST_PICK", zone, "returned attributes are copies")
}

func TestEventPublisher_Limit(t *testing.T) {
	p := NewEventPublisher(2)
	for _, id := range []string{"a", "b", "c"} {
		require.NoError(t, p.Publish(context.Background(), &domain.DirectiveActivatedEvent{DirectiveID: id}))
	}
	events := p.Events()
	require.Len(t, events, 2)
	assert.Equal(t, "b", events[0].(*domain.DirectiveActivatedEvent).DirectiveID)
}
