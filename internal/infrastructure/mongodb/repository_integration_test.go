//go:build integration

package mongodb

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/wms-platform/location-directive-service/internal/domain"
	shared "github.com/wms-platform/location-directive-service/shared/pkg/domain"
	"github.com/wms-platform/location-directive-service/shared/pkg/logging"
	sharedmongo "github.com/wms-platform/location-directive-service/shared/pkg/mongodb"
	sharedtesting "github.com/wms-platform/location-directive-service/shared/pkg/testing"
)

var testClient *mongo.Client

func TestMain(m *testing.M) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	container, err := sharedtesting.NewMongoDBContainer(ctx)
	if err != nil {
		cancel()
		panic(err)
	}
	testClient, err = container.GetClient(ctx)
	if err != nil {
		_ = container.Close(ctx)
		cancel()
		panic(err)
	}
	cancel()

	code := m.Run()

	ctx, cancel = context.WithTimeout(context.Background(), 30*time.Second)
	_ = testClient.Disconnect(ctx)
	_ = container.Close(ctx)
	cancel()
	os.Exit(code)
}

func newRepositories(t *testing.T) (*LocationDirectiveRepository, *LocationAttributeRepository) {
	t.Helper()
	ctx := context.Background()
	db := sharedtesting.FreshDatabase(testClient, "directives")
	t.Cleanup(func() { _ = db.Drop(context.Background()) })

	logger := logging.NewNop()
	breaker := sharedmongo.NewBreaker("mongodb-test", logger, nil)
	opts := []sharedmongo.CollectionOption{sharedmongo.WithLogger(logger), sharedmongo.WithBreaker(breaker)}

	directives, err := NewLocationDirectiveRepository(ctx, db, opts...)
	require.NoError(t, err)
	attributes, err := NewLocationAttributeRepository(ctx, db, opts...)
	require.NoError(t, err)
	return directives, attributes
}

func TestDirectiveRepository_SaveAndVersioning(t *testing.T) {
	ctx := context.Background()
	repo, _ := newRepositories(t)

	d, err := domain.NewLocationDirective("Fast pick", "forward area", shared.OperationPick, domain.StrategyFastMoving, 2,
		domain.WithCreatedBy("planner"),
		domain.WithConstraints(
			domain.MustLocationConstraint(domain.ConstraintZoneRestriction, "equals", domain.StringValue("FAST_PICK")),
			domain.MustLocationConstraint(domain.ConstraintInventoryAvailable, "gt", domain.IntValue(0)),
		))
	require.NoError(t, err)
	require.NoError(t, repo.Save(ctx, d))
	assert.Equal(t, int64(1), d.Version())

	loaded, err := repo.FindByID(ctx, d.ID())
	require.NoError(t, err)
	require.NotNil(t, loaded)
	assert.Equal(t, d.Name(), loaded.Name())
	assert.Len(t, loaded.Constraints(), 2)
	assert.True(t, loaded.Constraints()[1].Equals(d.Constraints()[1]))

	stale, err := repo.FindByID(ctx, d.ID())
	require.NoError(t, err)

	require.NoError(t, loaded.UpdatePriority(5))
	require.NoError(t, repo.Save(ctx, loaded))
	assert.Equal(t, int64(2), loaded.Version())

	stale.Deactivate()
	assert.ErrorIs(t, repo.Save(ctx, stale), domain.ErrVersionConflict)

	dup, err := domain.NewLocationDirective("Dup", "", shared.OperationPick, domain.StrategyFixed, 1, domain.WithDirectiveID(d.ID()))
	require.NoError(t, err)
	assert.ErrorIs(t, repo.Save(ctx, dup), domain.ErrVersionConflict)

	missing, err := repo.FindByID(ctx, domain.NewDirectiveID())
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestDirectiveRepository_Queries(t *testing.T) {
	ctx := context.Background()
	repo, _ := newRepositories(t)

	save := func(name string, op shared.OperationType, strategy domain.LocationStrategy, priority int, active bool) {
		d, err := domain.NewLocationDirective(name, "", op, strategy, priority, domain.WithCreatedBy("ops"))
		require.NoError(t, err)
		if !active {
			d.Deactivate()
		}
		require.NoError(t, repo.Save(ctx, d))
	}
	save("Slow pick", shared.OperationPick, domain.StrategyFIFO, 5, true)
	save("Fast pick", shared.OperationPick, domain.StrategyFastMoving, 1, true)
	save("Reserve put", shared.OperationPut, domain.StrategyFIFO, 3, false)

	names := func(ds []*domain.LocationDirective, err error) []string {
		require.NoError(t, err)
		var out []string
		for _, d := range ds {
			out = append(out, d.Name())
		}
		return out
	}

	assert.Equal(t, []string{"Fast pick", "Slow pick"}, names(repo.FindByOperationTypeAndActive(ctx, shared.OperationPick, true)))
	assert.Equal(t, []string{"Reserve put", "Slow pick"}, names(repo.FindByStrategy(ctx, domain.StrategyFIFO)))
	assert.Equal(t, []string{"Slow pick"}, names(repo.FindActiveByStrategy(ctx, domain.StrategyFIFO)))
	assert.Equal(t, []string{"Reserve put", "Slow pick"}, names(repo.FindByPriorityRange(ctx, 2, 5)))
	assert.Equal(t, []string{"Fast pick", "Slow pick"}, names(repo.FindByNameContaining(ctx, "PICK")))
	assert.Len(t, names(repo.FindByCreatedBy(ctx, "ops")), 3)

	n, err := repo.CountActiveByOperationType(ctx, shared.OperationPut)
	require.NoError(t, err)
	assert.Zero(t, n)
	n, err = repo.CountActive(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
}

func TestAttributeRepository_Overlay(t *testing.T) {
	ctx := context.Background()
	_, repo := newRepositories(t)

	loc := shared.MustBinLocation("B", "02", "1")
	require.NoError(t, repo.Save(ctx, loc, domain.Attributes{
		domain.AttrAvailableCapacity: domain.NumberValue(8),
		domain.AttrZone:              domain.StringValue("RESERVE"),
	}))
	require.NoError(t, repo.Save(ctx, loc, domain.Attributes{
		domain.AttrAvailableCapacity: domain.NumberValue(6),
	}))

	overlay, err := repo.FindByLocations(ctx, []shared.BinLocation{loc, shared.MustBinLocation("B", "02", "2")})
	require.NoError(t, err)
	require.Len(t, overlay, 1)

	capacity, ok := overlay.AttributesFor(loc).GetFloat(domain.AttrAvailableCapacity)
	assert.True(t, ok)
	assert.Equal(t, 6.0, capacity)
	_, ok = overlay.AttributesFor(loc).GetString(domain.AttrZone)
	assert.False(t, ok, "save replaces the attribute set")
}
