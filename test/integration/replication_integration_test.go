package integration

import (
	"context"
	"errors"
	"testing"
	"time"

	"product-manager/internal/model"
	"product-manager/internal/replication"
	"product-manager/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// failingReplicator simulates a mirror outage at write time.
type failingReplicator struct{}

func (failingReplicator) Deliver(context.Context, model.OutboxEvent) error {
	return errors.New("mirror unreachable")
}

func newProduct(name string) model.Product {
	return model.Product{
		ID:               uuid.New(),
		Name:             name,
		Date:             time.Now().UTC().Truncate(time.Millisecond),
		ManufacturePhone: "0123456789",
		ManufactureEmail: "maker@gmail.com",
		Count:            2,
	}
}

func TestProductStore_ReplicationRecovery(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	testDB := SetupTestDB(t)
	testMongo := SetupTestMongo(t)
	ctx := context.Background()
	logger := zerolog.Nop()

	CleanupDB(t, testDB.Pool)
	CleanupMongo(t, testMongo)

	primary := repository.NewPostgresProductRepository(testDB.Pool, logger)
	outbox := repository.NewPostgresOutboxRepository(testDB.Pool, logger)
	mirror := repository.NewMongoProductMirror(testMongo.Client.Database("testdb").Collection("products"), logger)
	syncer := replication.NewSyncer(primary, mirror, outbox, replication.Config{
		Interval:   time.Second,
		BatchSize:  10,
		MaxRetries: 5,
	}, logger)

	degraded := repository.NewProductStore(testDB.Pool, primary, outbox, mirror, failingReplicator{}, logger)

	product := newProduct("Outage")

	t.Run("Add keeps the primary write and leaves the event pending", func(t *testing.T) {
		_, err := degraded.Add(ctx, product)
		require.Error(t, err)

		var replErr *model.ReplicationError
		require.ErrorAs(t, err, &replErr)
		assert.True(t, errors.Is(err, model.ErrReplication))

		stored, err := primary.Get(ctx, product.ID)
		require.NoError(t, err)
		require.NotNil(t, stored)

		mirrored, err := mirror.Get(ctx, product.ID)
		require.NoError(t, err)
		assert.Nil(t, mirrored)

		pending, err := outbox.CountPending(ctx)
		require.NoError(t, err)
		assert.Equal(t, 1, pending)
	})

	t.Run("Relay converges the mirror", func(t *testing.T) {
		delivered, err := syncer.DrainOnce(ctx)
		require.NoError(t, err)
		assert.Equal(t, 1, delivered)

		mirrored, err := mirror.Get(ctx, product.ID)
		require.NoError(t, err)
		require.NotNil(t, mirrored)
		assert.Equal(t, product.Name, mirrored.Name)
		assert.True(t, product.Date.Equal(mirrored.Date))

		pending, err := outbox.CountPending(ctx)
		require.NoError(t, err)
		assert.Zero(t, pending)
	})

	t.Run("Delete is relayed the same way", func(t *testing.T) {
		_, err := degraded.Delete(ctx, product.ID)
		require.ErrorIs(t, err, model.ErrReplication)

		mirrored, err := mirror.Get(ctx, product.ID)
		require.NoError(t, err)
		require.NotNil(t, mirrored)

		_, err = syncer.DrainOnce(ctx)
		require.NoError(t, err)

		mirrored, err = mirror.Get(ctx, product.ID)
		require.NoError(t, err)
		assert.Nil(t, mirrored)
	})

	t.Run("Healthy store delivers immediately", func(t *testing.T) {
		store := repository.NewProductStore(testDB.Pool, primary, outbox, mirror, syncer, logger)

		added, err := store.Add(ctx, newProduct("Healthy"))
		require.NoError(t, err)

		got, err := store.GetByID(ctx, added.ID)
		require.NoError(t, err)
		require.NotNil(t, got)

		pending, err := outbox.CountPending(ctx)
		require.NoError(t, err)
		assert.Zero(t, pending)
	})
}

func TestSyncer_Resync(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	testDB := SetupTestDB(t)
	testMongo := SetupTestMongo(t)
	ctx := context.Background()
	logger := zerolog.Nop()

	CleanupDB(t, testDB.Pool)
	CleanupMongo(t, testMongo)

	primary := repository.NewPostgresProductRepository(testDB.Pool, logger)
	outbox := repository.NewPostgresOutboxRepository(testDB.Pool, logger)
	mirror := repository.NewMongoProductMirror(testMongo.Client.Database("testdb").Collection("products"), logger)
	syncer := replication.NewSyncer(primary, mirror, outbox, replication.Config{
		Interval:   time.Second,
		BatchSize:  10,
		MaxRetries: 5,
	}, logger)

	onlyPrimary, err := primary.Add(ctx, newProduct("Primary only"))
	require.NoError(t, err)

	stray, err := mirror.Add(ctx, newProduct("Stray"))
	require.NoError(t, err)

	result, err := syncer.Resync(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Upserted)
	assert.Equal(t, 1, result.Removed)

	got, err := mirror.Get(ctx, onlyPrimary.ID)
	require.NoError(t, err)
	assert.NotNil(t, got)

	got, err = mirror.Get(ctx, stray.ID)
	require.NoError(t, err)
	assert.Nil(t, got)
}
