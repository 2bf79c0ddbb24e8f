// Package app wires configuration, stores and services into one runtime
// shared by the API server and the productctl tool.
package app

import (
	"context"
	"fmt"
	"sync"

	"product-manager/internal/archive"
	"product-manager/internal/auth"
	"product-manager/internal/clock"
	"product-manager/internal/config"
	"product-manager/internal/database"
	"product-manager/internal/repository"
	"product-manager/internal/replication"
	"product-manager/internal/service"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/mongo"
)

// App holds every long-lived dependency.
type App struct {
	Config *config.Config
	Logger zerolog.Logger
	Pool   *pgxpool.Pool
	Mongo  *mongo.Client

	Primary *repository.PostgresProductRepository
	Outbox  *repository.PostgresOutboxRepository
	Mirror  *repository.MongoProductMirror

	// Syncer is nil when the mirror is disabled.
	Syncer *replication.Syncer

	Products repository.ProductRepository
	Users    repository.UserRepository
	Tokens   *auth.JWTManager

	Getter   service.ProductGetterService
	Adder    service.ProductAdderService
	Updater  service.ProductUpdaterService
	Deleter  service.ProductDeleterService
	Accounts service.AccountService
}

// New connects to the configured stores, applies the schema and builds the
// services. Call Close when done.
func New(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (*App, error) {
	a := &App{Config: cfg, Logger: logger}

	pool, err := database.NewPool(ctx, cfg.Database, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}
	a.Pool = pool

	if err := database.Migrate(ctx, pool, logger); err != nil {
		a.Close(ctx)
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	a.Primary = repository.NewPostgresProductRepository(pool, logger)
	a.Outbox = repository.NewPostgresOutboxRepository(pool, logger)
	a.Users = repository.NewUserRepository(pool, logger)

	var (
		mirror     repository.ProductMirror
		replicator repository.Replicator
	)
	if cfg.Mongo.Enabled {
		client, err := database.NewMongoClient(ctx, cfg.Mongo, logger)
		if err != nil {
			a.Close(ctx)
			return nil, fmt.Errorf("failed to initialize mongo: %w", err)
		}
		a.Mongo = client

		collection := client.Database(cfg.Mongo.Database).Collection(cfg.Mongo.Collection)
		a.Mirror = repository.NewMongoProductMirror(collection, logger)
		if err := a.Mirror.EnsureIndexes(ctx); err != nil {
			a.Close(ctx)
			return nil, fmt.Errorf("failed to create mirror indexes: %w", err)
		}

		a.Syncer = replication.NewSyncer(a.Primary, a.Mirror, a.Outbox, replication.Config{
			Interval:   cfg.Replication.Interval(),
			BatchSize:  cfg.Replication.BatchSize,
			MaxRetries: cfg.Replication.MaxRetries,
		}, logger)

		mirror = a.Mirror
		replicator = a.Syncer
	} else {
		logger.Info().Msg("mongo mirror disabled, serving products from postgres only")
	}

	a.Products = repository.NewProductStore(pool, a.Primary, a.Outbox, mirror, replicator, logger)

	clk := clock.NewRealClock()

	archiver, err := newArchiver(ctx, cfg, clk, logger)
	if err != nil {
		a.Close(ctx)
		return nil, err
	}

	a.Tokens = auth.NewJWTManager(cfg.Auth.JWTKey, cfg.Auth.Issuer, cfg.Auth.Audience, cfg.Auth.TokenLifetime(), clk)

	a.Getter = service.NewProductGetterService(a.Products, logger)
	a.Adder = service.NewProductAdderService(a.Products, clk, logger)
	a.Updater = service.NewProductUpdaterService(a.Products, logger)
	a.Deleter = service.NewProductDeleterService(a.Products, archiver, logger)
	passwords := auth.NewPasswordHasher(auth.PasswordParams{
		Time:      uint32(cfg.Auth.PasswordTime),
		MemoryKiB: uint32(cfg.Auth.PasswordMemoryKiB),
		Threads:   uint8(cfg.Auth.PasswordThreads),
	})
	a.Accounts = service.NewAccountService(a.Users, a.Tokens, passwords, clk, logger)

	return a, nil
}

// newArchiver returns nil when archiving is disabled.
func newArchiver(ctx context.Context, cfg *config.Config, clk clock.Clock, logger zerolog.Logger) (archive.Archiver, error) {
	if !cfg.Archive.Enabled {
		return nil, nil
	}

	fileArchiver := archive.NewFileArchiver(cfg.Archive.Dir, clk, logger)
	if !cfg.S3.Enabled {
		logger.Info().Str("dir", cfg.Archive.Dir).Msg("archiving products to local file system (S3 disabled)")
		return fileArchiver, nil
	}

	s3Archiver, err := archive.NewS3Archiver(ctx, cfg.S3.Bucket, cfg.S3.Region, cfg.S3.Prefix, clk, logger)
	if err != nil {
		logger.Warn().
			Err(err).
			Msg("failed to initialise S3 archiver, falling back to local file system only")
		return fileArchiver, nil
	}

	return archive.NewFallbackArchiver(s3Archiver, fileArchiver, logger), nil
}

type runner interface {
	Run(ctx context.Context)
}

// StartRelay runs the outbox relay in the background when the mirror is
// enabled. The returned stop function cancels the relay and waits for it to
// return; it is safe to call more than once. Call it before Close.
func (a *App) StartRelay(ctx context.Context) (stop func()) {
	if a.Syncer == nil {
		return func() {}
	}
	return startRelay(ctx, a.Syncer)
}

func startRelay(ctx context.Context, r runner) func() {
	ctx, cancel := context.WithCancel(ctx)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		r.Run(ctx)
	}()

	return func() {
		cancel()
		wg.Wait()
	}
}

// Close releases the store connections.
func (a *App) Close(ctx context.Context) {
	if a.Mongo != nil {
		if err := a.Mongo.Disconnect(ctx); err != nil {
			a.Logger.Error().Err(err).Msg("failed to disconnect from mongo")
		}
	}
	if a.Pool != nil {
		a.Pool.Close()
	}
}
