package integration

import (
	"context"
	"fmt"
	"testing"
	"time"

	"product-manager/internal/config"
	"product-manager/internal/database"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/mongodb"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const testJWTKey = "integration-signing-key-0123456789abcdef"

// TestDB represents a test database instance.
type TestDB struct {
	Container *postgres.PostgresContainer
	Pool      *pgxpool.Pool
	Config    config.DatabaseConfig
}

// TestMongo represents a test document store instance.
type TestMongo struct {
	Container *mongodb.MongoDBContainer
	Client    *mongo.Client
	URI       string
}

// SetupTestDB creates a PostgreSQL test container, a connection pool and the schema.
func SetupTestDB(t *testing.T) *TestDB {
	t.Helper()

	ctx := context.Background()

	postgresContainer, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second)),
	)
	if err != nil {
		t.Fatalf("failed to start postgres container: %v", err)
	}

	host, err := postgresContainer.Host(ctx)
	if err != nil {
		t.Fatalf("failed to get container host: %v", err)
	}
	port, err := postgresContainer.MappedPort(ctx, "5432/tcp")
	if err != nil {
		t.Fatalf("failed to get container port: %v", err)
	}

	dbConfig := config.DatabaseConfig{
		Host:            host,
		Port:            port.Int(),
		User:            "testuser",
		Password:        "testpass",
		Database:        "testdb",
		MaxConnections:  10,
		MinConnections:  2,
		MaxConnLifetime: 300,
	}

	logger := zerolog.Nop()
	pool, err := database.NewPool(ctx, dbConfig, logger)
	if err != nil {
		t.Fatalf("failed to create connection pool: %v", err)
	}

	if err := database.Migrate(ctx, pool, logger); err != nil {
		t.Fatalf("failed to create schema: %v", err)
	}

	t.Cleanup(func() {
		pool.Close()
		if err := postgresContainer.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %v", err)
		}
	})

	return &TestDB{
		Container: postgresContainer,
		Pool:      pool,
		Config:    dbConfig,
	}
}

// SetupTestMongo creates a MongoDB test container and a connected client.
func SetupTestMongo(t *testing.T) *TestMongo {
	t.Helper()

	ctx := context.Background()

	mongoContainer, err := mongodb.Run(ctx, "mongo:7")
	if err != nil {
		t.Fatalf("failed to start mongo container: %v", err)
	}

	uri, err := mongoContainer.ConnectionString(ctx)
	if err != nil {
		t.Fatalf("failed to get mongo connection string: %v", err)
	}

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		t.Fatalf("failed to connect to mongo: %v", err)
	}

	t.Cleanup(func() {
		_ = client.Disconnect(ctx)
		if err := mongoContainer.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %v", err)
		}
	})

	return &TestMongo{
		Container: mongoContainer,
		Client:    client,
		URI:       uri,
	}
}

// TestConfig returns an application config pointing at the test containers.
// mongo may be nil to run without the mirror.
func TestConfig(db *TestDB, mongo *TestMongo) *config.Config {
	cfg := &config.Config{
		Server:   config.ServerConfig{Host: "127.0.0.1", Port: 0},
		Database: db.Config,
		Logger:   config.LoggerConfig{Level: "error", Format: "json"},
		Auth: config.AuthConfig{
			JWTKey:            testJWTKey,
			Issuer:            "product-manager-test",
			Audience:          "product-manager-test",
			ExpirationMinutes: 30,
			PasswordTime:      1,
			PasswordMemoryKiB: 8 * 1024,
			PasswordThreads:   1,
		},
		Replication: config.ReplicationConfig{
			IntervalSeconds: 1,
			BatchSize:       50,
			MaxRetries:      5,
		},
	}
	if mongo != nil {
		cfg.Mongo = config.MongoConfig{
			Enabled:    true,
			URI:        mongo.URI,
			Database:   "testdb",
			Collection: "products",
		}
	}
	return cfg
}

// CleanupDB cleans all data from test tables.
func CleanupDB(t *testing.T, pool *pgxpool.Pool) {
	t.Helper()

	ctx := context.Background()

	tables := []string{"product_outbox", "products", "users"}
	for _, table := range tables {
		_, err := pool.Exec(ctx, fmt.Sprintf("DELETE FROM %s", table))
		if err != nil {
			t.Logf("failed to clean table %s: %v", table, err)
		}
	}
}

// CleanupMongo drops the mirror collection.
func CleanupMongo(t *testing.T, m *TestMongo) {
	t.Helper()

	if err := m.Client.Database("testdb").Collection("products").Drop(context.Background()); err != nil {
		t.Logf("failed to drop mirror collection: %v", err)
	}
}
