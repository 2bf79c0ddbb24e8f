package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration.
type Config struct {
	Server      ServerConfig
	Database    DatabaseConfig
	Logger      LoggerConfig
	Auth        AuthConfig
	Mongo       MongoConfig
	Replication ReplicationConfig
	Archive     ArchiveConfig
	S3          S3Config
}

// ServerConfig holds server-related configuration.
type ServerConfig struct {
	Host string
	Port int
}

// DatabaseConfig holds database-related configuration.
type DatabaseConfig struct {
	Host            string
	Port            int
	User            string
	Password        string
	Database        string
	MaxConnections  int
	MinConnections  int
	MaxConnLifetime int // seconds
}

// LoggerConfig holds logger-related configuration.
type LoggerConfig struct {
	Level  string
	Format string // "json" or "console"
}

// AuthConfig holds JWT signing and password hashing configuration.
type AuthConfig struct {
	JWTKey            string
	Issuer            string
	Audience          string
	ExpirationMinutes int

	// argon2id cost for new password hashes
	PasswordTime      int
	PasswordMemoryKiB int
	PasswordThreads   int
}

// MongoConfig describes the optional document-store mirror.
type MongoConfig struct {
	Enabled    bool
	URI        string
	Database   string
	Collection string
}

// ReplicationConfig tunes the outbox relay.
type ReplicationConfig struct {
	IntervalSeconds int
	BatchSize       int
	MaxRetries      int
}

// ArchiveConfig controls archiving of products removed by cutoff deletion.
type ArchiveConfig struct {
	Enabled bool
	Dir     string
}

// S3Config holds AWS S3 configuration for product archives.
type S3Config struct {
	Enabled bool
	Bucket  string
	Region  string
	Prefix  string // Path prefix within bucket (e.g., "archives/")
}

const minJWTKeyLength = 32

// Load loads configuration from environment variables. Values from the file
// named by ENV_FILE (default ".env") fill in anything not already set.
func Load() (*Config, error) {
	if err := loadEnvFile(getEnv("ENV_FILE", ".env")); err != nil {
		return nil, err
	}

	cfg := &Config{
		Server: ServerConfig{
			Host: getEnv("SERVER_HOST", "0.0.0.0"),
			Port: getEnvAsInt("SERVER_PORT", 8080),
		},
		Database: DatabaseConfig{
			Host:            getEnv("DB_HOST", "localhost"),
			Port:            getEnvAsInt("DB_PORT", 5432),
			User:            getEnv("DB_USER", "postgres"),
			Password:        getEnv("DB_PASSWORD", ""),
			Database:        getEnv("DB_NAME", "productmanager"),
			MaxConnections:  getEnvAsInt("DB_MAX_CONNECTIONS", 25),
			MinConnections:  getEnvAsInt("DB_MIN_CONNECTIONS", 5),
			MaxConnLifetime: getEnvAsInt("DB_MAX_CONN_LIFETIME", 300),
		},
		Logger: LoggerConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
		},
		Auth: AuthConfig{
			JWTKey:            getEnv("JWT_KEY", ""),
			Issuer:            getEnv("JWT_ISSUER", "product-manager"),
			Audience:          getEnv("JWT_AUDIENCE", "product-manager-clients"),
			ExpirationMinutes: getEnvAsInt("JWT_EXPIRATION_MINUTES", 60),
			PasswordTime:      getEnvAsInt("PASSWORD_HASH_TIME", 3),
			PasswordMemoryKiB: getEnvAsInt("PASSWORD_HASH_MEMORY_KIB", 64*1024),
			PasswordThreads:   getEnvAsInt("PASSWORD_HASH_THREADS", 2),
		},
		Mongo: MongoConfig{
			Enabled:    getEnvAsBool("MONGO_ENABLED", false),
			URI:        getEnv("MONGO_URI", "mongodb://localhost:27017"),
			Database:   getEnv("MONGO_DATABASE", "productmanager"),
			Collection: getEnv("MONGO_COLLECTION", "products"),
		},
		Replication: ReplicationConfig{
			IntervalSeconds: getEnvAsInt("REPLICATION_INTERVAL_SECONDS", 5),
			BatchSize:       getEnvAsInt("REPLICATION_BATCH_SIZE", 50),
			MaxRetries:      getEnvAsInt("REPLICATION_MAX_RETRIES", 10),
		},
		Archive: ArchiveConfig{
			Enabled: getEnvAsBool("ARCHIVE_ENABLED", false),
			Dir:     getEnv("ARCHIVE_DIR", "./archive"),
		},
		S3: S3Config{
			Enabled: getEnvAsBool("S3_ENABLED", false),
			Bucket:  getEnv("S3_BUCKET", ""),
			Region:  getEnv("S3_REGION", "us-east-1"),
			Prefix:  getEnv("S3_PREFIX", "archives/"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

func loadEnvFile(path string) error {
	if path == "" {
		return nil
	}
	if err := godotenv.Load(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to load env file %s: %w", path, err)
	}
	return nil
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}

	if c.Database.Host == "" {
		return fmt.Errorf("database host is required")
	}

	if c.Database.Port < 1 || c.Database.Port > 65535 {
		return fmt.Errorf("invalid database port: %d", c.Database.Port)
	}

	if c.Database.User == "" {
		return fmt.Errorf("database user is required")
	}

	if c.Database.Database == "" {
		return fmt.Errorf("database name is required")
	}

	if c.Database.MaxConnections < 1 {
		return fmt.Errorf("database max connections must be at least 1")
	}

	if c.Database.MinConnections < 1 {
		return fmt.Errorf("database min connections must be at least 1")
	}

	if c.Database.MinConnections > c.Database.MaxConnections {
		return fmt.Errorf("database min connections cannot exceed max connections")
	}

	if len(c.Auth.JWTKey) < minJWTKeyLength {
		return fmt.Errorf("JWT key is required and must be at least %d characters", minJWTKeyLength)
	}

	if c.Auth.ExpirationMinutes < 1 {
		return fmt.Errorf("JWT expiration must be at least 1 minute")
	}

	if c.Auth.PasswordTime < 1 {
		return fmt.Errorf("password hash time must be at least 1")
	}

	if c.Auth.PasswordMemoryKiB < 8*c.Auth.PasswordThreads {
		return fmt.Errorf("password hash memory must be at least 8 KiB per thread")
	}

	if c.Auth.PasswordThreads < 1 || c.Auth.PasswordThreads > 255 {
		return fmt.Errorf("password hash threads must be between 1 and 255")
	}

	validLogLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}

	if !validLogLevels[c.Logger.Level] {
		return fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)", c.Logger.Level)
	}

	if c.Logger.Format != "json" && c.Logger.Format != "console" {
		return fmt.Errorf("invalid log format: %s (must be json or console)", c.Logger.Format)
	}

	if c.Mongo.Enabled {
		if c.Mongo.URI == "" {
			return fmt.Errorf("mongo URI is required when mongo is enabled")
		}
		if c.Mongo.Database == "" || c.Mongo.Collection == "" {
			return fmt.Errorf("mongo database and collection are required when mongo is enabled")
		}
		if c.Replication.IntervalSeconds < 1 {
			return fmt.Errorf("replication interval must be at least 1 second")
		}
		if c.Replication.BatchSize < 1 {
			return fmt.Errorf("replication batch size must be at least 1")
		}
		if c.Replication.MaxRetries < 1 {
			return fmt.Errorf("replication max retries must be at least 1")
		}
	}

	if c.Archive.Enabled && c.Archive.Dir == "" {
		return fmt.Errorf("archive directory is required when archiving is enabled")
	}

	if c.S3.Enabled {
		if c.S3.Bucket == "" {
			return fmt.Errorf("S3 bucket is required when S3 is enabled")
		}
		if c.S3.Region == "" {
			return fmt.Errorf("S3 region is required when S3 is enabled")
		}
	}

	return nil
}

// ConnectionString returns the PostgreSQL connection string.
func (c *DatabaseConfig) ConnectionString() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=disable",
		c.User,
		c.Password,
		c.Host,
		c.Port,
		c.Database,
	)
}

// Address returns the server address.
func (c *ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// TokenLifetime returns the JWT lifetime as a duration.
func (c *AuthConfig) TokenLifetime() time.Duration {
	return time.Duration(c.ExpirationMinutes) * time.Minute
}

// Interval returns the relay polling interval.
func (c *ReplicationConfig) Interval() time.Duration {
	return time.Duration(c.IntervalSeconds) * time.Second
}

// getEnv retrieves an environment variable or returns a default value.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsInt retrieves an environment variable as an integer or returns a default value.
func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// getEnvAsBool retrieves an environment variable as a boolean or returns a default value.
func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}
