package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	strutil "cardeval/pkg/platform/strings"
)

// Config is the full service configuration, read once at start-up.
type Config struct {
	Server    Server
	Redis     RedisConfig
	Postgres  PostgresConfig
	Kafka     KafkaConfig
	Validator ValidatorConfig
	Fraud     FraudConfig
	RateLimit RateLimitConfig
	LogLevel  string
}

// Server captures HTTP server level configuration.
type Server struct {
	Addr            string
	JWTSigningKey   string
	JWTIssuer       string
	JWTAudience     string
	AdminToken      string
	ShutdownTimeout time.Duration

	// AuditBufferSize makes Kafka audit publishing asynchronous when > 0.
	AuditBufferSize int
}

// RedisConfig configures the optional Redis client. Empty URL disables it.
type RedisConfig struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// PostgresConfig configures the optional database. Empty URL disables it.
type PostgresConfig struct {
	URL             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	AutoMigrate     bool
}

// KafkaConfig configures the audit sink. No brokers disables it.
type KafkaConfig struct {
	Brokers    []string
	AuditTopic string
	Partitions int32

	// ConsumerGroup enables the audit materializer when Postgres is also set.
	ConsumerGroup string
}

// ValidatorConfig configures frequent flyer validation.
type ValidatorConfig struct {
	LicensePath   string
	LookupTimeout time.Duration
	CacheTTL      time.Duration
	// SeedMembers populates the in-memory directory when Postgres is off.
	SeedMembers []string
}

// FraudConfig configures the fraud check.
type FraudConfig struct {
	Watchlist        []string
	Timeout          time.Duration
	FailureThreshold int
	SyncInterval     time.Duration
}

// RateLimitConfig limits application requests per caller. Zero requests
// disables limiting.
type RateLimitConfig struct {
	Requests int
	Window   time.Duration
}

// FromEnv builds a Config from environment variables so main stays lean.
func FromEnv() Config {
	return Config{
		Server: Server{
			// Use a default signing key for development - should be overridden in production
			Addr:            getEnv("CARDEVAL_ADDR", ":8080"),
			JWTSigningKey:   getEnv("JWT_SIGNING_KEY", "dev-secret-key-change-in-production"),
			JWTIssuer:       getEnv("JWT_ISSUER", "cardeval"),
			JWTAudience:     getEnv("JWT_AUDIENCE", "cardeval-api"),
			AdminToken:      os.Getenv("ADMIN_TOKEN"),
			ShutdownTimeout: getDuration("SHUTDOWN_TIMEOUT", 10*time.Second),
			AuditBufferSize: getInt("AUDIT_BUFFER_SIZE", 0),
		},
		Redis: RedisConfig{
			URL:          os.Getenv("REDIS_URL"),
			PoolSize:     getInt("REDIS_POOL_SIZE", 10),
			MinIdleConns: getInt("REDIS_MIN_IDLE_CONNS", 2),
			DialTimeout:  getDuration("REDIS_DIAL_TIMEOUT", 5*time.Second),
			ReadTimeout:  getDuration("REDIS_READ_TIMEOUT", 3*time.Second),
			WriteTimeout: getDuration("REDIS_WRITE_TIMEOUT", 3*time.Second),
		},
		Postgres: PostgresConfig{
			URL:             os.Getenv("DATABASE_URL"),
			MaxOpenConns:    getInt("DB_MAX_OPEN_CONNS", 20),
			MaxIdleConns:    getInt("DB_MAX_IDLE_CONNS", 5),
			ConnMaxLifetime: getDuration("DB_CONN_MAX_LIFETIME", 30*time.Minute),
			AutoMigrate:     getBool("DB_AUTO_MIGRATE", true),
		},
		Kafka: KafkaConfig{
			Brokers:       getList("KAFKA_BROKERS"),
			AuditTopic:    getEnv("KAFKA_AUDIT_TOPIC", "cardeval.audit"),
			Partitions:    int32(getInt("KAFKA_AUDIT_PARTITIONS", 3)),
			ConsumerGroup: os.Getenv("KAFKA_AUDIT_GROUP"),
		},
		Validator: ValidatorConfig{
			LicensePath:   os.Getenv("VALIDATOR_LICENSE_PATH"),
			LookupTimeout: getDuration("VALIDATOR_LOOKUP_TIMEOUT", 2*time.Second),
			CacheTTL:      getDuration("VALIDATOR_CACHE_TTL", 10*time.Minute),
			SeedMembers:   strutil.DedupeAndTrimUpper(getList("VALIDATOR_SEED_MEMBERS")),
		},
		Fraud: FraudConfig{
			Watchlist:        strutil.DedupeAndTrimUpper(getList("FRAUD_WATCHLIST")),
			Timeout:          getDuration("FRAUD_TIMEOUT", 500*time.Millisecond),
			FailureThreshold: getInt("FRAUD_BREAKER_FAILURES", 5),
			SyncInterval:     getDuration("FRAUD_SYNC_INTERVAL", 30*time.Second),
		},
		RateLimit: RateLimitConfig{
			Requests: getInt("RATE_LIMIT_REQUESTS", 60),
			Window:   getDuration("RATE_LIMIT_WINDOW", time.Minute),
		},
		LogLevel: getEnv("LOG_LEVEL", "info"),
	}
}

func getEnv(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func getInt(key string, fallback int) int {
	if v, err := strconv.Atoi(os.Getenv(key)); err == nil {
		return v
	}
	return fallback
}

func getBool(key string, fallback bool) bool {
	if v, err := strconv.ParseBool(os.Getenv(key)); err == nil {
		return v
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) time.Duration {
	if v, err := time.ParseDuration(os.Getenv(key)); err == nil {
		return v
	}
	return fallback
}

// getList splits a comma-separated variable, dropping empty and repeated
// entries.
func getList(key string) []string {
	return strutil.SplitList(os.Getenv(key), ",")
}
