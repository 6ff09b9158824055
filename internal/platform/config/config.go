package config

import (
	"fmt"
	"net/netip"
	"os"
	"strconv"
	"time"

	platformstrings "privid/pkg/platform/strings"
)

// Event sink selectors for EVENT_SINK.
const (
	SinkNone     = "none"
	SinkKafka    = "kafka"
	SinkRabbitMQ = "rabbitmq"
)

// Proof format selectors for VERIFICATION_PROOF_FORMAT.
const (
	ProofFormatOpaque  = "opaque"
	ProofFormatGroth16 = "groth16"
)

// Server captures process level configuration.
type Server struct {
	Addr           string
	Environment    string
	LogLevel       string
	AdminAddress   string
	TrustedProxies []netip.Prefix
	Tracing        bool
	// SeedDemo loads demo verifiers and credentials into an in-memory engine.
	SeedDemo bool

	JWT          JWTConfig
	Database     DatabaseConfig
	Redis        RedisConfig
	Events       EventsConfig
	Reputation   ReputationConfig
	Verification VerificationConfig
}

// JWTConfig configures bearer token validation.
type JWTConfig struct {
	SigningKey string
	Issuer     string
	TokenTTL   time.Duration
}

// DatabaseConfig selects the Postgres backend. An empty URL keeps the engine in memory.
type DatabaseConfig struct {
	URL             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// RedisConfig configures the reputation read cache. An empty URL disables it.
type RedisConfig struct {
	URL           string
	PoolSize      int
	MinIdleConns  int
	DialTimeout   time.Duration
	ReadTimeout   time.Duration
	WriteTimeout  time.Duration
	ReputationTTL time.Duration
}

// EventsConfig configures relaying the event log to an external broker.
type EventsConfig struct {
	Sink          string
	RelayInterval time.Duration
	RelayBatch    int
	Kafka         KafkaConfig
	AMQP          AMQPConfig

	// A sink is suspended after SinkFailureThreshold consecutive failed
	// batches and probed again once SinkCooldown has passed.
	SinkFailureThreshold int
	SinkCooldown         time.Duration

	// A missing seq holds back later events for at most GapGrace.
	GapGrace time.Duration
}

type KafkaConfig struct {
	Brokers []string
	Topic   string
	Acks    string
}

type AMQPConfig struct {
	URL        string
	Exchange   string
	RoutingKey string
}

// ReputationConfig holds the outcome policy deltas.
type ReputationConfig struct {
	OwnerVerifiedDelta    int
	OwnerRejectedDelta    int
	VerifierResolvedDelta int
}

// VerificationConfig controls input proof checking and the pending sweep.
type VerificationConfig struct {
	ProofFormat   string
	PendingTTL    time.Duration
	SweepInterval time.Duration
}

// Default values applied when the environment does not override them.
var (
	TokenTTL              = 15 * time.Minute
	ReputationCacheTTL    = 30 * time.Second
	RelayInterval         = 2 * time.Second
	SweepInterval         = time.Minute
	DefaultRelayBatchSize = 100
	SinkFailureThreshold  = 5
	SinkCooldown          = 30 * time.Second
	RelayGapGrace         = 5 * time.Second
)

// FromEnv builds a Server config from environment variables so main stays lean.
// Unparseable numeric or duration values fall back to their defaults; Validate
// reports values that parse but make no sense.
func FromEnv() Server {
	return Server{
		Addr:           envOr("PRIVID_ADDR", ":8080"),
		Environment:    envOr("PRIVID_ENV", "local"),
		LogLevel:       envOr("LOG_LEVEL", "info"),
		AdminAddress:   os.Getenv("ADMIN_ADDRESS"),
		TrustedProxies: parsePrefixes(os.Getenv("TRUSTED_PROXIES")),
		Tracing:        envBool("PRIVID_TRACING", false),
		SeedDemo:       envBool("PRIVID_SEED_DEMO", false),
		JWT: JWTConfig{
			// Use a default for development - should be overridden in production
			SigningKey: envOr("JWT_SIGNING_KEY", "dev-secret-key-change-in-production"),
			Issuer:     envOr("JWT_ISSUER", "privid"),
			TokenTTL:   envDuration("TOKEN_TTL", TokenTTL),
		},
		Database: DatabaseConfig{
			URL:             os.Getenv("DATABASE_URL"),
			MaxOpenConns:    envInt("DATABASE_MAX_OPEN_CONNS", 25),
			MaxIdleConns:    envInt("DATABASE_MAX_IDLE_CONNS", 5),
			ConnMaxLifetime: envDuration("DATABASE_CONN_MAX_LIFETIME", 5*time.Minute),
		},
		Redis: RedisConfig{
			URL:           os.Getenv("REDIS_URL"),
			PoolSize:      envInt("REDIS_POOL_SIZE", 10),
			MinIdleConns:  envInt("REDIS_MIN_IDLE_CONNS", 2),
			DialTimeout:   envDuration("REDIS_DIAL_TIMEOUT", 5*time.Second),
			ReadTimeout:   envDuration("REDIS_READ_TIMEOUT", 3*time.Second),
			WriteTimeout:  envDuration("REDIS_WRITE_TIMEOUT", 3*time.Second),
			ReputationTTL: envDuration("REPUTATION_CACHE_TTL", ReputationCacheTTL),
		},
		Events: EventsConfig{
			Sink:                 envOr("EVENT_SINK", SinkNone),
			RelayInterval:        envDuration("EVENT_RELAY_INTERVAL", RelayInterval),
			RelayBatch:           envInt("EVENT_RELAY_BATCH_SIZE", DefaultRelayBatchSize),
			SinkFailureThreshold: envInt("EVENT_SINK_FAILURE_THRESHOLD", SinkFailureThreshold),
			SinkCooldown:         envDuration("EVENT_SINK_COOLDOWN", SinkCooldown),
			GapGrace:             envDuration("EVENT_RELAY_GAP_GRACE", RelayGapGrace),
			Kafka: KafkaConfig{
				Brokers: platformstrings.SplitList(os.Getenv("KAFKA_BROKERS")),
				Topic:   envOr("KAFKA_TOPIC", "privid.events"),
				Acks:    envOr("KAFKA_ACKS", "all"),
			},
			AMQP: AMQPConfig{
				URL:        os.Getenv("AMQP_URL"),
				Exchange:   envOr("AMQP_EXCHANGE", "privid.events"),
				RoutingKey: envOr("AMQP_ROUTING_KEY", "privid.event"),
			},
		},
		Reputation: ReputationConfig{
			OwnerVerifiedDelta:    envInt("REPUTATION_OWNER_VERIFIED_DELTA", 10),
			OwnerRejectedDelta:    envInt("REPUTATION_OWNER_REJECTED_DELTA", -5),
			VerifierResolvedDelta: envInt("REPUTATION_VERIFIER_RESOLVED_DELTA", 2),
		},
		Verification: VerificationConfig{
			ProofFormat:   envOr("VERIFICATION_PROOF_FORMAT", ProofFormatOpaque),
			PendingTTL:    envDuration("VERIFICATION_PENDING_TTL", 0),
			SweepInterval: envDuration("VERIFICATION_SWEEP_INTERVAL", SweepInterval),
		},
	}
}

// Validate reports configuration that would make the engine misbehave.
// Reputation deltas are range-checked by the reputation package itself.
func (s Server) Validate() error {
	if s.AdminAddress == "" {
		return fmt.Errorf("ADMIN_ADDRESS is required")
	}
	switch s.Events.Sink {
	case SinkNone:
	case SinkKafka:
		if len(s.Events.Kafka.Brokers) == 0 {
			return fmt.Errorf("EVENT_SINK=kafka requires KAFKA_BROKERS")
		}
	case SinkRabbitMQ:
		if s.Events.AMQP.URL == "" {
			return fmt.Errorf("EVENT_SINK=rabbitmq requires AMQP_URL")
		}
	default:
		return fmt.Errorf("unknown EVENT_SINK %q", s.Events.Sink)
	}
	if s.Events.Sink != SinkNone && s.Database.URL == "" {
		return fmt.Errorf("EVENT_SINK=%s requires DATABASE_URL for relay cursors", s.Events.Sink)
	}
	if s.SeedDemo && s.Database.URL != "" {
		return fmt.Errorf("PRIVID_SEED_DEMO is only supported with in-memory storage")
	}
	switch s.Verification.ProofFormat {
	case ProofFormatOpaque, ProofFormatGroth16:
	default:
		return fmt.Errorf("unknown VERIFICATION_PROOF_FORMAT %q", s.Verification.ProofFormat)
	}
	if s.Verification.PendingTTL < 0 {
		return fmt.Errorf("VERIFICATION_PENDING_TTL must not be negative")
	}
	if s.Verification.PendingTTL > 0 && s.Verification.SweepInterval <= 0 {
		return fmt.Errorf("VERIFICATION_SWEEP_INTERVAL must be positive when the sweep is enabled")
	}
	return nil
}

// IsProduction reports whether the process runs in a production environment.
func (s Server) IsProduction() bool {
	return s.Environment == "production"
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

func parsePrefixes(value string) []netip.Prefix {
	var out []netip.Prefix
	for _, cidr := range platformstrings.SplitList(value) {
		if p, err := netip.ParsePrefix(cidr); err == nil {
			out = append(out, p)
		}
	}
	return out
}
