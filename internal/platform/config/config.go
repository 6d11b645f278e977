package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Prefix is prepended to every variable name read by FromEnv.
const Prefix = "ATELIER_"

const (
	StoreMemory   = "memory"
	StorePostgres = "postgres"

	SinkMemory   = "memory"
	SinkPostgres = "postgres"
	SinkRedis    = "redis"
)

// Server captures process level configuration for the server and CLI.
type Server struct {
	Addr      string `env:"ADDR" envDefault:":8080"`
	Store     string `env:"STORE" envDefault:"memory"`
	AuditSink string `env:"AUDIT_SINK" envDefault:"memory"`

	// JWTSigningKey verifies bearer tokens. Empty disables authentication,
	// which leaves every request anonymous.
	JWTSigningKey string `env:"JWT_SIGNING_KEY"`

	OTELEndpoint string `env:"OTEL_ENDPOINT"`

	Database DatabaseConfig
	Redis    RedisConfig
	Kafka    KafkaConfig
	Log      LogConfig
}

type DatabaseConfig struct {
	URL    string `env:"DATABASE_URL"`
	Driver string `env:"DATABASE_DRIVER" envDefault:"pgx"`
}

// RedisConfig configures the optional audit mirror stream.
type RedisConfig struct {
	URL          string        `env:"REDIS_URL"`
	Stream       string        `env:"REDIS_STREAM" envDefault:"atelier:audit"`
	PoolSize     int           `env:"REDIS_POOL_SIZE" envDefault:"10"`
	MinIdleConns int           `env:"REDIS_MIN_IDLE_CONNS" envDefault:"2"`
	DialTimeout  time.Duration `env:"REDIS_DIAL_TIMEOUT" envDefault:"5s"`
	ReadTimeout  time.Duration `env:"REDIS_READ_TIMEOUT" envDefault:"3s"`
	WriteTimeout time.Duration `env:"REDIS_WRITE_TIMEOUT" envDefault:"3s"`
}

// KafkaConfig configures the outbox relay. No brokers means no relay.
type KafkaConfig struct {
	Brokers      []string      `env:"KAFKA_BROKERS" envSeparator:","`
	Topic        string        `env:"KAFKA_TOPIC" envDefault:"atelier.audit"`
	PollInterval time.Duration `env:"OUTBOX_POLL_INTERVAL" envDefault:"1s"`
}

type LogConfig struct {
	Level  string `env:"LOG_LEVEL" envDefault:"info"`
	Format string `env:"LOG_FORMAT" envDefault:"text"`
}

// FromEnv builds a Server config from ATELIER_* variables and validates it.
func FromEnv() (Server, error) {
	var cfg Server
	if err := env.ParseWithOptions(&cfg, env.Options{Prefix: Prefix}); err != nil {
		return Server{}, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Server{}, err
	}
	return cfg, nil
}

// Validate rejects combinations the wiring in cmd cannot satisfy.
func (c Server) Validate() error {
	switch c.Store {
	case StoreMemory:
	case StorePostgres:
		if c.Database.URL == "" {
			return errors.New("config: ATELIER_DATABASE_URL is required for the postgres store")
		}
	default:
		return fmt.Errorf("config: unknown store %q", c.Store)
	}

	switch c.Database.Driver {
	case "pgx", "postgres":
	default:
		return fmt.Errorf("config: unknown database driver %q", c.Database.Driver)
	}

	switch c.AuditSink {
	case SinkMemory:
	case SinkPostgres:
		if c.Store != StorePostgres {
			return errors.New("config: the postgres audit sink requires the postgres store")
		}
	case SinkRedis:
		if c.Redis.URL == "" {
			return errors.New("config: ATELIER_REDIS_URL is required for the redis audit sink")
		}
		if c.Store == StorePostgres {
			return errors.New("config: the redis audit sink cannot join postgres transactions; use the postgres sink with a redis mirror")
		}
	default:
		return fmt.Errorf("config: unknown audit sink %q", c.AuditSink)
	}

	if len(c.Kafka.Brokers) > 0 && c.Store != StorePostgres {
		return errors.New("config: the outbox relay requires the postgres store")
	}
	return nil
}

// RelayEnabled reports whether the outbox relay should run.
func (c Server) RelayEnabled() bool {
	return len(c.Kafka.Brokers) > 0
}
