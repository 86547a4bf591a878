package config

import (
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// MustLoad loads the configuration from environment variables and .env file.
func MustLoad[T any](cfg T) {
	_ = godotenv.Load() // Load environment variables from .env file

	env.Must(cfg, env.Parse(cfg))
}

// Load loads the configuration from environment variables and .env file.
func Load[T any](cfg T) error {
	_ = godotenv.Load() // .env file is optional

	if err := env.Parse(cfg); err != nil {
		return err // Return error if environment variable parsing fails
	}

	return nil
}

// Config holds the configuration for the engine process.
type Config struct {
	EngineConfig   `envPrefix:"ENGINE_"`
	RedisConfig    `envPrefix:"REDIS_"`
	KafkaConfig    `envPrefix:"KAFKA_"`
	PostgresConfig `envPrefix:"POSTGRES_"`
}

// EngineConfig holds the identity and stream settings of one engine instance.
type EngineConfig struct {
	// ConsumerName identifies this logical consumer inside the group. Entries
	// left pending by a crashed instance with the same name are reclaimed at startup.
	ConsumerName string `env:"ID" envDefault:"engine-1"`
	// Group is the consumer group all engine instances compete in.
	Group string `env:"GROUP" envDefault:"engine-group"`
	// CommandStream is the inbound order-command stream.
	CommandStream string `env:"COMMAND_STREAM" envDefault:"orders.commands.stream"`
	// LedgerStream is the durable ledger stream replayed at startup.
	LedgerStream string `env:"LEDGER_STREAM" envDefault:"engine.ledger"`
	// ViewChannel is the pub/sub channel for book.depth and market.data projections.
	ViewChannel string `env:"VIEW_CHANNEL" envDefault:"engine.events"`

	// ReadBlock is how long one XREADGROUP call blocks waiting for entries.
	ReadBlock time.Duration `env:"READ_BLOCK" envDefault:"1s"`
	// ReadCount is the max number of entries fetched per XREADGROUP call.
	ReadCount int64 `env:"READ_COUNT" envDefault:"50"`
	// ReclaimMinIdle is the idle window after which another consumer's pending
	// entries may be reclaimed.
	ReclaimMinIdle time.Duration `env:"RECLAIM_MIN_IDLE" envDefault:"30s"`

	// SnapshotInterval is how often the snapshot manager wakes up.
	SnapshotInterval time.Duration `env:"SNAPSHOT_INTERVAL" envDefault:"30s"`
	// SnapshotEntryDelta is the minimum number of ledger command entries between
	// two snapshot entries.
	SnapshotEntryDelta int64 `env:"SNAPSHOT_ENTRY_DELTA" envDefault:"1000"`
}

// RedisConfig holds the configuration for the Redis client.
type RedisConfig struct {
	Addrs    string `env:"ADDRESS,required"` // Comma-separated list of Redis addresses
	Password string `env:"PASSWORD" envDefault:""`
	Username string `env:"USERNAME" envDefault:""`
	DB       int    `env:"DB" envDefault:"0"`
}

// KafkaConfig holds the configuration for the business-event publisher.
type KafkaConfig struct {
	Topic   string   `env:"TOPIC,required"`
	Brokers []string `env:"BROKER,required"`
}

// PostgresConfig holds the connection for the open-order bootstrap store.
// Leave URL empty to skip cold-start bootstrap.
type PostgresConfig struct {
	URL string `env:"URL" envDefault:""`
}
