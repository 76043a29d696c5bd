package config

import (
	"context"
	"fmt"
	"time"

	"github.com/sethvargo/go-envconfig"
)

type Config struct {
	Port     string `env:"PORT,     default=8080"`
	Env      string `env:"ENV,      default=development"`
	LogLevel string `env:"LOG_LEVEL, default=info"`

	// TOTPIssuer is the issuer label embedded in enrollment URIs, shown by
	// authenticator apps next to the account name.
	TOTPIssuer string `env:"TOTP_ISSUER, default=verifactor"`

	// BcryptCost is the bcrypt work factor. 10 keeps interactive latency
	// bounded while staying expensive for offline attacks.
	BcryptCost int `env:"BCRYPT_COST, default=10"`

	// HashWorkers bounds how many bcrypt operations run concurrently so
	// CPU-bound hashing cannot stall the rest of the request handling.
	HashWorkers int `env:"HASH_WORKERS, default=4"`

	SessionTTL time.Duration `env:"SESSION_TTL, default=30m"`

	Mongo MongoConfig
	Redis RedisConfig
}

type MongoConfig struct {
	URI      string `env:"MONGO_URI, default=mongodb://localhost:27017"`
	Database string `env:"MONGO_DB,  default=auth_service"`
}

type RedisConfig struct {
	Addr string `env:"REDIS_ADDR, default=localhost:6379"`
	DB   int    `env:"REDIS_DB,   default=0"`
}

// Load reads configuration from environment variables using go-envconfig.
func Load() *Config {
	var cfg Config
	if err := envconfig.Process(context.Background(), &cfg); err != nil {
		panic(fmt.Sprintf("config: failed to load configuration: %v", err))
	}
	return &cfg
}
