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

	// BackendURL is the base URL of the expense/payment API the portal
	// consumes. The portal never talks to anything else.
	BackendURL     string        `env:"BACKEND_URL,     default=http://localhost:8000"`
	BackendTimeout time.Duration `env:"BACKEND_TIMEOUT, default=8s"`

	// SessionTTL mirrors the backend token lifetime so sessions do not
	// outlive the token they hold.
	SessionTTL         time.Duration `env:"SESSION_TTL,          default=168h"`
	AttachmentTokenTTL time.Duration `env:"ATTACHMENT_TOKEN_TTL, default=5m"`

	Redis RedisConfig
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
