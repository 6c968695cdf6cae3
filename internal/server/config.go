// Package server provides configuration helpers that define runtime defaults,
// validation, and rate-limiting parameters for the roomchat service.
package server

import (
	"fmt"
	"strings"
	"time"

	env "github.com/Netflix/go-env"
	"github.com/go-playground/validator/v10"

	"github.com/Tyrowin/roomchat/internal/chat"
)

// Config holds the server configuration settings including security controls.
// Every field is read from the environment; the tag defaults apply when a
// variable is unset.
type Config struct {
	Port    string `env:"SERVER_PORT,default=:8080" validate:"required"`
	Origins string `env:"ALLOWED_ORIGINS,default=http://localhost:8080"`

	// MaxMessageSize caps a single inbound WebSocket frame, in bytes.
	MaxMessageSize int64 `env:"MAX_MESSAGE_SIZE,default=4096" validate:"gt=0"`

	// Frame flood protection, applied to every inbound frame before decoding.
	FloodBurst          int           `env:"FLOOD_BURST,default=30" validate:"gt=0"`
	FloodRefillInterval time.Duration `env:"FLOOD_REFILL_INTERVAL,default=1s" validate:"gt=0"`

	// Chat message rate limit, applied per user by the router.
	RateLimitMessages int           `env:"RATE_LIMIT_MESSAGES,default=10" validate:"gt=0"`
	RateLimitWindow   time.Duration `env:"RATE_LIMIT_WINDOW,default=5s" validate:"gt=0"`

	LogLevel        string        `env:"LOG_LEVEL,default=info" validate:"oneof=trace debug info warn error"`
	LogFormat       string        `env:"LOG_FORMAT,default=text" validate:"oneof=text json"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT,default=10s" validate:"gt=0"`

	// AllowedOrigins is Origins split on commas.
	AllowedOrigins []string
}

var validate = validator.New()

// NewConfig creates a Config instance populated with default values for all settings.
func NewConfig() *Config {
	var cfg Config
	if err := env.Unmarshal(env.EnvSet{}, &cfg); err != nil {
		// The defaults are static; failing to parse them is a programming error.
		panic(fmt.Sprintf("server: invalid config defaults: %v", err))
	}
	cfg.AllowedOrigins = parseOrigins(cfg.Origins)
	return &cfg
}

// NewConfigFromEnv creates a Config instance from environment variables and
// validates it.
func NewConfigFromEnv() (*Config, error) {
	var cfg Config
	if _, err := env.UnmarshalFromEnviron(&cfg); err != nil {
		return nil, fmt.Errorf("reading environment: %w", err)
	}
	cfg.AllowedOrigins = parseOrigins(cfg.Origins)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the configuration against its field constraints.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// RateLimit returns the per-user message limit for the router.
func (c *Config) RateLimit() chat.RateLimit {
	return chat.RateLimit{Messages: c.RateLimitMessages, Window: c.RateLimitWindow}
}

func parseOrigins(origins string) []string {
	var out []string
	for _, part := range strings.Split(origins, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
