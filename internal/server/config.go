package server

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config is read from the environment at startup. A .env file is loaded
// first by the entrypoint.
type Config struct {
	Port            int           `env:"PORT"              envDefault:"8000"`
	AllowedOrigins  []string      `env:"ALLOWED_ORIGINS"   envDefault:"*" envSeparator:","`
	CleanupInterval time.Duration `env:"CLEANUP_INTERVAL"  envDefault:"60s"`
	RoomRetention   time.Duration `env:"ROOM_RETENTION"    envDefault:"5m"`
	RateLimit       int           `env:"RATE_LIMIT"        envDefault:"20"`
	RateLimitWindow time.Duration `env:"RATE_LIMIT_WINDOW" envDefault:"1s"`
	SendBuffer      int           `env:"SEND_BUFFER"       envDefault:"32"`
	WriteTimeout    time.Duration `env:"WRITE_TIMEOUT"     envDefault:"10s"`
	Heartbeat       time.Duration `env:"HEARTBEAT_INTERVAL" envDefault:"30s"`
	IdleTimeout     time.Duration `env:"IDLE_TIMEOUT"      envDefault:"2m"`
	DatabaseURL     string        `env:"DATABASE_URL"`
	OTelEndpoint    string        `env:"OTEL_ENDPOINT"`
	OTelEnabled     bool          `env:"OTEL_ENABLED"      envDefault:"true"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT"  envDefault:"30s"`
}

func LoadConfig() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// DefaultConfig returns the values LoadConfig would produce from an empty
// environment.
func DefaultConfig() Config {
	return Config{
		Port:            8000,
		AllowedOrigins:  []string{"*"},
		CleanupInterval: time.Minute,
		RoomRetention:   5 * time.Minute,
		RateLimit:       20,
		RateLimitWindow: time.Second,
		SendBuffer:      32,
		WriteTimeout:    10 * time.Second,
		Heartbeat:       30 * time.Second,
		IdleTimeout:     2 * time.Minute,
		OTelEnabled:     true,
		ShutdownTimeout: 30 * time.Second,
	}
}

func (c Config) Validate() error {
	switch {
	case c.Port <= 0 || c.Port > 65535:
		return fmt.Errorf("invalid PORT %d", c.Port)
	case c.CleanupInterval <= 0:
		return fmt.Errorf("CLEANUP_INTERVAL must be positive")
	case c.RoomRetention < 0:
		return fmt.Errorf("ROOM_RETENTION must not be negative")
	case c.RateLimit <= 0 || c.RateLimitWindow <= 0:
		return fmt.Errorf("RATE_LIMIT and RATE_LIMIT_WINDOW must be positive")
	case c.SendBuffer <= 0:
		return fmt.Errorf("SEND_BUFFER must be positive")
	case c.WriteTimeout <= 0:
		return fmt.Errorf("WRITE_TIMEOUT must be positive")
	case c.Heartbeat <= 0:
		return fmt.Errorf("HEARTBEAT_INTERVAL must be positive")
	case c.IdleTimeout <= c.Heartbeat:
		return fmt.Errorf("IDLE_TIMEOUT must be longer than HEARTBEAT_INTERVAL")
	}
	return nil
}

// TracingEndpoint returns the OTLP endpoint, or "" when tracing is off.
func (c Config) TracingEndpoint() string {
	if !c.OTelEnabled {
		return ""
	}
	return c.OTelEndpoint
}

// originPatterns maps ALLOWED_ORIGINS to websocket.AcceptOptions patterns,
// which match against the host only.
func (c Config) originPatterns() []string {
	patterns := make([]string, 0, len(c.AllowedOrigins))
	for _, origin := range c.AllowedOrigins {
		origin = strings.TrimSpace(origin)
		if origin == "" {
			continue
		}
		origin = strings.TrimPrefix(origin, "https://")
		origin = strings.TrimPrefix(origin, "http://")
		patterns = append(patterns, strings.TrimSuffix(origin, "/"))
	}
	return patterns
}

func (c Config) allowsOrigin(origin string) bool {
	for _, allowed := range c.AllowedOrigins {
		allowed = strings.TrimSuffix(strings.TrimSpace(allowed), "/")
		if allowed == "*" || strings.EqualFold(allowed, origin) {
			return true
		}
	}
	return false
}
