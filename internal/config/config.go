package config

import (
	"flag"
	"time"

	"github.com/caarlos0/env/v6"
	"github.com/joho/godotenv"
)

// Config holds the process configuration. It is loaded once at startup and
// immutable afterwards; both services receive it by injection.
type Config struct {
	HTTPAddr       string        `env:"HTTP_ADDR" envDefault:":8080"`
	DatabasePath   string        `env:"DATABASE_PATH" envDefault:"restaurant.db"`
	AuthSecret     string        `env:"AUTH_SECRET" envDefault:"dev-secret-key"`
	TokenTTL       time.Duration `env:"TOKEN_TTL" envDefault:"1h"`
	LogLevel       string        `env:"LOG_LEVEL" envDefault:"info"`
	Environment    string        `env:"ENVIRONMENT" envDefault:"development"`
	JaegerEndpoint string        `env:"JAEGER_ENDPOINT" envDefault:"http://localhost:14268/api/traces"`
	TracingEnabled bool          `env:"TRACING_ENABLED" envDefault:"false"`
}

// Load reads configuration from an optional .env file and the environment.
// Flags override environment values when set.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}

	flag.StringVar(&cfg.HTTPAddr, "addr", cfg.HTTPAddr, "HTTP listen address")
	flag.StringVar(&cfg.DatabasePath, "db", cfg.DatabasePath, "path to the SQLite store file")
	flag.StringVar(&cfg.AuthSecret, "auth-secret", cfg.AuthSecret, "secret for signing credentials")
	flag.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "log level (debug, info, warn, error)")
	flag.Parse()

	return cfg, nil
}

// IsDevelopment reports whether the process runs in development mode.
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}
