package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

const Production = "production"

type CORSOptions struct {
	AllowedOrigins   []string `env:"ALLOWED_ORIGINS" envSeparator:"," envDefault:"http://localhost:3000"`
	AllowCredentials bool     `env:"ALLOW_CREDENTIALS" envDefault:"true"`
	MaxAge           int      `env:"MAX_AGE" envDefault:"600"`
}

type MetricsOptions struct {
	Enabled bool   `env:"ENABLED" envDefault:"true"`
	Path    string `env:"PATH" envDefault:"/metrics"`
}

type LoginRateLimitOptions struct {
	Limit  int           `env:"LIMIT" envDefault:"10"`
	Window time.Duration `env:"WINDOW" envDefault:"5m"`
}

type Config struct {
	Env            string        `env:"APP_ENV" envDefault:"development"`
	AppHost        string        `env:"APP_HOST" envDefault:":8080"`
	LogLevel       string        `env:"LOG_LEVEL" envDefault:"info"`
	DatabaseURL    string        `env:"DATABASE_URL,required"`
	JWTSecret      string        `env:"JWT_SECRET,required"`
	JWTTTL         time.Duration `env:"JWT_TTL" envDefault:"120h"`
	MigrationsDir  string        `env:"MIGRATIONS_DIR" envDefault:"./migrations"`
	RunMigrations  bool          `env:"RUN_MIGRATIONS" envDefault:"true"`
	RequestTimeout time.Duration `env:"REQUEST_TIMEOUT" envDefault:"30s"`

	CORS      CORSOptions           `envPrefix:"CORS_"`
	Metrics   MetricsOptions        `envPrefix:"METRICS_"`
	LoginRate LoginRateLimitOptions `envPrefix:"LOGIN_RATE_"`
}

// LoadEnv loads the given .env files that exist. Variables already present in
// the environment are never overwritten.
func LoadEnv(envFiles ...string) (int, error) {
	existing := make([]string, 0, len(envFiles))
	for _, file := range envFiles {
		if _, err := os.Stat(file); err == nil {
			existing = append(existing, file)
		}
	}

	if len(existing) == 0 {
		return 0, nil
	}

	return len(existing), godotenv.Load(existing...)
}

func Load() (*Config, error) {
	if _, err := LoadEnv(".env", ".env.local"); err != nil {
		return nil, fmt.Errorf("load env files: %w", err)
	}

	return Parse()
}

func Parse() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	var errs []error

	if c.RequestTimeout <= 0 {
		errs = append(errs, fmt.Errorf("REQUEST_TIMEOUT must be positive, got %s", c.RequestTimeout))
	}
	if c.JWTTTL <= 0 {
		errs = append(errs, fmt.Errorf("JWT_TTL must be positive, got %s", c.JWTTTL))
	}
	if c.LoginRate.Limit <= 0 {
		errs = append(errs, fmt.Errorf("LOGIN_RATE_LIMIT must be positive, got %d", c.LoginRate.Limit))
	}
	if c.LoginRate.Window <= 0 {
		errs = append(errs, fmt.Errorf("LOGIN_RATE_WINDOW must be positive, got %s", c.LoginRate.Window))
	}

	return errors.Join(errs...)
}

func (c *Config) IsProduction() bool {
	return c.Env == Production
}
