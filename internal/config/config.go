package config

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"

	"github.com/MrJamesThe3rd/pfm/internal/database"
)

type Config struct {
	App struct {
		Name     string     `envconfig:"APP_NAME" default:"PFM"`
		Port     int        `envconfig:"PORT" default:"5000"`
		LogLevel slog.Level `envconfig:"LOG_LEVEL" default:"INFO"`
	}

	DB struct {
		Host     string `envconfig:"DB_HOST" default:"localhost"`
		Port     int    `envconfig:"DB_PORT" default:"5432"`
		User     string `envconfig:"DB_USER" default:"postgres"`
		Password string `envconfig:"DB_PASSWORD" default:""`
		Name     string `envconfig:"DB_NAME" default:"pfm"`
		SSLMode  string `envconfig:"DB_SSLMODE" default:"disable"`

		MaxOpenConns    int           `envconfig:"DB_MAX_OPEN_CONNS" default:"25"`
		MaxIdleConns    int           `envconfig:"DB_MAX_IDLE_CONNS" default:"5"`
		ConnMaxLifetime time.Duration `envconfig:"DB_CONN_MAX_LIFETIME" default:"5m"`
	}

	Server struct {
		Timeout time.Duration `envconfig:"SERVER_TIMEOUT" default:"30s"`
	}

	Auth struct {
		JWTSecret     string        `envconfig:"JWT_SECRET"`
		TokenTTL      time.Duration `envconfig:"JWT_EXPIRE" default:"720h"`
		ResetTokenTTL time.Duration `envconfig:"RESET_TOKEN_EXPIRE" default:"15m"`
		BcryptCost    int           `envconfig:"BCRYPT_COST" default:"10"`
	}

	Quota struct {
		MonthlyLimit int `envconfig:"QUOTA_MONTHLY_LIMIT" default:"10"`
		// Whether premium accounts still advance the monthly counter.
		CountPremium bool `envconfig:"QUOTA_COUNT_PREMIUM" default:"false"`
	}

	Payment struct {
		BaseURL      string        `envconfig:"RAZORPAY_BASE_URL" default:"https://api.razorpay.com"`
		KeyID        string        `envconfig:"RAZORPAY_KEY_ID"`
		KeySecret    string        `envconfig:"RAZORPAY_KEY_SECRET"`
		PremiumPrice int64         `envconfig:"PREMIUM_PRICE_MINOR" default:"35282"`
		Currency     string        `envconfig:"PREMIUM_CURRENCY" default:"INR"`
		Timeout      time.Duration `envconfig:"RAZORPAY_TIMEOUT" default:"15s"`
	}

	RateLimit struct {
		APIPerMinute  int `envconfig:"RATE_LIMIT_API_PER_MINUTE" default:"100"`
		AuthPerMinute int `envconfig:"RATE_LIMIT_AUTH_PER_MINUTE" default:"10"`
	}

	CORS struct {
		AllowedOrigins []string `envconfig:"CORS_ALLOWED_ORIGINS" default:"http://localhost:3000"`
	}

	Budget struct {
		// Local file used by the terminal client; empty means the user config dir.
		File string `envconfig:"BUDGET_FILE"`
	}
}

// Pool returns the connection pool limits for database.New.
func (c *Config) Pool() database.Pool {
	return database.Pool{
		MaxOpenConns:    c.DB.MaxOpenConns,
		MaxIdleConns:    c.DB.MaxIdleConns,
		ConnMaxLifetime: c.DB.ConnMaxLifetime,
	}
}

func (c *Config) ConnectionString() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.DB.User, c.DB.Password, c.DB.Host, c.DB.Port, c.DB.Name, c.DB.SSLMode)
}

// validate checks the settings every binary needs. The payment secret is
// only required when withPayments is set.
func (c *Config) validate(withPayments bool) error {
	var missing []string

	if c.Auth.JWTSecret == "" {
		missing = append(missing, "JWT_SECRET")
	}

	if withPayments && c.Payment.KeySecret == "" {
		missing = append(missing, "RAZORPAY_KEY_SECRET")
	}

	if len(missing) > 0 {
		return fmt.Errorf("missing required settings: %s", strings.Join(missing, ", "))
	}

	if c.Quota.MonthlyLimit <= 0 {
		return errors.New("QUOTA_MONTHLY_LIMIT must be positive")
	}

	if withPayments && c.Payment.PremiumPrice <= 0 {
		return errors.New("PREMIUM_PRICE_MINOR must be positive")
	}

	return nil
}

func process() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process config: %w", err)
	}

	return &cfg, nil
}

// Load reads the API server configuration from the environment.
func Load() (*Config, error) {
	cfg, err := process()
	if err != nil {
		return nil, err
	}

	if err := cfg.validate(true); err != nil {
		return nil, err
	}

	return cfg, nil
}

// LoadClient reads the configuration for the terminal client, which never
// talks to the payment gateway.
func LoadClient() (*Config, error) {
	cfg, err := process()
	if err != nil {
		return nil, err
	}

	if err := cfg.validate(false); err != nil {
		return nil, err
	}

	return cfg, nil
}
