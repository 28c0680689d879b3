package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/viper"
)

type Config struct {
	APIBaseURL        string        `mapstructure:"API_BASE_URL"`
	TokenFile         string        `mapstructure:"TOKEN_FILE"`
	Env               string        `mapstructure:"ENV"`
	LogLevel          string        `mapstructure:"LOG_LEVEL"`
	RequestTimeout    time.Duration `mapstructure:"REQUEST_TIMEOUT"`
	RateLimitRPS      float64       `mapstructure:"RATE_LIMIT_RPS"`
	RateLimitBurst    int           `mapstructure:"RATE_LIMIT_BURST"`
	SandboxAddr       string        `mapstructure:"SANDBOX_ADDR"`
	SandboxSigningKey string        `mapstructure:"SANDBOX_SIGNING_KEY"`
	SandboxTokenTTL   time.Duration `mapstructure:"SANDBOX_TOKEN_TTL"`
}

// Load reads the environment and an optional .env file in the working
// directory.
func Load() (*Config, error) {
	return load(".env")
}

func load(envFile string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(envFile)
	v.SetConfigType("env")
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("API_BASE_URL", "http://localhost:5147")
	v.SetDefault("TOKEN_FILE", "")
	v.SetDefault("ENV", "production")
	v.SetDefault("LOG_LEVEL", "warn")
	v.SetDefault("REQUEST_TIMEOUT", "0s")
	v.SetDefault("RATE_LIMIT_RPS", 0)
	v.SetDefault("RATE_LIMIT_BURST", 10)
	v.SetDefault("SANDBOX_ADDR", ":5147")
	v.SetDefault("SANDBOX_SIGNING_KEY", "clinicdesk-sandbox-signing-key")
	v.SetDefault("SANDBOX_TOKEN_TTL", "8h")

	// Bind env vars explicitly so Unmarshal picks them up
	v.BindEnv("API_BASE_URL")
	v.BindEnv("TOKEN_FILE")
	v.BindEnv("ENV")
	v.BindEnv("LOG_LEVEL")
	v.BindEnv("REQUEST_TIMEOUT")
	v.BindEnv("RATE_LIMIT_RPS")
	v.BindEnv("RATE_LIMIT_BURST")
	v.BindEnv("SANDBOX_ADDR")
	v.BindEnv("SANDBOX_SIGNING_KEY")
	v.BindEnv("SANDBOX_TOKEN_TTL")

	// A missing .env is fine; a broken one is not.
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("read %s: %w", envFile, err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	return cfg, nil
}

func (c *Config) IsDev() bool {
	return c.Env == "development"
}

// TokenPath returns where the bearer token is kept: TOKEN_FILE, or
// ~/.clinicdesk/token.
func (c *Config) TokenPath() (string, error) {
	if c.TokenFile != "" {
		return c.TokenFile, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve token file: %w", err)
	}
	return filepath.Join(home, ".clinicdesk", "token"), nil
}

// Validate checks that the configuration is usable.
func (c *Config) Validate() error {
	u, err := url.Parse(c.APIBaseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("API_BASE_URL must be an absolute http(s) URL, got %q", c.APIBaseURL)
	}
	if _, err := zerolog.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("LOG_LEVEL %q is not a valid level", c.LogLevel)
	}
	if c.RequestTimeout < 0 {
		return errors.New("REQUEST_TIMEOUT must not be negative")
	}
	if c.RateLimitRPS < 0 {
		return errors.New("RATE_LIMIT_RPS must not be negative")
	}
	if c.RateLimitRPS > 0 && c.RateLimitBurst < 1 {
		return errors.New("RATE_LIMIT_BURST must be at least 1 when RATE_LIMIT_RPS is set")
	}
	if c.SandboxSigningKey == "" {
		return errors.New("SANDBOX_SIGNING_KEY must not be empty")
	}
	return nil
}

// NewLogger builds the process logger: JSON on stderr, or a console writer
// in development.
func (c *Config) NewLogger() zerolog.Logger {
	level, err := zerolog.ParseLevel(c.LogLevel)
	if err != nil {
		level = zerolog.WarnLevel
	}
	logger := zerolog.New(os.Stderr).With().Timestamp().Logger()
	if c.IsDev() {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()
	}
	return logger.Level(level)
}
