package app

import (
	"errors"
	"flag"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"time"
)

type Config struct {
	RunAddress        string
	DatabaseURI       string
	LogLevel          string
	JWTSecretKey      string
	TokenTTL          time.Duration
	MigrationsPath    string
	CompensateBalance bool
}

func NewConfigFromFlags() (*Config, error) {
	return parseConfig(flag.CommandLine, os.Args[1:], os.Getenv)
}

func parseConfig(fs *flag.FlagSet, args []string, getenv func(string) string) (*Config, error) {
	cfg := &Config{}

	fs.StringVar(&cfg.RunAddress, "a", "localhost:8080", "Server address (env: RUN_ADDRESS)")
	fs.StringVar(&cfg.DatabaseURI, "d", "", "Database URI, empty keeps data in memory (env: DATABASE_URI)")
	fs.StringVar(&cfg.LogLevel, "l", "debug", "Log level (debug|info|warn|error) (env: LOG_LEVEL)")
	fs.StringVar(&cfg.JWTSecretKey, "jwt-secret", "", "JWT secret key (env: JWT_SECRET_KEY)")
	fs.DurationVar(&cfg.TokenTTL, "token-ttl", 24*time.Hour, "Session token lifetime (env: TOKEN_TTL)")
	fs.StringVar(&cfg.MigrationsPath, "migrations", "./migrations", "Path to migrations folder (env: MIGRATIONS_PATH)")
	fs.BoolVar(&cfg.CompensateBalance, "compensate", false, "Reverse balance effects on receive update/delete (env: BALANCE_COMPENSATION)")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	if err := cfg.applyEnvVars(getenv); err != nil {
		return nil, err
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) applyEnvVars(getenv func(string) string) error {
	if envAddr := getenv("RUN_ADDRESS"); envAddr != "" {
		c.RunAddress = envAddr
	}
	if envDB := getenv("DATABASE_URI"); envDB != "" {
		c.DatabaseURI = envDB
	}
	if envLogLevel := getenv("LOG_LEVEL"); envLogLevel != "" {
		c.LogLevel = envLogLevel
	}
	if envSecret := getenv("JWT_SECRET_KEY"); envSecret != "" {
		c.JWTSecretKey = envSecret
	}
	if envMigrations := getenv("MIGRATIONS_PATH"); envMigrations != "" {
		c.MigrationsPath = envMigrations
	}
	if envTTL := getenv("TOKEN_TTL"); envTTL != "" {
		ttl, err := time.ParseDuration(envTTL)
		if err != nil {
			return fmt.Errorf("invalid TOKEN_TTL: %w", err)
		}
		c.TokenTTL = ttl
	}
	if envComp := getenv("BALANCE_COMPENSATION"); envComp != "" {
		comp, err := strconv.ParseBool(envComp)
		if err != nil {
			return fmt.Errorf("invalid BALANCE_COMPENSATION: %w", err)
		}
		c.CompensateBalance = comp
	}
	return nil
}

func (c *Config) validate() error {
	if c.JWTSecretKey == "" {
		return errors.New("JWT secret key is required (use -jwt-secret flag or JWT_SECRET_KEY env)")
	}
	if c.TokenTTL <= 0 {
		return errors.New("token lifetime must be positive")
	}
	return nil
}

func (c *Config) MaskDBPassword() string {
	u, err := url.Parse(c.DatabaseURI)
	if err != nil {
		return c.DatabaseURI
	}

	if u.User != nil {
		if _, hasPassword := u.User.Password(); hasPassword {
			u.User = url.UserPassword(u.User.Username(), "***")
		}
	}
	return u.String()
}
