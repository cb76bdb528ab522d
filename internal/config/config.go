package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/abhisek/grindlog/internal/calendar"
	"github.com/abhisek/grindlog/internal/progress"
	"github.com/abhisek/grindlog/internal/store"
)

// Config holds application configuration loaded from files and environment variables.
type Config struct {
	Env      string  `mapstructure:"env"`       // local, dev, production
	LogLevel string  `mapstructure:"log_level"` // empty means the command's default
	User     string  `mapstructure:"user"`      // default user for the CLI and TUI
	Storage  Storage `mapstructure:"storage"`
	Server   Server  `mapstructure:"server"`
	Auth     Auth    `mapstructure:"auth"`
	Seed     Seed    `mapstructure:"seed"`
}

// Storage selects the persistence backend.
type Storage struct {
	Driver          string        `mapstructure:"driver"` // file, sqlite, postgres, memory
	Path            string        `mapstructure:"path"`   // data dir (file) or database file (sqlite)
	DSN             string        `mapstructure:"dsn"`    // postgres connection string
	MaxConnections  int           `mapstructure:"max_connections"`
	MaxConnLifetime time.Duration `mapstructure:"max_conn_lifetime"`
}

// Server configures the HTTP API.
type Server struct {
	Addr string `mapstructure:"addr"`
}

// Auth configures bearer-token authentication for the HTTP API.
type Auth struct {
	JWTSecret string        `mapstructure:"jwt_secret"`
	TokenTTL  time.Duration `mapstructure:"token_ttl"`
}

// Seed holds the defaults for a user without stored progress.
type Seed struct {
	StartDate     string `mapstructure:"start_date"`
	TargetDate    string `mapstructure:"target_date"`
	TotalProblems int    `mapstructure:"total_problems"`
}

// Default returns a Config with sensible defaults.
func Default() Config {
	seed := progress.DefaultSeed()
	return Config{
		Env:  "local",
		User: seed.User,
		Storage: Storage{
			Driver:          "sqlite",
			MaxConnections:  10,
			MaxConnLifetime: 30 * time.Minute,
		},
		Server: Server{Addr: ":8080"},
		Auth:   Auth{TokenTTL: 30 * 24 * time.Hour},
		Seed: Seed{
			StartDate:     calendar.Key(seed.StartDate),
			TargetDate:    calendar.Key(seed.TargetDate),
			TotalProblems: seed.TotalProblems,
		},
	}
}

// Load reads configuration from an optional .env file, a config file and
// GRINDLOG_* environment variables. An empty path searches ./config and
// $XDG_CONFIG_HOME/grindlog for grindlog.yaml; a missing file is not an error.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("error loading .env file: %w", err)
	}

	v := viper.New()
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("grindlog")
		v.SetConfigType("yaml")
		v.AddConfigPath("./config")
		if dir, err := configDir(); err == nil {
			v.AddConfigPath(dir)
		}
	}

	def := Default()
	v.SetDefault("env", def.Env)
	v.SetDefault("log_level", def.LogLevel)
	v.SetDefault("user", def.User)
	v.SetDefault("storage.driver", def.Storage.Driver)
	v.SetDefault("storage.path", def.Storage.Path)
	v.SetDefault("storage.dsn", def.Storage.DSN)
	v.SetDefault("storage.max_connections", def.Storage.MaxConnections)
	v.SetDefault("storage.max_conn_lifetime", def.Storage.MaxConnLifetime)
	v.SetDefault("server.addr", def.Server.Addr)
	v.SetDefault("auth.jwt_secret", def.Auth.JWTSecret)
	v.SetDefault("auth.token_ttl", def.Auth.TokenTTL)
	v.SetDefault("seed.start_date", def.Seed.StartDate)
	v.SetDefault("seed.target_date", def.Seed.TargetDate)
	v.SetDefault("seed.total_problems", def.Seed.TotalProblems)

	// GRINDLOG_STORAGE_DRIVER -> storage.driver
	v.SetEnvPrefix("GRINDLOG")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	_ = v.BindEnv("storage.dsn", "GRINDLOG_STORAGE_DSN", "DATABASE_URL")
	_ = v.BindEnv("auth.jwt_secret", "GRINDLOG_AUTH_JWT_SECRET", "JWT_SECRET")

	if err := v.ReadInConfig(); err != nil {
		var fileLookupErr viper.ConfigFileNotFoundError
		if !errors.As(err, &fileLookupErr) {
			return nil, fmt.Errorf("error loading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshalling config: %w", err)
	}
	return &cfg, nil
}

// Validate checks that the configuration is usable.
func (c *Config) Validate() error {
	switch c.Storage.Driver {
	case "file", "sqlite", "memory":
	case "postgres":
		if c.Storage.DSN == "" {
			return fmt.Errorf("storage.dsn is required for the postgres driver")
		}
	default:
		return fmt.Errorf("unknown storage.driver %q (want file, sqlite, postgres or memory)", c.Storage.Driver)
	}
	if c.User == "" {
		return fmt.Errorf("user must not be empty")
	}
	if _, err := c.ProgressSeed(); err != nil {
		return err
	}
	if c.Auth.TokenTTL <= 0 {
		return fmt.Errorf("auth.token_ttl must be positive")
	}
	return nil
}

// ProgressSeed converts the seed section into progress.Seed.
func (c *Config) ProgressSeed() (progress.Seed, error) {
	start, err := calendar.Parse(c.Seed.StartDate)
	if err != nil {
		return progress.Seed{}, fmt.Errorf("seed.start_date: %w", err)
	}
	target, err := calendar.Parse(c.Seed.TargetDate)
	if err != nil {
		return progress.Seed{}, fmt.Errorf("seed.target_date: %w", err)
	}
	if target.Before(start) {
		return progress.Seed{}, fmt.Errorf("seed.target_date is before seed.start_date")
	}
	if c.Seed.TotalProblems <= 0 {
		return progress.Seed{}, fmt.Errorf("seed.total_problems must be positive")
	}
	return progress.Seed{
		User:          c.User,
		StartDate:     start,
		TargetDate:    target,
		TotalProblems: c.Seed.TotalProblems,
	}, nil
}

// StoreConfig returns the store settings for this configuration.
func (c *Config) StoreConfig() (store.Config, error) {
	seed, err := c.ProgressSeed()
	if err != nil {
		return store.Config{}, err
	}
	return store.Config{
		Driver:          c.Storage.Driver,
		Path:            c.Storage.Path,
		DSN:             c.Storage.DSN,
		MaxConns:        int32(c.Storage.MaxConnections),
		MaxConnLifetime: c.Storage.MaxConnLifetime,
		Seed:            seed,
		Retry:           store.DefaultRetryConfig(),
	}, nil
}

func configDir() (string, error) {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, "grindlog"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "grindlog"), nil
}
