// Package config loads netalign settings.
//
// Settings come from three layers, later ones winning:
//
//  1. built-in defaults ([Default])
//  2. a TOML file, $XDG_CONFIG_HOME/netalign/config.toml unless a path is given
//  3. NETALIGN_* environment variables, after loading a .env file from the
//     working directory when one exists
//
// Example file:
//
//	log_level = "info"
//
//	[cache]
//	backend = "redis"
//	redis_url = "redis://localhost:6379/0"
//
//	[store]
//	backend = "mongo"
//	mongo_uri = "mongodb://localhost:27017"
//
//	[server]
//	addr = ":8080"
//	timeout = "60s"
//
//	[groups]
//	threshold = 0.6
//	table = "tables/custom.toml"
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/charmbracelet/log"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"

	"github.com/matzehuels/netalign/pkg/cache"
	apperr "github.com/matzehuels/netalign/pkg/errors"
	"github.com/matzehuels/netalign/pkg/groups"
	"github.com/matzehuels/netalign/pkg/storage"
)

const appName = "netalign"

// Config holds every setting.
type Config struct {
	LogLevel string `toml:"log_level" validate:"oneof=debug info warn error"`

	Cache  CacheConfig  `toml:"cache"`
	Store  StoreConfig  `toml:"store"`
	Server ServerConfig `toml:"server"`
	Groups GroupsConfig `toml:"groups"`
}

// CacheConfig selects the merge and score cache.
type CacheConfig struct {
	Backend  string `toml:"backend" validate:"oneof=file badger redis none"`
	Dir      string `toml:"dir"`
	RedisURL string `toml:"redis_url" validate:"required_if=Backend redis"`
}

// StoreConfig selects the report archive.
type StoreConfig struct {
	Backend  string `toml:"backend" validate:"oneof=file mongo"`
	Dir      string `toml:"dir"`
	MongoURI string `toml:"mongo_uri" validate:"required_if=Backend mongo"`
	Database string `toml:"database"`
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Addr    string        `toml:"addr" validate:"required"`
	Timeout time.Duration `toml:"timeout" validate:"gt=0"`
	// MaxBody caps request bodies in bytes.
	MaxBody int64 `toml:"max_body" validate:"gt=0"`
}

// GroupsConfig configures node grouping.
type GroupsConfig struct {
	Threshold float64 `toml:"threshold" validate:"gte=0,lte=1"`
	// Table is a TOML group table replacing the built-in one.
	Table string `toml:"table"`
}

// Default returns the built-in settings.
func Default() *Config {
	return &Config{
		LogLevel: "info",
		Cache: CacheConfig{
			Backend: string(cache.BackendFile),
			Dir:     xdgDir("XDG_CACHE_HOME", ".cache"),
		},
		Store: StoreConfig{
			Backend:  string(storage.BackendFile),
			Dir:      filepath.Join(xdgDir("XDG_DATA_HOME", filepath.Join(".local", "share")), "reports"),
			Database: storage.DefaultDatabase,
		},
		Server: ServerConfig{
			Addr:    ":8080",
			Timeout: 60 * time.Second,
			MaxBody: 32 << 20,
		},
		Groups: GroupsConfig{Threshold: groups.DefaultThreshold},
	}
}

// xdgDir returns $env/netalign, or ~/fallback/netalign.
func xdgDir(env, fallback string) string {
	if dir := os.Getenv(env); dir != "" {
		return filepath.Join(dir, appName)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(os.TempDir(), appName)
	}
	return filepath.Join(home, fallback, appName)
}

// DefaultPath returns the config file used when none is given.
func DefaultPath() string {
	return filepath.Join(xdgDir("XDG_CONFIG_HOME", ".config"), "config.toml")
}

// Load reads the settings. An empty path uses [DefaultPath], which may be
// missing; an explicit path must exist.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, apperr.Wrap(apperr.ErrCodeInvalidFormat, err, "load .env")
	}

	cfg := Default()
	explicit := path != ""
	if !explicit {
		path = DefaultPath()
	}
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		switch {
		case errors.Is(err, fs.ErrNotExist) && !explicit:
		case errors.Is(err, fs.ErrNotExist):
			return nil, apperr.Wrap(apperr.ErrCodeFileNotFound, err, "config %s", path)
		default:
			return nil, apperr.Wrap(apperr.ErrCodeInvalidFormat, err, "config %s", path)
		}
	}

	if err := cfg.applyEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyEnv overrides settings from NETALIGN_* variables.
func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	strs := map[string]*string{
		"NETALIGN_LOG_LEVEL":      &c.LogLevel,
		"NETALIGN_CACHE_BACKEND":  &c.Cache.Backend,
		"NETALIGN_CACHE_DIR":      &c.Cache.Dir,
		"NETALIGN_REDIS_URL":      &c.Cache.RedisURL,
		"NETALIGN_STORE_BACKEND":  &c.Store.Backend,
		"NETALIGN_STORE_DIR":      &c.Store.Dir,
		"NETALIGN_MONGO_URI":      &c.Store.MongoURI,
		"NETALIGN_MONGO_DATABASE": &c.Store.Database,
		"NETALIGN_ADDR":           &c.Server.Addr,
		"NETALIGN_GROUP_TABLE":    &c.Groups.Table,
	}
	for key, dst := range strs {
		if v, ok := lookup(key); ok {
			*dst = v
		}
	}
	if v, ok := lookup("NETALIGN_THRESHOLD"); ok {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return apperr.Wrap(apperr.ErrCodeInvalidInput, err, "NETALIGN_THRESHOLD")
		}
		c.Groups.Threshold = f
	}
	if v, ok := lookup("NETALIGN_TIMEOUT"); ok {
		d, err := time.ParseDuration(v)
		if err != nil {
			return apperr.Wrap(apperr.ErrCodeInvalidInput, err, "NETALIGN_TIMEOUT")
		}
		c.Server.Timeout = d
	}
	return nil
}

// Validate checks every setting.
func (c *Config) Validate() error {
	if err := validator.New(validator.WithRequiredStructEnabled()).Struct(c); err != nil {
		return apperr.Wrap(apperr.ErrCodeInvalidInput, err, "invalid config")
	}
	return nil
}

// Level returns the configured log level.
func (c *Config) Level() log.Level {
	l, err := log.ParseLevel(c.LogLevel)
	if err != nil {
		return log.InfoLevel
	}
	return l
}

// CacheOptions returns the settings for [cache.Open].
func (c *Config) CacheOptions(logger *log.Logger) cache.Config {
	return cache.Config{
		Backend:  cache.Backend(c.Cache.Backend),
		Dir:      c.Cache.Dir,
		RedisURL: c.Cache.RedisURL,
		Logger:   logger,
	}
}

// StoreOptions returns the settings for [storage.Open].
func (c *Config) StoreOptions() storage.Config {
	return storage.Config{
		Backend:  storage.Backend(c.Store.Backend),
		Dir:      c.Store.Dir,
		MongoURI: c.Store.MongoURI,
		Database: c.Store.Database,
	}
}

// GroupTable reads the configured group table, or returns nil for the
// built-in one.
func (c *Config) GroupTable() (*groups.Table, error) {
	if c.Groups.Table == "" {
		return nil, nil
	}
	f, err := os.Open(c.Groups.Table)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, apperr.Wrap(apperr.ErrCodeFileNotFound, err, "group table %s", c.Groups.Table)
	}
	if err != nil {
		return nil, fmt.Errorf("open group table: %w", err)
	}
	defer f.Close()
	return groups.ReadTable(f)
}
