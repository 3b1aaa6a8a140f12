// Package config loads treeflow settings.
//
// Settings are layered, later sources winning:
//
//  1. Built-in defaults ([Default])
//  2. treeflow.toml (explicit path, or the working directory if present)
//  3. A .env file in the working directory
//  4. TREEFLOW_* environment variables
//
// Command-line flags are applied on top by the CLI.
package config

import (
	stderrors "errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/joho/godotenv"

	"github.com/kafei-ai/treeflow/pkg/errors"
	"github.com/kafei-ai/treeflow/pkg/tree"
)

// FileName is the config file looked up in the working directory.
const FileName = "treeflow.toml"

// Cache backends.
const (
	CacheFile  = "file"
	CacheRedis = "redis"
	CacheNone  = "none"
)

// Project store backends.
const (
	StoreFile  = "file"
	StoreMongo = "mongo"
)

// Config holds all treeflow settings.
type Config struct {
	Server ServerConfig `toml:"server"`
	Cache  CacheConfig  `toml:"cache"`
	Store  StoreConfig  `toml:"store"`
	Layout LayoutConfig `toml:"layout"`
	Log    LogConfig    `toml:"log"`
}

// ServerConfig configures "treeflow serve".
type ServerConfig struct {
	Addr        string        `toml:"addr"`
	CORSOrigins []string      `toml:"cors_origins"`
	KeepAlive   time.Duration `toml:"keepalive"`    // SSE keepalive comment interval
	SessionTTL  time.Duration `toml:"session_ttl"`  // idle sessions are evicted after this
	ReadTimeout time.Duration `toml:"read_timeout"` // WriteTimeout stays 0 for SSE
}

// CacheConfig selects the layout/artifact cache.
type CacheConfig struct {
	Backend   string `toml:"backend"`
	Dir       string `toml:"dir"`
	RedisURL  string `toml:"redis_url"`
	KeyPrefix string `toml:"key_prefix"`
}

// StoreConfig selects the project store.
type StoreConfig struct {
	Backend       string `toml:"backend"`
	Dir           string `toml:"dir"`
	MongoURI      string `toml:"mongo_uri"`
	MongoDatabase string `toml:"mongo_database"`
}

// LayoutConfig holds the layout spacing constants.
type LayoutConfig struct {
	NodeWidth float64 `toml:"node_width"`
	XGap      float64 `toml:"x_gap"`
	YGap      float64 `toml:"y_gap"`
}

// LogConfig configures the rotating log file used by the TUI.
type LogConfig struct {
	File       string `toml:"file"`
	MaxSizeMB  int    `toml:"max_size_mb"`
	MaxBackups int    `toml:"max_backups"`
	MaxAgeDays int    `toml:"max_age_days"`
	Compress   bool   `toml:"compress"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Addr:        ":8080",
			CORSOrigins: []string{"http://localhost:3000"},
			KeepAlive:   15 * time.Second,
			SessionTTL:  time.Hour,
			ReadTimeout: 15 * time.Second,
		},
		Cache: CacheConfig{
			Backend:   CacheFile,
			KeyPrefix: "treeflow:",
		},
		Store: StoreConfig{
			Backend:       StoreFile,
			MongoDatabase: "treeflow",
		},
		Layout: LayoutConfig{
			NodeWidth: tree.DefaultNodeWidth,
			XGap:      tree.DefaultXGap,
			YGap:      tree.DefaultYGap,
		},
		Log: LogConfig{
			MaxSizeMB:  10,
			MaxBackups: 3,
			MaxAgeDays: 28,
		},
	}
}

// Load builds the configuration from defaults, the TOML file at path (or
// treeflow.toml in the working directory when path is empty), .env and the
// environment. The result is validated.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path == "" {
		if _, err := os.Stat(FileName); err == nil {
			path = FileName
		}
	}
	if path != "" {
		if err := cfg.decodeFile(path); err != nil {
			return nil, err
		}
	}

	// A missing .env is normal outside development.
	_ = godotenv.Load()

	if err := cfg.ApplyEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	cfg.resolveDirs()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) decodeFile(path string) error {
	md, err := toml.DecodeFile(path, c)
	if stderrors.Is(err, fs.ErrNotExist) {
		return errors.Wrap(errors.ErrCodeNotFound, err, "config file %s", path)
	}
	if err != nil {
		return errors.Wrap(errors.ErrCodeInvalidInput, err, "parse %s", path)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return errors.New(errors.ErrCodeInvalidInput, "unknown config keys in %s: %v", path, undecoded)
	}
	return nil
}

// LookupFunc reads an environment variable.
type LookupFunc func(key string) (string, bool)

// ApplyEnv overrides settings from TREEFLOW_* variables.
func (c *Config) ApplyEnv(lookup LookupFunc) error {
	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok && v != "" {
			*dst = v
		}
	}
	var errs []error
	num := func(key string, dst *float64) {
		if v, ok := lookup(key); ok && v != "" {
			f, err := strconv.ParseFloat(v, 64)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", key, err))
				return
			}
			*dst = f
		}
	}
	dur := func(key string, dst *time.Duration) {
		if v, ok := lookup(key); ok && v != "" {
			d, err := time.ParseDuration(v)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", key, err))
				return
			}
			*dst = d
		}
	}

	str("TREEFLOW_ADDR", &c.Server.Addr)
	if v, ok := lookup("TREEFLOW_CORS_ORIGINS"); ok && v != "" {
		c.Server.CORSOrigins = splitList(v)
	}
	dur("TREEFLOW_KEEPALIVE", &c.Server.KeepAlive)
	dur("TREEFLOW_SESSION_TTL", &c.Server.SessionTTL)

	str("TREEFLOW_CACHE", &c.Cache.Backend)
	str("TREEFLOW_CACHE_DIR", &c.Cache.Dir)
	str("TREEFLOW_REDIS_URL", &c.Cache.RedisURL)
	str("TREEFLOW_CACHE_PREFIX", &c.Cache.KeyPrefix)

	str("TREEFLOW_STORE", &c.Store.Backend)
	str("TREEFLOW_STORE_DIR", &c.Store.Dir)
	str("TREEFLOW_MONGO_URI", &c.Store.MongoURI)
	str("TREEFLOW_MONGO_DB", &c.Store.MongoDatabase)

	num("TREEFLOW_NODE_WIDTH", &c.Layout.NodeWidth)
	num("TREEFLOW_X_GAP", &c.Layout.XGap)
	num("TREEFLOW_Y_GAP", &c.Layout.YGap)

	str("TREEFLOW_LOG_FILE", &c.Log.File)

	if err := stderrors.Join(errs...); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidInput, err, "invalid environment")
	}
	return nil
}

// resolveDirs fills empty directories with XDG-style defaults.
func (c *Config) resolveDirs() {
	if c.Cache.Dir == "" {
		if dir, err := CacheDir(); err == nil {
			c.Cache.Dir = dir
		}
	}
	if c.Store.Dir == "" {
		if dir, err := DataDir(); err == nil {
			c.Store.Dir = filepath.Join(dir, "projects")
		}
	}
	if c.Log.File == "" {
		if dir, err := DataDir(); err == nil {
			c.Log.File = filepath.Join(dir, "logs", "treeflow.log")
		}
	}
}

// Validate checks the configuration for consistency.
func (c *Config) Validate() error {
	err := validation.Errors{
		"server": validation.ValidateStruct(&c.Server,
			validation.Field(&c.Server.Addr, validation.Required),
			validation.Field(&c.Server.KeepAlive, validation.Min(time.Second)),
			validation.Field(&c.Server.SessionTTL, validation.Min(time.Minute)),
		),
		"cache": validation.ValidateStruct(&c.Cache,
			validation.Field(&c.Cache.Backend, validation.Required, validation.In(CacheFile, CacheRedis, CacheNone)),
			validation.Field(&c.Cache.RedisURL, validation.When(c.Cache.Backend == CacheRedis, validation.Required)),
		),
		"store": validation.ValidateStruct(&c.Store,
			validation.Field(&c.Store.Backend, validation.Required, validation.In(StoreFile, StoreMongo)),
			validation.Field(&c.Store.MongoURI, validation.When(c.Store.Backend == StoreMongo, validation.Required)),
			validation.Field(&c.Store.MongoDatabase, validation.When(c.Store.Backend == StoreMongo, validation.Required)),
		),
		"layout": validation.ValidateStruct(&c.Layout,
			validation.Field(&c.Layout.NodeWidth, validation.Required, validation.Min(1.0)),
			validation.Field(&c.Layout.XGap, validation.Min(0.0)),
			validation.Field(&c.Layout.YGap, validation.Required, validation.Min(1.0)),
		),
		"log": validation.ValidateStruct(&c.Log,
			validation.Field(&c.Log.MaxSizeMB, validation.Min(1)),
			validation.Field(&c.Log.MaxBackups, validation.Min(0)),
			validation.Field(&c.Log.MaxAgeDays, validation.Min(0)),
		),
	}.Filter()
	if err != nil {
		return errors.Wrap(errors.ErrCodeInvalidInput, err, "invalid config")
	}
	return nil
}

// CacheDir returns $XDG_CACHE_HOME/treeflow or ~/.cache/treeflow.
func CacheDir() (string, error) {
	return xdgDir("XDG_CACHE_HOME", ".cache")
}

// DataDir returns $XDG_DATA_HOME/treeflow or ~/.local/share/treeflow.
func DataDir() (string, error) {
	return xdgDir("XDG_DATA_HOME", filepath.Join(".local", "share"))
}

func xdgDir(env, fallback string) (string, error) {
	if base := os.Getenv(env); base != "" {
		return filepath.Join(base, "treeflow"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, fallback, "treeflow"), nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
