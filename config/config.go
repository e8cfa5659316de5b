// Package config loads the YAML configuration of the mecab services.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// EnvPath names the environment variable consulted when no config path
// is given.
const EnvPath = "MECAB_CONFIG"

// Config is the root configuration document.
type Config struct {
	Dictionary DictionaryConfig `yaml:"dictionary"`
	Server     ServerConfig     `yaml:"server"`
	Cache      CacheConfig      `yaml:"cache"`
	Log        LogConfig        `yaml:"log"`
	Guest      GuestConfig      `yaml:"guest"`
}

// DictionaryConfig selects the model every service analyzes with.
type DictionaryConfig struct {
	Dir     string `yaml:"dir"`
	UserDic string `yaml:"userdic"`
	Rcfile  string `yaml:"rcfile"`
	// Args holds extra model options in command-line form, e.g. "-a -N 2".
	Args string `yaml:"args"`
}

// Argv returns the model argument vector.
func (d DictionaryConfig) Argv() []string {
	argv := []string{"mecab"}
	if d.Dir != "" {
		argv = append(argv, "-d", d.Dir)
	}
	if d.UserDic != "" {
		argv = append(argv, "-u", d.UserDic)
	}
	if d.Rcfile != "" {
		argv = append(argv, "-r", d.Rcfile)
	}
	return append(argv, strings.Fields(d.Args)...)
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Addr           string        `yaml:"addr"`
	CORSOrigins    []string      `yaml:"cors_origins"`
	MaxBodyBytes   int64         `yaml:"max_body_bytes"`
	MaxNBest       int           `yaml:"max_nbest"`
	RequestTimeout time.Duration `yaml:"request_timeout"`
	Metrics        bool          `yaml:"metrics"`
}

// Cache backends.
const (
	CacheNone   = "none"
	CacheMemory = "memory"
	CacheRedis  = "redis"
)

// CacheConfig configures the analysis result cache.
type CacheConfig struct {
	Backend    string        `yaml:"backend"`
	TTL        time.Duration `yaml:"ttl"`
	MaxEntries int           `yaml:"max_entries"`
	Redis      RedisConfig   `yaml:"redis"`
}

// RedisConfig addresses the redis cache backend.
type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
	Prefix   string `yaml:"prefix"`
}

// LogConfig configures the process logger.
type LogConfig struct {
	Level       string `yaml:"level"`
	Development bool   `yaml:"development"`
}

// Build creates the logger described by c.
func (c LogConfig) Build() (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	if c.Development {
		cfg = zap.NewDevelopmentConfig()
	}
	if c.Level != "" {
		level, err := zap.ParseAtomicLevel(c.Level)
		if err != nil {
			return nil, fmt.Errorf("log level: %w", err)
		}
		cfg.Level = level
	}
	return cfg.Build()
}

// GuestConfig limits WebAssembly guests.
type GuestConfig struct {
	MemoryLimitPages uint32 `yaml:"memory_limit_pages"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Addr:           ":8080",
			CORSOrigins:    []string{"*"},
			MaxBodyBytes:   1 << 20,
			MaxNBest:       32,
			RequestTimeout: 10 * time.Second,
			Metrics:        true,
		},
		Cache: CacheConfig{
			Backend:    CacheMemory,
			TTL:        10 * time.Minute,
			MaxEntries: 4096,
			Redis: RedisConfig{
				Addr:   "localhost:6379",
				Prefix: "mecab:parse:",
			},
		},
		Log: LogConfig{Level: "info"},
		Guest: GuestConfig{
			MemoryLimitPages: 1024,
		},
	}
}

// Load reads the config at path over the defaults. An empty path falls
// back to $MECAB_CONFIG, and to the defaults alone when that is unset too.
func Load(path string) (*Config, error) {
	if path == "" {
		path = os.Getenv(EnvPath)
	}
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks values the services can not start with.
func (c *Config) Validate() error {
	switch c.Cache.Backend {
	case CacheNone, CacheMemory, CacheRedis:
	default:
		return fmt.Errorf("unknown cache backend %q", c.Cache.Backend)
	}
	if c.Cache.Backend == CacheRedis && c.Cache.Redis.Addr == "" {
		return fmt.Errorf("cache.redis.addr is required for the redis backend")
	}
	if c.Server.MaxNBest < 1 {
		return fmt.Errorf("server.max_nbest must be positive")
	}
	if c.Server.MaxBodyBytes < 1 {
		return fmt.Errorf("server.max_body_bytes must be positive")
	}
	return nil
}
