package keva

import (
	"fmt"

	"github.com/mazzegi/keva/env"
	"github.com/mazzegi/keva/errorx"
	"github.com/mazzegi/keva/fsx"
	"github.com/mazzegi/keva/jsonx"
	"github.com/mazzegi/keva/store"
)

const (
	BackendMemory = "memory"
	BackendBolt   = "bolt"
	BackendSqlite = "sqlite"
	BackendRedis  = "redis"
)

type RedisConfig struct {
	Addr     string `json:"addr"`
	Password string `json:"password"`
	DB       int    `json:"db"`
}

// Config selects and parametrizes the backend the client attaches to.
type Config struct {
	Backend string      `json:"backend"`
	Root    string      `json:"root"`
	File    string      `json:"file"`
	Redis   RedisConfig `json:"redis"`
}

func DefaultConfig() Config {
	return Config{
		Backend: BackendMemory,
		Root:    store.DefaultRoot,
	}
}

// ConfigFromEnv reads KEVA_BACKEND, KEVA_ROOT, KEVA_FILE, KEVA_REDIS_ADDR,
// KEVA_REDIS_PASSWORD and KEVA_REDIS_DB, falling back to the defaults for
// anything unset.
func ConfigFromEnv(e env.Env) Config {
	def := DefaultConfig()
	return Config{
		Backend: e.StringOrDefault("KEVA_BACKEND", def.Backend),
		Root:    e.StringOrDefault("KEVA_ROOT", def.Root),
		File:    e.StringOrDefault("KEVA_FILE", def.File),
		Redis: RedisConfig{
			Addr:     e.StringOrDefault("KEVA_REDIS_ADDR", ""),
			Password: e.StringOrDefault("KEVA_REDIS_PASSWORD", ""),
			DB:       e.IntOrDefault("KEVA_REDIS_DB", 0),
		},
	}
}

// ConfigFromFile reads a JSON config file. Absent fields keep their zero
// value; validation happens at Attach.
func ConfigFromFile(file string) (Config, error) {
	if !fsx.Exists(file) {
		return Config{}, fmt.Errorf("config file %q does not exist", file)
	}
	cfg, err := jsonx.DecodeFile[Config](file)
	if err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	if cfg.Backend == "" {
		cfg.Backend = BackendMemory
	}
	if cfg.Root == "" {
		cfg.Root = store.DefaultRoot
	}
	return cfg, nil
}

func (c Config) Validate() error {
	g := errorx.NewGroup()
	switch c.Backend {
	case BackendMemory:
	case BackendBolt, BackendSqlite:
		if c.File == "" {
			g.Append(fmt.Errorf("backend %q needs a file", c.Backend))
		}
	case BackendRedis:
		if c.Redis.Addr == "" {
			g.Append(fmt.Errorf("backend %q needs an address", c.Backend))
		}
	default:
		g.Append(fmt.Errorf("unknown backend %q", c.Backend))
	}
	return g.Error()
}
