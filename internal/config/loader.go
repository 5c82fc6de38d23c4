package config

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/oplozada/estadistica/internal/domain/ranking"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

const (
	envPrefix  = "KENDALL_"
	envConfig  = "KENDALL_CONFIG"
	keyDivider = "."
)

// Load builds a Config by layering defaults, optional file, and env vars.
// Order of precedence (low -> high):
//  1. defaults (New)
//  2. file (YAML) if KENDALL_CONFIG is set
//  3. env (prefix KENDALL_)
func Load(_ context.Context) (*Config, error) {
	k := koanf.New(keyDivider)

	if path := os.Getenv(envConfig); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrLoadConfig, path, err)
		}
	}

	// KENDALL_QUEUE_SIZE -> queue_size; underscores are kept to match the koanf tags.
	envProvider := env.Provider(envPrefix, keyDivider, func(s string) string {
		s = strings.ToLower(s)
		return strings.TrimPrefix(s, strings.ToLower(envPrefix))
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("%w: env: %w", ErrLoadConfig, err)
	}

	cfg := *New()
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the semantic constraints of the configuration.
func (c *Config) Validate() error {
	switch {
	case c.Addr == "":
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	case !(c.Alpha > 0 && c.Alpha < 1):
		return fmt.Errorf("%w: alpha must be in (0,1), got %g", ErrInvalidConfig, c.Alpha)
	case c.QueueSize <= 0:
		return fmt.Errorf("%w: queue_size must be positive", ErrInvalidConfig)
	case c.WorkerCount <= 0:
		return fmt.Errorf("%w: worker_count must be positive", ErrInvalidConfig)
	case c.MaxAnalyses < 0:
		return fmt.Errorf("%w: max_analyses must not be negative", ErrInvalidConfig)
	case c.MaxRaters <= 0 || c.MaxObjects <= 0:
		return fmt.Errorf("%w: max_raters and max_objects must be positive", ErrInvalidConfig)
	}
	if _, ok := ranking.ParseOrder(c.RankOrder); !ok {
		return fmt.Errorf("%w: unknown rank_order %q", ErrInvalidConfig, c.RankOrder)
	}
	return nil
}

// Order returns the configured ranking direction.
func (c *Config) Order() ranking.Order {
	o, _ := ranking.ParseOrder(c.RankOrder)
	return o
}
