// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Defaults come from New; Load layers a YAML file and KENDALL_* env vars on top.
// - Validation failures wrap ErrInvalidConfig; provider failures wrap ErrLoadConfig.
package config

import (
	"runtime"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogFormat selects the log handler: text or json.
	LogFormat string `koanf:"log_format"`

	// Addr configures the HTTP listen address, e.g. ":9090".
	Addr string `koanf:"addr"`

	// Alpha is the significance level used when a request does not set one.
	Alpha float64 `koanf:"alpha"`

	// RankOrder is "descending" (rank 1 = highest score) or "ascending".
	RankOrder string `koanf:"rank_order"`

	// QueueSize bounds the in-memory analysis queue.
	QueueSize int `koanf:"queue_size"`

	// WorkerCount sets the number of evaluation workers.
	WorkerCount int `koanf:"worker_count"`

	// DedupeSize bounds the submission fingerprint index.
	DedupeSize int `koanf:"dedupe_size"`

	// MaxAnalyses caps stored analyses; the oldest finished ones are dropped first.
	MaxAnalyses int `koanf:"max_analyses"`

	// MaxRaters and MaxObjects cap the matrix accepted by the service.
	MaxRaters  int `koanf:"max_raters"`
	MaxObjects int `koanf:"max_objects"`
}

// New returns a Config holding the defaults.
func New() *Config {
	return &Config{
		LogLevel:    "info",
		LogFormat:   "text",
		Addr:        ":9090",
		Alpha:       0.05,
		RankOrder:   "descending",
		QueueSize:   1_000,
		WorkerCount: runtime.NumCPU(),
		DedupeSize:  10_000,
		MaxAnalyses: 10_000,
		MaxRaters:   1_000,
		MaxObjects:  1_000,
	}
}
