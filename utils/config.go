package utils

import (
	"encoding/json"
	"os"
	"time"

	"github.com/pkg/errors"
)

// ErrInvalidConfig is returned by Validate for unusable settings
var ErrInvalidConfig = errors.New("invalid config")

// Config holds the configuration for a board session
type Config struct {
	Rows            int           `json:"rows"`
	Cols            int           `json:"cols"`
	LiveProbability float64       `json:"live_probability"`
	TickDelay       time.Duration `json:"tick_delay"`
	Seed            int64         `json:"seed"` // 0 picks a time-based seed
	SeedPatterns    bool          `json:"seed_patterns"`
	UseParallel     bool          `json:"use_parallel"`
	UseMemoryPool   bool          `json:"use_memory_pool"`
	MaxGenerations  int           `json:"max_generations"`
	Interactive     bool          `json:"interactive"`

	// headless auto-play only
	AutoRestart         bool `json:"auto_restart"`
	StagnationThreshold int  `json:"stagnation_threshold"`
}

// DefaultConfig returns sensible defaults
func DefaultConfig() Config {
	return Config{
		Rows:            20,
		Cols:            30,
		LiveProbability: 0.5,
		TickDelay:       250 * time.Millisecond,
		Seed:            0,
		SeedPatterns:    false,
		UseParallel:     false,
		UseMemoryPool:   true,
		MaxGenerations:  0, // run until stopped
		Interactive:     true,

		AutoRestart:         false,
		StagnationThreshold: 5,
	}
}

// LoadConfig loads configuration from JSON file
func LoadConfig(filename string) (Config, error) {
	config := DefaultConfig()

	data, err := os.ReadFile(filename)
	if err != nil {
		return config, errors.Wrapf(err, "[LoadConfig] failed to read file: %+v", filename)
	}

	if err = json.Unmarshal(data, &config); err != nil {
		return config, errors.Wrapf(err, "[LoadConfig] failed to unmarshal data from file: %+v", filename)
	}

	if err = config.Validate(); err != nil {
		return config, errors.Wrapf(err, "[LoadConfig] file: %+v", filename)
	}

	return config, nil
}

// Validate reports the first unusable setting
func (c Config) Validate() error {
	switch {
	case c.Rows <= 0 || c.Cols <= 0:
		return errors.Wrapf(ErrInvalidConfig, "grid must be at least 1x1, got %dx%d", c.Rows, c.Cols)
	case c.LiveProbability < 0 || c.LiveProbability > 1:
		return errors.Wrapf(ErrInvalidConfig, "live_probability %v outside [0,1]", c.LiveProbability)
	case c.TickDelay <= 0:
		return errors.Wrapf(ErrInvalidConfig, "tick_delay must be positive, got %v", c.TickDelay)
	case c.MaxGenerations < 0:
		return errors.Wrapf(ErrInvalidConfig, "max_generations must not be negative, got %d", c.MaxGenerations)
	case c.AutoRestart && c.StagnationThreshold <= 0:
		return errors.Wrapf(ErrInvalidConfig, "stagnation_threshold must be positive with auto_restart, got %d", c.StagnationThreshold)
	}
	return nil
}

// ResolveSeed returns Seed, or a clock-derived seed when Seed is 0
func (c Config) ResolveSeed() int64 {
	if c.Seed != 0 {
		return c.Seed
	}
	return time.Now().UnixNano()
}
