package main

import (
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"
)

// Config holds file-configurable defaults. Flags override file values.
type Config struct {
	Convergence ConvergenceConfig `toml:"convergence"`
}

// ConvergenceConfig mirrors the apply command's convergence flags.
type ConvergenceConfig struct {
	Threshold     float64 `toml:"threshold"`
	MaxIterations int     `toml:"max_iterations"`
	Auto          bool    `toml:"auto"`
}

// defaultConfig matches the flag defaults of the apply command.
func defaultConfig() Config {
	return Config{
		Convergence: ConvergenceConfig{
			Threshold:     0.01,
			MaxIterations: 5,
			Auto:          true,
		},
	}
}

// loadConfig reads the TOML config at path, or returns defaults when
// path is empty.
func loadConfig(path string) (Config, error) {
	cfg := defaultConfig()
	if path == "" {
		return cfg, nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := toml.Unmarshal(raw, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}
