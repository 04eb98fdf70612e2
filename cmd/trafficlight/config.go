package main

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/creachadair/lightsync/light"
)

// Config is the demo configuration. It can be loaded from a YAML file, with
// durations written as Go duration strings, e.g.
//
//	lights: 2
//	vehicles: 3
//	min_dwell: 400ms
//	max_dwell: 600ms
//	poll: 1ms
//	run_for: 10s
type Config struct {
	Lights   int           `yaml:"lights"`
	Vehicles int           `yaml:"vehicles"` // per light
	MinDwell time.Duration `yaml:"min_dwell"`
	MaxDwell time.Duration `yaml:"max_dwell"`
	Poll     time.Duration `yaml:"poll"`
	RunFor   time.Duration `yaml:"run_for"` // 0 runs until interrupted
}

func defaultConfig() Config {
	return Config{
		Lights:   2,
		Vehicles: 3,
		MinDwell: light.DefaultMinDwell,
		MaxDwell: light.DefaultMaxDwell,
		Poll:     light.DefaultPoll,
	}
}

// loadConfig reads a YAML config from path on top of the defaults.
func loadConfig(path string) (Config, error) {
	cfg := defaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse %q: %w", path, err)
	}
	return cfg, nil
}

func (c Config) check() error {
	switch {
	case c.Lights <= 0:
		return fmt.Errorf("lights must be positive (got %d)", c.Lights)
	case c.Vehicles < 0:
		return fmt.Errorf("vehicles must be non-negative (got %d)", c.Vehicles)
	case c.MinDwell <= 0 || c.MaxDwell <= 0 || c.Poll <= 0:
		return fmt.Errorf("dwell and poll durations must be positive")
	case c.MinDwell > c.MaxDwell:
		return fmt.Errorf("min_dwell %v exceeds max_dwell %v", c.MinDwell, c.MaxDwell)
	case c.RunFor < 0:
		return fmt.Errorf("run_for must be non-negative (got %v)", c.RunFor)
	}
	return nil
}

// lightConfig returns the machine configuration for the light with the given
// name.
func (c Config) lightConfig(name string, log *light.Logger) *light.Config {
	return &light.Config{
		Name:     name,
		MinDwell: c.MinDwell,
		MaxDwell: c.MaxDwell,
		Poll:     c.Poll,
		Logger:   log,
	}
}
