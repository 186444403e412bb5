package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

const (
	DefaultSolver   = "platen"
	DefaultMethod   = "homodyne"
	DefaultNTraj    = 200
	DefaultNSub     = 20
	DefaultDuration = 5.0
	DefaultSteps    = 100
)

type Config struct {
	Scenario string  `yaml:"scenario"`
	Solver   string  `yaml:"solver"`
	Method   string  `yaml:"method"`
	NTraj    int     `yaml:"ntraj"`
	NSub     int     `yaml:"nsub"`
	Seed     uint64  `yaml:"seed"`
	Duration float64 `yaml:"duration"`
	Steps    int     `yaml:"steps"`

	StoreMeasurement bool `yaml:"store_measurement"`
	Workers          int  `yaml:"workers"`
}

func DefaultConfig() *Config {
	return &Config{
		Scenario: "damped-cavity",
		Solver:   DefaultSolver,
		Method:   DefaultMethod,
		NTraj:    DefaultNTraj,
		NSub:     DefaultNSub,
		Duration: DefaultDuration,
		Steps:    DefaultSteps,
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

func (c *Config) Validate() error {
	if c.Duration <= 0 {
		return fmt.Errorf("config: duration must be positive, got %g", c.Duration)
	}
	if c.Steps < 1 {
		return fmt.Errorf("config: steps must be at least 1, got %d", c.Steps)
	}
	return nil
}

// Tlist builds the output grid: Steps intervals spanning Duration.
func (c *Config) Tlist() []float64 {
	dt := c.Duration / float64(c.Steps)
	tlist := make([]float64, c.Steps+1)
	for i := range tlist {
		tlist[i] = float64(i) * dt
	}
	return tlist
}
