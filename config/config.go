package config

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/kilianp07/chargeinfra/core/metrics"
	"github.com/kilianp07/chargeinfra/infra/mqtt"
)

// Config is the application configuration.
type Config struct {
	Logging        LoggingConfig        `json:"logging"`
	Infrastructure InfrastructureConfig `json:"infrastructure"`
	Simulation     SimulationConfig     `json:"simulation"`
	Metrics        metrics.Config       `json:"metrics"`
	// MQTT enables the state publisher when set.
	MQTT *mqtt.Config `json:"mqtt"`
}

// Load reads a YAML or JSON file. Environment variables prefixed with K_
// override file values, with "__" separating nested keys
// (K_SIMULATION__STEPS=8).
func Load(path string) (*Config, error) {
	k := koanf.New(".")
	ext := strings.ToLower(filepath.Ext(path))
	var parser koanf.Parser
	switch ext {
	case ".yaml", ".yml":
		parser = yaml.Parser()
	case ".json":
		parser = json.Parser()
	default:
		return nil, fmt.Errorf("unsupported config format: %s", ext)
	}
	if err := k.Load(file.Provider(path), parser); err != nil {
		return nil, err
	}
	// Optional environment overrides. The callback maps "__" to the koanf
	// delimiter so K_SIMULATION__STEPS lands on simulation.steps.
	if err := k.Load(env.Provider("K_", ".", func(s string) string {
		s = strings.TrimPrefix(strings.ToLower(s), "k_")
		return strings.ReplaceAll(s, "__", ".")
	}), nil); err != nil {
		return nil, err
	}
	var cfg Config
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "json"}); err != nil {
		return nil, err
	}
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// SetDefaults applies the defaults of every section.
func (c *Config) SetDefaults() {
	c.Logging.SetDefaults()
	c.Infrastructure.SetDefaults()
	c.Simulation.SetDefaults()
	if c.MQTT != nil {
		c.MQTT.SetDefaults()
	}
}

// Validate checks every section.
func (c Config) Validate() error {
	if err := c.Logging.Validate(); err != nil {
		return fmt.Errorf("logging: %w", err)
	}
	if err := c.Infrastructure.Validate(); err != nil {
		return fmt.Errorf("infrastructure: %w", err)
	}
	if err := c.Simulation.Validate(); err != nil {
		return fmt.Errorf("simulation: %w", err)
	}
	for i, s := range c.Metrics.Sinks {
		if s.Type == "" {
			return fmt.Errorf("metrics: sink %d has no type", i)
		}
	}
	if c.MQTT != nil {
		if err := c.MQTT.Validate(); err != nil {
			return err
		}
	}
	return nil
}
