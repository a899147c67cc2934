package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

type EngineConfig struct {
	Version int `yaml:"version"`
	Engine  struct {
		ID                 string  `yaml:"id"`
		Name               string  `yaml:"name"`
		TickHz             int     `yaml:"tick_hz"`
		TimeScale          float64 `yaml:"time_scale"`
		SkipStepMultiplier int     `yaml:"skip_step_multiplier"`
	} `yaml:"engine"`
	Network struct {
		UIPort   int `yaml:"ui_port"`
		MQTTPort int `yaml:"mqtt_port"`
		DBPort   int `yaml:"db_port"`
	} `yaml:"network"`
	Assets struct {
		Dir string `yaml:"dir"`
	} `yaml:"assets"`
}

// UIPort returns the configured UI port, defaulting to 8080 if not set.
func (c *EngineConfig) UIPort() int {
	if c.Network.UIPort == 0 {
		return 8080
	}
	return c.Network.UIPort
}

// TickHz returns the configured frame rate, defaulting to 30 if not set.
func (c *EngineConfig) TickHz() int {
	if c.Engine.TickHz == 0 {
		return 30
	}
	return c.Engine.TickHz
}

// SkipStepMultiplier returns the runaway-skip guard multiplier.
// The skip walk aborts after multiplier * actionCount steps.
func (c *EngineConfig) SkipStepMultiplier() int {
	if c.Engine.SkipStepMultiplier <= 0 {
		return 3
	}
	return c.Engine.SkipStepMultiplier
}

// CueChannel declares a show-control channel and the signals it accepts.
type CueChannel struct {
	Topic   string   `yaml:"topic"`
	Signals []string `yaml:"signals"`
}

type CuesConfig struct {
	Version  int                   `yaml:"version"`
	Channels map[string]CueChannel `yaml:"channels"`
}

func LoadEngineConfig(path string) (*EngineConfig, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg EngineConfig
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return nil, err
	}

	if cfg.Version != 1 {
		return nil, fmt.Errorf("unsupported engine.yaml version: %d", cfg.Version)
	}

	return &cfg, nil
}

func LoadCuesConfig(path string) (*CuesConfig, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg CuesConfig
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return nil, err
	}

	if cfg.Version != 1 {
		return nil, fmt.Errorf("unsupported cues.yaml version: %d", cfg.Version)
	}

	return &cfg, nil
}
