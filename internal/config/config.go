package config

import (
	"os"

	"gopkg.in/yaml.v3"
)

// Config is the engine configuration loaded from YAML. Zero values mean
// "engine default": info logging, adapter-chosen power preference, and
// the built-in command batch size.
type Config struct {
	Logger struct {
		Verbosity string `yaml:"verbosity"`
	} `yaml:"logger"`
	GPU struct {
		PowerPreference string `yaml:"powerPreference"` // "", "high-performance" or "low-power"
		MaxBatchSize    int    `yaml:"maxBatchSize"`
	} `yaml:"gpu"`
}

func Default() *Config {
	var c Config
	c.Logger.Verbosity = "info"
	return &c
}

func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	config := Default()
	err = yaml.Unmarshal(data, config)
	if err != nil {
		return nil, err
	}

	return config, nil
}
