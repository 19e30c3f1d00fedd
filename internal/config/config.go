// Package config loads tool configuration from a YAML file, with .env
// and environment variables layered on top.
package config

import (
	"os"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config drives a scan. All fields are optional; zero values fall back
// to sensible defaults at the point of use.
type Config struct {
	Project struct {
		Root string `yaml:"root"`
	} `yaml:"project"`
	Scan struct {
		// Languages restricts discovery ("python", "go"). Empty means
		// every supported language.
		Languages []string `yaml:"languages"`
		// Ignore names extra directories to skip during discovery.
		Ignore  []string `yaml:"ignore"`
		Workers int      `yaml:"workers"`
	} `yaml:"scan"`
	Storage struct {
		Path string `yaml:"path"`
	} `yaml:"storage"`
}

// Default returns the built-in configuration.
func Default() *Config {
	cfg := &Config{}
	cfg.Project.Root = "."
	cfg.Storage.Path = "migrator.db"
	return cfg
}

// Load reads path if it exists and applies env overrides. A missing
// config file is not an error; everything works from defaults.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	cfg := Default()

	if data, err := os.ReadFile(path); err == nil {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, err
		}
	} else if !os.IsNotExist(err) {
		return nil, err
	}

	if root := os.Getenv("MIGRATOR_ROOT"); root != "" {
		cfg.Project.Root = root
	}
	if db := os.Getenv("MIGRATOR_DB"); db != "" {
		cfg.Storage.Path = db
	}

	if cfg.Project.Root == "" {
		cfg.Project.Root = "."
	}
	if cfg.Storage.Path == "" {
		cfg.Storage.Path = "migrator.db"
	}
	return cfg, nil
}
