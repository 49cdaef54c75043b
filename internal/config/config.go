// Package config loads the REPL's YAML configuration file, in the same
// style as pkg/schema's SchemaLoader (gopkg.in/yaml.v3).
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config controls the REPL's ambient behavior: logging, prompt text, and
// the statement-duration threshold that feeds the stats alert manager.
type Config struct {
	LogLevel        string `yaml:"log_level"`
	Prompt          string `yaml:"prompt"`
	SlowStatementMS int64  `yaml:"slow_statement_ms"`
	SchemaDumpPath  string `yaml:"schema_dump_path"`
}

// Default returns the configuration used when no file is supplied.
func Default() *Config {
	return &Config{
		LogLevel:        "info",
		Prompt:          "relstore> ",
		SlowStatementMS: 50,
	}
}

// Load reads and parses a YAML config file, filling in defaults for any
// field the file omits.
func Load(path string) (*Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: reading %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: parsing %s: %w", path, err)
	}
	return cfg, nil
}
