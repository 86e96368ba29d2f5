/*
 *
 * Copyright 2025 gRPC authors.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 *
 */

// Package config provides configuration loading for msgpipe-inspect.
//
// Configuration is loaded from a single YAML file named by --config or the
// MSGPIPE_CONFIG environment variable. There are no other fallbacks or
// automatic discovery: a run with no file given uses Default() outright.
package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config is the configuration for msgpipe-inspect.
type Config struct {
	// Channel is the default channel name to inspect when --channel is not
	// passed on the command line.
	Channel string `yaml:"channel"`

	// WindowSize overrides the OS page size used when opening a channel.
	// Zero means "use the OS page size".
	WindowSize int `yaml:"window_size"`

	// LogLevel is one of "debug", "info", "warn", "error".
	LogLevel string `yaml:"log_level"`
}

// Default returns the configuration used when no file is loaded. These
// exist to give every field a sensible zero value, not as a substitute for
// passing --channel.
func Default() *Config {
	return &Config{
		LogLevel: "info",
	}
}

// Load reads and parses the YAML file at path, starting from Default() so
// any field the file omits keeps its default value.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: parsing %q: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: %q: %w", path, err)
	}
	return cfg, nil
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	var errs []error

	if c.WindowSize < 0 {
		errs = append(errs, fmt.Errorf("window_size must not be negative, got %d", c.WindowSize))
	}

	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, fmt.Errorf("log_level must be one of debug, info, warn, error, got %q", c.LogLevel))
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}
