/*
 * Copyright 2025 tomoncle.
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
 */

// Package config loads repoproxy settings from YAML or TOML files with
// environment overrides.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/tomoncle/repoproxy/catalog"
	"github.com/tomoncle/repoproxy/database"
	"github.com/tomoncle/repoproxy/proxy"
)

// ProxyConfig selects the catalog and the naming rules of a synthesis pass.
type ProxyConfig struct {
	VersionSuffix string `json:"version_suffix" yaml:"version_suffix" toml:"version_suffix"`
	Marker        string `json:"marker" yaml:"marker" toml:"marker"`
	// Catalog is a YAML or TOML catalog file. When empty, the catalog is read
	// from the Go packages matching Packages under PackageDir.
	Catalog    string   `json:"catalog" yaml:"catalog" toml:"catalog"`
	Packages   []string `json:"packages" yaml:"packages" toml:"packages"`
	PackageDir string   `json:"package_dir" yaml:"package_dir" toml:"package_dir"`
}

type LogConfig struct {
	Level  string `json:"level" yaml:"level" toml:"level"`
	Format string `json:"format" yaml:"format" toml:"format"` // text, json
}

// Config is the top-level configuration document. A nil Database disables
// the database layer.
type Config struct {
	Proxy    ProxyConfig      `json:"proxy" yaml:"proxy" toml:"proxy"`
	Database *database.Config `json:"database,omitempty" yaml:"database,omitempty" toml:"database,omitempty"`
	Log      LogConfig        `json:"log" yaml:"log" toml:"log"`
}

// Default returns a config with the default suffix and marker and no database.
func Default() *Config {
	return &Config{
		Proxy: ProxyConfig{
			VersionSuffix: proxy.DefaultVersionSuffix,
			Marker:        catalog.DefaultMarker,
		},
		Log: LogConfig{Level: "info", Format: "text"},
	}
}

// Load reads path, choosing the decoder by extension (".toml" or YAML
// otherwise), then applies environment overrides and defaults. An empty path
// yields the defaults with overrides applied.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		if err := decodeFile(path, cfg); err != nil {
			return nil, err
		}
	}
	overrideFromEnv(cfg)
	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func decodeFile(path string, cfg *Config) error {
	if strings.EqualFold(filepath.Ext(path), ".toml") {
		if _, err := toml.DecodeFile(path, cfg); err != nil {
			return fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
		return nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return nil
}

func overrideFromEnv(cfg *Config) {
	// An empty suffix is a valid setting, so presence is what counts.
	if suffix, ok := os.LookupEnv("REPOPROXY_VERSION_SUFFIX"); ok {
		cfg.Proxy.VersionSuffix = suffix
	}
	if marker := os.Getenv("REPOPROXY_MARKER"); marker != "" {
		cfg.Proxy.Marker = marker
	}
	if path := os.Getenv("REPOPROXY_CATALOG"); path != "" {
		cfg.Proxy.Catalog = path
	}
	if level := os.Getenv("LOG_LEVEL"); level != "" {
		cfg.Log.Level = level
	}
	if format := os.Getenv("CONSOLE_LOG_FORMAT"); format != "" {
		cfg.Log.Format = format
	}
}

func (c *Config) applyDefaults() {
	if c.Proxy.Marker == "" {
		c.Proxy.Marker = catalog.DefaultMarker
	}
	if c.Proxy.PackageDir == "" {
		c.Proxy.PackageDir = "."
	}
	if c.Proxy.Catalog == "" && len(c.Proxy.Packages) == 0 {
		c.Proxy.Packages = []string{"./..."}
	}
}

// Validate reports settings that cannot be used together.
func (c *Config) Validate() error {
	if c.Proxy.Catalog != "" && len(c.Proxy.Packages) > 0 {
		return fmt.Errorf("config: proxy.catalog and proxy.packages are mutually exclusive")
	}
	if c.Database != nil && c.Database.ConnectionConfig.Type == "" {
		return fmt.Errorf("config: database.connection_config.type is required")
	}
	return nil
}

// ConfigLoader returns the database settings, or nil when the database layer
// is disabled.
func (c *Config) ConfigLoader() *database.Config {
	return c.Database
}
