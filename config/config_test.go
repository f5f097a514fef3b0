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

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{"REPOPROXY_VERSION_SUFFIX", "REPOPROXY_MARKER", "REPOPROXY_CATALOG", "LOG_LEVEL", "CONSOLE_LOG_FORMAT"} {
		if value, ok := os.LookupEnv(key); ok {
			require.NoError(t, os.Unsetenv(key))
			t.Cleanup(func() { _ = os.Setenv(key, value) })
		}
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "_2", cfg.Proxy.VersionSuffix)
	assert.Equal(t, "Repository", cfg.Proxy.Marker)
	assert.Equal(t, []string{"./..."}, cfg.Proxy.Packages)
	assert.Equal(t, ".", cfg.Proxy.PackageDir)
	assert.Nil(t, cfg.Database)
}

func TestLoadYAML(t *testing.T) {
	clearEnv(t)
	cfg, err := Load("testdata/repoproxy.yaml")
	require.NoError(t, err)

	assert.Equal(t, "_v3", cfg.Proxy.VersionSuffix)
	assert.Equal(t, "Repository", cfg.Proxy.Marker)
	assert.Equal(t, "catalog.yaml", cfg.Proxy.Catalog)
	assert.Empty(t, cfg.Proxy.Packages)
	assert.Equal(t, "debug", cfg.Log.Level)

	require.NotNil(t, cfg.Database)
	assert.Equal(t, "sqlite", cfg.Database.ConnectionConfig.Type)
	assert.Equal(t, ":memory:", cfg.Database.ConnectionConfig.DBName)
	assert.Equal(t, 1, cfg.Database.ConnectionConfig.MaxOpenConns)
	assert.Equal(t, 500*time.Millisecond, cfg.Database.ConnectionConfig.SlowQueryTime)
	assert.Equal(t, "commands", cfg.Database.CommandConfig.Path)
	assert.True(t, cfg.Database.CommandConfig.InstallRoutinesOnStartup)
}

func TestLoadTOML(t *testing.T) {
	clearEnv(t)
	cfg, err := Load("testdata/repoproxy.toml")
	require.NoError(t, err)
	assert.Equal(t, "_2", cfg.Proxy.VersionSuffix)
	assert.Equal(t, "Repo", cfg.Proxy.Marker)
	assert.Equal(t, []string{"./repos/..."}, cfg.Proxy.Packages)
	assert.Equal(t, "app", cfg.Proxy.PackageDir)
	assert.Equal(t, "json", cfg.Log.Format)
}

func TestLoadEnvOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("REPOPROXY_VERSION_SUFFIX", "")
	t.Setenv("REPOPROXY_MARKER", "Store")
	t.Setenv("REPOPROXY_CATALOG", "other.toml")

	cfg, err := Load("testdata/repoproxy.yaml")
	require.NoError(t, err)
	assert.Equal(t, "", cfg.Proxy.VersionSuffix, "an empty suffix is kept")
	assert.Equal(t, "Store", cfg.Proxy.Marker)
	assert.Equal(t, "other.toml", cfg.Proxy.Catalog)
}

func TestLoadErrors(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	write := func(name, content string) string {
		path := filepath.Join(dir, name)
		require.NoError(t, os.WriteFile(path, []byte(content), 0644))
		return path
	}

	tests := []struct {
		name string
		path string
		want string
	}{
		{"missing file", filepath.Join(dir, "absent.yaml"), "failed to read config file"},
		{"bad yaml", write("bad.yaml", "proxy: [\n"), "failed to parse config file"},
		{"bad toml", write("bad.toml", "[proxy\n"), "failed to parse config file"},
		{"catalog and packages", write("both.yaml", "proxy:\n  catalog: c.yaml\n  packages: [./...]\n"), "mutually exclusive"},
		{"database without type", write("db.yaml", "database:\n  connection_config:\n    host: localhost\n"), "type is required"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(tt.path)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}
