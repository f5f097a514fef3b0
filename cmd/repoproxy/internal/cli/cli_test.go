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

package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const beerCatalog = "../../../../testdata/catalog.yaml"

func run(t *testing.T, cfg Config) (string, error) {
	t.Helper()
	var out bytes.Buffer
	err := Run(context.Background(), cfg, &out)
	return out.String(), err
}

func TestInspectYAML(t *testing.T) {
	out, err := run(t, Config{Command: "inspect", Catalog: beerCatalog})
	require.NoError(t, err)
	assert.Contains(t, out, "proxy_name: BeerRepository_Proxy")
	assert.Contains(t, out, "versioned_command_name: findBeers_2")
	assert.Contains(t, out, "source_interface: BeerRepository")
}

func TestInspectJSON(t *testing.T) {
	out, err := run(t, Config{Command: "inspect", Catalog: beerCatalog, Format: "json", Suffix: "_v3", SuffixSet: true})
	require.NoError(t, err)

	var descs []struct {
		ProxyName string `json:"proxy_name"`
		Methods   []struct {
			VersionedCommandName string `json:"versioned_command_name"`
		} `json:"methods"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &descs))
	require.Len(t, descs, 1)
	assert.Equal(t, "BeerRepository_Proxy", descs[0].ProxyName)
	require.NotEmpty(t, descs[0].Methods)
	for _, m := range descs[0].Methods {
		assert.Regexp(t, `_v3$`, m.VersionedCommandName)
	}
}

func TestGenerate(t *testing.T) {
	path := filepath.Join(t.TempDir(), "beers_proxy.go")
	out, err := run(t, Config{
		Command:     "generate",
		Catalog:     beerCatalog,
		Output:      path,
		PackagePath: "example.com/beers",
	})
	require.NoError(t, err)
	assert.Contains(t, out, "wrote 1 proxies")

	src, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(src), "package beers")
	assert.Contains(t, string(src), "func (r *BeerRepositoryProxy) countBeers(ctx context.Context) (int, error) {")
}

func TestRunErrors(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
		want string
	}{
		{"unknown command", Config{Command: "serve", Catalog: beerCatalog}, "unknown command"},
		{"unknown format", Config{Command: "inspect", Catalog: beerCatalog, Format: "xml"}, "unknown format"},
		{"generate without pkgpath", Config{Command: "generate", Catalog: beerCatalog}, "-pkgpath is required"},
		{"missing catalog", Config{Command: "inspect", Catalog: "missing.yaml"}, "failed to read catalog file"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := run(t, tt.cfg)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}
