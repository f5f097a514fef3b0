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

package repoproxy

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tomoncle/repoproxy/config"
	"github.com/tomoncle/repoproxy/database"
	"github.com/tomoncle/repoproxy/dispatch"
	"github.com/tomoncle/repoproxy/proxy"
)

type Beer struct {
	ID    int64  `bun:"id,pk,autoincrement"`
	Name  string `bun:"name"`
	Style string `bun:"style"`
}

type BeerRepository interface {
	FindBeers(ctx context.Context, name string) ([]Beer, error)
}

func reset(t *testing.T) {
	t.Helper()
	resetInit := func() {
		_ = Close()
		proxy.ResetDefault()
		initMu.Lock()
		initDone, initErr = false, nil
		initMu.Unlock()
	}
	resetInit()
	t.Cleanup(resetInit)
}

func sqliteConfig() *config.Config {
	conn := database.DefaultConnectionConfig()
	conn.Type = "sqlite"
	conn.DBName = ":memory:"
	conn.MaxOpenConns = 1
	conn.MaxIdleConns = 1
	conn.SlowQueryTime = 0

	cfg := config.Default()
	cfg.Proxy.Catalog = "testdata/catalog.yaml"
	cfg.Database = &database.Config{
		ConnectionConfig: *conn,
		CommandConfig: database.CommandConfig{
			Path:                     "testdata/commands",
			InstallRoutinesOnStartup: true,
		},
	}
	return cfg
}

func TestInitAndDispatch(t *testing.T) {
	reset(t)
	ctx := context.Background()
	require.NoError(t, Init(ctx, sqliteConfig()))

	p, err := AsVersioned(nil, "BeerRepository")
	require.NoError(t, err)
	assert.Equal(t, "BeerRepository_Proxy", p.Name())

	require.NoError(t, dispatch.Exec(ctx, p, "addBeer", dispatch.Args{"style": "Dubbel", "name": "Westmalle"}))

	beers, err := dispatch.Query[Beer](ctx, p, "findBeers", dispatch.Args{"name": "Westmalle"})
	require.NoError(t, err)
	require.Len(t, beers, 2)
	assert.Equal(t, "Tripel", beers[0].Style)
	assert.Equal(t, "Dubbel", beers[1].Style)

	count, err := dispatch.QueryOne[int](ctx, p, "countBeers", nil)
	require.NoError(t, err)
	assert.Equal(t, 3, count)
}

func TestAsVersionedRepo(t *testing.T) {
	reset(t)
	require.NoError(t, Init(context.Background(), sqliteConfig()))

	p, err := AsVersionedRepo[BeerRepository](database.GetDB())
	require.NoError(t, err)
	assert.Equal(t, "BeerRepository", p.Descriptor().Interface)
}

func TestInitWithoutDatabase(t *testing.T) {
	reset(t)
	cfg := config.Default()
	cfg.Proxy.Catalog = "testdata/catalog.yaml"
	require.NoError(t, Init(context.Background(), cfg))

	assert.Equal(t, proxy.StateReady, proxy.Default().State())
	_, err := AsVersioned(nil, "BeerRepository")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "database not initialized")
}

func TestInitRunsOnce(t *testing.T) {
	reset(t)
	bad := config.Default()
	bad.Proxy.Catalog = "testdata/missing.yaml"
	err := Init(context.Background(), bad)
	require.Error(t, err)

	good := config.Default()
	good.Proxy.Catalog = "testdata/catalog.yaml"
	assert.Equal(t, err, Init(context.Background(), good), "later calls return the first result")
}

func TestAsVersionedBeforeInit(t *testing.T) {
	reset(t)
	_, err := AsVersioned(nil, "BeerRepository")
	require.Error(t, err)
}
