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

package database

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func memoryConfig() *ConnectionConfig {
	cfg := DefaultConnectionConfig()
	cfg.Type = "sqlite"
	cfg.DBName = ":memory:"
	cfg.MaxOpenConns = 1
	cfg.MaxIdleConns = 1
	cfg.SlowQueryTime = 0
	return cfg
}

func connectMemory(t *testing.T) AbstractDatabaseManager {
	t.Helper()
	manager := NewDatabaseManager(memoryConfig())
	require.NoError(t, manager.Connect(context.Background()))
	t.Cleanup(func() { _ = manager.Disconnect() })
	return manager
}

func TestManagerSQLite(t *testing.T) {
	manager := connectMemory(t)
	ctx := context.Background()

	assert.Equal(t, DialectSQLite, manager.Dialect())
	assert.NoError(t, manager.Ping(ctx))

	status := manager.HealthCheck(ctx)
	assert.True(t, status.Healthy)
	assert.Equal(t, 1, manager.GetStats().MaxOpenConns)
}

func TestRoutineInstaller(t *testing.T) {
	manager := connectMemory(t)
	ctx := context.Background()

	installer := NewRoutineInstaller(manager.GetDB(), commandRoot)
	scripts, err := installer.Scripts()
	require.NoError(t, err)
	require.Len(t, scripts, 2)
	assert.Equal(t, "01_beers.sql", scripts[0].Name)
	assert.Equal(t, 2, scripts[1].Order)

	results, err := installer.Install(ctx)
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.False(t, results[0].Skipped)
	assert.Equal(t, 3, results[0].Statements)

	var count int
	require.NoError(t, manager.GetDB().NewRaw("SELECT count(*) FROM beers").Scan(ctx, &count))
	assert.Equal(t, 2, count)

	results, err = installer.Install(ctx)
	require.NoError(t, err)
	for _, r := range results {
		assert.True(t, r.Skipped, r.File)
	}
	require.NoError(t, manager.GetDB().NewRaw("SELECT count(*) FROM beers").Scan(ctx, &count))
	assert.Equal(t, 2, count, "unchanged scripts are not applied twice")
}

func TestRoutineInstallerMissingDir(t *testing.T) {
	manager := connectMemory(t)
	results, err := NewRoutineInstaller(manager.GetDB(), t.TempDir()).Install(context.Background())
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestManagerLoadCommands(t *testing.T) {
	manager := connectMemory(t)
	set, err := manager.LoadCommands(commandRoot)
	require.NoError(t, err)
	cmd, ok := set.Lookup("findBeers_2")
	require.True(t, ok)
	assert.Equal(t, DialectSQLite, cmd.Source)
}

func TestParseScriptOrder(t *testing.T) {
	assert.Equal(t, 1, parseScriptOrder("01_beers.sql"))
	assert.Equal(t, 120, parseScriptOrder("120_views.sql"))
	assert.Equal(t, 999, parseScriptOrder("beers.sql"))
}
