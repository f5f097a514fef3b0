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
	"net/url"
	"testing"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMySQLDSN(t *testing.T) {
	cfg := DefaultConnectionConfig()
	cfg.Username = "brewer"
	cfg.Password = "p@ss:word"
	cfg.Host = "db.local"
	cfg.Port = 3306
	cfg.DBName = "beers"

	dsn := mysqlDSN(cfg)
	assert.Contains(t, dsn, "charset=utf8mb4")
	parsed, err := mysql.ParseDSN(dsn)
	require.NoError(t, err)
	assert.Equal(t, "brewer", parsed.User)
	assert.Equal(t, "p@ss:word", parsed.Passwd)
	assert.Equal(t, "tcp", parsed.Net)
	assert.Equal(t, "db.local:3306", parsed.Addr)
	assert.Equal(t, "beers", parsed.DBName)
	assert.True(t, parsed.MultiStatements)
	assert.True(t, parsed.ParseTime)
	assert.Equal(t, 10*time.Second, parsed.Timeout)

	cfg.Charset = "latin1"
	assert.Contains(t, mysqlDSN(cfg), "charset=latin1")
}

func TestPostgresDSN(t *testing.T) {
	cfg := DefaultConnectionConfig()
	cfg.Username = "brewer"
	cfg.Password = "p@ss/word"
	cfg.Host = "db.local"
	cfg.Port = 5432
	cfg.DBName = "beers"

	u, err := url.Parse(postgresDSN(cfg))
	require.NoError(t, err)
	assert.Equal(t, "postgres", u.Scheme)
	assert.Equal(t, "db.local:5432", u.Host)
	assert.Equal(t, "/beers", u.Path)
	password, _ := u.User.Password()
	assert.Equal(t, "p@ss/word", password)
	assert.Equal(t, "disable", u.Query().Get("sslmode"))
	assert.Equal(t, "10", u.Query().Get("connect_timeout"))
}

func TestSQLiteDSN(t *testing.T) {
	assert.Equal(t, "file::memory:?cache=shared", sqliteDSN(&ConnectionConfig{}))
	assert.Equal(t, "file::memory:?cache=shared", sqliteDSN(&ConnectionConfig{DBName: ":memory:"}))
	assert.Equal(t, "beers.db", sqliteDSN(&ConnectionConfig{DBName: "beers"}))
}

func TestManagerDialectBeforeConnect(t *testing.T) {
	tests := map[string]string{
		"mysql":      DialectMySQL,
		"postgres":   DialectPostgres,
		"postgresql": DialectPostgres,
		"sqlite3":    DialectSQLite,
		"oracle":     "",
	}
	for typ, want := range tests {
		assert.Equal(t, want, NewDatabaseManager(&ConnectionConfig{Type: typ}).Dialect(), typ)
	}
}

func TestManagerUnsupportedType(t *testing.T) {
	manager := NewDatabaseManager(&ConnectionConfig{Type: "oracle"})
	err := manager.Connect(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported database type: oracle")
	assert.Nil(t, manager.GetDB())
	assert.False(t, manager.HealthCheck(context.Background()).Healthy)
	assert.Equal(t, &DBStats{}, manager.GetStats())
}

func TestManagerReconnect(t *testing.T) {
	manager := connectMemory(t)
	ctx := context.Background()
	before := manager.GetDB()

	require.NoError(t, manager.Reconnect(ctx))
	assert.NotSame(t, before, manager.GetDB())
	assert.NoError(t, manager.Ping(ctx))

	require.NoError(t, manager.Disconnect())
	assert.Error(t, manager.Ping(ctx))
	assert.NoError(t, manager.Disconnect(), "disconnect is idempotent")
}
