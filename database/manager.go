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
	"database/sql"
	"fmt"
	"net"
	"net/url"
	"strconv"
	"sync"
	"time"

	"github.com/go-sql-driver/mysql"
	_ "github.com/lib/pq"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/mysqldialect"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"
	"github.com/uptrace/bun/extra/bundebug"
	"github.com/uptrace/bun/schema"
)

const defaultConnectTimeout = 30 * time.Second

// driver describes how one configured database type is opened.
type driver struct {
	name       string
	dialect    string
	dsn        func(cfg *ConnectionConfig) string
	newDialect func() schema.Dialect
}

var drivers = map[string]driver{
	"mysql": {
		name:       "mysql",
		dialect:    DialectMySQL,
		dsn:        mysqlDSN,
		newDialect: func() schema.Dialect { return mysqldialect.New() },
	},
	"postgres": {
		name:       "postgres",
		dialect:    DialectPostgres,
		dsn:        postgresDSN,
		newDialect: func() schema.Dialect { return pgdialect.New() },
	},
	"sqlite": {
		name:       sqliteshim.ShimName,
		dialect:    DialectSQLite,
		dsn:        sqliteDSN,
		newDialect: func() schema.Dialect { return sqlitedialect.New() },
	},
}

func driverFor(typ string) (driver, bool) {
	switch typ {
	case "postgresql":
		typ = "postgres"
	case "sqlite3":
		typ = "sqlite"
	}
	d, ok := drivers[typ]
	return d, ok
}

// mysqlDSN enables multi-statement execution for routine scripts and
// parses DATETIME columns into time.Time.
func mysqlDSN(cfg *ConnectionConfig) string {
	charset := cfg.Charset
	if charset == "" {
		charset = "utf8mb4"
	}
	c := mysql.NewConfig()
	c.User = cfg.Username
	c.Passwd = cfg.Password
	c.Net = "tcp"
	c.Addr = net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port))
	c.DBName = cfg.DBName
	c.Loc = time.Local
	c.ParseTime = true
	c.MultiStatements = true
	c.Timeout = cfg.ConnectTimeout
	c.ReadTimeout = cfg.ReadTimeout
	c.WriteTimeout = cfg.WriteTimeout
	// Charset never fails.
	_ = c.Apply(mysql.Charset(charset, ""))
	return c.FormatDSN()
}

func postgresDSN(cfg *ConnectionConfig) string {
	sslMode := cfg.SSLMode
	if sslMode == "" {
		sslMode = "disable"
	}
	q := url.Values{}
	q.Set("sslmode", sslMode)
	q.Set("connect_timeout", strconv.Itoa(int(cfg.ConnectTimeout.Seconds())))
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(cfg.Username, cfg.Password),
		Host:     net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port)),
		Path:     "/" + cfg.DBName,
		RawQuery: q.Encode(),
	}
	return u.String()
}

// sqliteDSN maps an empty name or ":memory:" to a shared in-memory database
// so that every pooled connection sees the same schema.
func sqliteDSN(cfg *ConnectionConfig) string {
	if cfg.DBName == "" || cfg.DBName == ":memory:" {
		return "file::memory:?cache=shared"
	}
	return cfg.DBName + ".db"
}

type defaultDatabaseManager struct {
	config    *ConnectionConfig
	db        *bun.DB
	sqlDB     *sql.DB
	logger    Logger
	mu        sync.RWMutex
	connected bool
	lastError error
}

// NewDatabaseManager returns an AbstractDatabaseManager backed by Bun.
// If config is nil, a sensible default configuration is used.
func NewDatabaseManager(config *ConnectionConfig) AbstractDatabaseManager {
	if config == nil {
		config = DefaultConnectionConfig()
	}
	return &defaultDatabaseManager{config: config}
}

func (dm *defaultDatabaseManager) Connect(ctx context.Context) error {
	dm.mu.Lock()
	defer dm.mu.Unlock()

	if dm.connected && dm.db != nil {
		return nil
	}

	var err error
	dm.sqlDB, dm.db, err = dm.open()
	if err != nil {
		dm.lastError = err
		return fmt.Errorf("failed to create database connection: %w", err)
	}

	ctxTimeout, cancel := context.WithTimeout(ctx, dm.config.ConnectTimeout)
	defer cancel()

	if err := dm.db.PingContext(ctxTimeout); err != nil {
		dm.lastError = err
		_ = dm.db.Close()
		dm.db, dm.sqlDB = nil, nil
		return fmt.Errorf("database connection test failed: %w", err)
	}

	dm.connected = true
	dm.lastError = nil
	if dm.logger != nil {
		dm.logger.Info("Database connected", "type", dm.config.Type, "dialect", DialectOf(dm.db))
	}
	return nil
}

func (dm *defaultDatabaseManager) open() (*sql.DB, *bun.DB, error) {
	d, ok := driverFor(dm.config.Type)
	if !ok {
		return nil, nil, fmt.Errorf("unsupported database type: %s", dm.config.Type)
	}
	if dm.config.ConnectTimeout <= 0 {
		dm.config.ConnectTimeout = defaultConnectTimeout
	}

	sqlDB, err := sql.Open(d.name, d.dsn(dm.config))
	if err != nil {
		return nil, nil, err
	}
	sqlDB.SetMaxIdleConns(dm.config.MaxIdleConns)
	sqlDB.SetMaxOpenConns(dm.config.MaxOpenConns)
	sqlDB.SetConnMaxLifetime(dm.config.ConnMaxLifetime)
	sqlDB.SetConnMaxIdleTime(dm.config.ConnMaxIdleTime)

	db := bun.NewDB(sqlDB, d.newDialect())
	db.AddQueryHook(bundebug.NewQueryHook(
		bundebug.WithEnabled(false),
		bundebug.FromEnv("BUNDEBUG"),
	))
	if dm.config.EnableQueryLog {
		db.AddQueryHook(NewQueryHook(WithQueryLogEnabled(true), WithQueryLogEnv("REPOPROXY_SQL_LOG")))
	}
	if dm.config.SlowQueryTime > 0 {
		db.AddQueryHook(NewSlowQueryHook(dm.config.SlowQueryTime, dm.logger))
	}
	return sqlDB, db, nil
}

func (dm *defaultDatabaseManager) Disconnect() error {
	dm.mu.Lock()
	defer dm.mu.Unlock()

	if dm.db == nil {
		return nil
	}
	err := dm.db.Close()
	dm.db = nil
	dm.sqlDB = nil
	dm.connected = false

	if dm.logger != nil {
		if err != nil {
			dm.logger.Error("Failed to close database connection", "error", err)
		} else {
			dm.logger.Info("Database connection closed")
		}
	}
	return err
}

// Reconnect drops the current pool and connects again. A shared in-memory
// SQLite database does not survive it.
func (dm *defaultDatabaseManager) Reconnect(ctx context.Context) error {
	if err := dm.Disconnect(); err != nil && dm.logger != nil {
		dm.logger.Warn("Error disconnecting existing connection", "error", err)
	}
	return dm.Connect(ctx)
}

func (dm *defaultDatabaseManager) Ping(ctx context.Context) error {
	db := dm.GetDB()
	if db == nil {
		return fmt.Errorf("database not connected")
	}
	return db.PingContext(ctx)
}

func (dm *defaultDatabaseManager) GetDB() *bun.DB {
	dm.mu.RLock()
	defer dm.mu.RUnlock()
	return dm.db
}

func (dm *defaultDatabaseManager) GetSQLDB() *sql.DB {
	dm.mu.RLock()
	defer dm.mu.RUnlock()
	return dm.sqlDB
}

func (dm *defaultDatabaseManager) HealthCheck(ctx context.Context) *HealthStatus {
	dm.mu.Lock()
	defer dm.mu.Unlock()

	start := time.Now()
	status := &HealthStatus{LastCheckTime: start, Connected: dm.connected}
	if dm.db == nil {
		status.LastError = "Database not initialized"
		return status
	}

	ctxTimeout, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	err := dm.db.PingContext(ctxTimeout)
	status.ResponseTime = time.Since(start)
	status.Healthy = err == nil
	status.Connected = err == nil
	dm.lastError = err
	if err != nil {
		status.LastError = err.Error()
	}

	stats := dm.sqlDB.Stats()
	status.ActiveConns = stats.InUse
	status.IdleConns = stats.Idle
	status.MaxOpenConns = stats.MaxOpenConnections
	return status
}

func (dm *defaultDatabaseManager) GetStats() *DBStats {
	sqlDB := dm.GetSQLDB()
	if sqlDB == nil {
		return &DBStats{}
	}
	stats := sqlDB.Stats()
	return &DBStats{
		MaxOpenConns:      stats.MaxOpenConnections,
		OpenConns:         stats.OpenConnections,
		InUse:             stats.InUse,
		Idle:              stats.Idle,
		WaitCount:         stats.WaitCount,
		WaitDuration:      stats.WaitDuration,
		MaxIdleClosed:     stats.MaxIdleClosed,
		MaxIdleTimeClosed: stats.MaxIdleTimeClosed,
		MaxLifetimeClosed: stats.MaxLifetimeClosed,
	}
}

// Dialect returns the command directory name for the connected dialect, or
// for the configured type before Connect.
func (dm *defaultDatabaseManager) Dialect() string {
	if db := dm.GetDB(); db != nil {
		return DialectOf(db)
	}
	if d, ok := driverFor(dm.config.Type); ok {
		return d.dialect
	}
	return ""
}

func (dm *defaultDatabaseManager) InstallRoutines(ctx context.Context, root string) error {
	db := dm.GetDB()
	if db == nil {
		return fmt.Errorf("database not initialized")
	}
	installer := NewRoutineInstaller(db, root)
	if dm.logger != nil {
		installer.SetLogger(dm.logger)
	}
	_, err := installer.Install(ctx)
	return err
}

func (dm *defaultDatabaseManager) LoadCommands(root string) (*CommandSet, error) {
	set, err := LoadCommandSet(root, dm.Dialect())
	if err != nil {
		return nil, err
	}
	if dm.logger != nil {
		dm.logger.Debug("Command set loaded", "root", root, "dialect", set.Dialect(), "commands", set.Len())
	}
	return set, nil
}

func (dm *defaultDatabaseManager) SetLogger(logger Logger) {
	dm.mu.Lock()
	defer dm.mu.Unlock()
	dm.logger = logger
}
