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
	"fmt"
	"sync"

	"github.com/uptrace/bun"

	"github.com/tomoncle/repoproxy/catalog"
	"github.com/tomoncle/repoproxy/config"
	"github.com/tomoncle/repoproxy/database"
	"github.com/tomoncle/repoproxy/dispatch"
	"github.com/tomoncle/repoproxy/proxy"
	"github.com/tomoncle/repoproxy/repository"
	"github.com/tomoncle/repoproxy/utils"
)

var log = utils.NewLogger("REPOPROXY")

// LoadCatalog reads the interface declarations selected by cfg and returns
// them with the marker to scan for. A catalog file's own marker applies only
// when cfg names none. Declarations loaded from Go packages carry qualified
// IDs, so the bare default marker is replaced by repository.MarkerID.
func LoadCatalog(ctx context.Context, cfg config.ProxyConfig) ([]catalog.Interface, string, error) {
	marker := cfg.Marker
	if cfg.Catalog != "" {
		f, err := catalog.LoadFile(cfg.Catalog)
		if err != nil {
			return nil, "", err
		}
		if marker == "" {
			marker = f.Marker
		}
		return f.Interfaces, marker, nil
	}

	patterns := cfg.Packages
	if len(patterns) == 0 {
		patterns = []string{"./..."}
	}
	decls, err := catalog.LoadPackages(ctx, cfg.PackageDir, patterns...)
	if err != nil {
		return nil, "", err
	}
	if marker == "" || marker == catalog.DefaultMarker {
		marker = repository.MarkerID
	}
	return decls, marker, nil
}

var (
	initMu   sync.Mutex
	initDone bool
	initErr  error
)

// Init configures logging, runs the process-wide synthesis pass over the
// configured catalog and, when cfg has a database section, opens the global
// database with its command set. Only the first call does any work; later
// calls return its result.
func Init(ctx context.Context, cfg *config.Config) error {
	initMu.Lock()
	defer initMu.Unlock()
	if initDone {
		return initErr
	}
	initErr = initialize(ctx, cfg)
	initDone = true
	return initErr
}

func initialize(ctx context.Context, cfg *config.Config) error {
	if cfg == nil {
		return fmt.Errorf("repoproxy: configuration cannot be empty")
	}
	if cfg.Log.Format != "" {
		utils.ConfigureConsoleLogFormat(cfg.Log.Format)
	}
	if cfg.Log.Level != "" {
		utils.ConfigureLogLevel(cfg.Log.Level)
	}

	decls, marker, err := LoadCatalog(ctx, cfg.Proxy)
	if err != nil {
		return fmt.Errorf("repoproxy: load catalog: %w", err)
	}
	reg, err := proxy.Init(decls, cfg.Proxy.VersionSuffix, proxy.WithMarker(marker))
	if err != nil {
		return err
	}
	log.WithFields(utils.FieldsOf("proxies", reg.Len(), "suffix", cfg.Proxy.VersionSuffix)).Info("Repository proxies ready")

	if dbCfg := cfg.ConfigLoader(); dbCfg != nil {
		if _, err := database.InitDBContext(ctx, dbCfg); err != nil {
			return err
		}
	}
	return nil
}

// Close releases the global database. The proxy registry stays published.
func Close() error {
	return database.CloseDB()
}

// AsVersioned returns the dispatch proxy synthesized for interfaceName, running
// its commands on db with the global command set. A nil db selects the global
// database.
func AsVersioned(db bun.IDB, interfaceName string) (*dispatch.Proxy, error) {
	exec, err := executor(db)
	if err != nil {
		return nil, err
	}
	return dispatch.For(proxy.Default(), interfaceName, exec)
}

// AsVersionedRepo is AsVersioned for the repository interface type R.
func AsVersionedRepo[R any](db bun.IDB) (*dispatch.Proxy, error) {
	exec, err := executor(db)
	if err != nil {
		return nil, err
	}
	return dispatch.ForType[R](proxy.Default(), exec)
}

func executor(db bun.IDB) (*dispatch.BunExecutor, error) {
	if db == nil {
		// A nil *bun.DB stored in the interface would not compare equal to nil.
		global := database.GetDB()
		if global == nil {
			return nil, fmt.Errorf("repoproxy: database not initialized")
		}
		db = global
	}
	return dispatch.NewBunExecutor(db, database.GetCommands()), nil
}
