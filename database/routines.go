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
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/uptrace/bun"
)

var scriptOrderPattern = regexp.MustCompile(`^(\d+)_`)

// InstalledRoutine records a routine script applied to the database. A
// script is applied again only when its checksum changes.
type InstalledRoutine struct {
	bun.BaseModel `bun:"table:repoproxy_routines"`

	Name      string    `bun:"name,pk"`
	Checksum  string    `bun:"checksum,notnull"`
	AppliedAt time.Time `bun:"applied_at,notnull"`
}

// RoutineInstaller runs the scripts that create the stored procedures and
// functions versioned commands call, in file order, one transaction per file.
type RoutineInstaller struct {
	db     *bun.DB
	dir    string
	logger Logger
}

// ScriptInfo describes a routine script to be executed.
type ScriptInfo struct {
	Path  string
	Name  string
	Order int
}

// ExecutionResult contains the outcome of executing a single script.
type ExecutionResult struct {
	File         string
	Success      bool
	Error        error
	Duration     time.Duration
	Statements   int
	RowsAffected int64
	Skipped      bool
}

// NewRoutineInstaller reads scripts from <root>/<dialect of db>/routines.
func NewRoutineInstaller(db *bun.DB, root string) *RoutineInstaller {
	return &RoutineInstaller{
		db:     db,
		dir:    filepath.Join(root, DialectOf(db), routinesDir),
		logger: GetLogger(),
	}
}

func (r *RoutineInstaller) SetLogger(logger Logger) {
	r.logger = logger
}

func (r *RoutineInstaller) Dir() string {
	return r.dir
}

// Scripts lists the routine scripts ordered by their numeric "NN_" prefix,
// then by name. Unprefixed scripts run last.
func (r *RoutineInstaller) Scripts() ([]ScriptInfo, error) {
	if _, err := os.Stat(r.dir); os.IsNotExist(err) {
		return nil, nil
	}

	var scripts []ScriptInfo
	err := filepath.WalkDir(r.dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.EqualFold(filepath.Ext(d.Name()), ".sql") {
			return nil
		}
		scripts = append(scripts, ScriptInfo{
			Path:  path,
			Name:  d.Name(),
			Order: parseScriptOrder(d.Name()),
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list routine scripts: %w", err)
	}

	sort.Slice(scripts, func(i, j int) bool {
		if scripts[i].Order != scripts[j].Order {
			return scripts[i].Order < scripts[j].Order
		}
		return scripts[i].Name < scripts[j].Name
	})
	return scripts, nil
}

func parseScriptOrder(filename string) int {
	matches := scriptOrderPattern.FindStringSubmatch(filename)
	if len(matches) > 1 {
		if order, err := strconv.Atoi(matches[1]); err == nil {
			return order
		}
	}
	return 999
}

// Install executes every routine script and stops at the first failure.
func (r *RoutineInstaller) Install(ctx context.Context) ([]ExecutionResult, error) {
	r.logger.Info("Installing routines", "dir", r.dir)

	scripts, err := r.Scripts()
	if err != nil {
		return nil, err
	}
	if len(scripts) == 0 {
		r.logger.Info("No routine scripts found", "dir", r.dir)
		return nil, nil
	}

	if _, err := r.db.NewCreateTable().Model((*InstalledRoutine)(nil)).IfNotExists().Exec(ctx); err != nil {
		return nil, fmt.Errorf("failed to create routines table: %w", err)
	}

	results := make([]ExecutionResult, 0, len(scripts))
	for _, script := range scripts {
		result := r.executeScript(ctx, script)
		results = append(results, result)

		if !result.Success {
			r.logger.Error("Routine script failed", "file", result.File, "error", result.Error)
			return results, fmt.Errorf("routine script %s failed: %w", result.File, result.Error)
		}
		r.logger.Debug("Routine script executed",
			"file", result.File,
			"skipped", result.Skipped,
			"statements", result.Statements,
			"duration", result.Duration.String(),
		)
	}

	r.logger.Info("Routines installed", "scripts", len(results))
	return results, nil
}

func (r *RoutineInstaller) executeScript(ctx context.Context, script ScriptInfo) ExecutionResult {
	start := time.Now()
	result := ExecutionResult{File: script.Path}

	content, err := os.ReadFile(script.Path)
	if err != nil {
		result.Error = fmt.Errorf("failed to read file: %w", err)
		result.Duration = time.Since(start)
		return result
	}

	sum := sha256.Sum256(content)
	checksum := hex.EncodeToString(sum[:])
	var applied InstalledRoutine
	err = r.db.NewSelect().Model(&applied).Where("name = ?", script.Name).Scan(ctx)
	switch {
	case err == nil && applied.Checksum == checksum:
		result.Success = true
		result.Skipped = true
		result.Duration = time.Since(start)
		return result
	case err != nil && !errors.Is(err, sql.ErrNoRows):
		result.Error = fmt.Errorf("failed to read routine record: %w", err)
		result.Duration = time.Since(start)
		return result
	}

	statements := splitSQLStatements(string(content))
	result.Statements = len(statements)

	err = r.db.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		var total int64
		for _, stmt := range statements {
			res, execErr := tx.ExecContext(ctx, stmt)
			if execErr != nil {
				return fmt.Errorf("failed to execute SQL statement: %s, error: %w", stmt, execErr)
			}
			affected, _ := res.RowsAffected()
			total += affected
		}
		result.RowsAffected = total

		if _, err := tx.NewDelete().Model((*InstalledRoutine)(nil)).Where("name = ?", script.Name).Exec(ctx); err != nil {
			return err
		}
		_, err := tx.NewInsert().Model(&InstalledRoutine{
			Name:      script.Name,
			Checksum:  checksum,
			AppliedAt: time.Now(),
		}).Exec(ctx)
		return err
	})
	if err != nil {
		result.Error = err
	} else {
		result.Success = true
	}
	result.Duration = time.Since(start)
	return result
}
