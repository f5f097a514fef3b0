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

package dispatch

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect"

	"github.com/tomoncle/repoproxy/database"
)

// BunExecutor runs commands on a Bun database. Command text comes from the
// command set when it holds the command name; otherwise the routine of that
// name is called: CALL on MySQL, a set-returning function on PostgreSQL.
// SQLite has no stored routines, so every command needs text there.
type BunExecutor struct {
	db       bun.IDB
	commands *database.CommandSet
	logger   Logger
}

func NewBunExecutor(db bun.IDB, commands *database.CommandSet) *BunExecutor {
	return &BunExecutor{db: db, commands: commands, logger: GetLogger()}
}

// WithTx returns an executor that runs commands inside tx.
func (e *BunExecutor) WithTx(tx bun.Tx) *BunExecutor {
	return &BunExecutor{db: tx, commands: e.commands, logger: e.logger}
}

func (e *BunExecutor) Exec(ctx context.Context, cmd Command, dest any) error {
	query, args, err := e.Statement(cmd)
	if err != nil {
		return err
	}

	if dest == nil {
		_, err = e.db.ExecContext(ctx, query, args...)
	} else {
		err = e.db.NewRaw(query, args...).Scan(ctx, dest)
	}
	if err != nil {
		if is, kind := database.IsSqlError(err); is && kind == database.NoRoutineErr {
			e.logger.Warn("Versioned routine is not installed", "command", cmd.Name, "dialect", database.DialectOf(e.db))
		}
		return err
	}
	return nil
}

// Statement returns the query text and arguments executed for cmd.
func (e *BunExecutor) Statement(cmd Command) (string, []any, error) {
	values := cmd.Values()
	if c, ok := e.commands.Lookup(cmd.Name); ok {
		return c.Text, values, nil
	}

	// "?(" reads as a named placeholder, so the routine call uses indexed
	// placeholders with the identifier at ?0.
	placeholders := make([]string, len(values))
	for i := range values {
		placeholders[i] = "?" + strconv.Itoa(i+1)
	}
	call := "?0(" + strings.Join(placeholders, ", ") + ")"
	args := append([]any{bun.Ident(cmd.Name)}, values...)
	switch e.db.Dialect().Name() {
	case dialect.MySQL:
		return "CALL " + call, args, nil
	case dialect.PG:
		return "SELECT * FROM " + call, args, nil
	default:
		return "", nil, fmt.Errorf("%w: %s on %s", ErrNoCommandText, cmd.Name, database.DialectOf(e.db))
	}
}
