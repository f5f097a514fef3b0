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
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect"
)

// Dialect directory names under a command root.
const (
	DialectMySQL    = "mysql"
	DialectPostgres = "postgres"
	DialectSQLite   = "sqlite"
	commonDir       = "common"
	routinesDir     = "routines"
)

// DialectOf returns the command directory name for the dialect of db.
func DialectOf(db bun.IDB) string {
	if db == nil {
		return ""
	}
	switch db.Dialect().Name() {
	case dialect.MySQL:
		return DialectMySQL
	case dialect.PG:
		return DialectPostgres
	case dialect.SQLite:
		return DialectSQLite
	default:
		return ""
	}
}

// Command is the SQL text executed for one versioned command name.
type Command struct {
	Name string
	Text string
	Path string
	// Source is "common" or the dialect the text was read for.
	Source string
}

// CommandSet maps versioned command names to SQL text. Files named
// <command>.sql are read from <root>/common and then <root>/<dialect>; a
// dialect file replaces the common file of the same name.
type CommandSet struct {
	root     string
	dialect  string
	commands map[string]Command
}

// NewCommandSet returns an empty set for a dialect directory name.
func NewCommandSet(dialectName string) *CommandSet {
	return &CommandSet{dialect: dialectName, commands: map[string]Command{}}
}

// LoadCommandSet reads the command files under root for a dialect. Missing
// directories are skipped; an empty root yields an empty set.
func LoadCommandSet(root, dialectName string) (*CommandSet, error) {
	set := NewCommandSet(dialectName)
	set.root = root
	if root == "" {
		return set, nil
	}

	dirs := []string{commonDir}
	if dialectName != "" {
		dirs = append(dirs, dialectName)
	}
	for _, name := range dirs {
		dir := filepath.Join(root, name)
		if _, err := os.Stat(dir); os.IsNotExist(err) {
			continue
		}
		entries, err := os.ReadDir(dir)
		if err != nil {
			return nil, fmt.Errorf("failed to read command directory %s: %w", dir, err)
		}
		for _, e := range entries {
			if e.IsDir() || !strings.EqualFold(filepath.Ext(e.Name()), ".sql") {
				continue
			}
			path := filepath.Join(dir, e.Name())
			cmd, err := readCommand(path, name)
			if err != nil {
				return nil, err
			}
			set.commands[cmd.Name] = cmd
		}
	}
	return set, nil
}

func readCommand(path, source string) (Command, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return Command{}, fmt.Errorf("failed to read command file: %w", err)
	}
	statements := splitSQLStatements(string(content))
	if len(statements) != 1 {
		return Command{}, fmt.Errorf("command file %s must hold exactly one statement, found %d", path, len(statements))
	}
	base := filepath.Base(path)
	return Command{
		Name:   strings.TrimSuffix(base, filepath.Ext(base)),
		Text:   statements[0],
		Path:   path,
		Source: source,
	}, nil
}

// Add registers text under name, replacing any previous command.
func (s *CommandSet) Add(name, text string) {
	s.commands[name] = Command{Name: name, Text: strings.TrimSpace(text), Source: s.dialect}
}

// Lookup returns the command registered under name. A nil set holds nothing.
func (s *CommandSet) Lookup(name string) (Command, bool) {
	if s == nil {
		return Command{}, false
	}
	cmd, ok := s.commands[name]
	return cmd, ok
}

// Names returns the command names in sorted order.
func (s *CommandSet) Names() []string {
	if s == nil {
		return nil
	}
	names := make([]string, 0, len(s.commands))
	for name := range s.commands {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (s *CommandSet) Len() int {
	if s == nil {
		return 0
	}
	return len(s.commands)
}

func (s *CommandSet) Dialect() string {
	if s == nil {
		return ""
	}
	return s.dialect
}

func (s *CommandSet) Root() string {
	if s == nil {
		return ""
	}
	return s.root
}

// splitSQLStatements splits a script into statements. Comment lines are
// dropped, a "DELIMITER x" line switches the terminator, and with the default
// terminator semicolons inside $$ blocks do not end a statement. Terminators
// are not part of the returned statements.
func splitSQLStatements(content string) []string {
	var statements []string
	var current strings.Builder
	delimiter := ";"
	inDollar := false

	flush := func() {
		stmt := strings.TrimSpace(current.String())
		stmt = strings.TrimSpace(strings.TrimSuffix(stmt, delimiter))
		if stmt != "" {
			statements = append(statements, stmt)
		}
		current.Reset()
	}

	scanner := bufio.NewScanner(strings.NewReader(content))
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if !inDollar && (line == "" || strings.HasPrefix(line, "--")) {
			continue
		}
		if !inDollar {
			if fields := strings.Fields(line); len(fields) == 2 && strings.EqualFold(fields[0], "DELIMITER") {
				flush()
				delimiter = fields[1]
				continue
			}
		}

		if delimiter == ";" && strings.Count(line, "$$")%2 == 1 {
			inDollar = !inDollar
		}
		current.WriteString(line)
		current.WriteString("\n")

		if !inDollar && strings.HasSuffix(line, delimiter) {
			flush()
		}
	}

	if current.Len() > 0 {
		flush()
	}
	return statements
}
