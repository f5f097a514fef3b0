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
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const commandRoot = "testdata/commands"

func TestLoadCommandSetDialectWins(t *testing.T) {
	set, err := LoadCommandSet(commandRoot, DialectSQLite)
	require.NoError(t, err)
	assert.Equal(t, []string{"countBeers_2", "findBeers_2"}, set.Names())
	assert.Equal(t, DialectSQLite, set.Dialect())

	find, ok := set.Lookup("findBeers_2")
	require.True(t, ok)
	assert.Equal(t, DialectSQLite, find.Source)
	assert.Equal(t, "SELECT id, name, style\nFROM beers\nWHERE name = ?\nORDER BY id", find.Text)

	count, ok := set.Lookup("countBeers_2")
	require.True(t, ok)
	assert.Equal(t, "common", count.Source)
	assert.Equal(t, "SELECT count(*) FROM beers", count.Text)
}

func TestLoadCommandSetCommonOnly(t *testing.T) {
	set, err := LoadCommandSet(commandRoot, DialectMySQL)
	require.NoError(t, err)
	find, ok := set.Lookup("findBeers_2")
	require.True(t, ok)
	assert.Equal(t, "common", find.Source)
	assert.Equal(t, "SELECT id, name, style FROM beers WHERE name = ?", find.Text)
}

func TestLoadCommandSetEmptyRoot(t *testing.T) {
	set, err := LoadCommandSet("", DialectSQLite)
	require.NoError(t, err)
	assert.Equal(t, 0, set.Len())

	set, err = LoadCommandSet(filepath.Join(t.TempDir(), "missing"), DialectSQLite)
	require.NoError(t, err)
	assert.Equal(t, 0, set.Len())
}

func TestLoadCommandSetRejectsScripts(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "common"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "common", "twice_2.sql"), []byte("SELECT 1;\nSELECT 2;\n"), 0644))

	_, err := LoadCommandSet(root, DialectSQLite)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "exactly one statement")
}

func TestNilCommandSet(t *testing.T) {
	var set *CommandSet
	_, ok := set.Lookup("findBeers_2")
	assert.False(t, ok)
	assert.Equal(t, 0, set.Len())
	assert.Empty(t, set.Names())
}

func TestCommandSetAdd(t *testing.T) {
	set := NewCommandSet(DialectPostgres)
	set.Add("findBeers_2", "  SELECT 1 ")
	cmd, ok := set.Lookup("findBeers_2")
	require.True(t, ok)
	assert.Equal(t, "SELECT 1", cmd.Text)
	assert.Equal(t, DialectPostgres, cmd.Source)
}

func TestSplitSQLStatements(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want []string
	}{
		{
			name: "semicolons and comments",
			in:   "-- seed\nINSERT INTO a VALUES (1);\n\nINSERT INTO a\nVALUES (2);\n",
			want: []string{"INSERT INTO a VALUES (1)", "INSERT INTO a\nVALUES (2)"},
		},
		{
			name: "trailing statement without terminator",
			in:   "SELECT 1",
			want: []string{"SELECT 1"},
		},
		{
			name: "mysql delimiter",
			in: "DELIMITER $$\n" +
				"CREATE PROCEDURE findBeers_2(IN p_name VARCHAR(64))\n" +
				"BEGIN\n" +
				"  SELECT * FROM beers WHERE name = p_name;\n" +
				"END$$\n" +
				"DELIMITER ;\n" +
				"SELECT 1;\n",
			want: []string{
				"CREATE PROCEDURE findBeers_2(IN p_name VARCHAR(64))\nBEGIN\nSELECT * FROM beers WHERE name = p_name;\nEND",
				"SELECT 1",
			},
		},
		{
			name: "empty",
			in:   "-- nothing here\n\n",
			want: nil,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, splitSQLStatements(tt.in))
		})
	}
}

func TestSplitSQLStatementsDollarQuoted(t *testing.T) {
	content, err := os.ReadFile(filepath.Join(commandRoot, "postgres", "routines", "01_find_beers.sql"))
	require.NoError(t, err)

	got := splitSQLStatements(string(content))
	require.Len(t, got, 1)
	assert.Contains(t, got[0], "RETURN QUERY SELECT")
	assert.Contains(t, got[0], "END;\n$$ LANGUAGE plpgsql")
}
