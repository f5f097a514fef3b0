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
	"database/sql"
	"errors"
	"fmt"
	"testing"

	"github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
)

func TestIsSqlError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		is   bool
		want SQLError
	}{
		{"nil", nil, false, UnknownErr},
		{"no rows", fmt.Errorf("scan: %w", sql.ErrNoRows), true, NoRowsErr},
		{"mysql missing procedure", &mysql.MySQLError{Number: 1305, Message: "PROCEDURE beers.findBeers_2 does not exist"}, true, NoRoutineErr},
		{"mysql duplicate", &mysql.MySQLError{Number: 1062}, true, DuplicateKeyErr},
		{"postgres missing function", errors.New(`pq: function findbeers_2(unknown) does not exist`), true, NoRoutineErr},
		{"sqlite missing table", errors.New("SQL logic error: no such table: beers (1)"), true, NoTableErr},
		{"sqlite unique", errors.New("UNIQUE constraint failed: beers.name"), true, DuplicateKeyErr},
		{"other", errors.New("connection reset"), false, UnknownErr},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			is, got := IsSqlError(tt.err)
			assert.Equal(t, tt.is, is)
			assert.Equal(t, tt.want, got)
		})
	}
	assert.Equal(t, "no routine", NoRoutineErr.String())
}
