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
	"strings"
)

// Args holds call arguments by parameter name.
type Args map[string]any

// Arg is one bound argument.
type Arg struct {
	Name  string
	Value any
}

// Command is a versioned command name with its arguments in declared
// parameter order.
type Command struct {
	Name string
	Args []Arg
}

// Values returns the argument values in order.
func (c Command) Values() []any {
	out := make([]any, len(c.Args))
	for i, a := range c.Args {
		out[i] = a.Value
	}
	return out
}

func (c Command) String() string {
	names := make([]string, len(c.Args))
	for i, a := range c.Args {
		names[i] = a.Name
	}
	return fmt.Sprintf("%s(%s)", c.Name, strings.Join(names, ", "))
}

// Executor runs a command. A nil dest means the command returns no rows.
type Executor interface {
	Exec(ctx context.Context, cmd Command, dest any) error
}

// ExecutorFunc adapts a function to the Executor interface.
type ExecutorFunc func(ctx context.Context, cmd Command, dest any) error

func (f ExecutorFunc) Exec(ctx context.Context, cmd Command, dest any) error {
	return f(ctx, cmd, dest)
}
