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
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/tomoncle/repoproxy/proxy"
)

var (
	// ErrUnknownProxy is returned when the registry holds no proxy of the requested name.
	ErrUnknownProxy = errors.New("unknown proxy")
	// ErrNotInitialized is returned when the registry has not been published.
	// It is proxy.ErrNotInitialized.
	ErrNotInitialized = proxy.ErrNotInitialized
	// ErrUnknownMethod is returned when a proxy has no method of the requested name.
	ErrUnknownMethod = errors.New("unknown method")
	// ErrNoCommandText is returned when a command has no SQL text and the
	// dialect cannot call a routine by name.
	ErrNoCommandText = errors.New("no command text")
)

// BindError reports arguments that do not match any declared parameter list
// of a method.
type BindError struct {
	Proxy   string
	Method  string
	Missing []string
	Unknown []string
	// Ambiguous lists the signatures that all accept the argument names.
	Ambiguous []string
}

func (e *BindError) Error() string {
	var parts []string
	if len(e.Missing) > 0 {
		parts = append(parts, "missing "+strings.Join(e.Missing, ", "))
	}
	if len(e.Unknown) > 0 {
		parts = append(parts, "unknown "+strings.Join(e.Unknown, ", "))
	}
	if len(e.Ambiguous) > 0 {
		parts = append(parts, "ambiguous between "+strings.Join(e.Ambiguous, " and "))
	}
	if len(parts) == 0 {
		parts = append(parts, "no overload accepts the arguments")
	}
	return fmt.Sprintf("cannot bind %s.%s: %s", e.Proxy, e.Method, strings.Join(parts, "; "))
}

// CommandError wraps a failure of the executor running a versioned command.
type CommandError struct {
	Proxy   string
	Method  string
	Command string
	Err     error
}

func (e *CommandError) Error() string {
	return fmt.Sprintf("%s.%s: command %s failed: %v", e.Proxy, e.Method, e.Command, e.Err)
}

func (e *CommandError) Unwrap() error {
	return e.Err
}

func sortedKeys(m map[string]bool) []string {
	if len(m) == 0 {
		return nil
	}
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
