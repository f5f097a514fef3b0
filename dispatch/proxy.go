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
	"reflect"
	"strings"

	"github.com/tomoncle/repoproxy/catalog"
	"github.com/tomoncle/repoproxy/proxy"
)

// Proxy dispatches method calls of one synthesized proxy type to an Executor.
// It is safe for concurrent use.
type Proxy struct {
	desc   *proxy.TypeDescriptor
	exec   Executor
	logger Logger
}

// New returns a dispatch proxy for the descriptor published under proxyName.
func New(reg *proxy.Registry, proxyName string, exec Executor) (*Proxy, error) {
	if reg == nil || reg.State() != proxy.StateReady {
		return nil, ErrNotInitialized
	}
	desc, ok := reg.Lookup(proxyName)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownProxy, proxyName)
	}
	if exec == nil {
		return nil, fmt.Errorf("dispatch: nil executor for %s", proxyName)
	}
	return &Proxy{desc: desc, exec: exec, logger: GetLogger()}, nil
}

// For returns the dispatch proxy synthesized for a repository interface. A
// package-qualified name is reduced to its last element.
func For(reg *proxy.Registry, interfaceName string, exec Executor) (*Proxy, error) {
	name := interfaceName
	if i := strings.LastIndex(name, "."); i >= 0 {
		name = name[i+1:]
	}
	return New(reg, proxy.ProxyName(name), exec)
}

// ForType is For with the name of the repository interface type R.
func ForType[R any](reg *proxy.Registry, exec Executor) (*Proxy, error) {
	return For(reg, reflect.TypeFor[R]().Name(), exec)
}

func (p *Proxy) Name() string {
	return p.desc.ProxyName
}

// Descriptor returns the shared descriptor; callers must not modify it.
func (p *Proxy) Descriptor() *proxy.TypeDescriptor {
	return p.desc
}

// Bind resolves method against the argument names in args and returns the
// command to run. Overloads are told apart by their parameter names;
// context.Context parameters are never bound.
func (p *Proxy) Bind(method string, args Args) (Command, error) {
	candidates := p.desc.Method(method)
	if len(candidates) == 0 {
		return Command{}, fmt.Errorf("%w: %s.%s", ErrUnknownMethod, p.Name(), method)
	}

	var matched []proxy.MethodDescriptor
	for _, c := range candidates {
		if accepts(c.Signature, args) {
			matched = append(matched, c)
		}
	}

	switch len(matched) {
	case 1:
		return bind(matched[0], args), nil
	case 0:
		err := &BindError{Proxy: p.Name(), Method: method}
		if len(candidates) == 1 {
			err.Missing, err.Unknown = diff(candidates[0].Signature, args)
		}
		return Command{}, err
	default:
		err := &BindError{Proxy: p.Name(), Method: method}
		for _, m := range matched {
			err.Ambiguous = append(err.Ambiguous, m.Signature.String())
		}
		return Command{}, err
	}
}

// Invoke binds args to method and executes its versioned command, scanning
// results into dest unless dest is nil.
func (p *Proxy) Invoke(ctx context.Context, method string, args Args, dest any) error {
	cmd, err := p.Bind(method, args)
	if err != nil {
		return err
	}
	p.logger.Debug("Dispatching command", "proxy", p.Name(), "method", method, "command", cmd.String())
	if err := p.exec.Exec(ctx, cmd, dest); err != nil {
		return &CommandError{Proxy: p.Name(), Method: method, Command: cmd.Name, Err: err}
	}
	return nil
}

func bound(m catalog.Method) []catalog.Param {
	out := make([]catalog.Param, 0, len(m.Params))
	for _, param := range m.Params {
		if param.Type.IsContext() {
			continue
		}
		out = append(out, param)
	}
	return out
}

func accepts(m catalog.Method, args Args) bool {
	params := bound(m)
	if len(params) != len(args) {
		return false
	}
	for _, param := range params {
		if _, ok := args[param.Name]; !ok {
			return false
		}
	}
	return true
}

func bind(m proxy.MethodDescriptor, args Args) Command {
	params := bound(m.Signature)
	cmd := Command{Name: m.VersionedCommandName, Args: make([]Arg, len(params))}
	for i, param := range params {
		cmd.Args[i] = Arg{Name: param.Name, Value: args[param.Name]}
	}
	return cmd
}

func diff(m catalog.Method, args Args) (missing, unknown []string) {
	declared := make(map[string]bool)
	missingSet := make(map[string]bool)
	for _, param := range bound(m) {
		declared[param.Name] = true
		if _, ok := args[param.Name]; !ok {
			missingSet[param.Name] = true
		}
	}
	unknownSet := make(map[string]bool)
	for name := range args {
		if !declared[name] {
			unknownSet[name] = true
		}
	}
	return sortedKeys(missingSet), sortedKeys(unknownSet)
}
