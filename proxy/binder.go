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

package proxy

import (
	"fmt"
	"strings"

	"github.com/tomoncle/repoproxy/catalog"
)

// Binder maps method signatures to method descriptors under a version policy.
type Binder struct {
	policy VersionPolicy
}

func NewBinder(policy VersionPolicy) Binder {
	return Binder{policy: policy}
}

// Bind copies the signature unchanged and attaches its versioned command name.
func (b Binder) Bind(m catalog.Method) MethodDescriptor {
	return MethodDescriptor{
		Signature:            m.Clone(),
		VersionedCommandName: b.policy.CommandName(m.Name),
	}
}

// BindAll binds every method declared on iface, in declaration order. It
// rejects methods that repeat both name and parameter list, overloads whose
// non-context parameter names are the same set, and parameters that cannot
// be bound by name.
func (b Binder) BindAll(iface catalog.Interface) ([]MethodDescriptor, error) {
	var problems []string
	for i, m := range iface.Methods {
		if m.Name == "" {
			problems = append(problems, fmt.Sprintf("method %d has no name", i))
			continue
		}
		for j := 0; j < i; j++ {
			prev := iface.Methods[j]
			if prev.Name != m.Name {
				continue
			}
			if prev.SameParams(m) {
				problems = append(problems, fmt.Sprintf("method %s is declared twice with the same parameters", m.String()))
				break
			}
			if sameBoundNames(prev, m) {
				problems = append(problems, fmt.Sprintf("overloads %s and %s cannot be told apart by parameter names", prev.String(), m.String()))
				break
			}
		}
		problems = append(problems, paramProblems(m)...)
	}
	if len(problems) > 0 {
		return nil, &ConfigurationError{Interface: iface.ID(), Reason: strings.Join(problems, "; ")}
	}

	out := make([]MethodDescriptor, len(iface.Methods))
	for i, m := range iface.Methods {
		out[i] = b.Bind(m)
	}
	return out, nil
}

// sameBoundNames reports whether a and b bind the same set of argument names.
// Calls pick an overload by that set, so such overloads are unreachable.
func sameBoundNames(a, b catalog.Method) bool {
	names := func(m catalog.Method) map[string]bool {
		out := make(map[string]bool, len(m.Params))
		for _, p := range m.Params {
			if !p.Type.IsContext() {
				out[p.Name] = true
			}
		}
		return out
	}
	an, bn := names(a), names(b)
	if len(an) != len(bn) {
		return false
	}
	for name := range an {
		if !bn[name] {
			return false
		}
	}
	return true
}

func paramProblems(m catalog.Method) []string {
	var problems []string
	seen := make(map[string]bool, len(m.Params))
	for i, p := range m.Params {
		if p.Type.IsContext() && (p.Name == "" || p.Name == "_") {
			continue
		}
		switch {
		case p.Name == "" || p.Name == "_":
			problems = append(problems, fmt.Sprintf("parameter %d of %s has no name", i, m.Name))
		case seen[p.Name]:
			problems = append(problems, fmt.Sprintf("parameter %s of %s is declared twice", p.Name, m.Name))
		}
		seen[p.Name] = true
	}
	return problems
}
