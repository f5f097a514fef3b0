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
	"errors"
	"sort"
	"sync"
	"sync/atomic"
)

// State is the lifecycle state of a Registry.
type State int32

const (
	StateUninitialized State = iota
	StateSynthesizing
	StateReady
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateSynthesizing:
		return "synthesizing"
	case StateReady:
		return "ready"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Registry maps proxy names to descriptors. It is published once and is
// read-only afterwards; Lookup takes no lock. Before a successful publish,
// and after a failed one, Lookup finds nothing.
type Registry struct {
	mu      sync.Mutex
	state   atomic.Int32
	entries atomic.Pointer[map[string]*TypeDescriptor]
}

func NewRegistry() *Registry {
	return &Registry{}
}

func (r *Registry) State() State {
	return State(r.state.Load())
}

// begin moves an uninitialized registry into the synthesizing state.
func (r *Registry) begin() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.state.CompareAndSwap(int32(StateUninitialized), int32(StateSynthesizing)) {
		return ErrAlreadyPublished
	}
	return nil
}

func (r *Registry) fail() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.state.Store(int32(StateFailed))
}

// Publish installs descriptors as the registry contents. Proxy names must be
// unique across the batch; on a duplicate nothing is installed and the
// registry fails. A registry can be published once.
func (r *Registry) Publish(descs []*TypeDescriptor) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	switch r.State() {
	case StateReady, StateFailed:
		return ErrAlreadyPublished
	}

	if dups := duplicateNames(descs); len(dups) > 0 {
		r.state.Store(int32(StateFailed))
		return errors.Join(dups...)
	}

	entries := make(map[string]*TypeDescriptor, len(descs))
	for _, d := range descs {
		entries[d.ProxyName] = d
	}
	r.entries.Store(&entries)
	r.state.Store(int32(StateReady))
	return nil
}

// Lookup returns the descriptor published under name.
func (r *Registry) Lookup(name string) (*TypeDescriptor, bool) {
	entries := r.entries.Load()
	if entries == nil {
		return nil, false
	}
	d, ok := (*entries)[name]
	return d, ok
}

// Names returns the published proxy names in sorted order.
func (r *Registry) Names() []string {
	entries := r.entries.Load()
	if entries == nil {
		return []string{}
	}
	names := make([]string, 0, len(*entries))
	for name := range *entries {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Descriptors returns the published descriptors ordered by proxy name.
func (r *Registry) Descriptors() []*TypeDescriptor {
	names := r.Names()
	out := make([]*TypeDescriptor, len(names))
	for i, name := range names {
		out[i], _ = r.Lookup(name)
	}
	return out
}

func (r *Registry) Len() int {
	entries := r.entries.Load()
	if entries == nil {
		return 0
	}
	return len(*entries)
}

func duplicateNames(descs []*TypeDescriptor) []error {
	sources := make(map[string][]string, len(descs))
	var order []string
	for _, d := range descs {
		if _, ok := sources[d.ProxyName]; !ok {
			order = append(order, d.ProxyName)
		}
		sources[d.ProxyName] = append(sources[d.ProxyName], d.Interface)
	}
	sort.Strings(order)

	var errs []error
	for _, name := range order {
		if len(sources[name]) > 1 {
			errs = append(errs, &DuplicateNameError{ProxyName: name, Sources: sources[name]})
		}
	}
	return errs
}
