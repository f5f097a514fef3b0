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

package catalog

import (
	"sort"
)

// DefaultMarker is the ID of the marker interface in catalogs that do not
// declare one.
const DefaultMarker = "Repository"

// Index resolves catalog declarations by ID. Declarations sharing an ID are
// merged for extends resolution; the first one wins otherwise.
type Index struct {
	byID    map[string]*Interface
	extends map[string][]string
}

// NewIndex indexes decls by ID.
func NewIndex(decls []Interface) *Index {
	idx := &Index{
		byID:    make(map[string]*Interface, len(decls)),
		extends: make(map[string][]string, len(decls)),
	}
	for i := range decls {
		id := decls[i].ID()
		if _, ok := idx.byID[id]; !ok {
			idx.byID[id] = &decls[i]
		}
		idx.extends[id] = append(idx.extends[id], decls[i].Extends...)
	}
	return idx
}

// Get returns the declaration with the given ID.
func (idx *Index) Get(id string) (*Interface, bool) {
	d, ok := idx.byID[id]
	return d, ok
}

// Closure returns the sorted IDs of every declaration id transitively
// extends, not including id itself. IDs referenced through extends but absent
// from the catalog are returned separately in missing.
func (idx *Index) Closure(id string) (known []string, missing []string) {
	seen := map[string]bool{id: true}
	stack := append([]string(nil), idx.extends[id]...)
	for len(stack) > 0 {
		next := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if seen[next] {
			continue
		}
		seen[next] = true
		if _, ok := idx.byID[next]; !ok {
			missing = append(missing, next)
			continue
		}
		known = append(known, next)
		stack = append(stack, idx.extends[next]...)
	}
	sort.Strings(known)
	sort.Strings(missing)
	return known, missing
}

// Extends reports whether id transitively extends target.
func (idx *Index) Extends(id, target string) bool {
	if id == target {
		return false
	}
	seen := map[string]bool{id: true}
	stack := append([]string(nil), idx.extends[id]...)
	for len(stack) > 0 {
		next := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if next == target {
			return true
		}
		if seen[next] {
			continue
		}
		seen[next] = true
		stack = append(stack, idx.extends[next]...)
	}
	return false
}

// Scan returns the repository interfaces of decls: interfaces other than the
// marker that transitively extend it. The result is sorted by name, then ID,
// and is empty when nothing qualifies.
func Scan(decls []Interface, marker string) []Interface {
	if marker == "" {
		marker = DefaultMarker
	}
	idx := NewIndex(decls)

	out := make([]Interface, 0)
	for _, d := range decls {
		if !d.IsInterface() || d.ID() == marker {
			continue
		}
		if !idx.Extends(d.ID(), marker) {
			continue
		}
		out = append(out, d)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].ID() < out[j].ID()
	})
	return out
}
