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
	"sort"
	"strings"

	"github.com/tomoncle/repoproxy/catalog"
)

// Synthesizer builds one TypeDescriptor per repository interface.
type Synthesizer struct {
	binder Binder
	marker string
	logger Logger
}

func NewSynthesizer(policy VersionPolicy, marker string, logger Logger) *Synthesizer {
	if marker == "" {
		marker = catalog.DefaultMarker
	}
	if logger == nil {
		logger = GetLogger()
	}
	return &Synthesizer{
		binder: NewBinder(policy),
		marker: marker,
		logger: logger,
	}
}

// Synthesize builds descriptors for the repository interfaces in repos,
// resolving extends relationships against decls. It does not stop at the
// first malformed interface: every error is returned, and descriptors are
// only returned for interfaces that synthesized cleanly.
func (s *Synthesizer) Synthesize(decls []catalog.Interface, repos []catalog.Interface) ([]*TypeDescriptor, []error) {
	idx := catalog.NewIndex(decls)
	descs := make([]*TypeDescriptor, 0, len(repos))
	var errs []error
	for _, r := range repos {
		desc, err := s.synthesizeOne(idx, r)
		if err != nil {
			s.logger.Debug("Repository interface rejected", "interface", r.ID(), "error", err)
			errs = append(errs, err)
			continue
		}
		s.logger.Debug("Proxy synthesized", "proxy", desc.ProxyName, "source", desc.SourceInterface, "methods", len(desc.Methods))
		descs = append(descs, desc)
	}
	return descs, errs
}

func (s *Synthesizer) synthesizeOne(idx *catalog.Index, r catalog.Interface) (*TypeDescriptor, error) {
	base, err := s.baseOf(idx, r)
	if err != nil {
		return nil, err
	}
	methods, err := s.binder.BindAll(r)
	if err != nil {
		return nil, err
	}
	return &TypeDescriptor{
		ProxyName:       ProxyName(r.Name),
		Interface:       r.ID(),
		SourceInterface: base,
		Methods:         methods,
	}, nil
}

// baseOf picks the interface the proxy for r implements. Candidates are the
// repository interfaces r transitively extends. An explicit Narrows wins;
// otherwise no candidate means r itself, a single candidate is taken as is,
// and among several the one whose name ends with r's name is chosen.
func (s *Synthesizer) baseOf(idx *catalog.Index, r catalog.Interface) (string, error) {
	known, missing := idx.Closure(r.ID())

	var undeclared []string
	for _, id := range missing {
		if id != s.marker {
			undeclared = append(undeclared, id)
		}
	}
	if len(undeclared) > 0 {
		return "", &ConfigurationError{
			Interface: r.ID(),
			Reason:    fmt.Sprintf("extends undeclared interface(s) %s", strings.Join(undeclared, ", ")),
		}
	}

	var candidates []string
	for _, id := range known {
		if id == s.marker {
			continue
		}
		if d, ok := idx.Get(id); ok && d.IsInterface() && idx.Extends(id, s.marker) {
			candidates = append(candidates, id)
		}
	}

	if r.Narrows != "" {
		for _, id := range candidates {
			if id == r.Narrows {
				return id, nil
			}
		}
		return "", &ConfigurationError{
			Interface: r.ID(),
			Reason:    fmt.Sprintf("narrows %s, which is not a repository interface it extends", r.Narrows),
		}
	}

	switch len(candidates) {
	case 0:
		return r.ID(), nil
	case 1:
		return candidates[0], nil
	}

	var matches []string
	for _, id := range candidates {
		d, _ := idx.Get(id)
		if strings.HasSuffix(d.Name, r.Name) {
			matches = append(matches, id)
		}
	}
	sort.Strings(matches)
	switch len(matches) {
	case 1:
		return matches[0], nil
	case 0:
		return "", &ConfigurationError{
			Interface: r.ID(),
			Reason:    fmt.Sprintf("no base interface among %s ends with %q", strings.Join(candidates, ", "), r.Name),
		}
	default:
		return "", &ConfigurationError{
			Interface: r.ID(),
			Reason:    fmt.Sprintf("ambiguous base interface, %s all end with %q", strings.Join(matches, ", "), r.Name),
		}
	}
}
