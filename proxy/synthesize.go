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
	"sync"
	"sync/atomic"

	"github.com/tomoncle/repoproxy/catalog"
)

type options struct {
	marker string
	logger Logger
}

// Option configures a synthesis pass.
type Option func(*options)

// WithMarker sets the ID of the marker interface. Defaults to catalog.DefaultMarker.
func WithMarker(marker string) Option {
	return func(o *options) { o.marker = marker }
}

func WithLogger(logger Logger) Option {
	return func(o *options) { o.logger = logger }
}

// Synthesize runs one synthesis pass over decls: scan, build, bind, publish.
// The returned registry is Ready on success. On failure it is Failed, exposes
// no entries, and the error is a *SynthesisError carrying every
// ConfigurationError and DuplicateNameError found.
func Synthesize(decls []catalog.Interface, suffix string, opts ...Option) (*Registry, error) {
	o := options{marker: catalog.DefaultMarker}
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = GetLogger()
	}

	reg := NewRegistry()
	if err := reg.begin(); err != nil {
		return reg, err
	}

	repos := catalog.Scan(decls, o.marker)
	synth := NewSynthesizer(NewVersionPolicy(suffix), o.marker, o.logger)
	descs, errs := synth.Synthesize(decls, repos)
	errs = append(errs, duplicateNames(descs)...)
	if len(errs) > 0 {
		reg.fail()
		o.logger.Error("Proxy synthesis failed", "interfaces", len(repos), "errors", len(errs))
		return reg, &SynthesisError{Errs: errs}
	}

	if err := reg.Publish(descs); err != nil {
		return reg, &SynthesisError{Errs: []error{err}}
	}
	o.logger.Info("Proxy registry published", "proxies", reg.Len(), "suffix", suffix, "marker", o.marker)
	return reg, nil
}

var (
	defaultMu   sync.Mutex
	defaultDone bool
	defaultErr  error
	defaultReg  atomic.Pointer[Registry]
)

// Init runs the process-wide synthesis pass. The first caller performs it;
// concurrent and later callers wait for it and get the same result, including
// a failure. A failed pass is not retried.
func Init(decls []catalog.Interface, suffix string, opts ...Option) (*Registry, error) {
	defaultMu.Lock()
	defer defaultMu.Unlock()
	if defaultDone {
		return defaultReg.Load(), defaultErr
	}
	reg, err := Synthesize(decls, suffix, opts...)
	defaultReg.Store(reg)
	defaultErr = err
	defaultDone = true
	return reg, err
}

// Default returns the process-wide registry. Before Init it is an empty,
// uninitialized registry.
func Default() *Registry {
	if reg := defaultReg.Load(); reg != nil {
		return reg
	}
	return NewRegistry()
}

// ResetDefault discards the process-wide registry so that the next Init
// starts a fresh pass.
func ResetDefault() {
	defaultMu.Lock()
	defer defaultMu.Unlock()
	defaultDone = false
	defaultErr = nil
	defaultReg.Store(nil)
}

// IsConfigurationError reports whether err carries a ConfigurationError.
func IsConfigurationError(err error) bool {
	var target *ConfigurationError
	return errors.As(err, &target)
}

// IsDuplicateNameError reports whether err carries a DuplicateNameError.
func IsDuplicateNameError(err error) bool {
	var target *DuplicateNameError
	return errors.As(err, &target)
}
