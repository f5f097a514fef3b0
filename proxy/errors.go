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
	"fmt"
	"strings"
)

var (
	// ErrNotInitialized is returned by consumers that require a Ready
	// registry, such as the dispatch layer.
	ErrNotInitialized = errors.New("proxy registry not initialized")
	// ErrAlreadyPublished is returned when a registry is published twice.
	ErrAlreadyPublished = errors.New("proxy registry already published")
)

// ConfigurationError reports a repository interface that cannot be turned
// into a proxy.
type ConfigurationError struct {
	Interface string
	Reason    string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("invalid repository interface %s: %s", e.Interface, e.Reason)
}

// DuplicateNameError reports two or more repository interfaces that
// synthesize the same proxy name.
type DuplicateNameError struct {
	ProxyName string
	Sources   []string
}

func (e *DuplicateNameError) Error() string {
	return fmt.Sprintf("duplicate proxy name %s synthesized from %s", e.ProxyName, strings.Join(e.Sources, ", "))
}

// SynthesisError collects every error found during a synthesis pass.
type SynthesisError struct {
	Errs []error
}

func (e *SynthesisError) Error() string {
	msgs := make([]string, len(e.Errs))
	for i, err := range e.Errs {
		msgs[i] = err.Error()
	}
	return fmt.Sprintf("proxy synthesis failed with %d error(s): %s", len(e.Errs), strings.Join(msgs, "; "))
}

func (e *SynthesisError) Unwrap() []error {
	return e.Errs
}
