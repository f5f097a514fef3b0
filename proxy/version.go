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

// DefaultVersionSuffix is appended to method names when no suffix is configured.
const DefaultVersionSuffix = "_2"

// VersionPolicy holds the suffix appended to every method name to form its
// backend command name. A policy is fixed for the lifetime of a registry;
// there is no per-method override.
type VersionPolicy struct {
	suffix string
}

// NewVersionPolicy returns a policy with the given suffix. The suffix is used
// verbatim; an empty suffix maps each method to its own name.
func NewVersionPolicy(suffix string) VersionPolicy {
	return VersionPolicy{suffix: suffix}
}

func (p VersionPolicy) Suffix() string { return p.suffix }

// CommandName returns the versioned command name for a method.
func (p VersionPolicy) CommandName(method string) string {
	return method + p.suffix
}
