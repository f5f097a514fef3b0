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
	"github.com/tomoncle/repoproxy/catalog"
)

// ProxySuffix is appended to a repository interface name to form its proxy name.
const ProxySuffix = "_Proxy"

// ProxyName returns the proxy name synthesized for a repository interface.
func ProxyName(interfaceName string) string {
	return interfaceName + ProxySuffix
}

// TypeDescriptor stands in for a generated proxy type. Descriptors held by a
// registry are shared and must not be modified.
type TypeDescriptor struct {
	ProxyName string `json:"proxy_name" yaml:"proxy_name"`
	// Interface is the ID of the repository interface the proxy was built from.
	Interface string `json:"interface" yaml:"interface"`
	// SourceInterface is the ID of the interface the proxy implements.
	SourceInterface string             `json:"source_interface" yaml:"source_interface"`
	Methods         []MethodDescriptor `json:"methods" yaml:"methods"`
}

// MethodDescriptor is a source method signature tagged with its versioned
// command name.
type MethodDescriptor struct {
	Signature            catalog.Method `json:"signature" yaml:"signature"`
	VersionedCommandName string         `json:"versioned_command_name" yaml:"versioned_command_name"`
}

// Method returns the descriptors of the methods named name, in declaration
// order. Overloads share a name and therefore a command name.
func (d *TypeDescriptor) Method(name string) []MethodDescriptor {
	var out []MethodDescriptor
	for _, m := range d.Methods {
		if m.Signature.Name == name {
			out = append(out, m)
		}
	}
	return out
}
