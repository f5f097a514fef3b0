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
	"strings"
)

// Kind classifies a declaration in the catalog.
type Kind string

const (
	KindInterface Kind = "interface"
	KindStruct    Kind = "struct"
	KindOther     Kind = "other"
)

// Interface is a type declaration read from a catalog provider. Only
// declarations of KindInterface take part in proxy synthesis.
type Interface struct {
	Name    string   `yaml:"name" toml:"name" json:"name"`
	Package string   `yaml:"package,omitempty" toml:"package" json:"package,omitempty"`
	Kind    Kind     `yaml:"kind,omitempty" toml:"kind" json:"kind,omitempty"`
	Methods []Method `yaml:"methods,omitempty" toml:"methods" json:"methods,omitempty"`
	// Extends lists the IDs of the interfaces this one embeds.
	Extends []string `yaml:"extends,omitempty" toml:"extends" json:"extends,omitempty"`
	// Narrows names, by ID, the interface a proxy for this declaration should
	// implement. It overrides the name-suffix rule when set.
	Narrows string `yaml:"narrows,omitempty" toml:"narrows" json:"narrows,omitempty"`
}

// ID identifies the declaration inside a catalog: "<package>.<name>" for
// package-qualified declarations, the bare name otherwise.
func (i Interface) ID() string {
	if i.Package == "" {
		return i.Name
	}
	return i.Package + "." + i.Name
}

// IsInterface reports whether the declaration is an interface. An empty kind
// is treated as an interface.
func (i Interface) IsInterface() bool {
	return i.Kind == "" || i.Kind == KindInterface
}

// Method is a method signature declared on an interface.
type Method struct {
	Name    string    `yaml:"name" toml:"name" json:"name"`
	Params  []Param   `yaml:"params,omitempty" toml:"params" json:"params,omitempty"`
	Returns []TypeRef `yaml:"returns,omitempty" toml:"returns" json:"returns,omitempty"`
}

// Param is a named method parameter. Names are significant: arguments are
// bound by name when a proxy method is dispatched.
type Param struct {
	Name     string  `yaml:"name" toml:"name" json:"name"`
	Type     TypeRef `yaml:"type" toml:"type" json:"type"`
	Variadic bool    `yaml:"variadic,omitempty" toml:"variadic" json:"variadic,omitempty"`
}

// ParamNames returns the parameter names in declaration order.
func (m Method) ParamNames() []string {
	names := make([]string, len(m.Params))
	for i, p := range m.Params {
		names[i] = p.Name
	}
	return names
}

// SameParams reports whether both methods declare the same parameter list,
// comparing names, types and variadic flags in order.
func (m Method) SameParams(other Method) bool {
	if len(m.Params) != len(other.Params) {
		return false
	}
	for i := range m.Params {
		a, b := m.Params[i], other.Params[i]
		if a.Name != b.Name || a.Variadic != b.Variadic || a.Type.String() != b.Type.String() {
			return false
		}
	}
	return true
}

// Clone returns a deep copy of the method.
func (m Method) Clone() Method {
	out := Method{Name: m.Name}
	if m.Params != nil {
		out.Params = make([]Param, len(m.Params))
		for i, p := range m.Params {
			out.Params[i] = Param{Name: p.Name, Type: p.Type.Clone(), Variadic: p.Variadic}
		}
	}
	if m.Returns != nil {
		out.Returns = make([]TypeRef, len(m.Returns))
		for i, r := range m.Returns {
			out.Returns[i] = r.Clone()
		}
	}
	return out
}

// String renders the method the way it would be written in an interface body.
func (m Method) String() string {
	var b strings.Builder
	b.WriteString(m.Name)
	b.WriteByte('(')
	for i, p := range m.Params {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(p.Name)
		b.WriteByte(' ')
		if p.Variadic {
			b.WriteString("...")
		}
		b.WriteString(p.Type.String())
	}
	b.WriteByte(')')
	switch len(m.Returns) {
	case 0:
	case 1:
		b.WriteByte(' ')
		b.WriteString(m.Returns[0].String())
	default:
		b.WriteString(" (")
		for i, r := range m.Returns {
			if i > 0 {
				b.WriteString(", ")
			}
			b.WriteString(r.String())
		}
		b.WriteByte(')')
	}
	return b.String()
}
