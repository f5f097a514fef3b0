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

var builtins = map[string]bool{
	"any": true, "bool": true, "byte": true, "complex64": true, "complex128": true,
	"error": true, "float32": true, "float64": true, "int": true, "int8": true,
	"int16": true, "int32": true, "int64": true, "rune": true, "string": true,
	"uint": true, "uint8": true, "uint16": true, "uint32": true, "uint64": true,
	"uintptr": true,
}

// TypeRef is a reference to a Go type with its modifiers.
type TypeRef struct {
	Builtin string // "string", "int", "error", "any"
	Named   string // name of a declared type
	Pkg     string // import path of Named, empty for the declaring package
	Pointer bool
	Slice   bool
	Map     bool
	Elem    *TypeRef // slice element or map value
	MapKey  *TypeRef
	// Expr holds the verbatim expression of types that have no structured
	// form here (funcs, channels, generic instantiations).
	Expr string
}

// ParseTypeRef parses expressions such as "string", "*Beer", "[]*Beer",
// "map[string]any" and "github.com/acme/beer.Beer".
func ParseTypeRef(s string) TypeRef {
	s = strings.TrimSpace(s)

	if strings.HasPrefix(s, "*") {
		inner := ParseTypeRef(s[1:])
		if inner.Pointer {
			return TypeRef{Expr: s}
		}
		inner.Pointer = true
		return inner
	}

	if strings.HasPrefix(s, "[]") {
		elem := ParseTypeRef(s[2:])
		return TypeRef{Slice: true, Elem: &elem}
	}

	if strings.HasPrefix(s, "map[") {
		depth := 0
		closeBracket := -1
		for i := 3; i < len(s); i++ {
			if s[i] == '[' {
				depth++
			} else if s[i] == ']' {
				depth--
				if depth == 0 {
					closeBracket = i
					break
				}
			}
		}
		if closeBracket < 0 {
			return TypeRef{Expr: s}
		}
		key := ParseTypeRef(s[4:closeBracket])
		val := ParseTypeRef(s[closeBracket+1:])
		return TypeRef{Map: true, MapKey: &key, Elem: &val}
	}

	if s == "interface{}" {
		return TypeRef{Builtin: "any"}
	}
	if builtins[s] {
		return TypeRef{Builtin: s}
	}
	if strings.ContainsAny(s, "()[]{} ,") || s == "" {
		return TypeRef{Expr: s}
	}

	slash := strings.LastIndex(s, "/")
	if dot := strings.LastIndex(s, "."); dot > slash {
		return TypeRef{Named: s[dot+1:], Pkg: s[:dot]}
	}
	return TypeRef{Named: s}
}

// String renders the reference with fully qualified package paths, so that
// ParseTypeRef(r.String()) yields r again.
func (r TypeRef) String() string {
	var s string
	switch {
	case r.Expr != "":
		return r.Expr
	case r.Map:
		s = "map[" + refString(r.MapKey) + "]" + refString(r.Elem)
	case r.Slice:
		s = "[]" + refString(r.Elem)
	case r.Builtin != "":
		s = r.Builtin
	case r.Named != "":
		s = r.Named
		if r.Pkg != "" {
			s = r.Pkg + "." + r.Named
		}
	default:
		s = "any"
	}
	if r.Pointer {
		s = "*" + s
	}
	return s
}

func refString(r *TypeRef) string {
	if r == nil {
		return "any"
	}
	return r.String()
}

// Is reports whether r names the declared type pkg.name exactly, without
// modifiers.
func (r TypeRef) Is(pkg, name string) bool {
	return !r.Pointer && !r.Slice && !r.Map && r.Expr == "" && r.Pkg == pkg && r.Named == name
}

// IsContext reports whether r is context.Context.
func (r TypeRef) IsContext() bool {
	return r.Is("context", "Context")
}

// IsError reports whether r is the builtin error type.
func (r TypeRef) IsError() bool {
	return !r.Pointer && r.Builtin == "error"
}

// Clone returns a deep copy of the reference.
func (r TypeRef) Clone() TypeRef {
	out := r
	if r.Elem != nil {
		elem := r.Elem.Clone()
		out.Elem = &elem
	}
	if r.MapKey != nil {
		key := r.MapKey.Clone()
		out.MapKey = &key
	}
	return out
}

func (r TypeRef) MarshalText() ([]byte, error) {
	return []byte(r.String()), nil
}

func (r *TypeRef) UnmarshalText(text []byte) error {
	*r = ParseTypeRef(string(text))
	return nil
}
