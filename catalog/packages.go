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
	"context"
	"errors"
	"fmt"
	"go/ast"
	"go/token"
	"go/types"
	"sort"
	"strings"

	"golang.org/x/tools/go/packages"
)

// NarrowsDirective is the doc comment directive that declares which
// interface a proxy narrows:
//
//	//repoproxy:narrows BeerRepository
//	type VersionedBeerRepository interface { ... }
const NarrowsDirective = "//repoproxy:narrows"

const loadMode = packages.NeedName | packages.NeedTypes | packages.NeedSyntax | packages.NeedTypesInfo

// LoadPackages type-checks the Go packages matched by patterns, relative to
// dir, and returns every named interface they declare. Interfaces embedded
// from other packages are included too so that extends chains resolve. IDs
// are "<import path>.<name>".
func LoadPackages(ctx context.Context, dir string, patterns ...string) ([]Interface, error) {
	if len(patterns) == 0 {
		patterns = []string{"."}
	}
	cfg := &packages.Config{
		Context: ctx,
		Mode:    loadMode,
		Dir:     dir,
	}
	pkgs, err := packages.Load(cfg, patterns...)
	if err != nil {
		return nil, fmt.Errorf("failed to load packages %v: %w", patterns, err)
	}

	var loadErrs []error
	packages.Visit(pkgs, nil, func(p *packages.Package) {
		for _, e := range p.Errors {
			loadErrs = append(loadErrs, e)
		}
	})
	if len(loadErrs) > 0 {
		return nil, fmt.Errorf("failed to load packages %v: %w", patterns, errors.Join(loadErrs...))
	}

	l := &packageLoader{seen: map[string]bool{}, narrows: map[string]string{}}
	for _, pkg := range pkgs {
		l.collectDirectives(pkg)
	}
	for _, pkg := range pkgs {
		scope := pkg.Types.Scope()
		names := scope.Names()
		for _, name := range names {
			tn, ok := scope.Lookup(name).(*types.TypeName)
			if !ok || tn.IsAlias() {
				continue
			}
			named, ok := tn.Type().(*types.Named)
			if !ok {
				continue
			}
			l.add(named)
		}
	}
	for len(l.pending) > 0 {
		next := l.pending[0]
		l.pending = l.pending[1:]
		l.add(next)
	}

	sort.Slice(l.out, func(i, j int) bool { return l.out[i].ID() < l.out[j].ID() })
	return l.out, nil
}

type packageLoader struct {
	out     []Interface
	pending []*types.Named
	seen    map[string]bool
	narrows map[string]string
}

func (l *packageLoader) add(named *types.Named) {
	obj := named.Obj()
	if obj.Pkg() == nil {
		return
	}
	id := obj.Pkg().Path() + "." + obj.Name()
	if l.seen[id] {
		return
	}
	iface, ok := named.Underlying().(*types.Interface)
	if !ok {
		return
	}
	l.seen[id] = true

	decl := Interface{
		Name:    obj.Name(),
		Package: obj.Pkg().Path(),
		Kind:    KindInterface,
		Narrows: l.narrows[id],
	}
	for i := 0; i < iface.NumEmbeddeds(); i++ {
		embedded, ok := types.Unalias(iface.EmbeddedType(i)).(*types.Named)
		if !ok || embedded.Obj().Pkg() == nil {
			continue
		}
		decl.Extends = append(decl.Extends, embedded.Obj().Pkg().Path()+"."+embedded.Obj().Name())
		l.pending = append(l.pending, embedded)
	}
	for i := 0; i < iface.NumExplicitMethods(); i++ {
		decl.Methods = append(decl.Methods, methodOf(iface.ExplicitMethod(i)))
	}
	l.out = append(l.out, decl)
}

// collectDirectives records narrows directives found in type declaration docs.
func (l *packageLoader) collectDirectives(pkg *packages.Package) {
	for _, file := range pkg.Syntax {
		for _, d := range file.Decls {
			gen, ok := d.(*ast.GenDecl)
			if !ok || gen.Tok != token.TYPE {
				continue
			}
			for _, spec := range gen.Specs {
				ts, ok := spec.(*ast.TypeSpec)
				if !ok {
					continue
				}
				doc := ts.Doc
				if doc == nil && len(gen.Specs) == 1 {
					doc = gen.Doc
				}
				if target := narrowsTarget(doc); target != "" {
					if !strings.Contains(target, ".") {
						target = pkg.PkgPath + "." + target
					}
					l.narrows[pkg.PkgPath+"."+ts.Name.Name] = target
				}
			}
		}
	}
}

func narrowsTarget(doc *ast.CommentGroup) string {
	if doc == nil {
		return ""
	}
	for _, c := range doc.List {
		if rest, ok := strings.CutPrefix(c.Text, NarrowsDirective); ok {
			return strings.TrimSpace(rest)
		}
	}
	return ""
}

func methodOf(fn *types.Func) Method {
	sig := fn.Type().(*types.Signature)
	m := Method{Name: fn.Name()}
	params := sig.Params()
	for i := 0; i < params.Len(); i++ {
		v := params.At(i)
		p := Param{Name: v.Name(), Type: typeRefOf(v.Type())}
		if sig.Variadic() && i == params.Len()-1 {
			if s, ok := v.Type().(*types.Slice); ok {
				p.Type = typeRefOf(s.Elem())
				p.Variadic = true
			}
		}
		m.Params = append(m.Params, p)
	}
	results := sig.Results()
	for i := 0; i < results.Len(); i++ {
		m.Returns = append(m.Returns, typeRefOf(results.At(i).Type()))
	}
	return m
}

func typeRefOf(t types.Type) TypeRef {
	switch tt := types.Unalias(t).(type) {
	case *types.Basic:
		return TypeRef{Builtin: tt.Name()}
	case *types.Named:
		obj := tt.Obj()
		if obj.Pkg() == nil {
			return TypeRef{Builtin: obj.Name()}
		}
		if tt.TypeArgs().Len() > 0 {
			return TypeRef{Expr: types.TypeString(tt, nil)}
		}
		return TypeRef{Named: obj.Name(), Pkg: obj.Pkg().Path()}
	case *types.Pointer:
		ref := typeRefOf(tt.Elem())
		if ref.Pointer || ref.Expr != "" {
			return TypeRef{Expr: types.TypeString(tt, nil)}
		}
		ref.Pointer = true
		return ref
	case *types.Slice:
		elem := typeRefOf(tt.Elem())
		return TypeRef{Slice: true, Elem: &elem}
	case *types.Map:
		key := typeRefOf(tt.Key())
		val := typeRefOf(tt.Elem())
		return TypeRef{Map: true, MapKey: &key, Elem: &val}
	case *types.Interface:
		if tt.Empty() {
			return TypeRef{Builtin: "any"}
		}
	}
	return TypeRef{Expr: types.TypeString(t, nil)}
}
