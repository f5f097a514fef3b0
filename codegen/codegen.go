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

// Package codegen renders synthesized proxy descriptors as Go source: one
// struct per proxy embedding *dispatch.Proxy, with a typed method per
// descriptor method that dispatches to its versioned command.
package codegen

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/dave/jennifer/jen"

	"github.com/tomoncle/repoproxy/catalog"
	"github.com/tomoncle/repoproxy/proxy"
)

const (
	dispatchPkg = "github.com/tomoncle/repoproxy/dispatch"
	proxyPkg    = "github.com/tomoncle/repoproxy/proxy"
)

// Options controls the generated file.
type Options struct {
	// PackagePath is the import path of the generated package. Types from
	// this path are referenced unqualified.
	PackagePath string
	// PackageName defaults to the last element of PackagePath.
	PackageName string
	// Header is an extra comment placed under the generated-code notice.
	Header string
}

// TypeName returns the Go identifier generated for a proxy name.
func TypeName(proxyName string) string {
	return strings.ReplaceAll(proxyName, proxy.ProxySuffix, "Proxy")
}

// Generate renders every descriptor into one formatted Go file.
func Generate(descs []*proxy.TypeDescriptor, opts Options) ([]byte, error) {
	name := opts.PackageName
	if name == "" {
		name = filepath.Base(opts.PackagePath)
	}
	if name == "" || name == "." || name == "/" {
		return nil, fmt.Errorf("codegen: package name required")
	}

	f := jen.NewFilePathName(opts.PackagePath, name)
	f.HeaderComment("Code generated by repoproxy. DO NOT EDIT.")
	if opts.Header != "" {
		f.HeaderComment(opts.Header)
	}

	for _, d := range descs {
		if err := emitProxy(f, d); err != nil {
			return nil, err
		}
	}

	var buf bytes.Buffer
	if err := f.Render(&buf); err != nil {
		return nil, fmt.Errorf("codegen: render: %w", err)
	}
	return buf.Bytes(), nil
}

// WriteFile generates the descriptors and writes them to path.
func WriteFile(path string, descs []*proxy.TypeDescriptor, opts Options) error {
	src, err := Generate(descs, opts)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	return os.WriteFile(path, src, 0644)
}

func emitProxy(f *jen.File, d *proxy.TypeDescriptor) error {
	typeName := TypeName(d.ProxyName)
	constName := typeName + "Name"

	seen := make(map[string]bool, len(d.Methods))
	for _, m := range d.Methods {
		if seen[m.Signature.Name] {
			return fmt.Errorf("codegen: %s: overloaded method %s cannot be rendered as Go", d.ProxyName, m.Signature.Name)
		}
		seen[m.Signature.Name] = true
	}

	f.Commentf("%s is the registry name of %s.", constName, typeName)
	f.Const().Id(constName).Op("=").Lit(d.ProxyName)
	f.Line()

	f.Commentf("%s dispatches %s to versioned commands. It implements %s.", typeName, d.Interface, d.SourceInterface)
	f.Type().Id(typeName).Struct(
		jen.Op("*").Qual(dispatchPkg, "Proxy"),
	)
	f.Line()

	f.Func().Id("New"+typeName).Params(
		jen.Id("reg").Op("*").Qual(proxyPkg, "Registry"),
		jen.Id("exec").Qual(dispatchPkg, "Executor"),
	).Params(jen.Op("*").Id(typeName), jen.Error()).Block(
		jen.List(jen.Id("p"), jen.Err()).Op(":=").Qual(dispatchPkg, "New").Call(jen.Id("reg"), jen.Id(constName), jen.Id("exec")),
		jen.If(jen.Err().Op("!=").Nil()).Block(jen.Return(jen.Nil(), jen.Err())),
		jen.Return(jen.Op("&").Id(typeName).Values(jen.Dict{jen.Id("Proxy"): jen.Id("p")}), jen.Nil()),
	)

	for _, m := range d.Methods {
		if err := emitMethod(f, typeName, m); err != nil {
			return fmt.Errorf("codegen: %s.%s: %w", d.ProxyName, m.Signature.Name, err)
		}
	}
	return nil
}

func emitMethod(f *jen.File, typeName string, m proxy.MethodDescriptor) error {
	sig := m.Signature
	if sig.Name == "Proxy" {
		return fmt.Errorf("method name collides with the embedded dispatch proxy")
	}
	taken := map[string]bool{}
	for _, p := range sig.Params {
		taken[p.Name] = true
	}
	recv := freeName("r", taken)
	taken[recv] = true

	var params []jen.Code
	ctxExpr := jen.Qual("context", "Background").Call()
	dict := jen.Dict{}
	for i, p := range sig.Params {
		name := p.Name
		if name == "" || name == "_" {
			name = freeName(fmt.Sprintf("arg%d", i), taken)
			taken[name] = true
		}
		typ := typeCode(p.Type)
		if p.Variadic {
			typ = jen.Op("...").Add(typ)
		}
		params = append(params, jen.Id(name).Add(typ))
		if p.Type.IsContext() {
			ctxExpr = jen.Id(name)
			continue
		}
		dict[jen.Lit(p.Name)] = jen.Id(name)
	}

	var args jen.Code = jen.Nil()
	if len(dict) > 0 {
		args = jen.Qual(dispatchPkg, "Args").Values(dict)
	}

	results := make([]jen.Code, len(sig.Returns))
	for i, r := range sig.Returns {
		results[i] = typeCode(r)
	}

	invoke := func(dest jen.Code) *jen.Statement {
		return jen.Id(recv).Dot("Proxy").Dot("Invoke").Call(ctxExpr, jen.Lit(sig.Name), args, dest)
	}
	out := freeName("out", taken)
	errName := freeName("err", taken)

	var body []jen.Code
	switch shape(sig.Returns) {
	case resultErr:
		body = []jen.Code{jen.Return(invoke(jen.Nil()))}
	case resultValueErr:
		body = []jen.Code{
			jen.Var().Id(out).Add(typeCode(sig.Returns[0])),
			jen.Id(errName).Op(":=").Add(invoke(jen.Op("&").Id(out))),
			jen.Return(jen.Id(out), jen.Id(errName)),
		}
	case resultValue:
		body = []jen.Code{
			jen.Var().Id(out).Add(typeCode(sig.Returns[0])),
			jen.If(jen.Id(errName).Op(":=").Add(invoke(jen.Op("&").Id(out))), jen.Id(errName).Op("!=").Nil()).Block(
				jen.Panic(jen.Id(errName)),
			),
			jen.Return(jen.Id(out)),
		}
	case resultNone:
		body = []jen.Code{
			jen.If(jen.Id(errName).Op(":=").Add(invoke(jen.Nil())), jen.Id(errName).Op("!=").Nil()).Block(
				jen.Panic(jen.Id(errName)),
			),
		}
	default:
		return fmt.Errorf("unsupported results %s", sig.String())
	}

	f.Line()
	f.Commentf("%s runs %s.", sig.Name, m.VersionedCommandName)
	fn := f.Func().Params(jen.Id(recv).Op("*").Id(typeName)).Id(sig.Name).Params(params...)
	if len(results) > 0 {
		fn.Params(results...)
	}
	fn.Block(body...)
	return nil
}

type resultShape int

const (
	resultUnsupported resultShape = iota
	resultNone
	resultErr
	resultValue
	resultValueErr
)

func shape(returns []catalog.TypeRef) resultShape {
	switch len(returns) {
	case 0:
		return resultNone
	case 1:
		if returns[0].IsError() {
			return resultErr
		}
		return resultValue
	case 2:
		if !returns[0].IsError() && returns[1].IsError() {
			return resultValueErr
		}
	}
	return resultUnsupported
}

// typeCode renders a type reference, qualifying named types by package.
func typeCode(t catalog.TypeRef) *jen.Statement {
	s := jen.Null()
	if t.Pointer {
		s = jen.Op("*")
	}
	switch {
	case t.Expr != "":
		return s.Id(t.Expr)
	case t.Slice && t.Elem != nil:
		return s.Index().Add(typeCode(*t.Elem))
	case t.Map && t.MapKey != nil && t.Elem != nil:
		return s.Map(typeCode(*t.MapKey)).Add(typeCode(*t.Elem))
	case t.Builtin != "":
		return s.Id(t.Builtin)
	case t.Pkg != "":
		return s.Qual(t.Pkg, t.Named)
	default:
		return s.Id(t.Named)
	}
}

func freeName(base string, taken map[string]bool) string {
	name := base
	for i := 1; taken[name]; i++ {
		name = fmt.Sprintf("%s%d", base, i)
	}
	return name
}
