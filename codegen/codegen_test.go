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

package codegen

import (
	"go/parser"
	"go/token"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tomoncle/repoproxy/catalog"
	"github.com/tomoncle/repoproxy/proxy"
)

type nopLogger struct{}

func (nopLogger) Debug(string, ...interface{}) {}
func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}

func param(name, typ string) catalog.Param {
	return catalog.Param{Name: name, Type: catalog.ParseTypeRef(typ)}
}

func returns(types ...string) []catalog.TypeRef {
	out := make([]catalog.TypeRef, len(types))
	for i, s := range types {
		out[i] = catalog.ParseTypeRef(s)
	}
	return out
}

func beerDescriptors(t *testing.T, methods ...catalog.Method) []*proxy.TypeDescriptor {
	t.Helper()
	decls := []catalog.Interface{
		{Name: "Repository"},
		{Name: "BeerRepository", Extends: []string{"Repository"}, Methods: methods},
	}
	reg, err := proxy.Synthesize(decls, proxy.DefaultVersionSuffix, proxy.WithLogger(nopLogger{}))
	require.NoError(t, err)
	return reg.Descriptors()
}

func generate(t *testing.T, descs []*proxy.TypeDescriptor) string {
	t.Helper()
	src, err := Generate(descs, Options{PackagePath: "example.com/beers"})
	require.NoError(t, err)
	_, err = parser.ParseFile(token.NewFileSet(), "beers_proxy.go", src, parser.AllErrors)
	require.NoError(t, err, string(src))
	return string(src)
}

func TestGenerate(t *testing.T) {
	src := generate(t, beerDescriptors(t,
		catalog.Method{
			Name:    "FindBeers",
			Params:  []catalog.Param{param("ctx", "context.Context"), param("name", "string")},
			Returns: returns("[]Beer", "error"),
		},
		catalog.Method{
			Name:    "CountBeers",
			Params:  []catalog.Param{{Name: "styles", Type: catalog.ParseTypeRef("string"), Variadic: true}},
			Returns: returns("int", "error"),
		},
		catalog.Method{
			Name:    "Touch",
			Params:  []catalog.Param{param("at", "time.Time")},
			Returns: returns("error"),
		},
		catalog.Method{Name: "Reset"},
	))

	assert.Contains(t, src, "// Code generated by repoproxy. DO NOT EDIT.")
	assert.Contains(t, src, "package beers")
	assert.Contains(t, src, `const BeerRepositoryProxyName = "BeerRepository_Proxy"`)
	assert.Contains(t, src, "type BeerRepositoryProxy struct {\n\t*dispatch.Proxy\n}")
	assert.Contains(t, src, "func NewBeerRepositoryProxy(reg *proxy.Registry, exec dispatch.Executor) (*BeerRepositoryProxy, error) {")

	assert.Contains(t, src, "func (r *BeerRepositoryProxy) FindBeers(ctx context.Context, name string) ([]Beer, error) {")
	assert.Contains(t, src, `r.Proxy.Invoke(ctx, "FindBeers", dispatch.Args{`)
	assert.Contains(t, src, `"name": name`)

	assert.Contains(t, src, "func (r *BeerRepositoryProxy) CountBeers(styles ...string) (int, error) {")
	assert.Contains(t, src, `r.Proxy.Invoke(context.Background(), "CountBeers"`)

	assert.Contains(t, src, "func (r *BeerRepositoryProxy) Touch(at time.Time) error {")
	assert.Contains(t, src, "func (r *BeerRepositoryProxy) Reset() {")
	assert.Contains(t, src, `r.Proxy.Invoke(context.Background(), "Reset", nil, nil)`)
	assert.Contains(t, src, "// Reset runs Reset_2.")
}

func TestGenerateRenamesClashingReceiver(t *testing.T) {
	src := generate(t, beerDescriptors(t, catalog.Method{
		Name:    "Rate",
		Params:  []catalog.Param{param("r", "int"), param("out", "string")},
		Returns: returns("float64", "error"),
	}))
	assert.Contains(t, src, "func (r1 *BeerRepositoryProxy) Rate(r int, out string) (float64, error) {")
	assert.Contains(t, src, "var out1 float64")
}

func TestGenerateRejectsOverloads(t *testing.T) {
	descs := beerDescriptors(t,
		catalog.Method{Name: "Find", Params: []catalog.Param{param("name", "string")}, Returns: returns("error")},
		catalog.Method{Name: "Find", Params: []catalog.Param{param("style", "string")}, Returns: returns("error")},
	)
	_, err := Generate(descs, Options{PackagePath: "example.com/beers"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "overloaded method Find")
}

func TestGenerateRejectsUnsupportedResults(t *testing.T) {
	descs := beerDescriptors(t, catalog.Method{Name: "Pair", Returns: returns("int", "int")})
	_, err := Generate(descs, Options{PackagePath: "example.com/beers"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported results")
}

func TestWriteFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "gen", "beers_proxy.go")
	descs := beerDescriptors(t, catalog.Method{Name: "Count", Returns: returns("int", "error")})
	require.NoError(t, WriteFile(path, descs, Options{PackagePath: "example.com/beers", PackageName: "beers"}))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "func (r *BeerRepositoryProxy) Count() (int, error) {")
}

func TestTypeName(t *testing.T) {
	assert.Equal(t, "BeerRepositoryProxy", TypeName("BeerRepository_Proxy"))
}
