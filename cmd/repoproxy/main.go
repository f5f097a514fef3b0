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

// Command repoproxy synthesizes repository proxies from an interface catalog.
// "inspect" prints the registry; "generate" writes typed Go proxies.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/tomoncle/repoproxy/cmd/repoproxy/internal/cli"
)

func main() {
	cfg := cli.Config{}

	flag.StringVar(&cfg.ConfigFile, "config", "", "Path to a YAML or TOML config file (optional)")
	flag.StringVar(&cfg.Catalog, "catalog", "", "Path to a catalog file, overrides the config")
	flag.StringVar(&cfg.Suffix, "suffix", "", "Version suffix, overrides the config")
	flag.StringVar(&cfg.Format, "format", "yaml", "inspect output format: yaml or json")
	flag.StringVar(&cfg.Output, "output", "repoproxy_gen.go", "generate: output file")
	flag.StringVar(&cfg.PackagePath, "pkgpath", "", "generate: import path of the generated package (required)")
	flag.StringVar(&cfg.PackageName, "package", "", "generate: package name (default: last element of -pkgpath)")
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "usage: %s [flags] inspect|generate\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()

	if flag.NArg() != 1 {
		flag.Usage()
		os.Exit(2)
	}
	cfg.Command = flag.Arg(0)
	flag.Visit(func(f *flag.Flag) {
		if f.Name == "suffix" {
			cfg.SuffixSet = true
		}
	})

	if err := cli.Run(context.Background(), cfg, os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
