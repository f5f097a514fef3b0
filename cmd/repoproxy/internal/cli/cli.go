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

// Package cli implements the repoproxy command.
package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/tomoncle/repoproxy"
	"github.com/tomoncle/repoproxy/codegen"
	"github.com/tomoncle/repoproxy/config"
	"github.com/tomoncle/repoproxy/proxy"
)

// Config holds the command-line settings.
type Config struct {
	Command    string
	ConfigFile string
	Catalog    string
	Suffix     string
	// SuffixSet distinguishes an explicit empty -suffix from an absent one.
	SuffixSet   bool
	Format      string
	Output      string
	PackagePath string
	PackageName string
}

// Run executes cfg.Command, writing inspect output to w.
func Run(ctx context.Context, cfg Config, w io.Writer) error {
	reg, err := synthesize(ctx, cfg)
	if err != nil {
		return err
	}

	switch cfg.Command {
	case "inspect":
		return inspect(reg, cfg.Format, w)
	case "generate":
		if cfg.PackagePath == "" {
			return fmt.Errorf("generate: -pkgpath is required")
		}
		opts := codegen.Options{PackagePath: cfg.PackagePath, PackageName: cfg.PackageName}
		if err := codegen.WriteFile(cfg.Output, reg.Descriptors(), opts); err != nil {
			return err
		}
		_, err := fmt.Fprintf(w, "wrote %d proxies to %s\n", reg.Len(), cfg.Output)
		return err
	default:
		return fmt.Errorf("unknown command %q", cfg.Command)
	}
}

func synthesize(ctx context.Context, cfg Config) (*proxy.Registry, error) {
	switch cfg.Command {
	case "inspect", "generate":
	default:
		return nil, fmt.Errorf("unknown command %q", cfg.Command)
	}

	conf, err := config.Load(cfg.ConfigFile)
	if err != nil {
		return nil, err
	}
	if cfg.Catalog != "" {
		conf.Proxy.Catalog = cfg.Catalog
		conf.Proxy.Packages = nil
	}
	if cfg.SuffixSet {
		conf.Proxy.VersionSuffix = cfg.Suffix
	}

	decls, marker, err := repoproxy.LoadCatalog(ctx, conf.Proxy)
	if err != nil {
		return nil, err
	}
	return proxy.Synthesize(decls, conf.Proxy.VersionSuffix, proxy.WithMarker(marker))
}

func inspect(reg *proxy.Registry, format string, w io.Writer) error {
	descs := reg.Descriptors()
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(descs)
	case "yaml", "":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(descs); err != nil {
			return err
		}
		return enc.Close()
	default:
		return fmt.Errorf("unknown format %q", format)
	}
}
