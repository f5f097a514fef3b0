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
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// File is the on-disk form of an interface catalog.
//
//	marker: Repository
//	interfaces:
//	  - name: BeerRepository
//	    extends: [Repository]
//	    methods:
//	      - name: FindBeers
//	        params: [{name: name, type: string}]
//	        returns: ["[]Beer", error]
type File struct {
	Marker     string      `yaml:"marker,omitempty" toml:"marker"`
	Interfaces []Interface `yaml:"interfaces" toml:"interfaces"`
}

// LoadFile reads a catalog file, choosing the decoder by extension: ".toml"
// for TOML, anything else for YAML.
func LoadFile(path string) (*File, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		var f File
		if _, err := toml.DecodeFile(path, &f); err != nil {
			return nil, fmt.Errorf("failed to parse catalog file %s: %w", path, err)
		}
		return f.normalize(), nil
	default:
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read catalog file: %w", err)
		}
		f, err := ParseYAML(data)
		if err != nil {
			return nil, fmt.Errorf("failed to parse catalog file %s: %w", path, err)
		}
		return f, nil
	}
}

// ParseYAML decodes a YAML catalog document.
func ParseYAML(data []byte) (*File, error) {
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, err
	}
	return f.normalize(), nil
}

// WriteYAML encodes the catalog as YAML at path, creating directories as needed.
func (f *File) WriteYAML(path string) error {
	data, err := yaml.Marshal(f)
	if err != nil {
		return fmt.Errorf("failed to serialize catalog: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write catalog file: %w", err)
	}
	return nil
}

func (f *File) normalize() *File {
	if f.Marker == "" {
		f.Marker = DefaultMarker
	}
	for i := range f.Interfaces {
		if f.Interfaces[i].Kind == "" {
			f.Interfaces[i].Kind = KindInterface
		}
	}
	return f
}
