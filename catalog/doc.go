// Package catalog describes the interface declarations proxies are
// synthesized from, loads them from YAML, TOML or type-checked Go packages,
// and scans them for repository interfaces.
package catalog
