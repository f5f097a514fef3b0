// Package repository declares the marker interface that identifies
// repository interfaces.
package repository
