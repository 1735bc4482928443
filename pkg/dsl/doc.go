// Package dsl provides a fluent builder for conversation definitions,
// useful for tests and programs that generate flows instead of loading
// them from YAML.
package dsl
