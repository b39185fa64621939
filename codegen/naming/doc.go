// Package naming contains shared naming helpers used by goa-ai code generators.
//
// The functions in this package centralize identifier sanitization and related
// naming conventions so generated code remains consistent across generators.
package naming
