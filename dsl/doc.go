// Package dsl defines the Goa-AI design-time DSL used to declare agents,
// toolsets, MCP servers, and run policies. The functions in this package
// are intended to be used from Goa service designs and drive the goa-ai
// code generators; they are not used at runtime.
package dsl


