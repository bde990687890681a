// Package main is the entry point for the nexus server.
//
// nexus turns a natural-language task into Python code that has passed a
// model-driven security audit and run to a clean exit in a sandbox. Failures
// from either gate are fed back to the code model until it succeeds or the
// retry budget is spent.
//
// The service is exposed over HTTP (POST /generate plus the MCP streamable
// transport at /mcp) or over MCP stdio. The application uses Uber's fx
// framework for dependency injection and lifecycle management, with zap for
// structured logging and viper for configuration.
package main
