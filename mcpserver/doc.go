// Package mcpserver provides the Model Context Protocol (MCP) server implementation.
//
// The server exposes a single tool, generate_verified_code, which runs the
// generate, audit and execute loop for a task and returns the run result as
// JSON text. It uses the mark3labs/mcp-go library for the protocol details.
//
// The server supports both stdio and streamable HTTP transports. In HTTP mode
// the handler is mounted on the API router under /mcp.
//
// Usage:
//
//	server, err := mcpserver.New(config, logger, orchestrator)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	err = server.ServeStdio()
package mcpserver
