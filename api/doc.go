// Package api serves the HTTP interface: POST /generate runs the loop for a
// task, GET /health and GET /metrics support operations, and /mcp carries the
// MCP streamable HTTP transport.
//
// A run that ends SUCCESS or FAILED is returned with 200. Errors that abort a
// run map to 400 (blank task), 502 (model endpoint unreachable), 504
// (cancelled or timed out) or 500.
package api
