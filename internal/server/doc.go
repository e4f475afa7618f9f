// Package server implements the MCP (Model Context Protocol) server for
// template color mapping.
//
// This package provides a JSON-RPC 2.0 server that exposes the mapper
// through the MCP protocol, so an MCP client can inspect templates and
// recolor them without going through the command line.
//
// # Protocol
//
// The server communicates over stdio using JSON-RPC 2.0:
//   - Input: JSON-RPC requests on stdin (one per line)
//   - Output: JSON-RPC responses on stdout
//
// Supported MCP methods:
//   - initialize: Protocol handshake
//   - tools/list: Enumerate available tools
//   - tools/call: Execute a tool with arguments
//   - ping: Health check
//
// # Available Tools
//
// Basic Image Information:
//   - image_load: Load image and get metadata, including its distinct color count
//   - image_dimensions: Get width and height
//
// Template Operations:
//   - image_palette: List the exact template colors, each one a region
//
// Mapping Operations:
//   - image_map: Recolor a template from a colors image
//   - image_map_compare: Time the serial and parallel strategies and check they agree
//
// # Image Caching
//
// The server keeps an in-memory cache of decoded images keyed by path, so
// one template can be mapped against many colors images without decoding
// it again. The cache persists for the lifetime of the server process.
//
// # Error Handling
//
// Tool execution errors are returned as JSON-RPC error responses with:
//   - code: -32000 (tool execution failure) or standard JSON-RPC codes
//   - message: Human-readable error description
//   - data: The Go error string
//
// # Usage
//
//	srv := server.New()
//	if err := srv.Run(); err != nil {
//	    log.Fatal(err)
//	}
package server
