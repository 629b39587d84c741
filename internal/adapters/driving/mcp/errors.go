// Package mcp provides an MCP (Model Context Protocol) server adapter for
// Tabula. It lets assistants run CRM queries, list document libraries and
// look up contact center conversations, receiving the results as tables.
package mcp

import "errors"

// ErrMissingToolkit is returned when the toolkit is not provided.
var ErrMissingToolkit = errors.New("mcp: toolkit is required")
