// Package service hosts the directory MCP server over stdio or streamable HTTP.
package service
