// Package domain maps MCP tool and resource calls onto directory services.
package domain
