package domain

import "time"

// toolCallTimeout caps the time for a single directory read from an MCP handler.
const toolCallTimeout = 5 * time.Second
