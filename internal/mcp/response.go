package mcp

import (
	"encoding/json"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// createJSONResponse marshals data as the single text content block of a
// tool result, the teacher's standard shape for MCP tool responses.
func createJSONResponse(data interface{}) (*mcp.CallToolResult, error) {
	content, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal response data: %w", err)
	}
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: string(content)},
		},
	}, nil
}

// createErrorResponse reports a tool-level failure inside the result body
// with IsError set, per the MCP SDK contract: tool errors must be visible
// to the calling model so it can self-correct, not surfaced as a
// protocol-level error.
func createErrorResponse(operation string, err error) (*mcp.CallToolResult, error) {
	response, marshalErr := createJSONResponse(map[string]interface{}{
		"success":   false,
		"error":     err.Error(),
		"operation": operation,
	})
	if marshalErr != nil {
		return nil, marshalErr
	}
	response.IsError = true
	return response, nil
}
