package mcp

import (
	"context"
	"encoding/json"

	"github.com/mark3labs/mcp-go/mcp"
)

var resRoutines = mcp.NewResource(
	"fitlog://routines",
	"Routines",
	mcp.WithResourceDescription("All routines with their id, name and number of active workouts"),
	mcp.WithMIMEType("application/json"),
)

func (h *handlers) routines(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	list, err := h.ds.ListRoutines(ctx)
	if err != nil {
		return nil, err
	}

	data, err := json.Marshal(list)
	if err != nil {
		return nil, err
	}

	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      req.Params.URI,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}, nil
}
