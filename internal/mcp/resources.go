package mcp

import (
	"context"
	"encoding/json"

	"github.com/mark3labs/mcp-go/mcp"
)

const recentSessionCount = 10

func (h *handlers) catalog(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	programs, err := h.ds.ListPrograms(ctx)
	if err != nil {
		return nil, err
	}
	return jsonResource(req.Params.URI, map[string]any{"programs": programs})
}

func (h *handlers) recentSessions(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	sessions, err := h.ds.GetHistory(ctx, recentSessionCount)
	if err != nil {
		return nil, err
	}

	records, err := h.ds.GetRecords(ctx)
	if err != nil {
		h.log.Warn("recent_sessions: records query failed", "error", err)
	}

	summary := map[string]any{
		"sessions": sessions,
		"records":  records,
	}
	return jsonResource(req.Params.URI, summary)
}

func jsonResource(uri string, v any) ([]mcp.ResourceContents, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}, nil
}
