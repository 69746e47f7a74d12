package mcp

import (
	"context"
	"errors"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
)

// defaultTimeRange returns start/end defaulting to the last 30 days.
func defaultTimeRange(startStr, endStr string) (time.Time, time.Time, error) {
	var start, end time.Time
	var err error

	if endStr != "" {
		end, err = parseFlexTime(endStr)
		if err != nil {
			return time.Time{}, time.Time{}, err
		}
	} else {
		end = time.Now()
	}

	if startStr != "" {
		start, err = parseFlexTime(startStr)
		if err != nil {
			return time.Time{}, time.Time{}, err
		}
	} else {
		start = end.AddDate(0, 0, -30)
	}

	return start, end, nil
}

func parseFlexTime(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339, s)
	if err == nil {
		return t, nil
	}
	t, err = time.Parse("2006-01-02", s)
	if err == nil {
		return t, nil
	}
	return time.Time{}, err
}

// --- Tool definitions ---

var toolListPrograms = mcp.NewTool("list_programs",
	mcp.WithDescription("List the loaded workout programs in catalog order with their day labels and exercise counts."),
)

var toolGetProgram = mcp.NewTool("get_program",
	mcp.WithDescription("Get one program with every day and its exercises (sets, reps, RPE, rest, notes)."),
	mcp.WithString("name", mcp.Required(), mcp.Description("Program name or id (e.g. UpperLower, PPL)")),
)

var toolSearchLibrary = mcp.NewTool("search_library",
	mcp.WithDescription("Search the exercise library. Both filters are optional; the query matches exercise names case-insensitively."),
	mcp.WithString("muscle", mcp.Description("Muscle group to filter by (e.g. Chest, Back, Legs)")),
	mcp.WithString("query", mcp.Description("Substring of the exercise name")),
)

var toolGetHistory = mcp.NewTool("get_history",
	mcp.WithDescription("Finished sessions, most recent first. Set weights are in kg."),
	mcp.WithNumber("limit", mcp.Description("Maximum sessions to return. Defaults to 20; 0 returns all.")),
)

var toolGetPersonalRecords = mcp.NewTool("get_personal_records",
	mcp.WithDescription("Heaviest logged weight per exercise and the current training-day streak."),
)

var toolGetArchivedSets = mcp.NewTool("get_archived_sets",
	mcp.WithDescription("Query individual sets from the Postgres session archive. Only available when the server has a database configured."),
	mcp.WithString("exercise", mcp.Description("Filter by exact exercise name")),
	mcp.WithString("start", mcp.Description("Start date (ISO 8601 or YYYY-MM-DD). Defaults to 30 days ago.")),
	mcp.WithString("end", mcp.Description("End date (ISO 8601 or YYYY-MM-DD). Defaults to now.")),
)

// --- Tool handlers ---

func (h *handlers) listPrograms(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	programs, err := h.ds.ListPrograms(ctx)
	if err != nil {
		h.log.Error("mcp list_programs", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}
	return jsonResult(programs)
}

func (h *handlers) getProgram(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name, err := req.RequireString("name")
	if err != nil {
		return mcp.NewToolResultError("name parameter is required"), nil
	}

	p, err := h.ds.GetProgram(ctx, name)
	if errors.Is(err, ErrProgramNotFound) {
		return mcp.NewToolResultError("no program named " + name), nil
	}
	if err != nil {
		h.log.Error("mcp get_program", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}
	return jsonResult(p)
}

func (h *handlers) searchLibrary(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	entries, err := h.ds.SearchLibrary(ctx, req.GetString("muscle", ""), req.GetString("query", ""))
	if err != nil {
		h.log.Error("mcp search_library", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}
	return jsonResult(entries)
}

func (h *handlers) getHistory(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	limit := req.GetInt("limit", 20)
	if limit < 0 {
		return mcp.NewToolResultError("limit must not be negative"), nil
	}

	sessions, err := h.ds.GetHistory(ctx, limit)
	if err != nil {
		h.log.Error("mcp get_history", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}
	return jsonResult(sessions)
}

func (h *handlers) getPersonalRecords(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	records, err := h.ds.GetRecords(ctx)
	if err != nil {
		h.log.Error("mcp get_personal_records", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}
	return jsonResult(records)
}

func (h *handlers) getArchivedSets(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	start, end, err := defaultTimeRange(req.GetString("start", ""), req.GetString("end", ""))
	if err != nil {
		return mcp.NewToolResultError("invalid date format: " + err.Error()), nil
	}

	sets, err := h.ds.QueryArchivedSets(ctx, start, end, req.GetString("exercise", ""))
	if errors.Is(err, ErrNoArchive) {
		return mcp.NewToolResultError("the session archive is not configured on this server"), nil
	}
	if err != nil {
		h.log.Error("mcp get_archived_sets", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}
	return jsonResult(sets)
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	result, err := mcp.NewToolResultJSON(v)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}
