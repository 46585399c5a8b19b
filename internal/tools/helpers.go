// Package tools implements the MCP tool handlers for the drift
// engine.
//
// Each tool is one file and receives its dependencies via its struct
// (DIP). User mistakes (bad arguments, missing truth) come back as
// tool-result errors the AI can relay; system failures are returned
// as Go errors.
package tools

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/nvelasco/driftwatch/internal/config"
	"github.com/nvelasco/driftwatch/internal/scoring"
)

// intArg extracts an integer argument from a tool request.
func intArg(req mcp.CallToolRequest, key string, defaultVal int) int {
	v, ok := req.GetArguments()[key].(float64)
	if !ok {
		return defaultVal
	}
	return int(v)
}

// boolArg extracts a boolean argument from a tool request.
func boolArg(req mcp.CallToolRequest, key string, defaultVal bool) bool {
	v, ok := req.GetArguments()[key].(bool)
	if !ok {
		return defaultVal
	}
	return v
}

// FindProjectRoot walks up from the current working directory looking
// for an existing driftwatch/ directory. If none is found, returns
// cwd — the first drift_set_truth call will create the state there.
func FindProjectRoot() (string, error) {
	dir, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("getting working directory: %w", err)
	}

	current := dir
	for {
		candidate := config.DriftPath(current)
		if info, err := os.Stat(candidate); err == nil && info.IsDir() {
			return current, nil
		}

		parent := filepath.Dir(current)
		if parent == current {
			return dir, nil
		}
		current = parent
	}
}

// parseItems decodes a JSON array of scorable items from a tool
// argument. Accepts objects with id, title, and optional description
// and category.
func parseItems(raw string) ([]scoring.Item, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}

	var items []scoring.Item
	if err := json.Unmarshal([]byte(raw), &items); err != nil {
		return nil, fmt.Errorf("items must be a JSON array of {id, title, description?, category?}: %w", err)
	}
	for i, it := range items {
		if it.ID == "" {
			return nil, fmt.Errorf("item %d has no id", i)
		}
		if it.Title == "" {
			return nil, fmt.Errorf("item %q has no title", it.ID)
		}
	}
	return items, nil
}

// parseList decodes a JSON array of strings, also accepting a simple
// newline-separated list for convenience.
func parseList(raw string) []string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}

	var list []string
	if err := json.Unmarshal([]byte(raw), &list); err == nil {
		return list
	}

	var out []string
	for _, line := range strings.Split(raw, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			out = append(out, line)
		}
	}
	return out
}

// statusIcon maps an alignment status to a compact marker for tool
// responses.
func statusIcon(status scoring.Status) string {
	switch status {
	case scoring.StatusAllowed:
		return "✅"
	case scoring.StatusWarning:
		return "⚠️"
	case scoring.StatusReview:
		return "🔍"
	case scoring.StatusBlocked:
		return "⛔"
	default:
		return "•"
	}
}
