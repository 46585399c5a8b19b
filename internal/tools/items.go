package tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/nvelasco/driftwatch/internal/backlog"
)

// AddItemsTool handles the drift_add_items MCP tool. Registered items
// form the persistent set the drift monitor re-verifies on every tick.
type AddItemsTool struct {
	store backlog.Store
	root  string
}

// NewAddItemsTool creates an AddItemsTool with its dependencies.
func NewAddItemsTool(store backlog.Store, projectRoot string) *AddItemsTool {
	return &AddItemsTool{store: store, root: projectRoot}
}

// Definition returns the MCP tool definition for registration.
func (t *AddItemsTool) Definition() mcp.Tool {
	return mcp.NewTool("drift_add_items",
		mcp.WithDescription(
			"Register backlog items or sprint tasks in the persistent item set. "+
				"The drift monitor re-verifies this set on every tick, and audit reports "+
				"score it by default. Items with an existing id are replaced.",
		),
		mcp.WithString("items",
			mcp.Required(),
			mcp.Description("JSON array of {id, title, description?, category?}. "+
				"Example: [{\"id\": \"BL-14\", \"title\": \"Export bookings as CSV\", \"category\": \"reporting\"}]"),
		),
		mcp.WithBoolean("replace",
			mcp.Description("When true, replace the whole item set instead of merging."),
		),
	)
}

// Handle processes the drift_add_items tool call.
func (t *AddItemsTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	items, err := parseItems(req.GetString("items", ""))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if len(items) == 0 {
		return mcp.NewToolResultError("'items' is required — pass at least one item"), nil
	}

	if boolArg(req, "replace", false) {
		if err := t.store.Put(t.root, items); err != nil {
			return nil, fmt.Errorf("replacing backlog: %w", err)
		}
		return mcp.NewToolResultText(fmt.Sprintf("Backlog replaced — %d item(s) registered.", len(items))), nil
	}

	total, err := t.store.Add(t.root, items)
	if err != nil {
		return nil, fmt.Errorf("adding backlog items: %w", err)
	}
	return mcp.NewToolResultText(fmt.Sprintf("Added %d item(s) — backlog now holds %d.", len(items), total)), nil
}

// RemoveItemTool handles the drift_remove_item MCP tool.
type RemoveItemTool struct {
	store backlog.Store
	root  string
}

// NewRemoveItemTool creates a RemoveItemTool with its dependencies.
func NewRemoveItemTool(store backlog.Store, projectRoot string) *RemoveItemTool {
	return &RemoveItemTool{store: store, root: projectRoot}
}

// Definition returns the MCP tool definition for registration.
func (t *RemoveItemTool) Definition() mcp.Tool {
	return mcp.NewTool("drift_remove_item",
		mcp.WithDescription("Remove one item from the registered item set by id. Unknown ids are an error."),
		mcp.WithString("id",
			mcp.Required(),
			mcp.Description("The id of the item to remove."),
		),
	)
}

// Handle processes the drift_remove_item tool call.
func (t *RemoveItemTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id := strings.TrimSpace(req.GetString("id", ""))
	if id == "" {
		return mcp.NewToolResultError("'id' is required"), nil
	}
	if err := t.store.Remove(t.root, id); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("Removed %q from the backlog.", id)), nil
}

// ListItemsTool handles the drift_list_items MCP tool.
type ListItemsTool struct {
	store backlog.Store
	root  string
}

// NewListItemsTool creates a ListItemsTool with its dependencies.
func NewListItemsTool(store backlog.Store, projectRoot string) *ListItemsTool {
	return &ListItemsTool{store: store, root: projectRoot}
}

// Definition returns the MCP tool definition for registration.
func (t *ListItemsTool) Definition() mcp.Tool {
	return mcp.NewTool("drift_list_items",
		mcp.WithDescription("List the registered backlog item set."),
	)
}

// Handle processes the drift_list_items tool call.
func (t *ListItemsTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	items, err := t.store.List(t.root)
	if err != nil {
		return nil, fmt.Errorf("listing backlog: %w", err)
	}
	if len(items) == 0 {
		return mcp.NewToolResultText("The backlog is empty — register items with drift_add_items."), nil
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "# Backlog (%d items)\n\n", len(items))
	for _, it := range items {
		fmt.Fprintf(&sb, "- **%s**: %s", it.ID, it.Title)
		if it.Category != "" {
			fmt.Fprintf(&sb, " _(%s)_", it.Category)
		}
		sb.WriteString("\n")
	}
	return mcp.NewToolResultText(sb.String()), nil
}
