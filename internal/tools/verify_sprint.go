package tools

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/nvelasco/driftwatch/internal/backlog"
	"github.com/nvelasco/driftwatch/internal/truth"
	"github.com/nvelasco/driftwatch/internal/verify"
)

// VerifySprintTool handles the drift_verify_sprint MCP tool. The gate
// is fail-closed: one blocked task closes the sprint.
type VerifySprintTool struct {
	verifier *verify.Verifier
	items    backlog.Store
	root     string
}

// NewVerifySprintTool creates a VerifySprintTool with its dependencies.
func NewVerifySprintTool(v *verify.Verifier, items backlog.Store, projectRoot string) *VerifySprintTool {
	return &VerifySprintTool{verifier: v, items: items, root: projectRoot}
}

// Definition returns the MCP tool definition for registration.
func (t *VerifySprintTool) Definition() mcp.Tool {
	return mcp.NewTool("drift_verify_sprint",
		mcp.WithDescription(
			"Gate a sprint against the project truth. Returns can_proceed=false if ANY task "+
				"is blocked — a single hard violation blocks the whole sprint regardless of how "+
				"many other tasks are clean. With no 'tasks' argument, gates the registered item set.",
		),
		mcp.WithString("tasks",
			mcp.Description("Optional JSON array of {id, title, description?, category?} sprint tasks "+
				"to gate instead of the registered set."),
		),
	)
}

// Handle processes the drift_verify_sprint tool call.
func (t *VerifySprintTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	tasks, err := parseItems(req.GetString("tasks", ""))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if tasks == nil {
		tasks, err = t.items.List(t.root)
		if err != nil {
			return nil, fmt.Errorf("listing backlog: %w", err)
		}
	}

	report, err := t.verifier.VerifySprintTasks(t.root, tasks)
	if err != nil {
		if errors.Is(err, truth.ErrNoTruth) {
			return mcp.NewToolResultError("No project truth defined — create one with drift_set_truth before gating a sprint."), nil
		}
		return nil, fmt.Errorf("verifying sprint tasks: %w", err)
	}

	var sb strings.Builder
	sb.WriteString("# Sprint Gate\n\n")
	if report.CanProceed {
		fmt.Fprintf(&sb, "✅ **Sprint can proceed** — %d task(s), none blocked (truth v%d).\n\n",
			len(report.Tasks), report.TruthVersion)
	} else {
		fmt.Fprintf(&sb, "⛔ **Sprint blocked** (truth v%d). Resolve the blocked task(s) below before proceeding.\n\n",
			report.TruthVersion)
	}

	for _, r := range report.Tasks {
		fmt.Fprintf(&sb, "%s **%s** (confidence %d): %s\n", statusIcon(r.Status), r.ID, r.Confidence, r.Message)
		if r.Recommendation != "" {
			fmt.Fprintf(&sb, "   ↳ %s\n", r.Recommendation)
		}
	}
	return mcp.NewToolResultText(sb.String()), nil
}
