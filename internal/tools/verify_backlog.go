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

// VerifyBacklogTool handles the drift_verify_backlog MCP tool.
type VerifyBacklogTool struct {
	verifier *verify.Verifier
	items    backlog.Store
	root     string
}

// NewVerifyBacklogTool creates a VerifyBacklogTool with its dependencies.
func NewVerifyBacklogTool(v *verify.Verifier, items backlog.Store, projectRoot string) *VerifyBacklogTool {
	return &VerifyBacklogTool{verifier: v, items: items, root: projectRoot}
}

// Definition returns the MCP tool definition for registration.
func (t *VerifyBacklogTool) Definition() mcp.Tool {
	return mcp.NewTool("drift_verify_backlog",
		mcp.WithDescription(
			"Score backlog items against the project truth and compute the purity score "+
				"(percentage of items classified allowed). With no 'items' argument, verifies "+
				"the registered item set. Requires a project truth.",
		),
		mcp.WithString("items",
			mcp.Description("Optional JSON array of {id, title, description?, category?} to verify "+
				"instead of the registered set."),
		),
	)
}

// Handle processes the drift_verify_backlog tool call.
func (t *VerifyBacklogTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	items, err := parseItems(req.GetString("items", ""))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if items == nil {
		items, err = t.items.List(t.root)
		if err != nil {
			return nil, fmt.Errorf("listing backlog: %w", err)
		}
	}

	report, err := t.verifier.VerifyBacklog(t.root, items)
	if err != nil {
		if errors.Is(err, truth.ErrNoTruth) {
			return mcp.NewToolResultError("No project truth defined — create one with drift_set_truth before verifying."), nil
		}
		return nil, fmt.Errorf("verifying backlog: %w", err)
	}

	return mcp.NewToolResultText(renderBacklogReport(report)), nil
}

// renderBacklogReport formats a backlog report for the AI to relay.
func renderBacklogReport(report *verify.BacklogReport) string {
	var sb strings.Builder
	sb.WriteString("# Backlog Verification\n\n")
	fmt.Fprintf(&sb, "**Purity score:** %d/100\n", report.PurityScore)
	fmt.Fprintf(&sb, "**Truth version:** v%d\n", report.TruthVersion)
	fmt.Fprintf(&sb, "**Items:** %d total — %d allowed, %d warning, %d review, %d blocked\n\n",
		report.Total, report.Aligned, report.Warnings, report.Reviews, report.Violations)

	if report.Total == 0 {
		sb.WriteString("_The item set is empty — purity 0 by convention._\n")
		return sb.String()
	}

	for _, r := range report.Items {
		fmt.Fprintf(&sb, "%s **%s** (confidence %d): %s\n", statusIcon(r.Status), r.ID, r.Confidence, r.Message)
		if r.Recommendation != "" {
			fmt.Fprintf(&sb, "   ↳ %s\n", r.Recommendation)
		}
	}
	return sb.String()
}
