package tools

import (
	"context"
	"errors"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/nvelasco/driftwatch/internal/report"
)

// AuditTool handles the drift_audit MCP tool.
type AuditTool struct {
	generator *report.Generator
	root      string
}

// NewAuditTool creates an AuditTool with its dependencies.
func NewAuditTool(g *report.Generator, projectRoot string) *AuditTool {
	return &AuditTool{generator: g, root: projectRoot}
}

// Definition returns the MCP tool definition for registration.
func (t *AuditTool) Definition() mcp.Tool {
	return mcp.NewTool("drift_audit",
		mcp.WithDescription(
			"Generate a full alignment audit: backlog purity, sprint readiness, document and "+
				"decision alignment, drift history, learnings, and recommendations, with an "+
				"overall health score. All sections are "+
				"included by default; a section whose data is unavailable is marked degraded "+
				"without failing the rest. Markdown by default; format=json returns the same "+
				"report as structured JSON.",
		),
		mcp.WithString("format",
			mcp.Description("Output format: 'markdown' (default) or 'json'. Both render the same report — numbers always agree."),
			mcp.Enum("markdown", "json"),
		),
		mcp.WithBoolean("backlog", mcp.Description("Include the backlog section (default true).")),
		mcp.WithBoolean("sprint", mcp.Description("Include the sprint readiness section (default true).")),
		mcp.WithBoolean("documents", mcp.Description("Include the document alignment section — registered items with category 'document' (default true).")),
		mcp.WithBoolean("decisions", mcp.Description("Include the decision alignment section — registered items with category 'decision' (default true).")),
		mcp.WithBoolean("drift", mcp.Description("Include the drift history section (default true).")),
		mcp.WithBoolean("learnings", mcp.Description("Include the learnings section (default true).")),
		mcp.WithBoolean("recommendations", mcp.Description("Include the recommendations section (default true).")),
	)
}

// Handle processes the drift_audit tool call.
func (t *AuditTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	opts := report.Options{
		Backlog:         boolArg(req, "backlog", true),
		Sprint:          boolArg(req, "sprint", true),
		Documents:       boolArg(req, "documents", true),
		Decisions:       boolArg(req, "decisions", true),
		Drift:           boolArg(req, "drift", true),
		Learnings:       boolArg(req, "learnings", true),
		Recommendations: boolArg(req, "recommendations", true),
	}

	audit, err := t.generator.FullAudit(t.root, opts)
	if err != nil {
		if errors.Is(err, report.ErrNoSections) {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return nil, fmt.Errorf("generating audit: %w", err)
	}

	if req.GetString("format", "markdown") == "json" {
		out, err := report.JSON(audit)
		if err != nil {
			return nil, err
		}
		return mcp.NewToolResultText(out), nil
	}
	return mcp.NewToolResultText(report.Markdown(audit)), nil
}
