package tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/nvelasco/driftwatch/internal/archive"
	"github.com/nvelasco/driftwatch/internal/learning"
)

// InsightsTool handles the drift_insights MCP tool: read-only
// aggregation of the flagged-result history.
type InsightsTool struct {
	arc *archive.Store
}

// NewInsightsTool creates an InsightsTool. The archive may be nil when
// history is unavailable.
func NewInsightsTool(arc *archive.Store) *InsightsTool {
	return &InsightsTool{arc: arc}
}

// Definition returns the MCP tool definition for registration.
func (t *InsightsTool) Definition() mcp.Tool {
	return mcp.NewTool("drift_insights",
		mcp.WithDescription(
			"Aggregate archived flagged results into learning insights: recurring violation "+
				"patterns, per-category risk factors, and prevention strategies. Read-only — "+
				"never changes truth, scores, or history.",
		),
		mcp.WithNumber("limit",
			mcp.Description("Maximum archived flagged results to aggregate (default 200)."),
		),
	)
}

// Handle processes the drift_insights tool call.
func (t *InsightsTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if t.arc == nil {
		return mcp.NewToolResultError("History archive unavailable — insights need the archive database. Check the server log for the open failure."), nil
	}

	flagged, err := t.arc.FlaggedResults(intArg(req, "limit", 0))
	if err != nil {
		return nil, fmt.Errorf("loading flagged results: %w", err)
	}

	ins := learning.Build(flagged)
	return mcp.NewToolResultText(renderInsights(ins)), nil
}

func renderInsights(ins *learning.Insights) string {
	var sb strings.Builder
	sb.WriteString("# Learning Insights\n\n")
	if ins.TotalFlagged == 0 {
		sb.WriteString("No flagged results on record yet — nothing to learn from. That is the good case.\n")
		return sb.String()
	}
	fmt.Fprintf(&sb, "**Flagged results analyzed:** %d\n\n", ins.TotalFlagged)

	sb.WriteString("## Common Violations\n\n")
	for _, v := range ins.CommonViolations {
		fmt.Fprintf(&sb, "- ×%d", v.Count)
		if v.Blocked > 0 {
			fmt.Fprintf(&sb, " (%d blocked)", v.Blocked)
		}
		fmt.Fprintf(&sb, " — %s", v.Pattern)
		if v.Category != "" {
			fmt.Fprintf(&sb, " _(%s)_", v.Category)
		}
		sb.WriteString("\n")
	}

	sb.WriteString("\n## Risk Factors\n\n")
	for _, rf := range ins.RiskFactors {
		fmt.Fprintf(&sb, "- **%s**: %s impact, %d flagged\n", rf.Category, rf.Impact, rf.Count)
	}

	if len(ins.PreventionStrategies) > 0 {
		sb.WriteString("\n## Prevention Strategies\n\n")
		for _, st := range ins.PreventionStrategies {
			fmt.Fprintf(&sb, "%d. %s\n   _%s_\n", st.Priority, st.Action, st.Rationale)
		}
	}
	return sb.String()
}
