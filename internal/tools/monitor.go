package tools

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/nvelasco/driftwatch/internal/drift"
	"github.com/nvelasco/driftwatch/internal/truth"
)

// MonitorTool handles the drift_monitor MCP tool: start, stop, check,
// and status for the drift monitor.
type MonitorTool struct {
	monitor *drift.Monitor
}

// NewMonitorTool creates a MonitorTool with the given monitor.
func NewMonitorTool(m *drift.Monitor) *MonitorTool {
	return &MonitorTool{monitor: m}
}

// Definition returns the MCP tool definition for registration.
func (t *MonitorTool) Definition() mcp.Tool {
	return mcp.NewTool("drift_monitor",
		mcp.WithDescription(
			"Control the drift monitor. Actions: 'start' begins periodic re-verification of the "+
				"registered item set (interval_minutes, minimum 5); 'stop' halts it; 'check' forces "+
				"one measurement immediately; 'status' shows the latest snapshot and the drift trend. "+
				"Start and stop are idempotent — repeating them warns instead of failing.",
		),
		mcp.WithString("action",
			mcp.Required(),
			mcp.Description("One of: start, stop, check, status."),
			mcp.Enum("start", "stop", "check", "status"),
		),
		mcp.WithNumber("interval_minutes",
			mcp.Description("Measurement interval for 'start'. Minimum 5 minutes."),
		),
	)
}

// Handle processes the drift_monitor tool call.
func (t *MonitorTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	switch action := req.GetString("action", ""); action {
	case "start":
		interval := intArg(req, "interval_minutes", 15)
		started, err := t.monitor.Start(interval)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		if !started {
			return mcp.NewToolResultText("Drift monitor is already running — start ignored (no second schedule created)."), nil
		}
		return mcp.NewToolResultText(fmt.Sprintf("Drift monitor started — measuring every %d minutes.", interval)), nil

	case "stop":
		if stopped := t.monitor.Stop(); !stopped {
			return mcp.NewToolResultText("Drift monitor is already stopped — stop ignored."), nil
		}
		return mcp.NewToolResultText("Drift monitor stopped. Recorded history is retained."), nil

	case "check":
		snap, err := t.monitor.CheckNow()
		if err != nil {
			if errors.Is(err, truth.ErrNoTruth) {
				return mcp.NewToolResultError("No project truth defined — create one with drift_set_truth before measuring drift."), nil
			}
			return nil, fmt.Errorf("forced drift check: %w", err)
		}
		return mcp.NewToolResultText("# Drift Check\n\n" + renderSnapshot(snap)), nil

	case "status":
		return mcp.NewToolResultText(renderStatus(t.monitor.Status())), nil

	default:
		return mcp.NewToolResultError(fmt.Sprintf("unknown action %q: must be start, stop, check, or status", action)), nil
	}
}

func renderSnapshot(snap *drift.Snapshot) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "**Drift:** %.1f%% (%s)\n", snap.DriftPercentage, snap.Severity)
	fmt.Fprintf(&sb, "**Purity:** %d/100 over %d item(s), truth v%d\n", snap.PurityScore, snap.TotalItems, snap.TruthVersion)
	fmt.Fprintf(&sb, "**Taken:** %s\n", snap.Timestamp)
	if snap.Note != "" {
		fmt.Fprintf(&sb, "\n_%s_\n", snap.Note)
	}
	return sb.String()
}

func renderStatus(status *drift.StatusReport) string {
	var sb strings.Builder
	sb.WriteString("# Drift Status\n\n")
	fmt.Fprintf(&sb, "**Monitor:** %s", status.State)
	if status.State == drift.StateMonitoring {
		fmt.Fprintf(&sb, " (every %d minutes)", status.IntervalMinutes)
	}
	fmt.Fprintf(&sb, "\n**Snapshots in history:** %d\n\n", status.HistorySize)

	if status.Latest != nil {
		sb.WriteString("## Latest Snapshot\n\n")
		sb.WriteString(renderSnapshot(status.Latest))
		sb.WriteString("\n")
	} else {
		sb.WriteString("_No snapshots yet — use action=check or start the monitor._\n\n")
	}

	sb.WriteString("## Trend\n\n")
	if status.Trend.Determined {
		direction := "📉 decreasing"
		if status.Trend.Increasing {
			direction = "📈 increasing"
		}
		fmt.Fprintf(&sb, "%s — %.2f%% per measurement over the last %d snapshots.\n",
			direction, status.Trend.Rate, status.Trend.Window)
	} else {
		fmt.Fprintf(&sb, "Undetermined — fewer than %d snapshots recorded. The trend is never guessed.\n",
			status.Trend.Window)
	}
	return sb.String()
}
