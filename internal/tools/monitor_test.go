package tools

import (
	"strings"
	"testing"

	"github.com/nvelasco/driftwatch/internal/drift"
)

func TestRenderStatus_UndeterminedTrendNamesTheWindow(t *testing.T) {
	status := &drift.StatusReport{
		State: drift.StateStopped,
		Trend: drift.Trend{Determined: false, Window: 7},
	}

	out := renderStatus(status)
	if !strings.Contains(out, "fewer than 7 snapshots") {
		t.Errorf("renderStatus output = %q, want the configured trend window named", out)
	}
}

func TestRenderStatus_DeterminedTrend(t *testing.T) {
	status := &drift.StatusReport{
		State: drift.StateMonitoring,
		Trend: drift.Trend{Determined: true, Rate: 2.5, Increasing: true, Window: 5},
	}

	out := renderStatus(status)
	if !strings.Contains(out, "increasing") || !strings.Contains(out, "2.50") {
		t.Errorf("renderStatus output = %q, want the trend direction and rate", out)
	}
}
