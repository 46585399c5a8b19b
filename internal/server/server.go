// Package server wires all MCP components and creates the server instance.
//
// This is the composition root: it creates concrete implementations
// and injects them into the tools/prompts/resources that depend on
// abstractions. No business logic lives here — only wiring.
package server

import (
	"fmt"
	"log"

	"github.com/mark3labs/mcp-go/server"

	"github.com/nvelasco/driftwatch/internal/archive"
	"github.com/nvelasco/driftwatch/internal/backlog"
	"github.com/nvelasco/driftwatch/internal/config"
	"github.com/nvelasco/driftwatch/internal/drift"
	"github.com/nvelasco/driftwatch/internal/prompts"
	"github.com/nvelasco/driftwatch/internal/report"
	"github.com/nvelasco/driftwatch/internal/resources"
	"github.com/nvelasco/driftwatch/internal/tools"
	"github.com/nvelasco/driftwatch/internal/truth"
	"github.com/nvelasco/driftwatch/internal/verify"
)

// Version is set at build time via ldflags.
var Version = "dev"

// New creates and configures the MCP server with all tools, prompts,
// and resources registered. This is the single place where all
// dependencies are resolved.
//
// The returned cleanup function closes the archive's database
// connection and must be called on shutdown (typically via defer).
// It is always non-nil and safe to call even if the archive failed to
// open.
func New() (*server.MCPServer, func(), error) {
	// --- Resolve the project root and configuration ---

	projectRoot, err := tools.FindProjectRoot()
	if err != nil {
		return nil, noop, fmt.Errorf("finding project root: %w", err)
	}

	cfg, err := config.Load(projectRoot)
	if err != nil {
		return nil, noop, fmt.Errorf("loading configuration: %w", err)
	}

	// --- Create shared dependencies ---

	truths := truth.NewFileStore()
	items := backlog.NewFileStore()

	// The archive is an optional subsystem: if it fails to open,
	// verification and monitoring keep working without history, and
	// the insights tool reports the archive as unavailable.
	cleanup := noop
	arc, arcErr := archive.New(archive.DefaultConfig())
	if arcErr != nil {
		log.Printf("WARNING: history archive disabled: %v", arcErr)
		arc = nil
	} else {
		cleanup = func() {
			if err := arc.Close(); err != nil {
				log.Printf("WARNING: archive close: %v", err)
			}
		}
	}

	verifier := verify.New(truths, cfg, arc)
	monitor := drift.NewMonitor(verifier, items, arc, cfg, projectRoot)
	generator := report.NewGenerator(verifier, items, monitor, arc, cfg)

	// --- Create the MCP server ---

	s := server.NewMCPServer(
		"driftwatch",
		Version,
		server.WithToolCapabilities(true),
		server.WithResourceCapabilities(false, true),
		server.WithPromptCapabilities(true),
		server.WithRecovery(),
		server.WithInstructions(serverInstructions()),
	)

	// --- Register tools ---

	setTruthTool := tools.NewSetTruthTool(truths, projectRoot)
	s.AddTool(setTruthTool.Definition(), setTruthTool.Handle)

	getTruthTool := tools.NewGetTruthTool(truths, projectRoot)
	s.AddTool(getTruthTool.Definition(), getTruthTool.Handle)

	addItemsTool := tools.NewAddItemsTool(items, projectRoot)
	s.AddTool(addItemsTool.Definition(), addItemsTool.Handle)

	listItemsTool := tools.NewListItemsTool(items, projectRoot)
	s.AddTool(listItemsTool.Definition(), listItemsTool.Handle)

	removeItemTool := tools.NewRemoveItemTool(items, projectRoot)
	s.AddTool(removeItemTool.Definition(), removeItemTool.Handle)

	verifyBacklogTool := tools.NewVerifyBacklogTool(verifier, items, projectRoot)
	s.AddTool(verifyBacklogTool.Definition(), verifyBacklogTool.Handle)

	verifySprintTool := tools.NewVerifySprintTool(verifier, items, projectRoot)
	s.AddTool(verifySprintTool.Definition(), verifySprintTool.Handle)

	monitorTool := tools.NewMonitorTool(monitor)
	s.AddTool(monitorTool.Definition(), monitorTool.Handle)

	auditTool := tools.NewAuditTool(generator, projectRoot)
	s.AddTool(auditTool.Definition(), auditTool.Handle)

	insightsTool := tools.NewInsightsTool(arc)
	s.AddTool(insightsTool.Definition(), insightsTool.Handle)

	// --- Register prompts ---

	setupPrompt := prompts.NewSetupPrompt()
	s.AddPrompt(setupPrompt.Definition(), setupPrompt.Handle)

	statusPrompt := prompts.NewStatusPrompt()
	s.AddPrompt(statusPrompt.Definition(), statusPrompt.Handle)

	// --- Register resources ---

	resourceHandler := resources.NewHandler(truths, monitor, projectRoot)
	s.AddResource(resourceHandler.StatusResource(), resourceHandler.HandleStatus)
	s.AddResource(resourceHandler.TruthResource(), resourceHandler.HandleTruth)

	return s, cleanup, nil
}

// noop is a no-op cleanup function used as the default when the
// archive is disabled or hasn't been initialized.
func noop() {}

// serverInstructions returns the system instructions that tell the AI
// how to use driftwatch effectively.
func serverInstructions() string {
	return `You have access to driftwatch, a context drift detection MCP server.

## What is drift?
Projects drift when backlog items and sprint tasks stop matching what the
project set out to be. driftwatch scores every item against a versioned
"project truth" — what we're building, for whom, and explicitly what it is
NOT — and measures how far the backlog has wandered.

## WHEN TO ACTIVATE driftwatch

Proactively suggest driftwatch when the user:
- Starts planning a sprint or grooming a backlog
- Adds a batch of new feature ideas
- Says things like "should we build...", "what about adding...", "the backlog feels bloated"
- Asks whether a feature fits the product

You do NOT need driftwatch for bug fixes, refactors, or one-off questions.

## Setup (once per project)
1. Use the drift-setup prompt, or directly:
2. Call drift_set_truth with what_were_building, industry, primary_users,
   and AT LEAST 3 not_this boundaries — boundaries power hard blocking,
   so vague or missing boundaries weaken the whole engine. Relay any
   warnings the tool returns.
3. Register the backlog with drift_add_items.

## Scoring model
Each item gets a confidence score (0-100) from four weighted signals:
vision alignment, target-user match, scope-boundary respect, and
historical violation patterns. Status by confidence:
- 85+: allowed ✅
- 70-84: warning ⚠️ (proceed with caution)
- 50-69: review 🔍 (needs human review)
- <50: blocked ⛔
An item matching an explicit not_this boundary is ALWAYS blocked,
regardless of its confidence — never argue an override down.

## Verification
- drift_verify_backlog: scores the item set and reports the purity score
  (percent of items allowed). Purity 0 on an empty set is the empty-set
  convention, not a crisis.
- drift_verify_sprint: fail-closed gate — can_proceed is false if ANY
  task is blocked. Never tell the user to proceed past a closed gate;
  help them fix or drop the blocked tasks instead.

## Monitoring
drift_monitor action=start begins periodic re-verification (minimum
interval 5 minutes). Drift percentage is 100 minus purity. Severity:
none (<20), moderate (20-40), major (40-60), critical (60-80),
severe (80+). The trend needs 5 snapshots — before that it is
undetermined, and you must say so rather than guess.

## Reporting and learning
- drift_audit: full health report (markdown or json — same numbers in
  both). Sections: backlog, sprint readiness, documents, decisions,
  drift history, learnings, recommendations. Document and decision
  alignment score the registered items carrying category "document" or
  "decision". Sections degrade independently; a missing section never
  hides the rest. A report where no section could be scored reports
  health "unknown", not "poor".
- drift_insights: read-only aggregation of past violations into
  recurring patterns, risk factors, and prevention strategies. Use it
  when the same kind of item keeps getting flagged.

## Important rules
- NEVER paraphrase a blocked status into something softer
- ALWAYS show the purity score and truth version when you verify
- When drift is major or worse, walk through the flagged items — the
  score alone is not actionable
- Recurring flags can mean the truth is stale, not the backlog wrong —
  suggest re-reviewing the truth when insights say so`
}
