// Package resources implements MCP resource handlers for driftwatch.
//
// Resources provide read-only data that the host can consume for
// context. They use URI-based addressing (driftwatch://...) following
// MCP conventions.
package resources

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/nvelasco/driftwatch/internal/drift"
	"github.com/nvelasco/driftwatch/internal/truth"
)

// Handler manages driftwatch resource endpoints.
type Handler struct {
	truths  truth.Store
	monitor *drift.Monitor
	root    string
}

// NewHandler creates a resource Handler with its dependencies.
func NewHandler(truths truth.Store, monitor *drift.Monitor, projectRoot string) *Handler {
	return &Handler{truths: truths, monitor: monitor, root: projectRoot}
}

// StatusResource returns the MCP resource definition for drift status.
func (h *Handler) StatusResource() mcp.Resource {
	return mcp.NewResource(
		"driftwatch://drift/status",
		"Drift Status",
		mcp.WithResourceDescription("Monitor state, latest drift snapshot, and the drift trend"),
		mcp.WithMIMEType("application/json"),
	)
}

// HandleStatus returns the current monitor status as JSON.
func (h *Handler) HandleStatus(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	data, err := json.MarshalIndent(h.monitor.Status(), "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshaling drift status: %w", err)
	}
	return jsonResource(req.Params.URI, data), nil
}

// TruthResource returns the MCP resource definition for the project truth.
func (h *Handler) TruthResource() mcp.Resource {
	return mcp.NewResource(
		"driftwatch://truth/current",
		"Project Truth",
		mcp.WithResourceDescription("The current versioned project truth that items are scored against"),
		mcp.WithMIMEType("application/json"),
	)
}

// HandleTruth returns the current project truth as JSON.
func (h *Handler) HandleTruth(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	pt, err := h.truths.Load(h.root)
	if err != nil {
		if errors.Is(err, truth.ErrNoTruth) {
			return errorResource(req.Params.URI, "no project truth defined yet — use drift_set_truth"), nil
		}
		return nil, fmt.Errorf("loading project truth: %w", err)
	}

	data, err := json.MarshalIndent(pt, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshaling project truth: %w", err)
	}
	return jsonResource(req.Params.URI, data), nil
}

func jsonResource(uri string, data []byte) []mcp.ResourceContents {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}
}

// errorResource returns a resource with an error message.
func errorResource(uri, message string) []mcp.ResourceContents {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      uri,
			MIMEType: "text/plain",
			Text:     fmt.Sprintf("Error: %s", message),
		},
	}
}
