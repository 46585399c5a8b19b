package tools

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/nvelasco/driftwatch/internal/truth"
)

// SetTruthTool handles the drift_set_truth MCP tool. It creates or
// updates the project truth; every update writes a new immutable
// version.
type SetTruthTool struct {
	store truth.Store
	root  string
}

// NewSetTruthTool creates a SetTruthTool with its dependencies.
func NewSetTruthTool(store truth.Store, projectRoot string) *SetTruthTool {
	return &SetTruthTool{store: store, root: projectRoot}
}

// Definition returns the MCP tool definition for registration.
func (t *SetTruthTool) Definition() mcp.Tool {
	return mcp.NewTool("drift_set_truth",
		mcp.WithDescription(
			"Create or update the project truth — the canonical baseline every backlog item, "+
				"sprint task, and document is scored against. Updating writes a new version; "+
				"prior versions are kept and verification results always name the version they "+
				"were scored against. Collect the fields from the user first; this tool stores, "+
				"it does not interview.",
		),
		mcp.WithString("what_were_building",
			mcp.Required(),
			mcp.Description("One or two sentences stating what the project IS. Example: "+
				"'A booking platform for independent physiotherapists.'"),
		),
		mcp.WithString("industry",
			mcp.Description("The industry or domain, used for domain-alignment scoring. Example: 'healthcare scheduling'."),
		),
		mcp.WithString("primary_users",
			mcp.Description("The primary target users. Example: 'independent physiotherapists running their own practice'."),
		),
		mcp.WithString("secondary_users",
			mcp.Description("Optional secondary users. Example: 'patients booking their own appointments'."),
		),
		mcp.WithString("not_this",
			mcp.Description("Explicit boundaries as a JSON array of strings (or one per line). "+
				"Items matching a boundary are blocked unconditionally. Aim for at least 3. "+
				"Example: [\"NOT a social media platform\", \"NOT an insurance billing system\"]"),
		),
		mcp.WithString("competitors",
			mcp.Description("JSON array of {name, description} — known competitors and what distinguishes them. "+
				"Used to flag competitor-only capabilities."),
		),
		mcp.WithString("domain_terms",
			mcp.Description("JSON array of {term, definition} — the project's ubiquitous language."),
		),
	)
}

// Handle processes the drift_set_truth tool call.
func (t *SetTruthTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	data := &truth.Data{
		WhatWereBuilding: strings.TrimSpace(req.GetString("what_were_building", "")),
		Industry:         strings.TrimSpace(req.GetString("industry", "")),
		TargetUsers: truth.TargetUsers{
			Primary:   strings.TrimSpace(req.GetString("primary_users", "")),
			Secondary: strings.TrimSpace(req.GetString("secondary_users", "")),
		},
		NotThis: parseList(req.GetString("not_this", "")),
	}

	if raw := strings.TrimSpace(req.GetString("competitors", "")); raw != "" {
		if err := json.Unmarshal([]byte(raw), &data.Competitors); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("'competitors' must be a JSON array of {name, description}: %v", err)), nil
		}
	}
	if raw := strings.TrimSpace(req.GetString("domain_terms", "")); raw != "" {
		if err := json.Unmarshal([]byte(raw), &data.DomainTerms); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("'domain_terms' must be a JSON array of {term, definition}: %v", err)), nil
		}
	}

	result, err := t.store.Save(t.root, data)
	if err != nil {
		var verr *truth.ValidationError
		if errors.As(err, &verr) {
			return mcp.NewToolResultError(verr.Error()), nil
		}
		return nil, fmt.Errorf("saving project truth: %w", err)
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "# Project Truth Saved\n\n**Version:** v%d\n**Path:** `%s`\n", result.Version, result.Path)
	if len(result.Warnings) > 0 {
		sb.WriteString("\n## Quality Warnings\n\n")
		for _, w := range result.Warnings {
			fmt.Fprintf(&sb, "- ⚠️ %s\n", w)
		}
	}
	sb.WriteString("\nAll subsequent verification runs will score against this version.")

	return mcp.NewToolResultText(sb.String()), nil
}

// GetTruthTool handles the drift_get_truth MCP tool.
type GetTruthTool struct {
	store truth.Store
	root  string
}

// NewGetTruthTool creates a GetTruthTool with its dependencies.
func NewGetTruthTool(store truth.Store, projectRoot string) *GetTruthTool {
	return &GetTruthTool{store: store, root: projectRoot}
}

// Definition returns the MCP tool definition for registration.
func (t *GetTruthTool) Definition() mcp.Tool {
	return mcp.NewTool("drift_get_truth",
		mcp.WithDescription(
			"Show the current project truth, or its full version history.",
		),
		mcp.WithBoolean("history",
			mcp.Description("When true, list every stored truth version instead of only the current one."),
		),
	)
}

// Handle processes the drift_get_truth tool call.
func (t *GetTruthTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if boolArg(req, "history", false) {
		versions, err := t.store.History(t.root)
		if err != nil {
			return nil, fmt.Errorf("reading truth history: %w", err)
		}
		if len(versions) == 0 {
			return mcp.NewToolResultText("No project truth defined yet — use drift_set_truth to create one."), nil
		}

		var sb strings.Builder
		sb.WriteString("# Truth History\n\n")
		for _, v := range versions {
			fmt.Fprintf(&sb, "- **v%d** (%s): %s\n", v.Version, v.LastVerified, v.WhatWereBuilding)
		}
		return mcp.NewToolResultText(sb.String()), nil
	}

	doc, err := t.store.Load(t.root)
	if err != nil {
		if err == truth.ErrNoTruth {
			return mcp.NewToolResultText("No project truth defined yet — use drift_set_truth to create one."), nil
		}
		return nil, fmt.Errorf("loading project truth: %w", err)
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshaling project truth: %w", err)
	}
	return mcp.NewToolResultText(fmt.Sprintf("```json\n%s\n```", data)), nil
}
