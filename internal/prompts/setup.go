// Package prompts implements MCP prompt handlers for driftwatch.
//
// MCP prompts are user-triggered workflows (like slash commands) that
// instruct the AI to execute a specific sequence. Unlike tools (which
// the AI calls), prompts are initiated by the user.
package prompts

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
)

// SetupPrompt handles the drift-setup MCP prompt.
// It guides the AI to establish the project truth and register the
// backlog so drift can be measured.
type SetupPrompt struct{}

// NewSetupPrompt creates a SetupPrompt.
func NewSetupPrompt() *SetupPrompt {
	return &SetupPrompt{}
}

// Definition returns the MCP prompt definition for registration.
func (p *SetupPrompt) Definition() mcp.Prompt {
	return mcp.NewPrompt("drift-setup",
		mcp.WithPromptDescription(
			"Set up drift detection for a project. "+
				"Walks through defining the project truth (what you're building, "+
				"who it's for, what it is NOT) and registering the backlog.",
		),
		mcp.WithArgument("project_name",
			mcp.ArgumentDescription("Name of your project"),
		),
	)
}

// Handle processes the drift-setup prompt request.
func (p *SetupPrompt) Handle(ctx context.Context, req mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
	projectName := "my-project"
	if args := req.Params.Arguments; args != nil {
		if name, ok := args["project_name"]; ok && name != "" {
			projectName = name
		}
	}

	return &mcp.GetPromptResult{
		Description: fmt.Sprintf("Set up drift detection: %s", projectName),
		Messages: []mcp.PromptMessage{
			{
				Role: mcp.RoleUser,
				Content: mcp.NewTextContent(fmt.Sprintf(
					"I want to set up drift detection for my project '%s'.\n\n"+
						"Please:\n"+
						"1. Ask me what we're building — one or two sentences, plus the industry and target users\n"+
						"2. Ask me what this project is explicitly NOT (aim for at least 3 boundaries — these power hard blocking)\n"+
						"3. Ask about competitors and domain terms if I have them\n"+
						"4. Run `drift_set_truth` with everything I gave you, and relay any warnings it returns\n"+
						"5. Ask me for my current backlog items and register them with `drift_add_items`\n"+
						"6. Finish with `drift_verify_backlog` and walk me through anything flagged",
					projectName,
				)),
			},
		},
	}, nil
}
