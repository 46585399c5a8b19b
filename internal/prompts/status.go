package prompts

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
)

// StatusPrompt handles the drift-status MCP prompt.
// It instructs the AI to read and present the current drift state.
type StatusPrompt struct{}

// NewStatusPrompt creates a StatusPrompt.
func NewStatusPrompt() *StatusPrompt {
	return &StatusPrompt{}
}

// Definition returns the MCP prompt definition for registration.
func (p *StatusPrompt) Definition() mcp.Prompt {
	return mcp.NewPrompt("drift-status",
		mcp.WithPromptDescription(
			"Check how aligned the project is right now. "+
				"Shows the latest drift measurement, the trend, "+
				"and what needs attention.",
		),
	)
}

// Handle processes the drift-status prompt request.
func (p *StatusPrompt) Handle(ctx context.Context, req mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
	return &mcp.GetPromptResult{
		Description: "Project Drift Status",
		Messages: []mcp.PromptMessage{
			{
				Role: mcp.RoleUser,
				Content: mcp.NewTextContent(
					"Please run `drift_monitor` with action='status' to check my project's drift state.\n\n" +
						"Then:\n" +
						"1. Show me the latest drift measurement and its severity in a clear, visual format\n" +
						"2. Tell me whether drift is trending up or down (or say the trend is undetermined)\n" +
						"3. If drift is major or worse, run `drift_verify_backlog` and show me which items are pulling the score down\n" +
						"4. Tell me the single most useful thing to do next",
				),
			},
		},
	}, nil
}
