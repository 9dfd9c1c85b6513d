package mcpserver

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
)

func (s *Server) registerPrompts() {
	s.mcp.AddPrompt(mcp.NewPrompt("collect_training_data",
		mcp.WithPromptDescription("Guide through assembling a training set for a fine-tune"),
		mcp.WithArgument("topic",
			mcp.ArgumentDescription("What the fine-tuned model should know about"),
			mcp.RequiredArgument(),
		),
	), s.handleCollectPrompt)
}

func (s *Server) handleCollectPrompt(ctx context.Context, req mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
	topic := req.Params.Arguments["topic"]
	return &mcp.GetPromptResult{
		Description: fmt.Sprintf("Collect training data about: %s", topic),
		Messages: []mcp.PromptMessage{
			{
				Role: mcp.RoleUser,
				Content: mcp.TextContent{
					Type: "text",
					Text: fmt.Sprintf(`Assemble a training set about "%s". Follow these steps:

1. Call get_state to see what is already collected
2. Use add_url for each web page worth learning from (http or https only)
3. Use add_text for short facts or notes that have no URL
4. Use add_files for local documents; files with an already collected name are skipped
5. Call list_files and check nothing is missing or duplicated
6. Call set_review with true if the generated questions should be reviewed by hand, then finish

Prefer a few focused sources over many loosely related ones.`, topic),
				},
			},
		},
	}, nil
}
