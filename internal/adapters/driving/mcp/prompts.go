package mcp

import (
	"context"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/prcache/internal/core/domain"
)

// registerPrompts registers the prompt templates with the MCP server.
func (s *Server) registerPrompts() {
	s.server.AddPrompt(&mcp.Prompt{
		Name:        "review_queue",
		Description: "Summarise the open pull requests of a repository that are waiting for review",
		Arguments: []*mcp.PromptArgument{
			{Name: "repo", Description: "Repository as owner/repo. Example: acme/widgets", Required: true},
		},
	}, s.handleReviewQueuePrompt)
}

// handleReviewQueuePrompt builds a prompt that refreshes the cached pull
// requests of a repository before summarising them.
func (s *Server) handleReviewQueuePrompt(
	_ context.Context,
	req *mcp.GetPromptRequest,
) (*mcp.GetPromptResult, error) {
	repo := strings.TrimSpace(req.Params.Arguments["repo"])
	owner, name, err := domain.SplitRepo(repo)
	if err != nil {
		return nil, err
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Summarise the review queue of `%s`.\n\n", repo)
	fmt.Fprintf(&b, "- Call `refresh` with kind `pull_requests` and target `%s`, unless `refresh_status` "+
		"shows the scope was updated in the last few minutes.\n", repo)
	fmt.Fprintf(&b, "- Read `%spulls/%s/%s` for the cached pull requests.\n", uriScheme, owner, name)
	b.WriteString("- Skip drafts. Group the rest by base branch, oldest first.\n")
	b.WriteString("- For each pull request give its number, title, author and a direct link.")

	return &mcp.GetPromptResult{
		Description: "Review queue for " + repo,
		Messages: []*mcp.PromptMessage{
			{Role: "user", Content: &mcp.TextContent{Text: b.String()}},
		},
	}, nil
}
