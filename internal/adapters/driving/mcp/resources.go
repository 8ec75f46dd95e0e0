package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/prcache/internal/core/domain"
)

const (
	// uriScheme is the custom URI scheme for prcache resources.
	uriScheme = "prcache://"
)

// registerResources registers all resource handlers with the MCP server.
func (s *Server) registerResources() {
	s.server.AddResource(&mcp.Resource{
		URI:         uriScheme + "status",
		Name:        "status",
		Description: "Refresh state and last update time of every cached scope",
		MIMEType:    "application/json",
	}, s.handleStatusResource)

	s.server.AddResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: uriScheme + "pulls/{owner}/{repo}",
		Name:        "pull-requests",
		Description: "Cached open pull requests of a repository",
		MIMEType:    "application/json",
	}, s.handlePullsResource)
}

// handleStatusResource returns the refresh status.
func (s *Server) handleStatusResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	out, err := s.status(ctx)
	if err != nil {
		return nil, err
	}
	return jsonResource(req.Params.URI, out)
}

// pullInfo is the JSON form of a cached pull request.
type pullInfo struct {
	Number     int       `json:"number"`
	Title      string    `json:"title"`
	State      string    `json:"state"`
	Draft      bool      `json:"draft"`
	Author     string    `json:"author"`
	HeadBranch string    `json:"head_branch"`
	BaseBranch string    `json:"base_branch"`
	URL        string    `json:"url"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// handlePullsResource returns the cached pull requests of a repository.
func (s *Server) handlePullsResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	if s.ports.Cache == nil {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	// prcache://pulls/{owner}/{repo}
	repo := extractRepo(req.Params.URI)
	if repo == "" {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	prs, err := s.ports.Cache.PullRequests(ctx, repo)
	if err != nil {
		return nil, fmt.Errorf("listing pull requests: %w", err)
	}

	infos := make([]pullInfo, len(prs))
	for i := range prs {
		infos[i] = toPullInfo(prs[i])
	}
	return jsonResource(req.Params.URI, infos)
}

func toPullInfo(pr domain.PullRequest) pullInfo {
	return pullInfo{
		Number:     pr.Number,
		Title:      pr.Title,
		State:      pr.State,
		Draft:      pr.Draft,
		Author:     pr.Author,
		HeadBranch: pr.HeadBranch,
		BaseBranch: pr.BaseBranch,
		URL:        pr.URL,
		UpdatedAt:  pr.UpdatedAt,
	}
}

func jsonResource(uri string, v any) (*mcp.ReadResourceResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshalling %s: %w", uri, err)
	}
	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		}},
	}, nil
}

// extractRepo extracts "owner/repo" from a URI like prcache://pulls/{owner}/{repo}.
func extractRepo(uri string) string {
	const prefix = uriScheme + "pulls/"

	if !strings.HasPrefix(uri, prefix) {
		return ""
	}
	repo := strings.TrimPrefix(uri, prefix)
	if _, _, err := domain.SplitRepo(repo); err != nil {
		return ""
	}
	return repo
}
