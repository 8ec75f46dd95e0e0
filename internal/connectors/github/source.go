package github

import (
	"context"
	"strings"

	gh "github.com/google/go-github/v80/github"

	"github.com/custodia-labs/prcache/internal/core/domain"
	"github.com/custodia-labs/prcache/internal/core/ports/driven"
)

// Ensure Source implements the source ports.
var (
	_ driven.PullRequestSource = (*Source)(nil)
	_ driven.WorkItemSource    = (*Source)(nil)
	_ driven.PipelineSource    = (*Source)(nil)
)

// Source reads cacheable data from GitHub.
type Source struct {
	client *Client
	cfg    Config
}

// NewSource creates a source backed by client.
func NewSource(client *Client, cfg Config) *Source {
	return &Source{client: client, cfg: cfg.withDefaults()}
}

// Client returns the underlying API client.
func (s *Source) Client() *Client {
	return s.client
}

// ListPullRequests returns the open pull requests of "owner/repo",
// most recently updated first.
func (s *Source) ListPullRequests(ctx context.Context, repo string) ([]domain.PullRequest, error) {
	owner, name, err := domain.SplitRepo(repo)
	if err != nil {
		return nil, err
	}

	opts := &gh.PullRequestListOptions{
		State:       "open",
		Sort:        "updated",
		Direction:   "desc",
		ListOptions: gh.ListOptions{PerPage: DefaultPerPage},
	}
	prs, err := s.client.ListPullRequests(ctx, owner, name, opts)
	if err != nil {
		return nil, err
	}

	result := make([]domain.PullRequest, 0, len(prs))
	for _, pr := range prs {
		result = append(result, toPullRequest(repo, pr))
	}
	return result, nil
}

// SearchWorkItems returns the issues and pull requests matching query,
// most recently updated first.
func (s *Source) SearchWorkItems(ctx context.Context, query string) ([]domain.WorkItem, error) {
	opts := &gh.SearchOptions{
		Sort:        "updated",
		Order:       "desc",
		ListOptions: gh.ListOptions{PerPage: DefaultPerPage},
	}
	issues, err := s.client.SearchIssues(ctx, query, opts, s.cfg.MaxSearchResults)
	if err != nil {
		return nil, err
	}

	result := make([]domain.WorkItem, 0, len(issues))
	for _, issue := range issues {
		result = append(result, toWorkItem(issue))
	}
	return result, nil
}

// ListPipelineRuns returns the most recent workflow runs of "owner/repo".
func (s *Source) ListPipelineRuns(ctx context.Context, repo string) ([]domain.PipelineRun, error) {
	owner, name, err := domain.SplitRepo(repo)
	if err != nil {
		return nil, err
	}

	opts := &gh.ListWorkflowRunsOptions{
		ListOptions: gh.ListOptions{PerPage: s.cfg.MaxWorkflowRuns},
	}
	runs, err := s.client.ListWorkflowRuns(ctx, owner, name, opts)
	if err != nil {
		return nil, err
	}

	result := make([]domain.PipelineRun, 0, len(runs))
	for _, run := range runs {
		result = append(result, toPipelineRun(repo, run))
	}
	return result, nil
}

func toPullRequest(repo string, pr *gh.PullRequest) domain.PullRequest {
	return domain.PullRequest{
		Repo:       repo,
		Number:     pr.GetNumber(),
		Title:      pr.GetTitle(),
		State:      pr.GetState(),
		Draft:      pr.GetDraft(),
		Author:     pr.GetUser().GetLogin(),
		HeadBranch: pr.GetHead().GetRef(),
		BaseBranch: pr.GetBase().GetRef(),
		URL:        pr.GetHTMLURL(),
		UpdatedAt:  pr.GetUpdatedAt().Time,
	}
}

func toWorkItem(issue *gh.Issue) domain.WorkItem {
	return domain.WorkItem{
		Repo:          repoFromURL(issue.GetRepositoryURL()),
		Number:        issue.GetNumber(),
		Title:         issue.GetTitle(),
		State:         issue.GetState(),
		IsPullRequest: issue.IsPullRequest(),
		URL:           issue.GetHTMLURL(),
		UpdatedAt:     issue.GetUpdatedAt().Time,
	}
}

func toPipelineRun(repo string, run *gh.WorkflowRun) domain.PipelineRun {
	return domain.PipelineRun{
		Repo:       repo,
		ID:         run.GetID(),
		Name:       run.GetName(),
		RunNumber:  run.GetRunNumber(),
		Branch:     run.GetHeadBranch(),
		Status:     run.GetStatus(),
		Conclusion: run.GetConclusion(),
		URL:        run.GetHTMLURL(),
		UpdatedAt:  run.GetUpdatedAt().Time,
	}
}

// repoFromURL extracts "owner/repo" from an API repository URL such as
// https://api.github.com/repos/owner/repo.
func repoFromURL(u string) string {
	const marker = "/repos/"
	i := strings.LastIndex(u, marker)
	if i < 0 {
		return ""
	}
	return strings.TrimSuffix(u[i+len(marker):], "/")
}
