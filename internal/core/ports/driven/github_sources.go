package driven

import (
	"context"

	"github.com/custodia-labs/prcache/internal/core/domain"
)

// PullRequestSource lists the pull requests of a repository.
type PullRequestSource interface {
	// ListPullRequests returns the open pull requests of "owner/repo".
	ListPullRequests(ctx context.Context, repo string) ([]domain.PullRequest, error)
}

// WorkItemSource runs work-item searches.
type WorkItemSource interface {
	// SearchWorkItems returns the issues and pull requests matching query.
	SearchWorkItems(ctx context.Context, query string) ([]domain.WorkItem, error)
}

// PipelineSource lists the pipeline runs of a repository.
type PipelineSource interface {
	// ListPipelineRuns returns the most recent workflow runs of "owner/repo".
	ListPipelineRuns(ctx context.Context, repo string) ([]domain.PipelineRun, error)
}
