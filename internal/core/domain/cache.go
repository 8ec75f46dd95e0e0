package domain

import (
	"fmt"
	"strings"
	"time"
)

// PullRequest is a cached pull request.
type PullRequest struct {
	// Repo is the "owner/repo" the pull request belongs to.
	Repo string

	// Number is the pull request number.
	Number int

	Title      string
	State      string
	Draft      bool
	Author     string
	HeadBranch string
	BaseBranch string
	URL        string

	// UpdatedAt is when the pull request last changed on GitHub.
	UpdatedAt time.Time
}

// WorkItem is a cached result of a saved work-item search.
type WorkItem struct {
	// SearchID is the saved search that produced the item.
	SearchID string

	Repo          string
	Number        int
	Title         string
	State         string
	IsPullRequest bool
	URL           string
	UpdatedAt     time.Time
}

// PipelineRun is a cached workflow run.
type PipelineRun struct {
	Repo       string
	ID         int64
	Name       string
	RunNumber  int
	Branch     string
	Status     string
	Conclusion string
	URL        string
	UpdatedAt  time.Time
}

// SavedSearch is a named work-item query.
type SavedSearch struct {
	// ID is the unique identifier for the search.
	ID string

	// Name is the human-readable name.
	Name string

	// Query is the GitHub issue search query.
	Query string

	// CreatedAt is when the search was saved.
	CreatedAt time.Time
}

// Validate checks the saved search is usable.
func (s *SavedSearch) Validate() error {
	if strings.TrimSpace(s.Name) == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidInput)
	}
	if strings.TrimSpace(s.Query) == "" {
		return fmt.Errorf("%w: query is required", ErrInvalidInput)
	}
	return nil
}

// SplitRepo splits "owner/repo" into its parts.
func SplitRepo(repo string) (owner, name string, err error) {
	parts := strings.Split(strings.TrimSpace(repo), "/")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", fmt.Errorf("%w: repository must be owner/repo, got %q", ErrInvalidInput, repo)
	}
	return parts[0], parts[1], nil
}
