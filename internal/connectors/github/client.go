package github

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	gh "github.com/google/go-github/v80/github"
	"golang.org/x/oauth2"

	"github.com/custodia-labs/prcache/internal/core/domain"
	"github.com/custodia-labs/prcache/internal/core/ports/driven"
)

const (
	// DefaultTimeout is the default HTTP request timeout.
	DefaultTimeout = 30 * time.Second

	// DefaultPerPage is the page size requested from list endpoints.
	DefaultPerPage = 100
)

// Client wraps the go-github client with rate limiting and error mapping.
type Client struct {
	tokenProvider driven.TokenProvider
	rateLimiter   *RateLimiter
	baseURL       string

	mu sync.Mutex
	gh *gh.Client
}

// NewClient creates a GitHub API client that authenticates with tokens from
// tokenProvider. The underlying HTTP client is built on first use.
func NewClient(tokenProvider driven.TokenProvider) *Client {
	return &Client{
		tokenProvider: tokenProvider,
		rateLimiter:   NewRateLimiter(),
	}
}

// NewClientWithHTTPClient creates a GitHub client with a custom http.Client.
// The http.Client is responsible for authentication.
func NewClientWithHTTPClient(httpClient *http.Client) *Client {
	return &Client{
		gh:          gh.NewClient(httpClient),
		rateLimiter: NewRateLimiter(),
	}
}

// NewClientWithToken creates a GitHub client with a static access token.
func NewClientWithToken(ctx context.Context, token string) *Client {
	return &Client{
		gh:          gh.NewClient(newTokenHTTPClient(ctx, token)),
		rateLimiter: NewRateLimiter(),
	}
}

func newTokenHTTPClient(ctx context.Context, token string) *http.Client {
	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
	tc := oauth2.NewClient(ctx, ts)
	tc.Timeout = DefaultTimeout
	return tc
}

// SetBaseURL points the client at a GitHub Enterprise or test server.
func (c *Client) SetBaseURL(baseURL string) error {
	if baseURL == "" {
		return nil
	}
	if !strings.HasSuffix(baseURL, "/") {
		baseURL += "/"
	}
	u, err := url.Parse(baseURL)
	if err != nil {
		return fmt.Errorf("%w: base url %q: %v", domain.ErrInvalidInput, baseURL, err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.baseURL = u.String()
	if c.gh != nil {
		c.gh.BaseURL = u
	}
	return nil
}

// Reset drops the cached HTTP client so the next call fetches a fresh token.
// Clients created with a fixed http.Client or token are not affected.
func (c *Client) Reset() {
	if c.tokenProvider == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gh = nil
}

// client returns the go-github client, creating it from the token provider
// if needed.
func (c *Client) client(ctx context.Context) (*gh.Client, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.gh != nil {
		return c.gh, nil
	}
	if c.tokenProvider == nil {
		return nil, domain.ErrAuthRequired
	}

	token, err := c.tokenProvider.GetToken(ctx)
	if err != nil {
		return nil, fmt.Errorf("get token: %w", err)
	}

	// The token source must outlive the request context that created it.
	client := gh.NewClient(newTokenHTTPClient(context.Background(), token))
	if c.baseURL != "" {
		u, err := url.Parse(c.baseURL)
		if err != nil {
			return nil, err
		}
		client.BaseURL = u
	}
	c.gh = client
	return client, nil
}

// ListPullRequests lists pull requests of a repository, following pagination.
func (c *Client) ListPullRequests(
	ctx context.Context, owner, repo string, opts *gh.PullRequestListOptions,
) ([]*gh.PullRequest, error) {
	client, err := c.client(ctx)
	if err != nil {
		return nil, err
	}

	var all []*gh.PullRequest
	for {
		if err := c.wait(ctx); err != nil {
			return nil, err
		}

		prs, resp, err := client.PullRequests.List(ctx, owner, repo, opts)
		c.rateLimiter.Observe(resp)
		if err != nil {
			return nil, c.wrapError(err, "list pull requests")
		}

		all = append(all, prs...)
		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}
	return all, nil
}

// SearchIssues runs an issue search and returns at most limit results.
func (c *Client) SearchIssues(
	ctx context.Context, query string, opts *gh.SearchOptions, limit int,
) ([]*gh.Issue, error) {
	client, err := c.client(ctx)
	if err != nil {
		return nil, err
	}

	var all []*gh.Issue
	for {
		if err := c.wait(ctx); err != nil {
			return nil, err
		}

		result, resp, err := client.Search.Issues(ctx, query, opts)
		c.rateLimiter.Observe(resp)
		if err != nil {
			return nil, c.wrapError(err, "search issues")
		}

		all = append(all, result.Issues...)
		if limit > 0 && len(all) >= limit {
			return all[:limit], nil
		}
		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}
	return all, nil
}

// ListWorkflowRuns returns the most recent workflow runs of a repository.
// Only the first page is fetched; opts.PerPage bounds the result.
func (c *Client) ListWorkflowRuns(
	ctx context.Context, owner, repo string, opts *gh.ListWorkflowRunsOptions,
) ([]*gh.WorkflowRun, error) {
	client, err := c.client(ctx)
	if err != nil {
		return nil, err
	}
	if err := c.wait(ctx); err != nil {
		return nil, err
	}

	runs, resp, err := client.Actions.ListRepositoryWorkflowRuns(ctx, owner, repo, opts)
	c.rateLimiter.Observe(resp)
	if err != nil {
		return nil, c.wrapError(err, "list workflow runs")
	}
	return runs.WorkflowRuns, nil
}

// CurrentUser returns the login of the authenticated user.
func (c *Client) CurrentUser(ctx context.Context) (string, error) {
	client, err := c.client(ctx)
	if err != nil {
		return "", err
	}
	if err := c.wait(ctx); err != nil {
		return "", err
	}

	user, resp, err := client.Users.Get(ctx, "")
	c.rateLimiter.Observe(resp)
	if err != nil {
		return "", c.wrapError(err, "get user")
	}
	return user.GetLogin(), nil
}

// ValidateCredentials checks the token by fetching the authenticated user.
func (c *Client) ValidateCredentials(ctx context.Context) error {
	_, err := c.CurrentUser(ctx)
	return err
}

// RateLimiter returns the rate limiter.
func (c *Client) RateLimiter() *RateLimiter {
	return c.rateLimiter
}

func (c *Client) wait(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := c.rateLimiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limit wait: %w", err)
	}
	return nil
}


// wrapError converts go-github errors to our error types.
func (c *Client) wrapError(err error, operation string) error {
	if err == nil {
		return nil
	}

	var rateLimitErr *gh.RateLimitError
	if errors.As(err, &rateLimitErr) {
		return &RateLimitError{
			ResetAt:   rateLimitErr.Rate.Reset.Time,
			Remaining: rateLimitErr.Rate.Remaining,
			Limit:     rateLimitErr.Rate.Limit,
		}
	}

	var abuseErr *gh.AbuseRateLimitError
	if errors.As(err, &abuseErr) {
		resetAt := time.Now()
		if abuseErr.RetryAfter != nil {
			resetAt = resetAt.Add(*abuseErr.RetryAfter)
		}
		return &RateLimitError{ResetAt: resetAt}
	}

	var ghErr *gh.ErrorResponse
	if errors.As(err, &ghErr) && ghErr.Response != nil {
		apiErr := &APIError{
			StatusCode: ghErr.Response.StatusCode,
			Message:    ghErr.Message,
			Operation:  operation,
		}
		if ghErr.Response.Request != nil {
			apiErr.URL = ghErr.Response.Request.URL.String()
		}
		return apiErr
	}

	return fmt.Errorf("%s: %w", operation, err)
}
