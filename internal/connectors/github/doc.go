// Package github fetches pull requests, work-item searches and workflow runs
// from the GitHub REST API.
//
// # Architecture
//
// The package implements the driven source ports used by the fetch executor:
//
//   - Source: maps API objects onto cached domain rows
//     ([driven.PullRequestSource], [driven.WorkItemSource], [driven.PipelineSource])
//   - Client: handles GitHub API communication with rate limiting
//   - Config: result caps and the API base URL
//
// # Authentication
//
// The client asks its [driven.TokenProvider] for a token on first use and
// caches the resulting HTTP client. Call Client.Reset after the account
// changes. Both classic and fine-grained personal access tokens work; private
// repositories need the 'repo' scope.
//
// # Rate Limiting
//
// Two strategies apply to every request:
//
//  1. Proactive throttling: a token bucket limits requests to about 1.2 per
//     second, well under the 5,000/hour quota.
//
//  2. Reactive handling: the client records the quota go-github parses from
//     each response. Once fewer than 100 requests remain, calls wait until
//     the reset time.
//
// Exhausted quotas surface as [RateLimitError], which matches
// [domain.ErrRateLimited]. Retrying is left to the next refresh.
//
// # Error Handling
//
// API failures are returned as [APIError]. 401 responses match
// [domain.ErrAuthInvalid] and 404 responses match [domain.ErrNotFound].
// Cancelling the request context aborts pagination between pages.
package github
