// Package domain defines the core business entities for prcache.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - UpdateParameters: What to refresh (pull requests, a saved query or pipelines)
//   - RefreshState: The refresh coordinator's state machine
//   - Notification: A refresh lifecycle event delivered to subscribers
//   - PullRequest, WorkItem, PipelineRun: Cached GitHub data
//   - AppSettings: User configuration
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
