// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Interfaces
//
//   - UpdateExecutor: Performs one fetch for the refresh coordinator
//   - PullRequestSource, WorkItemSource, PipelineSource: Remote GitHub data
//   - CacheStore: Cached pull requests, work items and pipeline runs
//   - UpdateStateStore: Last successful update per scope
//   - SavedSearchStore: Saved work-item queries
//   - ConfigStore: Application configuration
//   - TokenProvider: GitHub credentials
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter or connector package
package driven
