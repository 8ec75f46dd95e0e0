package github

const (
	// DefaultMaxSearchResults caps the results stored per saved search.
	DefaultMaxSearchResults = 200

	// DefaultMaxWorkflowRuns caps the workflow runs stored per repository.
	DefaultMaxWorkflowRuns = 50
)

// Config holds the GitHub connector settings.
type Config struct {
	// MaxSearchResults caps the results fetched per saved search.
	MaxSearchResults int

	// MaxWorkflowRuns caps the workflow runs fetched per repository.
	MaxWorkflowRuns int
}

// DefaultConfig returns the default connector settings.
func DefaultConfig() Config {
	return Config{
		MaxSearchResults: DefaultMaxSearchResults,
		MaxWorkflowRuns:  DefaultMaxWorkflowRuns,
	}
}

// withDefaults fills zero values with defaults.
func (c Config) withDefaults() Config {
	if c.MaxSearchResults <= 0 {
		c.MaxSearchResults = DefaultMaxSearchResults
	}
	if c.MaxWorkflowRuns <= 0 {
		c.MaxWorkflowRuns = DefaultMaxWorkflowRuns
	}
	// The runs endpoint returns at most 100 per page.
	if c.MaxWorkflowRuns > DefaultPerPage {
		c.MaxWorkflowRuns = DefaultPerPage
	}
	return c
}
