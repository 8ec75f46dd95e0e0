package domain

// AuthMethod describes where the GitHub token comes from.
type AuthMethod string

const (
	// AuthMethodNone means no token is configured.
	AuthMethodNone AuthMethod = "none"
	// AuthMethodPAT uses a Personal Access Token stored in the config file.
	AuthMethodPAT AuthMethod = "pat"
	// AuthMethodEnv uses a token from the GITHUB_TOKEN environment variable.
	AuthMethodEnv AuthMethod = "env"
)

// String returns the string representation.
func (m AuthMethod) String() string {
	return string(m)
}
