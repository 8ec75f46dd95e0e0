package auth

import (
	"context"
	"os"
	"strings"

	"github.com/custodia-labs/prcache/internal/core/domain"
	"github.com/custodia-labs/prcache/internal/core/ports/driven"
)

// EnvToken is the environment variable consulted when no token is configured.
const EnvToken = "GITHUB_TOKEN"

// Ensure providers implement the TokenProvider interface.
var (
	_ driven.TokenProvider = (*ConfigTokenProvider)(nil)
	_ driven.TokenProvider = (*StaticTokenProvider)(nil)
)

// ConfigTokenProvider reads the token from the config store on every call,
// so a login or a config file edit takes effect without a restart.
// The GITHUB_TOKEN environment variable is used when the config has none.
type ConfigTokenProvider struct {
	config driven.ConfigStore
	getenv func(string) string
}

// NewConfigTokenProvider creates a token provider backed by config.
func NewConfigTokenProvider(config driven.ConfigStore) *ConfigTokenProvider {
	return &ConfigTokenProvider{config: config, getenv: os.Getenv}
}

// GetToken returns the configured token.
func (p *ConfigTokenProvider) GetToken(_ context.Context) (string, error) {
	token, _ := p.lookup()
	if token == "" {
		return "", domain.ErrAuthRequired
	}
	return token, nil
}

// AuthMethod returns where the token comes from.
func (p *ConfigTokenProvider) AuthMethod() domain.AuthMethod {
	_, method := p.lookup()
	return method
}

// IsAuthenticated returns true if a token is configured.
func (p *ConfigTokenProvider) IsAuthenticated() bool {
	token, _ := p.lookup()
	return token != ""
}

func (p *ConfigTokenProvider) lookup() (string, domain.AuthMethod) {
	if token := strings.TrimSpace(p.config.GetString(domain.SettingGitHubToken)); token != "" {
		return token, domain.AuthMethodPAT
	}
	if token := strings.TrimSpace(p.getenv(EnvToken)); token != "" {
		return token, domain.AuthMethodEnv
	}
	return "", domain.AuthMethodNone
}

// StaticTokenProvider always returns the same token.
type StaticTokenProvider struct {
	token string
}

// NewStaticTokenProvider creates a provider for a fixed token.
func NewStaticTokenProvider(token string) *StaticTokenProvider {
	return &StaticTokenProvider{token: token}
}

// GetToken returns the token, or domain.ErrAuthRequired if it is empty.
func (p *StaticTokenProvider) GetToken(_ context.Context) (string, error) {
	if p.token == "" {
		return "", domain.ErrAuthRequired
	}
	return p.token, nil
}

// AuthMethod returns AuthMethodPAT, or AuthMethodNone for an empty token.
func (p *StaticTokenProvider) AuthMethod() domain.AuthMethod {
	if p.token == "" {
		return domain.AuthMethodNone
	}
	return domain.AuthMethodPAT
}

// IsAuthenticated returns true if the token is non-empty.
func (p *StaticTokenProvider) IsAuthenticated() bool {
	return p.token != ""
}
