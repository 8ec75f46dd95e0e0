package domain

import (
	"fmt"
	"strings"
	"time"
)

// Config keys.
//
//nolint:gosec // G101: These are config key names, not actual credentials.
const (
	SettingRefreshCooldown       = "refresh.cooldown"
	SettingRefreshInterval       = "refresh.interval"
	SettingRefreshOnBusy         = "refresh.on_busy"
	SettingRefreshPeriodicKind   = "refresh.periodic_kind"
	SettingRefreshPeriodicTarget = "refresh.periodic_target"
	SettingGitHubToken           = "github.token"
	SettingGitHubBaseURL         = "github.base_url"
)

// SettingKeys returns every recognised config key in display order.
func SettingKeys() []string {
	return []string{
		SettingRefreshCooldown,
		SettingRefreshInterval,
		SettingRefreshOnBusy,
		SettingRefreshPeriodicKind,
		SettingRefreshPeriodicTarget,
		SettingGitHubToken,
		SettingGitHubBaseURL,
	}
}

// IsSecretSetting returns true if the key holds a credential that must not be
// echoed back to the terminal.
func IsSecretSetting(key string) bool {
	return key == SettingGitHubToken
}

// GitHubSettings configures the GitHub connection.
type GitHubSettings struct {
	// Token is the Personal Access Token. Empty falls back to GITHUB_TOKEN.
	Token string

	// BaseURL overrides the API endpoint for GitHub Enterprise.
	BaseURL string
}

// AppSettings holds all user-configurable settings.
type AppSettings struct {
	Refresh RefreshSettings
	GitHub  GitHubSettings
}

// DefaultAppSettings returns sensible defaults.
func DefaultAppSettings() AppSettings {
	return AppSettings{
		Refresh: DefaultRefreshSettings(),
	}
}

// Validate checks if the settings are usable.
func (s *AppSettings) Validate() error {
	if s.Refresh.Cooldown < 0 {
		return fmt.Errorf("%w: refresh.cooldown must not be negative", ErrInvalidInput)
	}
	if s.Refresh.Interval < 0 {
		return fmt.Errorf("%w: refresh.interval must not be negative", ErrInvalidInput)
	}
	if !s.Refresh.OnBusy.IsValid() {
		return fmt.Errorf("%w: refresh.on_busy must be %q or %q, got %q",
			ErrInvalidInput, BusyPolicyDrop, BusyPolicyQueue, s.Refresh.OnBusy)
	}
	if err := s.Refresh.Periodic.Validate(); err != nil {
		return err
	}
	if s.Refresh.Periodic.Target != "" && s.Refresh.Periodic.Kind != UpdateKindQuery {
		if _, _, err := SplitRepo(s.Refresh.Periodic.Target); err != nil {
			return err
		}
	}
	return nil
}

// ParseDuration parses a duration setting. A bare integer is read as seconds.
func ParseDuration(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("%w: empty duration", ErrInvalidInput)
	}
	if d, err := time.ParseDuration(s); err == nil {
		return d, nil
	}
	var secs int64
	if _, err := fmt.Sscanf(s, "%d", &secs); err == nil && fmt.Sprint(secs) == s {
		return time.Duration(secs) * time.Second, nil
	}
	return 0, fmt.Errorf("%w: invalid duration %q", ErrInvalidInput, s)
}
