package services

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/custodia-labs/prcache/internal/core/domain"
	"github.com/custodia-labs/prcache/internal/core/ports/driven"
	"github.com/custodia-labs/prcache/internal/core/ports/driving"
)

// Ensure SettingsService implements the interface.
var _ driving.SettingsService = (*SettingsService)(nil)

// SettingsService reads and writes settings through a ConfigStore.
// Durations are stored as strings ("3m") so the config file stays editable.
type SettingsService struct {
	configStore driven.ConfigStore
}

// NewSettingsService creates a new settings service.
func NewSettingsService(configStore driven.ConfigStore) *SettingsService {
	return &SettingsService{configStore: configStore}
}

// Get retrieves current application settings.
func (s *SettingsService) Get() (*domain.AppSettings, error) {
	defaults := domain.DefaultAppSettings()

	settings := &domain.AppSettings{
		Refresh: domain.RefreshSettings{
			Cooldown: s.getDuration(domain.SettingRefreshCooldown, defaults.Refresh.Cooldown),
			Interval: s.getDuration(domain.SettingRefreshInterval, defaults.Refresh.Interval),
			OnBusy:   s.getBusyPolicy(defaults.Refresh.OnBusy),
			Periodic: domain.UpdateParameters{
				Kind:   s.getUpdateKind(defaults.Refresh.Periodic.Kind),
				Target: strings.TrimSpace(s.configStore.GetString(domain.SettingRefreshPeriodicTarget)),
			},
		},
		GitHub: domain.GitHubSettings{
			Token:   s.configStore.GetString(domain.SettingGitHubToken),
			BaseURL: s.configStore.GetString(domain.SettingGitHubBaseURL),
		},
	}

	return settings, nil
}

// Save validates and persists application settings.
// An empty token or base URL removes the key.
func (s *SettingsService) Save(settings *domain.AppSettings) error {
	if err := settings.Validate(); err != nil {
		return err
	}

	values := map[string]string{
		domain.SettingRefreshCooldown:       settings.Refresh.Cooldown.String(),
		domain.SettingRefreshInterval:       settings.Refresh.Interval.String(),
		domain.SettingRefreshOnBusy:         string(settings.Refresh.OnBusy),
		domain.SettingRefreshPeriodicKind:   string(settings.Refresh.Periodic.Kind),
		domain.SettingRefreshPeriodicTarget: settings.Refresh.Periodic.Target,
		domain.SettingGitHubToken:           settings.GitHub.Token,
		domain.SettingGitHubBaseURL:         settings.GitHub.BaseURL,
	}
	for _, key := range domain.SettingKeys() {
		value := values[key]
		if value == "" && (key == domain.SettingGitHubToken || key == domain.SettingGitHubBaseURL) {
			if err := s.configStore.Delete(key); err != nil {
				return fmt.Errorf("save %s: %w", key, err)
			}
			continue
		}
		if err := s.configStore.Set(key, value); err != nil {
			return fmt.Errorf("save %s: %w", key, err)
		}
	}
	return nil
}

// GetDefaults returns default settings.
func (s *SettingsService) GetDefaults() domain.AppSettings {
	return domain.DefaultAppSettings()
}

// Value returns the effective value of a config key as a string.
func (s *SettingsService) Value(key string) (string, error) {
	settings, err := s.Get()
	if err != nil {
		return "", err
	}

	switch key {
	case domain.SettingRefreshCooldown:
		return settings.Refresh.Cooldown.String(), nil
	case domain.SettingRefreshInterval:
		return settings.Refresh.Interval.String(), nil
	case domain.SettingRefreshOnBusy:
		return string(settings.Refresh.OnBusy), nil
	case domain.SettingRefreshPeriodicKind:
		return string(settings.Refresh.Periodic.Kind), nil
	case domain.SettingRefreshPeriodicTarget:
		return settings.Refresh.Periodic.Target, nil
	case domain.SettingGitHubToken:
		return settings.GitHub.Token, nil
	case domain.SettingGitHubBaseURL:
		return settings.GitHub.BaseURL, nil
	default:
		return "", unknownKeyError(key)
	}
}

// SetValue parses, validates and stores a config key.
func (s *SettingsService) SetValue(key, value string) error {
	value = strings.TrimSpace(value)

	switch key {
	case domain.SettingRefreshCooldown, domain.SettingRefreshInterval:
		d, err := domain.ParseDuration(value)
		if err != nil {
			return fmt.Errorf("%s: %w", key, err)
		}
		if d < 0 {
			return fmt.Errorf("%w: %s must not be negative", domain.ErrInvalidInput, key)
		}
		value = d.String()
	case domain.SettingRefreshOnBusy:
		if !domain.BusyPolicy(value).IsValid() {
			return fmt.Errorf("%w: %s must be %q or %q", domain.ErrInvalidInput, key,
				domain.BusyPolicyDrop, domain.BusyPolicyQueue)
		}
	case domain.SettingRefreshPeriodicKind:
		kind, err := domain.ParseUpdateKind(value)
		if err != nil {
			return err
		}
		value = string(kind)
	case domain.SettingRefreshPeriodicTarget:
		if value != "" && s.getUpdateKind(domain.UpdateKindPullRequests) != domain.UpdateKindQuery {
			if _, _, err := domain.SplitRepo(value); err != nil {
				return err
			}
		}
	case domain.SettingGitHubToken, domain.SettingGitHubBaseURL:
		if value == "" {
			return s.Unset(key)
		}
	default:
		return unknownKeyError(key)
	}

	if err := s.configStore.Set(key, value); err != nil {
		return fmt.Errorf("save %s: %w", key, err)
	}
	return nil
}

// Unset removes a config key so its default applies again.
func (s *SettingsService) Unset(key string) error {
	if !slices.Contains(domain.SettingKeys(), key) {
		return unknownKeyError(key)
	}
	if err := s.configStore.Delete(key); err != nil {
		return fmt.Errorf("unset %s: %w", key, err)
	}
	return nil
}

// Validate checks the stored settings without falling back to defaults.
// Keys prcache does not recognise are reported too, since they are usually typos.
func (s *SettingsService) Validate() error {
	var errs []error
	for _, key := range s.configStore.Keys() {
		if !slices.Contains(domain.SettingKeys(), key) {
			errs = append(errs, unknownKeyError(key))
		}
	}
	for _, key := range []string{domain.SettingRefreshCooldown, domain.SettingRefreshInterval} {
		if raw, ok := s.rawString(key); ok {
			if _, err := domain.ParseDuration(raw); err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", key, err))
			}
		}
	}
	if raw, ok := s.rawString(domain.SettingRefreshOnBusy); ok && !domain.BusyPolicy(raw).IsValid() {
		errs = append(errs, fmt.Errorf("%w: %s: %q", domain.ErrInvalidInput, domain.SettingRefreshOnBusy, raw))
	}
	if raw, ok := s.rawString(domain.SettingRefreshPeriodicKind); ok {
		if _, err := domain.ParseUpdateKind(raw); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", domain.SettingRefreshPeriodicKind, err))
		}
	}
	if len(errs) > 0 {
		return errors.Join(errs...)
	}

	settings, err := s.Get()
	if err != nil {
		return err
	}
	return settings.Validate()
}

// RefreshSettings returns the refresh coordinator settings.
func (s *SettingsService) RefreshSettings() domain.RefreshSettings {
	settings, err := s.Get()
	if err != nil {
		return domain.DefaultRefreshSettings()
	}
	return settings.Refresh
}

// ConfigPath returns where settings are persisted.
func (s *SettingsService) ConfigPath() string {
	return s.configStore.Path()
}

// rawString returns a stored value as a string, accepting numbers written
// by hand into the config file.
func (s *SettingsService) rawString(key string) (string, bool) {
	val, ok := s.configStore.Get(key)
	if !ok {
		return "", false
	}
	if str, ok := val.(string); ok {
		return str, true
	}
	return fmt.Sprint(val), true
}

func (s *SettingsService) getDuration(key string, defaultVal time.Duration) time.Duration {
	raw, ok := s.rawString(key)
	if !ok {
		return defaultVal
	}
	d, err := domain.ParseDuration(raw)
	if err != nil || d < 0 {
		return defaultVal
	}
	return d
}

func (s *SettingsService) getBusyPolicy(defaultVal domain.BusyPolicy) domain.BusyPolicy {
	p := domain.BusyPolicy(s.configStore.GetString(domain.SettingRefreshOnBusy))
	if !p.IsValid() {
		return defaultVal
	}
	return p
}

func (s *SettingsService) getUpdateKind(defaultVal domain.UpdateKind) domain.UpdateKind {
	kind, err := domain.ParseUpdateKind(s.configStore.GetString(domain.SettingRefreshPeriodicKind))
	if err != nil {
		return defaultVal
	}
	return kind
}

func unknownKeyError(key string) error {
	return fmt.Errorf("%w: unknown config key %q (known: %s)",
		domain.ErrInvalidInput, key, strings.Join(domain.SettingKeys(), ", "))
}
