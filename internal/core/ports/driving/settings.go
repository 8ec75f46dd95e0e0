package driving

import "github.com/custodia-labs/prcache/internal/core/domain"

// SettingsService manages application settings.
type SettingsService interface {
	// Get retrieves current application settings.
	// Unset or unparsable values fall back to defaults.
	Get() (*domain.AppSettings, error)

	// Save validates and persists application settings.
	Save(settings *domain.AppSettings) error

	// GetDefaults returns default settings.
	GetDefaults() domain.AppSettings

	// Value returns the effective value of a config key as a string.
	// Returns domain.ErrInvalidInput for unknown keys.
	Value(key string) (string, error)

	// SetValue parses, validates and stores a config key.
	SetValue(key, value string) error

	// Unset removes a config key so its default applies again.
	Unset(key string) error

	// Validate checks the stored settings without falling back to defaults.
	Validate() error

	// RefreshSettings returns the refresh coordinator settings.
	RefreshSettings() domain.RefreshSettings

	// ConfigPath returns where settings are persisted.
	ConfigPath() string
}
