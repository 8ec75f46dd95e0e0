package driven

// ConfigStore provides access to application configuration.
// Keys use dot notation ("refresh.cooldown"); implementations handle
// persistence and type conversion.
type ConfigStore interface {
	// Get retrieves a configuration value by key.
	// Returns the value and a boolean indicating if the key exists.
	Get(key string) (any, bool)

	// GetString retrieves a string configuration value.
	// Returns empty string if key doesn't exist or isn't a string.
	GetString(key string) string

	// Keys returns all stored keys in sorted order, including ones
	// prcache does not recognise.
	Keys() []string

	// Set stores a configuration value.
	// The value is persisted immediately.
	Set(key string, value any) error

	// Delete removes a configuration value.
	// The change is persisted immediately; missing keys are not an error.
	Delete(key string) error

	// Save persists the current configuration to storage.
	Save() error

	// Load re-reads configuration from storage, replacing what is held in
	// memory. The file watcher calls it after external edits.
	Load() error

	// Path returns the configuration file path.
	Path() string
}
