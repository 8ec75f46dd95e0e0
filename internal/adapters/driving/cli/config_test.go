package cli

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/prcache/internal/core/domain"
)

func TestConfigShow_MasksToken(t *testing.T) {
	settings := newMockSettingsService()
	settings.values[domain.SettingGitHubToken] = "ghp_1234567890abcd"
	settings.values[domain.SettingRefreshCooldown] = "3m0s"
	setServices(t, Services{Settings: settings})

	out, err := execute(context.Background(), "config", "show")

	require.NoError(t, err)
	assert.Contains(t, out, "refresh.cooldown")
	assert.Contains(t, out, "3m0s")
	assert.Contains(t, out, "ghp_...abcd")
	assert.NotContains(t, out, "ghp_1234567890abcd")
	assert.Contains(t, out, "(not set)")
}

func TestConfigShow_ShowSecrets(t *testing.T) {
	settings := newMockSettingsService()
	settings.values[domain.SettingGitHubToken] = "ghp_1234567890abcd"
	setServices(t, Services{Settings: settings})

	out, err := execute(context.Background(), "config", "show", "--show-secrets")

	require.NoError(t, err)
	assert.Contains(t, out, "ghp_1234567890abcd")
}

func TestConfigGet_UnknownKey(t *testing.T) {
	setServices(t, Services{Settings: newMockSettingsService()})

	_, err := execute(context.Background(), "config", "get", "nope")

	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestConfigSet_AppliesRefreshSettings(t *testing.T) {
	settings := newMockSettingsService()
	refresh := newMockRefreshService()
	setServices(t, Services{Settings: settings, Refresh: refresh})

	out, err := execute(context.Background(), "config", "set", domain.SettingRefreshPeriodicTarget, "acme/widgets")

	require.NoError(t, err)
	assert.Contains(t, out, "refresh.periodic_target = acme/widgets")
	require.Len(t, refresh.settingsUpdates, 1)
	assert.Equal(t, "acme/widgets", refresh.settingsUpdates[0].Periodic.Target)
}

func TestConfigSet_RejectsToken(t *testing.T) {
	setServices(t, Services{Settings: newMockSettingsService()})

	_, err := execute(context.Background(), "config", "set", domain.SettingGitHubToken, "ghp_x")

	assert.ErrorContains(t, err, "auth login")
}

func TestConfigSet_InvalidValue(t *testing.T) {
	settings := newMockSettingsService()
	settings.setErr = errors.Join(domain.ErrInvalidInput, errors.New("bad duration"))
	setServices(t, Services{Settings: settings})

	_, err := execute(context.Background(), "config", "set", domain.SettingRefreshCooldown, "soon")

	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestConfigUnset(t *testing.T) {
	settings := newMockSettingsService()
	settings.values[domain.SettingRefreshOnBusy] = "queue"
	setServices(t, Services{Settings: settings})

	out, err := execute(context.Background(), "config", "unset", domain.SettingRefreshOnBusy)

	require.NoError(t, err)
	assert.Contains(t, out, "refresh.on_busy reset to default")
	assert.NotContains(t, settings.values, domain.SettingRefreshOnBusy)
}

func TestConfigPath(t *testing.T) {
	setServices(t, Services{Settings: newMockSettingsService()})

	out, err := execute(context.Background(), "config", "path")

	require.NoError(t, err)
	assert.Contains(t, out, "/tmp/prcache/config.toml")
}
