package file

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewConfigStore_Success(t *testing.T) {
	tmpDir := t.TempDir()

	store, err := NewConfigStore(tmpDir)

	require.NoError(t, err)
	assert.Equal(t, filepath.Join(tmpDir, "config.toml"), store.Path())
	assert.Empty(t, store.Keys())
}

func TestNewConfigStore_DefaultDir(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	store, err := NewConfigStore("")

	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, ".prcache", "config.toml"), store.Path())
}

func TestNewConfigStore_NestedDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "a", "b")

	_, err := NewConfigStore(dir)

	require.NoError(t, err)
	info, err := os.Stat(dir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestNewConfigStore_CorruptedFile(t *testing.T) {
	tmpDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(tmpDir, "config.toml"), []byte("[refresh\ncooldown ="), 0600))

	_, err := NewConfigStore(tmpDir)

	assert.Error(t, err)
}

func TestConfigStore_TypedGetters(t *testing.T) {
	store, err := NewConfigStore(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, store.Set("refresh.cooldown", "3m"))
	require.NoError(t, store.Set("limits.max", 50))

	assert.Equal(t, "3m", store.GetString("refresh.cooldown"))
	assert.Equal(t, "", store.GetString("limits.max"))

	val, ok := store.Get("limits.max")
	assert.True(t, ok)
	assert.Equal(t, 50, val)

	_, ok = store.Get("missing")
	assert.False(t, ok)
}

func TestConfigStore_WritesNestedTables(t *testing.T) {
	store, err := NewConfigStore(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, store.Set("refresh.cooldown", "90s"))
	require.NoError(t, store.Set("github.token", "ghp_x"))

	data, err := os.ReadFile(store.Path())
	require.NoError(t, err)
	assert.Contains(t, string(data), "[refresh]")
	assert.Contains(t, string(data), "[github]")
	assert.NotContains(t, string(data), "refresh.cooldown")
}

func TestConfigStore_PersistenceAcrossInstances(t *testing.T) {
	tmpDir := t.TempDir()
	store, err := NewConfigStore(tmpDir)
	require.NoError(t, err)

	require.NoError(t, store.Set("refresh.interval", "10m"))
	require.NoError(t, store.Set("refresh.on_busy", "queue"))
	require.NoError(t, store.Set("limits.max", 7))

	reopened, err := NewConfigStore(tmpDir)
	require.NoError(t, err)

	assert.Equal(t, "10m", reopened.GetString("refresh.interval"))
	assert.Equal(t, "queue", reopened.GetString("refresh.on_busy"))
	val, _ := reopened.Get("limits.max")
	assert.Equal(t, int64(7), val, "TOML integers decode as int64")
	assert.Equal(t, []string{"limits.max", "refresh.interval", "refresh.on_busy"}, reopened.Keys())
}

func TestConfigStore_ReadsHandWrittenFile(t *testing.T) {
	tmpDir := t.TempDir()
	content := `
[refresh]
cooldown = "1m"
periodic_target = "acme/widgets"

[github]
base_url = "https://ghe.example.com/api/v3"
`
	require.NoError(t, os.WriteFile(filepath.Join(tmpDir, "config.toml"), []byte(content), 0600))

	store, err := NewConfigStore(tmpDir)
	require.NoError(t, err)

	assert.Equal(t, "1m", store.GetString("refresh.cooldown"))
	assert.Equal(t, "acme/widgets", store.GetString("refresh.periodic_target"))
	assert.Equal(t, "https://ghe.example.com/api/v3", store.GetString("github.base_url"))
}

func TestConfigStore_Delete(t *testing.T) {
	tmpDir := t.TempDir()
	store, err := NewConfigStore(tmpDir)
	require.NoError(t, err)
	require.NoError(t, store.Set("github.token", "ghp_x"))
	require.NoError(t, store.Set("refresh.cooldown", "2m"))

	require.NoError(t, store.Delete("github.token"))
	require.NoError(t, store.Delete("github.token"))

	reopened, err := NewConfigStore(tmpDir)
	require.NoError(t, err)
	_, ok := reopened.Get("github.token")
	assert.False(t, ok)
	assert.Equal(t, "2m", reopened.GetString("refresh.cooldown"))
}

func TestConfigStore_ConflictingKeys(t *testing.T) {
	store, err := NewConfigStore(t.TempDir())
	require.NoError(t, err)
	require.NoError(t, store.Set("refresh", "on"))

	err = store.Set("refresh.cooldown", "1m")

	assert.Error(t, err)
}

func TestConfigStore_FilePermissions(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("file modes are not enforced on windows")
	}
	store, err := NewConfigStore(t.TempDir())
	require.NoError(t, err)
	require.NoError(t, store.Set("github.token", "ghp_secret"))

	info, err := os.Stat(store.Path())
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())
}

func TestConfigStore_SaveLeavesNoTempFiles(t *testing.T) {
	tmpDir := t.TempDir()
	store, err := NewConfigStore(tmpDir)
	require.NoError(t, err)

	require.NoError(t, store.Set("refresh.cooldown", "1m"))
	require.NoError(t, store.Save())

	entries, err := os.ReadDir(tmpDir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "config.toml", entries[0].Name())
}

func TestConfigStore_LoadPicksUpExternalEdit(t *testing.T) {
	store, err := NewConfigStore(t.TempDir())
	require.NoError(t, err)
	require.NoError(t, store.Set("refresh.cooldown", "1m"))

	require.NoError(t, os.WriteFile(store.Path(), []byte("[refresh]\ncooldown = \"5m\"\n"), 0600))
	require.NoError(t, store.Load())

	assert.Equal(t, "5m", store.GetString("refresh.cooldown"))
}

func TestConfigStore_LoadInvalidKeepsValues(t *testing.T) {
	store, err := NewConfigStore(t.TempDir())
	require.NoError(t, err)
	require.NoError(t, store.Set("refresh.cooldown", "1m"))

	require.NoError(t, os.WriteFile(store.Path(), []byte("not = [valid"), 0600))

	assert.Error(t, store.Load())
	assert.Equal(t, "1m", store.GetString("refresh.cooldown"))
}

func TestConfigStore_Concurrency(t *testing.T) {
	store, err := NewConfigStore(t.TempDir())
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := range 10 {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			_ = store.Set(fmt.Sprintf("keys.k%d", n), n)
			_, _ = store.Get(fmt.Sprintf("keys.k%d", n))
		}(i)
	}
	wg.Wait()

	assert.Len(t, store.Keys(), 10)
}

func TestUnflattenMap(t *testing.T) {
	nested, err := unflattenMap(map[string]any{
		"refresh.cooldown": "1m",
		"refresh.interval": "5m",
		"top":              true,
	})

	require.NoError(t, err)
	assert.Equal(t, map[string]any{
		"refresh": map[string]any{"cooldown": "1m", "interval": "5m"},
		"top":     true,
	}, nested)
	assert.Equal(t, map[string]any{
		"refresh.cooldown": "1m",
		"refresh.interval": "5m",
		"top":              true,
	}, flattenMap(nested, ""))
}
