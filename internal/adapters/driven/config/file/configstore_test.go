package file

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestConfig(t *testing.T) *ConfigStore {
	t.Helper()

	store, err := NewConfigStore(t.TempDir())
	require.NoError(t, err)
	require.NotNil(t, store)
	return store
}

func TestConfigStore_Defaults(t *testing.T) {
	store := setupTestConfig(t)

	assert.Equal(t, 5, store.GetInt(KeySearchTopK))
	assert.Equal(t, 2000, store.GetInt(KeyContextMaxTokens))
	assert.Equal(t, "", store.GetString(KeyEmbeddingBaseURL))
}

func TestConfigStore_SetAndGet(t *testing.T) {
	store := setupTestConfig(t)

	require.NoError(t, store.Set(KeyEmbeddingModel, "all-minilm"))
	require.NoError(t, store.Set(KeySearchTopK, 10))
	require.NoError(t, store.Set(KeyEmbeddingRateLimit, 4.5))
	require.NoError(t, store.Set("watch.enabled", true))

	assert.Equal(t, "all-minilm", store.GetString(KeyEmbeddingModel))
	assert.Equal(t, 10, store.GetInt(KeySearchTopK))
	assert.Equal(t, 4.5, store.GetFloat(KeyEmbeddingRateLimit))
	assert.True(t, store.GetBool("watch.enabled"))

	_, ok := store.Get("missing.key")
	assert.False(t, ok)
}

func TestConfigStore_TypeMismatchesReturnZero(t *testing.T) {
	store := setupTestConfig(t)

	require.NoError(t, store.Set("key", "not a number"))

	assert.Equal(t, 0, store.GetInt("key"))
	assert.Equal(t, 0.0, store.GetFloat("key"))
	assert.False(t, store.GetBool("key"))
	assert.Equal(t, "", store.GetString(KeySearchTopK))
}

func TestConfigStore_GetFloatFromInt(t *testing.T) {
	store := setupTestConfig(t)

	require.NoError(t, store.Set(KeyEmbeddingRateLimit, 8))
	assert.Equal(t, 8.0, store.GetFloat(KeyEmbeddingRateLimit))
}

func TestConfigStore_PersistsAcrossReopen(t *testing.T) {
	dir := t.TempDir()

	store, err := NewConfigStore(dir)
	require.NoError(t, err)
	require.NoError(t, store.Set(KeyDataDir, "/var/lib/reefrag"))

	reopened, err := NewConfigStore(dir)
	require.NoError(t, err)
	assert.Equal(t, "/var/lib/reefrag", reopened.GetString(KeyDataDir))
}

func TestConfigStore_LoadFlattensNestedTables(t *testing.T) {
	dir := t.TempDir()
	content := `
[embedding]
model = "all-minilm"
rate_limit = 2.0

[search]
top_k = 7
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.toml"), []byte(content), 0600))

	store, err := NewConfigStore(dir)
	require.NoError(t, err)

	assert.Equal(t, "all-minilm", store.GetString(KeyEmbeddingModel))
	assert.Equal(t, 2.0, store.GetFloat(KeyEmbeddingRateLimit))
	assert.Equal(t, 7, store.GetInt(KeySearchTopK))
	// Defaults still fill the untouched keys
	assert.Equal(t, 2000, store.GetInt(KeyContextMaxTokens))
}

func TestConfigStore_Path(t *testing.T) {
	dir := t.TempDir()
	store, err := NewConfigStore(dir)
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(dir, "config.toml"), store.Path())
}
