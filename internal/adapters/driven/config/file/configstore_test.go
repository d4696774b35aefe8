package file

import (
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) (*ConfigStore, string) {
	t.Helper()
	dir := t.TempDir()
	store, err := NewConfigStore(dir)
	require.NoError(t, err)
	return store, dir
}

func TestNewConfigStore(t *testing.T) {
	store, dir := newTestStore(t)

	assert.Equal(t, filepath.Join(dir, ConfigFile), store.Path())
	_, ok := store.Get("anything")
	assert.False(t, ok)
}

func TestNewConfigStore_CreatesNestedDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "a", "b")

	_, err := NewConfigStore(dir)
	require.NoError(t, err)

	info, err := os.Stat(dir)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o700), info.Mode().Perm())
}

func TestNewConfigStore_Errors(t *testing.T) {
	t.Run("cannot create dir", func(t *testing.T) {
		store, err := NewConfigStore("/dev/null/nope")
		assert.Error(t, err)
		assert.Nil(t, store)
	})

	t.Run("corrupt file", func(t *testing.T) {
		dir := t.TempDir()
		require.NoError(t, os.WriteFile(filepath.Join(dir, ConfigFile), []byte("not toml {{[["), 0o600))
		store, err := NewConfigStore(dir)
		assert.Error(t, err)
		assert.Nil(t, store)
	})
}

func TestConfigStore_TypedGetters(t *testing.T) {
	store, _ := newTestStore(t)
	require.NoError(t, store.Set("dataset.path", "/srv/dataset"))
	require.NoError(t, store.Set("retrieval.top_k", 5))
	require.NoError(t, store.Set("retrieval.temperature", 0.7))
	require.NoError(t, store.Set("watcher.enabled", true))
	require.NoError(t, store.Set("tags", []string{"a", "b"}))

	assert.Equal(t, "/srv/dataset", store.GetString("dataset.path"))
	assert.Equal(t, 5, store.GetInt("retrieval.top_k"))
	assert.InDelta(t, 0.7, store.GetFloat("retrieval.temperature"), 1e-9)
	assert.InDelta(t, 5.0, store.GetFloat("retrieval.top_k"), 1e-9)
	assert.True(t, store.GetBool("watcher.enabled"))
	assert.Equal(t, []string{"a", "b"}, store.GetStringSlice("tags"))

	assert.Empty(t, store.GetString("retrieval.top_k"))
	assert.Zero(t, store.GetInt("dataset.path"))
	assert.Zero(t, store.GetFloat("dataset.path"))
	assert.False(t, store.GetBool("missing"))
	assert.Nil(t, store.GetStringSlice("missing"))
}

func TestConfigStore_WritesNestedTables(t *testing.T) {
	store, _ := newTestStore(t)
	require.NoError(t, store.Set("retrieval.top_k", 3))
	require.NoError(t, store.Set("llm.model", "open-mistral-7b"))

	data, err := os.ReadFile(store.Path())
	require.NoError(t, err)

	assert.Contains(t, string(data), "[retrieval]")
	assert.Contains(t, string(data), "top_k = 3")
	assert.Contains(t, string(data), "[llm]")
}

func TestConfigStore_ReadsHandWrittenFile(t *testing.T) {
	dir := t.TempDir()
	content := `
[dataset]
path = "/data/campus"

[retrieval]
top_k = 4
temperature = 1.0

[scheduler]
rebuild_interval = "12h"
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, ConfigFile), []byte(content), 0o600))

	store, err := NewConfigStore(dir)
	require.NoError(t, err)

	assert.Equal(t, "/data/campus", store.GetString("dataset.path"))
	assert.Equal(t, 4, store.GetInt("retrieval.top_k"))
	assert.InDelta(t, 1.0, store.GetFloat("retrieval.temperature"), 1e-9)
	assert.Equal(t, "12h", store.GetString("scheduler.rebuild_interval"))
}

func TestConfigStore_Persistence(t *testing.T) {
	store, dir := newTestStore(t)
	require.NoError(t, store.Set("sessions.backend", "sqlite"))
	require.NoError(t, store.Set("sessions.max_turns", int64(40)))
	require.NoError(t, store.Set("llm.burst", 2))

	reopened, err := NewConfigStore(dir)
	require.NoError(t, err)

	assert.Equal(t, "sqlite", reopened.GetString("sessions.backend"))
	assert.Equal(t, 40, reopened.GetInt("sessions.max_turns"))
	assert.Equal(t, 2, reopened.GetInt("llm.burst"))

	info, err := os.Stat(reopened.Path())
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
}

func TestConfigStore_ScalarAndTableCollision(t *testing.T) {
	store, dir := newTestStore(t)
	require.NoError(t, store.Set("llm", "oops"))
	require.NoError(t, store.Set("llm.model", "mistral"))

	reopened, err := NewConfigStore(dir)
	require.NoError(t, err)

	assert.Equal(t, "oops", reopened.GetString("llm"))
	assert.Equal(t, "mistral", reopened.GetString("llm.model"))
}

func TestConfigStore_SaveAndLoad(t *testing.T) {
	store, _ := newTestStore(t)

	store.mu.Lock()
	store.data["index.path"] = "/tmp/idx"
	store.mu.Unlock()
	require.NoError(t, store.Save())

	require.NoError(t, os.WriteFile(store.Path(), []byte("[index]\npath = \"/other\"\n"), 0o600))
	require.NoError(t, store.Load())
	assert.Equal(t, "/other", store.GetString("index.path"))

	require.NoError(t, os.Remove(store.Path()))
	require.NoError(t, store.Load())
	_, ok := store.Get("index.path")
	assert.False(t, ok)
}

func TestConfigStore_WriteErrors(t *testing.T) {
	store, _ := newTestStore(t)

	assert.Error(t, store.Set("channel", make(chan int)))

	store.mu.Lock()
	delete(store.data, "channel")
	store.mu.Unlock()
	require.NoError(t, os.Mkdir(store.Path(), 0o700))
	assert.Error(t, store.Set("key", "value"))
}

func TestConfigStore_Concurrency(t *testing.T) {
	store, _ := newTestStore(t)

	var wg sync.WaitGroup
	for i := range 10 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			key := "k.v" + string(rune('0'+i))
			_ = store.Set(key, i)
			_ = store.GetInt(key)
			_, _ = store.Get(key)
		}()
	}
	wg.Wait()
}
