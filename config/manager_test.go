package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap/zaptest"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestManagerCreatesAndUpdates(t *testing.T) {
	dir := t.TempDir()
	mgr, err := NewManager(WithConfigDir(dir), WithLogger(zaptest.NewLogger(t)))
	require.NoError(t, err)

	_, err = os.Stat(filepath.Join(dir, "config.json"))
	require.NoError(t, err, "config file not created")

	require.NoError(t, mgr.UpdateFromJSON(`{"model":"qwen2.5","retrieval_top_k":7}`))

	updated := mgr.Get()
	assert.Equal(t, "qwen2.5", updated.Model)
	assert.Equal(t, 7, updated.RetrievalTopK)
	assert.Equal(t, "done", updated.CloseKeyword, "unrelated fields keep their values")
}

func TestManagerRejectsInvalidUpdate(t *testing.T) {
	dir := t.TempDir()
	mgr, err := NewManager(WithConfigDir(dir))
	require.NoError(t, err)

	err = mgr.UpdateFromJSON(`{"chunk_size":10,"chunk_overlap":20}`)
	require.Error(t, err)
	assert.Equal(t, 500, mgr.Get().ChunkSize)
}

func TestManagerLoadsExistingFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"model":"mistral"}`), 0o644))

	mgr, err := NewManager(WithConfigPath(path))
	require.NoError(t, err)

	cfg := mgr.Get()
	assert.Equal(t, "mistral", cfg.Model)
	assert.Equal(t, 4, cfg.RetrievalTopK, "missing fields fall back to defaults")
}

func TestManagerWatchReloads(t *testing.T) {
	dir := t.TempDir()
	mgr, err := NewManager(WithConfigDir(dir), WithDebounce(50*time.Millisecond), WithLogger(zaptest.NewLogger(t)))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer mgr.Wait()
	defer cancel()

	reloaded := make(chan Config, 1)
	require.NoError(t, mgr.Watch(ctx, func(cfg Config) {
		select {
		case reloaded <- cfg:
		default:
		}
	}))

	cfg := mgr.Get()
	cfg.Model = "changed-model"
	require.NoError(t, writeConfigFile(mgr.Path(), cfg))

	select {
	case got := <-reloaded:
		assert.Equal(t, "changed-model", got.Model)
	case <-time.After(2 * time.Second):
		t.Fatalf("watcher did not fire on config change")
	}
}

func TestValidate(t *testing.T) {
	cfg := DefaultConfigWithRoot(t.TempDir())
	require.NoError(t, cfg.Validate())

	cfg.LLMProvider = "bard"
	cfg.CloseKeyword = " "
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported llm provider")
	assert.Contains(t, err.Error(), "close keyword")
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("CORTEXCHAT_MODEL", "phi3")
	t.Setenv("CORTEXCHAT_TOP_K", "9")
	t.Setenv("OPENAI_API_KEY", "sk-openai")
	t.Setenv("DEEPSEEK_API_KEY", "sk-deepseek")
	t.Setenv("EINO_DEBUG_ENABLED", "true")

	cfg := DefaultConfigWithRoot(t.TempDir())
	cfg.loadFromEnv()

	assert.Equal(t, "phi3", cfg.Model)
	assert.Equal(t, 9, cfg.RetrievalTopK)
	assert.Equal(t, "sk-deepseek", cfg.LLMAPIKey)
	assert.True(t, cfg.EinoDebugEnabled)
}
