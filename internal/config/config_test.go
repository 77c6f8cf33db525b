package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "ollama", cfg.LLM.Provider)
	assert.Equal(t, "conference_database.json", cfg.Store.DatabasePath)
	assert.Equal(t, 587, cfg.Email.SMTPPort)
}

func TestLoadFileOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "conftrack.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
llm:
  provider: heuristic
store:
  database_path: /data/confs.json
fetch:
  timeout: 10s
  subpage_limit: 2
`), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "heuristic", cfg.LLM.Provider)
	assert.Equal(t, "/data/confs.json", cfg.Store.DatabasePath)
	assert.Equal(t, 2, cfg.Fetch.SubpageLimit)
	assert.Equal(t, 10*time.Second, cfg.GetFetchTimeout())
	// Untouched sections keep defaults.
	assert.Equal(t, "deadline_changes.log", cfg.Store.ChangeLogPath)
}

func TestLoadMalformedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("llm: [oops"), 0644))
	_, err := Load(path)
	assert.Error(t, err)
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "test-key")
	t.Setenv("EMAIL_FROM", "me@example.com")
	t.Setenv("EMAIL_TO", "alerts@example.com")
	t.Setenv("CONFTRACK_DB", "/tmp/db.json")

	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "gemini", cfg.LLM.Provider)
	assert.Equal(t, "test-key", cfg.LLM.APIKey)
	assert.Equal(t, "me@example.com", cfg.Email.From)
	assert.Equal(t, "alerts@example.com", cfg.Email.To)
	assert.Equal(t, "/tmp/db.json", cfg.Store.DatabasePath)
}

func TestSaveRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "conftrack.yaml")

	cfg := DefaultConfig()
	cfg.LLM.Model = "mistral"
	require.NoError(t, cfg.Save(path))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "mistral", loaded.LLM.Model)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"defaults valid", func(*Config) {}, false},
		{"heuristic valid", func(c *Config) { c.LLM.Provider = "heuristic" }, false},
		{"unknown provider", func(c *Config) { c.LLM.Provider = "gpt9" }, true},
		{"gemini without key", func(c *Config) { c.LLM.Provider = "gemini" }, true},
		{"gemini with key", func(c *Config) {
			c.LLM.Provider = "gemini"
			c.LLM.APIKey = "k"
		}, false},
		{"no database path", func(c *Config) { c.Store.DatabasePath = "" }, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestTimeoutFallbacks(t *testing.T) {
	cfg := DefaultConfig()
	cfg.LLM.Timeout = "not-a-duration"
	assert.Equal(t, 120*time.Second, cfg.GetLLMTimeout())
	cfg.Fetch.RenderTimeout = ""
	assert.Equal(t, 30*time.Second, cfg.GetRenderTimeout())
}
