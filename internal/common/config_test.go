package common

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfigFile(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestApplyFileOverridesDefaults(t *testing.T) {
	t.Setenv("OPENAI_MODEL", "")

	cfg := LoadConfig()
	path := writeConfigFile(t, `
[server]
http_addr = ":9090"

[llm]
model = "gpt-4.1"
max_document_chars = 8000

[ingest]
watch_dirs = ["/var/eob/inbox"]
debounce = "250ms"
`)

	require.NoError(t, cfg.ApplyFile(path, false))

	assert.Equal(t, ":9090", cfg.Server.HTTPAddr)
	assert.Equal(t, "gpt-4.1", cfg.LLM.Model)
	assert.Equal(t, 8000, cfg.LLM.MaxDocumentChars)
	assert.Equal(t, []string{"/var/eob/inbox"}, cfg.Ingest.WatchDirs)
	assert.Equal(t, 250*time.Millisecond, cfg.Ingest.Debounce)
}

func TestApplyFileDoesNotOverrideEnv(t *testing.T) {
	t.Setenv("OPENAI_MODEL", "gpt-4o")
	t.Setenv("DB_URL", "postgres://env-wins")

	cfg := LoadConfig()
	path := writeConfigFile(t, `
[database]
dsn = "postgres://from-file"

[llm]
model = "gpt-4.1"
`)

	require.NoError(t, cfg.ApplyFile(path, false))

	assert.Equal(t, "gpt-4o", cfg.LLM.Model)
	assert.Equal(t, "postgres://env-wins", cfg.Database.DSN)
}

func TestApplyFileMissing(t *testing.T) {
	cfg := LoadConfig()
	missing := filepath.Join(t.TempDir(), "nope.toml")

	assert.NoError(t, cfg.ApplyFile(missing, true))
	assert.Error(t, cfg.ApplyFile(missing, false))
}

func TestApplyFileRejectsBadDebounce(t *testing.T) {
	cfg := LoadConfig()
	path := writeConfigFile(t, `
[ingest]
debounce = "soon"
`)

	assert.Error(t, cfg.ApplyFile(path, false))
}

func TestValidateRequiredFields(t *testing.T) {
	cfg := &Config{
		Database: DatabaseConfig{DSN: "postgres://x"},
		Server:   ServerConfig{HTTPAddr: ":8080"},
		LLM:      LLMConfig{APIKey: "sk-test"},
	}
	assert.NoError(t, cfg.Validate())

	cfg.LLM.APIKey = ""
	err := cfg.Validate()
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidInput)
}
