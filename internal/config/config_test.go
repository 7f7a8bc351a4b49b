package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDefaultConfigHasSaneDefaults(t *testing.T) {
	c := DefaultConfig()
	require.NotEmpty(t, c.MemoryRoot)
	require.Equal(t, "http://localhost:11434", c.Ollama.URL)
	require.Contains(t, c.Execution.AllowedBinaries, "git")
}

func TestLoadFromEnvOverridesDefaults(t *testing.T) {
	t.Setenv("MEMORY_ROOT", "/tmp/custom-root")
	t.Setenv("OLLAMA_URL", "http://localhost:9999")
	t.Setenv("OLLAMA_CHAT_MODEL", "custom-model")

	c := DefaultConfig()
	LoadFromEnv(c)

	require.Equal(t, "/tmp/custom-root", c.MemoryRoot)
	require.Equal(t, "http://localhost:9999", c.Ollama.URL)
	require.Equal(t, "custom-model", c.Ollama.ChatModel)
}

func TestLoadSettingsFileMissingIsNotAnError(t *testing.T) {
	c := DefaultConfig()
	err := LoadSettingsFile(c, filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
}

func TestLoadSettingsFileOverlaysValues(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "gateway.yaml")
	require.NoError(t, os.WriteFile(path, []byte("ollama:\n  chat_model: llama3.1\n"), 0644))

	c := DefaultConfig()
	require.NoError(t, LoadSettingsFile(c, path))
	require.Equal(t, "llama3.1", c.Ollama.ChatModel)
}

func TestPathHelpersDeriveFromMemoryRoot(t *testing.T) {
	c := &Config{MemoryRoot: "/root-mem"}
	require.Equal(t, "/root-mem/cache", c.CachePath())
	require.Equal(t, "/root-mem/gateway/metrics.json", c.MetricsPath())
	require.Equal(t, "/root-mem/config.json", c.RegistryPath())
	require.Equal(t, "/root-mem/projects/proj1", c.ProjectMemoryPath("proj1"))

	c.Execution.HelperDir = "/root-mem/helpers"
	require.Equal(t, "/root-mem/helpers/memory_query", c.HelperPath("memory_query"))
}
