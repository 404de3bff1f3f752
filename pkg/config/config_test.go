package config

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSaveAndLoadRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")

	cfg := DefaultProfile("dev")
	cfg.Analysis.ModelFiles = []string{"taint/sources.toml", "taint/sinks.toml"}
	cfg.VCS.Enabled = true
	require.NoError(t, Save(path, cfg))

	loaded, err := LoadProfile(dir)
	require.NoError(t, err)
	assert.Equal(t, "dev", loaded.ProfileName)
	assert.Equal(t, cfg.Analysis.ModelFiles, loaded.Analysis.ModelFiles)
	assert.True(t, loaded.VCS.Enabled)
	assert.Equal(t, "info", loaded.Logging.Level)
}

func TestValidateRejectsIncompleteConfig(t *testing.T) {
	cfg := DefaultProfile("dev")
	cfg.IPC.SocketPath = ""
	err := Save(filepath.Join(t.TempDir(), "config.toml"), cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "socketPath")
}

func TestResolvePath(t *testing.T) {
	assert.Equal(t, "/abs/state.db", ResolvePath("/profile", "/abs/state.db"))
	assert.Equal(t, filepath.Join("/profile", "state.db"), ResolvePath("/profile", "state.db"))
	assert.Equal(t, "", ResolvePath("/profile", ""))
}
