package commands

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openradius/radops/internal/cli/config"
)

func runInitCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := NewInitCommand()
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return buf.String(), err
}

func TestInitWritesLoadableConfig(t *testing.T) {
	dir := t.TempDir()

	out, err := runInitCommand(t, dir)
	require.NoError(t, err)
	assert.Contains(t, out, "created")

	path := filepath.Join(dir, config.ConfigFileName)
	require.FileExists(t, path)

	// The starter file must round-trip through the real loader.
	cfg, err := config.Load(path, nil)
	require.NoError(t, err)
	t.Cleanup(config.ResetConfig)

	assert.Equal(t, config.DefaultAPIURL, cfg.API.URL)
	assert.Equal(t, config.DefaultPageSize, cfg.UI.PageSize)
	assert.Equal(t, config.DefaultTheme, cfg.UI.Theme)
	assert.Equal(t, config.DefaultLogLevel, cfg.Log.Level)
}

func TestInitExpandsTokenReference(t *testing.T) {
	dir := t.TempDir()
	_, err := runInitCommand(t, dir)
	require.NoError(t, err)

	t.Setenv("RADOPS_TOKEN", "s3cret")
	cfg, err := config.Load(filepath.Join(dir, config.ConfigFileName), nil)
	require.NoError(t, err)
	t.Cleanup(config.ResetConfig)

	assert.Equal(t, "s3cret", cfg.API.Token)
}

func TestInitRefusesToOverwrite(t *testing.T) {
	dir := t.TempDir()

	_, err := runInitCommand(t, dir)
	require.NoError(t, err)

	_, err = runInitCommand(t, dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already exists")

	// --force replaces the file.
	marker := filepath.Join(dir, config.ConfigFileName)
	require.NoError(t, os.WriteFile(marker, []byte("mangled: true\n"), 0o600))
	_, err = runInitCommand(t, dir, "--force")
	require.NoError(t, err)

	data, err := os.ReadFile(marker)
	require.NoError(t, err)
	assert.Contains(t, string(data), "api:")
}
