package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadSettings_Defaults(t *testing.T) {
	s, err := LoadSettings(filepath.Join(t.TempDir(), "missing.hcl"))
	require.NoError(t, err)
	assert.Equal(t, DefaultSettings(), *s)
	assert.Equal(t, RendererNetworkd, s.LoadOptions().DefaultRenderer)
}

func TestLoadSettings_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "netgen.hcl")
	require.NoError(t, os.WriteFile(path, []byte(`
root_dir         = "/tmp/out"
default_renderer = "NetworkManager"
log_json         = true
`), 0o600))

	s, err := LoadSettings(path)
	require.NoError(t, err)
	assert.Equal(t, "/tmp/out", s.RootDir)
	assert.Equal(t, RendererNetworkManager, s.LoadOptions().DefaultRenderer)
	assert.True(t, s.LogJSON)
	assert.Equal(t, "info", s.LogLevel, "unset attributes keep their default")
}

func TestLoadSettings_EnvOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "netgen.hcl")
	require.NoError(t, os.WriteFile(path, []byte(`root_dir = "/from/file"`), 0o600))

	t.Setenv("NETGEN_ROOT_DIR", "/from/env")
	t.Setenv("NETGEN_LOG_LEVEL", "debug")

	s, err := LoadSettings(path)
	require.NoError(t, err)
	assert.Equal(t, "/from/env", s.RootDir)
	assert.Equal(t, "debug", s.LogLevel)
}

func TestLoadSettings_Invalid(t *testing.T) {
	dir := t.TempDir()

	bad := filepath.Join(dir, "bad.hcl")
	require.NoError(t, os.WriteFile(bad, []byte(`default_renderer = "systemd"`), 0o600))
	_, err := LoadSettings(bad)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "default_renderer: unknown renderer 'systemd'")

	syntax := filepath.Join(dir, "syntax.hcl")
	require.NoError(t, os.WriteFile(syntax, []byte(`root_dir = `), 0o600))
	_, err = LoadSettings(syntax)
	assert.Error(t, err)

	unknown := filepath.Join(dir, "unknown.hcl")
	require.NoError(t, os.WriteFile(unknown, []byte(`colour = "blue"`), 0o600))
	_, err = LoadSettings(unknown)
	assert.Error(t, err)
}
