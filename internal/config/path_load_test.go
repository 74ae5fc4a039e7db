package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestResolvePathPrecedence(t *testing.T) {
	explicit := "/tmp/custom.jsonc"
	resolved, err := ResolvePath(explicit)
	require.NoError(t, err)
	require.Equal(t, explicit, resolved)

	xdg := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", xdg)
	resolved, err = ResolvePath("")
	require.NoError(t, err)
	require.Equal(t, filepath.Join(xdg, "voxlate", "config.jsonc"), resolved)

	t.Setenv("XDG_CONFIG_HOME", "")
	home := t.TempDir()
	t.Setenv("HOME", home)
	resolved, err = ResolvePath("")
	require.NoError(t, err)
	require.Equal(t, filepath.Join(home, ".config", "voxlate", "config.jsonc"), resolved)
}

func unsetEnv(t *testing.T, keys ...string) {
	t.Helper()
	for _, key := range keys {
		key := key
		prev, had := os.LookupEnv(key)
		require.NoError(t, os.Unsetenv(key))
		if had {
			t.Cleanup(func() { _ = os.Setenv(key, prev) })
		}
	}
}

func TestLoadMissingConfigUsesDefaultsWithWarning(t *testing.T) {
	unsetEnv(t, EnvServiceURL, EnvTargetLanguage)
	path := filepath.Join(t.TempDir(), "missing.jsonc")

	loaded, err := load(path, "")
	require.NoError(t, err)
	require.Equal(t, path, loaded.Path)
	require.False(t, loaded.Exists)
	require.Equal(t, Default(), loaded.Config)
	require.NotEmpty(t, loaded.Warnings)
	require.Contains(t, loaded.Warnings[0].Message, "not found")
}

func TestLoadExistingJSONCParsesAndValidates(t *testing.T) {
	unsetEnv(t, EnvServiceURL, EnvTargetLanguage)
	path := filepath.Join(t.TempDir(), "config.jsonc")
	contents := `
{
  "service": {"url": "http://127.0.0.1:9000"},
  "target_language": "French",
}
`
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o600))

	loaded, err := load(path, "")
	require.NoError(t, err)
	require.True(t, loaded.Exists)
	require.Equal(t, "http://127.0.0.1:9000", loaded.Config.Service.URL)
	require.Equal(t, "French", loaded.Config.TargetLanguage)
}

func TestLoadEnvOverridesFileAndDotenv(t *testing.T) {
	unsetEnv(t, EnvServiceURL, EnvTargetLanguage)
	dir := t.TempDir()
	path := filepath.Join(dir, "config.jsonc")
	require.NoError(t, os.WriteFile(path, []byte(`{"target_language": "French"}`), 0o600))

	dotenv := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(dotenv, []byte("VOXLATE_SERVICE_URL=http://dotenv:8000\nVOXLATE_TARGET_LANGUAGE=German\n"), 0o600))

	loaded, err := load(path, dotenv)
	require.NoError(t, err)
	require.Equal(t, "http://dotenv:8000", loaded.Config.Service.URL)
	require.Equal(t, "German", loaded.Config.TargetLanguage)

	t.Setenv(EnvTargetLanguage, "Spanish")
	loaded, err = load(path, dotenv)
	require.NoError(t, err)
	require.Equal(t, "Spanish", loaded.Config.TargetLanguage)
}

func TestLoadRejectsInvalidEnvOverride(t *testing.T) {
	t.Setenv(EnvServiceURL, "not a url")
	_, err := load(filepath.Join(t.TempDir(), "missing.jsonc"), "")
	require.Error(t, err)
	require.Contains(t, err.Error(), "service.url")
}

func TestLoadParseErrorIncludesPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.jsonc")
	require.NoError(t, os.WriteFile(path, []byte("{ not-json }"), 0o600))

	_, err := load(path, "")
	require.Error(t, err)
	require.Contains(t, err.Error(), "parse config")
	require.Contains(t, err.Error(), path)
}
