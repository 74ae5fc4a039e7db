package output

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/rbright/voxlate/internal/config"
	"github.com/stretchr/testify/require"
)

func TestRunCommandWithInputWritesStdin(t *testing.T) {
	scriptPath := writeStdinCaptureScript(t)
	outputPath := filepath.Join(t.TempDir(), "stdin.txt")

	err := runCommandWithInput(context.Background(), []string{scriptPath, outputPath}, "hello from voxlate")
	require.NoError(t, err)

	data, err := os.ReadFile(outputPath)
	require.NoError(t, err)
	require.Equal(t, "hello from voxlate", string(data))
}

func TestRunCommandWithInputRejectsEmptyArgv(t *testing.T) {
	err := runCommandWithInput(context.Background(), nil, "payload")
	require.Error(t, err)
	require.Contains(t, err.Error(), "argv cannot be empty")
}

func TestClipboardCopyUsesConfiguredCommand(t *testing.T) {
	scriptPath := writeStdinCaptureScript(t)
	clipboardPath := filepath.Join(t.TempDir(), "clipboard.txt")

	clip := NewClipboard(config.CommandConfig{Argv: []string{scriptPath, clipboardPath}}, nil)
	clip.system = func(string) error {
		t.Fatal("system clipboard used while a command is configured")
		return nil
	}
	require.NoError(t, clip.Copy(context.Background(), "hola"))

	data, err := os.ReadFile(clipboardPath)
	require.NoError(t, err)
	require.Equal(t, "hola", string(data))
	require.Equal(t, scriptPath+" "+clipboardPath, clip.Describe())
}

func TestClipboardCopySkipsEmptyText(t *testing.T) {
	scriptPath := writeStdinCaptureScript(t)
	clipboardPath := filepath.Join(t.TempDir(), "clipboard.txt")

	clip := NewClipboard(config.CommandConfig{Argv: []string{scriptPath, clipboardPath}}, nil)
	require.NoError(t, clip.Copy(context.Background(), "  "))

	_, statErr := os.Stat(clipboardPath)
	require.True(t, os.IsNotExist(statErr))
}

func TestClipboardCopyReturnsErrorWhenCommandFails(t *testing.T) {
	clip := NewClipboard(config.CommandConfig{Argv: []string{writeFailScript(t, "clipboard failed")}}, nil)
	err := clip.Copy(context.Background(), "hola")
	require.Error(t, err)
	require.Contains(t, err.Error(), "set clipboard")
}

func TestClipboardCopyFallsBackToSystem(t *testing.T) {
	clip := NewClipboard(config.CommandConfig{}, nil)

	var got string
	clip.system = func(text string) error {
		got = text
		return nil
	}
	require.NoError(t, clip.Copy(context.Background(), "hola"))
	require.Equal(t, "hola", got)

	clip.system = func(string) error { return ErrClipboardUnsupported }
	err := clip.Copy(context.Background(), "hola")
	require.ErrorIs(t, err, ErrClipboardUnsupported)
}

func writeStdinCaptureScript(t *testing.T) string {
	t.Helper()

	dir := t.TempDir()
	path := filepath.Join(dir, "capture-stdin.sh")
	script := `#!/usr/bin/env bash
set -euo pipefail
cat > "$1"
`
	require.NoError(t, os.WriteFile(path, []byte(script), 0o755))
	return path
}

func writeFailScript(t *testing.T, message string) string {
	t.Helper()

	dir := t.TempDir()
	path := filepath.Join(dir, "fail.sh")
	script := "#!/usr/bin/env bash\nset -euo pipefail\necho " + "\"" + message + "\"" + " >&2\nexit 1\n"
	require.NoError(t, os.WriteFile(path, []byte(script), 0o755))
	return path
}
