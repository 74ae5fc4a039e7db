package output

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestExporterWritesBothFiles(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out")
	exp := Exporter{Dir: dir, Now: func() time.Time { return time.Date(2026, 3, 4, 5, 6, 7, 0, time.UTC) }}

	got, err := exp.Export("hello", "hola")
	require.NoError(t, err)
	require.Equal(t, filepath.Join(dir, "transcription_20260304T050607Z.txt"), got.Transcription)
	require.Equal(t, filepath.Join(dir, "translation_20260304T050607Z.txt"), got.Translation)

	data, err := os.ReadFile(got.Translation)
	require.NoError(t, err)
	require.Equal(t, "hola\n", string(data))
}

func TestExporterSkipsEmptyText(t *testing.T) {
	got, err := Exporter{Dir: t.TempDir()}.Export("hello", "")
	require.NoError(t, err)
	require.NotEmpty(t, got.Transcription)
	require.Empty(t, got.Translation)
}

func TestExporterRequiresDir(t *testing.T) {
	_, err := Exporter{}.Export("hello", "hola")
	require.Error(t, err)
}
