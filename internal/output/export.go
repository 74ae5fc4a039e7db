package output

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Exported lists the files written by one export.
type Exported struct {
	Transcription string
	Translation   string
}

// Exporter writes transcription and translation text files into a directory.
type Exporter struct {
	Dir string
	Now func() time.Time
}

// Export writes transcription_<stamp>.txt and translation_<stamp>.txt. Empty texts are skipped.
func (e Exporter) Export(transcription string, translation string) (Exported, error) {
	dir := strings.TrimSpace(e.Dir)
	if dir == "" {
		return Exported{}, errors.New("export directory is empty")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return Exported{}, fmt.Errorf("create export dir: %w", err)
	}

	now := time.Now
	if e.Now != nil {
		now = e.Now
	}
	stamp := now().UTC().Format("20060102T150405Z")

	var out Exported
	var err error
	if out.Transcription, err = writeText(dir, "transcription_"+stamp+".txt", transcription); err != nil {
		return Exported{}, err
	}
	if out.Translation, err = writeText(dir, "translation_"+stamp+".txt", translation); err != nil {
		return Exported{}, err
	}
	return out, nil
}

func writeText(dir string, name string, text string) (string, error) {
	if text == "" {
		return "", nil
	}
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(text+"\n"), 0o644); err != nil {
		return "", fmt.Errorf("write %s: %w", name, err)
	}
	return path, nil
}
