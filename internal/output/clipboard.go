// Package output applies result side effects (clipboard and file export).
package output

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/exec"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"github.com/rbright/voxlate/internal/config"
)

// ErrClipboardUnsupported reports that no clipboard command is configured and no
// system clipboard utility is available.
var ErrClipboardUnsupported = errors.New("no clipboard utility available")

// Clipboard writes text through clipboard_cmd, or the system clipboard when unset.
type Clipboard struct {
	argv    []string
	logger  *slog.Logger
	timeout time.Duration

	system func(string) error
}

// NewClipboard constructs a clipboard writer from runtime config.
func NewClipboard(cmd config.CommandConfig, logger *slog.Logger) *Clipboard {
	return &Clipboard{
		argv:    cmd.Argv,
		logger:  logger,
		timeout: 2 * time.Second,
		system:  writeSystemClipboard,
	}
}

// Copy places text on the clipboard. Empty text is a no-op.
func (c *Clipboard) Copy(ctx context.Context, text string) error {
	if strings.TrimSpace(text) == "" {
		return nil
	}

	if len(c.argv) > 0 {
		cmdCtx, cancel := context.WithTimeout(ctx, c.timeout)
		defer cancel()
		if err := runCommandWithInput(cmdCtx, c.argv, text); err != nil {
			return fmt.Errorf("set clipboard: %w", err)
		}
		return nil
	}

	if err := c.system(text); err != nil {
		return fmt.Errorf("set clipboard: %w", err)
	}
	if c.logger != nil {
		c.logger.Debug("clipboard set via system utility", "bytes", len(text))
	}
	return nil
}

// Describe reports which clipboard path Copy will take.
func (c *Clipboard) Describe() string {
	if len(c.argv) > 0 {
		return strings.Join(c.argv, " ")
	}
	if clipboard.Unsupported {
		return "system clipboard (unsupported)"
	}
	return "system clipboard"
}

// Available reports whether Copy has somewhere to write.
func (c *Clipboard) Available() error {
	if len(c.argv) > 0 || !clipboard.Unsupported {
		return nil
	}
	return ErrClipboardUnsupported
}

func writeSystemClipboard(text string) error {
	if clipboard.Unsupported {
		return ErrClipboardUnsupported
	}
	return clipboard.WriteAll(text)
}

// runCommandWithInput executes argv and optionally writes input to stdin.
func runCommandWithInput(ctx context.Context, argv []string, input string) error {
	if len(argv) == 0 {
		return fmt.Errorf("command argv cannot be empty")
	}

	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	stdin, err := cmd.StdinPipe()
	if err != nil {
		return fmt.Errorf("open stdin for %s: %w", argv[0], err)
	}

	if err := cmd.Start(); err != nil {
		_ = stdin.Close()
		return fmt.Errorf("start command %s: %w", argv[0], err)
	}

	if input != "" {
		if _, err := stdin.Write([]byte(input)); err != nil {
			_ = stdin.Close()
			_ = cmd.Wait()
			return fmt.Errorf("write stdin for %s: %w", argv[0], err)
		}
	}
	_ = stdin.Close()

	if err := cmd.Wait(); err != nil {
		return fmt.Errorf("wait for %s: %w", argv[0], err)
	}
	return nil
}
