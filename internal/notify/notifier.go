package notify

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/rbright/voxlate/internal/config"
)

// Notifier is the session-facing notice contract.
type Notifier interface {
	Notify(context.Context, Notice)
}

// Nop discards notices.
type Nop struct{}

func (Nop) Notify(context.Context, Notice) {}

// Dispatcher fans a notice out to the terminal, the log, and the desktop.
type Dispatcher struct {
	cfg    config.NotifyConfig
	logger *slog.Logger
	out    io.Writer

	desktop func(appName string, n Notice) error
	cue     func(cueKind) error

	soundMu sync.Mutex
}

// NewDispatcher creates a dispatcher writing terminal lines to out (nil disables them).
func NewDispatcher(cfg config.NotifyConfig, logger *slog.Logger, out io.Writer) *Dispatcher {
	return &Dispatcher{
		cfg:     cfg,
		logger:  logger,
		out:     out,
		desktop: desktopNotify,
		cue:     emitCue,
	}
}

// Notify dispatches n; notices without a title are dropped.
func (d *Dispatcher) Notify(ctx context.Context, n Notice) {
	if n.Title == "" {
		return
	}

	d.writeLine(n)
	d.logNotice(n)
	d.playCue(cueFor(n))

	if !d.cfg.Desktop {
		return
	}
	appName := strings.TrimSpace(d.cfg.AppName)
	if appName == "" {
		appName = "voxlate"
	}
	d.run(ctx, func() error { return d.desktop(appName, n) })
}

func (d *Dispatcher) writeLine(n Notice) {
	if d.out == nil {
		return
	}
	_, _ = fmt.Fprintf(d.out, "[%s] %s\n", n.Level, n.String())
}

func (d *Dispatcher) logNotice(n Notice) {
	if d.logger == nil {
		return
	}
	level := slog.LevelInfo
	switch n.Level {
	case LevelWarning:
		level = slog.LevelWarn
	case LevelError:
		level = slog.LevelError
	}
	d.logger.Log(context.Background(), level, "notice",
		"kind", string(n.Kind),
		"title", n.Title,
		"description", n.Description,
	)
}

// run executes a desktop dispatch with a bounded wait.
func (d *Dispatcher) run(ctx context.Context, fn func() error) {
	runCtx, cancel := context.WithTimeout(ctx, 400*time.Millisecond)
	defer cancel()

	done := make(chan error, 1)
	go func() { done <- fn() }()

	select {
	case err := <-done:
		d.log("desktop notice failed", err)
	case <-runCtx.Done():
		d.log("desktop notice timed out", runCtx.Err())
	}
}

// playCue serializes cue playback and emits audio asynchronously.
func (d *Dispatcher) playCue(kind cueKind) {
	if !d.cfg.Sound || kind == cueNone {
		return
	}
	go func() {
		d.soundMu.Lock()
		defer d.soundMu.Unlock()
		if err := d.cue(kind); err != nil {
			d.log("notice audio cue failed", err)
		}
	}()
}

// log emits debug-only dispatch failures to the runtime logger.
func (d *Dispatcher) log(message string, err error) {
	if d.logger == nil || err == nil {
		return
	}
	d.logger.Debug(message, "error", err.Error())
}
