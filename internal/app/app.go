// Package app dispatches parsed CLI commands onto the voxlate runtime.
package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/rbright/voxlate/internal/artifact"
	"github.com/rbright/voxlate/internal/audio"
	"github.com/rbright/voxlate/internal/cli"
	"github.com/rbright/voxlate/internal/config"
	"github.com/rbright/voxlate/internal/doctor"
	"github.com/rbright/voxlate/internal/ipc"
	"github.com/rbright/voxlate/internal/logging"
	"github.com/rbright/voxlate/internal/notify"
	"github.com/rbright/voxlate/internal/output"
	"github.com/rbright/voxlate/internal/recording"
	"github.com/rbright/voxlate/internal/session"
	"github.com/rbright/voxlate/internal/submit"
	"github.com/rbright/voxlate/internal/version"
)

const forwardTimeout = 220 * time.Millisecond

// Runner executes one CLI invocation. Device and Transport override the live
// microphone and HTTP client when set.
type Runner struct {
	Stdout    io.Writer
	Stderr    io.Writer
	Logger    *slog.Logger
	Device    recording.Device
	Transport submit.Transport
}

func Execute(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	r := Runner{Stdout: stdout, Stderr: stderr}
	return r.Execute(ctx, args)
}

func (r Runner) Execute(ctx context.Context, args []string) int {
	parsed, err := cli.Parse(args)
	if err != nil {
		fmt.Fprintf(r.Stderr, "error: %v\n\n", err)
		fmt.Fprint(r.Stderr, cli.HelpText("voxlate"))
		return 2
	}

	if parsed.ShowHelp {
		fmt.Fprint(r.Stdout, cli.HelpText("voxlate"))
		return 0
	}

	if parsed.Command == cli.CommandVersion {
		fmt.Fprintln(r.Stdout, version.String())
		return 0
	}

	cfgLoaded, err := config.Load(parsed.ConfigPath)
	if err != nil {
		fmt.Fprintf(r.Stderr, "error: %v\n", err)
		return 1
	}

	logRuntime, err := logging.New(cfgLoaded.Config.Log.Level)
	if err != nil {
		fmt.Fprintf(r.Stderr, "error: setup logging: %v\n", err)
		return 1
	}
	defer func() { _ = logRuntime.Close() }()

	logger := r.Logger
	if logger == nil {
		logger = logRuntime.Logger
	}

	for _, w := range cfgLoaded.Warnings {
		msg := w.Message
		if w.Line > 0 {
			msg = fmt.Sprintf("line %d: %s", w.Line, w.Message)
		}
		fmt.Fprintf(r.Stderr, "warning: %s\n", msg)
		logger.Warn("config warning", "line", w.Line, "message", w.Message)
	}

	logger.Info("command start",
		"command", parsed.Command,
		"config", cfgLoaded.Path,
		"log", logRuntime.Path,
	)

	switch parsed.Command {
	case cli.CommandDoctor:
		report := doctor.Run(ctx, cfgLoaded)
		fmt.Fprintln(r.Stdout, report.String())
		if report.OK() {
			return 0
		}
		return 1
	case cli.CommandDevices:
		return r.commandDevices(ctx)
	case cli.CommandStatus:
		return r.commandStatus(ctx)
	case cli.CommandStop:
		return r.forwardOrFail(ctx, ipc.CommandStop)
	case cli.CommandCancel:
		return r.forwardOrFail(ctx, ipc.CommandCancel)
	case cli.CommandToggle:
		return r.commandToggle(ctx, parsed, cfgLoaded.Config, logger)
	case cli.CommandRecord:
		return r.commandRecord(ctx, parsed, cfgLoaded.Config, logger)
	case cli.CommandTranslate:
		return r.commandTranslate(ctx, parsed, cfgLoaded.Config, logger)
	default:
		fmt.Fprintf(r.Stderr, "error: unsupported command %q\n", parsed.Command)
		return 2
	}
}

func (r Runner) commandDevices(ctx context.Context) int {
	devices, err := audio.ListDevices(ctx)
	if err != nil {
		fmt.Fprintf(r.Stderr, "error: %v\n", err)
		return 1
	}
	if len(devices) == 0 {
		fmt.Fprintln(r.Stdout, "no audio devices found")
		return 1
	}

	for _, device := range devices {
		defaultMark := " "
		if device.Default {
			defaultMark = "*"
		}
		fmt.Fprintf(
			r.Stdout,
			"%s id=%s | description=%q | state=%s | available=%s | muted=%s\n",
			defaultMark,
			device.ID,
			device.Description,
			device.State,
			yesNo(device.Available),
			yesNo(device.Muted),
		)
	}

	return 0
}

func (r Runner) commandStatus(ctx context.Context) int {
	resp, err := ipc.Call(ctx, ipc.RuntimeSocketPath(), ipc.CommandStatus, forwardTimeout)
	if errors.Is(err, ipc.ErrNoOwner) {
		fmt.Fprintln(r.Stdout, "idle")
		return 0
	}
	if err != nil {
		fmt.Fprintf(r.Stderr, "error: %v\n", err)
		return 1
	}

	state := resp.State
	if state == "" {
		state = "idle"
	}
	fmt.Fprintln(r.Stdout, state)
	if st := resp.Status; st != nil {
		fmt.Fprintf(r.Stdout, "recorded: %s\n", artifact.FormatSize(st.RecordedBytes))
		fmt.Fprintf(r.Stdout, "submission: %s\n", st.SubmissionStatus)
		if st.StagedName != "" {
			fmt.Fprintf(r.Stdout, "staged: %s (%s)\n", st.StagedName, artifact.FormatSize(st.StagedBytes))
		}
		if st.LastNotice != "" {
			fmt.Fprintf(r.Stdout, "last notice: %s\n", st.LastNotice)
		}
	}
	return 0
}

func (r Runner) forwardOrFail(ctx context.Context, command string) int {
	resp, err := ipc.Call(ctx, ipc.RuntimeSocketPath(), command, forwardTimeout)
	if err != nil {
		fmt.Fprintf(r.Stderr, "error: %v\n", err)
		return 1
	}
	if resp.Message != "" {
		fmt.Fprintln(r.Stdout, resp.Message)
	}
	return 0
}

// commandToggle stops an active owner, or becomes the owner and records.
func (r Runner) commandToggle(ctx context.Context, parsed cli.Parsed, cfg config.Config, logger *slog.Logger) int {
	resp, err := ipc.Call(ctx, ipc.RuntimeSocketPath(), ipc.CommandToggle, forwardTimeout)
	if errors.Is(err, ipc.ErrNoOwner) {
		return r.commandRecord(ctx, parsed, cfg, logger)
	}
	if err != nil {
		fmt.Fprintf(r.Stderr, "error: %v\n", err)
		return 1
	}
	if resp.Message != "" {
		fmt.Fprintln(r.Stdout, resp.Message)
	}
	return 0
}

// commandRecord owns the session socket, records until stopped, and submits when a target is set.
func (r Runner) commandRecord(ctx context.Context, parsed cli.Parsed, cfg config.Config, logger *slog.Logger) int {
	socketPath := ipc.RuntimeSocketPath()
	listener, err := ipc.Acquire(ctx, socketPath, 180*time.Millisecond, 8, nil)
	if err != nil {
		fmt.Fprintf(r.Stderr, "error: %v\n", err)
		return 1
	}
	defer func() {
		_ = listener.Close()
		_ = os.Remove(socketPath)
	}()

	sess := r.newSession(cfg, logger)
	defer sess.Close()

	serverCtx, serverCancel := context.WithCancel(ctx)
	defer serverCancel()
	serverErrCh := make(chan error, 1)
	go func() {
		serverErrCh <- ipc.Server{Handler: sess, Logger: logger}.Serve(serverCtx, listener)
	}()

	code := r.runRecording(ctx, sess, parsed, cfg, logger)

	serverCancel()
	if serverErr := <-serverErrCh; serverErr != nil {
		fmt.Fprintf(r.Stderr, "error: ipc server failed: %v\n", serverErr)
		return 1
	}
	return code
}

func (r Runner) runRecording(ctx context.Context, sess *session.Session, parsed cli.Parsed, cfg config.Config, logger *slog.Logger) int {
	started := time.Now()
	if err := sess.StartRecording(ctx); err != nil {
		fmt.Fprintf(r.Stderr, "error: %v\n", err)
		return 1
	}

	var captured session.Capture
	select {
	case captured = <-sess.Recorded():
	case <-ctx.Done():
		sess.Close()
		waitCtx, cancel := context.WithTimeout(context.Background(), time.Second)
		_ = sess.Wait(waitCtx)
		cancel()
		fmt.Fprintln(r.Stdout, "cancelled")
		logger.Info("recording interrupted", "duration_ms", time.Since(started).Milliseconds())
		return 1
	}

	if errors.Is(captured.Err, session.ErrCancelled) {
		fmt.Fprintln(r.Stdout, "cancelled")
		return 0
	}
	if captured.Err != nil {
		fmt.Fprintf(r.Stderr, "error: %v\n", captured.Err)
		return 1
	}
	logger.Info("recording captured",
		"name", captured.Artifact.Name,
		"size_bytes", captured.Artifact.SizeBytes(),
		"duration_ms", time.Since(started).Milliseconds(),
	)

	target := resolveTarget(parsed, cfg)
	if target == "" {
		fmt.Fprintf(r.Stdout, "recorded %s (%s); no target language set, skipping submission\n",
			captured.Artifact.Name, artifact.FormatSize(captured.Artifact.SizeBytes()))
		return 0
	}
	return r.submitAndDeliver(ctx, sess, target, parsed, cfg, logger)
}

// commandTranslate validates FILE and submits it.
func (r Runner) commandTranslate(ctx context.Context, parsed cli.Parsed, cfg config.Config, logger *slog.Logger) int {
	sess := r.newSession(cfg, logger)
	defer sess.Close()

	if err := sess.OnFileSelected(ctx, parsed.File); err != nil {
		fmt.Fprintf(r.Stderr, "error: %v\n", err)
		return 1
	}
	return r.submitAndDeliver(ctx, sess, resolveTarget(parsed, cfg), parsed, cfg, logger)
}

func (r Runner) submitAndDeliver(ctx context.Context, sess *session.Session, target string, parsed cli.Parsed, cfg config.Config, logger *slog.Logger) int {
	result, err := sess.Submit(ctx, target)
	if err != nil {
		fmt.Fprintf(r.Stderr, "error: %v\n", err)
		if submit.IsPrecondition(err) {
			return 2
		}
		return 1
	}

	fmt.Fprintf(r.Stdout, "Transcription:\n%s\n\nTranslation:\n%s\n", result.Transcription, result.Translation)
	logger.Info("submission complete", "elapsed_ms", sess.Snapshot().LastElapsed.Milliseconds())

	code := 0
	exportDir := strings.TrimSpace(parsed.ExportDir)
	if exportDir == "" {
		exportDir = strings.TrimSpace(cfg.Export.Dir)
	}
	if exportDir != "" {
		files, err := output.Exporter{Dir: exportDir}.Export(result.Transcription, result.Translation)
		if err != nil {
			fmt.Fprintf(r.Stderr, "error: export: %v\n", err)
			code = 1
		} else {
			logger.Info("results exported", "transcription", files.Transcription, "translation", files.Translation)
		}
	}

	if parsed.Copy {
		if err := output.NewClipboard(cfg.Clipboard, logger).Copy(ctx, result.Translation); err != nil {
			fmt.Fprintf(r.Stderr, "error: %v\n", err)
			code = 1
		}
	}
	return code
}

func (r Runner) newSession(cfg config.Config, logger *slog.Logger) *session.Session {
	device := r.Device
	if device == nil {
		device = audio.Microphone{Input: cfg.Audio.Input, Fallback: cfg.Audio.Fallback, Logger: logger}
	}
	transport := r.Transport
	if transport == nil {
		transport = submit.NewClient(submit.ClientConfig{BaseURL: cfg.Service.URL, Timeout: cfg.Service.Timeout()})
	}
	notifier := notify.NewDispatcher(cfg.Notify, logger, r.Stderr)
	return session.New(logger, device, transport, notifier, session.Options{DumpAudio: cfg.Debug.EnableAudioDump})
}

func resolveTarget(parsed cli.Parsed, cfg config.Config) string {
	if target := strings.TrimSpace(parsed.Target); target != "" {
		return target
	}
	return strings.TrimSpace(cfg.TargetLanguage)
}

func yesNo(v bool) string {
	if v {
		return "yes"
	}
	return "no"
}
