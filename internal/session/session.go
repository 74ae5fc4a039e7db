// Package session composes the staged artifact, the microphone session, and the
// submission controller behind the core entry points.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/rbright/voxlate/internal/artifact"
	"github.com/rbright/voxlate/internal/audio"
	"github.com/rbright/voxlate/internal/fsm"
	"github.com/rbright/voxlate/internal/ipc"
	"github.com/rbright/voxlate/internal/notify"
	"github.com/rbright/voxlate/internal/recording"
	"github.com/rbright/voxlate/internal/submit"
)

var (
	// ErrBusy is returned when recording is requested while a submission is in flight.
	ErrBusy = errors.New("submission in progress")
	// ErrCancelled is published on Recorded when a capture is discarded.
	ErrCancelled = errors.New("recording cancelled")
)

// Options tunes session side effects.
type Options struct {
	DumpAudio bool
	Recording recording.Options
}

// Capture is the terminal outcome of one recording: a staged artifact or an error.
type Capture struct {
	Artifact artifact.Artifact
	Err      error
}

// Staged summarizes the staged artifact.
type Staged struct {
	Name      string
	SizeBytes int64
	MimeType  string
	Origin    artifact.Origin
}

// Snapshot is the observable state of a session.
type Snapshot struct {
	Busy             bool
	Transcription    string
	Translation      string
	IsRecording      bool
	RecordedBytes    int64
	RecordingState   fsm.RecordingState
	SubmissionStatus fsm.SubmissionStatus
	LastElapsed      time.Duration
	Staged           *Staged
	LastNotice       notify.Notice
}

// Session is the owner of one slot, one microphone session, and one submission controller.
type Session struct {
	logger    *slog.Logger
	notifier  notify.Notifier
	slot      artifact.Slot
	recorder  *recording.Session
	submitter *submit.Controller
	dumpAudio bool
	dump      func([]byte) (string, error)

	mu         sync.Mutex
	lastNotice notify.Notice
	recorded   chan Capture
}

// New wires a session over device and transport. A nil notifier discards notices.
func New(
	logger *slog.Logger,
	device recording.Device,
	transport submit.Transport,
	notifier notify.Notifier,
	opts Options,
) *Session {
	if notifier == nil {
		notifier = notify.Nop{}
	}
	s := &Session{
		logger:    logger,
		notifier:  notifier,
		submitter: submit.NewController(transport, logger),
		dumpAudio: opts.DumpAudio,
		dump:      audio.DumpTake,
		recorded:  make(chan Capture, 1),
	}
	s.recorder = recording.NewSession(logger, device, recordingEvents{s}, opts.Recording)
	return s
}

// Recorded delivers each finished capture. Only the latest unread outcome is kept.
func (s *Session) Recorded() <-chan Capture {
	return s.recorded
}

// OnFileSelected validates path and stages it. An empty path is a cancelled selection.
func (s *Session) OnFileSelected(ctx context.Context, path string) error {
	if strings.TrimSpace(path) == "" {
		s.slot.Clear()
		return nil
	}

	a, err := artifact.LoadFile(path)
	if err != nil {
		s.slot.Clear()
		s.notify(ctx, notify.ForError(err))
		return err
	}
	s.slot.Stage(a)
	s.logInfo("file staged", "name", a.Name, "size_bytes", a.SizeBytes())
	return nil
}

// StartRecording acquires the microphone and begins capture.
func (s *Session) StartRecording(ctx context.Context) error {
	if s.submitter.Busy() {
		return ErrBusy
	}
	if err := s.recorder.Start(ctx); err != nil {
		if !errors.Is(err, recording.ErrAlreadyActive) && !errors.Is(err, recording.ErrClosed) && !errors.Is(err, recording.ErrCancelled) {
			s.notify(ctx, notify.ForError(err))
		}
		return err
	}
	s.notify(ctx, notify.RecordingStarted())
	return nil
}

// StopRecording asks the device to finish; the take arrives on Recorded.
func (s *Session) StopRecording() error {
	return s.recorder.Stop()
}

// CancelRecording discards the capture in progress.
func (s *Session) CancelRecording() error {
	if err := s.recorder.Cancel(); err != nil {
		return err
	}
	s.publish(Capture{Err: ErrCancelled})
	return nil
}

// Submit sends the staged artifact for transcription and translation into target.
func (s *Session) Submit(ctx context.Context, target string) (submit.Result, error) {
	staged := s.slot.Current()
	switch {
	case staged == nil:
		s.notify(ctx, notify.ForError(submit.ErrNoAudioSelected))
		return submit.Result{}, submit.ErrNoAudioSelected
	case strings.TrimSpace(target) == "":
		s.notify(ctx, notify.ForError(submit.ErrNoTargetLanguage))
		return submit.Result{}, submit.ErrNoTargetLanguage
	case s.submitter.Busy():
		return submit.Result{}, submit.ErrInFlight
	}

	s.notify(ctx, notify.Processing())
	result, err := s.submitter.Submit(ctx, staged, target)
	if err != nil {
		if !errors.Is(err, submit.ErrInFlight) {
			s.notify(ctx, notify.ProcessingFailed(err))
		}
		return result, err
	}
	s.notify(ctx, notify.ProcessingComplete())
	return result, nil
}

// Staged returns a copy of the staged artifact, or nil.
func (s *Session) Staged() *artifact.Artifact {
	return s.slot.Current()
}

// Snapshot reports the observable state.
func (s *Session) Snapshot() Snapshot {
	sub := s.submitter.Snapshot()
	state := s.recorder.State()
	snap := Snapshot{
		Busy:             sub.Busy(),
		Transcription:    sub.Result.Transcription,
		Translation:      sub.Result.Translation,
		IsRecording:      state == fsm.RecordingActive,
		RecordedBytes:    s.recorder.RecordedBytes(),
		RecordingState:   state,
		SubmissionStatus: sub.Status,
		LastElapsed:      sub.Last.Elapsed,
	}
	if a := s.slot.Current(); a != nil {
		snap.Staged = &Staged{Name: a.Name, SizeBytes: a.SizeBytes(), MimeType: a.MimeType, Origin: a.Origin}
	}
	s.mu.Lock()
	snap.LastNotice = s.lastNotice
	s.mu.Unlock()
	return snap
}

// Handle serves owner commands from other processes.
func (s *Session) Handle(ctx context.Context, req ipc.Request) ipc.Response {
	switch req.Command {
	case ipc.CommandStatus:
		return s.respond(nil, "status", true)
	case ipc.CommandStop:
		return s.respond(s.StopRecording(), "stop requested", false)
	case ipc.CommandToggle:
		if s.recorder.IsRecording() {
			return s.respond(s.StopRecording(), "stop requested", false)
		}
		return s.respond(s.StartRecording(ctx), "recording started", false)
	case ipc.CommandCancel:
		return s.respond(s.CancelRecording(), "cancel requested", false)
	default:
		return ipc.Response{OK: false, State: string(s.recorder.State()), Error: fmt.Sprintf("unknown command: %s", req.Command)}
	}
}

// Close tears down any capture in progress.
func (s *Session) Close() {
	s.recorder.Close()
}

// Wait blocks until the current capture's pump has drained.
func (s *Session) Wait(ctx context.Context) error {
	return s.recorder.Wait(ctx)
}

func (s *Session) respond(err error, message string, withStatus bool) ipc.Response {
	resp := ipc.Response{OK: err == nil, State: string(s.recorder.State())}
	if err != nil {
		resp.Error = err.Error()
		return resp
	}
	resp.Message = message
	if withStatus {
		resp.Status = s.ipcStatus()
	}
	return resp
}

func (s *Session) ipcStatus() *ipc.Status {
	snap := s.Snapshot()
	status := &ipc.Status{
		Busy:             snap.Busy,
		IsRecording:      snap.IsRecording,
		RecordedBytes:    snap.RecordedBytes,
		SubmissionStatus: string(snap.SubmissionStatus),
		Transcription:    snap.Transcription,
		Translation:      snap.Translation,
		LastNotice:       string(snap.LastNotice.Kind),
	}
	if snap.Staged != nil {
		status.StagedName = snap.Staged.Name
		status.StagedBytes = snap.Staged.SizeBytes
	}
	return status
}

// notify records n as the last notice and forwards it.
func (s *Session) notify(ctx context.Context, n notify.Notice) {
	if n.Title == "" {
		return
	}
	s.mu.Lock()
	s.lastNotice = n
	s.mu.Unlock()
	s.notifier.Notify(ctx, n)
}

// publish replaces any unread capture with c.
func (s *Session) publish(c Capture) {
	s.mu.Lock()
	defer s.mu.Unlock()
	select {
	case <-s.recorded:
	default:
	}
	s.recorded <- c
}

func (s *Session) finalize(take recording.Take) {
	ctx := context.Background()
	if !take.AutoStopped {
		s.notify(ctx, notify.RecordingStopped())
	}

	a, err := artifact.New(take.Name, take.Data, artifact.OriginRecording)
	if err != nil {
		s.slot.Clear()
		s.notify(ctx, notify.ForError(err))
		s.publish(Capture{Err: err})
		return
	}
	s.slot.Stage(a)
	s.notify(ctx, notify.RecordingCaptured(a.SizeBytes()))

	if s.dumpAudio {
		if path, err := s.dump(take.Data); err != nil {
			s.logWarn("debug audio dump failed", "error", err.Error())
		} else {
			s.logInfo("debug audio dump written", "path", path)
		}
	}
	s.publish(Capture{Artifact: a})
}

func (s *Session) logInfo(msg string, args ...any) {
	if s.logger == nil {
		return
	}
	s.logger.Info(msg, args...)
}

func (s *Session) logWarn(msg string, args ...any) {
	if s.logger == nil {
		return
	}
	s.logger.Warn(msg, args...)
}

// recordingEvents adapts session callbacks to recording.Listener.
type recordingEvents struct {
	s *Session
}

func (e recordingEvents) RecordingFinalized(take recording.Take) {
	e.s.finalize(take)
}

func (e recordingEvents) RecordingFailed(err error) {
	e.s.notify(context.Background(), notify.ForError(err))
	e.s.publish(Capture{Err: err})
}

func (e recordingEvents) AutoStopped(int64) {
	e.s.notify(context.Background(), notify.RecordingAutoStopped())
}
