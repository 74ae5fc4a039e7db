// Package recording runs one live microphone capture at a time.
package recording

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/rbright/voxlate/internal/artifact"
	"github.com/rbright/voxlate/internal/fsm"
)

var (
	// ErrAlreadyActive is returned when Start is called during an active capture.
	ErrAlreadyActive = errors.New("recording already in progress")
	// ErrNotRecording is returned when Stop is called outside the recording state.
	ErrNotRecording = errors.New("not recording")
	// ErrClosed is returned once the session has been torn down.
	ErrClosed = errors.New("recording session closed")
	// ErrCancelled is returned by Start when the capture was cancelled while the device was opening.
	ErrCancelled = errors.New("capture cancelled during acquisition")
)

// Take is the finalized output of one capture.
type Take struct {
	Data        []byte
	Name        string
	MimeType    string
	Chunks      int
	AutoStopped bool
}

// Listener receives asynchronous session outcomes.
type Listener interface {
	RecordingFinalized(Take)
	RecordingFailed(error)
	AutoStopped(sizeBytes int64)
}

type noopListener struct{}

func (noopListener) RecordingFinalized(Take) {}
func (noopListener) RecordingFailed(error)   {}
func (noopListener) AutoStopped(int64)       {}

// Options tunes output tagging and the auto-stop ceiling.
type Options struct {
	MimeType       string
	Extension      string
	ThresholdBytes int64
	Clock          func() time.Time
}

func (o Options) withDefaults() Options {
	if o.MimeType == "" {
		o.MimeType = "audio/wav"
	}
	if o.Extension == "" {
		o.Extension = "wav"
	}
	if o.ThresholdBytes <= 0 {
		o.ThresholdBytes = artifact.AutoStopThresholdBytes
	}
	if o.Clock == nil {
		o.Clock = time.Now
	}
	return o
}

// Session is the recording state machine for one owner.
type Session struct {
	logger   *slog.Logger
	device   Device
	listener Listener
	opts     Options

	mu          sync.Mutex
	state       fsm.RecordingState
	generation  uint64
	guard       *Guard
	chunks      [][]byte
	total       int64
	autoStopped bool
	closed      bool
	pumpDone    chan struct{}
}

// NewSession builds an idle session over device.
func NewSession(logger *slog.Logger, device Device, listener Listener, opts Options) *Session {
	if listener == nil {
		listener = noopListener{}
	}
	return &Session{
		logger:   logger,
		device:   device,
		listener: listener,
		opts:     opts.withDefaults(),
		state:    fsm.RecordingIdle,
	}
}

// State returns the current recording state.
func (s *Session) State() fsm.RecordingState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// IsRecording reports whether chunks are currently being captured.
func (s *Session) IsRecording() bool {
	return s.State() == fsm.RecordingActive
}

// RecordedBytes reports the running total of the current or most recent capture.
func (s *Session) RecordedBytes() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.total
}

// Start acquires the device and begins capture.
func (s *Session) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrClosed
	}
	if s.state != fsm.RecordingIdle {
		state := s.state
		s.mu.Unlock()
		s.logWarn("start ignored; capture already active", "state", state)
		return ErrAlreadyActive
	}
	if err := s.transitionLocked(fsm.EventStart); err != nil {
		s.mu.Unlock()
		return err
	}
	s.generation++
	gen := s.generation
	s.total = 0
	s.mu.Unlock()

	stream, err := s.device.Open(ctx)

	s.mu.Lock()
	if s.generation != gen || s.state != fsm.RecordingAcquiring {
		closed := s.closed
		s.mu.Unlock()
		if stream != nil {
			_ = NewGuard(stream).Release()
		}
		if closed {
			return ErrClosed
		}
		return ErrCancelled
	}
	if err != nil {
		_ = s.transitionLocked(fsm.EventDenied)
		s.mu.Unlock()
		return Classify(err)
	}
	if stream == nil {
		_ = s.transitionLocked(fsm.EventDenied)
		s.mu.Unlock()
		return fmt.Errorf("%w: device returned no stream", ErrOtherDevice)
	}

	_ = s.transitionLocked(fsm.EventGranted)
	s.guard = NewGuard(stream)
	s.chunks = nil
	s.autoStopped = false
	done := make(chan struct{})
	s.pumpDone = done
	s.mu.Unlock()

	go s.pump(gen, stream, done)
	return nil
}

// Stop requests a user-initiated stop; the take is delivered once the device confirms.
func (s *Session) Stop() error {
	s.mu.Lock()
	if s.state != fsm.RecordingActive {
		state := s.state
		s.mu.Unlock()
		return fmt.Errorf("%w (state %s)", ErrNotRecording, state)
	}
	_ = s.transitionLocked(fsm.EventStop)
	guard := s.guard
	s.mu.Unlock()

	if err := guard.Release(); err != nil {
		s.logWarn("device stop reported error", "error", err.Error())
	}
	return nil
}

// Cancel discards the current capture without delivering a take. The session stays usable.
func (s *Session) Cancel() error {
	s.mu.Lock()
	if s.state == fsm.RecordingIdle {
		state := s.state
		s.mu.Unlock()
		return fmt.Errorf("%w (state %s)", ErrNotRecording, state)
	}
	guard := s.discardLocked()
	s.mu.Unlock()

	_ = guard.Release()
	s.logInfo("capture cancelled")
	return nil
}

// Close tears the session down, releasing any held device without delivering a take.
func (s *Session) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true

	var guard *Guard
	if s.state != fsm.RecordingIdle {
		guard = s.discardLocked()
	}
	s.mu.Unlock()

	_ = guard.Release()
}

// discardLocked abandons the current generation and hands back its guard; callers hold s.mu.
func (s *Session) discardLocked() *Guard {
	_ = s.transitionLocked(fsm.EventTeardown)
	s.generation++
	guard := s.guard
	s.guard = nil
	s.chunks = nil
	return guard
}

// Wait blocks until the current capture's chunk pump has exited.
func (s *Session) Wait(ctx context.Context) error {
	s.mu.Lock()
	done := s.pumpDone
	s.mu.Unlock()
	if done == nil {
		return nil
	}
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// pump applies chunks in arrival order until the device closes the stream.
func (s *Session) pump(gen uint64, stream Stream, done chan struct{}) {
	defer close(done)

	for chunk := range stream.Chunks() {
		if s.appendChunk(gen, chunk) {
			s.autoStop(gen)
		}
	}
	s.finish(gen, stream.Err())
}

// appendChunk records one chunk and reports whether the auto-stop ceiling was reached.
func (s *Session) appendChunk(gen uint64, chunk []byte) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if gen != s.generation || len(chunk) == 0 {
		return false
	}
	switch s.state {
	case fsm.RecordingActive:
	case fsm.RecordingStopping:
		// Residue flushed after a user stop is kept; after an auto-stop it is not.
		if s.autoStopped {
			return false
		}
	default:
		return false
	}

	s.chunks = append(s.chunks, chunk)
	s.total += int64(len(chunk))
	return s.state == fsm.RecordingActive && s.total >= s.opts.ThresholdBytes
}

func (s *Session) autoStop(gen uint64) {
	s.mu.Lock()
	if gen != s.generation || s.state != fsm.RecordingActive {
		s.mu.Unlock()
		return
	}
	_ = s.transitionLocked(fsm.EventAutoStop)
	s.autoStopped = true
	total := s.total
	guard := s.guard
	s.mu.Unlock()

	s.logInfo("size ceiling reached; stopping capture", "bytes", total)
	s.listener.AutoStopped(total)
	if err := guard.Release(); err != nil {
		s.logWarn("device stop reported error", "error", err.Error())
	}
}

// finish runs once the device has closed the chunk stream.
func (s *Session) finish(gen uint64, streamErr error) {
	s.mu.Lock()
	if gen != s.generation {
		s.mu.Unlock()
		return
	}

	guard := s.guard
	switch s.state {
	case fsm.RecordingActive:
		if streamErr != nil {
			s.mu.Unlock()
			_ = guard.Release()

			s.mu.Lock()
			if gen != s.generation {
				s.mu.Unlock()
				return
			}
			_ = s.transitionLocked(fsm.EventFail)
			s.guard = nil
			s.chunks = nil
			s.mu.Unlock()

			s.logWarn("capture failed", "error", streamErr.Error())
			s.listener.RecordingFailed(fmt.Errorf("%w: %w", ErrRecordingFailed, streamErr))
			return
		}
		// The device ended capture on its own; treat it as a stop.
		_ = s.transitionLocked(fsm.EventStop)
	case fsm.RecordingStopping:
	default:
		s.mu.Unlock()
		return
	}

	take := Take{
		Data:        bytes.Join(s.chunks, nil),
		Name:        fmt.Sprintf("audio_%d.%s", s.opts.Clock().UnixMilli(), s.opts.Extension),
		MimeType:    s.opts.MimeType,
		Chunks:      len(s.chunks),
		AutoStopped: s.autoStopped,
	}
	s.mu.Unlock()

	_ = guard.Release()

	s.mu.Lock()
	// Cancel or Close may have run while the device was stopping; the session
	// then belongs to a newer generation and this take is discarded.
	if gen != s.generation {
		s.mu.Unlock()
		return
	}
	_ = s.transitionLocked(fsm.EventFinalized)
	s.guard = nil
	s.chunks = nil
	s.mu.Unlock()

	s.listener.RecordingFinalized(take)
}

// transitionLocked applies one FSM event; callers hold s.mu.
func (s *Session) transitionLocked(event fsm.RecordingEvent) error {
	next, err := fsm.TransitionRecording(s.state, event)
	if err != nil {
		return err
	}
	s.state = next
	return nil
}

func (s *Session) logWarn(msg string, args ...any) {
	if s.logger == nil {
		return
	}
	s.logger.Warn(msg, args...)
}

func (s *Session) logInfo(msg string, args ...any) {
	if s.logger == nil {
		return
	}
	s.logger.Info(msg, args...)
}
