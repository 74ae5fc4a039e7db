// Package submit owns the single outstanding transcribe-and-translate request.
package submit

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/rbright/voxlate/internal/artifact"
	"github.com/rbright/voxlate/internal/fsm"
)

// Result sentinels shown instead of missing or failed output.
const (
	UnavailableTranscription = "No transcription available."
	UnavailableTranslation   = "No translation available."
	ErrorSentinel            = "Error during transcription/translation."
)

// Request is one transport call.
type Request struct {
	Audio          artifact.Artifact
	TargetLanguage string
}

// Result holds both output texts; they are always replaced together.
type Result struct {
	Transcription string
	Translation   string
}

// Outcome describes a completed submission for logs and callers.
type Outcome struct {
	RequestStarted time.Time
	Elapsed        time.Duration
	Status         fsm.SubmissionStatus
}

// Controller enforces single-flight submission.
type Controller struct {
	transport Transport
	logger    *slog.Logger

	mu     sync.Mutex
	status fsm.SubmissionStatus
	result Result
	last   Outcome
}

// NewController wires a controller around transport.
func NewController(transport Transport, logger *slog.Logger) *Controller {
	return &Controller{
		transport: transport,
		logger:    logger,
		status:    fsm.SubmissionIdle,
	}
}

// Submit sends audio with the target language and waits for the terminal outcome.
func (c *Controller) Submit(ctx context.Context, audio *artifact.Artifact, target string) (result Result, err error) {
	if audio == nil {
		return Result{}, ErrNoAudioSelected
	}
	target = strings.TrimSpace(target)
	if target == "" {
		return Result{}, ErrNoTargetLanguage
	}

	c.mu.Lock()
	next, terr := fsm.TransitionSubmission(c.status, fsm.EventSubmit)
	if terr != nil {
		c.mu.Unlock()
		return Result{}, ErrInFlight
	}
	c.status = next
	c.result = Result{}
	c.mu.Unlock()

	started := time.Now()
	c.logInfo("submission started",
		"name", audio.Name,
		"origin", string(audio.Origin),
		"size_bytes", audio.SizeBytes(),
		"target_language", target,
	)

	// The terminal status is recorded on every return path.
	defer func() {
		event := fsm.EventSucceed
		if err != nil {
			event = fsm.EventReject
			result = Result{Transcription: ErrorSentinel, Translation: ErrorSentinel}
		}
		c.mu.Lock()
		if next, terr := fsm.TransitionSubmission(c.status, event); terr == nil {
			c.status = next
		} else {
			c.status = fsm.SubmissionFailed
		}
		c.result = result
		c.last = Outcome{RequestStarted: started, Elapsed: time.Since(started), Status: c.status}
		status := c.status
		c.mu.Unlock()

		if err != nil {
			c.logWarn("submission failed", "error", err.Error(), "elapsed_ms", time.Since(started).Milliseconds())
			return
		}
		c.logInfo("submission completed", "status", string(status), "elapsed_ms", time.Since(started).Milliseconds())
	}()

	return c.transport.TranscribeAndTranslate(context.WithoutCancel(ctx), Request{
		Audio:          *audio,
		TargetLanguage: target,
	})
}

// Snapshot is one consistent read of controller state.
type Snapshot struct {
	Status fsm.SubmissionStatus
	Result Result
	Last   Outcome
}

// Busy reports whether the snapshot was taken mid-flight.
func (s Snapshot) Busy() bool {
	return s.Status == fsm.SubmissionInFlight
}

// Snapshot returns status, result and last outcome under a single lock.
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Snapshot{Status: c.status, Result: c.result, Last: c.last}
}

// Busy reports whether a submission is in flight.
func (c *Controller) Busy() bool {
	return c.Status() == fsm.SubmissionInFlight
}

// Status returns the current submission state.
func (c *Controller) Status() fsm.SubmissionStatus {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.status
}

// Result returns the most recent result pair.
func (c *Controller) Result() Result {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.result
}

// LastOutcome returns timing for the most recent terminal submission.
func (c *Controller) LastOutcome() Outcome {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.last
}

func (c *Controller) logInfo(msg string, args ...any) {
	if c.logger == nil {
		return
	}
	c.logger.Info(msg, args...)
}

func (c *Controller) logWarn(msg string, args ...any) {
	if c.logger == nil {
		return
	}
	c.logger.Warn(msg, args...)
}
