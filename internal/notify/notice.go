// Package notify surfaces toast-style notices to the terminal, log, and desktop.
package notify

import (
	"errors"
	"fmt"
	"strings"

	"github.com/rbright/voxlate/internal/artifact"
	"github.com/rbright/voxlate/internal/recording"
	"github.com/rbright/voxlate/internal/submit"
)

// Level is the notice severity.
type Level string

const (
	LevelInfo    Level = "info"
	LevelSuccess Level = "success"
	LevelWarning Level = "warning"
	LevelError   Level = "error"
)

// Kind is the notice category reported as the last error/warning.
type Kind string

const (
	KindRecordingStarted     Kind = "recording_started"
	KindRecordingStopped     Kind = "recording_stopped"
	KindRecordingAutoStopped Kind = "recording_auto_stopped"
	KindRecordingCaptured    Kind = "recording_captured"
	KindPermissionDenied     Kind = "permission_denied"
	KindDeviceNotFound       Kind = "device_not_found"
	KindDeviceError          Kind = "device_error"
	KindRecordingFailed      Kind = "recording_failed"
	KindOversizedFile        Kind = "oversized_file"
	KindUnsupportedFormat    Kind = "unsupported_format"
	KindNoAudioSelected      Kind = "no_audio_selected"
	KindNoTargetLanguage     Kind = "no_target_language"
	KindProcessing           Kind = "processing"
	KindProcessingComplete   Kind = "processing_complete"
	KindProcessingFailed     Kind = "processing_failed"
	KindUnknown              Kind = "unknown_error"
)

// Notice is one user-facing message.
type Notice struct {
	Level       Level
	Kind        Kind
	Title       string
	Description string
}

func (n Notice) String() string {
	if n.Description == "" {
		return n.Title
	}
	return n.Title + ": " + n.Description
}

func RecordingStarted() Notice {
	return Notice{Level: LevelInfo, Kind: KindRecordingStarted, Title: "Recording started", Description: "Microphone is active."}
}

func RecordingStopped() Notice {
	return Notice{Level: LevelInfo, Kind: KindRecordingStopped, Title: "Recording stopped", Description: "Audio saved."}
}

func RecordingAutoStopped() Notice {
	return Notice{
		Level:       LevelInfo,
		Kind:        KindRecordingAutoStopped,
		Title:       "Recording stopped automatically",
		Description: fmt.Sprintf("Audio size approaching %dMB limit.", artifact.MaxSizeBytes/(1024*1024)),
	}
}

// RecordingCaptured confirms a recording was validated and staged.
func RecordingCaptured(sizeBytes int64) Notice {
	return Notice{
		Level:       LevelSuccess,
		Kind:        KindRecordingCaptured,
		Title:       "Audio recorded successfully",
		Description: fmt.Sprintf("Size: %s. Ready for transcription.", artifact.FormatSize(sizeBytes)),
	}
}

func Processing() Notice {
	return Notice{Level: LevelInfo, Kind: KindProcessing, Title: "Processing Audio", Description: "Sending audio for transcription and translation..."}
}

func ProcessingComplete() Notice {
	return Notice{Level: LevelSuccess, Kind: KindProcessingComplete, Title: "Processing Complete", Description: "Audio transcribed and translated successfully!"}
}

// ForError maps a core error onto its notice. Unrecognized errors yield a generic one.
func ForError(err error) Notice {
	switch {
	case err == nil:
		return Notice{}
	case errors.Is(err, artifact.ErrOversizedFile):
		return Notice{
			Level:       LevelError,
			Kind:        KindOversizedFile,
			Title:       "Invalid file size",
			Description: "File size exceeds 25MB limit. Please choose a smaller file.",
		}
	case errors.Is(err, artifact.ErrUnsupportedFormat):
		return Notice{
			Level:       LevelError,
			Kind:        KindUnsupportedFormat,
			Title:       "Invalid file format",
			Description: "Please select a file with one of these formats: " + dottedFormats(),
		}
	case errors.Is(err, recording.ErrPermissionDenied):
		return Notice{
			Level:       LevelError,
			Kind:        KindPermissionDenied,
			Title:       "Microphone access denied",
			Description: "Please allow microphone access in your audio server settings.",
		}
	case errors.Is(err, recording.ErrDeviceNotFound):
		return Notice{
			Level:       LevelError,
			Kind:        KindDeviceNotFound,
			Title:       "No microphone found",
			Description: "Please ensure a microphone is connected.",
		}
	case errors.Is(err, recording.ErrOtherDevice):
		return Notice{Level: LevelError, Kind: KindDeviceError, Title: "Error accessing microphone", Description: err.Error()}
	case errors.Is(err, recording.ErrRecordingFailed):
		return Notice{Level: LevelError, Kind: KindRecordingFailed, Title: "Recording failed", Description: err.Error()}
	case errors.Is(err, submit.ErrNoAudioSelected):
		return Notice{
			Level:       LevelWarning,
			Kind:        KindNoAudioSelected,
			Title:       "No audio selected",
			Description: "Please upload or record an audio file first.",
		}
	case errors.Is(err, submit.ErrNoTargetLanguage):
		return Notice{
			Level:       LevelWarning,
			Kind:        KindNoTargetLanguage,
			Title:       "No target language selected",
			Description: "Please choose a language for translation.",
		}
	default:
		var remote *submit.RemoteError
		if errors.As(err, &remote) || errors.Is(err, submit.ErrTransport) {
			return Notice{Level: LevelError, Kind: KindProcessingFailed, Title: "Processing Failed", Description: "An error occurred: " + err.Error()}
		}
		return Notice{Level: LevelError, Kind: KindUnknown, Title: "Unknown Error", Description: err.Error()}
	}
}

// ProcessingFailed wraps any submission failure, including decode errors.
func ProcessingFailed(err error) Notice {
	return Notice{Level: LevelError, Kind: KindProcessingFailed, Title: "Processing Failed", Description: "An error occurred: " + err.Error()}
}

func dottedFormats() string {
	exts := artifact.AcceptedExtensions()
	out := make([]string, 0, len(exts))
	for _, ext := range exts {
		out = append(out, "."+ext)
	}
	return strings.Join(out, ", ")
}
