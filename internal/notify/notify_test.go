package notify

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/rbright/voxlate/internal/artifact"
	"github.com/rbright/voxlate/internal/config"
	"github.com/rbright/voxlate/internal/recording"
	"github.com/rbright/voxlate/internal/submit"
	"github.com/stretchr/testify/require"
)

func TestForErrorCategories(t *testing.T) {
	_, oversized := artifact.Validate(artifact.Candidate{Name: "a.wav", SizeBytes: 30 * 1024 * 1024})
	_, unsupported := artifact.Validate(artifact.Candidate{Name: "a.ogg", SizeBytes: 1})

	tests := []struct {
		name  string
		err   error
		kind  Kind
		level Level
		title string
	}{
		{name: "oversized", err: oversized, kind: KindOversizedFile, level: LevelError, title: "Invalid file size"},
		{name: "format", err: unsupported, kind: KindUnsupportedFormat, level: LevelError, title: "Invalid file format"},
		{name: "denied", err: fmt.Errorf("%w: pulse", recording.ErrPermissionDenied), kind: KindPermissionDenied, level: LevelError, title: "Microphone access denied"},
		{name: "missing", err: recording.ErrDeviceNotFound, kind: KindDeviceNotFound, level: LevelError, title: "No microphone found"},
		{name: "other device", err: recording.Classify(errors.New("boom")), kind: KindDeviceError, level: LevelError, title: "Error accessing microphone"},
		{name: "failed", err: recording.ErrRecordingFailed, kind: KindRecordingFailed, level: LevelError, title: "Recording failed"},
		{name: "no audio", err: submit.ErrNoAudioSelected, kind: KindNoAudioSelected, level: LevelWarning, title: "No audio selected"},
		{name: "no target", err: submit.ErrNoTargetLanguage, kind: KindNoTargetLanguage, level: LevelWarning, title: "No target language selected"},
		{name: "remote", err: &submit.RemoteError{StatusCode: 500, Detail: "service unavailable"}, kind: KindProcessingFailed, level: LevelError, title: "Processing Failed"},
		{name: "unknown", err: errors.New("mystery"), kind: KindUnknown, level: LevelError, title: "Unknown Error"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			n := ForError(tc.err)
			require.Equal(t, tc.kind, n.Kind)
			require.Equal(t, tc.level, n.Level)
			require.Equal(t, tc.title, n.Title)
		})
	}

	require.Equal(t, Notice{}, ForError(nil))
	require.Contains(t, ForError(unsupported).Description, ".mp3, .wav, .m4a, .mp4, .webm, .mpga, .mpeg")
	require.Equal(t, "An error occurred: service unavailable", ForError(&submit.RemoteError{Detail: "service unavailable"}).Description)
}

func TestCatalogText(t *testing.T) {
	require.Equal(t, "Recording started: Microphone is active.", RecordingStarted().String())
	require.Equal(t, "Audio size approaching 25MB limit.", RecordingAutoStopped().Description)
	require.Equal(t, "Size: 1.5 KB. Ready for transcription.", RecordingCaptured(1536).Description)
	require.Equal(t, "Processing Audio", Processing().Title)
	require.Equal(t, LevelSuccess, ProcessingComplete().Level)
	require.Equal(t, "Title", Notice{Title: "Title"}.String())
}

func TestDispatcherWritesTerminalLines(t *testing.T) {
	var out bytes.Buffer
	d := NewDispatcher(config.NotifyConfig{}, nil, &out)

	d.Notify(context.Background(), RecordingStarted())
	d.Notify(context.Background(), ForError(submit.ErrNoTargetLanguage))
	d.Notify(context.Background(), Notice{})

	require.Equal(t,
		"[info] Recording started: Microphone is active.\n"+
			"[warning] No target language selected: Please choose a language for translation.\n",
		out.String())
}

func TestDispatcherDesktopDelivery(t *testing.T) {
	d := NewDispatcher(config.NotifyConfig{Desktop: true, AppName: "vx"}, nil, nil)

	var gotApp string
	var got Notice
	d.desktop = func(appName string, n Notice) error {
		gotApp = appName
		got = n
		return nil
	}

	d.Notify(context.Background(), ProcessingComplete())
	require.Equal(t, "vx", gotApp)
	require.Equal(t, "Processing Complete", got.Title)
}

func TestDispatcherDesktopTimeoutDoesNotBlock(t *testing.T) {
	d := NewDispatcher(config.NotifyConfig{Desktop: true}, nil, nil)
	release := make(chan struct{})
	defer close(release)
	d.desktop = func(string, Notice) error {
		<-release
		return nil
	}

	start := time.Now()
	d.Notify(context.Background(), RecordingStopped())
	require.Less(t, time.Since(start), 2*time.Second)
}

func TestDispatcherSoundDisabledSkipsCue(t *testing.T) {
	d := NewDispatcher(config.NotifyConfig{Sound: false}, nil, nil)
	d.cue = func(cueKind) error {
		t.Fatal("cue played while sound disabled")
		return nil
	}
	d.Notify(context.Background(), RecordingStarted())
}

func TestDispatcherPlaysCueWhenEnabled(t *testing.T) {
	d := NewDispatcher(config.NotifyConfig{Sound: true}, nil, nil)
	played := make(chan cueKind, 1)
	d.cue = func(kind cueKind) error {
		played <- kind
		return nil
	}

	d.Notify(context.Background(), RecordingStarted())
	select {
	case kind := <-played:
		require.Equal(t, cueStart, kind)
	case <-time.After(2 * time.Second):
		t.Fatal("cue was not played")
	}
}

func TestCueFor(t *testing.T) {
	require.Equal(t, cueStart, cueFor(RecordingStarted()))
	require.Equal(t, cueStop, cueFor(RecordingAutoStopped()))
	require.Equal(t, cueComplete, cueFor(ProcessingComplete()))
	require.Equal(t, cueError, cueFor(ForError(recording.ErrDeviceNotFound)))
	require.Equal(t, cueNone, cueFor(Processing()))
}

func TestCueSynthesis(t *testing.T) {
	for _, kind := range []cueKind{cueStart, cueStop, cueComplete, cueError} {
		require.NotEmpty(t, cueSamples(kind))
	}
	require.Empty(t, cueSamples(cueNone))
	require.NoError(t, emitCue(cueNone))

	got := synthesizeTone(toneSpec{frequencyHz: 440, duration: 100 * time.Millisecond, volume: 0.2})
	require.Len(t, got, samplesForDuration(100*time.Millisecond))
	require.Equal(t, int16(0), got[0])

	require.Empty(t, synthesizeTone(toneSpec{frequencyHz: 0, duration: 100 * time.Millisecond, volume: 0.2}))
	require.Empty(t, synthesizeTone(toneSpec{frequencyHz: 440, duration: 0, volume: 0.2}))
	require.Equal(t, 0, samplesForDuration(0))
}
