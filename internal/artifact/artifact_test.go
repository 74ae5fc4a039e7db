package artifact

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestValidateRuleMatrix(t *testing.T) {
	tests := []struct {
		name    string
		in      Candidate
		wantExt string
		wantErr error
	}{
		{name: "mp3 under limit", in: Candidate{Name: "talk.mp3", SizeBytes: 10 * 1000 * 1000}, wantExt: "mp3"},
		{name: "upper case extension", in: Candidate{Name: "TALK.WAV", SizeBytes: 10}, wantExt: "wav"},
		{name: "last dot segment wins", in: Candidate{Name: "notes.txt.webm", SizeBytes: 10}, wantExt: "webm"},
		{name: "exactly max size", in: Candidate{Name: "a.m4a", SizeBytes: MaxSizeBytes}, wantExt: "m4a"},
		{name: "one byte over", in: Candidate{Name: "a.m4a", SizeBytes: MaxSizeBytes + 1}, wantErr: ErrOversizedFile},
		{name: "30MB wav", in: Candidate{Name: "long.wav", SizeBytes: 30 * 1024 * 1024}, wantErr: ErrOversizedFile},
		{name: "size checked before format", in: Candidate{Name: "long.txt", SizeBytes: MaxSizeBytes + 1}, wantErr: ErrOversizedFile},
		{name: "unsupported extension", in: Candidate{Name: "song.ogg", SizeBytes: 10}, wantErr: ErrUnsupportedFormat},
		{name: "no extension", in: Candidate{Name: "recording", SizeBytes: 10}, wantErr: ErrUnsupportedFormat},
		{name: "trailing dot", in: Candidate{Name: "clip.", SizeBytes: 10}, wantErr: ErrUnsupportedFormat},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			ext, err := Validate(tc.in)
			if tc.wantErr != nil {
				require.ErrorIs(t, err, tc.wantErr)
				require.True(t, IsRejection(err))
				require.Empty(t, ext)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tc.wantExt, ext)
		})
	}
}

func TestAllAcceptedExtensionsValidate(t *testing.T) {
	for _, ext := range AcceptedExtensions() {
		got, err := Validate(Candidate{Name: "clip." + ext, SizeBytes: 1})
		require.NoError(t, err, ext)
		require.Equal(t, ext, got)
		require.NotEmpty(t, MimeTypeFor(ext))
	}
}

func TestRejectionMessages(t *testing.T) {
	_, err := Validate(Candidate{Name: "a.flac", SizeBytes: 1})
	require.Contains(t, err.Error(), ".mp3, .wav, .m4a")

	var rejection *Rejection
	require.True(t, errors.As(err, &rejection))
	require.Equal(t, ReasonUnsupportedFormat, rejection.Reason)

	_, err = Validate(Candidate{Name: "a.mp3", SizeBytes: 30 * 1024 * 1024})
	require.Contains(t, err.Error(), "30 MB")
}

func TestNewBuildsArtifactFromData(t *testing.T) {
	a, err := New("audio_1.wav", []byte{1, 2, 3}, OriginRecording)
	require.NoError(t, err)
	require.Equal(t, int64(3), a.SizeBytes())
	require.Equal(t, "audio/wav", a.MimeType)
	require.Equal(t, OriginRecording, a.Origin)

	_, err = New("audio_1.flac", []byte{1}, OriginRecording)
	require.ErrorIs(t, err, ErrUnsupportedFormat)
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "Speech.MP3")
	require.NoError(t, os.WriteFile(path, []byte("id3-data"), 0o600))

	a, err := LoadFile(path)
	require.NoError(t, err)
	require.Equal(t, "Speech.MP3", a.Name)
	require.Equal(t, OriginUploadedFile, a.Origin)
	require.Equal(t, "audio/mpeg", a.MimeType)
	require.Equal(t, []byte("id3-data"), a.Bytes)

	_, err = LoadFile(filepath.Join(dir, "missing.mp3"))
	require.Error(t, err)
	require.False(t, IsRejection(err))

	_, err = LoadFile(dir)
	require.Error(t, err)
	require.Contains(t, err.Error(), "directory")
}

func TestLoadFileRejectsOversizedWithoutReading(t *testing.T) {
	path := filepath.Join(t.TempDir(), "big.wav")
	f, err := os.Create(path)
	require.NoError(t, err)
	require.NoError(t, f.Truncate(30*1024*1024))
	require.NoError(t, f.Close())

	_, err = LoadFile(path)
	require.ErrorIs(t, err, ErrOversizedFile)
}

func TestFormatSize(t *testing.T) {
	require.Equal(t, "0 Bytes", FormatSize(0))
	require.Equal(t, "512 Bytes", FormatSize(512))
	require.Equal(t, "1.5 KB", FormatSize(1536))
	require.Equal(t, "25 MB", FormatSize(MaxSizeBytes))
	require.Equal(t, "2 GB", FormatSize(2*1024*1024*1024))
}

func TestSlotLastWriteWins(t *testing.T) {
	var slot Slot
	require.Nil(t, slot.Current())

	slot.Stage(Artifact{Name: "first.mp3", Origin: OriginUploadedFile})
	slot.Stage(Artifact{Name: "audio_2.wav", Origin: OriginRecording})

	current := slot.Current()
	require.NotNil(t, current)
	require.Equal(t, "audio_2.wav", current.Name)

	current.Name = "mutated"
	require.Equal(t, "audio_2.wav", slot.Current().Name)

	slot.Clear()
	require.Nil(t, slot.Current())
}

func TestAutoStopThreshold(t *testing.T) {
	require.Equal(t, int64(25690112), AutoStopThresholdBytes)
}
