package audio

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

const (
	wavHeaderSize = 44
	bitsPerSample = 16

	// unknownLength marks RIFF and data sizes in a header written before capture ends.
	unknownLength = 0xFFFFFFFF
)

// StreamingHeader returns a 44-byte PCM16 WAV header with open-ended sizes.
// It is emitted as the first capture chunk so a concatenated take is a playable WAV.
func StreamingHeader(sampleRate int, channels int) []byte {
	if channels <= 0 {
		channels = 1
	}
	byteRate := sampleRate * channels * (bitsPerSample / 8)
	blockAlign := channels * (bitsPerSample / 8)

	header := make([]byte, wavHeaderSize)
	copy(header[0:4], []byte("RIFF"))
	binary.LittleEndian.PutUint32(header[4:8], unknownLength)
	copy(header[8:12], []byte("WAVE"))
	copy(header[12:16], []byte("fmt "))
	binary.LittleEndian.PutUint32(header[16:20], 16)
	binary.LittleEndian.PutUint16(header[20:22], 1) // PCM
	binary.LittleEndian.PutUint16(header[22:24], uint16(channels))
	binary.LittleEndian.PutUint32(header[24:28], uint32(sampleRate))
	binary.LittleEndian.PutUint32(header[28:32], uint32(byteRate))
	binary.LittleEndian.PutUint16(header[32:34], uint16(blockAlign))
	binary.LittleEndian.PutUint16(header[34:36], bitsPerSample)
	copy(header[36:40], []byte("data"))
	binary.LittleEndian.PutUint32(header[40:44], unknownLength)
	return header
}

// PCMFromTake strips the streaming header from a recorded take.
func PCMFromTake(take []byte) []byte {
	if len(take) >= wavHeaderSize && bytes.Equal(take[0:4], []byte("RIFF")) && bytes.Equal(take[8:12], []byte("WAVE")) {
		return take[wavHeaderSize:]
	}
	return take
}

// WriteWAV encodes little-endian PCM16 samples as a sized WAV file.
func WriteWAV(w io.WriteSeeker, pcm []byte, sampleRate int, channels int) error {
	if channels <= 0 {
		channels = 1
	}
	samples := make([]int, len(pcm)/2)
	for i := range samples {
		samples[i] = int(int16(binary.LittleEndian.Uint16(pcm[i*2:])))
	}

	enc := wav.NewEncoder(w, sampleRate, bitsPerSample, channels, 1)
	buf := &goaudio.IntBuffer{
		Format: &goaudio.Format{
			NumChannels: channels,
			SampleRate:  sampleRate,
		},
		Data:           samples,
		SourceBitDepth: bitsPerSample,
	}
	if err := enc.Write(buf); err != nil {
		_ = enc.Close()
		return fmt.Errorf("encode wav: %w", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("finalize wav: %w", err)
	}
	return nil
}

// DumpTake writes a recorded take under $XDG_STATE_HOME/voxlate/debug and returns the path.
func DumpTake(take []byte) (string, error) {
	pcm := PCMFromTake(take)
	if len(pcm) == 0 {
		return "", fmt.Errorf("take has no audio samples")
	}

	file, err := createDebugFile("audio", "wav")
	if err != nil {
		return "", err
	}
	defer file.Close()

	if err := WriteWAV(file, pcm, SampleRate, Channels); err != nil {
		return "", err
	}
	return file.Name(), nil
}

// createDebugFile creates timestamped debug artifacts under state/voxlate/debug.
func createDebugFile(prefix string, extension string) (*os.File, error) {
	stateDir, err := resolveStateDir()
	if err != nil {
		return nil, err
	}
	debugDir := filepath.Join(stateDir, "voxlate", "debug")
	if err := os.MkdirAll(debugDir, 0o700); err != nil {
		return nil, fmt.Errorf("create debug dir: %w", err)
	}

	timestamp := time.Now().Format("20060102-150405.000")
	path := filepath.Join(debugDir, fmt.Sprintf("%s-%s.%s", prefix, timestamp, extension))
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o600)
	if err != nil {
		return nil, fmt.Errorf("open debug file %q: %w", path, err)
	}
	return file, nil
}

// resolveStateDir returns XDG_STATE_HOME or its ~/.local/state fallback.
func resolveStateDir() (string, error) {
	if xdg := strings.TrimSpace(os.Getenv("XDG_STATE_HOME")); xdg != "" {
		return xdg, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home directory for state: %w", err)
	}
	return filepath.Join(home, ".local", "state"), nil
}
