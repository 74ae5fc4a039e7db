// Package artifact validates candidate audio and holds the single submittable payload.
package artifact

import (
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
)

const (
	// MaxSizeBytes is the largest payload the remote service accepts (25 MiB).
	MaxSizeBytes int64 = 25 * 1024 * 1024
	// AutoStopThresholdBytes is where a live recording stops itself (98% of MaxSizeBytes).
	AutoStopThresholdBytes int64 = MaxSizeBytes * 98 / 100
)

// Origin records how an artifact was produced.
type Origin string

const (
	OriginUploadedFile Origin = "uploaded_file"
	OriginRecording    Origin = "recording"
)

// acceptedExtensions maps each supported container extension to its mime type.
var acceptedExtensions = map[string]string{
	"mp3":  "audio/mpeg",
	"wav":  "audio/wav",
	"m4a":  "audio/mp4",
	"mp4":  "audio/mp4",
	"webm": "audio/webm",
	"mpga": "audio/mpeg",
	"mpeg": "audio/mpeg",
}

// AcceptedExtensions returns the supported extensions in display order.
func AcceptedExtensions() []string {
	return []string{"mp3", "wav", "m4a", "mp4", "webm", "mpga", "mpeg"}
}

// MimeTypeFor returns the mime type for an accepted extension, or "" when unsupported.
func MimeTypeFor(ext string) string {
	return acceptedExtensions[strings.ToLower(strings.TrimPrefix(ext, "."))]
}

// Candidate is the metadata the validator decides on.
type Candidate struct {
	Name      string
	SizeBytes int64
}

// Artifact is one validated audio payload eligible for submission.
type Artifact struct {
	Bytes    []byte
	MimeType string
	Origin   Origin
	Name     string
}

// SizeBytes reports the payload length.
func (a Artifact) SizeBytes() int64 {
	return int64(len(a.Bytes))
}

// Validate applies size then format rules; the first failing rule wins.
func Validate(c Candidate) (string, error) {
	if c.SizeBytes > MaxSizeBytes {
		return "", &Rejection{Reason: ReasonOversizedFile, Name: c.Name, SizeBytes: c.SizeBytes}
	}

	ext := extension(c.Name)
	if _, ok := acceptedExtensions[ext]; !ok {
		return "", &Rejection{Reason: ReasonUnsupportedFormat, Name: c.Name, SizeBytes: c.SizeBytes}
	}
	return ext, nil
}

// New validates data under the candidate name and builds an artifact.
// The candidate size is taken from data so the two can never disagree.
func New(name string, data []byte, origin Origin) (Artifact, error) {
	ext, err := Validate(Candidate{Name: name, SizeBytes: int64(len(data))})
	if err != nil {
		return Artifact{}, err
	}
	return Artifact{
		Bytes:    data,
		MimeType: acceptedExtensions[ext],
		Origin:   origin,
		Name:     name,
	}, nil
}

// LoadFile validates a file on disk before reading it.
func LoadFile(path string) (Artifact, error) {
	info, err := os.Stat(path)
	if err != nil {
		return Artifact{}, fmt.Errorf("stat audio file: %w", err)
	}
	if info.IsDir() {
		return Artifact{}, fmt.Errorf("audio file %q is a directory", path)
	}

	name := filepath.Base(path)
	if _, err := Validate(Candidate{Name: name, SizeBytes: info.Size()}); err != nil {
		return Artifact{}, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Artifact{}, fmt.Errorf("read audio file: %w", err)
	}
	return New(name, data, OriginUploadedFile)
}

// extension returns the lower-cased last dot-segment of name.
// A name without a dot yields the whole name, which never matches.
func extension(name string) string {
	idx := strings.LastIndex(name, ".")
	return strings.ToLower(name[idx+1:])
}

// FormatSize renders a byte count as Bytes/KB/MB/GB with up to two decimals.
func FormatSize(bytes int64) string {
	if bytes <= 0 {
		return "0 Bytes"
	}
	units := []string{"Bytes", "KB", "MB", "GB"}
	i := int(math.Floor(math.Log(float64(bytes)) / math.Log(1024)))
	if i >= len(units) {
		i = len(units) - 1
	}
	value := float64(bytes) / math.Pow(1024, float64(i))
	return strconv.FormatFloat(math.Round(value*100)/100, 'f', -1, 64) + " " + units[i]
}

// Slot holds at most one staged artifact; every Stage replaces the previous one.
type Slot struct {
	mu      sync.RWMutex
	current *Artifact
}

// Stage replaces the staged artifact.
func (s *Slot) Stage(a Artifact) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.current = &a
}

// Clear drops the staged artifact.
func (s *Slot) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.current = nil
}

// Current returns a copy of the staged artifact, or nil.
func (s *Slot) Current() *Artifact {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.current == nil {
		return nil
	}
	out := *s.current
	return &out
}

// IsRejection reports whether err is a validation rejection.
func IsRejection(err error) bool {
	var rejection *Rejection
	return errors.As(err, &rejection)
}
