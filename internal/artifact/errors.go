package artifact

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrOversizedFile matches rejections for payloads above MaxSizeBytes.
	ErrOversizedFile = errors.New("file size exceeds 25MB limit")
	// ErrUnsupportedFormat matches rejections for extensions outside the accepted set.
	ErrUnsupportedFormat = errors.New("unsupported audio format")
)

// Reason names the validation rule that rejected a candidate.
type Reason string

const (
	ReasonOversizedFile     Reason = "oversized_file"
	ReasonUnsupportedFormat Reason = "unsupported_format"
)

// Rejection is returned instead of an artifact when validation fails.
type Rejection struct {
	Reason    Reason
	Name      string
	SizeBytes int64
}

func (r *Rejection) Error() string {
	switch r.Reason {
	case ReasonOversizedFile:
		return fmt.Sprintf("%s: %q is %s", ErrOversizedFile, r.Name, FormatSize(r.SizeBytes))
	case ReasonUnsupportedFormat:
		return fmt.Sprintf("%s: %q; expected one of %s", ErrUnsupportedFormat, r.Name, acceptedList())
	default:
		return fmt.Sprintf("audio rejected: %s", r.Reason)
	}
}

// Unwrap exposes the sentinel for errors.Is.
func (r *Rejection) Unwrap() error {
	switch r.Reason {
	case ReasonOversizedFile:
		return ErrOversizedFile
	case ReasonUnsupportedFormat:
		return ErrUnsupportedFormat
	default:
		return nil
	}
}

func acceptedList() string {
	exts := AcceptedExtensions()
	dotted := make([]string, 0, len(exts))
	for _, ext := range exts {
		dotted = append(dotted, "."+ext)
	}
	return strings.Join(dotted, ", ")
}
