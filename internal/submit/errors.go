package submit

import (
	"errors"
	"fmt"
)

var (
	// ErrNoAudioSelected is returned when nothing is staged for submission.
	ErrNoAudioSelected = errors.New("no audio selected")
	// ErrNoTargetLanguage is returned when the target language is empty.
	ErrNoTargetLanguage = errors.New("no target language selected")
	// ErrInFlight is returned while an earlier submission is unresolved.
	ErrInFlight = errors.New("submission already in flight")
	// ErrTransport wraps failures that never produced an HTTP response.
	ErrTransport = errors.New("transport failure")
)

// RemoteError is a non-success HTTP response from the translation service.
type RemoteError struct {
	StatusCode int
	Detail     string
}

func (e *RemoteError) Error() string {
	if e.Detail != "" {
		return e.Detail
	}
	return fmt.Sprintf("HTTP error! status: %d", e.StatusCode)
}

// IsPrecondition reports whether err was raised before any request was sent.
func IsPrecondition(err error) bool {
	return errors.Is(err, ErrNoAudioSelected) || errors.Is(err, ErrNoTargetLanguage) || errors.Is(err, ErrInFlight)
}
