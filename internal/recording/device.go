package recording

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

var (
	// ErrPermissionDenied indicates the microphone exists but access was refused.
	ErrPermissionDenied = errors.New("microphone access denied")
	// ErrDeviceNotFound indicates no usable microphone was found.
	ErrDeviceNotFound = errors.New("no microphone found")
	// ErrOtherDevice covers any other acquisition failure.
	ErrOtherDevice = errors.New("error accessing microphone")
	// ErrRecordingFailed indicates the device failed after capture started.
	ErrRecordingFailed = errors.New("recording failed")
)

// Stream is one acquired microphone handle.
//
// Chunks delivers fragments in capture order and is closed once Stop has
// flushed everything still pending. Err reports why capture ended and is
// only meaningful after Chunks is closed.
type Stream interface {
	Chunks() <-chan []byte
	Stop() error
	Err() error
}

// Device acquires microphone streams.
type Device interface {
	Open(context.Context) (Stream, error)
}

// DeviceFunc adapts a function to the Device interface.
type DeviceFunc func(context.Context) (Stream, error)

func (f DeviceFunc) Open(ctx context.Context) (Stream, error) {
	return f(ctx)
}

// Classify maps an acquisition error onto one of the device categories.
// Errors already carrying a category are returned unchanged.
func Classify(err error) error {
	if err == nil {
		return nil
	}
	for _, category := range []error{ErrPermissionDenied, ErrDeviceNotFound, ErrOtherDevice, ErrRecordingFailed} {
		if errors.Is(err, category) {
			return err
		}
	}
	return fmt.Errorf("%w: %w", ErrOtherDevice, err)
}

// Guard owns a stream and releases it exactly once, whichever exit path gets there first.
type Guard struct {
	stream Stream
	once   sync.Once
	err    error
}

// NewGuard wraps an acquired stream.
func NewGuard(stream Stream) *Guard {
	return &Guard{stream: stream}
}

// Release stops the stream on first call; later calls return the first result.
// A nil guard holds nothing and releases nothing.
func (g *Guard) Release() error {
	if g == nil {
		return nil
	}
	g.once.Do(func() {
		if g.stream != nil {
			g.err = g.stream.Stop()
		}
	})
	return g.err
}
