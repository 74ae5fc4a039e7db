package ipc

import (
	"context"
	"net"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// startOwner runs server on a fresh socket and stops it when the test ends.
func startOwner(t *testing.T, server Server) string {
	t.Helper()

	socketPath := filepath.Join(t.TempDir(), socketName)
	listener, err := net.Listen("unix", socketPath)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- server.Serve(ctx, listener) }()

	t.Cleanup(func() {
		cancel()
		require.NoError(t, <-done)
	})
	return socketPath
}

// recordingOwner answers like an owner that is mid-capture.
func recordingOwner(seen chan<- string) HandlerFunc {
	return func(_ context.Context, req Request) Response {
		if seen != nil {
			seen <- req.Command
		}
		switch req.Command {
		case CommandStatus:
			return Response{OK: true, State: "recording", Status: &Status{IsRecording: true, RecordedBytes: 32044, SubmissionStatus: "idle"}}
		case CommandCancel:
			return Response{OK: false, State: "recording", Error: "cannot cancel"}
		default:
			return Response{OK: true, State: "stopping", Message: req.Command + " requested"}
		}
	}
}
