package ipc

import (
	"bufio"
	"context"
	"net"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestCallReturnsOwnerStatus(t *testing.T) {
	socketPath := startOwner(t, Server{Handler: recordingOwner(nil)})

	resp, err := Call(context.Background(), socketPath, CommandStatus, 200*time.Millisecond)
	require.NoError(t, err)
	require.Equal(t, "recording", resp.State)
	require.NotNil(t, resp.Status)
	require.True(t, resp.Status.IsRecording)
	require.Equal(t, int64(32044), resp.Status.RecordedBytes)
	require.Equal(t, "idle", resp.Status.SubmissionStatus)

	resp, err = Call(context.Background(), socketPath, CommandStop, 200*time.Millisecond)
	require.NoError(t, err)
	require.Equal(t, "stop requested", resp.Message)
}

func TestCallTurnsRefusalIntoError(t *testing.T) {
	socketPath := startOwner(t, Server{Handler: recordingOwner(nil)})

	resp, err := Call(context.Background(), socketPath, CommandCancel, 200*time.Millisecond)
	require.EqualError(t, err, "cancel rejected: cannot cancel")
	require.Equal(t, "recording", resp.State)
}

func TestCallWithoutOwner(t *testing.T) {
	dir := t.TempDir()

	_, err := Call(context.Background(), filepath.Join(dir, socketName), CommandStatus, 100*time.Millisecond)
	require.ErrorIs(t, err, ErrNoOwner)

	// A socket file left behind by a dead owner refuses connections.
	stalePath := filepath.Join(dir, "stale.sock")
	listener, err := net.Listen("unix", stalePath)
	require.NoError(t, err)
	listener.(*net.UnixListener).SetUnlinkOnClose(false)
	require.NoError(t, listener.Close())
	_, statErr := os.Stat(stalePath)
	require.NoError(t, statErr)

	_, err = Call(context.Background(), stalePath, CommandToggle, 100*time.Millisecond)
	require.ErrorIs(t, err, ErrNoOwner)
}

func TestSendReportsMalformedOwnerReplies(t *testing.T) {
	tests := []struct {
		name  string
		reply []byte
		want  string
	}{
		{name: "garbage line", reply: []byte("not-json\n"), want: "decode response"},
		{name: "hang up", reply: nil, want: "read response"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			socketPath := filepath.Join(t.TempDir(), socketName)
			listener, err := net.Listen("unix", socketPath)
			require.NoError(t, err)
			t.Cleanup(func() { _ = listener.Close() })

			go func() {
				conn, acceptErr := listener.Accept()
				if acceptErr != nil {
					return
				}
				defer conn.Close()
				_, _ = bufio.NewReader(conn).ReadBytes('\n')
				if tc.reply != nil {
					_, _ = conn.Write(tc.reply)
				}
			}()

			_, err = Send(context.Background(), socketPath, Request{Command: CommandStatus}, 200*time.Millisecond)
			require.ErrorContains(t, err, tc.want)
			require.NotErrorIs(t, err, ErrNoOwner)
		})
	}
}

func TestProbeSeesLiveOwnerOnly(t *testing.T) {
	socketPath := filepath.Join(t.TempDir(), socketName)
	listener, err := net.Listen("unix", socketPath)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- Serve(ctx, listener, recordingOwner(nil)) }()

	alive, err := Probe(context.Background(), socketPath, 200*time.Millisecond)
	require.NoError(t, err)
	require.True(t, alive)

	cancel()
	require.NoError(t, <-done)

	alive, err = Probe(context.Background(), socketPath, 100*time.Millisecond)
	require.NoError(t, err)
	require.False(t, alive)
}
