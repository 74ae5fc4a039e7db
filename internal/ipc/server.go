package ipc

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"strings"
	"sync"
	"time"
)

const (
	defaultReadTimeout = 2 * time.Second
	maxRequestBytes    = 4 << 10
)

// Handler processes one owner command.
type Handler interface {
	Handle(context.Context, Request) Response
}

// HandlerFunc adapts a function to the Handler interface.
type HandlerFunc func(context.Context, Request) Response

func (f HandlerFunc) Handle(ctx context.Context, req Request) Response {
	return f(ctx, req)
}

// KnownCommand reports whether command is one the owner session serves.
func KnownCommand(command string) bool {
	switch command {
	case CommandStatus, CommandStop, CommandToggle, CommandCancel:
		return true
	}
	return false
}

// Server answers owner commands on a unix socket. Requests are one JSON line;
// commands are normalized to lower case and unknown ones never reach Handler.
type Server struct {
	Handler     Handler
	Logger      *slog.Logger
	ReadTimeout time.Duration
}

// Serve runs a Server with default settings.
func Serve(ctx context.Context, listener net.Listener, handler Handler) error {
	return Server{Handler: handler}.Serve(ctx, listener)
}

// Serve accepts clients until ctx is cancelled or the listener closes.
func (s Server) Serve(ctx context.Context, listener net.Listener) error {
	var wg sync.WaitGroup

	go func() {
		<-ctx.Done()
		_ = listener.Close()
	}()

	for {
		conn, err := listener.Accept()
		if err != nil {
			if errors.Is(err, net.ErrClosed) || ctx.Err() != nil {
				wg.Wait()
				return nil
			}
			return fmt.Errorf("accept IPC connection: %w", err)
		}

		wg.Add(1)
		go func(c net.Conn) {
			defer wg.Done()
			defer c.Close()
			_ = json.NewEncoder(c).Encode(s.serveConn(ctx, c))
		}(conn)
	}
}

func (s Server) serveConn(ctx context.Context, c net.Conn) Response {
	timeout := s.ReadTimeout
	if timeout <= 0 {
		timeout = defaultReadTimeout
	}
	_ = c.SetReadDeadline(time.Now().Add(timeout))

	reader := bufio.NewReader(io.LimitReader(c, maxRequestBytes))
	line, err := reader.ReadBytes('\n')
	if err != nil {
		if errors.Is(err, io.EOF) && len(line) >= maxRequestBytes {
			err = fmt.Errorf("request exceeds %d bytes", maxRequestBytes)
		}
		s.logWarn("ipc request unreadable", "error", err.Error())
		return Response{OK: false, Error: fmt.Sprintf("read request: %v", err)}
	}

	var req Request
	if err := json.Unmarshal(line, &req); err != nil {
		s.logWarn("ipc request undecodable", "error", err.Error())
		return Response{OK: false, Error: fmt.Sprintf("decode request: %v", err)}
	}

	req.Command = strings.ToLower(strings.TrimSpace(req.Command))
	if !KnownCommand(req.Command) {
		s.logWarn("ipc command rejected", "command", req.Command)
		return Response{OK: false, Error: fmt.Sprintf("unknown command: %q", req.Command)}
	}

	resp := s.Handler.Handle(ctx, req)
	if s.Logger != nil {
		s.Logger.Debug("ipc command served", "command", req.Command, "ok", resp.OK, "state", resp.State, "error", resp.Error)
	}
	return resp
}

func (s Server) logWarn(msg string, args ...any) {
	if s.Logger == nil {
		return
	}
	s.Logger.Warn(msg, args...)
}
