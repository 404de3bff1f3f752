package ipc

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net"
	"sync"
)

// Dispatcher consumes decoded commands. Implementations switch exhaustively
// over the Command variants.
type Dispatcher interface {
	Dispatch(ctx context.Context, cmd Command) (any, *Error)
}

// Logger is satisfied by logging.Logger; kept minimal to avoid dependency cycles.
type Logger interface {
	Printf(format string, v ...any)
}

// Server listens for framed command requests over a Unix socket.
type Server struct {
	ln         net.Listener
	mu         sync.RWMutex
	dispatcher Dispatcher
	closed     bool
	logger     Logger
}

// NewServer constructs a server routing decoded commands to dispatcher.
func NewServer(dispatcher Dispatcher, logger Logger) *Server {
	return &Server{dispatcher: dispatcher, logger: logger}
}

// Start begins accepting connections on endpoint.
func (s *Server) Start(ctx context.Context, endpoint string) error {
	if s == nil {
		return errors.New("nil server")
	}
	ln, err := net.Listen("unix", endpoint)
	if err != nil {
		return err
	}
	s.ln = ln
	go s.acceptLoop(ctx)
	return nil
}

func (s *Server) acceptLoop(ctx context.Context) {
	for {
		conn, err := s.ln.Accept()
		if err != nil {
			if ctx.Err() != nil || s.isClosed() {
				return
			}
			s.logf("accept error: %v", err)
			continue
		}
		go s.handleConn(ctx, conn)
	}
}

func (s *Server) handleConn(ctx context.Context, conn net.Conn) {
	defer conn.Close()
	for {
		payload, err := ReadFrame(conn)
		if err != nil {
			return
		}
		var req Request
		if err := json.Unmarshal(payload, &req); err != nil {
			s.writeError(conn, req.ID, "INVALID_REQUEST", "invalid json", nil)
			continue
		}
		traceID := NewTraceID()
		cmd, err := DecodeCommand(req.Command)
		if err != nil {
			s.writeError(conn, req.ID, "INVALID_REQUEST", err.Error(), map[string]any{"traceId": traceID})
			continue
		}
		result, cmdErr := s.dispatcher.Dispatch(ctx, cmd)
		resp := Response{ID: req.ID, TraceID: traceID}
		if cmdErr != nil {
			resp.Error = cmdErr
		} else {
			raw, err := json.Marshal(result)
			if err != nil {
				s.writeError(conn, req.ID, "INTERNAL", err.Error(), map[string]any{"traceId": traceID})
				continue
			}
			resp.OK = true
			resp.Result = raw
		}
		if err := s.writeResponse(conn, resp); err != nil {
			return
		}
	}
}

func (s *Server) writeResponse(conn net.Conn, resp Response) error {
	payload, err := json.Marshal(resp)
	if err != nil {
		return err
	}
	return WriteFrame(conn, payload)
}

func (s *Server) writeError(conn net.Conn, id, code, msg string, details map[string]any) {
	resp := Response{ID: id, TraceID: NewTraceID()}
	resp.Error = &Error{Code: code, Message: msg, Details: details}
	_ = s.writeResponse(conn, resp)
}

// Stop shuts down the listener.
func (s *Server) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	if s.ln != nil {
		return s.ln.Close()
	}
	return nil
}

func (s *Server) isClosed() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.closed
}

func (s *Server) logf(format string, v ...any) {
	if s.logger != nil {
		s.logger.Printf(format, v...)
	} else {
		log.Printf(format, v...)
	}
}
