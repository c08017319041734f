package stub

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"
)

// Server wraps one stub HTTP listener with managed lifecycle.
type Server struct {
	name    string
	handler http.Handler

	mu            sync.RWMutex
	httpServer    *http.Server
	listener      net.Listener
	port          int
	running       bool
	shutdownError error
}

// NewServer creates a stub server. Port 0 binds an ephemeral port; the
// bound port is available through Port after Start.
func NewServer(name string, port int, handler http.Handler) *Server {
	return &Server{
		name:    name,
		port:    port,
		handler: handler,
	}
}

// Start binds the listener and begins serving in the background.
func (s *Server) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return fmt.Errorf("stub server %s is already running", s.name)
	}

	listener, err := net.Listen("tcp", fmt.Sprintf(":%d", s.port))
	if err != nil {
		return fmt.Errorf("failed to bind stub server %s on port %d: %w", s.name, s.port, err)
	}
	s.listener = listener
	s.port = listener.Addr().(*net.TCPAddr).Port

	s.httpServer = &http.Server{
		Handler:           s.handler,
		ReadHeaderTimeout: 10 * time.Second,
	}
	s.running = true

	go func() {
		err := s.httpServer.Serve(listener)
		if err != nil && err != http.ErrServerClosed {
			s.mu.Lock()
			s.shutdownError = err
			s.running = false
			s.mu.Unlock()
		}
	}()

	return nil
}

// Stop gracefully shuts the server down, forcing the connections closed
// when the context deadline or a 5 second fallback expires.
func (s *Server) Stop(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return nil
	}

	shutdownCtx := ctx
	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		shutdownCtx, cancel = context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
	}

	err := s.httpServer.Shutdown(shutdownCtx)
	if err != nil {
		// Graceful shutdown did not finish in time, tear down hard.
		s.httpServer.Close()
	}
	s.running = false
	return err
}

// Port returns the bound TCP port.
func (s *Server) Port() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.port
}

// IsRunning reports whether the server is accepting connections.
func (s *Server) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.running
}

// WaitForReady blocks until the listener accepts TCP connections or the
// context is canceled.
func (s *Server) WaitForReady(ctx context.Context) error {
	addr := fmt.Sprintf("localhost:%d", s.Port())

	ticker := time.NewTicker(50 * time.Millisecond)
	defer ticker.Stop()

	for {
		conn, err := net.DialTimeout("tcp", addr, time.Second)
		if err == nil {
			conn.Close()
			return nil
		}

		select {
		case <-ctx.Done():
			return fmt.Errorf("stub server %s did not become ready: %w", s.name, ctx.Err())
		case <-ticker.C:
		}
	}
}
