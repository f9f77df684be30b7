package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Itay01/Distributed-MD5-Cracker/internal/config"
	"github.com/Itay01/Distributed-MD5-Cracker/internal/coordinator"
	"github.com/Itay01/Distributed-MD5-Cracker/internal/logger"
)

// acceptPollInterval bounds each Accept call so the loop can observe
// the found flag and the stop signal without blocking indefinitely
const acceptPollInterval = 1 * time.Second

// Server accepts worker connections and spawns a Session per
// connection. It holds no protocol state itself; once a match is
// recorded it stops accepting but does not force-close sessions still
// winding down.
type Server struct {
	cfg   *config.Config
	coord *coordinator.Coordinator
	hub   *Hub

	listener net.Listener

	mu      sync.Mutex
	running bool

	stopChan chan struct{}
	stopOnce sync.Once
	done     chan struct{}
}

// New creates a server for the given coordinator
func New(cfg *config.Config, coord *coordinator.Coordinator) *Server {
	return &Server{
		cfg:      cfg,
		coord:    coord,
		hub:      NewHub(),
		stopChan: make(chan struct{}),
		done:     make(chan struct{}),
	}
}

// Start binds the listener and launches the accept loop
func (s *Server) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return fmt.Errorf("server is already running")
	}
	s.running = true
	s.mu.Unlock()

	listener, err := net.Listen("tcp", s.cfg.ListenAddr())
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.cfg.ListenAddr(), err)
	}
	s.listener = listener

	go s.acceptLoop(ctx)

	logger.Info("Coordinator listening on %s (range [0, %d], block unit %d)",
		listener.Addr(), s.cfg.RangeEnd, s.cfg.BlockUnit)

	return nil
}

// Stop closes the listener and signals the accept loop. Live sessions
// are left to wind down on their own.
func (s *Server) Stop() {
	s.stopOnce.Do(func() {
		close(s.stopChan)
		if s.listener != nil {
			if err := s.listener.Close(); err != nil && !errors.Is(err, net.ErrClosed) {
				logger.Error("Error closing listener: %v", err)
			}
		}
	})
}

// Shutdown stops accepting and closes every live session
func (s *Server) Shutdown() {
	s.Stop()
	s.hub.Shutdown()
}

// Done is closed once the accept loop has exited
func (s *Server) Done() <-chan struct{} {
	return s.done
}

// Addr returns the bound listener address
func (s *Server) Addr() net.Addr {
	return s.listener.Addr()
}

// Hub exposes the live-session set (for tests)
func (s *Server) Hub() *Hub {
	return s.hub
}

// acceptLoop accepts worker connections until a match is recorded, the
// context is cancelled, or Stop is called
func (s *Server) acceptLoop(ctx context.Context) {
	defer close(s.done)

	for {
		select {
		case <-ctx.Done():
			logger.Info("Accept loop stopped via context cancellation")
			return

		case <-s.stopChan:
			logger.Info("Accept loop stopped via stop signal")
			return

		default:
			if s.coord.Found() {
				logger.Info("Match recorded, no longer accepting workers")
				return
			}

			// Bounded accept so the loop re-checks the exit conditions
			if tcp, ok := s.listener.(*net.TCPListener); ok {
				tcp.SetDeadline(time.Now().Add(acceptPollInterval))
			}

			conn, err := s.listener.Accept()
			if err != nil {
				var netErr net.Error
				if errors.As(err, &netErr) && netErr.Timeout() {
					continue
				}
				if errors.Is(err, net.ErrClosed) {
					logger.Info("Listener closed, exiting accept loop")
					return
				}
				logger.Error("Error accepting connection: %v", err)
				continue
			}

			if s.hub.Count() >= s.cfg.MaxConns {
				logger.Warn("Connection limit reached, rejecting %s", conn.RemoteAddr())
				conn.Close()
				continue
			}

			session := NewSession(uuid.NewString(), conn, s.hub, s.coord, s.cfg.TargetHash)
			session.Start()

			logger.Info("Worker connected from %s as %s", conn.RemoteAddr(), session.ID)
		}
	}
}
