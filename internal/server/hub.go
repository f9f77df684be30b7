package server

import (
	"sync"

	"github.com/Itay01/Distributed-MD5-Cracker/internal/logger"
	"github.com/Itay01/Distributed-MD5-Cracker/internal/protocol"
)

// Hub maintains the set of live worker sessions and fans the stop
// message out to all of them once a match is recorded
type Hub struct {
	mu       sync.RWMutex
	sessions map[string]*Session
}

// NewHub creates a new hub
func NewHub() *Hub {
	return &Hub{
		sessions: make(map[string]*Session),
	}
}

// Add registers a session with the hub
func (h *Hub) Add(s *Session) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.sessions[s.ID] = s
	logger.Info("Worker session registered: %s (total: %d)", s.ID, len(h.sessions))
}

// Remove drops a session from the hub so later broadcasts skip it
func (h *Hub) Remove(s *Session) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.sessions[s.ID]; ok {
		delete(h.sessions, s.ID)
		logger.Info("Worker session unregistered: %s (total: %d)", s.ID, len(h.sessions))
	}
}

// Count returns the number of live sessions
func (h *Hub) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	return len(h.sessions)
}

// BroadcastStop pushes a stop frame to every live session. Best-effort:
// a session whose send buffer is full (likely already closing) is
// skipped so one slow worker cannot stall the broadcast.
func (h *Hub) BroadcastStop() {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, s := range h.sessions {
		select {
		case s.send <- protocol.NewStop():
		default:
			logger.Warn("Stop not delivered to worker %s (send buffer full)", s.ID)
		}
	}
}

// Shutdown closes all live sessions. The session list is snapshotted
// first because each Stop removes the session from the hub.
func (h *Hub) Shutdown() {
	h.mu.RLock()
	sessions := make([]*Session, 0, len(h.sessions))
	for _, s := range h.sessions {
		sessions = append(sessions, s)
	}
	h.mu.RUnlock()

	for _, s := range sessions {
		s.Stop()
	}
}
