package server

import (
	"errors"
	"fmt"
	"io"
	"net"
	"sync"
	"time"

	"github.com/Itay01/Distributed-MD5-Cracker/internal/coordinator"
	"github.com/Itay01/Distributed-MD5-Cracker/internal/logger"
	"github.com/Itay01/Distributed-MD5-Cracker/internal/protocol"
)

const (
	// sendBufferSize bounds the outbound queue per session
	sendBufferSize = 16
	// writeTimeout caps a single outbound frame write
	writeTimeout = 10 * time.Second
)

// Session runs the protocol state machine for one connected worker:
// decoded frames become coordinator operations, coordinator results
// become outbound frames. Teardown releases the worker's outstanding
// block back to the search space.
type Session struct {
	// ID is the worker identity used as the assignment registry key
	ID string

	conn       net.Conn
	hub        *Hub
	coord      *coordinator.Coordinator
	targetHash string

	// Outbound frame channel, drained by writePump
	send chan *protocol.Message

	stopChan chan struct{}
	stopOnce sync.Once
}

// NewSession creates a session for an accepted connection
func NewSession(id string, conn net.Conn, hub *Hub, coord *coordinator.Coordinator, targetHash string) *Session {
	return &Session{
		ID:         id,
		conn:       conn,
		hub:        hub,
		coord:      coord,
		targetHash: targetHash,
		send:       make(chan *protocol.Message, sendBufferSize),
		stopChan:   make(chan struct{}),
	}
}

// Start registers the session and begins its read and write pumps
func (s *Session) Start() {
	s.coord.Attach(s.ID)
	s.hub.Add(s)

	go s.readPump()
	go s.writePump()
}

// Stop tears the session down: hub removal, block release, connection
// close. Safe to call from any goroutine, runs once.
func (s *Session) Stop() {
	s.stopOnce.Do(func() {
		close(s.stopChan)

		s.hub.Remove(s)

		// Return any outstanding block to the pool
		s.coord.Detach(s.ID)

		s.conn.Close()

		// s.send is never closed; both pumps exit via stopChan, so a
		// racing enqueue or broadcast cannot hit a closed channel

		logger.Info("Worker %s disconnected", s.ID)
	})
}

// readPump decodes frames off the connection and dispatches them until
// the peer goes away
func (s *Session) readPump() {
	defer s.Stop()

	dec := protocol.NewDecoder(s.conn)
	for {
		select {
		case <-s.stopChan:
			return
		default:
		}

		msg, err := dec.Next()
		if err != nil {
			// Malformed frames are dropped, the connection stays open
			if errors.Is(err, protocol.ErrMalformedFrame) {
				logger.Warn("Dropping malformed frame from worker %s: %v", s.ID, err)
				continue
			}
			if errors.Is(err, io.EOF) {
				logger.Debug("Worker %s closed the connection", s.ID)
			} else if !errors.Is(err, net.ErrClosed) {
				logger.Error("Read error from worker %s: %v", s.ID, err)
			}
			return
		}

		s.handleMessage(msg)
	}
}

// writePump serializes outbound frames onto the connection
func (s *Session) writePump() {
	defer s.Stop()

	for {
		select {
		case <-s.stopChan:
			return

		case msg := <-s.send:
			data, err := protocol.Encode(msg)
			if err != nil {
				logger.Error("Failed to encode %s frame for worker %s: %v", msg.Type, s.ID, err)
				continue
			}

			if err := s.conn.SetWriteDeadline(time.Now().Add(writeTimeout)); err != nil {
				logger.Error("Failed to set write deadline for worker %s: %v", s.ID, err)
				return
			}
			if _, err := s.conn.Write(data); err != nil {
				if !errors.Is(err, net.ErrClosed) {
					logger.Error("Write error to worker %s: %v", s.ID, err)
				}
				return
			}
		}
	}
}

// handleMessage dispatches one decoded frame
func (s *Session) handleMessage(msg *protocol.Message) {
	switch msg.Type {
	case protocol.MessageTypeRegister:
		cores := msg.Cores
		if cores < 1 {
			cores = 1
		}
		s.coord.Register(s.ID, cores)
		logger.Info("Worker %s registered with %d cores", s.ID, cores)

	case protocol.MessageTypeRequestWork:
		s.handleRequestWork()

	case protocol.MessageTypeFound:
		s.handleFound(msg)

	default:
		// Unknown types are dropped, matching the tolerance for
		// malformed frames
		logger.Warn("Dropping frame with unknown type %q from worker %s", msg.Type, s.ID)
	}
}

func (s *Session) handleRequestWork() {
	grant := s.coord.Allocate(s.ID)

	switch grant.Kind {
	case coordinator.GrantWork:
		logger.Debug("Assigned block [%d, %d] to worker %s", grant.Block.Start, grant.Block.End, s.ID)
		s.enqueue(protocol.NewWork(grant.Block.Start, grant.Block.End, s.targetHash))

	case coordinator.GrantNoWork:
		logger.Debug("Keyspace exhausted, no work for worker %s", s.ID)
		s.enqueue(protocol.NewNoWork())

	case coordinator.GrantStop:
		s.enqueue(protocol.NewStop())
	}
}

func (s *Session) handleFound(msg *protocol.Message) {
	number, ok := msg.FoundNumber()
	if !ok {
		logger.Warn("Dropping found report without a number from worker %s", s.ID)
		return
	}

	if s.coord.RecordFound(s.ID, number) {
		logger.Info("Worker %s found match: %d", s.ID, number)
		s.hub.BroadcastStop()
	} else {
		// Late or duplicate report; the worker already got (or will
		// get) stop via broadcast or its next request
		logger.Debug("Ignoring late found report %d from worker %s", number, s.ID)
	}
}

// enqueue queues an outbound frame without blocking the read loop
func (s *Session) enqueue(msg *protocol.Message) {
	select {
	case s.send <- msg:
	case <-s.stopChan:
	default:
		logger.Warn("Send buffer full for worker %s, dropping %s frame", s.ID, msg.Type)
	}
}

// RemoteAddr returns the peer address for logging
func (s *Session) RemoteAddr() string {
	return fmt.Sprintf("%v", s.conn.RemoteAddr())
}
