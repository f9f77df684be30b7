// Package workerclient implements the worker side of the coordination
// protocol: dial, register, request blocks, report a match. The search
// loop that actually scans a block lives in the worker binary, not
// here; this package only speaks the protocol, which also makes it the
// natural harness for integration-testing the coordinator.
package workerclient

import (
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/Itay01/Distributed-MD5-Cracker/internal/protocol"
)

// Client is a connection to the coordinator
type Client struct {
	conn net.Conn
	dec  *protocol.Decoder

	// Guards writes; reads are single-consumer by convention
	writeMu sync.Mutex
}

// Dial connects to the coordinator at addr
func Dial(addr string) (*Client, error) {
	conn, err := net.DialTimeout("tcp", addr, 10*time.Second)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to coordinator at %s: %w", addr, err)
	}
	return &Client{
		conn: conn,
		dec:  protocol.NewDecoder(conn),
	}, nil
}

// Register declares this worker's parallelism to the coordinator
func (c *Client) Register(cores int) error {
	return c.send(protocol.NewRegister(cores))
}

// RequestWork asks for the next block and returns the coordinator's
// reply: a work, no_work, or stop frame
func (c *Client) RequestWork() (*protocol.Message, error) {
	if err := c.send(protocol.NewRequestWork()); err != nil {
		return nil, err
	}
	return c.ReadMessage()
}

// ReportFound tells the coordinator this value matches the target digest
func (c *Client) ReportFound(number int64) error {
	return c.send(protocol.NewFound(number))
}

// ReadMessage blocks until the next frame arrives. Used for the
// asynchronous stop broadcast.
func (c *Client) ReadMessage() (*protocol.Message, error) {
	return c.dec.Next()
}

// ReadMessageTimeout reads the next frame with a deadline
func (c *Client) ReadMessageTimeout(d time.Duration) (*protocol.Message, error) {
	if err := c.conn.SetReadDeadline(time.Now().Add(d)); err != nil {
		return nil, err
	}
	defer c.conn.SetReadDeadline(time.Time{})
	return c.dec.Next()
}

// SendRaw writes raw bytes to the connection, bypassing the codec.
// Exists so tests can exercise the coordinator's malformed-frame
// handling.
func (c *Client) SendRaw(data []byte) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	if _, err := c.conn.Write(data); err != nil {
		return fmt.Errorf("failed to write to coordinator: %w", err)
	}
	return nil
}

// Close closes the connection
func (c *Client) Close() error {
	return c.conn.Close()
}

func (c *Client) send(msg *protocol.Message) error {
	data, err := protocol.Encode(msg)
	if err != nil {
		return err
	}

	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	if _, err := c.conn.Write(data); err != nil {
		return fmt.Errorf("failed to write %s frame: %w", msg.Type, err)
	}
	return nil
}
