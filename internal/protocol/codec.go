package protocol

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
)

// ErrMalformedFrame indicates a complete frame that could not be parsed.
// Callers are expected to log the frame and keep reading; a malformed
// frame never closes the connection.
var ErrMalformedFrame = errors.New("malformed frame")

// Encode serializes a message as a single newline-terminated JSON frame
func Encode(m *Message) ([]byte, error) {
	data, err := json.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("failed to encode %s message: %w", m.Type, err)
	}
	return append(data, '\n'), nil
}

// Decoder reads newline-delimited frames from a byte stream, buffering
// partial reads until a terminator arrives.
type Decoder struct {
	r *bufio.Reader
}

// NewDecoder creates a decoder reading from r
func NewDecoder(r io.Reader) *Decoder {
	return &Decoder{r: bufio.NewReader(r)}
}

// Next returns the next complete frame. Blank lines are skipped.
// A parse failure returns an error matching ErrMalformedFrame and the
// decoder remains usable; any other error is an I/O condition (EOF,
// closed connection) and the stream is done.
func (d *Decoder) Next() (*Message, error) {
	for {
		line, err := d.r.ReadString('\n')
		if err != nil {
			return nil, err
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		var msg Message
		if err := json.Unmarshal([]byte(line), &msg); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedFrame, err)
		}
		if msg.Type == "" {
			return nil, fmt.Errorf("%w: missing type field", ErrMalformedFrame)
		}
		return &msg, nil
	}
}
