package protocol

import (
	"errors"
	"io"
	"strings"
	"testing"
)

func TestEncodeWork(t *testing.T) {
	data, err := Encode(NewWork(0, 99999, "EC9C0F7EDCC18A98B1F31853B1813301"))
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}

	frame := string(data)
	if !strings.HasSuffix(frame, "\n") {
		t.Error("Frame should be newline-terminated")
	}
	if strings.Count(frame, "\n") != 1 {
		t.Errorf("Frame should contain exactly one newline, got %d", strings.Count(frame, "\n"))
	}
	// start is 0 and must still appear on the wire
	if !strings.Contains(frame, `"start":0`) {
		t.Errorf("Frame should carry start 0, got %s", frame)
	}
	if !strings.Contains(frame, `"end":99999`) {
		t.Errorf("Frame should carry end, got %s", frame)
	}
	if !strings.Contains(frame, `"target_hash":"EC9C0F7EDCC18A98B1F31853B1813301"`) {
		t.Errorf("Frame should carry target hash, got %s", frame)
	}
}

func TestEncodeFoundZero(t *testing.T) {
	data, err := Encode(NewFound(0))
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	if !strings.Contains(string(data), `"number":0`) {
		t.Errorf("Found report of 0 should still carry the number field, got %s", data)
	}
}

func TestDecoderRoundTrip(t *testing.T) {
	tests := []struct {
		name string
		msg  *Message
	}{
		{"register", NewRegister(4)},
		{"request_work", NewRequestWork()},
		{"work", NewWork(100000, 199999, "ABC123")},
		{"no_work", NewNoWork()},
		{"stop", NewStop()},
		{"found", NewFound(42)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := Encode(tt.msg)
			if err != nil {
				t.Fatalf("Encode failed: %v", err)
			}

			got, err := NewDecoder(strings.NewReader(string(data))).Next()
			if err != nil {
				t.Fatalf("Next failed: %v", err)
			}
			if got.Type != tt.msg.Type {
				t.Errorf("Expected type %q, got %q", tt.msg.Type, got.Type)
			}
		})
	}
}

func TestDecoderSplitsFrames(t *testing.T) {
	stream := `{"type":"register","cores":8}` + "\n" +
		`{"type":"request_work"}` + "\n" +
		`{"type":"found","number":123456}` + "\n"

	dec := NewDecoder(strings.NewReader(stream))

	msg, err := dec.Next()
	if err != nil {
		t.Fatalf("Next failed: %v", err)
	}
	if msg.Type != MessageTypeRegister || msg.Cores != 8 {
		t.Errorf("Expected register with 8 cores, got %+v", msg)
	}

	msg, err = dec.Next()
	if err != nil {
		t.Fatalf("Next failed: %v", err)
	}
	if msg.Type != MessageTypeRequestWork {
		t.Errorf("Expected request_work, got %q", msg.Type)
	}

	msg, err = dec.Next()
	if err != nil {
		t.Fatalf("Next failed: %v", err)
	}
	n, ok := msg.FoundNumber()
	if !ok || n != 123456 {
		t.Errorf("Expected found number 123456, got %v (ok=%v)", n, ok)
	}

	if _, err := dec.Next(); err != io.EOF {
		t.Errorf("Expected EOF after last frame, got %v", err)
	}
}

func TestDecoderBuffersPartialFrame(t *testing.T) {
	// A frame split across reads must not surface until the terminator
	// arrives. iotest-style single-byte reader exercises the buffering.
	stream := `{"type":"work","start":0,"end":99999,"target_hash":"AB"}` + "\n"
	dec := NewDecoder(oneByteReader{strings.NewReader(stream)})

	msg, err := dec.Next()
	if err != nil {
		t.Fatalf("Next failed: %v", err)
	}
	start, end, ok := msg.Block()
	if !ok || start != 0 || end != 99999 {
		t.Errorf("Expected block [0, 99999], got [%d, %d] (ok=%v)", start, end, ok)
	}
}

func TestDecoderSkipsBlankLines(t *testing.T) {
	dec := NewDecoder(strings.NewReader("\n  \n{\"type\":\"stop\"}\n"))
	msg, err := dec.Next()
	if err != nil {
		t.Fatalf("Next failed: %v", err)
	}
	if msg.Type != MessageTypeStop {
		t.Errorf("Expected stop, got %q", msg.Type)
	}
}

func TestDecoderMalformedFrameIsRecoverable(t *testing.T) {
	stream := "{not json}\n" +
		`{"cores":2}` + "\n" + // valid JSON but no type
		`{"type":"request_work"}` + "\n"
	dec := NewDecoder(strings.NewReader(stream))

	for i := 0; i < 2; i++ {
		_, err := dec.Next()
		if !errors.Is(err, ErrMalformedFrame) {
			t.Fatalf("Frame %d: expected ErrMalformedFrame, got %v", i, err)
		}
	}

	// The decoder stays usable after malformed frames
	msg, err := dec.Next()
	if err != nil {
		t.Fatalf("Next after malformed frames failed: %v", err)
	}
	if msg.Type != MessageTypeRequestWork {
		t.Errorf("Expected request_work, got %q", msg.Type)
	}
}

// oneByteReader delivers at most one byte per Read call
type oneByteReader struct {
	r io.Reader
}

func (o oneByteReader) Read(p []byte) (int, error) {
	if len(p) > 1 {
		p = p[:1]
	}
	return o.r.Read(p)
}
