package protocol

// Message type constants
const (
	// Worker -> coordinator
	MessageTypeRegister    = "register"
	MessageTypeRequestWork = "request_work"
	MessageTypeFound       = "found"

	// Coordinator -> worker
	MessageTypeWork   = "work"
	MessageTypeNoWork = "no_work"
	MessageTypeStop   = "stop"
)

// Message is the single frame structure shared by all message types.
// Which fields are meaningful depends on Type; fields that do not apply
// are omitted on the wire. Block bounds and the reported number are
// pointers so that a legitimate zero (the keyspace starts at 0) still
// serializes.
type Message struct {
	Type       string `json:"type"`
	Cores      int    `json:"cores,omitempty"`
	Start      *int64 `json:"start,omitempty"`
	End        *int64 `json:"end,omitempty"`
	TargetHash string `json:"target_hash,omitempty"`
	Number     *int64 `json:"number,omitempty"`
}

// NewRegister creates a registration message declaring worker parallelism
func NewRegister(cores int) *Message {
	return &Message{Type: MessageTypeRegister, Cores: cores}
}

// NewRequestWork creates a work request message
func NewRequestWork() *Message {
	return &Message{Type: MessageTypeRequestWork}
}

// NewWork creates a work assignment carrying the block bounds and the
// target digest. The digest rides along with every block, not just the
// first, so a worker never has to remember it across assignments.
func NewWork(start, end int64, targetHash string) *Message {
	return &Message{Type: MessageTypeWork, Start: &start, End: &end, TargetHash: targetHash}
}

// NewNoWork creates a message indicating the keyspace is exhausted
func NewNoWork() *Message {
	return &Message{Type: MessageTypeNoWork}
}

// NewStop creates a stop message
func NewStop() *Message {
	return &Message{Type: MessageTypeStop}
}

// NewFound creates a match report message
func NewFound(number int64) *Message {
	return &Message{Type: MessageTypeFound, Number: &number}
}

// Block returns the assigned block bounds of a work message.
// ok is false if either bound is missing.
func (m *Message) Block() (start, end int64, ok bool) {
	if m.Start == nil || m.End == nil {
		return 0, 0, false
	}
	return *m.Start, *m.End, true
}

// FoundNumber returns the reported match of a found message.
// ok is false if the number field is missing.
func (m *Message) FoundNumber() (int64, bool) {
	if m.Number == nil {
		return 0, false
	}
	return *m.Number, true
}
