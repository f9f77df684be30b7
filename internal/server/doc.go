// Package server is the network face of the coordinator: a TCP
// listener that speaks the newline-delimited JSON worker protocol.
//
// Each accepted connection gets a Session running a read pump and a
// write pump. The read pump turns decoded frames into coordinator
// operations; the write pump drains a buffered outbound channel. The
// Hub tracks live sessions so that the first successful found report
// can fan a stop frame out to everyone.
//
// Per-connection errors never escape the session: a malformed frame is
// logged and dropped, and a dead connection triggers exactly one
// teardown that releases the worker's outstanding block back to the
// coordinator.
package server
