// Package protocol implements the wire format spoken between the
// coordinator and its workers: newline-delimited JSON frames with a
// string type discriminator.
//
// Inbound (worker -> coordinator):
//   - register {cores}: declare worker parallelism
//   - request_work {}: ask for the next block
//   - found {number}: report a value matching the target digest
//
// Outbound (coordinator -> worker):
//   - work {start, end, target_hash}: assigned block plus the digest
//   - no_work {}: keyspace exhausted, no match yet
//   - stop {}: a match was found somewhere, cease scanning
//
// Receivers buffer partial reads and process one complete frame at a
// time. Malformed frames are reported via ErrMalformedFrame so the
// caller can drop them without closing the connection.
package protocol
