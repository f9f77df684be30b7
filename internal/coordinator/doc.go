// Package coordinator manages the shared state of a distributed
// brute-force keyspace search: which sub-ranges have been handed to
// which workers, which ranges came back after a disconnect, and whether
// a match has been found.
//
// All state lives behind one mutex. Operations are O(1) apart from the
// reclaimed-range list (which holds at most one small entry per
// not-yet-reissued disconnect) and never perform I/O under the lock, so
// the single lock is the total order for every allocation and every
// found report: two workers can never observe overlapping blocks, and
// exactly one found report wins.
package coordinator
