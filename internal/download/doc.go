// Package download runs the bounded-concurrency download loop.
//
// The Coordinator fans the extracted references out to at most N
// concurrent workers, each performing fetch, hash, dedup check, and
// save for one reference. Tasks are fully isolated: a failed fetch or
// write becomes a Failed outcome and never aborts or blocks sibling
// tasks. The coordinator waits for every dispatched task before
// finalizing the tally.
package download
