// Package dedup provides the content-hash index used to skip
// byte-identical images during a run.
//
// The index is shared by all download workers. Its single operation,
// CheckAndInsert, is atomic: when several workers race on the same
// hash, exactly one of them observes wasNew and the rest learn the
// path of the winner. The index lives only for the duration of one
// run and is never persisted.
package dedup
