// Package fetch performs single HTTP GET requests with timeout, size
// limiting, and error classification. It is used both for the initial
// page fetch and for each image download.
//
// There is no retry logic here: retry policy, if any, belongs to the
// caller. Every failure is classified into a Kind (timeout, connection
// failure, HTTP status, payload too large) so callers can report
// human-readable reasons without string matching.
package fetch
