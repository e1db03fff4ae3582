package fetch

import "fmt"

// Kind classifies a fetch failure.
type Kind string

// Failure kinds.
const (
	// KindTimeout means the request exceeded its deadline.
	KindTimeout Kind = "timeout"

	// KindConnectionFailed means the connection could not be
	// established or broke mid-transfer.
	KindConnectionFailed Kind = "connection failed"

	// KindHTTPStatus means the server answered with a non-2xx status.
	KindHTTPStatus Kind = "http status"

	// KindTooLarge means the payload exceeded the configured size limit.
	KindTooLarge Kind = "too large"
)

// Error is a classified fetch failure.
// Callers can switch on Kind or use errors.As to inspect it.
type Error struct {
	// Kind classifies the failure.
	Kind Kind

	// URL is the request URL.
	URL string

	// Status is the HTTP status code, set only for KindHTTPStatus.
	Status int

	// Err is the underlying error, if any.
	Err error
}

// Error implements the error interface with a human-readable reason
// suitable for outcome records and logs.
func (e *Error) Error() string {
	switch e.Kind {
	case KindHTTPStatus:
		return fmt.Sprintf("HTTP %d for %s", e.Status, e.URL)
	case KindTooLarge:
		return fmt.Sprintf("payload too large for %s", e.URL)
	case KindTimeout:
		return fmt.Sprintf("timeout fetching %s", e.URL)
	default:
		if e.Err != nil {
			return fmt.Sprintf("fetch %s: %v", e.URL, e.Err)
		}
		return fmt.Sprintf("fetch %s failed", e.URL)
	}
}

// Unwrap returns the underlying error for errors.Is/As chains.
func (e *Error) Unwrap() error {
	return e.Err
}
