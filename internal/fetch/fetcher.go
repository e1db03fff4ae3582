package fetch

import (
	"context"
	"errors"
	"io"
	"net/http"
	"time"
)

// Fetcher performs single GET requests.
//
// Design decision: We use a struct holding the http.Client rather than
// passing the client on each call because:
//  1. Header and limit configuration should be consistent across requests
//  2. Connection pooling works better with a shared client
//  3. Easier to test with httptest servers
type Fetcher struct {
	// client is the underlying HTTP client.
	client *http.Client

	// userAgent is the User-Agent header sent with every request.
	// Servers commonly reject requests without a conventional one.
	userAgent string

	// timeout is the per-request timeout.
	timeout time.Duration

	// maxBodySize caps the payload size in bytes. Zero means no limit.
	maxBodySize int64

	// headers are extra headers sent with every request.
	headers map[string]string

	// cookie is an optional Cookie header value.
	cookie string
}

// Option configures a Fetcher.
type Option func(*Fetcher)

// WithUserAgent sets a custom User-Agent header.
func WithUserAgent(ua string) Option {
	return func(f *Fetcher) {
		if ua != "" {
			f.userAgent = ua
		}
	}
}

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(f *Fetcher) {
		if d > 0 {
			f.timeout = d
		}
	}
}

// WithMaxBodySize caps the payload size in bytes. Zero disables the cap.
func WithMaxBodySize(size int64) Option {
	return func(f *Fetcher) {
		f.maxBodySize = size
	}
}

// WithHeaders sets extra headers sent with every request.
func WithHeaders(headers map[string]string) Option {
	return func(f *Fetcher) {
		f.headers = headers
	}
}

// WithCookie sets the Cookie header value.
func WithCookie(cookie string) Option {
	return func(f *Fetcher) {
		f.cookie = cookie
	}
}

// WithClient replaces the underlying HTTP client.
// Mainly useful in tests.
func WithClient(client *http.Client) Option {
	return func(f *Fetcher) {
		if client != nil {
			f.client = client
		}
	}
}

// New creates a Fetcher with the given options.
func New(opts ...Option) *Fetcher {
	f := &Fetcher{
		client:    &http.Client{},
		userAgent: "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36",
		timeout:   30 * time.Second,
	}

	for _, opt := range opts {
		opt(f)
	}

	return f
}

// Fetch performs one GET request and returns the full payload.
// Failures are returned as *Error with a classified Kind.
func (f *Fetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, &Error{Kind: KindConnectionFailed, URL: url, Err: err}
	}

	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "image/avif,image/webp,*/*;q=0.8")
	for k, v := range f.headers {
		req.Header.Set(k, v)
	}
	if f.cookie != "" {
		req.Header.Set("Cookie", f.cookie)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, classifyTransportError(url, err)
	}
	defer resp.Body.Close() //nolint:errcheck // Read errors surface from io.ReadAll

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &Error{Kind: KindHTTPStatus, URL: url, Status: resp.StatusCode}
	}

	// Reject early when the server announces an oversized payload.
	if f.maxBodySize > 0 && resp.ContentLength > f.maxBodySize {
		return nil, &Error{Kind: KindTooLarge, URL: url}
	}

	reader := resp.Body
	if f.maxBodySize > 0 {
		// Read one byte past the limit so we can tell "exactly at the
		// limit" apart from "exceeds it".
		reader = io.NopCloser(io.LimitReader(resp.Body, f.maxBodySize+1))
	}

	body, err := io.ReadAll(reader)
	if err != nil {
		return nil, classifyTransportError(url, err)
	}

	if f.maxBodySize > 0 && int64(len(body)) > f.maxBodySize {
		return nil, &Error{Kind: KindTooLarge, URL: url}
	}

	return body, nil
}

// classifyTransportError maps transport-level failures to Error kinds.
func classifyTransportError(url string, err error) *Error {
	if errors.Is(err, context.DeadlineExceeded) {
		return &Error{Kind: KindTimeout, URL: url, Err: err}
	}

	var netErr interface{ Timeout() bool }
	if errors.As(err, &netErr) && netErr.Timeout() {
		return &Error{Kind: KindTimeout, URL: url, Err: err}
	}

	return &Error{Kind: KindConnectionFailed, URL: url, Err: err}
}
