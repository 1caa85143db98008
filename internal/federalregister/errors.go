package federalregister

import (
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"

	"fedcite/internal/util"
)

// RateLimitError is returned for a 429 response. Header holds the response
// headers so callers can record what the server said about the limit.
type RateLimitError struct {
	URL        string
	RetryAfter string
	Header     http.Header
}

func (e *RateLimitError) Error() string {
	if e.RetryAfter != "" {
		return fmt.Sprintf("federalregister: rate limited fetching %s (retry after %s)", e.URL, e.RetryAfter)
	}
	return fmt.Sprintf("federalregister: rate limited fetching %s", e.URL)
}

func (e *RateLimitError) Unwrap() error { return util.ErrRateLimited }

// APIError is any other non-2xx response. It is not worth retrying.
type APIError struct {
	StatusCode int
	Message    string
	URL        string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("federalregister: API error %d: %s (URL: %s)", e.StatusCode, e.Message, e.URL)
}

func (e *APIError) Unwrap() error { return util.ErrPermanent }

func IsRateLimited(err error) bool {
	var rl *RateLimitError
	return errors.As(err, &rl)
}

func IsNotFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound
}

// IsTransient reports a transport failure or timeout that a later attempt
// may get past. Callers check their own context first: a cancelled request
// also surfaces as a *url.Error.
func IsTransient(err error) bool {
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	var urlErr *url.Error
	return errors.As(err, &urlErr)
}

func checkResponse(resp *http.Response, url string) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}
	if resp.StatusCode == http.StatusTooManyRequests {
		return &RateLimitError{URL: url, RetryAfter: resp.Header.Get("Retry-After"), Header: resp.Header.Clone()}
	}
	return &APIError{StatusCode: resp.StatusCode, Message: http.StatusText(resp.StatusCode), URL: url}
}
