package github

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"
)

// AuthError reports a missing or rejected credential. It aborts the run.
type AuthError struct {
	Reason string
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("github: authentication failed: %s", e.Reason)
}

// NotFoundError reports that a login, project, or repository did not resolve.
type NotFoundError struct {
	Resource string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("github: %s not found", e.Resource)
}

// RateLimitError reports API throttling. Reset is zero when GitHub did not
// say when the quota returns. Retrying is the caller's concern; the fetcher
// never retries on its own.
type RateLimitError struct {
	Reset time.Time
}

func (e *RateLimitError) Error() string {
	if e.Reset.IsZero() {
		return "github: API rate limit exceeded"
	}
	return fmt.Sprintf("github: API rate limit exceeded, resets at %s", e.Reset.Format(time.RFC3339))
}

// classifyTransport sits above the oauth2 transport and converts the HTTP
// status codes both API surfaces can return into the typed errors above, so
// REST and GraphQL callers classify failures the same way with errors.As.
type classifyTransport struct {
	base http.RoundTripper
}

func (t *classifyTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	resp, err := t.base.RoundTrip(req)
	if err != nil {
		return nil, err
	}

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		return nil, discardBody(resp, &AuthError{Reason: "bad credentials"})
	case resp.StatusCode == http.StatusTooManyRequests,
		resp.StatusCode == http.StatusForbidden && resp.Header.Get("X-RateLimit-Remaining") == "0":
		return nil, discardBody(resp, &RateLimitError{Reset: rateLimitReset(resp)})
	case resp.StatusCode == http.StatusNotFound:
		return nil, discardBody(resp, &NotFoundError{Resource: req.URL.Path})
	}
	return resp, nil
}

// discardBody drains and closes the response body so the connection can be
// reused, then returns the typed error.
func discardBody(resp *http.Response, err error) error {
	io.Copy(io.Discard, resp.Body)
	resp.Body.Close()
	return err
}

func rateLimitReset(resp *http.Response) time.Time {
	v := resp.Header.Get("X-RateLimit-Reset")
	if v == "" {
		return time.Time{}
	}
	secs, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return time.Time{}
	}
	return time.Unix(secs, 0).UTC()
}

// classifyQueryError maps GraphQL-level failures (which arrive as 200 OK plus
// an errors array, surfaced by githubv4 as a plain error message) onto the
// typed taxonomy. HTTP-level failures already carry a type from the
// transport and pass through unchanged.
func classifyQueryError(err error, resource string) error {
	var authErr *AuthError
	var notFoundErr *NotFoundError
	var rateErr *RateLimitError
	if errors.As(err, &authErr) || errors.As(err, &notFoundErr) || errors.As(err, &rateErr) {
		return err
	}

	msg := err.Error()
	switch {
	case strings.Contains(msg, "Could not resolve"):
		return &NotFoundError{Resource: resource}
	case strings.Contains(msg, "rate limit"), strings.Contains(msg, "RATE_LIMITED"):
		return &RateLimitError{}
	case strings.Contains(msg, "Bad credentials"):
		return &AuthError{Reason: "bad credentials"}
	}
	return err
}
