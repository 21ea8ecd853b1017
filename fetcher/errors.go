package fetcher

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
	"syscall"
)

// ErrorKind classifies a failed page load.
type ErrorKind string

const (
	KindNoResponse        ErrorKind = "no_response"
	KindHTTP              ErrorKind = "http_error"
	KindConnectionRefused ErrorKind = "connection_refused"
	KindDNS               ErrorKind = "dns_failure"
	KindTimeout           ErrorKind = "timeout"
	KindUnexpected        ErrorKind = "unexpected"
)

// Error is returned by loaders for every failed load.
type Error struct {
	Kind   ErrorKind
	URL    string
	Status int    // HTTP status for KindHTTP, otherwise 0
	Detail string // human-readable, shown to the user
	Err    error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Kind, e.Detail)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// StatusError builds the error for an HTTP status of 400 or above.
func StatusError(url string, status int) *Error {
	detail := fmt.Sprintf("HTTP %d", status)
	if text := http.StatusText(status); text != "" {
		detail += " " + text
	}
	return &Error{
		Kind:   KindHTTP,
		URL:    url,
		Status: status,
		Detail: detail + " for " + url,
	}
}

// chromeErrors maps Chrome network error codes to kinds.
var chromeErrors = []struct {
	code string
	kind ErrorKind
}{
	{"net::ERR_NAME_NOT_RESOLVED", KindDNS},
	{"net::ERR_NAME_RESOLUTION_FAILED", KindDNS},
	{"net::ERR_CONNECTION_REFUSED", KindConnectionRefused},
	{"net::ERR_TIMED_OUT", KindTimeout},
	{"net::ERR_CONNECTION_TIMED_OUT", KindTimeout},
	{"net::ERR_EMPTY_RESPONSE", KindNoResponse},
	{"net::ERR_CONNECTION_CLOSED", KindNoResponse},
	{"net::ERR_CONNECTION_RESET", KindNoResponse},
}

// Classify converts a transport error into an *Error. Errors that are
// already an *Error are returned unchanged.
func Classify(url string, err error) *Error {
	if err == nil {
		return nil
	}
	var fe *Error
	if errors.As(err, &fe) {
		return fe
	}

	kind := classifyKind(err)
	return &Error{Kind: kind, URL: url, Detail: describe(kind, url, err), Err: err}
}

func classifyKind(err error) ErrorKind {
	if errors.Is(err, context.DeadlineExceeded) {
		return KindTimeout
	}
	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		if dnsErr.IsTimeout {
			return KindTimeout
		}
		return KindDNS
	}
	if errors.Is(err, syscall.ECONNREFUSED) {
		return KindConnectionRefused
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return KindTimeout
	}

	msg := err.Error()
	for _, ce := range chromeErrors {
		if strings.Contains(msg, ce.code) {
			return ce.kind
		}
	}
	return KindUnexpected
}

func describe(kind ErrorKind, url string, err error) string {
	switch kind {
	case KindTimeout:
		return "timed out loading " + url
	case KindDNS:
		return "could not resolve host for " + url
	case KindConnectionRefused:
		return "connection refused by " + url
	case KindNoResponse:
		return "no response from " + url
	}
	return err.Error()
}
