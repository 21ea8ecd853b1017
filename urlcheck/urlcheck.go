// Package urlcheck decides whether a link target may be followed.
//
// Only absolute http and https addresses are eligible. Relative targets are
// rejected because the current document's base address is not tracked.
package urlcheck

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

var (
	ErrEmpty    = errors.New("empty address")
	ErrFragment = errors.New("fragment-only target")
	ErrScript   = errors.New("script target")
	ErrMailto   = errors.New("mail target")
	ErrScheme   = errors.New("unsupported or missing scheme")
)

// InvalidError reports why an href was rejected.
type InvalidError struct {
	Href   string
	Reason error
}

func (e *InvalidError) Error() string {
	return fmt.Sprintf("invalid url %q: %v", e.Href, e.Reason)
}

func (e *InvalidError) Unwrap() error {
	return e.Reason
}

// Check returns nil when href is an absolute http(s) address, and an
// *InvalidError wrapping one of the Err values otherwise.
func Check(href string) error {
	s := strings.TrimSpace(href)
	lower := strings.ToLower(s)

	var reason error
	switch {
	case s == "":
		reason = ErrEmpty
	case strings.HasPrefix(s, "#"):
		reason = ErrFragment
	case strings.HasPrefix(lower, "javascript:"):
		reason = ErrScript
	case strings.HasPrefix(lower, "mailto:"):
		reason = ErrMailto
	default:
		u, err := url.Parse(s)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			reason = ErrScheme
		}
	}

	if reason != nil {
		return &InvalidError{Href: href, Reason: reason}
	}
	return nil
}

// IsEligible reports whether href may be navigated to.
func IsEligible(href string) bool {
	return Check(href) == nil
}
