// Package fetch retrieves remote spreadsheet content: a Sheets API
// client, a strategy selector with classified fallbacks, a batched
// range reader for large sheets, an unauthenticated export fallback,
// and a proxy-relayed fetcher for generic image URLs.
package fetch

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies a fetch failure. Fetchers classify their own
// failures; the strategy selector only sequences strategies and never
// inspects raw HTTP status codes.
type Kind int

const (
	// KindNetwork is a transient transport failure; the next candidate
	// in a fallback chain may succeed.
	KindNetwork Kind = iota
	// KindUnauthorized means an expired or missing credential;
	// recoverable by re-authenticating.
	KindUnauthorized
	// KindForbidden means the document is private to the caller. Not a
	// hard error: it triggers the next strategy.
	KindForbidden
	// KindRateLimited is recoverable via backoff and bounded retry.
	KindRateLimited
	// KindNotFound means the document does not exist; the user must
	// fix the source.
	KindNotFound
	// KindInvalidURL means the source string is not a usable URL.
	KindInvalidURL
	// KindInvalidContent means the response was not a spreadsheet or
	// image; try the next proxy or strategy.
	KindInvalidContent
)

func (k Kind) String() string {
	switch k {
	case KindNetwork:
		return "network"
	case KindUnauthorized:
		return "unauthorized"
	case KindForbidden:
		return "forbidden"
	case KindRateLimited:
		return "rate_limited"
	case KindNotFound:
		return "not_found"
	case KindInvalidURL:
		return "invalid_url"
	case KindInvalidContent:
		return "invalid_content"
	}
	return "unknown"
}

// Error is a classified fetch failure.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func newError(kind Kind, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

func wrapError(kind Kind, err error, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...), Err: err}
}

// KindOf extracts the failure kind from an error chain. The second
// return is false when err carries no classification.
func KindOf(err error) (Kind, bool) {
	var fe *Error
	if errors.As(err, &fe) {
		return fe.Kind, true
	}
	return 0, false
}

// IsKind reports whether err is a fetch failure of the given kind.
func IsKind(err error, kind Kind) bool {
	k, ok := KindOf(err)
	return ok && k == kind
}

// classifyStatus maps an HTTP status code to a failure kind.
func classifyStatus(code int) Kind {
	switch code {
	case http.StatusUnauthorized:
		return KindUnauthorized
	case http.StatusForbidden:
		return KindForbidden
	case http.StatusNotFound:
		return KindNotFound
	case http.StatusTooManyRequests:
		return KindRateLimited
	}
	return KindNetwork
}
