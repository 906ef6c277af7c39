package scraper

import (
	"errors"
	"fmt"
)

// Kind categorizes a per-URL failure.
type Kind string

// Failure kinds reported for a URL.
const (
	KindUnknown          Kind = "Unknown"
	KindTransport        Kind = "TransportFailure"
	KindFetch            Kind = "FetchFailure"
	KindMarkerNotFound   Kind = "MarkerNotFound"
	KindMalformedPayload Kind = "MalformedPayload"
	KindMissingListing   Kind = "MissingListing"
	KindMissingName      Kind = "MissingName"
	KindOutput           Kind = "OutputFailure"
)

// Sentinel errors, one per kind, for errors.Is checks.
var (
	ErrTransport        = errors.New("transport failure")
	ErrFetch            = errors.New("unexpected status code")
	ErrMarkerNotFound   = errors.New("marker element not found")
	ErrMalformedPayload = errors.New("malformed payload")
	ErrMissingListing   = errors.New("listing not found in payload")
	ErrMissingName      = errors.New("listing name not found")
	ErrOutput           = errors.New("report output failed")
)

var sentinels = map[Kind]error{
	KindTransport:        ErrTransport,
	KindFetch:            ErrFetch,
	KindMarkerNotFound:   ErrMarkerNotFound,
	KindMalformedPayload: ErrMalformedPayload,
	KindMissingListing:   ErrMissingListing,
	KindMissingName:      ErrMissingName,
	KindOutput:           ErrOutput,
}

// Error carries the kind, URL, upstream status, and cause of a failure.
type Error struct {
	Kind   Kind
	URL    string
	Status int
	Err    error
}

// NewError builds an Error of kind wrapping cause.
func NewError(kind Kind, cause error) *Error {
	return &Error{Kind: kind, Err: cause}
}

func (e *Error) Error() string {
	msg := string(e.Kind)
	if e.Status != 0 {
		msg = fmt.Sprintf("%s (status %d)", msg, e.Status)
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches the sentinel for the error's kind.
func (e *Error) Is(target error) bool {
	sentinel, ok := sentinels[e.Kind]
	return ok && sentinel == target
}

// Detail returns the upstream status when one was recorded, otherwise the
// underlying cause text, or the kind when there is neither.
func (e *Error) Detail() string {
	if e.Status != 0 {
		return fmt.Sprintf("status %d", e.Status)
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return string(e.Kind)
}

// KindOf classifies err. Errors outside the taxonomy report KindUnknown.
func KindOf(err error) Kind {
	var se *Error
	if errors.As(err, &se) {
		return se.Kind
	}
	return KindUnknown
}

// WithURL returns err annotated with url when it is an *Error without one.
func WithURL(err error, url string) error {
	var se *Error
	if errors.As(err, &se) && se.URL == "" {
		cp := *se
		cp.URL = url
		return &cp
	}
	return err
}
