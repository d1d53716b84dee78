package fetch

import (
	"errors"

	"github.com/indigo-web/fetch/internal/http1"
)

// Kind classifies the failure of an exchange by the stage it happened at.
type Kind uint8

const (
	KindBuild Kind = iota + 1
	KindResolution
	KindConnect
	KindWrite
	KindConnectionClosed
	KindParse
	KindCanceled
)

func (k Kind) String() string {
	switch k {
	case KindBuild:
		return "build"
	case KindResolution:
		return "resolution"
	case KindConnect:
		return "connect"
	case KindWrite:
		return "write"
	case KindConnectionClosed:
		return "connection closed"
	case KindParse:
		return "parse"
	case KindCanceled:
		return "canceled"
	default:
		return "unknown"
	}
}

// Error is the only error type an exchange fails with. The cause is available via Unwrap.
type Error struct {
	Kind Kind
	Err  error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return "fetch: " + e.Kind.String()
	}

	return "fetch: " + e.Kind.String() + ": " + e.Err.Error()
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches kind sentinels, so errors.Is(err, ErrParse) holds for any parse failure.
func (e *Error) Is(target error) bool {
	kind, ok := target.(*Error)
	return ok && kind.Err == nil && kind.Kind == e.Kind
}

func newError(kind Kind, err error) *Error {
	return &Error{Kind: kind, Err: err}
}

// KindOf returns the kind of the error, or 0 if it doesn't originate from an exchange.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}

	return 0
}

var (
	ErrBuild            = &Error{Kind: KindBuild}
	ErrResolution       = &Error{Kind: KindResolution}
	ErrConnect          = &Error{Kind: KindConnect}
	ErrWrite            = &Error{Kind: KindWrite}
	ErrConnectionClosed = &Error{Kind: KindConnectionClosed}
	ErrParse            = &Error{Kind: KindParse}
	ErrCanceled         = &Error{Kind: KindCanceled}
)

var (
	ErrInvalidURL    = errors.New("invalid URL")
	ErrInvalidHeader = http1.ErrInvalidHeader
	ErrInvalidMethod = http1.ErrInvalidMethod
	ErrSerialization = errors.New("cannot serialize JSON body")
	ErrAlreadySent   = errors.New("request was already sent")
	ErrNoAddresses   = errors.New("host resolved into no addresses")

	ErrBadStatusLine    = http1.ErrBadStatusLine
	ErrBadHeader        = http1.ErrBadHeader
	ErrBadContentLength = http1.ErrBadContentLength
	ErrBadChunk         = http1.ErrBadChunk
	ErrTooLarge         = http1.ErrTooLarge
	ErrUnexpectedEOF    = http1.ErrConnectionClosed

	ErrNotText = errors.New("body is not a valid UTF-8 text")
	ErrDecode  = errors.New("cannot decode body")
	ErrSchema  = errors.New("body violates the schema")
)
