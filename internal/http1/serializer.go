package http1

import (
	"errors"
	"slices"
	"strconv"
	"strings"

	"github.com/indigo-web/fetch/http/method"
	"github.com/indigo-web/fetch/internal/request"
	"github.com/indigo-web/fetch/internal/strutil"
	"github.com/indigo-web/fetch/kv"
	"github.com/indigo-web/utils/strcomp"
)

var (
	ErrInvalidHeader = errors.New("invalid header field")
	ErrInvalidMethod = errors.New("invalid method token")
)

const crlf = "\r\n"

type defaultHeader struct {
	key, value string
}

// Serializer renders requests into their HTTP/1.1 wire form. It holds no per-request state,
// so a single instance may be used by any number of goroutines at once.
type Serializer struct {
	defaults []defaultHeader
}

func NewSerializer(defaults map[string]string) *Serializer {
	return &Serializer{
		defaults: preprocessDefaultHeaders(defaults),
	}
}

func preprocessDefaultHeaders(headers map[string]string) []defaultHeader {
	processed := make([]defaultHeader, 0, len(headers))
	for key, value := range headers {
		if strcomp.EqualFold(key, "Host") || isFraming(key) {
			continue
		}

		processed = append(processed, defaultHeader{key, value})
	}

	// maps are unordered, but the output must be stable
	slices.SortFunc(processed, func(a, b defaultHeader) int {
		return strings.Compare(a.key, b.key)
	})

	return processed
}

// Serialize appends the request to dst. Caller-supplied Content-Length and Transfer-Encoding
// are never trusted: the body is always delimited by a computed Content-Length.
func (s *Serializer) Serialize(dst []byte, req *request.Fields) ([]byte, error) {
	token := req.MethodToken()
	if !strutil.IsToken(token) {
		return dst, ErrInvalidMethod
	}

	dst = append(dst, token...)
	dst = append(dst, ' ')
	dst = appendRequestTarget(dst, req)
	dst = append(dst, " HTTP/1.1"+crlf...)

	headers := req.Headers
	if !headers.Has("Host") {
		dst = appendHeader(dst, "Host", req.URL.Authority())
	}

	contentType, hasContentType := req.ContentType()

	for key, value := range headers.Pairs() {
		if !strutil.IsToken(key) || !strutil.IsFieldValue(value) {
			return dst, ErrInvalidHeader
		}

		switch {
		case isFraming(key):
			continue
		case hasContentType && strcomp.EqualFold(key, "Content-Type"):
			continue
		}

		dst = appendHeader(dst, key, value)
	}

	for _, header := range s.defaults {
		if headers.Has(header.key) || (hasContentType && strcomp.EqualFold(header.key, "Content-Type")) {
			continue
		}

		dst = appendHeader(dst, header.key, header.value)
	}

	if hasContentType {
		dst = appendHeader(dst, "Content-Type", contentType)
	}

	body := encodeBody(req)
	if len(body) > 0 || req.BodyKind != request.NoBody || req.Method.ExpectsBody() {
		dst = append(dst, "Content-Length: "...)
		dst = strconv.AppendInt(dst, int64(len(body)), 10)
		dst = append(dst, crlf...)
	}

	dst = append(dst, crlf...)

	return append(dst, body...), nil
}

func appendRequestTarget(dst []byte, req *request.Fields) []byte {
	if len(req.URL.Path) == 0 {
		dst = append(dst, '/')
	} else {
		dst = append(dst, req.URL.Path...)
	}

	query := req.URL.RawQuery
	if len(query) > 0 {
		dst = append(dst, '?')
		dst = append(dst, query...)
	}

	if req.Params.Empty() {
		return dst
	}

	if len(query) > 0 {
		dst = append(dst, '&')
	} else {
		dst = append(dst, '?')
	}

	return appendPairs(dst, req.Params, false)
}

func appendPairs(dst []byte, pairs *kv.Storage, form bool) []byte {
	first := true
	for key, value := range pairs.Pairs() {
		if !first {
			dst = append(dst, '&')
		}

		first = false
		dst = strutil.AppendEscaped(dst, key, form)
		dst = append(dst, '=')
		dst = strutil.AppendEscaped(dst, value, form)
	}

	return dst
}

func encodeBody(req *request.Fields) []byte {
	switch req.BodyKind {
	case request.RawBody, request.JSONBody:
		return req.Body
	case request.FormBody:
		if req.Form == nil {
			return nil
		}

		return appendPairs(nil, req.Form, true)
	default:
		return nil
	}
}

func appendHeader(dst []byte, key, value string) []byte {
	dst = append(dst, key...)
	dst = append(dst, ": "...)
	dst = append(dst, value...)
	return append(dst, crlf...)
}

// isFraming reports headers delimiting the message body, which are always computed.
func isFraming(key string) bool {
	return strcomp.EqualFold(key, "Content-Length") || strcomp.EqualFold(key, "Transfer-Encoding")
}
