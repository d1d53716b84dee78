package httptest

import (
	"strconv"

	"github.com/indigo-web/fetch/kv"
)

// Response describes a response to be rendered into its wire form by a fake server.
type Response struct {
	Proto  string
	Code   int
	Reason string
	// Headers are written as-is, framing headers included.
	Headers []kv.Pair
	Body    string
	// Chunks, if set, are rendered as a chunked body instead of Body. The framing header
	// must be passed explicitly.
	Chunks []string
}

// Dump renders the response. Nothing is validated, so malformed responses can be
// produced as well.
func Dump(response Response) string {
	proto := response.Proto
	if len(proto) == 0 {
		proto = "HTTP/1.1"
	}

	buff := append([]byte(proto), ' ')
	buff = strconv.AppendInt(buff, int64(response.Code), 10)
	if len(response.Reason) > 0 {
		buff = space(buff)
		buff = append(buff, response.Reason...)
	}

	buff = crlf(buff)

	for _, h := range response.Headers {
		buff = header(buff, h)
	}

	buff = crlf(buff)

	if response.Chunks == nil {
		return string(append(buff, response.Body...))
	}

	for _, chunk := range response.Chunks {
		buff = strconv.AppendInt(buff, int64(len(chunk)), 16)
		buff = crlf(buff)
		buff = append(buff, chunk...)
		buff = crlf(buff)
	}

	return string(crlf(append(buff, '0', '\r', '\n')))
}

func space(b []byte) []byte {
	return append(b, ' ')
}

func crlf(b []byte) []byte {
	return append(b, '\r', '\n')
}

func header(b []byte, h kv.Pair) []byte {
	b = append(b, h.Key...)
	b = colonsp(b)
	b = append(b, h.Value...)

	return crlf(b)
}

func colonsp(b []byte) []byte {
	return append(b, ':', ' ')
}
