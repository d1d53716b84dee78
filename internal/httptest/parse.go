package httptest

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/indigo-web/fetch/kv"
)

// Request is a request as seen by a server: everything is kept exactly as received.
type Request struct {
	Method  string
	Target  string
	Proto   string
	Headers *kv.Storage
	Body    string
}

// Path returns the target without the query.
func (r Request) Path() string {
	path, _, _ := strings.Cut(r.Target, "?")
	return path
}

// Query returns the raw query of the target.
func (r Request) Query() string {
	_, query, _ := strings.Cut(r.Target, "?")
	return query
}

// Parse strictly parses a single serialized request. Unlike the client's parser it
// rejects anything a careful server would, including trailing garbage.
func Parse(raw string) (request Request, err error) {
	var found bool
	request.Headers = kv.New()

	var requestLine string
	requestLine, raw, found = strings.Cut(raw, "\r\n")
	if !found {
		return request, fmt.Errorf("bad request line: no breaking CRLF")
	}

	fields := strings.Split(requestLine, " ")
	if len(fields) != 3 {
		return request, fmt.Errorf("bad request line %q", requestLine)
	}

	request.Method, request.Target, request.Proto = fields[0], fields[1], fields[2]

	for {
		var headerLine string
		headerLine, raw, found = strings.Cut(raw, "\r\n")
		if !found {
			return request, fmt.Errorf("bad header line %s: no breaking CRLF", headerLine)
		}

		if len(headerLine) == 0 {
			break
		}

		key, value, err := parseHeaderLine(headerLine)
		if err != nil {
			return request, err
		}

		request.Headers.Add(key, value)
	}

	request.Body, err = processBody(request, raw)

	return request, err
}

func parseHeaderLine(line string) (key, value string, err error) {
	var found bool
	key, value, found = strings.Cut(line, ": ")
	if !found {
		return "", "", fmt.Errorf("bad header %s: no value", line)
	}

	if len(key) == 0 {
		return "", "", fmt.Errorf("bad header %s: empty key", line)
	}

	return key, value, nil
}

func processBody(request Request, data string) (string, error) {
	if request.Headers.Has("Transfer-Encoding") {
		return "", fmt.Errorf("bad request: unexpected Transfer-Encoding")
	}

	var contentLengths []string
	for value := range request.Headers.Values("Content-Length") {
		contentLengths = append(contentLengths, value)
	}

	switch len(contentLengths) {
	case 0:
		if len(data) == 0 {
			return "", nil
		}

		return "", fmt.Errorf("bad request: body without Content-Length")
	case 1:
		length, err := strconv.Atoi(contentLengths[0])
		if err != nil {
			return "", err
		}

		if len(data) != length {
			return "", fmt.Errorf("bad request: declared %d bytes of body, got %d", length, len(data))
		}

		return data, nil
	default:
		return "", fmt.Errorf(
			"bad request: too many content-lengths: %s", strings.Join(contentLengths, ", "),
		)
	}
}
