package http1

import (
	"bytes"
	"errors"
	"io"
	"strings"

	"github.com/indigo-web/chunkedbody"
	"github.com/indigo-web/fetch/config"
	"github.com/indigo-web/fetch/http/method"
	"github.com/indigo-web/fetch/http/proto"
	"github.com/indigo-web/fetch/http/status"
	"github.com/indigo-web/fetch/internal/buffer"
	"github.com/indigo-web/fetch/internal/response"
	"github.com/indigo-web/fetch/internal/strutil"
	"github.com/indigo-web/utils/strcomp"
	"github.com/indigo-web/utils/uf"
)

var (
	ErrBadStatusLine    = errors.New("malformed status line")
	ErrBadHeader        = errors.New("malformed header field")
	ErrBadContentLength = errors.New("malformed Content-Length")
	ErrBadChunk         = errors.New("malformed chunked body")
	ErrTooLarge         = errors.New("response exceeds configured limits")
	ErrConnectionClosed = errors.New("connection closed before the response was complete")
)

// Stage is the coarse progress of a response being parsed.
type Stage uint8

const (
	AwaitingStatusLine Stage = iota
	AwaitingHeaders
	AwaitingBody
	Complete
)

func (s Stage) String() string {
	switch s {
	case AwaitingStatusLine:
		return "awaiting status line"
	case AwaitingHeaders:
		return "awaiting headers"
	case AwaitingBody:
		return "awaiting body"
	case Complete:
		return "complete"
	default:
		return "unknown"
	}
}

// BodyMode tells how the end of the response body is determined.
type BodyMode uint8

const (
	NoBody BodyMode = iota
	ContentLength
	Chunked
	UntilClose
)

func (b BodyMode) String() string {
	switch b {
	case NoBody:
		return "none"
	case ContentLength:
		return "content-length"
	case Chunked:
		return "chunked"
	case UntilClose:
		return "until-close"
	default:
		return "unknown"
	}
}

type parserState uint8

const (
	eProto parserState = iota + 1
	eCode
	eReason
	eHeaderKey
	eHeaderKeyCR
	eHeaderValue
	eBody
	eComplete
)

// Parser is a resumable parser of a single response. It may be fed with arbitrarily
// fragmented data, the result doesn't depend on how the input was split.
type Parser struct {
	state         parserState
	cfg           *config.Config
	method        method.Method
	response      *response.Fields
	statusLine    *buffer.Buffer
	headers       *buffer.Buffer
	chunked       *chunkedbody.Parser
	key           string
	headersNumber int
	codeDigits    int
	code          status.Code
	mode          BodyMode
	hasLength     bool
	isChunked     bool
	hasTrailer    bool
	contentLength uint64
	received      uint64
	body          []byte
}

func NewParser(cfg *config.Config) *Parser {
	return &Parser{
		cfg:        cfg,
		state:      eProto,
		response:   response.New(cfg.Headers.Number.Default),
		statusLine: buffer.New(cfg.StatusLine.Size.Default, cfg.StatusLine.Size.Maximal),
		headers:    buffer.New(cfg.Headers.Space.Default, cfg.Headers.Space.Maximal),
		chunked:    chunkedbody.NewParser(chunkedbody.DefaultSettings()),
	}
}

// Init prepares the parser for a response to a request with the given method. Fields
// returned by Response before are left untouched.
func (p *Parser) Init(m method.Method) {
	p.method = m
	p.response = response.New(p.cfg.Headers.Number.Default)
	p.chunked = chunkedbody.NewParser(chunkedbody.DefaultSettings())
	p.reset()
}

// Response returns the fields being filled. They are complete only after Parse or EOF
// reported so.
func (p *Parser) Response() *response.Fields {
	return p.response
}

func (p *Parser) Stage() Stage {
	switch p.state {
	case eProto, eCode, eReason:
		return AwaitingStatusLine
	case eHeaderKey, eHeaderKeyCR, eHeaderValue:
		return AwaitingHeaders
	case eBody:
		return AwaitingBody
	default:
		return Complete
	}
}

// Mode returns the body mode. It is meaningful only after the headers are parsed.
func (p *Parser) Mode() BodyMode {
	return p.mode
}

// Parse consumes the data. Done is set when the response is complete or an error occurred,
// in the former case extra contains the bytes following the response.
func (p *Parser) Parse(data []byte) (done bool, extra []byte, err error) {
	statusLine := p.statusLine
	headers := p.headers
	resp := p.response

	switch p.state {
	case eProto:
		goto protocol
	case eCode:
		goto code
	case eReason:
		goto reason
	case eHeaderKey:
		goto headerKey
	case eHeaderKeyCR:
		goto headerKeyCR
	case eHeaderValue:
		goto headerValue
	case eBody:
		goto body
	case eComplete:
		return true, data, nil
	default:
		panic("unreachable code")
	}

protocol:
	{
		sp := bytes.IndexByte(data, ' ')
		if sp == -1 {
			if !statusLine.Append(data) {
				return true, nil, ErrTooLarge
			}

			p.state = eProto
			return false, nil, nil
		}

		if !statusLine.Append(data[:sp]) {
			return true, nil, ErrTooLarge
		}

		resp.Protocol = proto.FromBytes(statusLine.Finish())
		if resp.Protocol == proto.Unknown {
			return true, nil, ErrBadStatusLine
		}

		data = data[sp+1:]
		p.code, p.codeDigits = 0, 0
		goto code
	}

code:
	for i, char := range data {
		switch {
		case char >= '0' && char <= '9':
			if p.codeDigits++; p.codeDigits > 3 {
				return true, nil, ErrBadStatusLine
			}

			p.code = p.code*10 + status.Code(char-'0')
		case char == ' ' || char == '\r' || char == '\n':
			if p.codeDigits != 3 || !p.code.Valid() {
				return true, nil, ErrBadStatusLine
			}

			resp.Code = p.code
			if char == ' ' {
				i++
			}

			data = data[i:]
			goto reason
		default:
			return true, nil, ErrBadStatusLine
		}
	}

	p.state = eCode
	return false, nil, nil

reason:
	{
		lf := bytes.IndexByte(data, '\n')
		if lf == -1 {
			if !statusLine.Append(data) {
				return true, nil, ErrTooLarge
			}

			p.state = eReason
			return false, nil, nil
		}

		if !statusLine.Append(data[:lf]) {
			return true, nil, ErrTooLarge
		}

		resp.Reason = strings.Clone(strutil.StripWS(uf.B2S(trimCR(statusLine.Finish()))))
		data = data[lf+1:]
		goto headerKey
	}

headerKey:
	{
		if headers.SegmentLength() == 0 {
			if len(data) == 0 {
				p.state = eHeaderKey
				return false, nil, nil
			}

			switch data[0] {
			case '\n':
				data = data[1:]
				goto headersCompleted
			case '\r':
				data = data[1:]
				goto headerKeyCR
			}
		}

		colon := bytes.IndexByte(data, ':')
		if lf := bytes.IndexByte(data, '\n'); lf != -1 && (colon == -1 || lf < colon) {
			return true, nil, ErrBadHeader
		}

		if colon == -1 {
			if !headers.Append(data) {
				return true, nil, ErrTooLarge
			}

			p.state = eHeaderKey
			return false, nil, nil
		}

		if !headers.Append(data[:colon]) {
			return true, nil, ErrTooLarge
		}

		key := uf.B2S(headers.Finish())
		if !strutil.IsToken(key) {
			return true, nil, ErrBadHeader
		}

		if p.headersNumber++; p.headersNumber > p.cfg.Headers.Number.Maximal {
			return true, nil, ErrTooLarge
		}

		p.key = strings.Clone(key)
		data = data[colon+1:]
		goto headerValue
	}

headerKeyCR:
	if len(data) == 0 {
		p.state = eHeaderKeyCR
		return false, nil, nil
	}

	if data[0] != '\n' {
		return true, nil, ErrBadHeader
	}

	data = data[1:]
	goto headersCompleted

headerValue:
	{
		lf := bytes.IndexByte(data, '\n')
		if lf == -1 {
			if !headers.Append(data) {
				return true, nil, ErrTooLarge
			}

			p.state = eHeaderValue
			return false, nil, nil
		}

		if !headers.Append(data[:lf]) {
			return true, nil, ErrTooLarge
		}

		data = data[lf+1:]
		value := strutil.StripWS(uf.B2S(trimCR(headers.Finish())))
		if !isFieldContent(value) {
			return true, nil, ErrBadHeader
		}

		value = strings.Clone(value)
		resp.Headers.Add(p.key, value)

		if err = p.onHeader(p.key, value); err != nil {
			return true, nil, err
		}

		goto headerKey
	}

headersCompleted:
	if resp.Code.Class() == status.Informational && resp.Code != status.SwitchingProtocols {
		// interim responses carry nothing the caller is waiting for
		resp.Reset()
		p.reset()
		goto protocol
	}

	if err = p.chooseMode(); err != nil {
		return true, nil, err
	}

	if p.mode == NoBody || (p.mode == ContentLength && p.contentLength == 0) {
		goto complete
	}

	// fallthrough to body

body:
	switch p.mode {
	case ContentLength:
		n := uint64(len(data))
		if rest := p.contentLength - p.received; n > rest {
			n = rest
		}

		p.body = append(p.body, data[:n]...)
		p.received += n
		data = data[n:]

		if p.received == p.contentLength {
			goto complete
		}
	case Chunked:
		for len(data) > 0 {
			chunk, rest, err := p.chunked.Parse(data, p.hasTrailer)
			switch err {
			case nil:
			case io.EOF:
				if !p.grow(chunk) {
					return true, nil, ErrTooLarge
				}

				data = rest
				goto complete
			default:
				return true, nil, errors.Join(ErrBadChunk, err)
			}

			if !p.grow(chunk) {
				return true, nil, ErrTooLarge
			}

			data = rest
		}
	case UntilClose:
		if !p.grow(data) {
			return true, nil, ErrTooLarge
		}
	}

	p.state = eBody
	return false, nil, nil

complete:
	p.complete()
	return true, data, nil
}

// EOF notifies the parser that the connection was closed by the peer. Only a response
// delimited by the connection closure can be completed this way.
func (p *Parser) EOF() error {
	switch {
	case p.state == eComplete:
		return nil
	case p.state == eBody && p.mode == UntilClose:
		p.complete()
		return nil
	default:
		return ErrConnectionClosed
	}
}

func (p *Parser) onHeader(key, value string) error {
	switch len(key) {
	case 7:
		if strcomp.EqualFold(key, "Trailer") {
			p.hasTrailer = true
		}
	case 14:
		if strcomp.EqualFold(key, "Content-Length") {
			length, ok := parseContentLength(value)
			if !ok || (p.hasLength && length != p.contentLength) {
				return ErrBadContentLength
			}

			p.hasLength = true
			p.contentLength = length
		}
	case 17:
		if strcomp.EqualFold(key, "Transfer-Encoding") {
			// the final encoding of a list, possibly spread over multiple fields, decides
			p.isChunked = strcomp.EqualFold(lastToken(value), "chunked")
		}
	}

	return nil
}

func (p *Parser) chooseMode() error {
	switch {
	case p.method == method.HEAD || !p.response.Code.HasBody():
		p.mode = NoBody
	case p.isChunked:
		p.mode = Chunked
		p.body = make([]byte, 0, p.cfg.Body.Buffer.Default)
	case p.hasLength:
		if p.contentLength > p.cfg.Body.MaxSize {
			return ErrTooLarge
		}

		p.mode = ContentLength
		p.body = make([]byte, 0, min(p.contentLength, uint64(p.cfg.Body.Buffer.Maximal)))
	default:
		p.mode = UntilClose
		p.body = make([]byte, 0, p.cfg.Body.Buffer.Default)
	}

	return nil
}

func (p *Parser) grow(data []byte) bool {
	if uint64(len(p.body))+uint64(len(data)) > p.cfg.Body.MaxSize {
		return false
	}

	p.body = append(p.body, data...)
	return true
}

func (p *Parser) complete() {
	if len(p.body) > 0 {
		p.response.Body = p.body
	}

	p.body = nil
	p.state = eComplete
}

func (p *Parser) reset() {
	p.state = eProto
	p.statusLine.Clear()
	p.headers.Clear()
	p.key = ""
	p.headersNumber = 0
	p.codeDigits = 0
	p.code = 0
	p.mode = NoBody
	p.hasLength = false
	p.isChunked = false
	p.hasTrailer = false
	p.contentLength = 0
	p.received = 0
	p.body = nil
}

func parseContentLength(value string) (length uint64, ok bool) {
	if len(value) == 0 || len(value) > 19 {
		return 0, false
	}

	for i := 0; i < len(value); i++ {
		char := value[i]
		if char < '0' || char > '9' {
			return 0, false
		}

		length = length*10 + uint64(char-'0')
	}

	return length, true
}

func trimCR(line []byte) []byte {
	if len(line) > 0 && line[len(line)-1] == '\r' {
		return line[:len(line)-1]
	}

	return line
}

func lastToken(list string) string {
	if comma := strings.LastIndexByte(list, ','); comma != -1 {
		list = list[comma+1:]
	}

	return strutil.StripWS(list)
}

// isFieldContent permits obs-text, as servers in the wild still send it.
func isFieldContent(value string) bool {
	for i := 0; i < len(value); i++ {
		if c := value[i]; (c < 0x20 && c != '\t') || c == 0x7F {
			return false
		}
	}

	return true
}
