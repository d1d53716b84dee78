package fetch

import (
	"context"
	"fmt"

	"github.com/indigo-web/fetch/config"
	"github.com/indigo-web/fetch/http/method"
	"github.com/indigo-web/fetch/http/url"
	"github.com/indigo-web/fetch/internal/http1"
	"github.com/indigo-web/fetch/internal/request"
	"github.com/indigo-web/fetch/internal/strutil"
	"github.com/indigo-web/fetch/kv"
	"github.com/indigo-web/fetch/transport"
)

// Request is a builder of a single request. None of its methods perform I/O or return
// errors: the first validation failure is kept and reported once the request is sent.
// A request can be sent only once.
type Request struct {
	fields      *request.Fields
	codec       JSONCodec
	customCodec bool
	err         error
	sent        bool
}

// New parses the URL and returns a request builder. The URL must be absolute, with http
// or https scheme.
func New(m method.Method, rawURL string) *Request {
	u, err := url.Parse(rawURL)
	r := newRequest(m, u)
	if err != nil {
		r.fail(fmt.Errorf("%w %q: %w", ErrInvalidURL, rawURL, err))
	}

	return r
}

// NewURL returns a request builder for an already parsed URL. Zero port is replaced
// with the default one for the scheme.
func NewURL(m method.Method, u url.URL) *Request {
	if u.Port == 0 {
		u.Port = url.DefaultPort(u.Scheme)
	}

	r := newRequest(m, u)
	if err := u.Validate(); err != nil {
		r.fail(fmt.Errorf("%w: %w", ErrInvalidURL, err))
	}

	return r
}

func newRequest(m method.Method, u url.URL) *Request {
	r := &Request{
		fields: request.New(m, u),
		codec:  defaultCodec,
	}

	if m == method.Unknown {
		r.fail(ErrInvalidMethod)
	}

	return r
}

// Custom returns a request builder with an extension method. Standard methods passed
// this way are recognised as such.
func Custom(token, rawURL string) *Request {
	if m := method.Parse(token); m != method.Unknown {
		return New(m, rawURL)
	}

	u, err := url.Parse(rawURL)
	r := &Request{
		fields: request.New(method.Unknown, u),
		codec:  defaultCodec,
	}
	r.fields.CustomMethod = token

	if !strutil.IsToken(token) {
		r.fail(fmt.Errorf("%w: %q", ErrInvalidMethod, token))
	}

	if err != nil {
		r.fail(fmt.Errorf("%w %q: %w", ErrInvalidURL, rawURL, err))
	}

	return r
}

func Get(rawURL string) *Request {
	return New(method.GET, rawURL)
}

func Head(rawURL string) *Request {
	return New(method.HEAD, rawURL)
}

func Post(rawURL string) *Request {
	return New(method.POST, rawURL)
}

func Put(rawURL string) *Request {
	return New(method.PUT, rawURL)
}

func Patch(rawURL string) *Request {
	return New(method.PATCH, rawURL)
}

func Delete(rawURL string) *Request {
	return New(method.DELETE, rawURL)
}

// Header appends a header. Repeated names are sent in the order they were added.
func (r *Request) Header(name, value string) *Request {
	if r.validHeader(name, value) {
		r.fields.Headers.Add(name, value)
	}

	return r
}

// SetHeader replaces all the values of the header by the single one. Empty value removes
// the header entirely.
func (r *Request) SetHeader(name, value string) *Request {
	if !r.validHeader(name, value) {
		return r
	}

	if len(value) == 0 {
		r.fields.Headers.Delete(name)
	} else {
		r.fields.Headers.Set(name, value)
	}

	return r
}

// Param appends a query parameter. Keys and values are percent-encoded when the request
// is serialized, so they must be passed as-is.
func (r *Request) Param(key, value string) *Request {
	r.fields.Params.Add(key, value)
	return r
}

// Body sets a raw body, replacing any previously set one.
func (r *Request) Body(raw []byte) *Request {
	r.setBody(request.RawBody, raw)
	return r
}

// Form sets an application/x-www-form-urlencoded body, replacing any previously set one.
func (r *Request) Form(pairs ...kv.Pair) *Request {
	r.setBody(request.FormBody, nil)
	r.fields.Form = kv.NewFromPairs(pairs...)
	return r
}

// FormKV appends a pair to the form body, starting a new form if the body is of
// another kind.
func (r *Request) FormKV(key, value string) *Request {
	if r.fields.BodyKind != request.FormBody {
		r.Form()
	}

	r.fields.Form.Add(key, value)
	return r
}

// JSON serializes the value into the body immediately, using the codec set at the moment.
func (r *Request) JSON(v any) *Request {
	data, err := r.codec.Marshal(v)
	if err != nil {
		r.fail(fmt.Errorf("%w: %w", ErrSerialization, err))
		return r
	}

	r.setBody(request.JSONBody, data)
	return r
}

// Codec replaces the JSON codec used by JSON and by the response decoding helpers. It
// takes precedence over the session's codec.
func (r *Request) Codec(codec JSONCodec) *Request {
	r.codec, r.customCodec = codec, true
	return r
}

// Err returns the first validation failure, if any.
func (r *Request) Err() error {
	return r.err
}

// Build serializes the request with default headers from the default config. It
// consumes the request just like sending does.
func (r *Request) Build() ([]byte, error) {
	fields, _, err := r.finalize()
	if err != nil {
		return nil, err
	}

	data, err := http1.NewSerializer(config.Default().Headers.Default).Serialize(nil, fields)
	if err != nil {
		return nil, newError(KindBuild, err)
	}

	return data, nil
}

// Send sends the request through a fresh session over the reactor.
func (r *Request) Send(ctx context.Context, reactor transport.Reactor) *Future {
	return r.SendWith(ctx, NewSession(reactor))
}

// SendWith sends the request through the session. Build failures complete the future
// before any reactor call is made.
func (r *Request) SendWith(ctx context.Context, session *Session) *Future {
	fields, codec, err := r.finalize()
	if err != nil {
		return failedFuture(err)
	}

	return session.send(ctx, fields, codec)
}

// finalize returns the codec only if it was set explicitly.
func (r *Request) finalize() (*request.Fields, JSONCodec, error) {
	if r.sent {
		return nil, nil, newError(KindBuild, ErrAlreadySent)
	}

	r.sent = true
	if r.err != nil {
		return nil, nil, newError(KindBuild, r.err)
	}

	if !r.customCodec {
		return r.fields, nil, nil
	}

	return r.fields, r.codec, nil
}

func (r *Request) setBody(kind request.BodyKind, body []byte) {
	f := r.fields
	f.BodyKind, f.Body, f.Form = kind, body, nil

	if kind == request.JSONBody || kind == request.FormBody {
		// the body kind dictates the content type
		f.Headers.Delete("Content-Type")
	}
}

func (r *Request) validHeader(name, value string) bool {
	if !strutil.IsToken(name) || !strutil.IsFieldValue(value) {
		r.fail(fmt.Errorf("%w: %q", ErrInvalidHeader, name))
		return false
	}

	return true
}

func (r *Request) fail(err error) {
	if r.err == nil {
		r.err = err
	}
}
