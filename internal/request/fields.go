package request

import (
	"github.com/indigo-web/fetch/http/method"
	"github.com/indigo-web/fetch/http/mime"
	"github.com/indigo-web/fetch/http/url"
	"github.com/indigo-web/fetch/kv"
)

type BodyKind uint8

const (
	NoBody BodyKind = iota
	RawBody
	JSONBody
	FormBody
)

// Fields are the request as it is going to be serialized. The builder owns them until the
// request is sent, the codec only reads them.
type Fields struct {
	Method method.Method
	// CustomMethod is the method token used when Method is method.Unknown.
	CustomMethod string
	URL          url.URL
	Headers      *kv.Storage
	Params       *kv.Storage
	BodyKind     BodyKind
	// Body holds either raw or already encoded JSON bytes.
	Body []byte
	Form *kv.Storage
}

func New(m method.Method, u url.URL) *Fields {
	return &Fields{
		Method:  m,
		URL:     u,
		Headers: kv.New(),
		Params:  kv.New(),
	}
}

// MethodToken returns the method as it appears on the request line.
func (f *Fields) MethodToken() string {
	if f.Method == method.Unknown {
		return f.CustomMethod
	}

	return f.Method.String()
}

// ContentType returns the media type implied by the body kind, if any.
func (f *Fields) ContentType() (mime.MIME, bool) {
	switch f.BodyKind {
	case JSONBody:
		return mime.JSON, true
	case FormBody:
		return mime.FormUrlencoded, true
	default:
		return "", false
	}
}
