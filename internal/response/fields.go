package response

import (
	"github.com/indigo-web/fetch/http/proto"
	"github.com/indigo-web/fetch/http/status"
	"github.com/indigo-web/fetch/kv"
)

// Fields is what the parser fills while consuming a response. All the strings are owned,
// none of them refers to the parser's buffers.
type Fields struct {
	Protocol proto.Protocol
	Code     status.Code
	Reason   status.Status
	Headers  *kv.Storage
	Body     []byte
}

func New(headersPrealloc int) *Fields {
	return &Fields{
		Headers: kv.NewPrealloc(headersPrealloc),
	}
}

// Reset prepares the fields for the next (e.g. final after an interim) response. The headers
// storage is replaced rather than cleared, as it may already be shared.
func (f *Fields) Reset() {
	f.Protocol = proto.Unknown
	f.Code = 0
	f.Reason = ""
	f.Headers = kv.NewPrealloc(f.Headers.Len())
	f.Body = nil
}
