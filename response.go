package fetch

import (
	"fmt"
	"slices"
	"strings"
	"unicode/utf8"

	"github.com/indigo-web/fetch/http/mime"
	"github.com/indigo-web/fetch/http/proto"
	"github.com/indigo-web/fetch/http/status"
	"github.com/indigo-web/fetch/internal/response"
	"github.com/indigo-web/fetch/kv"
	"github.com/santhosh-tekuri/jsonschema/v5"
	"github.com/tidwall/gjson"
)

// Response is a completely received response. It is immutable and safe for concurrent use.
type Response struct {
	fields *response.Fields
	codec  JSONCodec
}

func newResponse(fields *response.Fields, codec JSONCodec) *Response {
	return &Response{
		fields: fields,
		codec:  codec,
	}
}

func (r *Response) StatusCode() status.Code {
	return r.fields.Code
}

// Status returns the reason phrase. If the server omitted it, the canonical one is used.
func (r *Response) Status() status.Status {
	if len(r.fields.Reason) == 0 {
		return status.Text(r.fields.Code)
	}

	return r.fields.Reason
}

func (r *Response) Protocol() proto.Protocol {
	return r.fields.Protocol
}

// Headers returns a copy of all the headers in the order they were received.
func (r *Response) Headers() []kv.Pair {
	return slices.Clone(r.fields.Headers.Expose())
}

// Header returns the first value of the header. Names are case-insensitive.
func (r *Response) Header(name string) string {
	return r.fields.Headers.Value(name)
}

// HeaderValues returns all the values of the header in the order they were received.
func (r *Response) HeaderValues(name string) []string {
	return slices.Collect(r.fields.Headers.Values(name))
}

// Body returns the body. The slice must not be modified.
func (r *Response) Body() []byte {
	return r.fields.Body
}

// Text returns the body as a string, failing if it isn't valid UTF-8.
func (r *Response) Text() (string, error) {
	if !utf8.Valid(r.fields.Body) {
		return "", ErrNotText
	}

	return string(r.fields.Body), nil
}

// JSON decodes the body into v.
func (r *Response) JSON(v any) error {
	if err := r.codec.Unmarshal(r.fields.Body, v); err != nil {
		return fmt.Errorf("%w: %w", ErrDecode, err)
	}

	return nil
}

// DecodeJSON decodes the response body into a value of type T.
func DecodeJSON[T any](r *Response) (T, error) {
	var v T
	err := r.JSON(&v)
	return v, err
}

// IsSuccess reports whether the status code is 2xx.
func (r *Response) IsSuccess() bool {
	return r.fields.Code.IsSuccess()
}

// ContentType returns the media type of the body without parameters, lower-cased.
func (r *Response) ContentType() mime.MIME {
	return mime.Extract(r.Header("Content-Type"))
}

// Query looks up a value in the JSON body by a gjson path, e.g. "items.0.name".
func (r *Response) Query(path string) gjson.Result {
	return gjson.GetBytes(r.fields.Body, path)
}

// ValidateSchema validates the JSON body against the JSON Schema document.
func (r *Response) ValidateSchema(schema string) error {
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("schema.json", strings.NewReader(schema)); err != nil {
		return fmt.Errorf("invalid schema: %w", err)
	}

	compiled, err := compiler.Compile("schema.json")
	if err != nil {
		return fmt.Errorf("invalid schema: %w", err)
	}

	var document any
	if err = r.JSON(&document); err != nil {
		return err
	}

	if err = compiled.Validate(document); err != nil {
		return fmt.Errorf("%w: %w", ErrSchema, err)
	}

	return nil
}
