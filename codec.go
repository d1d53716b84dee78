package fetch

import jsoniter "github.com/json-iterator/go"

// JSONCodec serializes request bodies and decodes response bodies.
type JSONCodec interface {
	Marshal(v any) ([]byte, error)
	Unmarshal(data []byte, v any) error
}

var defaultCodec JSONCodec = jsoniter.ConfigCompatibleWithStandardLibrary
