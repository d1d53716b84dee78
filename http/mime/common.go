package mime

import (
	"strings"

	"github.com/indigo-web/fetch/internal/strutil"
)

type MIME = string

const (
	OctetStream    MIME = "application/octet-stream"
	Plain          MIME = "text/plain"
	HTML           MIME = "text/html"
	XML            MIME = "text/xml"
	JSON           MIME = "application/json"
	YAML           MIME = "application/yaml"
	FormUrlencoded MIME = "application/x-www-form-urlencoded"
	Multipart      MIME = "multipart/form-data"
)

// Extract returns the media type of a Content-Type value with parameters and
// surrounding whitespaces stripped, lower-cased.
func Extract(contentType string) MIME {
	value, _ := strutil.CutHeader(contentType)
	return strings.ToLower(strutil.StripWS(value))
}

// Complies returns whether two MIMEs are compatible. Empty MIME is
// considered compatible with any other MIME
func Complies(mime MIME, with string) bool {
	with = Extract(with)
	return len(with) == 0 || with == mime
}
