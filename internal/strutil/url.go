package strutil

import (
	"strings"

	"github.com/indigo-web/fetch/internal/hexconv"
)

// unreserved marks the RFC 3986 unreserved set, the only characters left as-is
// by AppendEscaped.
var unreserved = func() (table [256]bool) {
	for c := 'a'; c <= 'z'; c++ {
		table[c] = true
		table[c-'a'+'A'] = true
	}

	for c := '0'; c <= '9'; c++ {
		table[c] = true
	}

	for _, c := range []byte("-._~") {
		table[c] = true
	}

	return table
}()

// AppendEscaped appends the percent-encoded str to dst. If form is set, spaces are
// encoded as plus signs, as application/x-www-form-urlencoded demands.
func AppendEscaped(dst []byte, str string, form bool) []byte {
	for i := 0; i < len(str); i++ {
		switch c := str[i]; {
		case unreserved[c]:
			dst = append(dst, c)
		case c == ' ' && form:
			dst = append(dst, '+')
		default:
			dst = append(dst, '%', hexconv.Upper[c>>4], hexconv.Upper[c&0xF])
		}
	}

	return dst
}

// URLDecode decodes an urlencoded string and tells whether the string was properly formed.
// Plus signs are decoded into spaces.
func URLDecode(str string) (string, bool) {
	var b strings.Builder
	b.Grow(len(str))
	s := str

	for len(s) > 0 {
		percent := strings.IndexAny(s, "%+")
		if percent == -1 {
			break
		}

		b.WriteString(s[:percent])
		if s[percent] == '+' {
			b.WriteByte(' ')
			s = s[percent+1:]
			continue
		}

		s = s[percent+1:]
		if len(s) < 2 {
			return "", false
		}

		x, y := hexconv.Halfbyte[s[0]], hexconv.Halfbyte[s[1]]
		if x|y == 0xFF {
			return "", false
		}

		b.WriteByte((x << 4) | y)
		s = s[2:]
	}

	b.WriteString(s)

	return b.String(), true
}
