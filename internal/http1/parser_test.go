package http1

import (
	"fmt"
	"slices"
	"strings"
	"testing"

	"github.com/dchest/uniuri"
	"github.com/indigo-web/fetch/config"
	"github.com/indigo-web/fetch/http/method"
	"github.com/indigo-web/fetch/http/proto"
	"github.com/indigo-web/fetch/http/status"
	"github.com/indigo-web/fetch/internal/response"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func getParser(cfg *config.Config, m method.Method) *Parser {
	p := NewParser(cfg)
	p.Init(m)

	return p
}

func disperse(data []byte, n int) (parts [][]byte) {
	for len(data) > 0 {
		end := min(len(data), n)
		part := data[:end]
		parts = append(parts, part)
		data = data[end:]
	}

	return parts
}

// feed passes the parts one by one until the parser is done. The returned extra also
// includes all the parts that weren't fed.
func feed(p *Parser, parts [][]byte) (done bool, extra []byte, err error) {
	for i, part := range parts {
		done, extra, err = p.Parse(part)
		if err != nil {
			return done, nil, err
		}

		if done {
			extra = slices.Clone(extra)
			for _, rest := range parts[i+1:] {
				extra = append(extra, rest...)
			}

			return true, extra, nil
		}
	}

	return false, nil, nil
}

func parseWhole(t *testing.T, cfg *config.Config, m method.Method, raw string) (*response.Fields, []byte) {
	p := getParser(cfg, m)
	done, extra, err := p.Parse([]byte(raw))
	require.NoError(t, err)
	require.True(t, done)

	return p.Response(), extra
}

func collectValues(resp *response.Fields, key string) []string {
	return slices.Collect(resp.Headers.Values(key))
}

func TestParser(t *testing.T) {
	cfg := config.Default()

	t.Run("content-length", func(t *testing.T) {
		resp, extra := parseWhole(t, cfg, method.GET,
			"HTTP/1.1 200 OK\r\nContent-Length: 5\r\nServer: indigo\r\n\r\nhello",
		)
		require.Empty(t, extra)
		require.Equal(t, proto.HTTP11, resp.Protocol)
		require.Equal(t, status.OK, resp.Code)
		require.Equal(t, "OK", resp.Reason)
		require.Equal(t, "indigo", resp.Headers.Value("server"))
		require.Equal(t, "hello", string(resp.Body))
	})

	t.Run("content-length governs over trailing bytes", func(t *testing.T) {
		resp, extra := parseWhole(t, cfg, method.GET,
			"HTTP/1.1 200 OK\r\nContent-Length: 5\r\n\r\nhello world",
		)
		require.Equal(t, "hello", string(resp.Body))
		require.Equal(t, " world", string(extra))
	})

	t.Run("chunked", func(t *testing.T) {
		resp, extra := parseWhole(t, cfg, method.GET,
			"HTTP/1.1 200 OK\r\nTransfer-Encoding: chunked\r\n\r\n3\r\nfoo\r\n0\r\n\r\n",
		)
		require.Empty(t, extra)
		require.Equal(t, "foo", string(resp.Body))
	})

	t.Run("chunked wins over content-length", func(t *testing.T) {
		resp, _ := parseWhole(t, cfg, method.GET,
			"HTTP/1.1 200 OK\r\nContent-Length: 100\r\nTransfer-Encoding: gzip, chunked\r\n\r\n"+
				"5\r\nhello\r\n6\r\n world\r\n0\r\n\r\n",
		)
		require.Equal(t, "hello world", string(resp.Body))
	})

	t.Run("duplicate headers keep the order", func(t *testing.T) {
		resp, _ := parseWhole(t, cfg, method.GET,
			"HTTP/1.1 204 No Content\r\nX-Test: a\r\nOther: x\r\nx-test: b\r\nX-TEST: c\r\n\r\n",
		)
		require.Equal(t, []string{"a", "b", "c"}, collectValues(resp, "X-Test"))
		require.Equal(t, 4, resp.Headers.Len())
	})

	t.Run("header values are trimmed", func(t *testing.T) {
		resp, _ := parseWhole(t, cfg, method.GET,
			"HTTP/1.1 204 No Content\r\nHello:   World \t\r\nEmpty:\r\n\r\n",
		)
		require.Equal(t, "World", resp.Headers.Value("hello"))
		value, found := resp.Headers.Get("empty")
		require.True(t, found)
		require.Empty(t, value)
	})

	t.Run("bare LF line endings", func(t *testing.T) {
		resp, _ := parseWhole(t, cfg, method.GET,
			"HTTP/1.0 200 OK\nContent-Length: 2\nA: b\n\nok",
		)
		require.Equal(t, proto.HTTP10, resp.Protocol)
		require.Equal(t, "b", resp.Headers.Value("a"))
		require.Equal(t, "ok", string(resp.Body))
	})

	t.Run("no reason phrase", func(t *testing.T) {
		resp, _ := parseWhole(t, cfg, method.GET, "HTTP/1.1 404\r\nContent-Length: 0\r\n\r\n")
		require.Equal(t, status.NotFound, resp.Code)
		require.Empty(t, resp.Reason)
		require.Empty(t, resp.Body)
	})

	t.Run("reason phrase with spaces", func(t *testing.T) {
		resp, _ := parseWhole(t, cfg, method.GET,
			"HTTP/1.1 418 I'm a teapot\r\nContent-Length: 0\r\n\r\n",
		)
		require.Equal(t, "I'm a teapot", resp.Reason)
	})

	t.Run("HEAD ignores content-length", func(t *testing.T) {
		resp, extra := parseWhole(t, cfg, method.HEAD, "HTTP/1.1 200 OK\r\nContent-Length: 1024\r\n\r\n")
		require.Empty(t, extra)
		require.Empty(t, resp.Body)
		require.Equal(t, "1024", resp.Headers.Value("content-length"))
	})

	for _, code := range []string{"204 No Content", "304 Not Modified"} {
		t.Run("no body for "+code, func(t *testing.T) {
			resp, extra := parseWhole(t, cfg, method.GET, "HTTP/1.1 "+code+"\r\nContent-Length: 3\r\n\r\nabc")
			require.Empty(t, resp.Body)
			require.Equal(t, "abc", string(extra))
		})
	}

	t.Run("interim responses are skipped", func(t *testing.T) {
		resp, _ := parseWhole(t, cfg, method.POST,
			"HTTP/1.1 100 Continue\r\n\r\n"+
				"HTTP/1.1 103 Early Hints\r\nLink: </style.css>\r\n\r\n"+
				"HTTP/1.1 201 Created\r\nContent-Length: 2\r\n\r\nok",
		)
		require.Equal(t, status.Created, resp.Code)
		require.Equal(t, "Created", resp.Reason)
		require.False(t, resp.Headers.Has("Link"))
		require.Equal(t, "ok", string(resp.Body))
	})

	t.Run("switching protocols completes", func(t *testing.T) {
		resp, extra := parseWhole(t, cfg, method.GET,
			"HTTP/1.1 101 Switching Protocols\r\nUpgrade: websocket\r\n\r\n\x81\x00",
		)
		require.Equal(t, status.SwitchingProtocols, resp.Code)
		require.Equal(t, "\x81\x00", string(extra))
	})

	t.Run("until close", func(t *testing.T) {
		p := getParser(cfg, method.GET)
		done, _, err := p.Parse([]byte("HTTP/1.0 200 OK\r\nServer: legacy\r\n\r\nhello "))
		require.NoError(t, err)
		require.False(t, done)
		require.Equal(t, UntilClose, p.Mode())
		require.Equal(t, AwaitingBody, p.Stage())

		done, _, err = p.Parse([]byte("world"))
		require.NoError(t, err)
		require.False(t, done)

		require.NoError(t, p.EOF())
		require.Equal(t, Complete, p.Stage())
		require.Equal(t, "hello world", string(p.Response().Body))
	})

	t.Run("until close without body", func(t *testing.T) {
		p := getParser(cfg, method.GET)
		done, _, err := p.Parse([]byte("HTTP/1.1 200 OK\r\n\r\n"))
		require.NoError(t, err)
		require.False(t, done)
		require.NoError(t, p.EOF())
		require.Empty(t, p.Response().Body)
	})

	t.Run("stages", func(t *testing.T) {
		p := getParser(cfg, method.GET)
		require.Equal(t, AwaitingStatusLine, p.Stage())
		_, _, err := p.Parse([]byte("HTTP/1.1 200 O"))
		require.NoError(t, err)
		require.Equal(t, AwaitingStatusLine, p.Stage())
		_, _, err = p.Parse([]byte("K\r\nContent-Len"))
		require.NoError(t, err)
		require.Equal(t, AwaitingHeaders, p.Stage())
		_, _, err = p.Parse([]byte("gth: 3\r\n\r\nab"))
		require.NoError(t, err)
		require.Equal(t, AwaitingBody, p.Stage())
		require.Equal(t, ContentLength, p.Mode())
		done, _, err := p.Parse([]byte("c"))
		require.NoError(t, err)
		require.True(t, done)
		require.Equal(t, Complete, p.Stage())
	})

	t.Run("complete parser returns everything as extra", func(t *testing.T) {
		p := getParser(cfg, method.GET)
		done, _, err := p.Parse([]byte("HTTP/1.1 204 No Content\r\n\r\n"))
		require.NoError(t, err)
		require.True(t, done)

		done, extra, err := p.Parse([]byte("garbage"))
		require.NoError(t, err)
		require.True(t, done)
		require.Equal(t, "garbage", string(extra))
	})

	t.Run("reuse after init", func(t *testing.T) {
		p := getParser(cfg, method.GET)
		_, _, err := p.Parse([]byte("HTTP/1.1 200 OK\r\nContent-Length: 3\r\nA: 1\r\n\r\nabc"))
		require.NoError(t, err)
		first := p.Response()

		p.Init(method.GET)
		done, _, err := p.Parse([]byte("HTTP/1.1 404 Not Found\r\nContent-Length: 1\r\n\r\nx"))
		require.NoError(t, err)
		require.True(t, done)
		require.Equal(t, status.NotFound, p.Response().Code)
		require.False(t, p.Response().Headers.Has("A"))
		require.Equal(t, "abc", string(first.Body))
		require.Equal(t, "1", first.Headers.Value("A"))
	})

	t.Run("random headers", func(t *testing.T) {
		headers := genHeaders(20)
		raw := "HTTP/1.1 200 OK\r\n" + strings.Join(headers, "\r\n") + "\r\nContent-Length: 0\r\n\r\n"
		resp, _ := parseWhole(t, cfg, method.GET, raw)

		for _, header := range headers {
			key, value, _ := strings.Cut(header, ": ")
			assert.Equal(t, value, resp.Headers.Value(key))
		}
	})
}

func TestParser_Fragmented(t *testing.T) {
	cfg := config.Default()

	tcs := []struct {
		Name  string
		Raw   string
		Body  string
		Extra string
	}{
		{
			Name:  "content-length",
			Raw:   "HTTP/1.1 200 OK\r\nContent-Length: 13\r\nX-Test: a\r\nX-Test: b\r\n\r\nHello, world!tail",
			Body:  "Hello, world!",
			Extra: "tail",
		},
		{
			Name: "chunked",
			Raw: "HTTP/1.1 200 OK\r\nTransfer-Encoding: chunked\r\nX-Test: a\r\nX-Test: b\r\n\r\n" +
				"3\r\nfoo\r\na\r\n0123456789\r\n0\r\n\r\n",
			Body: "foo0123456789",
		},
		{
			Name:  "interim",
			Raw:   "HTTP/1.1 100 Continue\r\n\r\nHTTP/1.1 200 OK\r\nX-Test: a\r\nX-Test: b\r\nContent-Length: 1\r\n\r\n!",
			Body:  "!",
			Extra: "",
		},
	}

	check := func(t *testing.T, p *Parser, want string) {
		resp := p.Response()
		require.Equal(t, status.OK, resp.Code)
		require.Equal(t, "OK", resp.Reason)
		require.Equal(t, []string{"a", "b"}, collectValues(resp, "x-test"))
		require.Equal(t, want, string(resp.Body))
	}

	for _, tc := range tcs {
		t.Run(tc.Name, func(t *testing.T) {
			raw := []byte(tc.Raw)

			t.Run("every split point", func(t *testing.T) {
				for i := 1; i < len(raw); i++ {
					p := getParser(cfg, method.GET)
					done, extra, err := feed(p, [][]byte{raw[:i], raw[i:]})
					require.NoError(t, err, i)
					require.True(t, done, i)
					require.Equal(t, tc.Extra, string(extra), i)
					check(t, p, tc.Body)
				}
			})

			t.Run("every fragment size", func(t *testing.T) {
				for n := 1; n <= len(raw); n++ {
					p := getParser(cfg, method.GET)
					done, extra, err := feed(p, disperse(raw, n))
					require.NoError(t, err, n)
					require.True(t, done, n)
					require.Equal(t, tc.Extra, string(extra), n)
					check(t, p, tc.Body)
				}
			})
		})
	}
}

func TestParser_Errors(t *testing.T) {
	cfg := config.Default()

	parse := func(raw string) error {
		p := getParser(cfg, method.GET)
		_, _, err := p.Parse([]byte(raw))
		return err
	}

	t.Run("bad status line", func(t *testing.T) {
		for _, raw := range []string{
			"HTTP/2.0 200 OK\r\n\r\n",
			"HTTP/1.1 20 OK\r\n\r\n",
			"HTTP/1.1 2000 OK\r\n\r\n",
			"HTTP/1.1 2x0 OK\r\n\r\n",
			"HTTP/1.1 999 Nope\r\n\r\n",
			"HTTP/1.1 099 Nope\r\n\r\n",
			"HTTP/1.1  200 OK\r\n\r\n",
			"ICY 200 OK\r\n\r\n",
		} {
			require.ErrorIs(t, parse(raw), ErrBadStatusLine, raw)
		}
	})

	t.Run("bad header", func(t *testing.T) {
		for _, raw := range []string{
			"HTTP/1.1 200 OK\r\nno colon here\r\n\r\n",
			"HTTP/1.1 200 OK\r\n: empty\r\n\r\n",
			"HTTP/1.1 200 OK\r\nbad key: value\r\n\r\n",
			"HTTP/1.1 200 OK\r\nKey: bad\x00value\r\n\r\n",
			"HTTP/1.1 200 OK\r\n\rX",
		} {
			require.ErrorIs(t, parse(raw), ErrBadHeader, fmt.Sprintf("%q", raw))
		}
	})

	t.Run("bad content-length", func(t *testing.T) {
		for _, raw := range []string{
			"HTTP/1.1 200 OK\r\nContent-Length: abc\r\n\r\n",
			"HTTP/1.1 200 OK\r\nContent-Length: -1\r\n\r\n",
			"HTTP/1.1 200 OK\r\nContent-Length: \r\n\r\n",
			"HTTP/1.1 200 OK\r\nContent-Length: 1\r\nContent-Length: 2\r\n\r\n",
			"HTTP/1.1 200 OK\r\nContent-Length: 99999999999999999999\r\n\r\n",
		} {
			require.ErrorIs(t, parse(raw), ErrBadContentLength, raw)
		}
	})

	t.Run("repeated agreeing content-length", func(t *testing.T) {
		resp, _ := parseWhole(t, cfg, method.GET,
			"HTTP/1.1 200 OK\r\nContent-Length: 2\r\nContent-Length: 2\r\n\r\nok",
		)
		require.Equal(t, "ok", string(resp.Body))
	})

	t.Run("bad chunk", func(t *testing.T) {
		err := parse("HTTP/1.1 200 OK\r\nTransfer-Encoding: chunked\r\n\r\nxyz\r\nfoo\r\n0\r\n\r\n")
		require.ErrorIs(t, err, ErrBadChunk)
	})

	t.Run("too long status line", func(t *testing.T) {
		cfg := config.Default()
		cfg.StatusLine.Size.Maximal = 32
		p := getParser(cfg, method.GET)
		_, _, err := p.Parse([]byte("HTTP/1.1 200 " + strings.Repeat("a", 64) + "\r\n\r\n"))
		require.ErrorIs(t, err, ErrTooLarge)
	})

	t.Run("too many headers", func(t *testing.T) {
		cfg := config.Default()
		cfg.Headers.Number.Maximal = 3
		p := getParser(cfg, method.GET)
		raw := "HTTP/1.1 200 OK\r\n" + strings.Join(genHeaders(4), "\r\n") + "\r\n\r\n"
		_, _, err := p.Parse([]byte(raw))
		require.ErrorIs(t, err, ErrTooLarge)
	})

	t.Run("too large headers", func(t *testing.T) {
		cfg := config.Default()
		cfg.Headers.Space.Maximal = 64
		p := getParser(cfg, method.GET)
		_, _, err := p.Parse([]byte("HTTP/1.1 200 OK\r\nCookie: " + strings.Repeat("a", 128) + "\r\n\r\n"))
		require.ErrorIs(t, err, ErrTooLarge)
	})

	t.Run("too large body", func(t *testing.T) {
		cfg := config.Default()
		cfg.Body.MaxSize = 4

		for _, raw := range []string{
			"HTTP/1.1 200 OK\r\nContent-Length: 5\r\n\r\nhello",
			"HTTP/1.1 200 OK\r\nTransfer-Encoding: chunked\r\n\r\n5\r\nhello\r\n0\r\n\r\n",
			"HTTP/1.1 200 OK\r\n\r\nhello",
		} {
			p := getParser(cfg, method.GET)
			_, _, err := p.Parse([]byte(raw))
			require.ErrorIs(t, err, ErrTooLarge, raw)
		}
	})

	t.Run("connection closed", func(t *testing.T) {
		for _, raw := range []string{
			"",
			"HTTP/1.1 200",
			"HTTP/1.1 200 OK\r\nContent-Length: 5\r\n",
			"HTTP/1.1 200 OK\r\nContent-Length: 5\r\n\r\nhel",
			"HTTP/1.1 200 OK\r\nTransfer-Encoding: chunked\r\n\r\n3\r\nfoo\r\n",
		} {
			p := getParser(cfg, method.GET)
			done, _, err := p.Parse([]byte(raw))
			require.NoError(t, err, raw)
			require.False(t, done, raw)
			require.ErrorIs(t, p.EOF(), ErrConnectionClosed, raw)
		}
	})
}

func genHeaders(n int) (out []string) {
	for i := 0; i < n; i++ {
		out = append(out, genHeader())
	}

	return out
}

func genHeader() string {
	return fmt.Sprintf("%[1]s: %[1]s", uniuri.NewLen(16))
}
