package url

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	t.Run("default ports", func(t *testing.T) {
		u, err := Parse("http://example.com/hello?a=b#fragment")
		require.NoError(t, err)
		require.Equal(t, URL{
			Scheme:   "http",
			Host:     "example.com",
			Port:     80,
			Path:     "/hello",
			RawQuery: "a=b",
		}, u)

		u, err = Parse("HTTPS://example.com")
		require.NoError(t, err)
		require.Equal(t, "https", u.Scheme)
		require.Equal(t, uint16(443), u.Port)
		require.True(t, u.Secure())
		require.Equal(t, "/", u.RequestURI())
	})

	t.Run("explicit port", func(t *testing.T) {
		u, err := Parse("http://localhost:8080/api/v1/")
		require.NoError(t, err)
		require.Equal(t, uint16(8080), u.Port)
		require.Equal(t, "localhost:8080", u.Authority())
		require.Equal(t, "127.0.0.1:8080", u.Address("127.0.0.1"))
	})

	t.Run("ipv6", func(t *testing.T) {
		u, err := Parse("http://[::1]:8080/")
		require.NoError(t, err)
		require.Equal(t, "::1", u.Host)
		require.Equal(t, "[::1]:8080", u.Authority())
		require.Equal(t, "[::1]:8080", u.Address(u.Host))
	})

	t.Run("escaped path is kept", func(t *testing.T) {
		u, err := Parse("http://example.com/hello%20world")
		require.NoError(t, err)
		require.Equal(t, "/hello%20world", u.Path)
		require.Equal(t, "http://example.com/hello%20world", u.String())
	})

	t.Run("errors", func(t *testing.T) {
		_, err := Parse("ftp://example.com")
		require.ErrorIs(t, err, ErrUnsupportedScheme)

		_, err = Parse("http:///path")
		require.ErrorIs(t, err, ErrNoHost)

		_, err = Parse("/relative/path")
		require.ErrorIs(t, err, ErrUnsupportedScheme)

		_, err = Parse("http://example.com:0")
		require.ErrorIs(t, err, ErrBadPort)

		_, err = Parse("http://example.com:99999")
		require.Error(t, err)

		_, err = Parse("http://exa mple.com")
		require.Error(t, err)
	})
}
