package fetch

import (
	"errors"
	"math"
	"testing"

	"github.com/indigo-web/fetch/http/method"
	"github.com/indigo-web/fetch/http/url"
	"github.com/indigo-web/fetch/internal/httptest"
	"github.com/indigo-web/fetch/kv"
	"github.com/stretchr/testify/require"
)

func build(t *testing.T, r *Request) httptest.Request {
	data, err := r.Build()
	require.NoError(t, err)
	parsed, err := httptest.Parse(string(data))
	require.NoError(t, err)

	return parsed
}

func requireBuildError(t *testing.T, r *Request, detail error) {
	_, err := r.Build()
	require.ErrorIs(t, err, ErrBuild)
	require.ErrorIs(t, err, detail)
	require.Equal(t, KindBuild, KindOf(err))
}

func TestRequest(t *testing.T) {
	t.Run("shorthands", func(t *testing.T) {
		for m, r := range map[string]*Request{
			"GET":    Get("http://example.com/"),
			"HEAD":   Head("http://example.com/"),
			"POST":   Post("http://example.com/"),
			"PUT":    Put("http://example.com/"),
			"PATCH":  Patch("http://example.com/"),
			"DELETE": Delete("http://example.com/"),
		} {
			require.Equal(t, m, build(t, r).Method)
		}
	})

	t.Run("default headers", func(t *testing.T) {
		parsed := build(t, Get("http://example.com/"))
		require.Equal(t, "indigo-fetch", parsed.Headers.Value("User-Agent"))
		require.Equal(t, "example.com", parsed.Headers.Value("Host"))
	})

	t.Run("params", func(t *testing.T) {
		parsed := build(t, Get("http://example.com/items?sort=asc").
			Param("tag", "a b").
			Param("tag", "c"),
		)
		require.Equal(t, "/items", parsed.Path())
		require.Equal(t, "sort=asc&tag=a%20b&tag=c", parsed.Query())
	})

	t.Run("headers", func(t *testing.T) {
		parsed := build(t, Get("http://example.com/").
			Header("X-Test", "1").
			Header("X-Test", "2").
			Header("X-Gone", "soon").
			SetHeader("Accept", "text/plain").
			SetHeader("accept", "application/json").
			SetHeader("x-gone", ""),
		)
		require.Equal(t, []string{"1", "2"}, collect(parsed.Headers, "X-Test"))
		require.Equal(t, []string{"application/json"}, collect(parsed.Headers, "Accept"))
		require.False(t, parsed.Headers.Has("X-Gone"))
	})

	t.Run("raw body", func(t *testing.T) {
		parsed := build(t, Put("http://example.com/").Body([]byte("Hello, world!")))
		require.Equal(t, "13", parsed.Headers.Value("Content-Length"))
		require.Equal(t, "Hello, world!", parsed.Body)
	})

	t.Run("JSON body", func(t *testing.T) {
		parsed := build(t, Post("http://example.com/").
			Header("Content-Type", "text/plain").
			Body([]byte("replaced")).
			JSON(map[string]int{"a": 1}),
		)
		require.Equal(t, []string{"application/json"}, collect(parsed.Headers, "Content-Type"))
		require.JSONEq(t, `{"a":1}`, parsed.Body)
	})

	t.Run("form body", func(t *testing.T) {
		parsed := build(t, Post("http://example.com/").
			Form(kv.Pair{Key: "user", Value: "john doe"}).
			FormKV("lang", "en"),
		)
		require.Equal(t, "application/x-www-form-urlencoded", parsed.Headers.Value("Content-Type"))
		require.Equal(t, "user=john+doe&lang=en", parsed.Body)
	})

	t.Run("form started by FormKV", func(t *testing.T) {
		parsed := build(t, Post("http://example.com/").Body([]byte("x")).FormKV("a", "b"))
		require.Equal(t, "a=b", parsed.Body)
	})

	t.Run("custom method", func(t *testing.T) {
		require.Equal(t, "PURGE", build(t, Custom("PURGE", "http://example.com/")).Method)
		require.Equal(t, "GET", build(t, Custom("GET", "http://example.com/")).Method)
		requireBuildError(t, Custom("BAD METHOD", "http://example.com/"), ErrInvalidMethod)
		requireBuildError(t, New(method.Unknown, "http://example.com/"), ErrInvalidMethod)
	})

	t.Run("parsed URL", func(t *testing.T) {
		parsed := build(t, NewURL(method.GET, url.URL{Scheme: "https", Host: "example.com", Path: "/a"}))
		require.Equal(t, "example.com", parsed.Headers.Value("Host"))
		require.Equal(t, "/a", parsed.Target)

		requireBuildError(t, NewURL(method.GET, url.URL{Scheme: "ftp", Host: "example.com"}), ErrInvalidURL)
	})

	t.Run("invalid URL", func(t *testing.T) {
		for _, rawURL := range []string{
			"", "example.com", "ftp://example.com/", "http:///path", "http://example.com:0/", "http://[::1",
		} {
			requireBuildError(t, Get(rawURL), ErrInvalidURL)
		}
	})

	t.Run("invalid header", func(t *testing.T) {
		requireBuildError(t, Get("http://example.com/").Header("Bad Name", "x"), ErrInvalidHeader)
		requireBuildError(t, Get("http://example.com/").Header("Name", "a\r\nb"), ErrInvalidHeader)
		requireBuildError(t, Get("http://example.com/").SetHeader("", ""), ErrInvalidHeader)
	})

	t.Run("serialization failure", func(t *testing.T) {
		r := Post("http://example.com/").JSON(math.Inf(1))
		require.ErrorIs(t, r.Err(), ErrSerialization)
		requireBuildError(t, r, ErrSerialization)
	})

	t.Run("first failure is kept", func(t *testing.T) {
		r := Get("http://example.com/").Header("Bad Name", "x").JSON(make(chan int))
		require.ErrorIs(t, r.Err(), ErrInvalidHeader)
		require.False(t, errors.Is(r.Err(), ErrSerialization))
	})

	t.Run("consumed once", func(t *testing.T) {
		r := Get("http://example.com/")
		_, err := r.Build()
		require.NoError(t, err)
		requireBuildError(t, r, ErrAlreadySent)
	})
}

func collect(headers *kv.Storage, key string) (values []string) {
	for value := range headers.Values(key) {
		values = append(values, value)
	}

	return values
}
