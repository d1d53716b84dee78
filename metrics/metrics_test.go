package metrics

import (
	"context"
	"testing"

	"github.com/indigo-web/fetch"
	"github.com/indigo-web/fetch/transport/dummy"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func session(collector *Collector, conns ...*dummy.Conn) *fetch.Session {
	reactor := dummy.NewReactor().Host("example.com", "10.0.0.1")
	if len(conns) > 0 {
		reactor.Serve("10.0.0.1:80", conns[0])
	}

	return fetch.NewSession(reactor).Observe(collector)
}

func TestCollector(t *testing.T) {
	ctx := context.Background()

	t.Run("success", func(t *testing.T) {
		collector := New(prometheus.NewRegistry())
		conn := dummy.NewStringConn("HTTP/1.1 404 Not Found\r\nContent-Length: 5\r\n\r\nnope!")
		_, err := fetch.Get("http://example.com/").SendWith(ctx, session(collector, conn)).Get()
		require.NoError(t, err)

		require.Equal(t, 1.0, testutil.ToFloat64(collector.exchanges.WithLabelValues("GET", "4xx")))
		require.Equal(t, 1, testutil.CollectAndCount(collector.duration))
		require.Equal(t, 1, testutil.CollectAndCount(collector.bodySize))
		require.Equal(t, 0, testutil.CollectAndCount(collector.failures))
	})

	t.Run("failure", func(t *testing.T) {
		collector := New(prometheus.NewRegistry())
		_, err := fetch.Post("http://example.com/").Body([]byte("x")).SendWith(ctx, session(collector)).Get()
		require.ErrorIs(t, err, fetch.ErrConnect)

		require.Equal(t, 1.0, testutil.ToFloat64(collector.exchanges.WithLabelValues("POST", "error")))
		require.Equal(t, 1.0, testutil.ToFloat64(collector.failures.WithLabelValues("POST", "connect")))
		require.Equal(t, 0, testutil.CollectAndCount(collector.bodySize))
	})

	t.Run("build failures are not observed", func(t *testing.T) {
		collector := New(prometheus.NewRegistry())
		_, err := fetch.Get("http://example.com/").Header("Bad Name", "x").SendWith(ctx, session(collector)).Get()
		require.ErrorIs(t, err, fetch.ErrBuild)
		require.Equal(t, 0, testutil.CollectAndCount(collector.exchanges))
	})

	t.Run("registered", func(t *testing.T) {
		registry := prometheus.NewRegistry()
		New(registry)
		require.Panics(t, func() {
			New(registry)
		})
	})
}

func TestOutcome(t *testing.T) {
	require.Equal(t, "error", Outcome(fetch.Exchange{Err: fetch.ErrParse}))
	require.Equal(t, "error", Outcome(fetch.Exchange{}))
}
