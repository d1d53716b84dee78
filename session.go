package fetch

import (
	"context"
	"errors"
	"io"
	"net"
	"time"

	"github.com/indigo-web/fetch/config"
	"github.com/indigo-web/fetch/http/url"
	"github.com/indigo-web/fetch/internal/http1"
	"github.com/indigo-web/fetch/internal/pool"
	"github.com/indigo-web/fetch/internal/request"
	"github.com/indigo-web/fetch/transport"
)

// buffersQueue is how many idle buffers of each kind a session keeps.
const buffersQueue = 16

// Session holds what is shared between exchanges: the reactor, limits, default headers,
// observers and the pooled buffers. Connections are never shared, every exchange dials
// its own. A session must be tuned before it's used and is safe for concurrent use after.
type Session struct {
	reactor    transport.Reactor
	cfg        *config.Config
	codec      JSONCodec
	serializer *http1.Serializer
	observers  []Observer
	writeBuffs *pool.Buffers
	readBuffs  *pool.Buffers
}

func NewSession(reactor transport.Reactor) *Session {
	s := &Session{
		reactor: reactor,
		codec:   defaultCodec,
	}

	return s.Tune(config.Default())
}

// Tune replaces the config.
func (s *Session) Tune(cfg *config.Config) *Session {
	s.cfg = cfg
	s.serializer = http1.NewSerializer(cfg.Headers.Default)
	s.writeBuffs = pool.NewBuffers(buffersQueue, cfg.NET.WriteBufferSize.Default, cfg.NET.WriteBufferSize.Maximal)
	s.readBuffs = pool.NewBuffers(buffersQueue, cfg.NET.ReadBufferSize, cfg.NET.ReadBufferSize)
	return s
}

// Codec sets the codec decoding responses of requests that don't set their own.
func (s *Session) Codec(codec JSONCodec) *Session {
	s.codec = codec
	return s
}

// Observe adds observers notified after every exchange.
func (s *Session) Observe(observers ...Observer) *Session {
	s.observers = append(s.observers, observers...)
	return s
}

// Send is a shorthand for r.SendWith(ctx, s).
func (s *Session) Send(ctx context.Context, r *Request) *Future {
	return r.SendWith(ctx, s)
}

func (s *Session) send(ctx context.Context, fields *request.Fields, codec JSONCodec) *Future {
	payload, err := s.serializer.Serialize(s.writeBuffs.Acquire(), fields)
	if err != nil {
		return failedFuture(newError(KindBuild, err))
	}

	if codec == nil {
		codec = s.codec
	}

	ctx, cancel := context.WithCancelCause(ctx)
	future := newFuture(cancel)

	s.reactor.Spawn(func() {
		defer cancel(nil)

		started := time.Now()
		resp, err := s.exchange(ctx, future, fields, payload, codec)
		stage := future.Stage()
		if err != nil {
			future.setStage(Failed)
		} else {
			stage = Parsed
			future.setStage(Parsed)
		}

		s.notify(Exchange{
			Method:   fields.MethodToken(),
			URL:      fields.URL.String(),
			Response: resp,
			Err:      err,
			Stage:    stage,
			Started:  started,
			Elapsed:  time.Since(started),
		})
		future.resolve(resp, err)
	})

	return future
}

func (s *Session) exchange(
	ctx context.Context, future *Future, fields *request.Fields, payload []byte, codec JSONCodec,
) (*Response, error) {
	future.setStage(Resolving)
	addrs, err := s.reactor.LookupHost(ctx, fields.URL.Host)
	switch {
	case err != nil:
		return nil, fail(ctx, KindResolution, err)
	case len(addrs) == 0:
		return nil, fail(ctx, KindResolution, ErrNoAddresses)
	}

	future.setStage(Connecting)
	conn, err := s.connect(ctx, fields.URL, addrs)
	if err != nil {
		return nil, fail(ctx, KindConnect, err)
	}

	// the only way to interrupt a blocked read or write
	stop := context.AfterFunc(ctx, func() {
		_ = conn.Close()
	})
	defer func() {
		stop()
		_ = conn.Close()
	}()

	readBuff := s.readBuffs.Acquire()
	defer s.readBuffs.Release(readBuff)
	client := transport.NewClient(conn, readBuff[:cap(readBuff)])

	future.setStage(Writing)
	err = client.Write(payload)
	s.writeBuffs.Release(payload)
	if err != nil {
		return nil, fail(ctx, KindWrite, err)
	}

	future.setStage(Reading)
	parser := http1.NewParser(s.cfg)
	parser.Init(fields.Method)

	for {
		data, err := client.Read()
		if len(data) > 0 {
			done, _, perr := parser.Parse(data)
			if perr != nil {
				return nil, fail(ctx, KindParse, perr)
			}

			if done {
				// anything past the response is ignored, as the connection isn't reused
				break
			}
		}

		if err == nil {
			continue
		}

		if errors.Is(err, io.EOF) {
			if perr := parser.EOF(); perr != nil {
				return nil, fail(ctx, KindConnectionClosed, perr)
			}

			break
		}

		return nil, fail(ctx, KindConnectionClosed, err)
	}

	return newResponse(parser.Response(), codec), nil
}

// connect dials resolved addresses in order until one of them succeeds.
func (s *Session) connect(ctx context.Context, u url.URL, addrs []string) (net.Conn, error) {
	var errs []error

	for _, addr := range addrs {
		conn, err := s.reactor.Dial(ctx, "tcp", u.Address(addr))
		if err != nil {
			errs = append(errs, err)
			if ctx.Err() != nil {
				break
			}

			continue
		}

		if !u.Secure() {
			return conn, nil
		}

		secured, err := s.reactor.Secure(ctx, conn, u.Host)
		if err != nil {
			_ = conn.Close()
			return nil, err
		}

		return secured, nil
	}

	return nil, errors.Join(errs...)
}

func (s *Session) notify(exchange Exchange) {
	for _, observer := range s.observers {
		observer.Observe(exchange)
	}
}

// fail attributes the error to the cancellation if the context is done, as in this case
// the error is most likely caused by the connection being closed under the hood.
func fail(ctx context.Context, kind Kind, err error) *Error {
	if ctx.Err() != nil {
		return newError(KindCanceled, context.Cause(ctx))
	}

	return newError(kind, err)
}
