package cli

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/indigo-web/fetch"
	"github.com/indigo-web/fetch/config"
	"github.com/indigo-web/fetch/http/method"
	"github.com/indigo-web/fetch/http/mime"
	"github.com/indigo-web/fetch/transport"
	jsoniter "github.com/json-iterator/go"
)

var (
	ErrBadHeader  = errors.New("header must be in the 'Name: value' form")
	ErrBadPair    = errors.New("expected a key=value pair")
	ErrBadJSON    = errors.New("request body is not a valid JSON")
	ErrNoMatch    = errors.New("query matched nothing")
	ErrNotJSON    = errors.New("response is not a JSON")
	ErrBadTimeout = errors.New("timeout must be positive")
)

type options struct {
	Headers []string
	Params  []string
	Data    string
	JSON    string
	Form    []string
	Config  string
	Query   string
	Schema  string
	Verbose bool
	NoColor bool
	Timeout time.Duration
}

func run(ctx context.Context, env Env, m method.Method, rawURL string, opts *options) error {
	if opts.Timeout <= 0 {
		return ErrBadTimeout
	}

	cfg := config.Default()
	if len(opts.Config) > 0 {
		var err error
		if cfg, err = config.LoadFile(opts.Config); err != nil {
			return err
		}
	}

	var schema string
	if len(opts.Schema) > 0 {
		data, err := os.ReadFile(opts.Schema)
		if err != nil {
			return err
		}

		schema = string(data)
	}

	request, err := newRequest(m, rawURL, opts)
	if err != nil {
		return err
	}

	reactor, observers := env.Reactor, []fetch.Observer(nil)
	if opts.Verbose {
		logger := log.New(env.Stderr, "* ", 0)
		reactor = transport.Logged(reactor, logger)
		observers = append(observers, fetch.LogObserver(logger))
	}

	session := fetch.NewSession(reactor).Tune(cfg).Observe(observers...)

	ctx, cancel := context.WithTimeout(ctx, opts.Timeout)
	defer cancel()

	resp, err := request.SendWith(ctx, session).Wait(ctx)
	if err != nil {
		return err
	}

	out := newPrinter(env.Stdout, opts.NoColor)
	if len(opts.Query) > 0 {
		if !mime.Complies(mime.JSON, resp.Header("Content-Type")) {
			return fmt.Errorf("%w: %s", ErrNotJSON, resp.ContentType())
		}

		result := resp.Query(opts.Query)
		if !result.Exists() {
			return fmt.Errorf("%w: %s", ErrNoMatch, opts.Query)
		}

		out.Selection(result.String())
	} else {
		out.Response(resp)
	}

	if len(schema) > 0 {
		if err := resp.ValidateSchema(schema); err != nil {
			return err
		}
	}

	return nil
}

func newRequest(m method.Method, rawURL string, opts *options) (*fetch.Request, error) {
	if !strings.Contains(rawURL, "://") {
		rawURL = "http://" + rawURL
	}

	request := fetch.New(m, rawURL)

	for _, header := range opts.Headers {
		name, value, found := strings.Cut(header, ":")
		if !found {
			return nil, fmt.Errorf("%w: %q", ErrBadHeader, header)
		}

		request.Header(strings.TrimSpace(name), strings.TrimSpace(value))
	}

	for _, param := range opts.Params {
		key, value, err := splitPair(param)
		if err != nil {
			return nil, err
		}

		request.Param(key, value)
	}

	switch {
	case len(opts.JSON) > 0:
		if !jsoniter.Valid([]byte(opts.JSON)) {
			return nil, ErrBadJSON
		}

		request.Body([]byte(opts.JSON)).SetHeader("Content-Type", "application/json")
	case len(opts.Form) > 0:
		for _, field := range opts.Form {
			key, value, err := splitPair(field)
			if err != nil {
				return nil, err
			}

			request.FormKV(key, value)
		}
	case len(opts.Data) > 0:
		request.Body([]byte(opts.Data))
	}

	return request, request.Err()
}

func splitPair(pair string) (key, value string, err error) {
	key, value, found := strings.Cut(pair, "=")
	if !found || len(key) == 0 {
		return "", "", fmt.Errorf("%w: %q", ErrBadPair, pair)
	}

	return key, value, nil
}
