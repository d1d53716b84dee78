package config

import (
	"errors"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

type (
	StatusLineSize struct {
		Default int `yaml:"default"`
		Maximal int `yaml:"maximal"`
	}

	HeadersNumber struct {
		Default int `yaml:"default"`
		Maximal int `yaml:"maximal"`
	}

	HeadersSpace struct {
		Default int `yaml:"default"`
		Maximal int `yaml:"maximal"`
	}

	BodyBuffer struct {
		Default int `yaml:"default"`
		Maximal int `yaml:"maximal"`
	}

	NETWriteBufferSize struct {
		Default int `yaml:"default"`
		Maximal int `yaml:"maximal"`
	}
)

type (
	StatusLine struct {
		// Size limits the response status line. The same buffer also holds the protocol token
		// and the reason phrase when they arrive split across multiple reads.
		Size StatusLineSize `yaml:"size"`
	}

	Headers struct {
		// Number is responsible for headers storage size.
		// Default value is an initial size of allocated headers storage.
		// Maximal value is maximum number of response headers allowed to be presented
		Number HeadersNumber `yaml:"number"`
		// Space limits the amount of memory occupied by response header names and values.
		Space HeadersSpace `yaml:"space"`
		// Default headers are headers to be included into every request implicitly, unless
		// explicitly set by the caller.
		Default map[string]string `yaml:"default" test:"nullable"`
	}

	Body struct {
		// MaxSize describes the maximal size of a response body, that can be received. Bigger
		// bodies fail the exchange with a parse error.
		MaxSize uint64 `yaml:"max_size"`
		// Buffer is the initial capacity of a buffer storing the whole response body. Default is
		// used when the length isn't known in advance (chunked or close-delimited bodies),
		// Maximal limits the pre-allocation for bodies announcing their Content-Length, so a
		// lying server cannot make the client allocate gigabytes upfront.
		Buffer BodyBuffer `yaml:"buffer"`
	}

	NET struct {
		// ReadBufferSize is a size of buffer in bytes which will be used to read from
		// socket
		ReadBufferSize int `yaml:"read_buffer_size"`
		// WriteBufferSize is the initial capacity of a buffer holding the serialized request.
		// Requests bigger than Maximal are still sent, the buffer just isn't kept around.
		WriteBufferSize NETWriteBufferSize `yaml:"write_buffer_size"`
	}
)

// Config holds settings used across various parts of the client, mainly restrictions, limitations
// and pre-allocations.
//
// You must ALWAYS modify defaults (returned via Default()) and NEVER try to initialize the
// config manually, because most likely this will result in ambiguous errors.
type Config struct {
	StatusLine StatusLine `yaml:"status_line"`
	Headers    Headers    `yaml:"headers"`
	Body       Body       `yaml:"body"`
	NET        NET        `yaml:"net"`
}

// Default returns default config. Those are initially well-balanced, however maximal defaults
// are pretty permitting.
func Default() *Config {
	return &Config{
		StatusLine: StatusLine{
			Size: StatusLineSize{
				Default: 64,
				Maximal: 4 * 1024,
			},
		},
		Headers: Headers{
			Number: HeadersNumber{
				Default: 10,
				Maximal: 100,
			},
			Space: HeadersSpace{
				Default: 1 * 1024,  // 1kb for headers must be fairly enough in most cases.
				Maximal: 64 * 1024, // However, there also might be extremely long cookies.
			},
			Default: map[string]string{
				"User-Agent": "indigo-fetch",
				"Accept":     "*/*",
			},
		},
		Body: Body{
			MaxSize: 128 * 1024 * 1024, // 128 megabytes
			Buffer: BodyBuffer{
				Default: 1024,
				Maximal: 1024 * 1024,
			},
		},
		NET: NET{
			ReadBufferSize: 4 * 1024,
			WriteBufferSize: NETWriteBufferSize{
				Default: 1024,
				Maximal: 64 * 1024,
			},
		},
	}
}

// Load overlays the YAML document on top of defaults. Keys absent in the document keep
// their default values, default headers are merged. An empty document is valid.
func Load(r io.Reader) (*Config, error) {
	cfg := Default()
	decoder := yaml.NewDecoder(r)
	decoder.KnownFields(true)

	if err := decoder.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, err
	}

	return cfg, cfg.Validate()
}

// LoadFile is Load reading the named file.
func LoadFile(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}

	defer f.Close()

	return Load(f)
}

var ErrInvalid = errors.New("invalid config")

// Validate rejects limits that would make every exchange fail.
func (c *Config) Validate() error {
	switch {
	case c.StatusLine.Size.Maximal < len("HTTP/1.1 200"):
		return errors.Join(ErrInvalid, errors.New("status line size is too small"))
	case c.Headers.Number.Maximal <= 0, c.Headers.Space.Maximal <= 0:
		return errors.Join(ErrInvalid, errors.New("headers limits must be positive"))
	case c.NET.ReadBufferSize <= 0:
		return errors.Join(ErrInvalid, errors.New("read buffer size must be positive"))
	default:
		return nil
	}
}
