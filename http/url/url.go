// Package url is the boundary to URL parsing. The client consumes an already parsed
// URL; Parse is a thin adapter over net/url that additionally applies the scheme
// default port and rejects everything the client cannot connect to.
package url

import (
	"errors"
	"net"
	stdurl "net/url"
	"strconv"
	"strings"
)

var (
	ErrUnsupportedScheme = errors.New("unsupported scheme: only http and https are allowed")
	ErrNoHost            = errors.New("no host")
	ErrBadPort           = errors.New("bad port")
)

type URL struct {
	// Scheme is always lower-cased.
	Scheme string
	// Host holds either a domain name or an IP address. IPv6 addresses aren't bracketed.
	Host string
	Port uint16
	// Path is kept escaped, exactly as it must appear on the wire.
	Path     string
	RawQuery string
}

// Parse parses an absolute URL. Fragments are dropped, as they're never transmitted.
func Parse(raw string) (URL, error) {
	u, err := stdurl.Parse(raw)
	if err != nil {
		return URL{}, err
	}

	parsed := URL{
		Scheme:   strings.ToLower(u.Scheme),
		Host:     u.Hostname(),
		Path:     u.EscapedPath(),
		RawQuery: u.RawQuery,
	}

	if portStr := u.Port(); len(portStr) > 0 {
		port, err := strconv.ParseUint(portStr, 10, 16)
		if err != nil || port == 0 {
			return URL{}, ErrBadPort
		}

		parsed.Port = uint16(port)
	} else {
		parsed.Port = DefaultPort(parsed.Scheme)
	}

	return parsed, parsed.Validate()
}

// DefaultPort returns the port implied by the scheme, or 0 if the scheme is unknown.
func DefaultPort(scheme string) uint16 {
	switch scheme {
	case "http":
		return 80
	case "https":
		return 443
	default:
		return 0
	}
}

// Validate checks whether the URL can be connected to.
func (u URL) Validate() error {
	switch {
	case u.Scheme != "http" && u.Scheme != "https":
		return ErrUnsupportedScheme
	case len(u.Host) == 0:
		return ErrNoHost
	case u.Port == 0:
		return ErrBadPort
	default:
		return nil
	}
}

// Secure tells whether the transport must be upgraded to TLS.
func (u URL) Secure() bool {
	return u.Scheme == "https"
}

// Authority is the value of the Host header: the host, followed by the port unless it's
// the default one for the scheme.
func (u URL) Authority() string {
	host := u.Host
	if strings.IndexByte(host, ':') != -1 {
		host = "[" + host + "]"
	}

	if u.Port == DefaultPort(u.Scheme) {
		return host
	}

	return host + ":" + strconv.Itoa(int(u.Port))
}

// Address joins the passed resolved address with the URL's port.
func (u URL) Address(ip string) string {
	return net.JoinHostPort(ip, strconv.Itoa(int(u.Port)))
}

// RequestURI returns the origin-form request target.
func (u URL) RequestURI() string {
	path := u.Path
	if len(path) == 0 {
		path = "/"
	}

	if len(u.RawQuery) > 0 {
		return path + "?" + u.RawQuery
	}

	return path
}

func (u URL) String() string {
	return u.Scheme + "://" + u.Authority() + u.RequestURI()
}
