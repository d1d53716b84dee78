package proto

// Protocol is the version a response status line carries. The client speaks HTTP/1.1
// only, but HTTP/1.0 servers are understood as well.
type Protocol uint8

const (
	Unknown Protocol = iota
	HTTP10
	HTTP11
)

var tokens = [...]string{
	HTTP10: "HTTP/1.0",
	HTTP11: "HTTP/1.1",
}

func (p Protocol) String() string {
	if p == Unknown || int(p) >= len(tokens) {
		return ""
	}

	return tokens[p]
}

// FromBytes recognises exactly the HTTP/1.x version tokens. Anything else, including
// HTTP/2 preface-like tokens, is Unknown.
func FromBytes(raw []byte) Protocol {
	switch string(raw) {
	case "HTTP/1.1":
		return HTTP11
	case "HTTP/1.0":
		return HTTP10
	default:
		return Unknown
	}
}
