package cli

import (
	"bytes"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/indigo-web/fetch"
	"github.com/indigo-web/fetch/http/status"
	"github.com/mattn/go-isatty"
)

type scheme struct {
	Protocol    *color.Color
	StatusOK    *color.Color
	StatusWarn  *color.Color
	StatusError *color.Color
	HeaderKey   *color.Color
	HeaderValue *color.Color
}

func newScheme(noColor bool) scheme {
	s := scheme{
		Protocol:    color.New(color.FgBlue),
		StatusOK:    color.New(color.FgGreen, color.Bold),
		StatusWarn:  color.New(color.FgYellow, color.Bold),
		StatusError: color.New(color.FgRed, color.Bold),
		HeaderKey:   color.New(color.FgCyan),
		HeaderValue: color.New(color.FgWhite),
	}

	// the global color.NoColor only looks at os.Stdout, which isn't necessarily the output
	for _, c := range []*color.Color{
		s.Protocol, s.StatusOK, s.StatusWarn, s.StatusError, s.HeaderKey, s.HeaderValue,
	} {
		if noColor {
			c.DisableColor()
		} else {
			c.EnableColor()
		}
	}

	return s
}

func (s scheme) status(code status.Code) *color.Color {
	switch code.Class() {
	case status.Successful:
		return s.StatusOK
	case status.Informational, status.Redirection:
		return s.StatusWarn
	default:
		return s.StatusError
	}
}

type printer struct {
	out    io.Writer
	scheme scheme
}

// newPrinter colors the output only if it is a terminal.
func newPrinter(out io.Writer, noColor bool) printer {
	return printer{
		out:    out,
		scheme: newScheme(noColor || !isTerminal(out)),
	}
}

func (p printer) Response(resp *fetch.Response) {
	p.scheme.Protocol.Fprint(p.out, resp.Protocol().String())
	p.scheme.status(resp.StatusCode()).Fprintf(p.out, " %d %s\n", resp.StatusCode(), resp.Status())

	for _, header := range resp.Headers() {
		p.scheme.HeaderKey.Fprint(p.out, header.Key)
		io.WriteString(p.out, ": ")
		p.scheme.HeaderValue.Fprintln(p.out, header.Value)
	}

	body := resp.Body()
	if len(body) == 0 {
		return
	}

	io.WriteString(p.out, "\n")
	p.out.Write(body)
	if !bytes.HasSuffix(body, []byte("\n")) {
		io.WriteString(p.out, "\n")
	}
}

func (p printer) Selection(value string) {
	io.WriteString(p.out, value+"\n")
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}

	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
