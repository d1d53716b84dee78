// Package cli implements the fetch command line: one subcommand per request method,
// printing the received response to the output.
package cli

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/indigo-web/fetch/http/method"
	"github.com/indigo-web/fetch/transport"
	"github.com/spf13/cobra"
)

var version = "0.1.0"

// Env is everything the commands touch outside the process.
type Env struct {
	Reactor transport.Reactor
	Stdout  io.Writer
	Stderr  io.Writer
}

// DefaultEnv sends requests through the network and writes to the standard streams.
func DefaultEnv() Env {
	return Env{
		Reactor: transport.NewNet(),
		Stdout:  os.Stdout,
		Stderr:  os.Stderr,
	}
}

// Execute runs the command line with the process arguments, returning the exit code.
func Execute() int {
	if err := NewRootCommand(DefaultEnv()).Execute(); err != nil {
		return 1
	}

	return 0
}

func NewRootCommand(env Env) *cobra.Command {
	root := &cobra.Command{
		Use:     "fetch",
		Short:   "A minimal HTTP/1.1 client for JSON APIs",
		Version: version,
		Long: `fetch sends a single HTTP/1.1 request and prints the response. Bodies may be
passed raw, as JSON or as an urlencoded form; JSON responses can be narrowed
by a path query and validated against a JSON schema.`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	root.SetOut(env.Stdout)
	root.SetErr(env.Stderr)

	for _, m := range []method.Method{
		method.GET, method.HEAD, method.DELETE, method.POST, method.PUT, method.PATCH,
	} {
		root.AddCommand(newMethodCommand(env, m))
	}

	return root
}

func newMethodCommand(env Env, m method.Method) *cobra.Command {
	opts := new(options)
	name := m.String()
	cmd := &cobra.Command{
		Use:   strings.ToLower(name) + " URL",
		Short: "Make a " + name + " request to the specified URL",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), env, m, args[0], opts)
		},
	}

	flags := cmd.Flags()
	flags.StringArrayVarP(&opts.Headers, "header", "H", nil, "header in the 'Name: value' form (can be used multiple times)")
	flags.StringArrayVarP(&opts.Params, "param", "q", nil, "query parameter in the key=value form (can be used multiple times)")
	flags.StringVar(&opts.Config, "config", "", "YAML file overriding the default client limits")
	flags.StringVar(&opts.Query, "query", "", "print only the value the JSON path points at")
	flags.StringVar(&opts.Schema, "schema", "", "JSON schema file the response body must comply with")
	flags.BoolVarP(&opts.Verbose, "verbose", "v", false, "log connection progress to stderr")
	flags.BoolVar(&opts.NoColor, "no-color", false, "disable colored output")
	flags.DurationVarP(&opts.Timeout, "timeout", "t", 30*time.Second, "exchange timeout")

	if m.ExpectsBody() {
		flags.StringVarP(&opts.Data, "data", "d", "", "raw request body")
		flags.StringVar(&opts.JSON, "json", "", "JSON request body")
		flags.StringArrayVar(&opts.Form, "form", nil, "form field in the key=value form (can be used multiple times)")
		cmd.MarkFlagsMutuallyExclusive("data", "json", "form")
	}

	return cmd
}
