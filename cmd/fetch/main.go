package main

import (
	"os"

	"github.com/indigo-web/fetch/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
