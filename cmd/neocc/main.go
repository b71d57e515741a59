package main

import (
	"os"

	"github.com/star/neocc/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
