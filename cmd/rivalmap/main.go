package main

import (
	"os"

	"github.com/mkarlsen/rivalmap/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
