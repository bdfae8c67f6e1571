package main

import (
	"os"

	"github.com/dyike/psxlens/internal/cli"
)

func main() {
	os.Exit(cli.Run())
}
